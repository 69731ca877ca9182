package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/deployctl/internal/agent"
	"github.com/imamik/deployctl/internal/config"
	"github.com/imamik/deployctl/internal/localstate"
)

// Down terminates a deployment's cloud instances and removes its local
// metadata. Running it for a deployment that is already gone succeeds.
// Metadata is kept when termination fails so the command can be retried.
// Without a locations record (an up that failed while starting instances)
// the configured infrastructure and group are used.
func Down(ctx context.Context, g Globals, keyname string) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}

	loc, err := s.store.ReadLocations(keyname)
	switch {
	case errors.Is(err, localstate.ErrNotFound):
		if err := localstate.ValidateKeyname(keyname); err != nil {
			return err
		}
		loc = &localstate.Locations{Infrastructure: s.cfg.Infrastructure, Group: s.cfg.Group}
		s.log.Info("no locations recorded, falling back to configuration",
			"keyname", keyname, "infrastructure", loc.Infrastructure, "group", loc.Group)
	case err != nil:
		return err
	}

	if loc.Infrastructure != config.InfrastructureXen {
		if err := terminate(ctx, s, loc, keyname); err != nil {
			return err
		}
	}

	if err := s.store.Cleanup(keyname); err != nil {
		return err
	}

	if g.JSON {
		return printJSON(map[string]string{"keyname": keyname, "status": "terminated"})
	}
	_, err = fmt.Fprintf(stdout, "Deployment %s terminated\n", keyname)
	return err
}

func terminate(ctx context.Context, s *session, loc *localstate.Locations, keyname string) error {
	a, err := s.agentFor(loc.Infrastructure)
	if err != nil {
		return err
	}
	params := agent.ParamsFromConfig(s.cfg, keyname)
	if loc.Group != "" {
		params.Group = loc.Group
	}
	s.log.Info("terminating instances", "infrastructure", a.Name(), "keyname", keyname)
	if err := a.TerminateInstances(ctx, params); err != nil {
		return fmt.Errorf("failed to terminate %s: %w", keyname, err)
	}
	return nil
}
