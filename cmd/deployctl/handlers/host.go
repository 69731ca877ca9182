package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/deployctl/internal/localstate"
)

// Host prints the public address of the first node performing role.
// An empty role means the login node.
func Host(_ context.Context, g Globals, keyname, role string) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	if role == "" {
		role = localstate.RoleLogin
	}

	host, err := s.store.HostWithRole(keyname, role)
	if err != nil {
		return err
	}

	if g.JSON {
		return printJSON(map[string]string{"keyname": keyname, "role": role, "host": host})
	}
	_, err = fmt.Fprintln(stdout, host)
	return err
}
