package hcloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/deployctl/internal/agent"
	"github.com/imamik/deployctl/internal/util/async"
	"github.com/imamik/deployctl/internal/util/labels"
	"github.com/imamik/deployctl/internal/util/naming"
)

// CleanupError collects the failures of a teardown that kept going after
// the first error.
type CleanupError struct {
	Errors []error
}

func (e *CleanupError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("cleanup encountered %d errors: %v", len(e.Errors), e.Errors)
}

func (e *CleanupError) Unwrap() error {
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}
	return errors.Join(e.Errors...)
}

// Add records err when it is non-nil.
func (e *CleanupError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

func (e *CleanupError) HasErrors() bool {
	return len(e.Errors) > 0
}

// TerminateInstances deletes the deployment's servers and SSH key. The
// group firewall and network are deleted as well once no server of the
// group remains. Every step runs even when an earlier one failed.
func (a *Agent) TerminateInstances(ctx context.Context, p agent.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	a.log.Info("terminating deployment", "keyname", p.Keyname, "group", p.Group)
	cleanupErrs := &CleanupError{}

	if err := a.deleteServers(ctx, deploymentSelector(p)); err != nil {
		cleanupErrs.Add(fmt.Errorf("servers: %w", err))
	}
	if err := a.deleteSSHKey(ctx, naming.SSHKey(p.Keyname)); err != nil {
		cleanupErrs.Add(fmt.Errorf("ssh key: %w", err))
	}

	remaining, err := a.listServers(ctx, labels.SelectorForGroup(p.Group))
	switch {
	case err != nil:
		cleanupErrs.Add(fmt.Errorf("group servers: %w", err))
	case len(remaining) > 0:
		a.log.Info("keeping group resources in use by other deployments", "group", p.Group, "servers", len(remaining))
	default:
		if err := a.deleteFirewall(ctx, naming.Firewall(p.Group)); err != nil {
			cleanupErrs.Add(fmt.Errorf("firewall: %w", err))
		}
		if err := a.deleteNetwork(ctx, naming.Network(p.Group)); err != nil {
			cleanupErrs.Add(fmt.Errorf("network: %w", err))
		}
	}

	if cleanupErrs.HasErrors() {
		return agent.ProviderError(ProviderName, "terminate instances", cleanupErrs)
	}
	a.log.Info("deployment terminated", "keyname", p.Keyname)
	return nil
}

// deleteServers deletes every server matching selector and waits for the
// deletions, so dependent resources can be removed afterwards.
func (a *Agent) deleteServers(ctx context.Context, selector string) error {
	servers, err := a.listServers(ctx, selector)
	if err != nil {
		return err
	}

	tasks := make([]async.Task, 0, len(servers))
	for _, server := range servers {
		tasks = append(tasks, async.Task{
			Name: server.Name,
			Func: func(ctx context.Context) error {
				return a.deleteServer(ctx, server)
			},
		})
	}
	return async.RunParallel(ctx, tasks, a.parallelism)
}

func (a *Agent) deleteServer(ctx context.Context, server *hcloud.Server) error {
	a.log.Info("deleting server", "name", server.Name, "id", server.ID)
	var result *hcloud.ServerDeleteResult
	err := a.retry(ctx, func() error {
		res, _, err := a.client.Server.DeleteWithResult(ctx, server)
		if err != nil {
			if IsNotFound(err) {
				return nil
			}
			return classify(err)
		}
		result = res
		return nil
	})
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	return waitForActions(ctx, a.client, result.Action)
}
