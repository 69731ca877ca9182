package hcloud

import (
	"context"

	"github.com/imamik/deployctl/internal/agent"
	"github.com/imamik/deployctl/internal/util/labels"
	"github.com/imamik/deployctl/internal/util/naming"
)

// ConfigureSecurity ensures the group network and firewall and the
// deployment's SSH key. An empty IPRange skips the network; an empty
// SSHPublicKey skips the key.
func (a *Agent) ConfigureSecurity(ctx context.Context, p agent.Params) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	groupLabels := labels.New(p.Group).Build()
	anyCreated := false

	if p.IPRange != "" {
		_, created, err := a.ensureNetwork(ctx, naming.Network(p.Group), p.IPRange, p.NetworkZone, groupLabels)
		if err != nil {
			return false, agent.ProviderError(ProviderName, "configure network", err)
		}
		anyCreated = anyCreated || created
	}

	_, created, err := a.ensureFirewall(ctx, naming.Firewall(p.Group), p.Group, groupLabels)
	if err != nil {
		return false, agent.ProviderError(ProviderName, "configure firewall", err)
	}
	anyCreated = anyCreated || created

	if p.SSHPublicKey != "" {
		keyLabels := labels.New(p.Group).WithKeyname(p.Keyname).Build()
		_, created, err := a.ensureSSHKey(ctx, naming.SSHKey(p.Keyname), p.SSHPublicKey, keyLabels)
		if err != nil {
			return false, agent.ProviderError(ProviderName, "configure ssh key", err)
		}
		anyCreated = anyCreated || created
	}

	return anyCreated, nil
}
