package hcloud

import (
	"context"
	"net"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/deployctl/internal/util/labels"
)

// firewallRules opens SSH and ICMP to the world. Traffic between nodes
// flows over the private network, which the firewall does not filter.
func firewallRules() []hcloud.FirewallRule {
	anywhere := []net.IPNet{
		{IP: net.IPv4zero, Mask: net.CIDRMask(0, 32)},
		{IP: net.IPv6zero, Mask: net.CIDRMask(0, 128)},
	}
	return []hcloud.FirewallRule{
		{
			Description: hcloud.Ptr("ssh"),
			Direction:   hcloud.FirewallRuleDirectionIn,
			Protocol:    hcloud.FirewallRuleProtocolTCP,
			Port:        hcloud.Ptr("22"),
			SourceIPs:   anywhere,
		},
		{
			Description: hcloud.Ptr("icmp"),
			Direction:   hcloud.FirewallRuleDirectionIn,
			Protocol:    hcloud.FirewallRuleProtocolICMP,
			SourceIPs:   anywhere,
		},
	}
}

// ensureFirewall gets or creates the group firewall, resetting its rules
// when it already exists. It applies to every server labelled with group.
func (a *Agent) ensureFirewall(ctx context.Context, name, group string, lbls map[string]string) (*hcloud.Firewall, bool, error) {
	rules := firewallRules()
	return (&EnsureOperation[*hcloud.Firewall, hcloud.FirewallCreateOpts, hcloud.FirewallSetRulesOpts]{
		Name:         name,
		ResourceType: "firewall",
		Get:          a.client.Firewall.Get,
		Create:       a.createFirewall,
		Update:       a.client.Firewall.SetRules,
		CreateOptsMapper: func() hcloud.FirewallCreateOpts {
			return hcloud.FirewallCreateOpts{
				Name:   name,
				Rules:  rules,
				Labels: lbls,
				ApplyTo: []hcloud.FirewallResource{{
					Type: hcloud.FirewallResourceTypeLabelSelector,
					LabelSelector: &hcloud.FirewallResourceLabelSelector{
						Selector: labels.SelectorForGroup(group),
					},
				}},
			}
		},
		UpdateOptsMapper: func(*hcloud.Firewall) hcloud.FirewallSetRulesOpts {
			return hcloud.FirewallSetRulesOpts{Rules: rules}
		},
	}).Execute(ctx, a)
}

func (a *Agent) createFirewall(ctx context.Context, opts hcloud.FirewallCreateOpts) (*CreateResult[*hcloud.Firewall], *hcloud.Response, error) {
	res, resp, err := a.client.Firewall.Create(ctx, opts)
	if err != nil {
		return nil, resp, err
	}
	return &CreateResult[*hcloud.Firewall]{
		Resource: res.Firewall,
		Actions:  res.Actions,
	}, resp, nil
}

func (a *Agent) deleteFirewall(ctx context.Context, name string) error {
	return (&DeleteOperation[*hcloud.Firewall]{
		Name:         name,
		ResourceType: "firewall",
		Get:          a.client.Firewall.Get,
		Delete:       a.client.Firewall.Delete,
	}).Execute(ctx, a)
}
