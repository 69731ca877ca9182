package hcloud

import (
	"context"
	"fmt"
	"net"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// ensureNetwork gets or creates the group's network and makes sure it has
// a cloud subnet covering ipRange in networkZone.
func (a *Agent) ensureNetwork(ctx context.Context, name, ipRange, networkZone string, labels map[string]string) (*hcloud.Network, bool, error) {
	_, ipNet, err := net.ParseCIDR(ipRange)
	if err != nil {
		return nil, false, fmt.Errorf("invalid network ip range %q: %w", ipRange, err)
	}

	network, created, err := (&EnsureOperation[*hcloud.Network, hcloud.NetworkCreateOpts, any]{
		Name:         name,
		ResourceType: "network",
		Get:          a.client.Network.Get,
		Create:       simpleCreate(a.client.Network.Create),
		Validate: func(network *hcloud.Network) error {
			if network.IPRange == nil || network.IPRange.String() != ipNet.String() {
				return fmt.Errorf("network %s exists with a different IP range (expected %s)", name, ipNet)
			}
			return nil
		},
		CreateOptsMapper: func() hcloud.NetworkCreateOpts {
			return hcloud.NetworkCreateOpts{
				Name:    name,
				IPRange: ipNet,
				Labels:  labels,
			}
		},
	}).Execute(ctx, a)
	if err != nil {
		return nil, false, err
	}

	subnetCreated, err := a.ensureSubnet(ctx, network, ipNet, networkZone)
	if err != nil {
		return nil, false, err
	}
	return network, created || subnetCreated, nil
}

func (a *Agent) ensureSubnet(ctx context.Context, network *hcloud.Network, ipNet *net.IPNet, networkZone string) (bool, error) {
	for _, subnet := range network.Subnets {
		if subnet.IPRange != nil && subnet.IPRange.String() == ipNet.String() {
			return false, nil
		}
	}

	action, _, err := a.client.Network.AddSubnet(ctx, network, hcloud.NetworkAddSubnetOpts{
		Subnet: hcloud.NetworkSubnet{
			Type:        hcloud.NetworkSubnetTypeCloud,
			IPRange:     ipNet,
			NetworkZone: hcloud.NetworkZone(networkZone),
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to add subnet to network %s: %w", network.Name, err)
	}
	if err := waitForActions(ctx, a.client, action); err != nil {
		return false, fmt.Errorf("failed to wait for subnet creation: %w", err)
	}
	return true, nil
}

func (a *Agent) deleteNetwork(ctx context.Context, name string) error {
	return (&DeleteOperation[*hcloud.Network]{
		Name:         name,
		ResourceType: "network",
		Get:          a.client.Network.Get,
		Delete:       a.client.Network.Delete,
	}).Execute(ctx, a)
}
