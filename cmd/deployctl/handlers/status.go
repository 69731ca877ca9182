package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/deployctl/internal/agent"
	"github.com/imamik/deployctl/internal/config"
	"github.com/imamik/deployctl/internal/localstate"
	"github.com/imamik/deployctl/internal/util/async"
	"github.com/imamik/deployctl/internal/util/netutil"
)

const probeParallelism = 10

// NodeStatus is one node of a deployment as seen from the operator machine.
type NodeStatus struct {
	PublicIP  string   `json:"public_ip"`
	PrivateIP string   `json:"private_ip"`
	Roles     []string `json:"roles"`
	Reachable bool     `json:"reachable"`
	// State is the provider's instance status; empty for xen.
	State string `json:"state,omitempty"`
}

// StatusReport is the output of the status command.
type StatusReport struct {
	Keyname   string            `json:"keyname"`
	Locations map[string]string `json:"locations"`
	Nodes     []NodeStatus      `json:"nodes"`
}

// Status shows the recorded deployment and probes each node's SSH port.
// Secrets in the locations record are masked.
func Status(ctx context.Context, g Globals, keyname string) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}

	loc, err := s.store.ReadLocations(keyname)
	if err != nil {
		return err
	}
	roster, err := s.store.ReadNodeRoster(keyname)
	if err != nil {
		return err
	}

	report := StatusReport{
		Keyname:   keyname,
		Locations: localstate.MaskSensitive(locationsRecord(loc)),
		Nodes:     make([]NodeStatus, len(roster)),
	}
	for i, node := range roster {
		report.Nodes[i] = NodeStatus{PublicIP: node.PublicIP, PrivateIP: node.PrivateIP, Roles: node.Jobs}
	}

	if loc.Infrastructure != config.InfrastructureXen {
		states, err := instanceStates(ctx, s, loc, keyname)
		if err != nil {
			s.log.Info("could not describe instances", "infrastructure", loc.Infrastructure, "error", err.Error())
		}
		for i, node := range roster {
			report.Nodes[i].State = states[node.InstanceID]
		}
	}

	tasks := make([]async.Task, 0, len(roster))
	for i, node := range roster {
		tasks = append(tasks, async.Task{
			Name: node.PublicIP,
			Func: func(ctx context.Context) error {
				report.Nodes[i].Reachable = portOpen(ctx, node.PublicIP, netutil.SSHPort)
				return nil
			},
		})
	}
	if err := async.RunParallel(ctx, tasks, probeParallelism); err != nil {
		return err
	}

	if g.JSON {
		return printJSON(report)
	}

	printHeader("deployctl deployment: " + keyname)
	printFields(report.Locations)
	printSection("Nodes")
	for _, node := range report.Nodes {
		extra := strings.Join(node.Roles, ", ")
		if node.State != "" {
			extra += " (" + node.State + ")"
		}
		printCheck(node.PublicIP, node.Reachable, extra)
	}
	fmt.Fprintln(stdout)
	return nil
}

// instanceStates maps instance IDs to provider status.
func instanceStates(ctx context.Context, s *session, loc *localstate.Locations, keyname string) (map[string]string, error) {
	a, err := s.agentFor(loc.Infrastructure)
	if err != nil {
		return nil, err
	}
	params := agent.ParamsFromConfig(s.cfg, keyname)
	if loc.Group != "" {
		params.Group = loc.Group
	}
	instances, err := a.DescribeInstances(ctx, params)
	if err != nil {
		return nil, err
	}
	states := make(map[string]string, len(instances.Items))
	for _, inst := range instances.Items {
		states[inst.ID] = inst.Status
	}
	return states, nil
}

func locationsRecord(loc *localstate.Locations) map[string]string {
	record := map[string]string{
		"load_balancer":  loc.LoadBalancer,
		"db_master":      loc.DBMaster,
		"infrastructure": loc.Infrastructure,
		"group":          loc.Group,
		"ips":            strings.Join(loc.IPs, ", "),
	}
	if loc.InstanceID != "" {
		record["instance_id"] = loc.InstanceID
	}
	if loc.Table != "" {
		record["table"] = loc.Table
	}
	if loc.Secret != "" {
		record["secret"] = loc.Secret
	}
	return record
}
