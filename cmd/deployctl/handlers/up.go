package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/imamik/deployctl/internal/agent"
	"github.com/imamik/deployctl/internal/config"
	"github.com/imamik/deployctl/internal/localstate"
	"github.com/imamik/deployctl/internal/util/async"
	"github.com/imamik/deployctl/internal/util/netutil"
)

// UpOptions are the flags of the up command.
type UpOptions struct {
	Keyname string
	// Layout is a YAML or JSON node layout file. Required for xen.
	Layout string
	// Count is the number of cloud instances started when no layout is given.
	Count int
	Force bool
	// Wait blocks until every node accepts SSH connections.
	Wait bool
}

// UpResult describes a freshly recorded deployment.
type UpResult struct {
	Keyname        string            `json:"keyname"`
	Infrastructure string            `json:"infrastructure"`
	LoadBalancer   string            `json:"load_balancer"`
	Nodes          localstate.Roster `json:"nodes"`
	Params         map[string]string `json:"params"`
}

// Up records a new deployment: it generates the deployment's secret and
// TLS identity, starts cloud instances when the configured infrastructure
// is a cloud, and writes the locations files.
func Up(ctx context.Context, g Globals, opts UpOptions) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	if err := s.store.EnsureNotRunning(opts.Keyname, opts.Force); err != nil {
		return err
	}

	var layout localstate.Roster
	if opts.Layout != "" {
		// #nosec G304
		data, err := os.ReadFile(opts.Layout)
		if err != nil {
			return fmt.Errorf("failed to read node layout: %w", err)
		}
		if layout, err = localstate.ParseLayout(data); err != nil {
			return err
		}
	}

	cloud := s.cfg.Infrastructure != config.InfrastructureXen
	if !cloud && layout == nil {
		return config.Invalid("layout", "is required when infrastructure is xen", "pass --layout nodes.yaml")
	}

	secret, err := s.store.GenerateSecret(opts.Keyname)
	if err != nil {
		return err
	}
	if _, err := s.store.GenerateTLSIdentity(opts.Keyname); err != nil {
		return err
	}

	roster := layout
	if cloud {
		roster, err = provision(ctx, s, opts, layout)
		if err != nil {
			return err
		}
	}

	if opts.Wait {
		if err := waitForNodes(ctx, roster); err != nil {
			return fmt.Errorf("nodes did not become reachable: %w", err)
		}
	}

	loc := locationsFor(s.cfg, roster)
	if err := s.store.WriteLocations(opts.Keyname, loc, roster); err != nil {
		return err
	}

	params, err := deploymentParams(s.cfg, opts.Keyname, roster, secret)
	if err != nil {
		return err
	}
	result := UpResult{
		Keyname:        opts.Keyname,
		Infrastructure: s.cfg.Infrastructure,
		LoadBalancer:   loc.LoadBalancer,
		Nodes:          roster,
		Params:         localstate.MaskSensitive(params),
	}
	if g.JSON {
		return printJSON(result)
	}

	printHeader("deployctl deployment: " + opts.Keyname)
	printField("infrastructure", result.Infrastructure)
	printField("load balancer", result.LoadBalancer)
	printSection("Nodes")
	for _, node := range roster {
		printField(node.PublicIP, strings.Join(node.Jobs, ", "))
	}
	printSection("Parameters")
	printFields(result.Params)
	fmt.Fprintln(stdout)
	return nil
}

// provision starts the deployment's cloud instances and returns their roster.
func provision(ctx context.Context, s *session, opts UpOptions, layout localstate.Roster) (localstate.Roster, error) {
	a, err := s.agentFor(s.cfg.Infrastructure)
	if err != nil {
		return nil, err
	}

	params := agent.ParamsFromConfig(s.cfg, opts.Keyname)
	if err := a.AssertCredentials(ctx, params); err != nil {
		return nil, err
	}

	publicKey, err := s.store.GenerateSSHKey(opts.Keyname)
	if err != nil {
		return nil, err
	}
	params.SSHPublicKey = strings.TrimSpace(string(publicKey))

	if _, err := a.ConfigureSecurity(ctx, params); err != nil {
		return nil, err
	}

	count := opts.Count
	if layout != nil {
		count = len(layout)
	}
	s.log.Info("starting instances", "infrastructure", a.Name(), "count", count)
	instances, err := a.RunInstances(ctx, params, count)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'deployctl down --keyname %s' to remove partially created resources)", err, opts.Keyname)
	}
	return assignRoles(instances, layout), nil
}

// assignRoles maps instances onto the layout's roles in order. Without a
// layout the first instance hosts the entry point and the datastore master
// and the rest are compute nodes.
func assignRoles(instances *agent.Instances, layout localstate.Roster) localstate.Roster {
	privateIPs := instances.PrivateIPs()
	roster := make(localstate.Roster, 0, len(instances.Items))
	for i, inst := range instances.Items {
		var jobs []string
		switch {
		case i < len(layout):
			jobs = layout[i].Jobs
		case i == 0:
			jobs = []string{localstate.RoleLoadBalancer, localstate.RoleDBMaster, localstate.RoleLogin}
		default:
			jobs = []string{localstate.RoleCompute}
		}
		roster = append(roster, localstate.Node{
			PublicIP:   inst.PublicIP,
			PrivateIP:  privateIPs[i],
			Jobs:       jobs,
			InstanceID: inst.ID,
		})
	}
	return roster
}

func waitForNodes(ctx context.Context, roster localstate.Roster) error {
	tasks := make([]async.Task, 0, len(roster))
	for _, node := range roster {
		tasks = append(tasks, async.Task{
			Name: node.PublicIP,
			Func: func(ctx context.Context) error {
				return waitForPort(ctx, node.PublicIP, netutil.SSHPort, netutil.SSHWaitTimeout)
			},
		})
	}
	return async.RunParallel(ctx, tasks, 0)
}

// locationsFor derives the locations record from the roster. The instance
// ID is the load balancer's. Rosters without an explicit load balancer or
// datastore master role leave the first node in charge.
func locationsFor(cfg *config.Config, roster localstate.Roster) localstate.Locations {
	var lbNode localstate.Node
	if len(roster) > 0 {
		lbNode = roster[0]
	}
	for _, node := range roster {
		if node.HasRole(localstate.RoleLoadBalancer) {
			lbNode = node
			break
		}
	}
	first := ""
	if len(roster) > 0 {
		first = roster[0].PublicIP
	}
	db, ok := roster.HostWithRole(localstate.RoleDBMaster)
	if !ok {
		db = first
	}
	return localstate.Locations{
		LoadBalancer:   lbNode.PublicIP,
		InstanceID:     lbNode.InstanceID,
		Table:          cfg.Table,
		DBMaster:       db,
		Infrastructure: cfg.Infrastructure,
		Group:          cfg.Group,
	}
}

// deploymentParams is the flat record handed to the deployment's first
// node. Cloud settings are only present for cloud deployments.
func deploymentParams(cfg *config.Config, keyname string, roster localstate.Roster, secret string) (map[string]string, error) {
	ips, err := json.Marshal(roster)
	if err != nil {
		return nil, fmt.Errorf("failed to encode node roster: %w", err)
	}
	hostname := ""
	if len(roster) > 0 {
		hostname = roster[0].PublicIP
	}

	params := map[string]string{
		"keyname":  keyname,
		"table":    cfg.Table,
		"hostname": hostname,
		"ips":      string(ips),
		"group":    cfg.Group,
		"secret":   secret,
		"nodes":    strconv.Itoa(len(roster)),
	}
	if cfg.Infrastructure != config.InfrastructureXen {
		params["infrastructure"] = cfg.Infrastructure
		params["machine"] = cfg.HCloud.Image
		params["instance_type"] = cfg.HCloud.ServerType
		params["zone"] = cfg.HCloud.Location
		params["hcloud_token"] = cfg.HCloud.Token
	}
	return params, nil
}
