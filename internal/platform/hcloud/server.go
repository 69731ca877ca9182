package hcloud

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/deployctl/internal/agent"
	"github.com/imamik/deployctl/internal/util/async"
	"github.com/imamik/deployctl/internal/util/labels"
	"github.com/imamik/deployctl/internal/util/naming"
)

// deploymentSelector matches the servers of one deployment.
func deploymentSelector(p agent.Params) string {
	return labels.Selector(labels.New(p.Group).WithKeyname(p.Keyname).Build())
}

// RunInstances creates count servers for the deployment and waits until
// they are running. Names continue after the highest existing index so
// repeated calls add servers instead of colliding.
func (a *Agent) RunInstances(ctx context.Context, p agent.Params, count int) (*agent.Instances, error) {
	if err := p.ValidateForRun(); err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, fmt.Errorf("instance count must be at least 1, got %d", count)
	}

	opts, err := a.buildServerCreateOpts(ctx, p)
	if err != nil {
		return nil, agent.ProviderError(ProviderName, "run instances", err)
	}

	existing, err := a.listServers(ctx, deploymentSelector(p))
	if err != nil {
		return nil, agent.ProviderError(ProviderName, "run instances", err)
	}
	next := nextServerIndex(p.Keyname, existing)

	servers := make([]*hcloud.Server, count)
	tasks := make([]async.Task, count)
	for i := range count {
		serverOpts := opts
		serverOpts.Name = naming.Server(p.Keyname, next+i)
		tasks[i] = async.Task{
			Name: serverOpts.Name,
			Func: func(ctx context.Context) error {
				server, err := a.createServer(ctx, serverOpts)
				servers[i] = server
				return err
			},
		}
	}
	a.log.Info("creating servers", "count", count, "type", p.InstanceType, "location", p.Zone)
	if err := async.RunParallel(ctx, tasks, a.parallelism); err != nil {
		return nil, agent.ProviderError(ProviderName, "run instances", err)
	}

	out := &agent.Instances{}
	for _, s := range servers {
		out.Items = append(out.Items, toInstance(s))
	}
	return out, nil
}

// DescribeInstances lists the deployment's servers in node index order.
func (a *Agent) DescribeInstances(ctx context.Context, p agent.Params) (*agent.Instances, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	servers, err := a.listServers(ctx, deploymentSelector(p))
	if err != nil {
		return nil, agent.ProviderError(ProviderName, "describe instances", err)
	}

	out := &agent.Instances{Items: make([]agent.Instance, 0, len(servers))}
	for _, s := range servers {
		out.Items = append(out.Items, toInstance(s))
	}
	return out, nil
}

func (a *Agent) buildServerCreateOpts(ctx context.Context, p agent.Params) (hcloud.ServerCreateOpts, error) {
	serverType, _, err := a.client.ServerType.Get(ctx, p.InstanceType)
	if err != nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get server type: %w", err)
	}
	if serverType == nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("server type not found: %s", p.InstanceType)
	}

	image, _, err := a.client.Image.GetForArchitecture(ctx, p.Image, serverType.Architecture)
	if err != nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get image: %w", err)
	}
	if image == nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("image not found for %s: %s", serverType.Architecture, p.Image)
	}

	location, _, err := a.client.Location.Get(ctx, p.Zone)
	if err != nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get location: %w", err)
	}
	if location == nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("location not found: %s", p.Zone)
	}

	sshKey, _, err := a.client.SSHKey.Get(ctx, naming.SSHKey(p.Keyname))
	if err != nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get ssh key: %w", err)
	}
	if sshKey == nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("ssh key %s not found; configure security first", naming.SSHKey(p.Keyname))
	}

	var networks []*hcloud.Network
	if p.IPRange != "" {
		network, _, err := a.client.Network.Get(ctx, naming.Network(p.Group))
		if err != nil {
			return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get network: %w", err)
		}
		if network == nil {
			return hcloud.ServerCreateOpts{}, fmt.Errorf("network %s not found; configure security first", naming.Network(p.Group))
		}
		networks = append(networks, network)
	}

	return hcloud.ServerCreateOpts{
		ServerType: serverType,
		Image:      image,
		Location:   location,
		SSHKeys:    []*hcloud.SSHKey{sshKey},
		Networks:   networks,
		Labels:     labels.New(p.Group).WithKeyname(p.Keyname).Build(),
	}, nil
}

// createServer creates one server, retrying busy and transport errors,
// waits for its actions and reloads it so private addresses are present.
func (a *Agent) createServer(ctx context.Context, opts hcloud.ServerCreateOpts) (*hcloud.Server, error) {
	var result hcloud.ServerCreateResult
	err := a.retry(ctx, func() error {
		res, _, err := a.client.Server.Create(ctx, opts)
		if err != nil {
			return classify(err)
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	actions := append([]*hcloud.Action{result.Action}, result.NextActions...)
	if err := waitForActions(ctx, a.client, actions...); err != nil {
		return nil, fmt.Errorf("failed to wait for server creation: %w", err)
	}

	server, _, err := a.client.Server.GetByID(ctx, result.Server.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload server: %w", err)
	}
	if server == nil {
		return nil, errors.New("server disappeared after creation")
	}
	a.log.Info("created server", "name", server.Name, "id", server.ID)
	return server, nil
}

func (a *Agent) listServers(ctx context.Context, selector string) ([]*hcloud.Server, error) {
	servers, err := a.client.Server.AllWithOpts(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: selector},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	sortServers(servers)
	return servers, nil
}

// sortServers orders servers by deployment, then by node index. Names that
// do not follow the node naming scheme sort by plain name.
func sortServers(servers []*hcloud.Server) {
	sort.SliceStable(servers, func(i, j int) bool {
		ki, ni, oki := serverIndex(servers[i].Name)
		kj, nj, okj := serverIndex(servers[j].Name)
		if oki && okj {
			if ki != kj {
				return ki < kj
			}
			return ni < nj
		}
		return servers[i].Name < servers[j].Name
	})
}

// serverIndex splits a server name built by naming.Server into its keyname
// and node index.
func serverIndex(name string) (string, int, bool) {
	sep := strings.TrimSuffix(naming.Server("", 0), "0")
	i := strings.LastIndex(name, sep)
	if i < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(name[i+len(sep):])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return name[:i], n, true
}

// nextServerIndex returns one past the highest node index in use.
func nextServerIndex(keyname string, servers []*hcloud.Server) int {
	next := 0
	for _, s := range servers {
		k, n, ok := serverIndex(s.Name)
		if !ok || k != keyname {
			continue
		}
		if n+1 > next {
			next = n + 1
		}
	}
	return next
}

func toInstance(s *hcloud.Server) agent.Instance {
	in := agent.Instance{
		ID:     strconv.FormatInt(s.ID, 10),
		Name:   s.Name,
		Status: string(s.Status),
	}
	if ip := s.PublicNet.IPv4.IP; ip != nil {
		in.PublicIP = ip.String()
	}
	if len(s.PrivateNet) > 0 && s.PrivateNet[0].IP != nil {
		in.PrivateIP = s.PrivateNet[0].IP.String()
	}
	return in
}
