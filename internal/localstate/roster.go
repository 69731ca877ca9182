package localstate

import (
	"encoding/json"
	"fmt"
	"slices"

	"sigs.k8s.io/yaml"

	"github.com/imamik/deployctl/internal/config"
)

// Well-known role names.
const (
	RoleLoadBalancer = "load_balancer"
	RoleDBMaster     = "db_master"
	RoleLogin        = "login"
	RoleCompute      = "compute"
)

// Node is one machine in a deployment and the roles ("jobs") it performs.
type Node struct {
	PublicIP   string   `json:"public_ip"`
	PrivateIP  string   `json:"private_ip"`
	Jobs       []string `json:"jobs"`
	InstanceID string   `json:"instance_id,omitempty"`
}

// HasRole reports whether the node performs role.
func (n Node) HasRole(role string) bool {
	return slices.Contains(n.Jobs, role)
}

// Roster is the ordered list of nodes in a deployment. A node may hold
// several roles and a role may be hosted by several nodes.
type Roster []Node

// HostWithRole returns the public address of the first node performing role.
func (r Roster) HostWithRole(role string) (string, bool) {
	for _, node := range r {
		if node.HasRole(role) {
			return node.PublicIP, true
		}
	}
	return "", false
}

// PublicIPs returns every node's public address in roster order.
func (r Roster) PublicIPs() []string {
	ips := make([]string, 0, len(r))
	for _, node := range r {
		ips = append(ips, node.PublicIP)
	}
	return ips
}

// Validate rejects nodes without a public address.
func (r Roster) Validate() error {
	for i, node := range r {
		if node.PublicIP == "" {
			return config.Invalid(fmt.Sprintf("nodes[%d].public_ip", i), "is required", "")
		}
	}
	return nil
}

// ParseLayout reads a roster from a YAML or JSON node layout file.
func ParseLayout(data []byte) (Roster, error) {
	var roster Roster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("failed to parse node layout: %w", err)
	}
	if len(roster) == 0 {
		return nil, config.Invalid("layout", "must list at least one node", "")
	}
	for i := range roster {
		if roster[i].PrivateIP == "" {
			roster[i].PrivateIP = roster[i].PublicIP
		}
		if len(roster[i].Jobs) == 0 {
			return nil, config.Invalid(fmt.Sprintf("nodes[%d].jobs", i), "must list at least one role", "")
		}
	}
	if err := roster.Validate(); err != nil {
		return nil, err
	}
	return roster, nil
}

// ReadNodeRoster loads the node roster for keyname.
func (s *Store) ReadNodeRoster(keyname string) (Roster, error) {
	if err := ValidateKeyname(keyname); err != nil {
		return nil, err
	}
	path := s.locationsJSONPath(keyname)
	data, err := readFile("node roster", path)
	if err != nil {
		return nil, err
	}
	var roster Roster
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, corrupt("node roster", path, err)
	}
	return roster, nil
}

// HostWithRole returns the public address of the first node in keyname's
// roster that performs role, or a RoleNotFoundError.
func (s *Store) HostWithRole(keyname, role string) (string, error) {
	roster, err := s.ReadNodeRoster(keyname)
	if err != nil {
		return "", err
	}
	host, ok := roster.HostWithRole(role)
	if !ok {
		return "", &RoleNotFoundError{Keyname: keyname, Role: role}
	}
	return host, nil
}

// LoginHost returns the host running the login service.
func (s *Store) LoginHost(keyname string) (string, error) {
	return s.HostWithRole(keyname, RoleLogin)
}
