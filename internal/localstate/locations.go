package localstate

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/imamik/deployctl/internal/config"
)

// Locations is the scalar metadata describing a deployment's entry point
// and topology summary.
type Locations struct {
	LoadBalancer   string   `yaml:"load_balancer"`
	InstanceID     string   `yaml:"instance_id"`
	Table          string   `yaml:"table,omitempty"`
	Secret         string   `yaml:"secret,omitempty"`
	DBMaster       string   `yaml:"db_master"`
	IPs            []string `yaml:"ips"`
	Infrastructure string   `yaml:"infrastructure"`
	Group          string   `yaml:"group"`
}

// EnsureNotRunning fails with ErrAlreadyRunning when a locations record
// exists for keyname, unless force is set.
func (s *Store) EnsureNotRunning(keyname string, force bool) error {
	if force {
		return nil
	}
	if err := ValidateKeyname(keyname); err != nil {
		return err
	}
	if exists(s.locationsYAMLPath(keyname)) {
		return fmt.Errorf("%w: %s; terminate it or use --force to run anyway", ErrAlreadyRunning, keyname)
	}
	return nil
}

// WriteLocations persists the locations record as YAML and the node roster
// as JSON. The roster is written first so that a present locations file
// always has a roster next to it. Empty Infrastructure becomes "xen", empty
// IPs are derived from the roster and an empty Secret is filled from the
// stored secret when one exists.
func (s *Store) WriteLocations(keyname string, loc Locations, roster Roster) error {
	if err := ValidateKeyname(keyname); err != nil {
		return err
	}
	if err := roster.Validate(); err != nil {
		return err
	}

	if loc.Infrastructure == "" {
		loc.Infrastructure = config.InfrastructureXen
	}
	if len(loc.IPs) == 0 {
		loc.IPs = roster.PublicIPs()
	}
	if loc.Secret == "" {
		secret, err := s.Secret(keyname)
		switch {
		case err == nil:
			loc.Secret = secret
		case !errors.Is(err, ErrNotFound):
			return err
		}
	}

	yamlData, err := yaml.Marshal(loc)
	if err != nil {
		return fmt.Errorf("failed to encode locations: %w", err)
	}
	if roster == nil {
		roster = Roster{}
	}
	jsonData, err := json.Marshal(roster)
	if err != nil {
		return fmt.Errorf("failed to encode node roster: %w", err)
	}

	if err := s.ensureRoot(); err != nil {
		return err
	}
	unlock, err := s.Lock(keyname)
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	if err := s.write(s.locationsJSONPath(keyname), jsonData, privatePerm); err != nil {
		return err
	}
	return s.write(s.locationsYAMLPath(keyname), yamlData, privatePerm)
}

// ReadLocations loads the locations record for keyname.
func (s *Store) ReadLocations(keyname string) (*Locations, error) {
	if err := ValidateKeyname(keyname); err != nil {
		return nil, err
	}
	path := s.locationsYAMLPath(keyname)
	data, err := readFile("locations", path)
	if err != nil {
		return nil, err
	}
	var loc Locations
	if err := yaml.Unmarshal(data, &loc); err != nil {
		return nil, corrupt("locations", path, err)
	}
	return &loc, nil
}

// Infrastructure returns the provisioning backend that produced keyname's
// deployment, "xen" for machines no cloud agent manages.
func (s *Store) Infrastructure(keyname string) (string, error) {
	loc, err := s.ReadLocations(keyname)
	if err != nil {
		return "", err
	}
	return loc.Infrastructure, nil
}

// Group returns the security group / tag name of keyname's deployment.
func (s *Store) Group(keyname string) (string, error) {
	loc, err := s.ReadLocations(keyname)
	if err != nil {
		return "", err
	}
	return loc.Group, nil
}
