package agent

import (
	"github.com/imamik/deployctl/internal/config"
	"github.com/imamik/deployctl/internal/localstate"
)

// Params carries everything an agent needs to act on one deployment.
type Params struct {
	Keyname      string
	Group        string
	Zone         string
	NetworkZone  string
	IPRange      string
	InstanceType string
	Image        string
	// SSHPublicKey is the OpenSSH authorized key installed on new instances.
	SSHPublicKey string
}

// ParamsFromConfig fills Params from the loaded configuration.
func ParamsFromConfig(cfg *config.Config, keyname string) Params {
	return Params{
		Keyname:      keyname,
		Group:        cfg.Group,
		Zone:         cfg.HCloud.Location,
		NetworkZone:  cfg.HCloud.NetworkZone,
		IPRange:      cfg.HCloud.IPRange,
		InstanceType: cfg.HCloud.ServerType,
		Image:        cfg.HCloud.Image,
	}
}

// Validate checks the fields every agent operation needs.
func (p Params) Validate() error {
	if err := localstate.ValidateKeyname(p.Keyname); err != nil {
		return err
	}
	if p.Group == "" {
		return config.Invalid("group", "is required", "set group in deployctl.yaml")
	}
	return nil
}

// ValidateForRun additionally checks the fields needed to start instances.
func (p Params) ValidateForRun() error {
	if err := p.Validate(); err != nil {
		return err
	}
	switch {
	case p.Zone == "":
		return config.Invalid("hcloud.location", "is required", "e.g. nbg1, fsn1, hel1")
	case p.InstanceType == "":
		return config.Invalid("hcloud.server_type", "is required", "e.g. cx22")
	case p.Image == "":
		return config.Invalid("hcloud.image", "is required", "e.g. ubuntu-24.04")
	case p.SSHPublicKey == "":
		return config.Invalid("ssh_public_key", "is required", "run deployctl up to generate one")
	}
	return nil
}
