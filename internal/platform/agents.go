// Package platform binds the concrete infrastructure agents to the agent
// registry.
package platform

import (
	"github.com/go-logr/logr"

	"github.com/imamik/deployctl/internal/agent"
	"github.com/imamik/deployctl/internal/config"
	"github.com/imamik/deployctl/internal/platform/hcloud"
)

// Agents returns a registry holding every supported cloud agent, each
// configured from cfg. Constructors run lazily in Registry.New, so a
// missing token only fails when that agent is actually requested.
func Agents(cfg *config.Config, log logr.Logger) *agent.Registry {
	reg := agent.NewRegistry()
	reg.Register(hcloud.ProviderName, func() (agent.Agent, error) {
		return hcloud.NewAgent(cfg.HCloud.Token,
			hcloud.WithLogger(log),
			hcloud.WithRetry(cfg.Retry.MaxAttempts, cfg.Retry.Backoff()),
		)
	})
	return reg
}
