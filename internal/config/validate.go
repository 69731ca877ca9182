package config

import (
	"fmt"
	"net"
)

// Validate checks the configuration and returns a ConfigurationError
// describing the first problem found.
func (c *Config) Validate() error {
	if c.StateDir == "" {
		return Invalid("state_dir", "must not be empty", "set state_dir or DEPLOYCTL_STATE_DIR")
	}
	if c.Infrastructure == "" {
		return Invalid("infrastructure", "must not be empty", fmt.Sprintf("use %q for machines you manage yourself", InfrastructureXen))
	}
	if c.Retry.MaxAttempts < 1 {
		return Invalid("retry.max_attempts", fmt.Sprintf("must be at least 1, got %d", c.Retry.MaxAttempts), "")
	}
	if c.Retry.Delay < 0 {
		return Invalid("retry.delay", "must not be negative", "")
	}
	switch c.Retry.Strategy {
	case StrategyFixed, StrategyExponential:
	default:
		return Invalid("retry.strategy", fmt.Sprintf("unknown strategy %q", c.Retry.Strategy),
			fmt.Sprintf("use %q or %q", StrategyFixed, StrategyExponential))
	}
	if c.HCloud.IPRange != "" {
		if _, _, err := net.ParseCIDR(c.HCloud.IPRange); err != nil {
			return Invalid("hcloud.ip_range", fmt.Sprintf("invalid CIDR %q", c.HCloud.IPRange), "")
		}
	}
	return nil
}
