// Package config defines the operator-side configuration for deployctl.
//
// The [Config] struct is read from deployctl.yaml, overridden from
// environment variables by [ApplyEnv] and checked by [Config.Validate].
// Invalid settings are reported as [ConfigurationError] values carrying a
// remediation hint.
package config
