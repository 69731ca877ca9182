package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/imamik/deployctl/internal/util/retry"
)

// DefaultConfigFilename is the default configuration filename.
const DefaultConfigFilename = "deployctl.yaml"

// InfrastructureXen names deployments on machines that no cloud agent manages.
const InfrastructureXen = "xen"

// Backoff strategy names accepted in retry.strategy.
const (
	StrategyFixed       = "fixed"
	StrategyExponential = "exponential"
)

// Config is the operator-side configuration for deployctl.
type Config struct {
	// StateDir is the directory holding every deployment's metadata files.
	StateDir string `yaml:"state_dir"`
	// Infrastructure is "xen" or the name of a registered cloud agent.
	Infrastructure string `yaml:"infrastructure"`
	// Group is the security group / label tag applied to cloud resources.
	Group string `yaml:"group"`
	// Table is the datastore the deployment runs.
	Table string `yaml:"table"`

	Retry  RetryConfig  `yaml:"retry"`
	HCloud HCloudConfig `yaml:"hcloud"`
	Backup BackupConfig `yaml:"backup"`
}

// RetryConfig controls the shell command executor.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
	Strategy    string        `yaml:"strategy"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

// HCloudConfig holds Hetzner Cloud agent settings.
type HCloudConfig struct {
	Token       string `yaml:"token"`
	Location    string `yaml:"location"`
	NetworkZone string `yaml:"network_zone"`
	IPRange     string `yaml:"ip_range"`
	ServerType  string `yaml:"server_type"`
	Image       string `yaml:"image"`
}

// BackupConfig holds S3-compatible object storage settings for metadata backups.
type BackupConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	// PathStyle addresses buckets as endpoint/bucket instead of bucket.endpoint.
	PathStyle bool `yaml:"path_style"`
}

// Enabled reports whether enough settings are present to reach object storage.
func (b BackupConfig) Enabled() bool {
	return b.Endpoint != "" && b.Bucket != "" && b.AccessKey != "" && b.SecretKey != ""
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		StateDir:       DefaultStateDir(),
		Infrastructure: InfrastructureXen,
		Group:          "deployctl",
		Table:          "cassandra",
		Retry: RetryConfig{
			MaxAttempts: retry.DefaultMaxAttempts,
			Delay:       retry.DefaultDelay,
			Strategy:    StrategyFixed,
			MaxDelay:    30 * time.Second,
		},
		HCloud: HCloudConfig{
			Location:    "nbg1",
			NetworkZone: "eu-central",
			IPRange:     "10.0.0.0/16",
			ServerType:  "cx22",
			Image:       "ubuntu-24.04",
		},
		Backup: BackupConfig{
			Region: "fsn1",
		},
	}
}

// DefaultStateDir returns ~/.deployctl, or a relative .deployctl when the
// home directory cannot be determined.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".deployctl"
	}
	return filepath.Join(home, ".deployctl")
}

// Backoff returns the retry strategy described by the configuration.
func (r RetryConfig) Backoff() retry.Backoff {
	if r.Strategy == StrategyExponential {
		return retry.Exponential(r.Delay, r.MaxDelay, 2.0)
	}
	return retry.Fixed(r.Delay)
}
