package config

import (
	"os"
	"strconv"
	"time"
)

// ApplyEnv overrides configuration values from environment variables.
// Unset or unparsable variables leave the current value in place.
//
// Environment Variables:
//   - DEPLOYCTL_STATE_DIR
//   - DEPLOYCTL_INFRASTRUCTURE
//   - DEPLOYCTL_RETRY_ATTEMPTS
//   - DEPLOYCTL_RETRY_DELAY
//   - HCLOUD_TOKEN
//   - DEPLOYCTL_S3_ENDPOINT, DEPLOYCTL_S3_REGION, DEPLOYCTL_S3_BUCKET,
//     DEPLOYCTL_S3_ACCESS_KEY, DEPLOYCTL_S3_SECRET_KEY, DEPLOYCTL_S3_PATH_STYLE
func ApplyEnv(cfg *Config) {
	cfg.StateDir = parseString("DEPLOYCTL_STATE_DIR", cfg.StateDir)
	cfg.Infrastructure = parseString("DEPLOYCTL_INFRASTRUCTURE", cfg.Infrastructure)
	cfg.Retry.MaxAttempts = parseInt("DEPLOYCTL_RETRY_ATTEMPTS", cfg.Retry.MaxAttempts)
	cfg.Retry.Delay = parseDuration("DEPLOYCTL_RETRY_DELAY", cfg.Retry.Delay)
	cfg.HCloud.Token = parseString("HCLOUD_TOKEN", cfg.HCloud.Token)
	cfg.Backup.Endpoint = parseString("DEPLOYCTL_S3_ENDPOINT", cfg.Backup.Endpoint)
	cfg.Backup.Region = parseString("DEPLOYCTL_S3_REGION", cfg.Backup.Region)
	cfg.Backup.Bucket = parseString("DEPLOYCTL_S3_BUCKET", cfg.Backup.Bucket)
	cfg.Backup.AccessKey = parseString("DEPLOYCTL_S3_ACCESS_KEY", cfg.Backup.AccessKey)
	cfg.Backup.SecretKey = parseString("DEPLOYCTL_S3_SECRET_KEY", cfg.Backup.SecretKey)
	cfg.Backup.PathStyle = parseBool("DEPLOYCTL_S3_PATH_STYLE", cfg.Backup.PathStyle)
}

func parseString(envVar, defaultVal string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultVal
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

func parseBool(envVar string, defaultVal bool) bool {
	b, err := strconv.ParseBool(os.Getenv(envVar))
	if err != nil {
		return defaultVal
	}
	return b
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
