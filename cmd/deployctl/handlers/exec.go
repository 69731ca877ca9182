package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/deployctl/internal/localstate"
	"github.com/imamik/deployctl/internal/shell"
)

// ExecOptions are the flags of the exec command.
type ExecOptions struct {
	Command string
	// Keyname selects a deployment; empty runs the command locally.
	Keyname string
	// Role picks the node within the deployment; defaults to login.
	Role string
	// Retries overrides retry.max_attempts from the configuration.
	Retries int
	// MetricsFile receives the executor's metrics in Prometheus text format.
	MetricsFile string
}

// ExecResult is the JSON output of the exec command.
type ExecResult struct {
	Host     string `json:"host,omitempty"`
	Output   string `json:"output"`
	Attempts int    `json:"attempts"`
}

// Exec runs a command with retries, locally or on a deployment node.
func Exec(ctx context.Context, g Globals, opts ExecOptions) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}

	runner := localRunner
	host := ""
	if opts.Keyname != "" {
		host, runner, err = remoteRunner(s, opts.Keyname, opts.Role)
		if err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	executor, err := shell.New(
		shell.WithRunner(runner),
		shell.WithLogger(s.log),
		shell.WithBackoff(s.cfg.Retry.Backoff()),
		shell.WithStderr(stderr),
		shell.WithRegisterer(reg),
	)
	if err != nil {
		return err
	}

	retries := opts.Retries
	if retries <= 0 {
		retries = s.cfg.Retry.MaxAttempts
	}
	res, err := executor.Execute(ctx, shell.Request{Command: opts.Command, Verbose: g.Verbose, MaxRetries: retries})

	if opts.MetricsFile != "" {
		if werr := prometheus.WriteToTextfile(opts.MetricsFile, reg); werr != nil {
			s.log.Error(werr, "failed to write metrics", "path", opts.MetricsFile)
		}
	}
	if err != nil {
		return err
	}

	if g.JSON {
		return printJSON(ExecResult{Host: host, Output: res.Output, Attempts: res.Attempts})
	}
	_, err = fmt.Fprint(stdout, res.Output)
	return err
}

// remoteRunner connects to the node holding role with the deployment's
// SSH key.
func remoteRunner(s *session, keyname, role string) (string, shell.Runner, error) {
	if role == "" {
		role = localstate.RoleLogin
	}
	host, err := s.store.HostWithRole(keyname, role)
	if err != nil {
		return "", nil, err
	}
	keyPath, err := s.store.SSHKeyPath(keyname)
	if err != nil {
		return "", nil, err
	}
	// #nosec G304
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read SSH key: %w", err)
	}
	runner, err := newRemoteRunner(host, key)
	if err != nil {
		return "", nil, err
	}
	return host, runner, nil
}
