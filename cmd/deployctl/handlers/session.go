// Package handlers implements the business logic behind each CLI command.
//
// Collaborators that touch the network, the filesystem outside the state
// directory or the terminal are package-level variables so tests can
// replace them.
package handlers

import (
	"context"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/imamik/deployctl/internal/agent"
	"github.com/imamik/deployctl/internal/config"
	"github.com/imamik/deployctl/internal/localstate"
	"github.com/imamik/deployctl/internal/platform"
	"github.com/imamik/deployctl/internal/platform/s3"
	"github.com/imamik/deployctl/internal/platform/ssh"
	"github.com/imamik/deployctl/internal/shell"
	"github.com/imamik/deployctl/internal/util/netutil"
	"github.com/imamik/deployctl/internal/util/prerequisites"
)

// Globals carries the root command's persistent flags.
type Globals struct {
	ConfigPath string
	StateDir   string
	Verbose    bool
	JSON       bool
}

// objectStore is the part of the S3 client the backup commands use.
type objectStore interface {
	localstate.ObjectStore
	EnsureBucket(ctx context.Context, bucket string) error
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

// Factory function variables - can be replaced in tests.
var (
	loadConfig = config.Load

	newAgents = func(cfg *config.Config, log logr.Logger) *agent.Registry {
		return platform.Agents(cfg, log)
	}

	newObjectStore = func(ctx context.Context, b config.BackupConfig) (objectStore, error) {
		client, err := s3.FromConfig(ctx, b)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	newRemoteRunner = func(host string, privateKey []byte) (shell.Runner, error) {
		client, err := ssh.NewClient(ssh.Config{Host: host, PrivateKey: privateKey})
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	localRunner shell.Runner = shell.SystemRunner{}

	portOpen    = netutil.PortOpen
	waitForPort = netutil.WaitForPort
	checkTools  = prerequisites.CheckAll

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	isInteractiveTTY = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
)

// session is the state every command starts from.
type session struct {
	cfg   *config.Config
	store *localstate.Store
	log   logr.Logger
	g     Globals
}

func newSession(g Globals) (*session, error) {
	cfg, err := loadConfig(g.ConfigPath)
	if err != nil {
		return nil, err
	}
	if g.StateDir != "" {
		cfg.StateDir = g.StateDir
	}

	log := newLogger(g.Verbose)
	store, err := localstate.New(localstate.Options{RootDir: cfg.StateDir, Logger: log})
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, store: store, log: log, g: g}, nil
}

// agentFor builds the agent registered as infrastructure.
func (s *session) agentFor(infrastructure string) (agent.Agent, error) {
	return newAgents(s.cfg, s.log).New(infrastructure)
}

// newLogger writes human-readable log lines to stderr; --verbose enables
// debug output.
func newLogger(verbose bool) logr.Logger {
	opts := zap.Options{
		Development: verbose,
		DestWriter:  stderr,
	}
	return zap.New(zap.UseFlagOptions(&opts), zap.ConsoleEncoder())
}
