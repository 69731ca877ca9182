package hcloud

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/deployctl/internal/agent"
	"github.com/imamik/deployctl/internal/config"
	"github.com/imamik/deployctl/internal/util/retry"
)

// ProviderName is the infrastructure name the agent registers under.
const ProviderName = "hcloud"

const (
	defaultAttempts    = 5
	defaultParallelism = 5
)

// Agent implements agent.Agent on the Hetzner Cloud API.
type Agent struct {
	client      *hcloud.Client
	log         logr.Logger
	attempts    int
	backoff     retry.Backoff
	parallelism int
}

var _ agent.Agent = (*Agent)(nil)

// Option configures an Agent.
type Option func(*Agent)

// WithClient replaces the API client built from the token (useful for testing).
func WithClient(c *hcloud.Client) Option {
	return func(a *Agent) {
		a.client = c
	}
}

// WithLogger sets the progress logger.
func WithLogger(log logr.Logger) Option {
	return func(a *Agent) {
		a.log = log
	}
}

// WithRetry sets the attempt budget and backoff for retryable API calls.
func WithRetry(attempts int, backoff retry.Backoff) Option {
	return func(a *Agent) {
		a.attempts = attempts
		if backoff != nil {
			a.backoff = backoff
		}
	}
}

// WithParallelism caps how many servers are created or deleted at once.
func WithParallelism(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.parallelism = n
		}
	}
}

// NewAgent creates an agent authenticating with token.
func NewAgent(token string, opts ...Option) (*Agent, error) {
	if token == "" {
		return nil, config.Invalid("hcloud.token", "is required", "export HCLOUD_TOKEN")
	}
	a := &Agent{
		log:         logr.Discard(),
		attempts:    defaultAttempts,
		backoff:     retry.Exponential(time.Second, 30*time.Second, 2),
		parallelism: defaultParallelism,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.client == nil {
		a.client = hcloud.NewClient(hcloud.WithToken(token), hcloud.WithApplication("deployctl", ""))
	}
	a.log = a.log.WithName(ProviderName)
	return a, nil
}

// Name implements agent.Agent.
func (a *Agent) Name() string {
	return ProviderName
}

// Client returns the underlying API client.
func (a *Agent) Client() *hcloud.Client {
	return a.client
}

// AssertCredentials lists the available locations, which fails for an
// invalid token, and checks that the configured zone is one of them.
func (a *Agent) AssertCredentials(ctx context.Context, p agent.Params) error {
	locations, err := a.client.Location.All(ctx)
	if err != nil {
		if isUnauthorized(err) {
			return config.Invalid("hcloud.token", "was rejected by the API", "check HCLOUD_TOKEN")
		}
		return agent.ProviderError(ProviderName, "list locations", err)
	}
	if p.Zone == "" {
		return nil
	}

	names := make([]string, 0, len(locations))
	for _, loc := range locations {
		if loc.Name == p.Zone {
			return nil
		}
		names = append(names, loc.Name)
	}
	sort.Strings(names)
	return config.Invalid("hcloud.location",
		fmt.Sprintf("unknown location %q", p.Zone),
		"valid values: "+strings.Join(names, ", "))
}

// retry runs op with the agent's retry settings.
func (a *Agent) retry(ctx context.Context, op func() error) error {
	_, err := retry.Do(ctx, func(int) error { return op() },
		retry.WithMaxAttempts(a.attempts),
		retry.WithBackoff(a.backoff),
		retry.WithOnRetry(func(attempt int, err error, wait time.Duration) {
			a.log.V(1).Info("retrying API call", "attempt", attempt, "error", err.Error(), "wait", wait.String())
		}),
	)
	return err
}
