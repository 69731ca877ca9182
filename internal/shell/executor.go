package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/deployctl/internal/util/retry"
)

// Request describes one command execution.
type Request struct {
	Command string
	// Verbose logs every attempt and failure at the default level instead
	// of V(1).
	Verbose bool
	// MaxRetries is the total number of attempts. Values below 1 mean
	// retry.DefaultMaxAttempts.
	MaxRetries int
}

// Result is the outcome of a successful execution.
type Result struct {
	// Output is the stdout of the attempt that succeeded.
	Output   string
	Attempts int
}

// Executor runs commands with retries. It is safe for concurrent use as
// long as its Runner is.
type Executor struct {
	runner  Runner
	log     logr.Logger
	backoff retry.Backoff
	stderr  io.Writer
	metrics *metrics
	reg     prometheus.Registerer
}

// Option configures an Executor.
type Option func(*Executor)

// WithRunner replaces the SystemRunner.
func WithRunner(r Runner) Option {
	return func(e *Executor) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithLogger sets the logger used for attempt and failure messages.
func WithLogger(log logr.Logger) Option {
	return func(e *Executor) {
		e.log = log
	}
}

// WithBackoff sets the wait between failed attempts. The default is
// retry.Fixed(retry.DefaultDelay).
func WithBackoff(b retry.Backoff) Option {
	return func(e *Executor) {
		if b != nil {
			e.backoff = b
		}
	}
}

// WithStderr sets where command stderr is streamed. The default is os.Stderr.
func WithStderr(w io.Writer) Option {
	return func(e *Executor) {
		if w != nil {
			e.stderr = w
		}
	}
}

// WithRegisterer registers the executor's metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(e *Executor) {
		e.reg = reg
	}
}

// New creates an Executor. Metrics are always collected but only exposed
// when a registerer is supplied.
func New(opts ...Option) (*Executor, error) {
	e := &Executor{
		runner:  SystemRunner{},
		log:     logr.Discard(),
		backoff: retry.Fixed(retry.DefaultDelay),
		stderr:  os.Stderr,
		metrics: newMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithName("shell")

	if e.reg != nil {
		if err := e.metrics.register(e.reg); err != nil {
			return nil, fmt.Errorf("failed to register shell metrics: %w", err)
		}
	}
	return e, nil
}

// Run executes command until it succeeds or maxRetries attempts have been
// made, and returns the successful attempt's stdout.
func (e *Executor) Run(ctx context.Context, command string, verbose bool, maxRetries int) (string, error) {
	res, err := e.Execute(ctx, Request{Command: command, Verbose: verbose, MaxRetries: maxRetries})
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// Execute is Run with the attempt count exposed. Exhausting the attempt
// budget returns a *CommandFailedError; cancellation of ctx returns an
// error wrapping ctx.Err().
func (e *Executor) Execute(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Command) == "" {
		return nil, errors.New("empty command")
	}

	log := e.log.WithValues("command", req.Command)
	if !req.Verbose {
		log = log.V(1)
	}

	start := time.Now()
	var output string

	attempts, err := retry.Do(ctx, func(attempt int) error {
		if err := ctx.Err(); err != nil {
			return retry.Fatal(err)
		}
		log.Info("shell> "+req.Command, "attempt", attempt)

		out, runErr := e.runner.Run(ctx, req.Command, e.stderr)
		e.metrics.recordAttempt(runErr)
		if runErr != nil {
			if ctx.Err() != nil {
				return retry.Fatal(runErr)
			}
			return runErr
		}
		output = out
		return nil
	},
		retry.WithMaxAttempts(req.MaxRetries),
		retry.WithBackoff(e.backoff),
		retry.WithOnRetry(func(attempt int, err error, wait time.Duration) {
			log.Info("command failed, retrying", "attempt", attempt, "error", err.Error(), "wait", wait.String())
		}),
	)

	switch {
	case err == nil:
		e.metrics.recordCommand(resultSucceeded, time.Since(start))
		return &Result{Output: output, Attempts: attempts}, nil

	case ctx.Err() != nil:
		e.metrics.recordCommand(resultCancelled, time.Since(start))
		return nil, fmt.Errorf("command %q cancelled after %d attempts: %w", req.Command, attempts, ctx.Err())

	default:
		e.metrics.recordCommand(resultExhausted, time.Since(start))
		last := err
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			last = exhausted.Last
		}
		log.Info("command failed, giving up", "attempts", attempts, "error", last.Error())
		return nil, &CommandFailedError{Command: req.Command, Attempts: attempts, LastErr: last}
	}
}
