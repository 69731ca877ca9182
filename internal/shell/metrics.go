package shell

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Attempt outcomes and command results used as metric label values.
const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"

	resultSucceeded = "succeeded"
	resultExhausted = "exhausted"
	resultCancelled = "cancelled"
)

type metrics struct {
	attempts *prometheus.CounterVec
	commands *prometheus.CounterVec
	duration prometheus.Histogram
}

func newMetrics() *metrics {
	return &metrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "deployctl",
				Subsystem: "shell",
				Name:      "attempts_total",
				Help:      "Total number of command attempts by outcome",
			},
			[]string{"outcome"},
		),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "deployctl",
				Subsystem: "shell",
				Name:      "commands_total",
				Help:      "Total number of commands by final result",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "deployctl",
				Subsystem: "shell",
				Name:      "command_duration_seconds",
				Help:      "Wall time of a command including retries, in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
		),
	}
}

func (m *metrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.attempts, m.commands, m.duration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *metrics) recordAttempt(err error) {
	if err == nil {
		m.attempts.WithLabelValues(outcomeSuccess).Inc()
		return
	}
	m.attempts.WithLabelValues(outcomeFailure).Inc()
}

func (m *metrics) recordCommand(result string, elapsed time.Duration) {
	m.commands.WithLabelValues(result).Inc()
	m.duration.Observe(elapsed.Seconds())
}
