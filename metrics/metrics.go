package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Config of the Pushgateway the batch reports to when it finishes.
// An empty PushURL keeps metrics in-process only.
type Config struct {
	PushURL     string        `envconfig:"METRICS_PUSH_URL"`
	Job         string        `envconfig:"METRICS_JOB" default:"encourager"`
	PushTimeout time.Duration `envconfig:"METRICS_PUSH_TIMEOUT" default:"10s"`
}

type Metrics struct {
	config   Config
	gatherer prometheus.Gatherer
}

// InitDefault initialises the OpenTelemetry bridge and returns Metrics
// pushing the default registry.
func InitDefault(config Config) (*Metrics, error) {
	if err := InitPrometheus(); err != nil {
		return nil, errors.Wrap(err, "failed to init prometheus")
	}

	return New(config, prometheus.DefaultGatherer), nil
}

func New(config Config, gatherer prometheus.Gatherer) *Metrics {
	return &Metrics{
		config:   config,
		gatherer: gatherer,
	}
}

// Push replaces the job's metrics on the Pushgateway.
func (m *Metrics) Push(ctx context.Context) error {
	if m.config.PushURL == "" {
		return nil
	}

	if m.config.PushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.PushTimeout)
		defer cancel()
	}

	err := push.New(m.config.PushURL, m.config.Job).
		Gatherer(m.gatherer).
		PushContext(ctx)

	return errors.Wrapf(err, "failed to push metrics to %s", m.config.PushURL)
}

// Close pushes a final time. Errors are only logged, since a run that has
// already finished must not fail on reporting.
func (m *Metrics) Close() error {
	if err := m.Push(context.Background()); err != nil {
		slog.Default().Warn("metrics push failed", "error", err.Error())
	}
	return nil
}
