package metrics

import (
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// InitPrometheus routes OpenTelemetry meters, Go runtime statistics
// included, into the default Prometheus registry so they are pushed
// together with the campaign counters.
func InitPrometheus() error {
	exporter, err := prometheus.New(prometheus.WithoutScopeInfo())
	if err != nil {
		return errors.Wrap(err, "failed to create prometheus exporter")
	}
	provider := metric.NewMeterProvider(metric.WithReader(exporter))

	otel.SetMeterProvider(provider)

	if err := runtime.Start(runtime.WithMeterProvider(provider)); err != nil {
		return errors.Wrap(err, "failed to start runtime instrumentation")
	}

	return nil
}
