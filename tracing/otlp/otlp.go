package otlp

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"

	"github.com/pure-golang/encourager/tracing"
)

var _ tracing.Provider = (*Provider)(nil)

// Config of the OTLP/HTTP collector. Tracing is off while Endpoint is empty.
type Config struct {
	Endpoint     string        `envconfig:"TRACING_ENDPOINT"`
	ServiceName  string        `envconfig:"SERVICE_NAME" default:"encourager"`
	AppVersion   string        `envconfig:"APP_VERSION" default:"dev"`
	FlushTimeout time.Duration `envconfig:"TRACING_FLUSH_TIMEOUT" default:"5s"`
}

func (c Config) Enabled() bool {
	return c.Endpoint != ""
}

// Provider extends tracesdk.TracerProvider with an OTLP exporter.
type Provider struct {
	*tracesdk.TracerProvider
	flushTimeout time.Duration
}

// Close flushes the batch of the finished run, then shuts the exporter down.
func (p *Provider) Close() error {
	ctx := context.Background()
	if p.flushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.flushTimeout)
		defer cancel()
	}

	if err := p.ForceFlush(ctx); err != nil {
		if shutdownErr := p.TracerProvider.Shutdown(ctx); shutdownErr != nil {
			return errors.Wrapf(err, "otlp force flush failed (also shutdown failed: %v)", shutdownErr)
		}
		return errors.Wrap(err, "otlp force flush failed")
	}

	return errors.Wrap(p.TracerProvider.Shutdown(ctx), "shutdown otlp")
}

func NewProviderBuilder(conf Config) tracing.ProviderBuilder {
	return func() (tracing.Provider, error) {
		if conf.Endpoint == "" {
			return nil, errors.New("empty tracing endpoint")
		}
		if conf.ServiceName == "" {
			return nil, errors.New("service name is empty")
		}

		exp, err := otlptrace.New(
			context.Background(),
			otlptracehttp.NewClient(
				otlptracehttp.WithEndpointURL(conf.Endpoint),
			),
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create otlp exporter")
		}

		tp := tracesdk.NewTracerProvider(
			tracesdk.WithBatcher(exp),
			tracesdk.WithResource(resource.NewSchemaless(
				attribute.String("service.name", conf.ServiceName),
				attribute.String("service.version", conf.AppVersion),
			)),
			tracesdk.WithSampler(tracesdk.AlwaysSample()),
		)

		return &Provider{TracerProvider: tp, flushTimeout: conf.FlushTimeout}, nil
	}
}
