package telemetry

import (
	"context"
	"fmt"
	"time"

	"go-vaccination-booking/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
)

// Provider holds the OpenTelemetry providers
type Provider struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
}

// Init sets up tracing and Prometheus-backed metrics and installs them as
// the global providers. Domain counters created before Init start
// recording once it returns.
func Init(ctx context.Context, app config.AppConfig, cfg config.TelemetryConfig) (*Provider, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(app.Name),
			semconv.DeploymentEnvironmentName(app.Env),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tracerProvider, err := initTracing(ctx, res, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	meterProvider, err := initMetrics(res)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Provider{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
	}, nil
}

func initTracing(ctx context.Context, res *resource.Resource, cfg config.TelemetryConfig) (*trace.TracerProvider, error) {
	samplingRate := cfg.SamplingRate
	if samplingRate <= 0 {
		samplingRate = 1.0
	}

	tp := trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(samplingRate)),
	)

	// Spans are only exported when a collector endpoint is configured
	if cfg.OTLPEndpoint != "" {
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
		}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}

		exporter, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		tp.RegisterSpanProcessor(trace.NewBatchSpanProcessor(exporter))
	}

	return tp, nil
}

// initMetrics registers the exporter with the default Prometheus registry,
// which promhttp.Handler serves.
func initMetrics(res *resource.Resource) (*metric.MeterProvider, error) {
	promExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	return metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(promExporter),
	), nil
}

// Shutdown flushes pending spans and stops the providers
func (p *Provider) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.TracerProvider.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	if err := p.MeterProvider.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}
