// Package telemetry provides OpenTelemetry integration: distributed tracing,
// gateway metrics and a zap log bridge, all exported over OTLP/gRPC.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

const (
	defaultMetricsInterval = 60 * time.Second
	shutdownTimeout        = 10 * time.Second
)

// Config holds telemetry configuration. Enabled switches on tracing; metrics
// and logs additionally need their own switch.
type Config struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	ServiceVersion    string
	Environment       string
	Insecure          bool
	MetricsEnabled    bool
	LogsEnabled       bool
	// MetricsInterval is the export interval; 60s when zero
	MetricsInterval time.Duration
}

// Providers owns the SDK providers of the three signals. A signal that is off
// keeps a nil provider and callers fall back to the global no-op.
type Providers struct {
	cfg Config

	traces  *sdktrace.TracerProvider
	metrics *sdkmetric.MeterProvider
	logs    *sdklog.LoggerProvider
}

// Setup builds the enabled providers and installs them as the OpenTelemetry
// globals. Exporters dial lazily, so no collector is needed at startup.
func Setup(ctx context.Context, cfg Config, logger *zap.Logger) (*Providers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Providers{cfg: cfg}
	if !cfg.Enabled {
		logger.Info("Telemetry disabled, using no-op providers")
		return p, nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if p.traces, err = newTracerProvider(ctx, cfg, res); err != nil {
		return nil, err
	}
	otel.SetTracerProvider(p.traces)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if cfg.MetricsEnabled {
		if p.metrics, err = newMeterProvider(ctx, cfg, res); err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
		otel.SetMeterProvider(p.metrics)
	}

	if cfg.LogsEnabled {
		if p.logs, err = newLoggerProvider(ctx, cfg, res); err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
		global.SetLoggerProvider(p.logs)
	}

	logger.Info("OpenTelemetry initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
		zap.Bool("metrics", p.metrics != nil),
		zap.Bool("logs", p.logs != nil),
	)
	return p, nil
}

// TracingEnabled reports whether spans are exported
func (p *Providers) TracingEnabled() bool { return p.traces != nil }

// MetricsEnabled reports whether metrics are exported
func (p *Providers) MetricsEnabled() bool { return p.metrics != nil }

// LogsEnabled reports whether log records are exported
func (p *Providers) LogsEnabled() bool { return p.logs != nil }

// Meter returns a named meter, no-op when metrics are off.
func (p *Providers) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if p.metrics == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return p.metrics.Meter(name, opts...)
}

// Shutdown flushes and stops metrics, then traces, then logs, so records
// emitted while the first two stop are still exported. It is safe to call
// more than once.
func (p *Providers) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if p.metrics != nil {
		if err := p.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
		p.metrics = nil
	}
	if p.traces != nil {
		if err := p.traces.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
		p.traces = nil
	}
	if p.logs != nil {
		if err := p.logs.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("logger provider: %w", err))
		}
		p.logs = nil
	}
	return errors.Join(errs...)
}

func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	version := cfg.ServiceVersion
	if version == "" {
		version = "dev"
	}
	opts := []resource.Option{
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
		),
	}
	if cfg.Environment != "" {
		opts = append(opts, resource.WithAttributes(semconv.DeploymentEnvironmentName(cfg.Environment)))
	}

	res, err := resource.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return resource.Merge(resource.Default(), res)
}

func newTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SamplingRatio)),
	), nil
}

// sampler honours the parent's decision and samples root spans by ratio.
func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	interval := cfg.MetricsInterval
	if interval <= 0 {
		interval = defaultMetricsInterval
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	), nil
}

func newLoggerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdklog.LoggerProvider, error) {
	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}
	return sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	), nil
}
