package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for gateway spans
const TracerName = "esim-gateway"

// Span attribute keys. Metric attributes live in metrics.go.
const (
	SpanAttrCountry        = "esim.country"
	SpanAttrPackageID      = "esim.package_id"
	SpanAttrPlanCount      = "esim.plan_count"
	SpanAttrOrderID        = "esim.order_id"
	SpanAttrHasEmail       = "esim.has_email"
	SpanAttrIdempotent     = "esim.idempotent_replay"
	SpanAttrUpstreamMethod = "upstream.method"
	SpanAttrUpstreamPath   = "upstream.path"
	SpanAttrUpstreamStatus = "upstream.status"
)

// SpanOption configures a span at start
type SpanOption func(*spanConfig)

type spanConfig struct {
	kind  trace.SpanKind
	attrs []attribute.KeyValue
}

// WithAttribute adds an attribute to the span
func WithAttribute(key string, value any) SpanOption {
	return func(c *spanConfig) { c.attrs = append(c.attrs, toAttribute(key, value)) }
}

// WithSpanKind sets the span kind; spans are internal by default
func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(c *spanConfig) { c.kind = kind }
}

// StartSpan starts a span on the global tracer provider. The caller ends it.
//
//	ctx, span := telemetry.StartSpan(ctx, "airalo.token.refresh")
//	defer span.End()
func StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, trace.Span) {
	cfg := spanConfig{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(&cfg)
	}

	startOpts := []trace.SpanStartOption{trace.WithSpanKind(cfg.kind)}
	if len(cfg.attrs) > 0 {
		startOpts = append(startOpts, trace.WithAttributes(cfg.attrs...))
	}
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name, startOpts...)
}

// StartServiceSpan starts a span named "{service}.{method}", e.g. "esim_order.create"
func StartServiceSpan(ctx context.Context, service, method string, opts ...SpanOption) (context.Context, trace.Span) {
	return StartSpan(ctx, service+"."+method, opts...)
}

// StartUpstreamSpan starts a client span for one provider call, named
// "airalo GET /v2/packages".
func StartUpstreamSpan(ctx context.Context, method, path string) (context.Context, trace.Span) {
	return StartSpan(ctx, "airalo "+method+" "+path,
		WithSpanKind(trace.SpanKindClient),
		WithAttribute(SpanAttrUpstreamMethod, method),
		WithAttribute(SpanAttrUpstreamPath, path),
	)
}

// SetAttribute adds one attribute to a started span
func SetAttribute(span trace.Span, key string, value any) {
	if span == nil {
		return
	}
	span.SetAttributes(toAttribute(key, value))
}

// SetContextAttribute adds one attribute to the span carried by ctx, if any
func SetContextAttribute(ctx context.Context, key string, value any) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(toAttribute(key, value))
}

// SetUpstreamStatus records the provider status ("200", "timeout", ...) on span
func SetUpstreamStatus(span trace.Span, status string) {
	SetAttribute(span, SpanAttrUpstreamStatus, status)
}

// RecordError records err on span and marks the span failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
