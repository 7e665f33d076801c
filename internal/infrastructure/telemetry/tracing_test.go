package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/globoesim/gateway/internal/infrastructure/telemetry"
)

// setupTestTracer installs an in-memory span recorder as the global provider.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(s sdktrace.ReadOnlySpan) map[string]any {
	m := make(map[string]any)
	for _, attr := range s.Attributes() {
		m[string(attr.Key)] = attr.Value.AsInterface()
	}
	return m
}

func endedSpan(t *testing.T, sr *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()
	spans := sr.Ended()
	require.Len(t, spans, 1)
	return spans[0]
}

func TestStartSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "airalo.token.refresh")
	span.End()

	got := endedSpan(t, sr)
	assert.Equal(t, "airalo.token.refresh", got.Name())
	assert.Equal(t, trace.SpanKindInternal, got.SpanKind())
	assert.Equal(t, telemetry.TracerName, got.InstrumentationScope().Name)
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "esim_order", "create",
		telemetry.WithAttribute(telemetry.SpanAttrPackageID, "chispa-7days-1gb"),
		telemetry.WithAttribute(telemetry.SpanAttrHasEmail, true),
	)
	span.End()

	got := endedSpan(t, sr)
	assert.Equal(t, "esim_order.create", got.Name())
	attrs := attrMap(got)
	assert.Equal(t, "chispa-7days-1gb", attrs[telemetry.SpanAttrPackageID])
	assert.Equal(t, true, attrs[telemetry.SpanAttrHasEmail])
}

func TestStartUpstreamSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartUpstreamSpan(context.Background(), "GET", "/v2/packages")
	telemetry.SetUpstreamStatus(span, "200")
	span.End()

	got := endedSpan(t, sr)
	assert.Equal(t, "airalo GET /v2/packages", got.Name())
	assert.Equal(t, trace.SpanKindClient, got.SpanKind())
	attrs := attrMap(got)
	assert.Equal(t, "GET", attrs[telemetry.SpanAttrUpstreamMethod])
	assert.Equal(t, "/v2/packages", attrs[telemetry.SpanAttrUpstreamPath])
	assert.Equal(t, "200", attrs[telemetry.SpanAttrUpstreamStatus])
}

func TestSetAttribute_Types(t *testing.T) {
	sr := setupTestTracer(t)

	requestID := uuid.New()
	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	telemetry.SetAttribute(span, telemetry.SpanAttrCountry, "AR")
	telemetry.SetAttribute(span, telemetry.SpanAttrPlanCount, 3)
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, int64(9666))
	telemetry.SetAttribute(span, "ratio", 0.5)
	telemetry.SetAttribute(span, "locales", []string{"es", "en"})
	telemetry.SetAttribute(span, "request_id", requestID)
	telemetry.SetAttribute(span, "margin", struct{ Seconds int }{60})
	span.End()

	attrs := attrMap(endedSpan(t, sr))
	assert.Equal(t, "AR", attrs[telemetry.SpanAttrCountry])
	assert.Equal(t, int64(3), attrs[telemetry.SpanAttrPlanCount])
	assert.Equal(t, int64(9666), attrs[telemetry.SpanAttrOrderID])
	assert.Equal(t, 0.5, attrs["ratio"])
	assert.Equal(t, []string{"es", "en"}, attrs["locales"])
	assert.Equal(t, requestID.String(), attrs["request_id"])
	assert.Equal(t, "{60}", attrs["margin"])
}

func TestSetContextAttribute(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartSpan(context.Background(), "HTTP POST /api/v1/esim/orders")
	telemetry.SetContextAttribute(ctx, telemetry.SpanAttrIdempotent, true)
	span.End()

	assert.Equal(t, true, attrMap(endedSpan(t, sr))[telemetry.SpanAttrIdempotent])

	assert.NotPanics(t, func() {
		telemetry.SetContextAttribute(context.Background(), telemetry.SpanAttrIdempotent, true)
	})
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	telemetry.RecordError(span, errors.New("upstream unavailable"))
	span.End()

	got := endedSpan(t, sr)
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "upstream unavailable", got.Status().Description)
	require.NotEmpty(t, got.Events())
	assert.Equal(t, "exception", got.Events()[0].Name)
}

func TestRecordError_NilError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	telemetry.RecordError(span, nil)
	span.End()

	got := endedSpan(t, sr)
	assert.Equal(t, codes.Unset, got.Status().Code)
	assert.Empty(t, got.Events())
}

func TestNestedSpans(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, parent := telemetry.StartServiceSpan(context.Background(), "esim_order", "create")
	_, child := telemetry.StartUpstreamSpan(ctx, "POST", "/v2/orders")
	child.End()
	parent.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)

	byName := make(map[string]sdktrace.ReadOnlySpan)
	for _, s := range spans {
		byName[s.Name()] = s
	}
	require.Contains(t, byName, "esim_order.create")
	require.Contains(t, byName, "airalo POST /v2/orders")

	parentCtx := byName["esim_order.create"].SpanContext()
	assert.Equal(t, parentCtx.TraceID(), byName["airalo POST /v2/orders"].SpanContext().TraceID())
	assert.Equal(t, parentCtx.SpanID(), byName["airalo POST /v2/orders"].Parent().SpanID())
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttribute(nil, "key", "value")
		telemetry.SetUpstreamStatus(nil, "timeout")
		telemetry.RecordError(nil, errors.New("x"))
	})
}
