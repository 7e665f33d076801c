package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testTraceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	testSpanID  = "00f067aa0ba902b7"
)

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex(testTraceID)
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex(testSpanID)
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))

	// An empty ID leaves the context alone
	base := context.Background()
	assert.Equal(t, base, WithRequestID(base, ""))
}

func TestFor(t *testing.T) {
	tests := []struct {
		name      string
		ctx       func(t *testing.T) context.Context
		wantReqID string
		wantTrace bool
	}{
		{
			name: "bare context",
			ctx:  func(*testing.T) context.Context { return context.Background() },
		},
		{
			name:      "request only",
			ctx:       func(*testing.T) context.Context { return WithRequestID(context.Background(), "req-1") },
			wantReqID: "req-1",
		},
		{
			name:      "span only",
			ctx:       spanContext,
			wantTrace: true,
		},
		{
			name:      "request and span",
			ctx:       func(t *testing.T) context.Context { return WithRequestID(spanContext(t), "req-2") },
			wantReqID: "req-2",
			wantTrace: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.InfoLevel)
			For(tt.ctx(t), zap.New(core).Named("esim.orders")).Info("order placed")

			entries := recorded.All()
			require.Len(t, entries, 1)
			assert.Equal(t, "esim.orders", entries[0].LoggerName)

			fields := entries[0].ContextMap()
			if tt.wantReqID != "" {
				assert.Equal(t, tt.wantReqID, fields["request_id"])
			} else {
				assert.NotContains(t, fields, "request_id")
			}
			if tt.wantTrace {
				assert.Equal(t, testTraceID, fields["trace_id"])
				assert.Equal(t, testSpanID, fields["span_id"])
			} else {
				assert.NotContains(t, fields, "trace_id")
			}
		})
	}
}

func TestFor_ReturnsBaseWhenNothingToAdd(t *testing.T) {
	base := zap.NewExample()
	assert.Same(t, base, For(context.Background(), base))
}

func TestFor_NilBase(t *testing.T) {
	assert.NotPanics(t, func() {
		For(WithRequestID(context.Background(), "req-3"), nil).Info("dropped")
	})
}
