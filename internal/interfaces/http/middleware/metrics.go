package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/globoesim/gateway/internal/infrastructure/telemetry"
)

// httpMetrics holds the inbound HTTP instruments
type httpMetrics struct {
	requestTotal    *telemetry.Counter
	requestDuration *telemetry.Histogram
	responseSize    *telemetry.Histogram
	activeRequests  metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	requestTotal, err := telemetry.NewCounter(
		meter,
		"http_server_request_total",
		"Total number of HTTP requests",
		"{request}",
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency distribution in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	responseSize, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_response_size_bytes",
		Description: "HTTP response body size distribution in bytes",
		Unit:        "By",
		// Catalog responses for large countries run to a few hundred KB
		Boundaries: []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576},
	})
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http_server_active_requests",
		metric.WithDescription("Number of currently active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		responseSize:    responseSize,
		activeRequests:  activeRequests,
	}, nil
}

// HTTPMetrics records request count, latency, response size and in-flight
// requests. It is a pass-through when meter is nil or the instruments cannot
// be created.
func HTTPMetrics(meter metric.Meter, logger *zap.Logger) gin.HandlerFunc {
	if meter == nil {
		return passThrough
	}
	metrics, err := newHTTPMetrics(meter)
	if err != nil {
		if logger != nil {
			logger.Warn("HTTP metrics disabled", zap.Error(err))
		}
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		metrics.activeRequests.Add(ctx, 1)
		defer metrics.activeRequests.Add(ctx, -1)

		c.Next()
		metrics.observe(c, time.Since(start))
	}
}

// observe records one finished request. Routes are labelled by pattern;
// unmatched paths share the "unknown" route.
func (m *httpMetrics) observe(c *gin.Context, elapsed time.Duration) {
	route := c.FullPath()
	if route == "" {
		route = "unknown"
	}
	attrs := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(c.Request.Method),
		telemetry.AttrHTTPRoute.String(route),
		telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()),
	}

	ctx := c.Request.Context()
	m.requestTotal.Inc(ctx, attrs...)
	m.requestDuration.RecordDuration(ctx, elapsed, attrs...)
	if size := c.Writer.Size(); size > 0 {
		m.responseSize.Record(ctx, float64(size), attrs[:2]...)
	}
}

func passThrough(c *gin.Context) {
	c.Next()
}
