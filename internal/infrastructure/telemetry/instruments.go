package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
	AttrHTTPRoute      = attribute.Key("http.route")

	AttrUpstreamEndpoint = attribute.Key("upstream.endpoint")
	AttrUpstreamStatus   = attribute.Key("upstream.status")

	AttrResult  = attribute.Key("result")
	AttrCountry = attribute.Key("country")
)

var (
	// HTTPDurationBuckets covers inbound requests and provider calls, in seconds.
	// The top bucket matches the provider timeout.
	HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

	// CatalogSizeBuckets covers plans per catalog
	CatalogSizeBuckets = []float64{0, 1, 5, 10, 25, 50, 100}
)

// Counter is a monotonically increasing int64 instrument
type Counter struct {
	c metric.Int64Counter
}

// NewCounter creates a counter on meter
func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	return &Counter{c: c}, nil
}

// Add adds n
func (c *Counter) Add(ctx context.Context, n int64, attrs ...attribute.KeyValue) {
	c.c.Add(ctx, n, metric.WithAttributes(attrs...))
}

// Inc adds one
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Add(ctx, 1, attrs...)
}

// HistogramOpts describes a histogram. Nil Boundaries keeps the SDK defaults.
type HistogramOpts struct {
	Name        string
	Description string
	Unit        string
	Boundaries  []float64
}

// Histogram is a float64 distribution
type Histogram struct {
	h metric.Float64Histogram
}

// NewHistogram creates a histogram on meter
func NewHistogram(meter metric.Meter, opts HistogramOpts) (*Histogram, error) {
	hopts := []metric.Float64HistogramOption{
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	}
	if len(opts.Boundaries) > 0 {
		hopts = append(hopts, metric.WithExplicitBucketBoundaries(opts.Boundaries...))
	}
	h, err := meter.Float64Histogram(opts.Name, hopts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram %s: %w", opts.Name, err)
	}
	return &Histogram{h: h}, nil
}

// Record records v
func (h *Histogram) Record(ctx context.Context, v float64, attrs ...attribute.KeyValue) {
	h.h.Record(ctx, v, metric.WithAttributes(attrs...))
}

// RecordDuration records d in seconds
func (h *Histogram) RecordDuration(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	h.Record(ctx, d.Seconds(), attrs...)
}

// Gauge holds the last recorded int64 value
type Gauge struct {
	g metric.Int64Gauge
}

// NewGauge creates a gauge on meter
func NewGauge(meter metric.Meter, name, description, unit string) (*Gauge, error) {
	g, err := meter.Int64Gauge(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge %s: %w", name, err)
	}
	return &Gauge{g: g}, nil
}

// Record sets the gauge to v
func (g *Gauge) Record(ctx context.Context, v int64, attrs ...attribute.KeyValue) {
	g.g.Record(ctx, v, metric.WithAttributes(attrs...))
}
