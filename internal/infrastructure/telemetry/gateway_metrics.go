package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned by NewGatewayMetrics without a meter.
var ErrMeterNil = errors.New("telemetry: gateway metrics need a meter")

// GatewayMetrics records provider traffic for the eSIM gateway.
// A nil *GatewayMetrics is valid and records nothing.
type GatewayMetrics struct {
	upstreamRequestsTotal   *Counter
	upstreamRequestDuration *Histogram
	tokenRefreshTotal       *Counter
	tokenLifetime           *Gauge
	ordersTotal             *Counter
	catalogPlans            *Histogram
}

// GatewayMetricsConfig holds configuration for gateway metrics.
type GatewayMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewGatewayMetrics creates a new GatewayMetrics instance.
func NewGatewayMetrics(cfg GatewayMetricsConfig) (*GatewayMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	gm := &GatewayMetrics{}

	var err error

	gm.upstreamRequestsTotal, err = NewCounter(
		cfg.Meter,
		"gateway_upstream_requests_total",
		"Total number of calls made to the provisioning provider",
		"{requests}",
	)
	if err != nil {
		return nil, err
	}

	gm.upstreamRequestDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "gateway_upstream_request_duration_seconds",
		Description: "Latency of calls made to the provisioning provider",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	gm.tokenRefreshTotal, err = NewCounter(
		cfg.Meter,
		"gateway_token_refresh_total",
		"Total number of provider credential exchanges",
		"{refreshes}",
	)
	if err != nil {
		return nil, err
	}

	gm.tokenLifetime, err = NewGauge(
		cfg.Meter,
		"gateway_token_lifetime_seconds",
		"Lifetime granted to the most recently issued provider token",
		"s",
	)
	if err != nil {
		return nil, err
	}

	gm.ordersTotal, err = NewCounter(
		cfg.Meter,
		"gateway_esim_orders_total",
		"Total number of eSIM orders attempted",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	gm.catalogPlans, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "gateway_catalog_plans",
		Description: "Number of plans returned per catalog lookup",
		Unit:        "{plans}",
		Boundaries:  CatalogSizeBuckets,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Gateway metrics registered")
	return gm, nil
}

// RecordUpstreamRequest records one provider call. status is the HTTP status
// code, "timeout" or "error".
func (gm *GatewayMetrics) RecordUpstreamRequest(ctx context.Context, method, endpoint, status string, d time.Duration) {
	if gm == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrHTTPMethod.String(method),
		AttrUpstreamEndpoint.String(endpoint),
		AttrUpstreamStatus.String(status),
	}
	gm.upstreamRequestsTotal.Inc(ctx, attrs...)
	gm.upstreamRequestDuration.RecordDuration(ctx, d, attrs...)
}

// OutcomeResult labels the outcome of an operation.
type OutcomeResult string

const (
	ResultSuccess OutcomeResult = "success"
	ResultFailure OutcomeResult = "failure"
)

// RecordTokenRefresh records a credential exchange.
func (gm *GatewayMetrics) RecordTokenRefresh(ctx context.Context, result OutcomeResult) {
	if gm == nil {
		return
	}
	gm.tokenRefreshTotal.Inc(ctx, AttrResult.String(string(result)))
}

// RecordTokenLifetime records the lifetime granted to a freshly issued token.
func (gm *GatewayMetrics) RecordTokenLifetime(ctx context.Context, lifetime time.Duration) {
	if gm == nil {
		return
	}
	gm.tokenLifetime.Record(ctx, int64(lifetime.Seconds()))
}

// RecordOrder records an order attempt.
func (gm *GatewayMetrics) RecordOrder(ctx context.Context, result OutcomeResult) {
	if gm == nil {
		return
	}
	gm.ordersTotal.Inc(ctx, AttrResult.String(string(result)))
}

// RecordCatalog records the size of a catalog served for a country.
func (gm *GatewayMetrics) RecordCatalog(ctx context.Context, country string, plans int) {
	if gm == nil {
		return
	}
	gm.catalogPlans.Record(ctx, float64(plans), AttrCountry.String(country))
}
