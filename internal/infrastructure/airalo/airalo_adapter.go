package airalo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/globoesim/gateway/internal/domain/esim"
	"github.com/globoesim/gateway/internal/infrastructure/telemetry"
)

const (
	packagesPath = "/v2/packages"
	ordersPath   = "/v2/orders"
)

// Adapter implements esim.Gateway for the Airalo partner API
type Adapter struct {
	config  *Config
	client  Requester
	labels  *Labels
	metrics *telemetry.GatewayMetrics
	logger  *zap.Logger
}

// AdapterOption configures an Adapter
type AdapterOption func(*Adapter)

// WithAdapterMetrics records catalog sizes on metrics
func WithAdapterMetrics(metrics *telemetry.GatewayMetrics) AdapterOption {
	return func(a *Adapter) { a.metrics = metrics }
}

// WithAdapterLogger sets the logger
func WithAdapterLogger(logger *zap.Logger) AdapterOption {
	return func(a *Adapter) { a.logger = logger }
}

// NewAdapter creates a new Airalo adapter that calls the API through client
func NewAdapter(config *Config, client Requester, opts ...AdapterOption) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	a := &Adapter{
		config: config,
		client: client,
		labels: NewLabels(config.Locale),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.Named("airalo")
	return a, nil
}

// ---------------------------------------------------------------------------
// Catalog Operations
// ---------------------------------------------------------------------------

// GetCatalog returns the local plans offered for country
func (a *Adapter) GetCatalog(ctx context.Context, country string) (esim.Catalog, error) {
	query := url.Values{}
	query.Set("filter[country]", country)
	query.Set("filter[type]", a.config.CatalogPackageType)
	query.Set("limit", strconv.Itoa(a.config.CatalogLimit))
	query.Set("language", a.config.CatalogLanguage)

	body, err := a.client.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   packagesPath,
		Query:  query,
	})
	if err != nil {
		return esim.Catalog{}, err
	}

	var resp PackagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return esim.Catalog{}, esim.NewTransformError("failed to parse packages response", err)
	}

	catalog := ToCatalog(&resp, country, a.labels)
	a.metrics.RecordCatalog(ctx, country, len(catalog.Plans))
	a.logger.Debug("Catalog fetched",
		zap.String("country", country),
		zap.Int("plans", len(catalog.Plans)),
	)
	return catalog, nil
}

// ---------------------------------------------------------------------------
// Order Operations
// ---------------------------------------------------------------------------

// CreateOrder purchases one eSIM of req.PackageID
func (a *Adapter) CreateOrder(ctx context.Context, req esim.OrderRequest) (esim.Order, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return esim.Order{}, err
	}

	fields := BuildOrderRequest(req.PackageID, req.Email, a.config)
	body, contentType, err := EncodeMultipart(fields)
	if err != nil {
		return esim.Order{}, &esim.UpstreamError{NotSent: true, Err: err}
	}

	respBody, err := a.client.Do(ctx, Request{
		Method:  http.MethodPost,
		Path:    ordersPath,
		Body:    body,
		Headers: map[string]string{"Content-Type": contentType},
	})
	if err != nil {
		return esim.Order{}, err
	}

	var resp OrderResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return esim.Order{}, esim.NewTransformError("failed to parse order response", err)
	}
	return ToOrder(&resp, a.config.CatalogLanguage)
}

// Ensure Adapter implements esim.Gateway
var _ esim.Gateway = (*Adapter)(nil)
