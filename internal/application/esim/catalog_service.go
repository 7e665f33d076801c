package esim

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/globoesim/gateway/internal/domain/esim"
	"github.com/globoesim/gateway/internal/infrastructure/logger"
	"github.com/globoesim/gateway/internal/infrastructure/telemetry"
)

// DefaultCountry is used when neither the caller nor the configuration names one
const DefaultCountry = "AR"

// CatalogService handles plan catalog lookups
type CatalogService struct {
	gateway        esim.Gateway
	defaultCountry string
	logger         *zap.Logger
}

// NewCatalogService creates a new CatalogService. An empty defaultCountry
// falls back to DefaultCountry.
func NewCatalogService(gateway esim.Gateway, defaultCountry string, log *zap.Logger) *CatalogService {
	defaultCountry = strings.ToUpper(strings.TrimSpace(defaultCountry))
	if defaultCountry == "" {
		defaultCountry = DefaultCountry
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{
		gateway:        gateway,
		defaultCountry: defaultCountry,
		logger:         log,
	}
}

// GetCatalog returns the plans offered for country, an ISO 3166-1 alpha-2 code
func (s *CatalogService) GetCatalog(ctx context.Context, country string) (esim.Catalog, error) {
	country = s.normalizeCountry(country)

	ctx, span := telemetry.StartServiceSpan(ctx, "esim_catalog", "get",
		telemetry.WithAttribute(telemetry.SpanAttrCountry, country),
	)
	defer span.End()

	catalog, err := s.gateway.GetCatalog(ctx, country)
	if err != nil {
		telemetry.RecordError(span, err)
		logger.For(ctx, s.logger).Warn("Catalog lookup failed",
			zap.String("country", country),
			zap.Error(err),
		)
		return esim.Catalog{}, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrPlanCount, len(catalog.Plans))
	return catalog, nil
}

// DefaultCountry returns the country used for requests that name none
func (s *CatalogService) DefaultCountry() string {
	return s.defaultCountry
}

func (s *CatalogService) normalizeCountry(country string) string {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return s.defaultCountry
	}
	return country
}
