package airalo

import (
	"errors"
	"strings"
	"time"

	"github.com/globoesim/gateway/internal/domain/esim"
)

// Config holds configuration for the Airalo partner API integration
type Config struct {
	// ClientID is the partner client identifier
	ClientID string
	// ClientSecret is the partner client secret
	ClientSecret string
	// BaseURL is the partner API origin, without a trailing slash
	BaseURL string
	// TimeoutSeconds bounds every upstream call, token exchange included
	TimeoutSeconds int
	// TokenSafetyMargin is how long before expiry a cached token is refreshed
	TokenSafetyMargin time.Duration
	// CopyAddress receives a copy of every shared eSIM (optional)
	CopyAddress string
	// ProductName prefixes the order description
	ProductName string
	// CatalogLanguage is sent as the catalog language and selects installation guides
	CatalogLanguage string
	// CatalogPackageType filters the catalog (local, global)
	CatalogPackageType string
	// CatalogLimit is the page size requested from the catalog
	CatalogLimit int
	// Locale selects the plan title labels (es, en)
	Locale string
	// RequestsPerSecond caps outbound calls; zero disables the limit
	RequestsPerSecond float64
}

const (
	// ProductionAPIURL is the production partner API endpoint
	ProductionAPIURL = "https://partners-api.airalo.com"
	// SandboxAPIURL is the sandbox partner API endpoint
	SandboxAPIURL = "https://sandbox-partners-api.airalo.com"

	DefaultTimeoutSeconds     = 30
	DefaultProductName        = "Globo eSIM"
	DefaultCatalogLanguage    = "es"
	DefaultCatalogPackageType = "local"
	DefaultCatalogLimit       = 2000
	DefaultLocale             = "es"

	// defaultTokenLifetime applies when the provider omits expires_in
	defaultTokenLifetime = 86400 * time.Second
)

// Errors for Airalo configuration
var (
	ErrConfigMissingClientID     = errors.New("airalo: client ID is required")
	ErrConfigMissingClientSecret = errors.New("airalo: client secret is required")
	ErrConfigInvalidMargin       = errors.New("airalo: token safety margin must not be negative")
	ErrConfigInvalidRate         = errors.New("airalo: requests per second must not be negative")
)

// NewConfig creates a new Airalo configuration with defaults
func NewConfig(clientID, clientSecret string) *Config {
	return &Config{
		ClientID:           clientID,
		ClientSecret:       clientSecret,
		BaseURL:            ProductionAPIURL,
		TimeoutSeconds:     DefaultTimeoutSeconds,
		TokenSafetyMargin:  esim.DefaultTokenSafetyMargin,
		ProductName:        DefaultProductName,
		CatalogLanguage:    DefaultCatalogLanguage,
		CatalogPackageType: DefaultCatalogPackageType,
		CatalogLimit:       DefaultCatalogLimit,
		Locale:             DefaultLocale,
	}
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return ErrConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrConfigMissingClientSecret
	}
	if c.TokenSafetyMargin < 0 {
		return ErrConfigInvalidMargin
	}
	if c.RequestsPerSecond < 0 {
		return ErrConfigInvalidRate
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.BaseURL == "" {
		c.BaseURL = ProductionAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.TokenSafetyMargin == 0 {
		c.TokenSafetyMargin = esim.DefaultTokenSafetyMargin
	}
	if c.ProductName == "" {
		c.ProductName = DefaultProductName
	}
	if c.CatalogLanguage == "" {
		c.CatalogLanguage = DefaultCatalogLanguage
	}
	if c.CatalogPackageType == "" {
		c.CatalogPackageType = DefaultCatalogPackageType
	}
	if c.CatalogLimit <= 0 {
		c.CatalogLimit = DefaultCatalogLimit
	}
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	return nil
}

// Timeout returns the upstream call timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// OrderDescription returns the description attached to an order
func (c *Config) OrderDescription(packageID string) string {
	return c.ProductName + " - package " + packageID
}
