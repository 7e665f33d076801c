package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
	Airalo    AiraloConfig
	Catalog   CatalogConfig
	Orders    OrdersConfig
	Swagger   SwaggerConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	Version string
}

// RedisConfig holds Redis connection settings.
// When Enabled, the provider token is shared through Redis.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RequestTimeout    time.Duration // deadline applied to API handlers
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool    // Export gateway metrics
	LogsEnabled       bool    // Bridge zap logs to the collector
}

// AiraloConfig holds the provisioning provider settings
type AiraloConfig struct {
	ClientID           string
	ClientSecret       string
	BaseURL            string
	TimeoutSeconds     int
	TokenSafetyMargin  time.Duration
	CopyAddress        string // receives a copy of every shared eSIM
	ProductName        string
	CatalogLanguage    string
	CatalogPackageType string
	CatalogLimit       int
	Locale             string // plan label locale (es, en)
	RequestsPerSecond  float64
}

// CatalogConfig holds storefront catalog settings
type CatalogConfig struct {
	DefaultCountry string
}

// OrdersConfig holds order placement settings
type OrdersConfig struct {
	// IdempotencyTTL is how long an order is replayed for a repeated Idempotency-Key
	IdempotencyTTL time.Duration
}

// SwaggerConfig holds the API documentation endpoint settings
type SwaggerConfig struct {
	Enabled    bool     // Serve /swagger/*any
	AllowedIPs []string // IP or CIDR allowlist (empty = allow all)
}

// legacyEnv maps config keys to the unprefixed variables accepted for
// compatibility with existing deployments, earlier names taking precedence.
var legacyEnv = map[string][]string{
	"airalo.client_id":     {"AIRALO_CLIENT_ID"},
	"airalo.client_secret": {"AIRALO_CLIENT_SECRET"},
	"airalo.base_url":      {"AIRALO_API_BASE", "AIRALO_BASE_URL"},
	"airalo.copy_address":  {"AIRALO_DEFAULT_COPY_EMAIL"},
	"app.port":             {"PORT"},
}

// Load loads configuration from .env, TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with GATEWAY_ prefix (e.g., GATEWAY_AIRALO_CLIENT_ID)
// 2. Legacy unprefixed variables (AIRALO_CLIENT_ID, PORT, ...)
// 3. config.toml
// 4. Built-in defaults
//
// Variables from a .env file in the working directory are loaded first and
// never override variables already set in the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("GATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := "GATEWAY_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, legacy...)...); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			Version: v.GetString("app.version"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			RequestTimeout:    v.GetDuration("http.request_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
		},
		Airalo: AiraloConfig{
			ClientID:           v.GetString("airalo.client_id"),
			ClientSecret:       v.GetString("airalo.client_secret"),
			BaseURL:            v.GetString("airalo.base_url"),
			TimeoutSeconds:     v.GetInt("airalo.timeout_seconds"),
			TokenSafetyMargin:  v.GetDuration("airalo.token_safety_margin"),
			CopyAddress:        v.GetString("airalo.copy_address"),
			ProductName:        v.GetString("airalo.product_name"),
			CatalogLanguage:    v.GetString("airalo.catalog_language"),
			CatalogPackageType: v.GetString("airalo.catalog_package_type"),
			CatalogLimit:       v.GetInt("airalo.catalog_limit"),
			Locale:             v.GetString("airalo.locale"),
			RequestsPerSecond:  v.GetFloat64("airalo.requests_per_second"),
		},
		Catalog: CatalogConfig{
			DefaultCountry: v.GetString("catalog.default_country"),
		},
		Orders: OrdersConfig{
			IdempotencyTTL: v.GetDuration("orders.idempotency_ttl"),
		},
		Swagger: SwaggerConfig{
			Enabled:    v.GetBool("swagger.enabled"),
			AllowedIPs: v.GetStringSlice("swagger.allowed_ips"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "esim-gateway"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "4000"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "1.0.0"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// Must outlast the provider timeout so order responses are not cut off
		cfg.HTTP.WriteTimeout = 45 * time.Second
	}
	if cfg.HTTP.RequestTimeout == 0 {
		cfg.HTTP.RequestTimeout = 40 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// An empty origin list means no cross-origin requests are allowed until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "Idempotency-Key"}
	}

	// Telemetry defaults
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0 // 100% in development
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}

	// Provider defaults
	if cfg.Airalo.BaseURL == "" {
		cfg.Airalo.BaseURL = "https://partners-api.airalo.com"
	}
	if cfg.Airalo.TimeoutSeconds == 0 {
		cfg.Airalo.TimeoutSeconds = 30
	}
	if cfg.Airalo.TokenSafetyMargin == 0 {
		cfg.Airalo.TokenSafetyMargin = 60 * time.Second
	}
	if cfg.Airalo.ProductName == "" {
		cfg.Airalo.ProductName = "Globo eSIM"
	}
	if cfg.Airalo.CatalogLanguage == "" {
		cfg.Airalo.CatalogLanguage = "es"
	}
	if cfg.Airalo.CatalogPackageType == "" {
		cfg.Airalo.CatalogPackageType = "local"
	}
	if cfg.Airalo.CatalogLimit == 0 {
		cfg.Airalo.CatalogLimit = 2000
	}
	if cfg.Airalo.Locale == "" {
		cfg.Airalo.Locale = "es"
	}
	if cfg.Catalog.DefaultCountry == "" {
		cfg.Catalog.DefaultCountry = "AR"
	}
	if cfg.Orders.IdempotencyTTL == 0 {
		cfg.Orders.IdempotencyTTL = 24 * time.Hour
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Airalo.ClientID == "" {
		return fmt.Errorf("airalo.client_id is required")
	}
	if c.Airalo.ClientSecret == "" {
		return fmt.Errorf("airalo.client_secret is required")
	}
	if c.Airalo.TimeoutSeconds < 0 {
		return fmt.Errorf("airalo.timeout_seconds cannot be negative")
	}
	if c.Airalo.CatalogLimit < 0 {
		return fmt.Errorf("airalo.catalog_limit cannot be negative")
	}
	if c.Airalo.RequestsPerSecond < 0 {
		return fmt.Errorf("airalo.requests_per_second cannot be negative")
	}
	if len(c.Catalog.DefaultCountry) != 2 {
		return fmt.Errorf("catalog.default_country must be a two-letter country code, got %q", c.Catalog.DefaultCountry)
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if !strings.HasPrefix(c.Airalo.BaseURL, "https://") {
			return fmt.Errorf("airalo.base_url must use https in production")
		}
		// CORS must not use wildcard in production
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		// Swagger must be disabled or IP restricted in production
		if c.Swagger.Enabled && len(c.Swagger.AllowedIPs) == 0 {
			return fmt.Errorf("swagger endpoint must be disabled or have swagger.allowed_ips in production")
		}
	}

	// Validate telemetry configuration (all environments)
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
