package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	_ "github.com/globoesim/gateway/docs"

	esimapp "github.com/globoesim/gateway/internal/application/esim"
	"github.com/globoesim/gateway/internal/domain/esim"
	"github.com/globoesim/gateway/internal/infrastructure/airalo"
	"github.com/globoesim/gateway/internal/infrastructure/config"
	"github.com/globoesim/gateway/internal/infrastructure/logger"
	"github.com/globoesim/gateway/internal/infrastructure/telemetry"
	"github.com/globoesim/gateway/internal/interfaces/http/handler"
	"github.com/globoesim/gateway/internal/interfaces/http/middleware"
	"github.com/globoesim/gateway/internal/interfaces/http/router"
)

// dependencies are the process-level resources the HTTP stack is built on
type dependencies struct {
	Logger           *zap.Logger
	Meter            metric.Meter
	TokenStore       esim.TokenStore
	IdempotencyStore esim.IdempotencyStore
}

// gateway is the assembled HTTP stack
type gateway struct {
	engine  *gin.Engine
	routes  []string
	limiter *middleware.RateLimiter
}

// Close stops background work owned by the stack
func (g *gateway) Close() {
	if g.limiter != nil {
		g.limiter.Stop()
	}
}

// newGateway wires token manager, dispatcher, adapter, services and routes.
func newGateway(cfg *config.Config, deps dependencies) (*gateway, error) {
	log := deps.Logger

	gatewayMetrics, err := telemetry.NewGatewayMetrics(telemetry.GatewayMetricsConfig{
		Meter:  deps.Meter,
		Logger: log,
	})
	if err != nil {
		return nil, err
	}

	// Provider client: token manager -> dispatcher -> adapter
	airaloCfg := airaloConfig(cfg.Airalo)
	tokens, err := airalo.NewTokenManager(airaloCfg,
		airalo.WithTokenStore(deps.TokenStore),
		airalo.WithTokenMetrics(gatewayMetrics),
		airalo.WithTokenLogger(log),
	)
	if err != nil {
		return nil, err
	}
	dispatcher, err := airalo.NewDispatcher(airaloCfg, tokens,
		airalo.WithDispatcherMetrics(gatewayMetrics),
		airalo.WithDispatcherLogger(log),
	)
	if err != nil {
		return nil, err
	}
	provider, err := airalo.NewAdapter(airaloCfg, dispatcher,
		airalo.WithAdapterMetrics(gatewayMetrics),
		airalo.WithAdapterLogger(log),
	)
	if err != nil {
		return nil, err
	}

	catalogService := esimapp.NewCatalogService(provider, cfg.Catalog.DefaultCountry, log)
	orderOpts := []esimapp.OrderServiceOption{
		esimapp.WithOrderMetrics(gatewayMetrics),
		esimapp.WithOrderLogger(log),
	}
	if deps.IdempotencyStore != nil {
		orderOpts = append(orderOpts, esimapp.WithIdempotencyStore(deps.IdempotencyStore, cfg.Orders.IdempotencyTTL))
	}
	orderService := esimapp.NewOrderService(provider, orderOpts...)

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.ServiceName = cfg.Telemetry.ServiceName
	tracingCfg.Enabled = cfg.Telemetry.Enabled

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log, "/health"),
		middleware.TracingWithConfig(tracingCfg),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(deps.Meter, log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	g := &gateway{engine: engine}

	// Health probes skip the deadline and the limiter
	apiMiddleware := []gin.HandlerFunc{middleware.Timeout(cfg.HTTP.RequestTimeout)}
	if cfg.HTTP.RateLimitEnabled {
		g.limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(g.limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Version, tokens)
	r := router.NewRouter(engine,
		router.WithAPIMiddleware(apiMiddleware...),
		router.WithHealth("/health", systemHandler.Health),
	)
	r.Register(handler.NewEsimHandler(catalogService, orderService)).
		Register(systemHandler)

	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerAllowlist(cfg.Swagger.AllowedIPs),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
		log.Info("Swagger documentation enabled", zap.Strings("allowed_ips", cfg.Swagger.AllowedIPs))
	}
	r.Setup()
	g.routes = r.Routes()

	return g, nil
}

func telemetryConfig(cfg *config.Config) telemetry.Config {
	return telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}
}

func airaloConfig(c config.AiraloConfig) *airalo.Config {
	ac := airalo.NewConfig(c.ClientID, c.ClientSecret)
	ac.BaseURL = c.BaseURL
	ac.TimeoutSeconds = c.TimeoutSeconds
	ac.TokenSafetyMargin = c.TokenSafetyMargin
	ac.CopyAddress = c.CopyAddress
	ac.ProductName = c.ProductName
	ac.CatalogLanguage = c.CatalogLanguage
	ac.CatalogPackageType = c.CatalogPackageType
	ac.CatalogLimit = c.CatalogLimit
	ac.Locale = c.Locale
	ac.RequestsPerSecond = c.RequestsPerSecond
	return ac
}
