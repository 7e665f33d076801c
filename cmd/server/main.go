// Command server runs the eSIM provisioning gateway.
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/globoesim/gateway/internal/infrastructure/cache"
	"github.com/globoesim/gateway/internal/infrastructure/config"
	"github.com/globoesim/gateway/internal/infrastructure/logger"
	"github.com/globoesim/gateway/internal/infrastructure/telemetry"
	"github.com/globoesim/gateway/internal/interfaces/http/middleware"
)

const shutdownTimeout = 30 * time.Second

//go:generate swag init -g main.go -d ./,../../internal/interfaces/http -o ../../docs --parseDependency

//	@title			Globo eSIM Gateway API
//	@version		1.0
//	@description	Catalog and order endpoints in front of the eSIM provisioning provider.

//	@contact.name	Globo eSIM
//	@contact.email	ops@globo.example

//	@BasePath	/

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		ServiceName: cfg.App.Name,
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	telCfg := telemetryConfig(cfg)

	otelProviders, err := telemetry.Setup(ctx, telCfg, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	// Tee application logs to the collector when log export is enabled
	log, err := logger.New(logCfg, telemetry.NewZapCore(otelProviders, zapcore.InfoLevel))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting eSIM gateway",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("provider", cfg.Airalo.BaseURL),
		zap.Bool("telemetry", telCfg.Enabled),
	)

	// Provider token cache and order idempotency records
	stores := cache.NewStoreFactory(cfg.Redis, cache.WithLogger(log))
	tokenStore, err := stores.CreateTokenStore()
	if err != nil {
		log.Fatal("Failed to create token store", zap.Error(err))
	}
	idempotencyStore, err := stores.CreateIdempotencyStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	gw, err := newGateway(cfg, dependencies{
		Logger:           log,
		Meter:            otelProviders.Meter("esim-gateway"),
		TokenStore:       tokenStore,
		IdempotencyStore: idempotencyStore,
	})
	if err != nil {
		log.Fatal("Failed to build gateway", zap.Error(err))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        gw.engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.Strings("routes", gw.routes))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	gw.Close()
	for _, store := range []any{tokenStore, idempotencyStore} {
		if closer, ok := store.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				log.Warn("Failed to close store", zap.Error(err))
			}
		}
	}

	log.Info("Server exited gracefully")
	// Log export stops last so the messages above still reach the collector
	if err := otelProviders.Shutdown(shutdownCtx); err != nil {
		bootLog.Warn("Failed to shut down telemetry", zap.Error(err))
	}
}
