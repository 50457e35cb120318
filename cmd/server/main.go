// Command server runs the clinic purchase pricing API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	catalogapp "github.com/ayurcare/backend/internal/application/catalog"
	inventoryapp "github.com/ayurcare/backend/internal/application/inventory"
	purchaseapp "github.com/ayurcare/backend/internal/application/purchase"
	"github.com/ayurcare/backend/internal/infrastructure/cache"
	"github.com/ayurcare/backend/internal/infrastructure/config"
	"github.com/ayurcare/backend/internal/infrastructure/logger"
	"github.com/ayurcare/backend/internal/infrastructure/persistence"
	"github.com/ayurcare/backend/internal/infrastructure/telemetry"
	"github.com/ayurcare/backend/internal/interfaces/http/handler"
	"github.com/ayurcare/backend/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer provider: %w", err)
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to initialize meter provider: %w", err)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 200*time.Millisecond)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.Driver == config.DriverSQLite || cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
		log.Info("Schema migrated from models")
	}

	dbSystem := "postgresql"
	if cfg.Database.Driver == config.DriverSQLite {
		dbSystem = "sqlite"
	}
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        dbSystem,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		return fmt.Errorf("failed to register database tracing: %w", err)
	}

	medicineRepo := persistence.NewGormMedicineRepository(db.DB)
	purchaseRepo := persistence.NewGormPurchaseRepository(db.DB)
	stockRepo := persistence.NewGormStockEntryRepository(db.DB)

	medicineService := catalogapp.NewMedicineService(medicineRepo)
	stockService := inventoryapp.NewStockService(stockRepo)
	purchaseService := purchaseapp.NewPurchaseService(purchaseRepo, medicineRepo, stockRepo)

	purchaseMetrics, err := telemetry.NewPurchaseMetrics(meterProvider.Meter("ayurcare/purchase"))
	if err != nil {
		return fmt.Errorf("failed to register purchase metrics: %w", err)
	}
	purchaseService.SetMetrics(purchaseMetrics)
	purchaseService.SetDisplay(cfg.Pricing.Currency, cfg.Pricing.DisplayPlaces)

	if cfg.Idempotency.Enabled {
		factory := cache.NewIdempotencyStoreFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(cfg.App.Env != "production"),
		)
		store, err := factory.CreateStore(ctx, cfg.Idempotency.Store)
		if err != nil {
			return fmt.Errorf("failed to create idempotency store: %w", err)
		}
		defer func() {
			_ = store.Close()
		}()
		purchaseService.SetIdempotencyStore(store, cfg.Idempotency.TTL)
	}

	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   tracerProvider.IsEnabled(),
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
		CORSAllowMethods: cfg.HTTP.CORSAllowMethods,
		CORSAllowHeaders: cfg.HTTP.CORSAllowHeaders,
		TrustedProxies:   cfg.HTTP.TrustedProxies,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	router.RegisterAPI(engine, router.Handlers{
		Health:    handler.NewHealthHandler(cfg.App.Name, version, db),
		Medicines: handler.NewMedicineHandler(medicineService),
		Pricing:   handler.NewPricingHandler(purchaseService),
		Purchases: handler.NewPurchaseHandler(purchaseService),
		Stock:     handler.NewStockHandler(stockService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}
