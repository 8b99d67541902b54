package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/erp/product-dimension/internal/application/catalog"
	"github.com/erp/product-dimension/internal/infrastructure/cache"
	"github.com/erp/product-dimension/internal/infrastructure/config"
	"github.com/erp/product-dimension/internal/infrastructure/event"
	"github.com/erp/product-dimension/internal/infrastructure/logger"
	"github.com/erp/product-dimension/internal/infrastructure/persistence"
	"github.com/erp/product-dimension/internal/infrastructure/seed"
	"github.com/erp/product-dimension/internal/infrastructure/telemetry"
	"github.com/erp/product-dimension/internal/interfaces/http/handler"
	"github.com/erp/product-dimension/internal/interfaces/http/middleware"
	"github.com/erp/product-dimension/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const version = "1.0.0"

//	@title			Product Dimension API
//	@version		1.0
//	@description	Product templates, variants and their physical dimensions
//	@BasePath		/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
		Fields: map[string]string{
			"service": cfg.App.Name,
			"env":     cfg.App.Env,
		},
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting product dimension service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx := context.Background()

	// Tracing installs the global provider used by otelgin and otelgorm
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	var metrics *telemetry.Metrics
	if cfg.Telemetry.MetricsEnabled {
		metrics = telemetry.NewMetrics()
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)

	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Postgres schemas are owned by cmd/migrate; sqlite is migrated in place
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFrom(cfg.Telemetry, cfg.Database), log)
		if err := plugin.RegisterOtelGorm(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Unit lookups go through the cache inside and outside transactions
	unitStore := cache.NewUnitStore(ctx, cfg.Redis, log)
	defer func() {
		if err := unitStore.Close(); err != nil {
			log.Error("Error closing unit cache", zap.Error(err))
		}
	}()
	var cacheOpts []cache.CachedUnitOption
	if metrics != nil {
		cacheOpts = append(cacheOpts, cache.WithLookupObserver(metrics.UnitCacheLookup))
	}
	unitDecorator := cache.Decorator(unitStore, cfg.Catalog.UnitCacheTTL, log, cacheOpts...)

	templateRepo := persistence.NewGormProductTemplateRepository(db.DB)
	variantRepo := persistence.NewGormProductVariantRepository(db.DB)
	unitRepo := unitDecorator(persistence.NewGormUnitOfMeasureRepository(db.DB))

	txScope := telemetry.NewTracedTransactionScope(
		persistence.NewGormTransactionScope(db.DB, persistence.WithUnitRepositoryDecorator(unitDecorator)),
		"catalog",
	)

	// Event bus
	var busOpts []event.BusOption
	if metrics != nil {
		busOpts = append(busOpts, event.WithDispatchObserver(metrics.EventDispatched))
	}
	eventBus := event.NewInMemoryEventBus(log, busOpts...)
	eventBus.Subscribe(catalogapp.NewMirrorSyncHandler(log))

	if cfg.Event.AMQPEnabled {
		forwarder := event.NewAMQPForwarder(cfg.Event,
			event.DialAMQP(cfg.Event.AMQPURL, cfg.Event.AMQPExchange),
			event.NewCatalogEventSerializer(),
			log,
		)
		eventBus.Subscribe(forwarder)
		defer func() {
			if err := forwarder.Close(); err != nil {
				log.Error("Error closing AMQP forwarder", zap.Error(err))
			}
		}()
		log.Info("Forwarding catalog events to AMQP", zap.String("exchange", cfg.Event.AMQPExchange))
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	templateService := catalogapp.NewProductTemplateService(templateRepo, variantRepo, txScope)
	templateService.SetEventPublisher(eventBus)
	templateService.SetLogger(log)
	if metrics != nil {
		templateService.SetMetrics(metrics)
	}

	unitService := catalogapp.NewUnitOfMeasureService(unitRepo)
	unitService.SetEventPublisher(eventBus)
	unitService.SetLogger(log)

	if cfg.Catalog.SeedDefaultUnits {
		if err := seed.SeedUnits(ctx, unitService, cfg.Catalog.UnitsFile, log); err != nil {
			log.Fatal("Failed to seed units of measure", zap.Error(err))
		}
	}

	// HTTP
	engineCfg := router.EngineConfig{
		Logger: log,
		CORS: middleware.CORSConfig{
			AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
			AllowMethods:  cfg.HTTP.CORSAllowMethods,
			AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders: []string{middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		},
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
	}
	if metrics != nil {
		engineCfg.HTTPObserver = metrics
		engineCfg.MetricsHandler = metrics.Handler()
	}

	engine, err := router.NewEngine(engineCfg, router.Handlers{
		Templates: handler.NewProductTemplateHandler(templateService),
		Units:     handler.NewUnitOfMeasureHandler(unitService),
		System:    handler.NewSystemHandler(cfg.App.Name, version, db),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
