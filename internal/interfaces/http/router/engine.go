package router

import (
	"net/http"

	"github.com/erp/product-dimension/internal/infrastructure/logger"
	"github.com/erp/product-dimension/internal/interfaces/http/handler"
	"github.com/erp/product-dimension/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig carries what the gin engine needs beyond the handlers
type EngineConfig struct {
	Logger         *zap.Logger
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
	Tracing        middleware.TracingConfig
	// HTTPObserver records request metrics; nil disables them
	HTTPObserver middleware.HTTPObserver
	// MetricsHandler is served on /metrics when set
	MetricsHandler http.Handler
}

// Handlers groups the HTTP handlers mounted on the engine
type Handlers struct {
	Templates *handler.ProductTemplateHandler
	Units     *handler.UnitOfMeasureHandler
	System    *handler.SystemHandler
}

// NewEngine builds the gin engine with the middleware chain and all routes
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	// RequestID first so logging, tracing and error bodies share the id
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Tracing))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	if cfg.HTTPObserver != nil {
		engine.Use(middleware.HTTPMetrics(cfg.HTTPObserver))
	}

	if h.System != nil {
		engine.GET("/health", h.System.Health)
		engine.GET("/api/v1/system/info", h.System.GetSystemInfo)
	}
	if cfg.MetricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	r := NewRouter(engine)
	r.Register(CatalogRoutes(h.Templates, h.Units))
	r.Setup()

	return engine, nil
}
