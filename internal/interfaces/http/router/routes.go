package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayurcare/backend/internal/infrastructure/logger"
	"github.com/ayurcare/backend/internal/interfaces/http/handler"
	"github.com/ayurcare/backend/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers the API is built from
type Handlers struct {
	Health    *handler.HealthHandler
	Medicines *handler.MedicineHandler
	Pricing   *handler.PricingHandler
	Purchases *handler.PurchaseHandler
	Stock     *handler.StockHandler
}

// EngineConfig holds the middleware settings of the gin engine
type EngineConfig struct {
	ServiceName      string
	TracingEnabled   bool
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// NewEngine creates the gin engine with the middleware chain:
// request id, recovery, request logging, tracing, security headers, CORS, body limit.
func NewEngine(cfg EngineConfig, log *zap.Logger) (*gin.Engine, error) {
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.TracingEnabled,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.Secure())

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(cors))

	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	return engine, nil
}

// RegisterAPI mounts the health probe and every /api/v1 route on engine
func RegisterAPI(engine *gin.Engine, h Handlers) {
	engine.GET("/health", h.Health.Health)

	r := NewRouter(engine, WithAPIVersion("v1"))

	medicineRoutes := NewDomainGroup("medicines", "/medicines")
	medicineRoutes.POST("", h.Medicines.Create)
	medicineRoutes.GET("", h.Medicines.List)
	medicineRoutes.GET("/:id", h.Medicines.GetByID)
	medicineRoutes.PUT("/:id", h.Medicines.Update)
	r.Register(medicineRoutes)

	pricingRoutes := NewDomainGroup("pricing", "/pricing")
	pricingRoutes.POST("/lines/recompute", h.Pricing.RecomputeLine)
	pricingRoutes.POST("/quote", h.Pricing.Quote)
	pricingRoutes.POST("/single-entry", h.Pricing.SingleEntry)
	r.Register(pricingRoutes)

	purchaseRoutes := NewDomainGroup("purchases", "/purchases")
	purchaseRoutes.POST("", h.Purchases.Submit)
	purchaseRoutes.GET("", h.Purchases.List)
	purchaseRoutes.GET("/schema", h.Purchases.Schema)
	purchaseRoutes.GET("/:id", h.Purchases.GetByID)
	purchaseRoutes.PUT("/:id/lines/:line_id", h.Purchases.UpdateSingleEntry)
	purchaseRoutes.DELETE("/:id", h.Purchases.Delete)
	r.Register(purchaseRoutes)

	stockRoutes := NewDomainGroup("stock", "/stock")
	stockRoutes.GET("", h.Stock.List)
	stockRoutes.GET("/:id", h.Stock.GetByID)
	stockRoutes.PUT("/:id/reprice", h.Stock.Reprice)
	r.Register(stockRoutes)

	r.Setup()
}
