// Package v1 provides HTTP API version 1.
package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/harpreet-2146/FM-demo-sub001/internal/app"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/idempotency"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/numerator"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/http/v1/dto"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/http/v1/handlers"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/http/v1/middleware"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Services is the assembled application.
	Services *app.Services

	// Numerator backs the sequence peek endpoint.
	Numerator numerator.Generator

	// Logger for request logging
	Logger *logger.Logger

	// Idempotency stores responses of mutating requests. Nil disables it.
	Idempotency idempotency.Store

	// Health checks run by /health/ready, by name.
	Health map[string]handlers.Pinger

	Version string
	Storage string

	// Debug switches gin to debug mode.
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if err := dto.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Version, cfg.Storage, cfg.Health)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	svc := cfg.Services

	v1 := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(base, svc.Auth)
		v1.POST("/auth/login", authHandler.Login)

		protected := v1.Group("")
		protected.Use(middleware.Auth(svc.JWT))
		protected.Use(middleware.Idempotency(cfg.Idempotency))

		protected.GET("/auth/me", authHandler.Me)
		users := protected.Group("/users", middleware.RequireRole(security.RoleAdmin))
		{
			users.GET("", authHandler.ListUsers)
			users.POST("", authHandler.CreateUser)
			users.GET("/:id", authHandler.GetUser)
			users.POST("/:id/active", authHandler.SetActive)
		}

		registerCatalogRoutes(protected, base, svc)
		registerDocumentRoutes(protected, base, svc)
		registerActivityRoutes(protected, base, svc, cfg.Numerator)
	}

	return router, nil
}

func registerCatalogRoutes(r *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	materialHandler := handlers.NewMaterialHandler(base, svc.Materials)
	materials := r.Group("/materials")
	{
		materials.GET("", materialHandler.List)
		materials.GET("/:id", materialHandler.Get)
		materials.POST("", middleware.RequireRole(security.RoleAdmin), materialHandler.Create)
		materials.PATCH("/:id", middleware.RequireRole(security.RoleAdmin), materialHandler.Update)
		materials.POST("/:id/active", middleware.RequireRole(security.RoleAdmin), materialHandler.SetActive)
		materials.POST("/:id/production",
			middleware.RequireRole(security.RoleAdmin, security.RoleManufacturer),
			materialHandler.RecordProduction)
	}

	inventoryHandler := handlers.NewInventoryHandler(base, svc.Inventory)
	inventory := r.Group("/inventory")
	{
		inventory.GET("/manufacturer", inventoryHandler.ManufacturerStock)
		inventory.GET("/retailer", inventoryHandler.RetailerStock)
		inventory.GET("/transactions", inventoryHandler.Transactions)
	}
}

func registerDocumentRoutes(r *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	srnHandler := handlers.NewSRNHandler(base, svc.SRN)
	dispatchHandler := handlers.NewDispatchHandler(base, svc.Dispatch, svc.GRN)

	srns := RegisterDocumentRoutes(r.Group("/srns"), srnHandler)
	{
		srns.POST("", srnHandler.Create)
		srns.PATCH("/:id", srnHandler.Update)
		srns.POST("/:id/submit", srnHandler.Submit)
		srns.POST("/:id/decision", middleware.RequireRole(security.RoleAdmin), srnHandler.Decide)
		srns.GET("/:id/dispatch", dispatchHandler.GetBySRN)
	}

	dispatches := RegisterDocumentRoutes(r.Group("/dispatches"), dispatchHandler)
	{
		dispatches.POST("", dispatchHandler.Create)
		dispatches.POST("/:id/execute", dispatchHandler.Execute)
	}

	grns := RegisterDocumentRoutes(r.Group("/grns"), readRoutes{list: dispatchHandler.ListGRNs, get: dispatchHandler.GetGRN})
	{
		grns.POST("/:id/confirm", dispatchHandler.ConfirmGRN)
	}

	invoiceHandler := handlers.NewInvoiceHandler(base, svc.Invoice)
	invoices := RegisterDocumentRoutes(r.Group("/invoices"), invoiceHandler)
	{
		invoices.POST("", invoiceHandler.Generate)
	}

	returnHandler := handlers.NewReturnHandler(base, svc.Returns)
	returnsGroup := RegisterDocumentRoutes(r.Group("/returns"), returnHandler)
	{
		returnsGroup.POST("", returnHandler.Create)
		returnsGroup.POST("/:id/review", returnHandler.Review)
		returnsGroup.POST("/:id/resolve", returnHandler.Resolve)
	}

	saleHandler := handlers.NewSaleHandler(base, svc.Sales)
	sales := RegisterDocumentRoutes(r.Group("/sales"), saleHandler)
	{
		sales.POST("", saleHandler.Record)
	}

	commissions := r.Group("/commissions")
	{
		commissions.GET("", saleHandler.ListCommissions)
		commissions.GET("/summary", saleHandler.Summary)
		commissions.POST("/pay-all", middleware.RequireRole(security.RoleAdmin), saleHandler.PayAll)
		commissions.POST("/:id/pay", middleware.RequireRole(security.RoleAdmin), saleHandler.MarkPaid)
	}
}

func registerActivityRoutes(r *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services, gen numerator.Generator) {
	h := handlers.NewActivityHandler(base, svc.Inbox, svc.Audit, gen)

	r.GET("/notifications", h.Notifications)
	r.POST("/notifications/read", h.MarkRead)
	r.GET("/history/:id", h.History)
	r.GET("/sequences/:prefix", middleware.RequireRole(security.RoleAdmin), h.Sequence)
}
