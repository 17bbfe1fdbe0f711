package router

import (
	"github.com/aquagest/backend/internal/domain/identity"
	"github.com/aquagest/backend/internal/infrastructure/auth"
	"github.com/aquagest/backend/internal/infrastructure/config"
	"github.com/aquagest/backend/internal/interfaces/http/dto"
	"github.com/aquagest/backend/internal/interfaces/http/handler"
	"github.com/aquagest/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers bundles the HTTP handlers the router mounts.
type Handlers struct {
	System  *handler.SystemHandler
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Stock   *handler.StockHandler
	Client  *handler.ClientHandler
	Order   *handler.OrderHandler
	Sale    *handler.SaleHandler
	Report  *handler.ReportHandler
}

// New builds the gin engine with all middleware and routes mounted.
func New(cfg *config.Config, logger *zap.Logger, jwtService *auth.JWTService, h Handlers) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	dto.RegisterValidations()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(middleware.Recovery(logger))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.GET("/health", h.System.Health)

	v1 := engine.Group("/api/v1")
	v1.POST("/auth/login", h.Auth.Login)

	authed := v1.Group("")
	authed.Use(middleware.JWTAuth(jwtService))

	authed.GET("/auth/me", h.Auth.Me)
	authed.POST("/auth/password", h.Auth.ChangePassword)
	authed.PUT("/auth/preferences", h.Auth.UpdatePreferences)

	adminOnly := middleware.RequireRoles(identity.RoleAdmin.String())
	users := authed.Group("/users", adminOnly)
	{
		users.POST("", h.Auth.CreateUser)
		users.GET("", h.Auth.ListByRole)
		users.GET("/:id", h.Auth.GetUser)
		users.POST("/:id/deactivate", h.Auth.DeactivateUser)
	}

	products := authed.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/low-stock", h.Product.ListBelowThreshold)
		products.GET("/code/:code", h.Product.GetByCode)
		products.GET("/:id", h.Product.Get)
		products.GET("/:id/stock/movements", h.Stock.History)

		products.POST("", adminOnly, h.Product.Create)
		products.PUT("/:id", adminOnly, h.Product.Update)
		products.POST("/:id/activate", adminOnly, h.Product.Activate)
		products.POST("/:id/deactivate", adminOnly, h.Product.Deactivate)

		products.POST("/:id/stock/receive", adminOnly, h.Stock.Receive)
		products.POST("/:id/stock/adjust", adminOnly, h.Stock.Adjust)
		products.POST("/:id/stock/loss", adminOnly, h.Stock.RecordLoss)
	}

	clients := authed.Group("/clients")
	{
		clients.GET("", h.Client.List)
		clients.GET("/:id", h.Client.Get)
		clients.POST("", h.Client.Create)
		clients.PUT("/:id", h.Client.Update)
		clients.POST("/:id/activate", adminOnly, h.Client.Activate)
		clients.POST("/:id/deactivate", adminOnly, h.Client.Deactivate)
	}

	// Order and sale mutations only go through during opening hours.
	businessHours := middleware.BusinessHours(cfg.BusinessHours)

	orders := authed.Group("/orders", businessHours)
	{
		orders.GET("", h.Order.List)
		orders.GET("/overdue", h.Order.ListOverdue)
		orders.GET("/deliveries", h.Order.Deliveries)
		orders.GET("/number/:number", h.Order.GetByNumber)
		orders.GET("/:id", h.Order.Get)

		orders.POST("", h.Order.Create)
		orders.POST("/:id/lines", h.Order.AddLine)
		orders.PUT("/:id/lines/:lineId", h.Order.UpdateLine)
		orders.DELETE("/:id/lines/:lineId", h.Order.RemoveLine)
		orders.PUT("/:id/delivery", h.Order.ScheduleDelivery)
		orders.PUT("/:id/delivery-fee", adminOnly, h.Order.OverrideDeliveryFee)
		orders.POST("/:id/validate", h.Order.Validate)
		orders.POST("/:id/cancel", h.Order.Cancel)
		orders.POST("/:id/prepare", h.Order.StartPreparing)
		orders.POST("/:id/deliver", h.Order.StartDelivery)
		orders.POST("/:id/delivered", h.Order.MarkDelivered)
		orders.POST("/:id/payments", h.Order.RecordPayment)
		orders.POST("/:id/convert", h.Order.Convert)
	}

	sales := authed.Group("/sales", businessHours)
	{
		sales.GET("", h.Sale.List)
		sales.GET("/number/:number", h.Sale.GetByNumber)
		sales.GET("/:id", h.Sale.Get)
		sales.POST("", h.Sale.CreateDirect)
		sales.POST("/:id/payments", h.Sale.RecordPayment)
	}

	reports := authed.Group("/reports", adminOnly)
	{
		reports.GET("/revenue", h.Report.Revenue)
		reports.GET("/daily", h.Report.DailyTotals)
		reports.GET("/outstanding", h.Report.OutstandingBalances)
		reports.GET("/stock", h.Report.StockValuations)
	}

	return engine
}
