// Package router wires services, handlers and middleware into a Gin engine.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "stockroom/internal/docs" // Import swagger docs
	apperrors "stockroom/internal/errors"
	"stockroom/internal/handlers"
	"stockroom/internal/middleware"
	"stockroom/internal/services"
)

// Options holds the optional collaborators of the router.
type Options struct {
	// Idempotency enables Idempotency-Key handling on POST /sales when set.
	Idempotency middleware.IdempotencyStore
	// RequestLogging toggles the per-request access log.
	RequestLogging bool
}

type routeHandlers struct {
	auth  *handlers.AuthHandler
	sales *handlers.SaleHandler
	stock *handlers.StockHandler
}

// New builds the application engine on top of db.
func New(db *gorm.DB, opts Options) *gin.Engine {
	userService := services.NewUserService(db)
	stockService := services.NewStockService(db)
	saleService := services.NewSaleService(db, stockService)
	auditService := services.NewAuditService(db)

	h := routeHandlers{
		auth:  handlers.NewAuthHandler(userService, auditService),
		sales: handlers.NewSaleHandler(saleService, auditService),
		stock: handlers.NewStockHandler(stockService, auditService),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if opts.RequestLogging {
		router.Use(middleware.RequestLogging())
	}
	router.Use(middleware.ErrorHandler())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperrors.ErrNotFound)
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// The unprefixed routes keep existing clients working.
	registerRoutes(router.Group(""), h, userService, opts)
	registerRoutes(router.Group("/api/v1"), h, userService, opts)

	return router
}

func registerRoutes(rg *gin.RouterGroup, h routeHandlers, users services.UserServicer, opts Options) {
	authenticated := middleware.AuthMiddleware()
	staffOnly := middleware.RequireStaff(users)

	auth := rg.Group("/auth")
	auth.POST("/login", h.auth.Login)
	auth.GET("/me", authenticated, h.auth.GetProfile)

	sales := rg.Group("/sales")
	sales.GET("", h.sales.ListSales)
	sales.POST("", authenticated, staffOnly, middleware.Idempotency(opts.Idempotency, "sales:create"), h.sales.CreateSale)
	sales.GET("/:id", h.sales.GetSale)
	sales.PATCH("/:id", authenticated, staffOnly, h.sales.EditSale)
	sales.DELETE("/:id", authenticated, staffOnly, h.sales.DeleteSale)

	stocks := rg.Group("/stocks")
	stocks.GET("", h.stock.ListStocks)
	stocks.GET("/:id", h.stock.GetStock)
	stocks.POST("", authenticated, staffOnly, h.stock.CreateStock)
}
