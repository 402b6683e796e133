package api

import (
	"net/http"
	"time"

	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RouterConfig carries the settings the router needs
type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
	// WriteRPS caps admin writes per second across the process; zero disables it
	WriteRPS   float64
	WriteBurst int
}

// NewRouter wires middleware and routes
func NewRouter(handler *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(logging.JSONLogger())
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	// Health and readiness endpoints
	router.GET("/live", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/ready", handler.Health)
	router.GET("/health", handler.Health)

	v1 := router.Group("/api/v1")
	{
		// Parse JWT if present to expose role info for read endpoints
		v1.Use(OptionalAuthMiddleware(cfg.JWTSecret))

		// Warehouse catalog (public reads)
		v1.GET("/warehouses", handler.ListWarehouses)
		v1.GET("/warehouses/:id", handler.GetWarehouse)

		admin := v1.Group("")
		admin.Use(AuthMiddleware(cfg.JWTSecret), AdminMiddleware())
		{
			writes := WriteRateLimit(writeLimiter(cfg))
			admin.POST("/warehouses", writes, handler.CreateWarehouse)
			admin.PUT("/warehouses/:id", writes, handler.UpdateWarehouse)
			admin.DELETE("/warehouses/:id", writes, handler.DeleteWarehouse)

			admin.GET("/products/:id/warehouse-mapping", handler.GetProductWarehouseMapping)
			admin.PUT("/products/:id/warehouse-mapping", writes, handler.SetProductWarehouseMapping)
			admin.GET("/products/:id/warehouse-mapping/summary", handler.GetProductWarehouseMappingSummary)
			admin.POST("/warehouse-mapping/preview", handler.PreviewStrategy)
		}
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "inventory-service",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	return router
}

func writeLimiter(cfg RouterConfig) *rate.Limiter {
	if cfg.WriteRPS <= 0 {
		return nil
	}
	burst := cfg.WriteBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.WriteRPS), burst)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "X-Admin-Request", logging.RequestIDHeader},
		ExposeHeaders: []string{logging.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
