// Package routes assembles the HTTP engine: middleware chain, API routes, uploaded
// file serving and the metrics endpoint.
package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/otica-api/config"
	"github.com/kendall-kelly/otica-api/controllers"
	"github.com/kendall-kelly/otica-api/metrics"
	"github.com/kendall-kelly/otica-api/middleware"
	"github.com/kendall-kelly/otica-api/models"
	"github.com/kendall-kelly/otica-api/services"
)

// Setup builds the router for cfg. auth backs the cookie authentication middleware.
func Setup(cfg *config.Config, auth *services.AuthService) *gin.Engine {
	controllers.RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(metrics.Middleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	if cfg.StorageDriver == "local" {
		uploads := router.Group(cfg.UploadURLPrefix, func(c *gin.Context) {
			c.Header("X-Content-Type-Options", "nosniff")
		})
		uploads.Static("/", cfg.UploadDir)
	}

	secure := cfg.IsProduction()
	requireAuth := middleware.RequireAuth(auth, secure)
	limiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", limiter.Middleware(), controllers.Login)
			authGroup.POST("/register", limiter.Middleware(), controllers.Register)
			authGroup.POST("/refresh", controllers.Refresh)
			authGroup.POST("/logout", controllers.Logout)
			authGroup.GET("/me", requireAuth, controllers.Me)
			authGroup.POST("/change-password", requireAuth, controllers.ChangePassword)
		}

		// Public storefront
		api.GET("/lens-types", controllers.ListLensTypes)
		api.POST("/complete-order", controllers.CompleteOrder)
		api.POST("/upload", controllers.UploadFile)

		orders := api.Group("/orders", requireAuth)
		{
			orders.GET("", controllers.ListOrders)
			orders.POST("", controllers.CreateOrder)
			orders.GET("/:id", controllers.GetOrder)
			orders.PUT("/:id/status", middleware.RequireRole(models.RoleAdmin), controllers.UpdateOrderStatus)
		}

		api.PUT("/profile", requireAuth, controllers.UpdateProfile)
	}

	return router
}
