package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tontiva/tontine-backend/internal/config"
	"github.com/tontiva/tontine-backend/internal/handlers"
	"github.com/tontiva/tontine-backend/internal/middleware"
)

// HandlerDependencies groups the handlers wired into the router
type HandlerDependencies struct {
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	TontineHandler *handlers.TontineHandler
	PaymentHandler *handlers.PaymentHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.MetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/register", deps.AuthHandler.Register)
			auth.POST("/login", deps.AuthHandler.Login)
		}

		// Invitation links are shareable; resolving a code needs no account.
		public.GET("/invitations/:code", deps.TontineHandler.ResolveInvitation)
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		users := protected.Group("/users")
		{
			users.GET("/me", deps.UserHandler.GetProfile)
			users.PUT("/me", deps.UserHandler.UpdateProfile)
		}

		tontines := protected.Group("/tontines")
		{
			tontines.POST("", deps.TontineHandler.CreateTontine)
			tontines.GET("", deps.TontineHandler.GetTontines)
			tontines.POST("/join", deps.TontineHandler.Join)
			tontines.GET("/:id", deps.TontineHandler.GetTontineByID)
			tontines.PATCH("/:id/status", deps.TontineHandler.ChangeStatus)
			tontines.PUT("/:id/order", deps.TontineHandler.Reorder)
			tontines.GET("/:id/participants", deps.TontineHandler.GetRoster)
			tontines.POST("/:id/payments", deps.PaymentHandler.SubmitPayment)
			tontines.GET("/:id/payments", deps.PaymentHandler.GetPayments)
			tontines.GET("/:id/payments/me", deps.PaymentHandler.GetMyPayments)
		}

		payments := protected.Group("/payments")
		{
			payments.POST("/:id/validate", deps.PaymentHandler.ValidatePayment)
		}
	}

	return router
}
