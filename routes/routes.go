package routes

import (
	"github.com/Sage-GtHub/neurostate-sub005/controllers"
	"github.com/Sage-GtHub/neurostate-sub005/gateway"
	"github.com/Sage-GtHub/neurostate-sub005/helpers"
	"github.com/Sage-GtHub/neurostate-sub005/middleware"
	"github.com/Sage-GtHub/neurostate-sub005/realtime"
	"github.com/Sage-GtHub/neurostate-sub005/services"

	"github.com/gin-gonic/gin"
)

// Deps carries the shared services handlers need. Built once in main.
type Deps struct {
	Limiter *helpers.RateLimiter
	Guard   *services.GenerationGuard
	Gateway *gateway.Client
	Bridge  *realtime.Bridge
}

func SetupRoutes(router *gin.RouterGroup, deps Deps) {
	router.POST("/signup", controllers.Signup())
	router.POST("/login", controllers.Login())
	router.POST("/forgot-password", controllers.ForgotPassword())
	router.POST("/reset-password", controllers.ResetPassword())
	protected := router.Group("/")
	protected.Use(middleware.Authenticate())
	{
		// Current user (all authenticated)
		protected.GET("/me", controllers.GetMe())

		// ADMIN only
		protected.GET("/users",
			middleware.Authorize("ADMIN"),
			controllers.GetUsers(),
		)

		// USER (self) + ADMIN
		protected.GET("/user/:id",
			middleware.Authorize("ADMIN", "USER"),
			controllers.GetUser(),
		)

		// Biometric samples + readiness (authenticated users)
		protected.POST("/metrics",
			middleware.Throttle(deps.Limiter, "sync"),
			controllers.IngestMetrics(),
		)
		protected.GET("/metrics", controllers.GetMyMetrics())
		protected.GET("/readiness", controllers.GetMyReadiness())

		// Forecasts
		protected.POST("/forecasts/generate",
			middleware.Throttle(deps.Limiter, "forecast"),
			controllers.GenerateForecasts(deps.Gateway, deps.Guard),
		)
		protected.GET("/forecasts", controllers.GetMyForecasts())

		// Nudges
		protected.POST("/nudges/generate",
			middleware.Throttle(deps.Limiter, "insights"),
			controllers.GenerateNudges(deps.Gateway, deps.Guard),
		)
		protected.GET("/nudges", controllers.GetMyNudges())
		protected.PATCH("/nudges/:id", controllers.UpdateNudge())
		protected.GET("/nudges/stream", controllers.StreamNudges(deps.Bridge))
	}
}
