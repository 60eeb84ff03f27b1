package router

import (
	"time"

	"github.com/dinorefs/dinorefs-backend/internal/database/repository"
	"github.com/dinorefs/dinorefs-backend/internal/handlers"
	"github.com/dinorefs/dinorefs-backend/internal/middleware"
	"github.com/dinorefs/dinorefs-backend/internal/services"
	"github.com/dinorefs/dinorefs-backend/internal/services/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin router with the public tracking surface and
// the authenticated referral API
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	// Create a new router
	r := gin.New()

	// Use middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Create services
	authService := auth.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewRefreshTokenRepository(db),
	)

	// Initialize RabbitMQ service; notifications degrade to logged errors
	// when the broker is unreachable
	var notificationService *services.NotificationService
	rabbitMQService, err := services.NewRabbitMQService()
	if err != nil {
		logrus.Warnf("Failed to initialize RabbitMQ: %v", err)
		notificationService = services.NewNotificationService(nil)
	} else {
		logrus.Info("RabbitMQ service initialized in router")
		notificationService = services.NewNotificationService(rabbitMQService)
	}

	// Redis-backed public campaign cache; nil cache means cache-off
	cacheService := services.NewCacheService()

	// Create middleware with services
	bearerTokenMiddleware := middleware.NewBearerTokenMiddleware(db)

	// Create handlers with services
	authHandler := handlers.NewAuthHandler(authService)
	campaignHandler := handlers.NewCampaignHandler(db, cacheService)
	channelHandler := handlers.NewChannelHandler(db)
	stepHandler := handlers.NewStepHandler(db, notificationService)
	linkHandler := handlers.NewLinkHandler(db)
	publicHandler := handlers.NewPublicHandler(db, cacheService, notificationService)
	analyticsHandler := handlers.NewAnalyticsHandler(db)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	logrus.Info("Swagger UI endpoint registered at /swagger/index.html")

	// Short-link redirect surface
	r.GET("/r/:short_code", publicHandler.HandleRedirect)
	r.POST("/r/:short_code/conversions", publicHandler.RegisterConversion)

	// API v1 routes
	api := r.Group("/api/v1")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now().Format(time.RFC3339),
			})
		})

		// Public routes
		public := api.Group("/public")
		{
			public.GET("/campaigns/:slug", publicHandler.GetPublicCampaign)
			public.POST("/steps/:id/complete", publicHandler.CompleteStep)
		}

		// Auth routes (public)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh", authHandler.RefreshToken)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(bearerTokenMiddleware.BearerTokenAuthMiddleware())
		{
			// Auth protected routes
			authProtected := protected.Group("/auth")
			{
				authProtected.POST("/logout", authHandler.Logout)
				authProtected.GET("/profile", authHandler.GetProfile)
				authProtected.POST("/change-password", authHandler.ChangePassword)
			}

			// Referral routes
			referrals := protected.Group("/referrals")
			{
				referrals.GET("/dashboard", analyticsHandler.GetDashboard)

				campaigns := referrals.Group("/campaigns")
				{
					campaigns.POST("", campaignHandler.CreateCampaign)
					campaigns.GET("", campaignHandler.GetCampaigns)
					campaigns.GET("/:id", campaignHandler.GetCampaignByID)
					campaigns.PUT("/:id", campaignHandler.UpdateCampaign)
					campaigns.DELETE("/:id", campaignHandler.DeleteCampaign)

					campaigns.GET("/:id/analytics", analyticsHandler.GetCampaignAnalytics)
					campaigns.GET("/:id/forecast", analyticsHandler.ForecastCampaign)
					campaigns.GET("/:id/export", analyticsHandler.ExportCampaign)

					campaigns.POST("/:id/channels", channelHandler.CreateChannel)
					campaigns.GET("/:id/channels", channelHandler.GetChannels)
					campaigns.GET("/:id/channels/:channel_id", channelHandler.GetChannelByID)
					campaigns.PUT("/:id/channels/:channel_id", channelHandler.UpdateChannel)
					campaigns.DELETE("/:id/channels/:channel_id", channelHandler.DeleteChannel)

					campaigns.POST("/:id/channels/:channel_id/steps", stepHandler.CreateStep)
					campaigns.GET("/:id/channels/:channel_id/steps", stepHandler.GetSteps)
					campaigns.PUT("/:id/channels/:channel_id/steps/:step_id", stepHandler.UpdateStep)
					campaigns.DELETE("/:id/channels/:channel_id/steps/:step_id", stepHandler.DeleteStep)

					campaigns.POST("/:id/links", linkHandler.CreateLink)
					campaigns.GET("/:id/links", linkHandler.GetLinks)
					campaigns.GET("/:id/links/:link_id", linkHandler.GetLinkByID)
					campaigns.PUT("/:id/links/:link_id", linkHandler.UpdateLink)
					campaigns.DELETE("/:id/links/:link_id", linkHandler.DeleteLink)
					campaigns.GET("/:id/links/:link_id/analytics", analyticsHandler.GetLinkAnalytics)
				}
			}
		}
	}

	return r
}
