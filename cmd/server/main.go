package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dinorefs/dinorefs-backend/docs"
	"github.com/dinorefs/dinorefs-backend/internal/database"
	"github.com/dinorefs/dinorefs-backend/internal/database/repository"
	"github.com/dinorefs/dinorefs-backend/internal/router"
	"github.com/dinorefs/dinorefs-backend/internal/services"
	"github.com/dinorefs/dinorefs-backend/internal/services/auth"
	"github.com/dinorefs/dinorefs-backend/internal/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// @title DinoRefs API
// @version 1.0
// @description Referral campaign tracking and analytics API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@dinorefs.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter `Bearer ` followed by your JWT token (e.g. "Bearer <token>")

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Set Swagger base path dynamically
	docs.SwaggerInfo.BasePath = getEnv("BASE_PATH", "/")

	// Configure logging
	configureLogging()

	// Initialize Sentry
	utils.InitSentry()

	// Initialize database connection
	db, err := database.InitDB()
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	// Prune stale refresh tokens in the background
	sessionPruner := auth.NewSessionPruner(db)
	sessionPruner.Start()
	defer sessionPruner.Stop()

	// Initialize the daily metric rollup service
	rollupService := services.NewRollupService(
		repository.NewMetricRepository(db),
		repository.NewTrackingRepository(db),
		repository.NewCampaignRepository(db),
		repository.NewUserRepository(db),
	)
	rollupService.Start()
	defer rollupService.Stop()

	// Initialize router
	r := router.SetupRouter(db)

	// Configure HTTP server
	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		logrus.Infof("Server starting on port %s", port)
		logrus.Infof("API Health Check: http://localhost:%s/api/v1/health", port)
		logrus.Infof("Swagger UI: http://localhost:%s/swagger/index.html", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown the server
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited properly")
}

func configureLogging() {
	logLevel := getEnv("LOG_LEVEL", "info")
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
