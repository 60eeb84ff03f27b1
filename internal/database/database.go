package database

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

// DB is the global database instance
var DB *gorm.DB

// InitDB initializes the database connection and performs migrations
func InitDB() (*gorm.DB, error) {
	// Get database connection parameters from environment variables
	host := getEnv("DB_HOST", "")
	port := getEnv("DB_PORT", "")
	user := getEnv("DB_USER", "")
	password := getEnv("DB_PASSWORD", "")
	dbname := getEnv("DB_NAME", "")
	sslmode := getEnv("DB_SSLMODE", "disable")

	// Validate required environment variables
	if host == "" || port == "" || user == "" || password == "" || dbname == "" {
		return nil, fmt.Errorf("missing required database environment variables. Please check your .env file")
	}

	// Create DSN string
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	// Configure GORM logger
	gormLogger := logger.New(
		logrus.New(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	// Open database connection
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   gormLogger,
		DisableForeignKeyConstraintWhenMigrating: true, // Disable FK constraints during migration to avoid order issues
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Create public schema if it doesn't exist
	err = db.Exec("CREATE SCHEMA IF NOT EXISTS public").Error
	if err != nil {
		return nil, fmt.Errorf("failed to create public schema: %w", err)
	}

	// Set search_path to public
	err = db.Exec("SET search_path TO public").Error
	if err != nil {
		return nil, fmt.Errorf("failed to set search_path: %w", err)
	}

	// gen_random_uuid() needs pgcrypto on older postgres versions
	err = db.Exec("CREATE EXTENSION IF NOT EXISTS \"pgcrypto\" SCHEMA public").Error
	if err != nil {
		return nil, fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	// Auto migrate the schema. Constraint creation is disabled above, so
	// child cleanup on campaign delete happens in the repository layer.
	err = db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Campaign{},
		&models.Channel{},
		&models.Step{},
		&models.Link{},
		&models.TrackingEvent{},
		&models.MetricSnapshot{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Composite indexes AutoMigrate does not derive from tags. Click
	// dedup scans (link_id, click_hash) and the analytics queries scan
	// (campaign_id, created_at).
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_tracking_link_hash ON referral_tracking(link_id, click_hash)",
		"CREATE INDEX IF NOT EXISTS idx_tracking_campaign_created ON referral_tracking(campaign_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_tracking_campaign_type ON referral_tracking(campaign_id, event_type)",
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			logrus.Warnf("Failed to create index: %v", err)
		}
	}

	// Set global DB instance
	DB = db

	logrus.Info("Database connection established and migrations completed")
	return db, nil
}

// GetDB returns the global database instance
func GetDB() *gorm.DB {
	return DB
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
