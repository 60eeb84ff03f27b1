package services

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

// CacheService caches public campaign projections in Redis. A nil
// *CacheService is valid everywhere it is used; callers then read straight
// from the database.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCacheService connects to Redis using REDIS_HOST/REDIS_PORT/REDIS_PASSWORD.
// Returns nil when REDIS_HOST is unset or the server is unreachable; the
// application runs without caching in that case.
func NewCacheService() *CacheService {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		logrus.Info("REDIS_HOST not set, public campaign cache disabled")
		return nil
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			db = parsed
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.Warnf("Redis unreachable, public campaign cache disabled: %v", err)
		return nil
	}

	ttl := 5 * time.Minute
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			ttl = parsed
		}
	}

	logrus.Info("Redis cache initialized")
	return &CacheService{client: client, ttl: ttl}
}

func publicCampaignKey(slug string) string {
	return "public_campaign:" + slug
}

// GetPublicCampaign reads a cached public projection. A miss or any Redis
// error comes back as (nil, false).
func (s *CacheService) GetPublicCampaign(slug string) (*models.PublicCampaignResponse, bool) {
	if s == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	data, err := s.client.Get(ctx, publicCampaignKey(slug)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logrus.Warnf("Redis get failed for %s: %v", slug, err)
		}
		return nil, false
	}

	var resp models.PublicCampaignResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		logrus.Warnf("Failed to decode cached campaign %s: %v", slug, err)
		return nil, false
	}
	return &resp, true
}

// SetPublicCampaign caches a public projection with the configured TTL
func (s *CacheService) SetPublicCampaign(slug string, resp *models.PublicCampaignResponse) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, publicCampaignKey(slug), data, s.ttl).Err(); err != nil {
		logrus.Warnf("Redis set failed for %s: %v", slug, err)
	}
}

// InvalidatePublicCampaign drops the cached projection after a write
func (s *CacheService) InvalidatePublicCampaign(slug string) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.client.Del(ctx, publicCampaignKey(slug)).Err(); err != nil {
		logrus.Warnf("Redis del failed for %s: %v", slug, err)
	}
}

// Close releases the Redis connection
func (s *CacheService) Close() error {
	if s == nil {
		return nil
	}
	return s.client.Close()
}
