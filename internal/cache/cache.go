/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-based caching layer for frequently accessed data.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/agendoai/aviao-sub000/internal/availability"
	"github.com/agendoai/aviao-sub000/internal/models"
	"github.com/agendoai/aviao-sub000/internal/telemetry"
)

// Default TTL values for different cache types
const (
	DefaultDayGridTTL      = 2 * time.Minute
	DefaultAircraftTTL     = 10 * time.Minute
	DefaultAircraftListTTL = 5 * time.Minute
)

// Key prefixes for Redis cache
const (
	KeyDayGrid      = "aviao:cache:grid:"     // + aircraft_id + ":" + date
	KeyAircraft     = "aviao:cache:aircraft:" // + aircraft_id
	KeyAircraftList = "aviao:cache:aircraft_list"
)

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// TTL overrides
	DayGridTTL      time.Duration
	AircraftTTL     time.Duration
	AircraftListTTL time.Duration

	// Fallback behavior
	DisableOnError bool // If true, disable caching on Redis errors
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr:       "localhost:6379",
		DayGridTTL:      DefaultDayGridTTL,
		AircraftTTL:     DefaultAircraftTTL,
		AircraftListTTL: DefaultAircraftListTTL,
		DisableOnError:  true,
	}
}

// Cache provides Redis-backed caching with graceful fallback.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool // Circuit breaker state
}

// New creates a new cache instance.
func New(cfg Config, logger zerolog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		return &Cache{
			logger:   logger.With().Str("component", "cache").Logger(),
			config:   cfg,
			disabled: true,
		}, nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")

	return &Cache{
		client: client,
		logger: logger.With().Str("component", "cache").Logger(),
		config: cfg,
	}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAvailable returns true if the cache is operational.
func (c *Cache) IsAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

// handleError handles Redis errors with circuit breaker logic.
func (c *Cache) handleError(err error, operation string) {
	if err == nil || err == redis.Nil {
		return
	}

	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")

	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling cache due to Redis error")
	}
}

// get retrieves a value from cache and unmarshals it.
func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.IsAvailable() {
		return false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		c.handleError(err, "get")
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		return false, nil
	}

	return true, nil
}

// set stores a value in cache with TTL.
func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.IsAvailable() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.handleError(err, "set")
		return err
	}

	return nil
}

// delete removes a key from cache.
func (c *Cache) delete(ctx context.Context, key string) error {
	if !c.IsAvailable() {
		return nil
	}

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.handleError(err, "delete")
		return err
	}

	return nil
}

// deletePattern deletes all keys matching a pattern.
func (c *Cache) deletePattern(ctx context.Context, pattern string) error {
	if !c.IsAvailable() {
		return nil
	}

	// Use SCAN to find keys (safer than KEYS for production)
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.handleError(err, "scan")
			return err
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.handleError(err, "delete_batch")
				return err
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return nil
}

// Day grid caching methods

func gridKey(aircraftID string, date time.Time) string {
	return KeyDayGrid + aircraftID + ":" + date.Format("2006-01-02")
}

// GetDayGrid retrieves a cached classified day grid.
func (c *Cache) GetDayGrid(ctx context.Context, aircraftID string, date time.Time) (*availability.Day, bool) {
	var day availability.Day
	found, err := c.get(ctx, gridKey(aircraftID, date), &day)
	if err != nil || !found {
		telemetry.GridCacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}
	telemetry.GridCacheHits.WithLabelValues("hit").Inc()
	c.logger.Debug().Str("aircraft_id", aircraftID).Str("date", date.Format("2006-01-02")).Msg("day grid cache hit")
	return &day, true
}

// SetDayGrid caches a classified day grid.
func (c *Cache) SetDayGrid(ctx context.Context, day *availability.Day) error {
	c.logger.Debug().Str("aircraft_id", day.AircraftID).Str("date", day.Date.Format("2006-01-02")).Msg("caching day grid")
	return c.set(ctx, gridKey(day.AircraftID, day.Date), day, c.config.DayGridTTL)
}

// InvalidateDayGrids removes every cached grid for an aircraft. Missions
// span days and their buffers spill over midnight, so per-date deletion
// is not safe.
func (c *Cache) InvalidateDayGrids(ctx context.Context, aircraftID string) error {
	c.logger.Debug().Str("aircraft_id", aircraftID).Msg("invalidating day grid caches")
	return c.deletePattern(ctx, KeyDayGrid+aircraftID+":*")
}

// Aircraft caching methods

// GetAircraft retrieves a cached aircraft record.
func (c *Cache) GetAircraft(ctx context.Context, aircraftID string) (*models.Aircraft, bool) {
	var aircraft models.Aircraft
	found, err := c.get(ctx, KeyAircraft+aircraftID, &aircraft)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Str("aircraft_id", aircraftID).Msg("aircraft cache hit")
	return &aircraft, true
}

// SetAircraft caches an aircraft record.
func (c *Cache) SetAircraft(ctx context.Context, aircraft *models.Aircraft) error {
	c.logger.Debug().Str("aircraft_id", aircraft.ID).Msg("caching aircraft")
	return c.set(ctx, KeyAircraft+aircraft.ID, aircraft, c.config.AircraftTTL)
}

// GetAircraftList retrieves the cached fleet list.
func (c *Cache) GetAircraftList(ctx context.Context) ([]models.Aircraft, bool) {
	var fleet []models.Aircraft
	found, err := c.get(ctx, KeyAircraftList, &fleet)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Int("count", len(fleet)).Msg("aircraft list cache hit")
	return fleet, true
}

// SetAircraftList caches the fleet list.
func (c *Cache) SetAircraftList(ctx context.Context, fleet []models.Aircraft) error {
	c.logger.Debug().Int("count", len(fleet)).Msg("caching aircraft list")
	return c.set(ctx, KeyAircraftList, fleet, c.config.AircraftListTTL)
}

// InvalidateAircraft removes all caches related to an aircraft.
func (c *Cache) InvalidateAircraft(ctx context.Context, aircraftID string) error {
	c.logger.Debug().Str("aircraft_id", aircraftID).Msg("invalidating all aircraft caches")

	if err := c.delete(ctx, KeyAircraft+aircraftID); err != nil {
		return err
	}
	if err := c.delete(ctx, KeyAircraftList); err != nil {
		return err
	}
	return c.InvalidateDayGrids(ctx, aircraftID)
}

// FlushAll removes all cached data (use sparingly).
func (c *Cache) FlushAll(ctx context.Context) error {
	c.logger.Warn().Msg("flushing all cache data")
	return c.deletePattern(ctx, "aviao:cache:*")
}
