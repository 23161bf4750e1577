package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gateon/ticketing/config"
	"github.com/gateon/ticketing/internal/entity"
	"github.com/go-redis/redis/v8"
)

func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  cfg.PoolTimeout,
	})

	log.Println("Successfully connected to Redis")
	return client
}

// StatsCache хранит агрегированную статистику продаж в redis с TTL
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &StatsCache{client: client, ttl: ttl}
}

func statsKey(eventID int64) string {
	return fmt.Sprintf("stats:event:%d", eventID)
}

// GetEventStats возвращает (nil, nil) при промахе кеша
func (c *StatsCache) GetEventStats(ctx context.Context, eventID int64) (*entity.EventSalesStats, error) {
	data, err := c.client.Get(ctx, statsKey(eventID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stats from cache: %w", err)
	}

	var stats entity.EventSalesStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached stats: %w", err)
	}
	return &stats, nil
}

func (c *StatsCache) SetEventStats(ctx context.Context, stats *entity.EventSalesStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	if err := c.client.Set(ctx, statsKey(stats.EventID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write stats to cache: %w", err)
	}
	return nil
}
