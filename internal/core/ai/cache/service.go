package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pantry-chef/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient 建立 Redis 連線並測試
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// Service Redis 快取後端
type Service struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewService 創建 Redis 快取服務
func NewService(client *redis.Client, prefix string, ttl time.Duration) *Service {
	return &Service{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get 獲取緩存
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	return value, nil
}

// Set 設置緩存
func (s *Service) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

func (s *Service) key(key string) string {
	return s.prefix + key
}
