package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/IgorGrieder/slugs/internal/infrastructure/logger"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewClient builds a pooled client. It does not dial; a Redis that is down
// at startup only degrades rate limiting.
func NewClient(cfg Config) *goredis.Client {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 10
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 500 * time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 500 * time.Millisecond
	}

	return goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// Ping is used at startup and by the health check.
func Ping(ctx context.Context, client goredis.UniversalClient) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Connect builds a client and logs whether Redis answered.
func Connect(ctx context.Context, cfg Config) *goredis.Client {
	client := NewClient(cfg)
	if err := Ping(ctx, client); err != nil {
		logger.Warn("redis unreachable at startup, rate limiting will use in-process counters",
			zap.String("addr", cfg.Addr),
			zap.Error(err),
		)
		return client
	}
	logger.Info("Successfully connected to Redis", zap.String("addr", cfg.Addr))
	return client
}
