package app

import (
	"fmt"
	"time"

	"github.com/yungbote/lms-backend/internal/clients/redis"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type Clients struct {
	RateLimiter redis.RateLimiter
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	var limiter redis.RateLimiter
	if cfg.RedisAddr != "" {
		l, err := redis.NewRateLimiter(log, redis.RateLimitConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   "lms:ratelimit",
			Limit:    cfg.RateLimitPerMinute,
			Window:   time.Minute,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis rate limiter: %w", err)
		}
		limiter = l
	} else {
		log.Info("REDIS_ADDR not set; rate limiting disabled")
	}

	return Clients{RateLimiter: limiter}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.RateLimiter != nil {
		_ = c.RateLimiter.Close()
	}
}
