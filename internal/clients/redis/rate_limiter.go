package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/lms-backend/internal/platform/logger"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	// Client exposes the connection for health collection.
	Client() goredis.UniversalClient
	Close() error
}

type RateLimitConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	Limit    int
	Window   time.Duration
}

type rateLimiter struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter connects to redis and returns a fixed-window limiter.
func NewRateLimiter(log *logger.Logger, cfg RateLimitConfig) (RateLimiter, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRateLimiter(log, rdb, cfg), nil
}

func newRateLimiter(log *logger.Logger, rdb *goredis.Client, cfg RateLimitConfig) *rateLimiter {
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "lms:ratelimit"
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 60
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}
	return &rateLimiter{
		log:    log.With("client", "RedisRateLimiter"),
		rdb:    rdb,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (r *rateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	if r == nil || r.rdb == nil {
		return Decision{}, fmt.Errorf("redis rate limiter not initialized")
	}
	now := r.now()
	bucket, reset := windowKey(r.prefix, key, now, r.window)

	var incr *goredis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, bucket)
		pipe.ExpireNX(ctx, bucket, r.window)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit incr: %w", err)
	}
	return decide(int(incr.Val()), r.limit, reset.Sub(now)), nil
}

func (r *rateLimiter) Client() goredis.UniversalClient {
	if r == nil {
		return nil
	}
	return r.rdb
}

func (r *rateLimiter) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}

// windowKey returns the counter key for the window containing now and the time that window ends.
func windowKey(prefix, key string, now time.Time, window time.Duration) (string, time.Time) {
	start := now.Truncate(window)
	return prefix + ":" + key + ":" + strconv.FormatInt(start.Unix(), 10), start.Add(window)
}

func decide(count, limit int, untilReset time.Duration) Decision {
	d := Decision{Allowed: count <= limit, Limit: limit, Remaining: limit - count}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if !d.Allowed {
		d.RetryAfter = untilReset
	}
	return d
}
