package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// Connect builds a go-redis client and validates connectivity.
func Connect(cfg Config) (*redis.Client, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// FixedWindowLimiter keeps a counter per key per fixed time window.
type FixedWindowLimiter struct {
	client *redis.Client
	prefix string
	window time.Duration
	now    func() time.Time
}

func NewFixedWindowLimiter(client *redis.Client, prefix string, window time.Duration) *FixedWindowLimiter {
	if prefix == "" {
		prefix = "rate"
	}
	if window <= 0 {
		window = time.Minute
	}
	return &FixedWindowLimiter{
		client: client,
		prefix: prefix,
		window: window,
		now:    time.Now,
	}
}

// Incr increments the counter for (key, current window) and returns the
// current count.
func (l *FixedWindowLimiter) Incr(ctx context.Context, key string) (int64, error) {
	if key == "" {
		key = "unknown"
	}

	windowSeconds := int64(l.window.Seconds())
	bucket := l.now().UTC().Unix() / windowSeconds
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, bucket)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	// Cleanup only: the bucket in the key is what bounds the window.
	pipe.Expire(ctx, redisKey, l.window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return incr.Val(), nil
}
