package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	publisherTimeout        = 2 * time.Second
	DefaultMaxSubscriptions = 64
)

// RedisClients fan session events out across server replicas. Every watched
// session holds one subscriber connection for as long as its socket is open,
// so the two sides are pooled separately.
type RedisClients struct {
	Publisher  *redis.Client
	Subscriber *redis.Client
}

// NewRedisClients connects both clients. maxSubscriptions caps how many
// sessions this replica can relay at once; zero uses the default.
func NewRedisClients(redisURL string, maxSubscriptions int) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pubClient := redis.NewClient(publisherOptions(opt))
	if err := pubClient.Ping(ctx).Err(); err != nil {
		pubClient.Close()
		return nil, fmt.Errorf("failed to ping Redis (publisher): %w", err)
	}

	subClient := redis.NewClient(subscriberOptions(opt, maxSubscriptions))
	if err := subClient.Ping(ctx).Err(); err != nil {
		pubClient.Close()
		subClient.Close()
		return nil, fmt.Errorf("failed to ping Redis (subscriber): %w", err)
	}

	return &RedisClients{
		Publisher:  pubClient,
		Subscriber: subClient,
	}, nil
}

// publisherOptions keeps publishes short: a slow broker must not hold up the
// request that triggered the event.
func publisherOptions(base *redis.Options) *redis.Options {
	opt := *base
	opt.ClientName = "persona-tutor-pub"
	opt.ReadTimeout = publisherTimeout
	opt.WriteTimeout = publisherTimeout
	return &opt
}

// subscriberOptions sizes the pool to the subscription cap and lets reads
// block, since a subscription sits idle until an event arrives.
func subscriberOptions(base *redis.Options, maxSubscriptions int) *redis.Options {
	if maxSubscriptions <= 0 {
		maxSubscriptions = DefaultMaxSubscriptions
	}
	opt := *base
	opt.ClientName = "persona-tutor-sub"
	opt.PoolSize = maxSubscriptions
	opt.MinIdleConns = 0
	opt.ReadTimeout = -1
	return &opt
}

func (r *RedisClients) Close() {
	r.Publisher.Close()
	r.Subscriber.Close()
}
