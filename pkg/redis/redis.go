package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shiftdesk/config"
)

// Client wraps the Redis connection. It carries three concerns: the change
// event fan-out that keeps live views fresh, the JWT blacklist, and the
// sliding-window rate limiter. Callers tolerate a nil *Client; every feature
// degrades to a no-op when Redis is unavailable.
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient connects to Redis and pings it.
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── change event fan-out ──

const changeChannelPrefix = "shiftdesk:changes:"

// ChangeEvent describes a committed write. Observers re-derive their view on
// receipt; the event itself carries no row data.
type ChangeEvent struct {
	Table    string `json:"table"`  // "shifts" | "swap_requests"
	Action   string `json:"action"` // "insert" | "update" | "delete"
	EntityID string `json:"entity_id"`
}

// PublishChange broadcasts a committed write to subscribers of its table.
// Publishing is fire-and-forget: a failed publish is logged, never returned
// to the write path.
func (c *Client) PublishChange(ctx context.Context, table, action, entityID string) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(ChangeEvent{Table: table, Action: action, EntityID: entityID})
	if err != nil {
		return
	}
	if err := c.rdb.Publish(ctx, changeChannelPrefix+table, payload).Err(); err != nil {
		c.logger.Warn("publish change event failed",
			zap.String("table", table),
			zap.Error(err),
		)
	}
}

// SubscribeChanges delivers change events for one table until ctx is
// cancelled. The returned channel is closed on cancellation.
func (c *Client) SubscribeChanges(ctx context.Context, table string) <-chan ChangeEvent {
	out := make(chan ChangeEvent)
	if c == nil {
		close(out)
		return out
	}

	sub := c.rdb.Subscribe(ctx, changeChannelPrefix+table)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// ── token blacklist ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken stores a JWT ID until the token would have expired anyway.
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if c == nil || ttl <= 0 {
		return nil
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted reports whether a JWT ID has been revoked.
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	if c == nil {
		return false, nil
	}
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── rate limiting ──

// CheckRateLimit implements a fixed-window counter. Returns true when the
// request is allowed.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if c == nil {
		return true, nil
	}
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		c.rdb.Expire(ctx, key, window)
	}
	return n <= int64(limit), nil
}

// Close shuts down the connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
