// Package redis contains the go-redis backed cache adapter.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/example/schemapilot/internal/config"
	"github.com/example/schemapilot/internal/ports/secondary"
)

const historyKeyPrefix = "schemapilot:history:"

// Client is the subset of go-redis client methods used by HistoryCache.
// Keeping it as an interface enables substitution in tests.
type Client interface {
	Ping(ctx context.Context) *goredis.StatusCmd
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Close() error
}

// HistoryCache is a best-effort ledger snapshot store. It also serves as the
// shared settings store. Nothing read from it is treated as authoritative.
type HistoryCache struct {
	client Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewHistoryCache creates a cache connected to the configured redis server.
// The connection is established lazily by go-redis.
func NewHistoryCache(cfg config.CacheConfig, logger *slog.Logger) (*HistoryCache, error) {
	ttl, err := cfg.TTLDuration()
	if err != nil {
		return nil, err
	}
	return NewHistoryCacheWithClient(goredis.NewClient(clientOptions(cfg)), ttl, logger), nil
}

// The cache sits on the refresh path, so an unreachable server must fail fast
// instead of waiting out go-redis' default timeouts and retries.
const (
	dialTimeout = 500 * time.Millisecond
	ioTimeout   = 500 * time.Millisecond
)

func clientOptions(cfg config.CacheConfig) *goredis.Options {
	opts := &goredis.Options{
		Addr:         cfg.Addr(),
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
		MaxRetries:   -1, // no retries
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	return opts
}

// NewHistoryCacheWithClient creates a HistoryCache backed by a pre-built client.
func NewHistoryCacheWithClient(client Client, ttl time.Duration, logger *slog.Logger) *HistoryCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryCache{client: client, ttl: ttl, logger: logger}
}

// HistoryKey returns the cache key for a target key.
func HistoryKey(targetKey string) string {
	return historyKeyPrefix + targetKey
}

// TryRead returns the cached ledger snapshot for a target. Any failure,
// including a missing key or an undecodable payload, is a miss.
func (c *HistoryCache) TryRead(ctx context.Context, targetKey string) ([]*secondary.HistoryRecord, bool) {
	raw, err := c.client.Get(ctx, HistoryKey(targetKey)).Result()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.logger.Debug("history cache read failed", "key", targetKey, "error", err)
		}
		return nil, false
	}

	var records []*secondary.HistoryRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		c.logger.Debug("history cache payload undecodable", "key", targetKey, "error", err)
		return nil, false
	}
	return records, true
}

// Write stores a ledger snapshot. Errors are logged and swallowed.
func (c *HistoryCache) Write(ctx context.Context, targetKey string, records []*secondary.HistoryRecord) {
	if records == nil {
		records = []*secondary.HistoryRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		c.logger.Warn("history cache encode failed", "key", targetKey, "error", err)
		return
	}
	if err := c.client.Set(ctx, HistoryKey(targetKey), data, c.ttl).Err(); err != nil {
		c.logger.Warn("history cache write failed", "key", targetKey, "error", err)
	}
}

// Ping verifies the cache server is reachable.
func (c *HistoryCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// GetSetting returns a shared setting. A missing key is found=false, not an error.
func (c *HistoryCache) GetSetting(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return val, true, nil
}

// PutSetting stores a shared setting without expiry.
func (c *HistoryCache) PutSetting(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to store setting %s: %w", key, err)
	}
	return nil
}

// Close closes the redis connection.
func (c *HistoryCache) Close() error {
	return c.client.Close()
}

var (
	_ secondary.HistoryCache  = (*HistoryCache)(nil)
	_ secondary.SettingsStore = (*HistoryCache)(nil)
)
