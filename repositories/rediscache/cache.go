// Package rediscache implements the key-value tier of the trust-state
// cache-aside layer. Entries are advisory: any failure here degrades to the
// relational store, never to a wrong answer.
package rediscache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/paylane/gateway/config"
	"github.com/paylane/gateway/repositories"
)

// blockStatusTTL bounds how stale a cached block flag may be
const blockStatusTTL = time.Hour

// Cache hands out trust-cache connections backed by a shared go-redis client
type Cache struct {
	client         *redis.Client
	logger         *zap.Logger
	acquireTimeout time.Duration
}

// New creates the cache tier. No handshake happens here; liveness is probed
// per Acquire so a dead Redis only degrades reads, it never fails startup.
func New(cfg config.RedisConfig, logger *zap.Logger) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Cache{
		client:         client,
		logger:         logger,
		acquireTimeout: cfg.AcquireTimeout,
	}
}

// Acquire probes the cache and returns a usable connection, or an error when
// the cache tier is unavailable.
func (c *Cache) Acquire(ctx context.Context) (repositories.TrustCacheConn, error) {
	probeCtx, cancel := context.WithTimeout(ctx, c.acquireTimeout)
	defer cancel()

	if err := c.client.Ping(probeCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis unavailable: %w", err)
	}
	return &conn{client: c.client, logger: c.logger}, nil
}

// Close releases the underlying client
func (c *Cache) Close() error {
	return c.client.Close()
}

// conn implements repositories.TrustCacheConn
type conn struct {
	client *redis.Client
	logger *zap.Logger
}

func blockKey(entity repositories.BlockEntity, id string) string {
	return fmt.Sprintf("%s:%s:is_blocked", entity, id)
}

func publicKeyKey(merchantID string) string {
	return fmt.Sprintf("merchant:%s:public_key", merchantID)
}

// GetBlocked reads a cached block flag. Values are the literal strings "1"
// and "0"; anything else is treated as a miss.
func (c *conn) GetBlocked(ctx context.Context, entity repositories.BlockEntity, id string) (bool, bool, error) {
	value, err := c.client.Get(ctx, blockKey(entity, id)).Result()
	if err == redis.Nil {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	switch value {
	case "1":
		return true, true, nil
	case "0":
		return false, true, nil
	default:
		c.logger.Warn("unexpected cached block value, treating as miss",
			zap.String("key", blockKey(entity, id)),
			zap.String("value", value))
		return false, false, nil
	}
}

// SetBlocked writes a block flag with its TTL as one atomic pipeline
func (c *conn) SetBlocked(ctx context.Context, entity repositories.BlockEntity, id string, blocked bool) error {
	value := "0"
	if blocked {
		value = "1"
	}
	key := blockKey(entity, id)

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, value, 0)
	pipe.Expire(ctx, key, blockStatusTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// GetPublicKey reads a cached merchant public key
func (c *conn) GetPublicKey(ctx context.Context, merchantID string) (string, bool, error) {
	key, err := c.client.Get(ctx, publicKeyKey(merchantID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return key, true, nil
}

// SetPublicKey caches a merchant public key. No TTL: rotation overwrites it.
func (c *conn) SetPublicKey(ctx context.Context, merchantID, key string) error {
	return c.client.Set(ctx, publicKeyKey(merchantID), key, 0).Err()
}
