// Package cache provides an optional Redis-backed short-TTL cache for list
// responses. Entries are keyed by route, query string and a SHA-256 of the
// caller's bearer token, so one token's data can never be served to another.
// When no Redis address is configured the cache degrades to a no-op and every
// lookup is a miss.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/casadonazulmira/painel-api/interfaces"
	"github.com/casadonazulmira/painel-api/logging"
	"github.com/casadonazulmira/painel-api/metrics"
	"github.com/go-redis/redis/v8"
)

// Compile-time check to ensure ResponseCache implements the contract
var _ interfaces.ResponseCache = (*ResponseCache)(nil)

// ResponseCache caches serialized list responses in Redis.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a response cache. An empty addr returns a disabled cache.
func New(addr, password string, ttl time.Duration) *ResponseCache {
	if addr == "" {
		return &ResponseCache{}
	}
	return &ResponseCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		ttl: ttl,
	}
}

// Enabled reports whether a Redis backend is configured.
func (c *ResponseCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Chave builds the cache key for a request. The token only enters the key as
// a digest; raw tokens never reach Redis.
func Chave(rota, consulta, autorizacao string) string {
	digest := sha256.Sum256([]byte(autorizacao))
	return "painel:" + rota + "?" + consulta + "#" + hex.EncodeToString(digest[:])
}

// Get returns the cached body for the key, if present and fresh.
func (c *ResponseCache) Get(ctx context.Context, chave string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}

	valor, err := c.client.Get(ctx, chave).Bytes()
	if err == redis.Nil {
		metrics.CacheHitsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.CacheHitsTotal.WithLabelValues("error").Inc()
		logging.Warn("Falha ao consultar o cache de respostas", "error", err)
		return nil, false
	}

	metrics.CacheHitsTotal.WithLabelValues("hit").Inc()
	return valor, true
}

// Set stores a body under the key for the configured TTL. Failures are
// logged and ignored; the cache is an optimization, never a dependency.
func (c *ResponseCache) Set(ctx context.Context, chave string, valor []byte) {
	if !c.Enabled() {
		return
	}

	if err := c.client.Set(ctx, chave, valor, c.ttl).Err(); err != nil {
		logging.Warn("Falha ao gravar no cache de respostas", "error", err)
	}
}

// Ping checks the Redis connection. Disabled caches always report healthy.
func (c *ResponseCache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (c *ResponseCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
