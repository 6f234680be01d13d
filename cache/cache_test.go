package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

// TestDisabledCacheIsNoOp tests that an unconfigured cache misses and ignores writes
func TestDisabledCacheIsNoOp(t *testing.T) {
	c := New("", "", time.Minute)

	if c.Enabled() {
		t.Error("cache without an address should be disabled")
	}

	c.Set(context.Background(), "chave", []byte("valor"))
	if _, ok := c.Get(context.Background(), "chave"); ok {
		t.Error("disabled cache should always miss")
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("disabled Ping should be healthy, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("disabled Close should be nil, got %v", err)
	}
}

// TestChaveIsolaTokens tests that different tokens produce different keys and
// the raw token never appears in the key
func TestChaveIsolaTokens(t *testing.T) {
	a := Chave("/api/relatorios", "page=1&limit=10", "Bearer token-da-ana")
	b := Chave("/api/relatorios", "page=1&limit=10", "Bearer token-do-bruno")

	if a == b {
		t.Error("keys for different tokens must differ")
	}
	if strings.Contains(a, "token-da-ana") {
		t.Error("raw token leaked into the cache key")
	}
	if !strings.HasPrefix(a, "painel:/api/relatorios?page=1&limit=10#") {
		t.Errorf("unexpected key layout: %q", a)
	}

	// Same inputs must be deterministic
	if a != Chave("/api/relatorios", "page=1&limit=10", "Bearer token-da-ana") {
		t.Error("key generation must be deterministic")
	}
}

// TestChaveSeparaConsultas tests that the query string participates in the key
func TestChaveSeparaConsultas(t *testing.T) {
	a := Chave("/api/relatorios", "page=1", "Bearer x")
	b := Chave("/api/relatorios", "page=2", "Bearer x")
	if a == b {
		t.Error("keys for different queries must differ")
	}
}
