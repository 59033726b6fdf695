package search

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/umami-labs/recipedex/internal/domain/search/request"
	"github.com/umami-labs/recipedex/internal/domain/search/result"
	"github.com/umami-labs/recipedex/internal/metrics"
)

// DefaultCacheTTL bounds how stale a cached ranking can get after an upsert
// or index rebuild the cache has not seen.
const DefaultCacheTTL = 5 * time.Minute

// Searcher is the read contract the cache decorates.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.Fused, error)
}

// cacheEntry is one cached response with its expiry moment. Entries past
// expiry are evicted lazily on lookup.
type cacheEntry struct {
	hits      []result.Fused
	expiresAt time.Time
}

// CachedSearcher memoizes search responses in an in-process LRU keyed by a
// fingerprint of every request dimension. Only non-empty successful
// responses are cached.
type CachedSearcher struct {
	inner Searcher
	cache *lru.Cache[[32]byte, cacheEntry]
	ttl   time.Duration
}

// NewCachedSearcher creates the cache decorator. size must be positive;
// ttl <= 0 falls back to DefaultCacheTTL.
func NewCachedSearcher(inner Searcher, size int, ttl time.Duration) (*CachedSearcher, error) {
	cache, err := lru.New[[32]byte, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("create search cache: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedSearcher{inner: inner, cache: cache, ttl: ttl}, nil
}

// Search serves from cache when a live entry matches the request fingerprint,
// otherwise delegates and stores the response. Empty queries bypass the cache
// entirely.
func (c *CachedSearcher) Search(ctx context.Context, req *request.Request) ([]result.Fused, error) {
	if req.EmptyQuery() {
		return c.inner.Search(ctx, req)
	}

	key := requestKey(req)
	if entry, ok := c.cache.Get(key); ok {
		if time.Now().Before(entry.expiresAt) {
			metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
			return cloneFused(entry.hits), nil
		}
		c.cache.Remove(key)
	}
	metrics.SearchCacheTotal.WithLabelValues("miss").Inc()

	hits, err := c.inner.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(hits) > 0 {
		c.cache.Add(key, cacheEntry{
			hits:      cloneFused(hits),
			expiresAt: time.Now().Add(c.ttl),
		})
	}
	return hits, nil
}

// Purge drops every cached response. Called after an index rebuild so fresh
// rankings are visible immediately instead of after TTL expiry.
func (c *CachedSearcher) Purge() {
	c.cache.Purge()
}

// requestKey builds a deterministic fingerprint of every request dimension
// that can change the response.
func requestKey(req *request.Request) [32]byte {
	var b strings.Builder
	b.WriteString(req.Query())
	b.WriteString("|")
	b.WriteString(string(req.Mode()))
	fmt.Fprintf(&b, "|%d|%g|%g", req.NResults(), req.SparseWeight(), req.DenseWeight())

	if f := req.Filters(); f.HasFilters() {
		b.WriteString("|filters:")
		b.WriteString(string(f.Difficulty()))
		writeBound(&b, f.PrepTimeMin())
		writeBound(&b, f.PrepTimeMax())
		writeBound(&b, f.CookTimeMin())
		writeBound(&b, f.CookTimeMax())
		writeBound(&b, f.ServingsMin())
		writeBound(&b, f.ServingsMax())
		writeBound(&b, f.MaxTotalTime())
		b.WriteString("|")
		b.WriteString(strings.Join(f.DietaryRestrictions(), ","))
	}

	return sha256.Sum256([]byte(b.String()))
}

func writeBound(b *strings.Builder, v *int) {
	if v == nil {
		b.WriteString("|-")
		return
	}
	fmt.Fprintf(b, "|%d", *v)
}

// cloneFused shields cached slices from caller mutation. Fused values are
// immutable, so a shallow copy is enough.
func cloneFused(hits []result.Fused) []result.Fused {
	out := make([]result.Fused, len(hits))
	copy(out, hits)
	return out
}
