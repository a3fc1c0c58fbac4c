package media

import (
	"context"
	"os"
	"sync"
	"time"
)

const defaultCacheTTL = 10 * time.Minute

type cacheKey struct {
	path  string
	size  int64
	mtime time.Time
}

type cacheEntry struct {
	result   ProbeResult
	probedAt time.Time
}

// CachedProber memoizes probe results per file version (path, size and
// modification time) for a TTL.
type CachedProber struct {
	prober Prober
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
}

func NewCachedProber(prober Prober, ttl time.Duration) *CachedProber {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedProber{
		prober:  prober,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[cacheKey]cacheEntry),
	}
}

func (c *CachedProber) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := cacheKey{path: path, size: info.Size(), mtime: info.ModTime()}

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && c.now().Sub(entry.probedAt) < c.ttl {
		result := entry.result
		return &result, nil
	}

	result, err := c.prober.Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{result: *result, probedAt: c.now()}
	c.mu.Unlock()
	return result, nil
}

// Invalidate drops every cached result.
func (c *CachedProber) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[cacheKey]cacheEntry)
	c.mu.Unlock()
}
