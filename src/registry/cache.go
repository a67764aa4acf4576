package registry

import (
	"time"

	masterminds "github.com/Masterminds/semver/v3"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	versionsCacheTTL      = time.Hour
	versionsCacheCapacity = 1000
)

// versionsCache is a TTL+LRU table of crate name → sorted versions.
// Entries are only ever replaced whole; the underlying LRU cancels its
// expiry bookkeeping on eviction. Concurrent fetches for a name that is
// not yet cached each go to the source (no in-flight coalescing).
type versionsCache struct {
	lru *expirable.LRU[string, []*masterminds.Version]
}

func newVersionsCache(capacity int, ttl time.Duration) *versionsCache {
	return &versionsCache{lru: expirable.NewLRU[string, []*masterminds.Version](capacity, nil, ttl)}
}

func (c *versionsCache) get(name string) ([]*masterminds.Version, bool) {
	return c.lru.Get(name)
}

func (c *versionsCache) add(name string, versions []*masterminds.Version) {
	c.lru.Add(name, versions)
}

func (c *versionsCache) clear() {
	c.lru.Purge()
}

func (c *versionsCache) len() int {
	return c.lru.Len()
}

// cache is the process-wide versions cache.
var cache = newVersionsCache(versionsCacheCapacity, versionsCacheTTL)

// ClearCache empties the process-wide versions cache. For long-lived
// callers that want a cold rerun.
func ClearCache() {
	cache.clear()
}
