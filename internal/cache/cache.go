package cache

import (
	"time"

	"github.com/coocood/freecache"
)

const minCacheBytes = 512 * 1024

// TimedCache is a set of string keys that expire after a fixed TTL. It is
// used for single-use login nonces.
type TimedCache struct {
	cache *freecache.Cache
	ttl   int
}

func NewTimedCache(ttl time.Duration, capacity int) *TimedCache {
	return newTimedCache(ttl, capacity, nil)
}

func newTimedCache(ttl time.Duration, capacity int, timer freecache.Timer) *TimedCache {
	size := capacity * 256
	if size < minCacheBytes {
		size = minCacheBytes
	}
	seconds := int(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	var c *freecache.Cache
	if timer != nil {
		c = freecache.NewCacheCustomTimer(size, timer)
	} else {
		c = freecache.NewCache(size)
	}
	return &TimedCache{cache: c, ttl: seconds}
}

func (c *TimedCache) Insert(key string) {
	// Set only fails for entries larger than the segment size; nonces are tiny.
	_ = c.cache.Set([]byte(key), []byte{1}, c.ttl)
}

func (c *TimedCache) Contains(key string) bool {
	_, err := c.cache.Get([]byte(key))
	return err == nil
}

// GetAndRemove reports whether key was present and unexpired, removing it
// either way.
func (c *TimedCache) GetAndRemove(key string) (string, bool) {
	found := c.Contains(key)
	c.cache.Del([]byte(key))
	if !found {
		return "", false
	}
	return key, true
}

func (c *TimedCache) Len() int64 {
	return c.cache.EntryCount()
}
