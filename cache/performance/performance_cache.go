package performance

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mediocregopher/radix/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/monitor"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Cache memoizes per user, per period aggregates in redis with a TTL and
// tag based invalidation. A backend outage degrades to compute through:
// every lookup misses, nothing is stored and the caller never sees the
// backend error. Concurrent misses on the same key are coalesced so the
// aggregate is computed once.
type Cache struct {
	client radix.Client
	prefix string
	group  singleflight.Group
}

// NewCache wraps an existing redis client. A nil client yields a cache
// that always misses, which the tests use directly.
func NewCache(client radix.Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

// Init connects to redis. When the pool cannot be created the cache is
// still returned in the degraded always-miss state.
func Init(host string, port int, poolSize int, prefix string) *Cache {
	addr := fmt.Sprintf("%s:%d", host, port)
	pool, err := radix.NewPool("tcp", addr, poolSize)
	if err != nil {
		log.Warn().Err(err).Str("section", "cache").Str("addr", addr).
			Msg("Unable to connect to redis, performance cache degraded to compute through")
		return NewCache(nil, prefix)
	}
	return NewCache(pool, prefix)
}

// Key builds the canonical cache key of a component aggregate
func (c *Cache) Key(component string, userID uint64, period string) string {
	return fmt.Sprintf("%s:%s:%d:%s", c.prefix, component, userID, period)
}

// TagUser is the invalidation tag covering every aggregate of one user
func (c *Cache) TagUser(userID uint64) string {
	return fmt.Sprintf("user:%d", userID)
}

// TagPeriod is the invalidation tag covering every aggregate of one period
func (c *Cache) TagPeriod(period string) string {
	return fmt.Sprintf("period:%s", period)
}

func (c *Cache) get(key string) ([]byte, bool) {
	if c.client == nil {
		return nil, false
	}
	var data []byte
	if err := c.client.Do(radix.Cmd(&data, "GET", key)); err != nil {
		monitor.CacheErrors.WithLabelValues("get").Inc()
		log.Debug().Err(err).Str("section", "cache").Str("key", key).Msg("cache get failed")
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (c *Cache) set(key string, data []byte, ttl time.Duration, tags []string) {
	if c.client == nil {
		return
	}
	ms := int(ttl / time.Millisecond)
	if err := c.client.Do(radix.FlatCmd(nil, "PSETEX", key, ms, data)); err != nil {
		monitor.CacheErrors.WithLabelValues("set").Inc()
		log.Debug().Err(err).Str("section", "cache").Str("key", key).Msg("cache set failed")
		return
	}
	for _, tag := range tags {
		tagKey := c.tagKey(tag)
		if err := c.client.Do(radix.Cmd(nil, "SADD", tagKey, key)); err != nil {
			log.Debug().Err(err).Str("section", "cache").Str("tag", tag).Msg("cache tag failed")
			continue
		}
		// keep the tag set around at least as long as its newest member
		_ = c.client.Do(radix.FlatCmd(nil, "PEXPIRE", tagKey, ms))
	}
}

func (c *Cache) tagKey(tag string) string {
	return fmt.Sprintf("%s:tag:%s", c.prefix, tag)
}

// Get reads a cached value into out, reporting whether it was present
func (c *Cache) Get(key string, out interface{}) bool {
	data, ok := c.get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Debug().Err(err).Str("section", "cache").Str("key", key).Msg("cache decode failed")
		return false
	}
	return true
}

// Set stores a value under the key with the given TTL and tags
func (c *Cache) Set(key string, val interface{}, ttl time.Duration, tags ...string) {
	data, err := json.Marshal(val)
	if err != nil {
		log.Debug().Err(err).Str("section", "cache").Str("key", key).Msg("cache encode failed")
		return
	}
	c.set(key, data, ttl, tags)
}

// Del removes the given keys
func (c *Cache) Del(keys ...string) {
	if c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Do(radix.Cmd(nil, "DEL", keys...)); err != nil {
		log.Debug().Err(err).Str("section", "cache").Msg("cache del failed")
	}
}

// InvalidateTag drops every key registered under the tag
func (c *Cache) InvalidateTag(tag string) {
	if c.client == nil {
		return
	}
	tagKey := c.tagKey(tag)
	var keys []string
	if err := c.client.Do(radix.Cmd(&keys, "SMEMBERS", tagKey)); err != nil {
		log.Debug().Err(err).Str("section", "cache").Str("tag", tag).Msg("cache tag lookup failed")
		return
	}
	c.Del(append(keys, tagKey)...)
}

// Remember returns the cached value for the key or computes, stores and
// returns it. The compute function runs at most once across concurrent
// callers of the same key. A compute error is returned as-is and nothing
// is cached.
func (c *Cache) Remember(component, key string, ttl time.Duration, tags []string, out interface{}, compute func() (interface{}, error)) error {
	if data, ok := c.get(key); ok {
		if err := json.Unmarshal(data, out); err == nil {
			monitor.CacheHits.WithLabelValues(component).Inc()
			return nil
		}
		// a corrupt entry counts as a miss; drop it so the flight below
		// recomputes instead of reading it back
		log.Debug().Str("section", "cache").Str("key", key).Msg("cache entry corrupt, recomputing")
		c.Del(key)
	}
	monitor.CacheMisses.WithLabelValues(component).Inc()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// another flight may have stored the value while we queued
		if data, ok := c.get(key); ok {
			return data, nil
		}
		val, err := compute()
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		c.set(key, data, ttl, tags)
		return data, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), out)
}
