package upstream

// cache.go keeps a loaded schema in memory for a time so that every request does not
// cause an introspection of the upstream server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const cacheKey = "schema"

// Cache is a Loader that remembers the result of another Loader. Concurrent loads while
// the entry is missing share a single call to the underlying Loader, which is not cancelled
// when a waiting caller's context is. Errors are not cached.
type Cache struct {
	loader Loader
	store  *bigcache.BigCache
	group  singleflight.Group
	log    zerolog.Logger
}

// NewCache wraps loader, keeping its result for at least ttl (expired entries are removed every ttl). Close should be called when the Cache is no longer needed.
func NewCache(ctx context.Context, loader Loader, ttl time.Duration, log zerolog.Logger) (*Cache, error) {
	config := bigcache.DefaultConfig(ttl)
	config.Shards = 2 // only one entry is ever stored
	config.MaxEntriesInWindow = 1
	config.MaxEntrySize = 64 << 10
	config.CleanWindow = ttl
	config.Verbose = false
	store, err := bigcache.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating schema cache: %w", err)
	}
	return &Cache{loader: loader, store: store, log: log}, nil
}

func (c *Cache) Load(ctx context.Context) ([]byte, error) {
	if data, err := c.store.Get(cacheKey); err == nil {
		return data, nil
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		c.log.Warn().Err(err).Msg("schema cache read failed")
	}

	// the shared load must not fail because the caller that started it went away
	ch := c.group.DoChan(cacheKey, func() (interface{}, error) {
		data, err := c.loader.Load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(cacheKey, data); err != nil {
			c.log.Warn().Err(err).Msg("schema cache write failed")
		}
		return data, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		c.log.Debug().Bool("shared", r.Shared).Msg("schema cache miss")
		return r.Val.([]byte), nil
	}
}

// Invalidate forces the next Load to call the underlying Loader
func (c *Cache) Invalidate() {
	if err := c.store.Delete(cacheKey); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		c.log.Warn().Err(err).Msg("schema cache delete failed")
	}
}

func (c *Cache) Close() error {
	return c.store.Close()
}
