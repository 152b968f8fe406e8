package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"jobconsole/common/cache"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Cache is a process-local cache.Cache. Expired entries are dropped lazily on
// read and by a janitor running every CleanupInterval.
type Cache struct {
	opts cache.Options

	mu      sync.RWMutex
	entries map[string]entry
	closed  bool

	now  func() time.Time
	stop chan struct{}
	done chan struct{}
}

func New(opts cache.Options) *Cache {
	c := &Cache{
		opts:    opts,
		entries: make(map[string]entry),
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if opts.CleanupInterval > 0 {
		go c.janitor(opts.CleanupInterval)
	} else {
		close(c.done)
	}
	return c
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	k, err := c.opts.Key(key)
	if err != nil {
		return err
	}
	data, err := cache.Encode(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return cache.ErrClosed
	}
	c.entries[k] = entry{data: data, expiresAt: c.now().Add(c.opts.TTL(ttl))}
	return nil
}

func (c *Cache) Get(ctx context.Context, key string, value interface{}) error {
	k, err := c.opts.Key(key)
	if err != nil {
		return err
	}

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return cache.ErrClosed
	}
	e, ok := c.entries[k]
	c.mu.RUnlock()

	if !ok {
		return cache.ErrNotFound
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[k]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, k)
		}
		c.mu.Unlock()
		return cache.ErrNotFound
	}
	return cache.Decode(e.data, value)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	k, err := c.opts.Key(key)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return cache.ErrClosed
	}
	delete(c.entries, k)
	return nil
}

func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return cache.ErrClosed
	}
	for k := range c.entries {
		if strings.HasPrefix(k, c.opts.Prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.entries = nil
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	return nil
}

func (c *Cache) janitor(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) evictExpired() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}
