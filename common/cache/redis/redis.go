package redis

import (
	"context"
	"errors"
	"time"

	"jobconsole/common/cache"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint used when clearing keys under the prefix.
const scanBatch = 500

type Cache struct {
	client *redis.Client
	opts   cache.Options
}

func New(opts cache.Options) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.RedisURL,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})

	return &Cache{client: client, opts: opts}
}

// Ping checks that the server is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
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
	return c.wrap(c.client.Set(ctx, k, data, c.opts.TTL(ttl)).Err())
}

func (c *Cache) Get(ctx context.Context, key string, value interface{}) error {
	k, err := c.opts.Key(key)
	if err != nil {
		return err
	}
	val, err := c.client.Get(ctx, k).Bytes()
	if err == redis.Nil {
		return cache.ErrNotFound
	}
	if err != nil {
		return c.wrap(err)
	}
	return cache.Decode(val, value)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	k, err := c.opts.Key(key)
	if err != nil {
		return err
	}
	return c.wrap(c.client.Del(ctx, k).Err())
}

// Clear removes the keys under the prefix, or the whole database when the
// cache has no prefix.
func (c *Cache) Clear(ctx context.Context) error {
	if c.opts.Prefix == "" {
		return c.wrap(c.client.FlushDB(ctx).Err())
	}

	iter := c.client.Scan(ctx, 0, c.opts.Prefix+"*", scanBatch).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
				return c.wrap(err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return c.wrap(err)
	}
	if len(batch) > 0 {
		return c.wrap(c.client.Unlink(ctx, batch...).Err())
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) wrap(err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return cache.ErrClosed
	}
	return err
}
