package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack"
)

var (
	ErrNotFound     = errors.New("key not found in cache")
	ErrInvalidValue = errors.New("invalid value for cache")
	ErrClosed       = errors.New("cache is closed")
	ErrInvalidKey   = errors.New("invalid cache key")
)

// Cache stores arbitrary values under string keys. Values are encoded with
// msgpack, so Get needs a pointer to the same shape that was Set.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Get(ctx context.Context, key string, value interface{}) error

	Delete(ctx context.Context, key string) error

	Clear(ctx context.Context) error

	Close() error
}

type Options struct {
	DefaultTTL time.Duration

	CleanupInterval time.Duration

	// Prefix namespaces every key; Clear only touches keys under it.
	Prefix string

	RedisURL string

	RedisPassword string

	RedisDB int
}

func DefaultOptions() Options {
	return Options{
		DefaultTTL:      time.Hour,
		CleanupInterval: time.Minute * 5,
	}
}

// TTL returns ttl, or the default when ttl is not positive.
func (o Options) TTL(ttl time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	if o.DefaultTTL > 0 {
		return o.DefaultTTL
	}
	return DefaultOptions().DefaultTTL
}

func (o Options) Key(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	return o.Prefix + key, nil
}

func Encode(value interface{}) ([]byte, error) {
	if value == nil {
		return nil, ErrInvalidValue
	}
	data, err := msgpack.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return data, nil
}

func Decode(data []byte, value interface{}) error {
	if err := msgpack.Unmarshal(data, value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return nil
}
