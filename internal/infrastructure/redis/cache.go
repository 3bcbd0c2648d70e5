package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/go-api-checkin/internal/domain"
)

// Cache is the key-value surface the login and check-in services use.
// Every error it returns wraps domain.ErrUnavailable; a missing key is
// reported through the found/ok results instead.
type Cache struct {
	client goredis.Cmdable
}

func NewCache(client goredis.Cmdable) *Cache {
	return &Cache{client: client}
}

// Set overwrites key with value and sets its expiration.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return domain.Unavailable("redis set", err)
	}
	return nil
}

// Get returns the scalar at key. found is false when the key does not exist.
func (c *Cache) Get(ctx context.Context, key string) (value string, found bool, err error) {
	value, err = c.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, domain.Unavailable("redis get", err)
	}
	return value, true, nil
}

// Delete removes key and reports whether it existed.
func (c *Cache) Delete(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Del(ctx, key).Result()
	if err != nil {
		return false, domain.Unavailable("redis del", err)
	}
	return n > 0, nil
}

// HSetAll writes fields to the hash at key and sets its expiration in one
// MULTI/EXEC, so the hash never exists without a TTL.
func (c *Cache) HSetAll(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error {
	if len(fields) == 0 {
		return fmt.Errorf("redis hset %s: no fields: %w", key, domain.ErrBadRequest)
	}
	args := flattenSorted(fields)
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key, args...)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return domain.Unavailable("redis hset", err)
	}
	return nil
}

// HGetAll returns the hash at key, or an empty map when it does not exist.
func (c *Cache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	fields, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, domain.Unavailable("redis hgetall", err)
	}
	return fields, nil
}

// Expire resets the TTL of key. ok is false when the key does not exist.
func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) (ok bool, err error) {
	ok, err = c.client.Expire(ctx, key, ttl).Result()
	if err != nil {
		return false, domain.Unavailable("redis expire", err)
	}
	return ok, nil
}

// SetBit sets the bit at offset (0 is the most significant bit of the first
// byte). Redis grows the string as needed.
func (c *Cache) SetBit(ctx context.Context, key string, offset int64, on bool) error {
	value := 0
	if on {
		value = 1
	}
	if err := c.client.SetBit(ctx, key, offset, value).Err(); err != nil {
		return domain.Unavailable("redis setbit", err)
	}
	return nil
}

// BitFieldGet reads width bits starting at bit offset as an unsigned
// integer, first bit most significant. A missing key reads as zero bits;
// ok is false only when Redis returned no value at all.
func (c *Cache) BitFieldGet(ctx context.Context, key string, width int, offset int64) (value uint64, ok bool, err error) {
	if width < 1 || width > 63 {
		return 0, false, fmt.Errorf("redis bitfield width %d out of range: %w", width, domain.ErrBadRequest)
	}
	vals, err := c.client.BitField(ctx, key, "GET", fmt.Sprintf("u%d", width), offset).Result()
	if err != nil {
		return 0, false, domain.Unavailable("redis bitfield", err)
	}
	if len(vals) == 0 {
		return 0, false, nil
	}
	return uint64(vals[0]), true, nil
}

// flattenSorted turns a field map into HSET arguments in key order. A stable
// order keeps the command deterministic for logging and tests.
func flattenSorted(fields map[string]string) []interface{} {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return args
}
