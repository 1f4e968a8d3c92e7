package kv

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

const (
	scanCount = 256
	mgetBatch = 128
)

// RedisStore maps every key to a plain redis string.
//
// The client is owned by the server container; Close does not close it.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Get maps redis.Nil to ErrNotFound.
func (r *RedisStore) Get(ctx context.Context, key Key) ([]byte, error) {
	value, err := r.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set writes the value without an expiry.
func (r *RedisStore) Set(ctx context.Context, key Key, value []byte) error {
	return r.client.Set(ctx, key.String(), value, 0).Err()
}

// Delete issues DEL; a missing key is not an error.
func (r *RedisStore) Delete(ctx context.Context, key Key) error {
	return r.client.Del(ctx, key.String()).Err()
}

// List scans the keyspace with MATCH and fetches values with MGET.
// Keys deleted between the scan and the fetch are skipped.
func (r *RedisStore) List(ctx context.Context, prefix Key) ([]Entry, error) {
	pattern := escapeGlob(prefix.Prefix()) + "*"

	seen := make(map[string]struct{})
	iter := r.client.Scan(ctx, 0, pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		seen[iter.Val()] = struct{}{}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for start := 0; start < len(keys); start += mgetBatch {
		end := min(start+mgetBatch, len(keys))
		batch := keys[start:end]

		values, err := r.client.MGet(ctx, batch...).Result()
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			s, ok := v.(string)
			if !ok {
				continue
			}
			entries = append(entries, Entry{Key: batch[i], Value: []byte(s)})
		}
	}

	return entries, nil
}

// Ping sends PING.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close is a no-op; the server container closes the client.
func (r *RedisStore) Close() error {
	return nil
}

var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
