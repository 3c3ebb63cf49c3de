package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

const scanBatch = 200

// RedisStore keeps entries under "<prefix>:<region>:<key>".
type RedisStore struct {
	client redislib.UniversalClient
	prefix string
}

// NewRedisStore wraps a go-redis client. An empty prefix defaults to "stats".
func NewRedisStore(client redislib.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "stats"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// NewRedisClient parses url, applies overrides and pings the server.
func NewRedisClient(ctx context.Context, url, password string, db int) (*redislib.Client, error) {
	opts, err := redislib.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	if db != 0 {
		opts.DB = db
	}
	client := redislib.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Get(ctx context.Context, region Region, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.key(region, key)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, region Region, key string, val []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(region, key), val, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, region Region, key string) error {
	return s.client.Del(ctx, s.key(region, key)).Err()
}

func (s *RedisStore) DeleteRegion(ctx context.Context, region Region) error {
	return s.deleteMatching(ctx, fmt.Sprintf("%s:%s:*", globEscape(s.prefix), globEscape(string(region))))
}

// Flush removes only this service's keys; other tenants of the same Redis are untouched.
func (s *RedisStore) Flush(ctx context.Context) error {
	return s.deleteMatching(ctx, globEscape(s.prefix)+":*")
}

func (s *RedisStore) deleteMatching(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// globEscape quotes the SCAN MATCH metacharacters so a prefix only ever matches itself.
func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *RedisStore) key(region Region, key string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, region, key)
}

var _ Store = (*RedisStore)(nil)
