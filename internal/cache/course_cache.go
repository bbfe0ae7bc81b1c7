// Package cache implements the course read cache. Browse endpoints
// serve precomputed response payloads from Redis; every course
// mutation deletes the affected keys right after a successful store
// write (write-through invalidation), so the TTL is only a backstop.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/online-course-platform/internal/config"
)

// Store is the narrow cache contract handlers depend on. A nil-safe
// no-op implementation is returned when caching is disabled.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte)
	Invalidate(ctx context.Context, keys ...string)
	CourseKey(id string) string
	AllCoursesKey() string
}

// New returns a Redis-backed store, or a no-op one when caching is
// disabled or Redis is unavailable.
func New(cfg config.CacheConfig, rdb *redis.Client) Store {
	if !cfg.Enabled || rdb == nil {
		return noop{}
	}
	return &redisStore{rdb: rdb, ttl: cfg.TTL, prefix: cfg.Prefix}
}

type redisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		// Treat redis.Nil and transport errors alike as a miss; the
		// database still answers.
		return nil, false
	}
	return b, true
}

func (s *redisStore) Set(ctx context.Context, key string, payload []byte) {
	_ = s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

func (s *redisStore) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) > 0 {
		_ = s.rdb.Del(ctx, keys...).Err()
	}
}

func (s *redisStore) CourseKey(id string) string { return s.prefix + ":" + id }
func (s *redisStore) AllCoursesKey() string      { return s.prefix + ":all" }

type noop struct{}

func (noop) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (noop) Set(context.Context, string, []byte)        {}
func (noop) Invalidate(context.Context, ...string)      {}
func (noop) CourseKey(id string) string                 { return "course:" + id }
func (noop) AllCoursesKey() string                      { return "course:all" }
