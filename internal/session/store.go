// Package session holds the cache-resident user snapshot that backs
// every issued token. A token is only as alive as its session entry:
// deleting the entry revokes otherwise valid tokens.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/online-course-platform/internal/model"
)

// ErrNotFound is returned when no session entry exists for the user.
var ErrNotFound = errors.New("session not found")

// Store is what the auth layer needs from the session cache. The
// Redis implementation lives below; tests use an in-memory fake.
type Store interface {
	Set(ctx context.Context, user *model.User) error
	Get(ctx context.Context, userID uint64) (*model.User, error)
	Delete(ctx context.Context, userID uint64) error
}

// RedisStore keeps one serialized user per key, expiring with the
// refresh token so dead sessions clean themselves up.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func key(userID uint64) string { return "session:" + strconv.FormatUint(userID, 10) }

// Set writes the user snapshot, replacing any previous entry and
// resetting the TTL.
func (s *RedisStore) Set(ctx context.Context, user *model.User) error {
	b, err := json.Marshal(sessionUser{User: user, PasswordHash: user.PasswordHash})
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(user.ID), b, s.ttl).Err()
}

// Get reads and validates the snapshot. A missing key or an entry
// that does not decode into a user is ErrNotFound: cache content is
// never trusted as-is.
func (s *RedisStore) Get(ctx context.Context, userID uint64) (*model.User, error) {
	b, err := s.rdb.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var su sessionUser
	if err := json.Unmarshal(b, &su); err != nil || su.User == nil || su.User.ID != userID {
		return nil, ErrNotFound
	}
	su.User.PasswordHash = su.PasswordHash
	return su.User, nil
}

// Delete removes the entry; deleting an absent key is a no-op.
func (s *RedisStore) Delete(ctx context.Context, userID uint64) error {
	return s.rdb.Del(ctx, key(userID)).Err()
}

// sessionUser wraps the user so the password hash survives the
// round-trip (model.User deliberately never marshals it).
type sessionUser struct {
	User         *model.User `json:"user"`
	PasswordHash string      `json:"password_hash,omitempty"`
}
