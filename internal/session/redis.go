package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "mfdist:session:"

// maxUpdateRetries bounds optimistic-lock retries in Update.
const maxUpdateRetries = 5

// RedisStore keeps sessions as JSON values with an idle TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedisStoreWithClient(client, ttl), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

// Create stores a new empty session.
func (s *RedisStore) Create(ctx context.Context) (*Session, error) {
	sess := New(s.now())
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	ok, err := s.client.SetNX(ctx, redisKey(sess.ID), data, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("create session: id collision %s", sess.ID)
	}
	return sess, nil
}

// Load fetches a session and refreshes its TTL.
func (s *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.GetEx(ctx, redisKey(id), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

// Update applies fn inside a WATCH transaction, retrying when another
// request changed the session concurrently.
func (s *RedisStore) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	key := redisKey(id)
	var result *Session

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			return fmt.Errorf("decode session %s: %w", id, err)
		}
		if err := fn(&sess); err != nil {
			return err
		}
		sess.UpdatedAt = s.now()
		out, err := json.Marshal(&sess)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.ttl)
			return nil
		})
		if err == nil {
			result = &sess
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, fmt.Errorf("update session %s: too many concurrent updates", id)
}

// Delete removes a session.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Len counts session keys. It scans the keyspace and is meant for readiness
// and metrics output, not hot paths.
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}
	return n, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
