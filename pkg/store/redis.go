package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "stylegraph:snapshot:"
	redisIndexKey  = "stylegraph:snapshots"
)

// RedisStore keeps each snapshot in a Redis hash and tracks names in a set.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis server at url
// ("redis://[:password@]host:port/db") and pings it.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Put writes the hash and index entry in one transaction.
func (s *RedisStore) Put(ctx context.Context, name string, data []byte) (Snapshot, error) {
	snap, err := newSnapshot(name, data)
	if err != nil {
		return Snapshot{}, err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		key := redisKeyPrefix + name
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]any{
			"id":         snap.ID.String(),
			"digest":     snap.Digest,
			"size":       snap.Size,
			"created_at": snap.CreatedAt.UnixMilli(),
			"data":       data,
		})
		pipe.SAdd(ctx, redisIndexKey, name)
		return nil
	})
	if err != nil {
		return Snapshot{}, redisError(err)
	}
	return snap, nil
}

// Get reads a snapshot hash.
func (s *RedisStore) Get(ctx context.Context, name string) (Snapshot, []byte, error) {
	fields, err := s.client.HGetAll(ctx, redisKeyPrefix+name).Result()
	if err != nil {
		return Snapshot{}, nil, redisError(err)
	}
	if len(fields) == 0 {
		return Snapshot{}, nil, notFound(name)
	}
	snap, err := parseRedisSnapshot(name, fields)
	if err != nil {
		return Snapshot{}, nil, err
	}
	return snap, []byte(fields["data"]), nil
}

// List reads metadata for every indexed name.
func (s *RedisStore) List(ctx context.Context) ([]Snapshot, error) {
	names, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, redisError(err)
	}
	slices.Sort(names)

	out := make([]Snapshot, 0, len(names))
	for _, name := range names {
		vals, err := s.client.HMGet(ctx, redisKeyPrefix+name, "id", "digest", "size", "created_at").Result()
		if err != nil {
			return nil, redisError(err)
		}
		fields := make(map[string]string, 4)
		for i, f := range []string{"id", "digest", "size", "created_at"} {
			if v, ok := vals[i].(string); ok {
				fields[f] = v
			}
		}
		if len(fields) == 0 {
			continue // index entry without hash
		}
		snap, err := parseRedisSnapshot(name, fields)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

// Delete removes the hash and index entry.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, redisKeyPrefix+name)
		pipe.SRem(ctx, redisIndexKey, name)
		return nil
	})
	if err != nil {
		return redisError(err)
	}
	if del.Val() == 0 {
		return notFound(name)
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func parseRedisSnapshot(name string, fields map[string]string) (Snapshot, error) {
	snap := Snapshot{Name: name, Digest: fields["digest"]}
	var err error
	if snap.ID, err = uuid.Parse(fields["id"]); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %q: bad id: %w", name, err)
	}
	if snap.Size, err = strconv.Atoi(fields["size"]); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %q: bad size: %w", name, err)
	}
	ms, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %q: bad timestamp: %w", name, err)
	}
	snap.CreatedAt = time.UnixMilli(ms).UTC()
	return snap, nil
}

// redisError marks connection failures as retryable.
func redisError(err error) error {
	var netErr net.Error
	if stderrors.As(err, &netErr) || stderrors.Is(err, redis.ErrClosed) {
		return Retryable(fmt.Errorf("redis: %w", err))
	}
	return fmt.Errorf("redis: %w", err)
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
