package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pscheid92/wincounter/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// DurableStore is the Redis-backed durable tier. Each session is a plain
// string key holding the JSON record, expired by Redis itself.
type DurableStore struct {
	rdb goredis.Cmdable
}

var _ domain.DurableStore = (*DurableStore)(nil)

func NewDurableStore(rdb goredis.Cmdable) *DurableStore {
	return &DurableStore{rdb: rdb}
}

func (s *DurableStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET %s: %w", key, err)
	}
	return data, nil
}

func (s *DurableStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}

func (s *DurableStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis PING: %w", err)
	}
	return nil
}
