package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/authpractice/todo-service/internal/core/domain"
)

const (
	keyList         = "todos:list"
	keyGeneration   = "todos:list:gen"
	defaultCacheTTL = time.Minute
)

// TodoCache stores the full todo list as a single JSON value next to a
// generation counter. Every invalidation bumps the counter, and a list is
// only stored if the counter still holds the value read before the list was
// loaded from storage.
type TodoCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTodoCache(client *redis.Client, ttl time.Duration) *TodoCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &TodoCache{client: client, ttl: ttl}
}

// GetList returns the cached list, or nil on a miss.
func (c *TodoCache) GetList(ctx context.Context) ([]domain.Todo, error) {
	b, err := c.client.Get(ctx, keyList).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	list := []domain.Todo{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return list, nil
}

// Generation returns the current list generation; 0 when never invalidated.
func (c *TodoCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, keyGeneration).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}

// StoreList writes list unless the generation moved past gen. It reports
// whether the list was stored.
func (c *TodoCache) StoreList(ctx context.Context, list []domain.Todo, gen int64) (bool, error) {
	b, err := json.Marshal(list)
	if err != nil {
		return false, fmt.Errorf("cache encode: %w", err)
	}

	stored := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, keyGeneration).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, keyList, b, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, keyGeneration)

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache set: %w", err)
	}
	return stored, nil
}

// Invalidate bumps the generation and drops the cached list atomically.
func (c *TodoCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, keyGeneration)
		p.Del(ctx, keyList)
		return nil
	})
	return err
}
