package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	dom "github.com/birlikkoshan/todo-api/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyRoot  = "todo:"
	keyList  = ":list:"
	keyStats = ":stats"
	keyAny   = "*"
)

// TodoCache caches list and stats results in Redis. Keys carry the store
// revision they were computed at, so a write never has to invalidate.
type TodoCache struct {
	rdb      *redis.Client
	ttl      time.Duration
	instance string
}

// NewTodoCache returns a new TodoCache. Each cache gets its own key namespace
// because the records it mirrors live in this process only.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl, instance: uuid.NewString()}
}

// GetList returns cached list or nil if miss.
func (c *TodoCache) GetList(ctx context.Context, rev uint64, f dom.Filter) ([]dom.Todo, error) {
	var list []dom.Todo
	ok, err := c.get(ctx, c.listKey(rev, f), &list)
	if err != nil || !ok {
		return nil, err
	}
	if list == nil {
		list = []dom.Todo{}
	}
	return list, nil
}

// SetList stores the list in cache.
func (c *TodoCache) SetList(ctx context.Context, rev uint64, f dom.Filter, list []dom.Todo) error {
	return c.set(ctx, c.listKey(rev, f), list)
}

// GetStats returns cached stats, or nil if miss.
func (c *TodoCache) GetStats(ctx context.Context, rev uint64) (*dom.Stats, error) {
	var st dom.Stats
	ok, err := c.get(ctx, c.statsKey(rev), &st)
	if err != nil || !ok {
		return nil, err
	}
	return &st, nil
}

// SetStats stores the stats in cache.
func (c *TodoCache) SetStats(ctx context.Context, rev uint64, st dom.Stats) error {
	return c.set(ctx, c.statsKey(rev), st)
}

// Ping checks the connection.
func (c *TodoCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *TodoCache) get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *TodoCache) set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

func (c *TodoCache) prefix(rev uint64) string {
	return keyRoot + c.instance + ":r" + strconv.FormatUint(rev, 10)
}

func (c *TodoCache) listKey(rev uint64, f dom.Filter) string {
	status, priority := keyAny, keyAny
	if f.Status != nil {
		status = string(*f.Status)
	}
	if f.Priority != nil {
		priority = strconv.Itoa(*f.Priority)
	}
	return c.prefix(rev) + keyList + status + ":" + priority
}

func (c *TodoCache) statsKey(rev uint64) string {
	return c.prefix(rev) + keyStats
}
