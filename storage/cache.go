package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"weekplanner/domain"
)

type backend interface {
	ListTasks(ctx context.Context, f domain.Filter) ([]domain.Task, error)
	GetTask(ctx context.Context, id int64) (domain.Task, error)
	CreateTask(ctx context.Context, n domain.NewTask) (domain.Task, error)
	UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// Cache wraps a Store with Redis-backed caching for read operations.
//
// List results are keyed by a generation counter that every write bumps, so
// a single INCR invalidates all cached filter combinations at once; stale
// generations simply age out through the TTL. Redis being unreachable never
// fails a request: reads fall through to the backing store.
type Cache struct {
	*Store
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}

	c := &Cache{
		base:  base,
		redis: client,
		ttl:   ttl,
	}
	if s, ok := base.(*Store); ok {
		c.Store = s
	}
	return c
}

func (c *Cache) ListTasks(ctx context.Context, f domain.Filter) ([]domain.Task, error) {
	key, ok := c.listKey(ctx, f)
	if ok {
		if tasks, hit := c.loadList(ctx, key); hit {
			return tasks, nil
		}
	}

	tasks, err := c.base.ListTasks(ctx, f)
	if err != nil {
		return nil, err
	}

	if ok {
		c.storeJSON(ctx, key, tasks)
	}
	return tasks, nil
}

func (c *Cache) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	key := taskCacheKey(id)
	if c.redis != nil {
		if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
			var t domain.Task
			if err := json.Unmarshal(data, &t); err == nil {
				return t, nil
			}
			_ = c.redis.Del(ctx, key).Err()
		}
	}

	t, err := c.base.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	c.storeJSON(ctx, key, t)
	return t, nil
}

func (c *Cache) CreateTask(ctx context.Context, n domain.NewTask) (domain.Task, error) {
	t, err := c.base.CreateTask(ctx, n)
	if err != nil {
		return domain.Task{}, err
	}
	c.bumpGeneration(ctx)
	return t, nil
}

func (c *Cache) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (domain.Task, error) {
	t, err := c.base.UpdateTask(ctx, id, patch)
	if err != nil {
		return domain.Task{}, err
	}
	c.bumpGeneration(ctx)
	c.evictTask(ctx, id)
	return t, nil
}

func (c *Cache) DeleteTask(ctx context.Context, id int64) error {
	if err := c.base.DeleteTask(ctx, id); err != nil {
		return err
	}
	c.bumpGeneration(ctx)
	c.evictTask(ctx, id)
	return nil
}

func (c *Cache) listKey(ctx context.Context, f domain.Filter) (string, bool) {
	if c.redis == nil {
		return "", false
	}
	gen, err := c.redis.Get(ctx, generationKey).Result()
	if err != nil {
		if err != redis.Nil {
			return "", false
		}
		gen = "0"
	}
	return fmt.Sprintf("tasks:g%s:m=%s:c=%s:s=%s:e=%s", gen, f.Member, f.Category, f.StartDate, f.EndDate), true
}

func (c *Cache) loadList(ctx context.Context, key string) ([]domain.Task, bool) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			_ = c.redis.Del(ctx, key).Err()
		}
		return nil, false
	}
	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return nil, false
	}
	return tasks, true
}

func (c *Cache) storeJSON(ctx context.Context, key string, v any) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) bumpGeneration(ctx context.Context) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Incr(ctx, generationKey).Err()
}

func (c *Cache) evictTask(ctx context.Context, id int64) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, taskCacheKey(id)).Err()
}

const generationKey = "tasks:gen"

func taskCacheKey(id int64) string {
	return "task:" + strconv.FormatInt(id, 10)
}
