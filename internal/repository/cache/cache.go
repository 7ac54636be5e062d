// Package cache provides a Redis read-through decorator for the task store.
//
// Cached entries are keyed by a per-owner generation number. Every
// successful write for an owner increments the generation, so stale pages
// are never served and simply expire with their TTL.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"todo-list/internal/domain"
	"todo-list/internal/metrics"
	"todo-list/internal/repository/sqldb"
)

const keyPrefix = "todo:"

// invalidateTimeout bounds the generation bump once the write has committed.
const invalidateTimeout = 2 * time.Second

// Cache wraps a Repository, caching GetTask and QueryTasks results.
type Cache struct {
	base    sqldb.Repository
	redis   *redis.Client
	ttl     time.Duration
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

var _ sqldb.Repository = (*Cache)(nil)

// New creates a caching repository. A nil client or a zero ttl disables
// caching and every call goes to base.
func New(base sqldb.Repository, client *redis.Client, ttl time.Duration, logger *logrus.Logger, m *metrics.Metrics) *Cache {
	if base == nil {
		panic("cache.New: base repository is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Cache{base: base, redis: client, ttl: ttl, logger: logger, metrics: m}
}

// NewClient parses a redis:// URL into a client.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

type queryEntry struct {
	Items []domain.Task `json:"items"`
	Total int           `json:"total"`
}

func (c *Cache) enabled() bool {
	return c.redis != nil && c.ttl > 0
}

func (c *Cache) GetTask(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	if !c.enabled() {
		return c.base.GetTask(ctx, ownerID, id)
	}

	key := c.key(ctx, ownerID, "task", id)
	var task domain.Task
	if c.load(ctx, key, &task) {
		return &task, nil
	}

	found, err := c.base.GetTask(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, found)
	return found, nil
}

func (c *Cache) QueryTasks(ctx context.Context, ownerID string, q domain.TaskQuery) ([]domain.Task, int, error) {
	if !c.enabled() {
		return c.base.QueryTasks(ctx, ownerID, q)
	}

	digest, err := queryDigest(q)
	if err != nil {
		return c.base.QueryTasks(ctx, ownerID, q)
	}
	key := c.key(ctx, ownerID, "query", digest)

	var entry queryEntry
	if c.load(ctx, key, &entry) {
		if entry.Items == nil {
			entry.Items = []domain.Task{}
		}
		return entry.Items, entry.Total, nil
	}

	items, total, err := c.base.QueryTasks(ctx, ownerID, q)
	if err != nil {
		return nil, 0, err
	}
	c.store(ctx, key, queryEntry{Items: items, Total: total})
	return items, total, nil
}

func (c *Cache) CreateTask(ctx context.Context, task *domain.Task) error {
	if err := c.base.CreateTask(ctx, task); err != nil {
		return err
	}
	c.invalidate(ctx, task.OwnerID)
	return nil
}

func (c *Cache) UpdateTask(ctx context.Context, ownerID, id string, mutate sqldb.TaskMutator) (*domain.Task, error) {
	task, err := c.base.UpdateTask(ctx, ownerID, id, mutate)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, ownerID)
	return task, nil
}

func (c *Cache) DeleteTask(ctx context.Context, ownerID, id string) error {
	if err := c.base.DeleteTask(ctx, ownerID, id); err != nil {
		return err
	}
	c.invalidate(ctx, ownerID)
	return nil
}

func (c *Cache) UpdateStatusBatch(ctx context.Context, ownerID string, ids []string, status domain.Status, now time.Time) (int, error) {
	n, err := c.base.UpdateStatusBatch(ctx, ownerID, ids, status, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		c.invalidate(ctx, ownerID)
	}
	return n, nil
}

func (c *Cache) DeleteBatch(ctx context.Context, ownerID string, ids []string) (int, error) {
	n, err := c.base.DeleteBatch(ctx, ownerID, ids)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		c.invalidate(ctx, ownerID)
	}
	return n, nil
}

func (c *Cache) ReorderTasks(ctx context.Context, ownerID string, plan sqldb.OrderPlanner) (int, error) {
	n, err := c.base.ReorderTasks(ctx, ownerID, plan)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		c.invalidate(ctx, ownerID)
	}
	return n, nil
}

// Ping checks the store. Redis being unreachable only disables caching, so
// it is logged rather than reported.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.base.Ping(ctx); err != nil {
		return err
	}
	if c.redis != nil {
		if err := c.redis.Ping(ctx).Err(); err != nil {
			c.logger.WithError(err).Warn("redis ping failed")
		}
	}
	return nil
}

func (c *Cache) Close() error {
	err := c.base.Close()
	if c.redis != nil {
		if cerr := c.redis.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// generation returns the owner's current cache generation, "0" when unset.
func (c *Cache) generation(ctx context.Context, ownerID string) string {
	gen, err := c.redis.Get(ctx, generationKey(ownerID)).Result()
	if err != nil {
		if !stderrors.Is(err, redis.Nil) {
			c.logger.WithError(err).Debug("read cache generation")
		}
		return "0"
	}
	return gen
}

func (c *Cache) key(ctx context.Context, ownerID, kind, id string) string {
	return keyPrefix + kind + ":" + ownerID + ":" + c.generation(ctx, ownerID) + ":" + id
}

func (c *Cache) load(ctx context.Context, key string, dst interface{}) bool {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !stderrors.Is(err, redis.Nil) {
			c.logger.WithError(err).Debug("read cache entry")
		}
		c.metrics.CacheMiss()
		return false
	}
	if err := sonic.Unmarshal(data, dst); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		c.metrics.CacheMiss()
		return false
	}
	c.metrics.CacheHit()
	return true
}

func (c *Cache) store(ctx context.Context, key string, value interface{}) {
	data, err := sonic.Marshal(value)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

// invalidate moves the owner to a new generation. The generation key lives
// longer than any entry so a counter reset cannot resurrect old entries.
// The write has already committed, so the caller's cancellation must not
// skip the bump.
func (c *Cache) invalidate(ctx context.Context, ownerID string) {
	if c.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()

	key := generationKey(ownerID)
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, 2*c.ttl+time.Hour)
		return nil
	})
	if err != nil {
		c.logger.WithError(err).WithField("owner", ownerID).Warn("cache invalidation failed")
	}
}

func generationKey(ownerID string) string {
	return keyPrefix + "gen:" + ownerID
}

// queryDigest hashes every field of q that affects the result.
func queryDigest(q domain.TaskQuery) (string, error) {
	data, err := sonic.Marshal(struct {
		Status    *domain.Status   `json:"status"`
		Priority  *domain.Priority `json:"priority"`
		Category  *string          `json:"category"`
		Tags      []string         `json:"tags"`
		Search    *string          `json:"search"`
		StartDate *time.Time       `json:"startDate"`
		EndDate   *time.Time       `json:"endDate"`
		SortBy    domain.SortField `json:"sortBy"`
		SortOrder domain.SortOrder `json:"sortOrder"`
		Page      int              `json:"page"`
		Limit     int              `json:"limit"`
	}{q.Status, q.Priority, q.Category, q.Tags, q.Search, q.StartDate, q.EndDate, q.SortBy, q.SortOrder, q.Page, q.Limit})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
