package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-list/internal/domain"
	"todo-list/internal/errors"
	"todo-list/internal/logging"
	"todo-list/internal/metrics"
	"todo-list/internal/repository/sqldb"
)

// countingRepo counts reads that reach the underlying store.
type countingRepo struct {
	sqldb.Repository
	gets    int
	queries int
}

func (r *countingRepo) GetTask(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	r.gets++
	return r.Repository.GetTask(ctx, ownerID, id)
}

func (r *countingRepo) QueryTasks(ctx context.Context, ownerID string, q domain.TaskQuery) ([]domain.Task, int, error) {
	r.queries++
	return r.Repository.QueryTasks(ctx, ownerID, q)
}

// cancellingRepo cancels the caller's context once a write has committed.
type cancellingRepo struct {
	sqldb.Repository
	cancel context.CancelFunc
}

func (r *cancellingRepo) UpdateTask(ctx context.Context, ownerID, id string, mutate sqldb.TaskMutator) (*domain.Task, error) {
	task, err := r.Repository.UpdateTask(ctx, ownerID, id, mutate)
	r.cancel()
	return task, err
}

type fixture struct {
	cache *Cache
	base  *countingRepo
	mr    *miniredis.Miniredis
	m     *metrics.Metrics
}

func setup(t *testing.T, ttl time.Duration) fixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	store, err := sqldb.NewSQLite(context.Background(), filepath.Join(t.TempDir(), "todo.db"))
	require.NoError(t, err)

	base := &countingRepo{Repository: store}
	m := metrics.New()
	c := New(base, client, ttl, logging.Discard(), m)
	t.Cleanup(func() { c.Close() })

	return fixture{cache: c, base: base, mr: mr, m: m}
}

func newTask(owner, title string) *domain.Task {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	return &domain.Task{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		Title:     title,
		Priority:  domain.PriorityMedium,
		Status:    domain.StatusPending,
		Tags:      []string{"home"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func listQuery() domain.TaskQuery {
	return domain.TaskQuery{SortBy: domain.SortByOrder, SortOrder: domain.SortAsc, Page: 1, Limit: 20}
}

func TestQueryTasks_MissThenHit(t *testing.T) {
	f := setup(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, f.cache.CreateTask(ctx, newTask("alice", "A")))

	items, total, err := f.cache.QueryTasks(ctx, "alice", listQuery())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, f.base.queries)

	cached, cachedTotal, err := f.cache.QueryTasks(ctx, "alice", listQuery())
	require.NoError(t, err)
	assert.Equal(t, 1, f.base.queries, "second read is served from redis")
	assert.Equal(t, total, cachedTotal)
	require.Len(t, cached, 1)
	assert.Equal(t, items[0].ID, cached[0].ID)
	assert.Equal(t, []string{"home"}, cached[0].Tags)
	assert.True(t, items[0].CreatedAt.Equal(cached[0].CreatedAt))

	series, err := testutil.GatherAndCount(f.m.Registry, "todo_cache_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series, "one miss and one hit series")
}

func TestQueryTasks_DifferentQueriesDoNotCollide(t *testing.T) {
	f := setup(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, f.cache.CreateTask(ctx, newTask("alice", "A")))

	completed := domain.StatusCompleted
	q := listQuery()
	q.Status = &completed

	_, total, err := f.cache.QueryTasks(ctx, "alice", listQuery())
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = f.cache.QueryTasks(ctx, "alice", q)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Equal(t, 2, f.base.queries)

	_, total, err = f.cache.QueryTasks(ctx, "bob", listQuery())
	require.NoError(t, err)
	assert.Equal(t, 0, total, "owners never share entries")
}

func TestWritesInvalidateOwner(t *testing.T) {
	f := setup(t, time.Minute)
	ctx := context.Background()
	a := newTask("alice", "A")
	require.NoError(t, f.cache.CreateTask(ctx, a))
	require.NoError(t, f.cache.CreateTask(ctx, newTask("bob", "X")))

	_, _, err := f.cache.QueryTasks(ctx, "alice", listQuery())
	require.NoError(t, err)
	_, _, err = f.cache.QueryTasks(ctx, "bob", listQuery())
	require.NoError(t, err)
	assert.Equal(t, 2, f.base.queries)

	_, err = f.cache.UpdateTask(ctx, "alice", a.ID, func(t *domain.Task) error {
		t.Title = "A2"
		return nil
	})
	require.NoError(t, err)

	items, _, err := f.cache.QueryTasks(ctx, "alice", listQuery())
	require.NoError(t, err)
	assert.Equal(t, 3, f.base.queries, "alice's write forces a fresh read")
	assert.Equal(t, "A2", items[0].Title)

	_, _, err = f.cache.QueryTasks(ctx, "bob", listQuery())
	require.NoError(t, err)
	assert.Equal(t, 3, f.base.queries, "bob's entry survives alice's write")
}

func TestWriteInvalidatesAfterCallerCancels(t *testing.T) {
	f := setup(t, time.Minute)
	a := newTask("alice", "before")
	require.NoError(t, f.cache.CreateTask(context.Background(), a))

	got, err := f.cache.GetTask(context.Background(), "alice", a.ID)
	require.NoError(t, err)
	require.Equal(t, "before", got.Title)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelling := New(&cancellingRepo{Repository: f.base, cancel: cancel}, f.cache.redis, time.Minute, logging.Discard(), f.m)

	_, err = cancelling.UpdateTask(ctx, "alice", a.ID, func(t *domain.Task) error {
		t.Title = "after"
		return nil
	})
	require.NoError(t, err)
	require.Error(t, ctx.Err())

	got, err = f.cache.GetTask(context.Background(), "alice", a.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
}

func TestGetTask_CachedAndInvalidatedByDelete(t *testing.T) {
	f := setup(t, time.Minute)
	ctx := context.Background()
	a := newTask("alice", "A")
	require.NoError(t, f.cache.CreateTask(ctx, a))

	for i := 0; i < 3; i++ {
		got, err := f.cache.GetTask(ctx, "alice", a.ID)
		require.NoError(t, err)
		assert.Equal(t, "A", got.Title)
	}
	assert.Equal(t, 1, f.base.gets)

	require.NoError(t, f.cache.DeleteTask(ctx, "alice", a.ID))
	_, err := f.cache.GetTask(ctx, "alice", a.ID)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestBatchAndReorderInvalidate(t *testing.T) {
	f := setup(t, time.Minute)
	ctx := context.Background()
	a := newTask("alice", "A")
	b := newTask("alice", "B")
	require.NoError(t, f.cache.CreateTask(ctx, a))
	require.NoError(t, f.cache.CreateTask(ctx, b))

	gen := func() string { v, _ := f.mr.Get(generationKey("alice")); return v }
	start := gen()

	n, err := f.cache.ReorderTasks(ctx, "alice", func([]domain.OrderSlot) ([]domain.OrderSlot, error) {
		return []domain.OrderSlot{{ID: a.ID, Order: 1}, {ID: b.ID, Order: 0}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	afterReorder := gen()
	assert.NotEqual(t, start, afterReorder)

	n, err = f.cache.UpdateStatusBatch(ctx, "alice", []string{uuid.NewString()}, domain.StatusCompleted, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, afterReorder, gen(), "no-op batches keep the cache")

	n, err = f.cache.DeleteBatch(ctx, "alice", []string{a.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotEqual(t, afterReorder, gen())
}

func TestEntriesExpire(t *testing.T) {
	f := setup(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, f.cache.CreateTask(ctx, newTask("alice", "A")))

	_, _, err := f.cache.QueryTasks(ctx, "alice", listQuery())
	require.NoError(t, err)

	f.mr.FastForward(2 * time.Minute)

	_, _, err = f.cache.QueryTasks(ctx, "alice", listQuery())
	require.NoError(t, err)
	assert.Equal(t, 2, f.base.queries)
}

func TestRedisDownFallsBackToStore(t *testing.T) {
	f := setup(t, time.Minute)
	ctx := context.Background()
	a := newTask("alice", "A")
	require.NoError(t, f.cache.CreateTask(ctx, a))

	f.mr.Close()

	got, err := f.cache.GetTask(ctx, "alice", a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
	assert.NoError(t, f.cache.Ping(ctx))

	items, total, err := f.cache.QueryTasks(ctx, "alice", listQuery())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, f.base.queries)
}

func TestDisabledCachePassesThrough(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()
	require.NoError(t, f.cache.CreateTask(ctx, newTask("alice", "A")))

	for i := 0; i < 2; i++ {
		_, _, err := f.cache.QueryTasks(ctx, "alice", listQuery())
		require.NoError(t, err)
	}
	assert.Equal(t, 2, f.base.queries)
}

func TestQueryDigest(t *testing.T) {
	q1 := listQuery()
	q2 := listQuery()
	q2.Page = 2

	d1, err := queryDigest(q1)
	require.NoError(t, err)
	d1again, err := queryDigest(q1)
	require.NoError(t, err)
	d2, err := queryDigest(q2)
	require.NoError(t, err)

	assert.Equal(t, d1, d1again)
	assert.NotEqual(t, d1, d2)
}
