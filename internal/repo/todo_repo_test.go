package repo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	dom "github.com/birlikkoshan/todo-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock advances one second on every call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTodo(title string, priority int, status dom.Status) dom.NewTodo {
	return dom.NewTodo{Title: title, Priority: priority, Status: status}
}

func titles(list []dom.Todo) []string {
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.Title
	}
	return out
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryTodoRepo()
	desc := "Finish the backend"

	created, err := r.Create(ctx, dom.NewTodo{
		Title:       "Complete project",
		Description: &desc,
		Status:      dom.StatusInProgress,
		Priority:    5,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(created.ID, "todo-"))
	assert.Len(t, created.ID, len("todo-")+8)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)
}

func TestGetByID_NotFound(t *testing.T) {
	_, err := NewMemoryTodoRepo().GetByID(context.Background(), "todo-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_RetriesOnIDCollision(t *testing.T) {
	ids := []string{"todo-aaaaaaaa", "todo-aaaaaaaa", "todo-bbbbbbbb"}
	next := 0
	r := NewMemoryTodoRepo(WithIDGenerator(func() string {
		id := ids[next]
		next++
		return id
	}))
	ctx := context.Background()

	first, err := r.Create(ctx, newTodo("a", 1, dom.StatusPending))
	require.NoError(t, err)
	second, err := r.Create(ctx, newTodo("b", 1, dom.StatusPending))
	require.NoError(t, err)

	assert.Equal(t, "todo-aaaaaaaa", first.ID)
	assert.Equal(t, "todo-bbbbbbbb", second.ID)
}

func TestList_OrderByPriorityThenCreation(t *testing.T) {
	ctx := context.Background()
	clock := newStepClock()
	r := NewMemoryTodoRepo(WithClock(clock.Now))

	for _, p := range []int{3, 5, 1} {
		_, err := r.Create(ctx, newTodo(fmt.Sprintf("p%d", p), p, dom.StatusPending))
		require.NoError(t, err)
	}

	list, err := r.List(ctx, dom.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p5", "p3", "p1"}, titles(list))
}

func TestList_EqualPriorityKeepsCreationOrder(t *testing.T) {
	ctx := context.Background()
	clock := newStepClock()
	r := NewMemoryTodoRepo(WithClock(clock.Now))

	for _, title := range []string{"first", "second", "third"} {
		_, err := r.Create(ctx, newTodo(title, 2, dom.StatusPending))
		require.NoError(t, err)
	}

	list, err := r.List(ctx, dom.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, titles(list))
}

func TestList_SameTimestampFallsBackToInsertionOrder(t *testing.T) {
	ctx := context.Background()
	frozen := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewMemoryTodoRepo(WithClock(func() time.Time { return frozen }))

	for i := 0; i < 20; i++ {
		_, err := r.Create(ctx, newTodo(fmt.Sprintf("t%02d", i), 1, dom.StatusPending))
		require.NoError(t, err)
	}

	list, err := r.List(ctx, dom.Filter{})
	require.NoError(t, err)
	for i, item := range list {
		assert.Equal(t, fmt.Sprintf("t%02d", i), item.Title)
	}
}

func TestList_Filters(t *testing.T) {
	ctx := context.Background()
	clock := newStepClock()
	r := NewMemoryTodoRepo(WithClock(clock.Now))

	seed := []dom.NewTodo{
		newTodo("a", 1, dom.StatusPending),
		newTodo("b", 4, dom.StatusCompleted),
		newTodo("c", 4, dom.StatusPending),
		newTodo("d", 2, dom.StatusPending),
		newTodo("e", 4, dom.StatusPending),
	}
	for _, n := range seed {
		_, err := r.Create(ctx, n)
		require.NoError(t, err)
	}

	pending := dom.StatusPending
	four := 4

	tests := []struct {
		name   string
		filter dom.Filter
		want   []string
	}{
		{"none", dom.Filter{}, []string{"b", "c", "e", "d", "a"}},
		{"status", dom.Filter{Status: &pending}, []string{"c", "e", "d", "a"}},
		{"priority", dom.Filter{Priority: &four}, []string{"b", "c", "e"}},
		{"both", dom.Filter{Status: &pending, Priority: &four}, []string{"c", "e"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := r.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(list))
		})
	}
}

func TestList_EmptyIsNonNil(t *testing.T) {
	list, err := NewMemoryTodoRepo().List(context.Background(), dom.Filter{})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestUpdate_OnlyProvidedFields(t *testing.T) {
	ctx := context.Background()
	clock := newStepClock()
	r := NewMemoryTodoRepo(WithClock(clock.Now))
	desc := "details"

	created, err := r.Create(ctx, dom.NewTodo{Title: "write tests", Description: &desc, Status: dom.StatusPending, Priority: 3})
	require.NoError(t, err)

	done := dom.StatusCompleted
	updated, err := r.Update(ctx, created.ID, dom.Patch{Status: &done})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "write tests", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "details", *updated.Description)
	assert.Equal(t, 3, updated.Priority)
	assert.Equal(t, dom.StatusCompleted, updated.Status)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdate_EmptyPatchStillStamps(t *testing.T) {
	ctx := context.Background()
	clock := newStepClock()
	r := NewMemoryTodoRepo(WithClock(clock.Now))

	created, err := r.Create(ctx, newTodo("noop", 1, dom.StatusPending))
	require.NoError(t, err)

	updated, err := r.Update(ctx, created.ID, dom.Patch{})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdate_ClockBehindCreation(t *testing.T) {
	ctx := context.Background()
	times := []time.Time{
		time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	i := 0
	r := NewMemoryTodoRepo(WithClock(func() time.Time {
		ts := times[i]
		i++
		return ts
	}))

	created, err := r.Create(ctx, newTodo("skew", 1, dom.StatusPending))
	require.NoError(t, err)
	updated, err := r.Update(ctx, created.ID, dom.Patch{})
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
}

func TestUpdate_NotFoundDoesNotUpsert(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryTodoRepo()
	title := "ghost"

	_, err := r.Update(ctx, "todo-missing", dom.Patch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDelete_IsPermanent(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryTodoRepo()

	created, err := r.Create(ctx, newTodo("gone", 1, dom.StatusPending))
	require.NoError(t, err)

	ok, err := r.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = r.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Update(ctx, created.ID, dom.Patch{})
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err = r.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryTodoRepo()
	for i := 0; i < 3; i++ {
		_, err := r.Create(ctx, newTodo("x", 1, dom.StatusPending))
		require.NoError(t, err)
	}
	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRevision_BumpsOnMutationOnly(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryTodoRepo()
	assert.Equal(t, uint64(0), r.Revision())

	created, err := r.Create(ctx, newTodo("x", 1, dom.StatusPending))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.Revision())

	_, _ = r.GetByID(ctx, created.ID)
	_, _ = r.List(ctx, dom.Filter{})
	_, _ = r.Update(ctx, "todo-missing", dom.Patch{})
	_, _ = r.Delete(ctx, "todo-missing")
	assert.Equal(t, uint64(1), r.Revision())

	_, err = r.Update(ctx, created.ID, dom.Patch{})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), r.Revision())

	_, err = r.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), r.Revision())
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryTodoRepo()
	desc := "original"

	created, err := r.Create(ctx, dom.NewTodo{Title: "x", Description: &desc, Status: dom.StatusPending, Priority: 1})
	require.NoError(t, err)

	desc = "caller changed input"
	*created.Description = "caller changed output"

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", *got.Description)
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryTodoRepo()

	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				created, err := r.Create(ctx, newTodo(fmt.Sprintf("w%d-%d", w, i), i%5+1, dom.StatusPending))
				if !assert.NoError(t, err) {
					return
				}
				st := dom.StatusInProgress
				_, err = r.Update(ctx, created.ID, dom.Patch{Status: &st})
				assert.NoError(t, err)
				_, err = r.List(ctx, dom.Filter{Status: &st})
				assert.NoError(t, err)
				if i%2 == 0 {
					ok, err := r.Delete(ctx, created.ID)
					assert.NoError(t, err)
					assert.True(t, ok)
				}
			}
		}(w)
	}
	wg.Wait()

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker/2, n)
}
