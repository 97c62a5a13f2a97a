package repo

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	dom "github.com/birlikkoshan/todo-api/internal/domain"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("todo not found")

const idPrefix = "todo-"

type TodoRepo interface {
	Create(ctx context.Context, t dom.NewTodo) (dom.Todo, error)
	GetByID(ctx context.Context, id string) (dom.Todo, error)
	List(ctx context.Context, f dom.Filter) ([]dom.Todo, error)
	Update(ctx context.Context, id string, patch dom.Patch) (dom.Todo, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
	// Revision changes after every successful mutation.
	Revision() uint64
}

type entry struct {
	todo dom.Todo
	seq  uint64
}

// MemoryTodoRepo keeps todos in a map for the lifetime of the process.
type MemoryTodoRepo struct {
	mu    sync.RWMutex
	todos map[string]*entry
	seq   uint64
	rev   uint64
	now   func() time.Time
	newID func() string
}

type Option func(*MemoryTodoRepo)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *MemoryTodoRepo) { r.now = now }
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(gen func() string) Option {
	return func(r *MemoryTodoRepo) { r.newID = gen }
}

func NewMemoryTodoRepo(opts ...Option) *MemoryTodoRepo {
	r := &MemoryTodoRepo{
		todos: make(map[string]*entry),
		now:   time.Now,
		newID: newTodoID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func newTodoID() string {
	u := uuid.New()
	return idPrefix + u.String()[:8]
}

func (r *MemoryTodoRepo) Create(ctx context.Context, t dom.NewTodo) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for {
		if _, taken := r.todos[id]; !taken {
			break
		}
		id = r.newID()
	}

	now := r.now().UTC()
	r.seq++
	e := &entry{
		seq: r.seq,
		todo: dom.Todo{
			ID:          id,
			Title:       t.Title,
			Description: cloneString(t.Description),
			Status:      t.Status,
			Priority:    t.Priority,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	r.todos[id] = e
	r.rev++
	return snapshot(e.todo), nil
}

func (r *MemoryTodoRepo) GetByID(ctx context.Context, id string) (dom.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.todos[id]
	if !ok {
		return dom.Todo{}, ErrNotFound
	}
	return snapshot(e.todo), nil
}

// List returns matching todos ordered by priority descending, then by
// creation time ascending.
func (r *MemoryTodoRepo) List(ctx context.Context, f dom.Filter) ([]dom.Todo, error) {
	r.mu.RLock()
	matched := make([]entry, 0, len(r.todos))
	for _, e := range r.todos {
		if f.Matches(e.todo) {
			matched = append(matched, entry{todo: snapshot(e.todo), seq: e.seq})
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.todo.Priority != b.todo.Priority {
			return a.todo.Priority > b.todo.Priority
		}
		if !a.todo.CreatedAt.Equal(b.todo.CreatedAt) {
			return a.todo.CreatedAt.Before(b.todo.CreatedAt)
		}
		return a.seq < b.seq
	})

	list := make([]dom.Todo, len(matched))
	for i := range matched {
		list[i] = matched[i].todo
	}
	return list, nil
}

func (r *MemoryTodoRepo) Update(ctx context.Context, id string, patch dom.Patch) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.todos[id]
	if !ok {
		return dom.Todo{}, ErrNotFound
	}
	t := &e.todo
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = cloneString(patch.Description)
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}

	now := r.now().UTC()
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.UpdatedAt = now
	r.rev++
	return snapshot(*t), nil
}

func (r *MemoryTodoRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.todos[id]; !ok {
		return false, nil
	}
	delete(r.todos, id)
	r.rev++
	return true, nil
}

func (r *MemoryTodoRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.todos), nil
}

func (r *MemoryTodoRepo) Revision() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rev
}

// snapshot detaches the description pointer from the stored record.
func snapshot(t dom.Todo) dom.Todo {
	t.Description = cloneString(t.Description)
	return t
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
