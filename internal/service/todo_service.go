package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/birlikkoshan/todo-api/internal/cache"
	dom "github.com/birlikkoshan/todo-api/internal/domain"
	"github.com/birlikkoshan/todo-api/internal/repo"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

var ErrNotFound = errors.New("not found")

type TodoService struct {
	repo  repo.TodoRepo
	cache *cache.TodoCache
	log   *log.Logger
	sf    singleflight.Group
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
func NewTodoService(r repo.TodoRepo, c *cache.TodoCache, logger *log.Logger) *TodoService {
	if logger == nil {
		logger = log.Default()
	}
	return &TodoService{repo: r, cache: c, log: logger}
}

func (s *TodoService) Create(ctx context.Context, in dom.NewTodo) (dom.Todo, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = dom.StatusPending
	}
	if in.Priority == 0 {
		in.Priority = dom.DefaultPriority
	}
	t, err := s.repo.Create(ctx, in)
	if err != nil {
		return dom.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	s.log.Debug("todo created", "id", t.ID, "priority", t.Priority)
	return t, nil
}

func (s *TodoService) GetByID(ctx context.Context, id string) (dom.Todo, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dom.Todo{}, mapRepoErr(err)
	}
	return t, nil
}

func (s *TodoService) List(ctx context.Context, f dom.Filter) ([]dom.Todo, error) {
	if s.cache == nil {
		return s.repo.List(ctx, f)
	}
	rev := s.repo.Revision()
	v, err, _ := s.sf.Do(listFlightKey(rev, f), func() (interface{}, error) {
		list, err := s.cache.GetList(ctx, rev, f)
		if err != nil {
			s.log.Warn("cache read failed", "op", "list", "err", err)
		} else if list != nil {
			return list, nil
		}
		list, err = s.repo.List(ctx, f)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetList(ctx, rev, f, list); err != nil {
			s.log.Warn("cache write failed", "op", "list", "err", err)
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Todo), nil
}

func (s *TodoService) Update(ctx context.Context, id string, patch dom.Patch) (dom.Todo, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	t, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return dom.Todo{}, mapRepoErr(err)
	}
	s.log.Debug("todo updated", "id", t.ID)
	return t, nil
}

func (s *TodoService) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	s.log.Debug("todo deleted", "id", id)
	return nil
}

func (s *TodoService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Stats summarizes all todos by status and priority.
func (s *TodoService) Stats(ctx context.Context) (dom.Stats, error) {
	if s.cache == nil {
		return s.computeStats(ctx)
	}
	rev := s.repo.Revision()
	v, err, _ := s.sf.Do("stats:"+strconv.FormatUint(rev, 10), func() (interface{}, error) {
		st, err := s.cache.GetStats(ctx, rev)
		if err != nil {
			s.log.Warn("cache read failed", "op", "stats", "err", err)
		} else if st != nil {
			return *st, nil
		}
		computed, err := s.computeStats(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetStats(ctx, rev, computed); err != nil {
			s.log.Warn("cache write failed", "op", "stats", "err", err)
		}
		return computed, nil
	})
	if err != nil {
		return dom.Stats{}, err
	}
	return v.(dom.Stats), nil
}

func (s *TodoService) computeStats(ctx context.Context) (dom.Stats, error) {
	all, err := s.repo.List(ctx, dom.Filter{})
	if err != nil {
		return dom.Stats{}, err
	}
	st := dom.NewStats()
	for _, t := range all {
		st.Add(t)
	}
	return st, nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func listFlightKey(rev uint64, f dom.Filter) string {
	key := "list:" + strconv.FormatUint(rev, 10) + ":"
	if f.Status != nil {
		key += string(*f.Status)
	}
	key += ":"
	if f.Priority != nil {
		key += strconv.Itoa(*f.Priority)
	}
	return key
}
