package domain

import "time"

// Status is the lifecycle state of a todo.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses returns every valid status in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

const (
	MinPriority     = 1
	MaxPriority     = 5
	DefaultPriority = MinPriority
)

// Domain entity. Does not depend on gin or redis.
type Todo struct {
	ID          string
	Title       string
	Description *string
	Status      Status
	Priority    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTodo carries already validated fields for a create.
type NewTodo struct {
	Title       string
	Description *string
	Status      Status
	Priority    int
}

// Patch is a partial update: nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *int
}

// Filter narrows a listing. Nil fields match everything.
type Filter struct {
	Status   *Status
	Priority *int
}

// Matches reports whether t satisfies every set field of f.
func (f Filter) Matches(t Todo) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	return true
}

// Stats is the aggregate summary over all todos.
type Stats struct {
	Total      int
	ByStatus   map[Status]int
	ByPriority map[int]int
}

// NewStats returns Stats with every status and priority bucket zero-filled.
func NewStats() Stats {
	s := Stats{
		ByStatus:   make(map[Status]int, len(Statuses())),
		ByPriority: make(map[int]int, MaxPriority),
	}
	for _, st := range Statuses() {
		s.ByStatus[st] = 0
	}
	for p := MinPriority; p <= MaxPriority; p++ {
		s.ByPriority[p] = 0
	}
	return s
}

// Add counts t into the summary.
func (s *Stats) Add(t Todo) {
	s.Total++
	switch t.Status {
	case StatusPending, StatusInProgress, StatusCompleted:
		s.ByStatus[t.Status]++
	}
	if t.Priority >= MinPriority && t.Priority <= MaxPriority {
		s.ByPriority[t.Priority]++
	}
}
