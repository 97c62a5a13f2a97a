package dto

import (
	"strconv"
	"time"

	dom "github.com/birlikkoshan/todo-api/internal/domain"
)

// CreateNonNullFields may be omitted on create but not sent as null.
var CreateNonNullFields = []string{"title", "status", "priority"}

type CreateTodoRequest struct {
	Title       string  `json:"title" binding:"required,notblank,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Status      *string `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Priority    *int    `json:"priority" binding:"omitempty,min=1,max=5"`
}

// ToNewTodo applies defaults for omitted fields.
func (r CreateTodoRequest) ToNewTodo() dom.NewTodo {
	t := dom.NewTodo{
		Title:       r.Title,
		Description: r.Description,
		Status:      dom.StatusPending,
		Priority:    dom.DefaultPriority,
	}
	if r.Status != nil {
		t.Status = dom.Status(*r.Status)
	}
	if r.Priority != nil {
		t.Priority = *r.Priority
	}
	return t
}

// UpdateTodoRequest is a partial update. A null field means "leave as is".
type UpdateTodoRequest struct {
	Title       *string `json:"title" binding:"omitempty,notblank,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Status      *string `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Priority    *int    `json:"priority" binding:"omitempty,min=1,max=5"`
}

func (r UpdateTodoRequest) ToPatch() dom.Patch {
	p := dom.Patch{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
	}
	if r.Status != nil {
		st := dom.Status(*r.Status)
		p.Status = &st
	}
	return p
}

type ListTodosQuery struct {
	Status   *string `form:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Priority *int    `form:"priority" binding:"omitempty,min=1,max=5"`
}

func (q ListTodosQuery) ToFilter() dom.Filter {
	f := dom.Filter{Priority: q.Priority}
	if q.Status != nil {
		st := dom.Status(*q.Status)
		f.Status = &st
	}
	return f
}

type TodoResponse struct {
	ID          string    `json:"id" example:"todo-1a2b3c4d"`
	Title       string    `json:"title" example:"Complete backend"`
	Description *string   `json:"description"`
	Status      string    `json:"status" example:"in_progress"`
	Priority    int       `json:"priority" example:"4"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewTodoResponse(t dom.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func NewTodoResponses(list []dom.Todo) []TodoResponse {
	out := make([]TodoResponse, len(list))
	for i := range list {
		out[i] = NewTodoResponse(list[i])
	}
	return out
}

type StatsResponse struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByPriority map[string]int `json:"by_priority"`
}

func NewStatsResponse(st dom.Stats) StatsResponse {
	out := StatsResponse{
		Total:      st.Total,
		ByStatus:   make(map[string]int, len(dom.Statuses())),
		ByPriority: make(map[string]int, dom.MaxPriority),
	}
	for _, s := range dom.Statuses() {
		out.ByStatus[string(s)] = st.ByStatus[s]
	}
	for p := dom.MinPriority; p <= dom.MaxPriority; p++ {
		out.ByPriority[strconv.Itoa(p)] = st.ByPriority[p]
	}
	return out
}

type HealthResponse struct {
	Status     string `json:"status" example:"healthy"`
	TotalTodos int    `json:"total_todos"`
	Env        string `json:"env"`
}

// FieldViolation describes one failed input constraint.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Detail string           `json:"detail"`
	Errors []FieldViolation `json:"errors,omitempty"`
}
