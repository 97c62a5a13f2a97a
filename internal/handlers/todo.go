package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/birlikkoshan/todo-api/internal/dto"
	"github.com/birlikkoshan/todo-api/internal/service"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

type TodoHandler struct {
	svc *service.TodoService
	log *log.Logger
}

func NewTodoHandler(svc *service.TodoService, logger *log.Logger) *TodoHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &TodoHandler{svc: svc, log: logger}
}

// Create godoc
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTodoRequest  true  "Todo body"
// @Success      201   {object}  dto.TodoResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	var req dto.CreateTodoRequest
	if err := bindJSON(c, &req, dto.CreateNonNullFields...); err != nil {
		validationFailed(c, err)
		return
	}

	t, err := h.svc.Create(c.Request.Context(), req.ToNewTodo())
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTodoResponse(t))
}

// List godoc
// @Summary      List todos
// @Description  Sorted by priority (descending) and creation time (ascending).
// @Tags         todos
// @Produce      json
// @Param        status    query     string  false  "Filter by status"  Enums(pending, in_progress, completed)
// @Param        priority  query     int     false  "Filter by priority"  minimum(1)  maximum(5)
// @Success      200       {array}   dto.TodoResponse
// @Failure      422       {object}  dto.ErrorResponse
// @Router       /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	var q dto.ListTodosQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		validationFailed(c, err)
		return
	}
	list, err := h.svc.List(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoResponses(list))
}

// GetByID godoc
// @Summary      Get a todo by ID
// @Tags         todos
// @Produce      json
// @Param        id   path      string  true  "Todo ID"
// @Success      200  {object}  dto.TodoResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /todos/{id} [get]
func (h *TodoHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	t, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoResponse(t))
}

// Update godoc
// @Summary      Update a todo
// @Description  Only provided fields are changed; null fields are ignored.
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Todo ID"
// @Param        body  body      dto.UpdateTodoRequest  true  "Partial update"
// @Success      200   {object}  dto.TodoResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /todos/{id} [put]
func (h *TodoHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req dto.UpdateTodoRequest
	if err := bindJSON(c, &req); err != nil {
		validationFailed(c, err)
		return
	}
	t, err := h.svc.Update(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		h.serviceError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoResponse(t))
}

// Delete godoc
// @Summary      Delete a todo
// @Tags         todos
// @Param        id   path  string  true  "Todo ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.serviceError(c, id, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats godoc
// @Summary      Todo statistics
// @Tags         statistics
// @Produce      json
// @Success      200  {object}  dto.StatsResponse
// @Router       /todos/stats/summary [get]
func (h *TodoHandler) Stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStatsResponse(st))
}

func (h *TodoHandler) serviceError(c *gin.Context, id string, err error) {
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Detail: fmt.Sprintf("TODO item with id '%s' not found", id),
		})
		return
	}
	h.internalError(c, err)
}

func (h *TodoHandler) internalError(c *gin.Context, err error) {
	h.log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Detail: "internal server error"})
}

func validationFailed(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
		Detail: "validation failed",
		Errors: violations(err),
	})
}
