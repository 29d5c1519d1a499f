package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"todoapi/internal/auth"
	dom "todoapi/internal/domain"
	"todoapi/internal/dto"
	"todoapi/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type TodoHandler struct {
	svc *service.TodoService
	log zerolog.Logger
}

func NewTodoHandler(svc *service.TodoService, log zerolog.Logger) *TodoHandler {
	return &TodoHandler{svc: svc, log: log}
}

// List godoc
// @Summary      List the requester's todos
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Param        sort_by     query  string  false  "created_at|due_date|title|completed|category"
// @Param        sort_order  query  string  false  "asc|desc"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	list, sort, err := h.svc.List(c.Request.Context(), userID, c.Query("sort_by"), c.Query("sort_order"))
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("list todos")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch todos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    todosToResponses(list),
		"sort":    sort,
	})
}

// Create godoc
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreateTodoRequest  true  "Todo body"
// @Success      201  {object}  map[string]interface{}
// @Failure      422  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	var req dto.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "errors": dto.BindingErrors(err)})
		return
	}
	// binding "required" lets whitespace-only titles through.
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"errors":  gin.H{"title": "The title field is required."},
		})
		return
	}

	t, err := h.svc.Create(c.Request.Context(), userID, service.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate.Ptr(),
		Category:    req.Category,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidDueDate) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"errors":  gin.H{"due_date": "The due date must be a date after today."},
			})
			return
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("create todo")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create todo"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    todoToResponse(t),
		"message": "Todo created successfully",
	})
}

// Show godoc
// @Summary      Get a todo by ID
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Todo ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /todos/{id} [get]
func (h *TodoHandler) Show(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.respondGetError(c, err, userID, "Failed to fetch todo")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": todoToResponse(t)})
}

// Update godoc
// @Summary      Partially update a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                    true  "Todo ID"
// @Param        body  body  dto.UpdateTodoRequest  true  "Any subset of fields"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      422  {object}  map[string]interface{}
// @Router       /todos/{id} [put]
func (h *TodoHandler) Update(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	// Ownership is checked before the body is validated, so a foreign record
	// with a bad body still gets 403, not 422.
	if _, err := h.svc.Get(c.Request.Context(), userID, id); err != nil {
		h.respondGetError(c, err, userID, "Failed to fetch todo")
		return
	}

	var req dto.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "errors": dto.BindingErrors(err)})
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"errors":  gin.H{"title": "The title field is required."},
		})
		return
	}

	t, err := h.svc.Update(c.Request.Context(), userID, id, service.UpdateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     service.DueDatePatch{Set: req.DueDate.Present(), Value: req.DueDate.Ptr()},
		Category:    req.Category,
	})
	if err != nil {
		h.respondGetError(c, err, userID, "Failed to update todo")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    todoToResponse(t),
		"message": "Todo updated successfully",
	})
}

// Delete godoc
// @Summary      Delete a todo
// @Tags         todos
// @Security     BearerAuth
// @Param        id  path  int  true  "Todo ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID, id); err != nil {
		h.respondGetError(c, err, userID, "Failed to delete todo")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Todo deleted successfully"})
}

// Search godoc
// @Summary      Search todos by substring
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Param        term  path  string  true  "Search term (title/description/category)"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /todos/search/{term} [get]
func (h *TodoHandler) Search(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	list, err := h.svc.Search(c.Request.Context(), userID, c.Param("term"))
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("search todos")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": todosToResponses(list)})
}

// FilterByStatus godoc
// @Summary      Filter todos by completion status
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Param        filter  path  string  true  "completed|pending|anything else for all"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /todos/filter/{filter} [get]
func (h *TodoHandler) FilterByStatus(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	f := dom.ParseStatusFilter(c.Param("filter"))
	list, err := h.svc.Filter(c.Request.Context(), userID, f)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("filter todos")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Filter failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": todosToResponses(list)})
}

// Upcoming godoc
// @Summary      Upcoming and overdue todos
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /todos/upcoming/overview [get]
func (h *TodoHandler) Upcoming(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	ov, err := h.svc.UpcomingOverdue(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("upcoming todos")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch upcoming todos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"upcoming": todosToResponses(ov.Upcoming),
			"overdue":  todosToResponses(ov.Overdue),
		},
	})
}

func (h *TodoHandler) respondGetError(c *gin.Context, err error, userID int64, genericMsg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Todo not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Unauthorized"})
	default:
		h.log.Error().Err(err).Int64("user_id", userID).Msg(genericMsg)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": genericMsg})
	}
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Todo not found"})
		return 0, false
	}
	return id, true
}

func todoToResponse(t dom.Todo) dto.TodoResponse {
	var due *string
	if t.DueDate != nil {
		s := t.DueDate.Format("2006-01-02")
		due = &s
	}
	return dto.TodoResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		DueDate:     due,
		Category:    t.Category,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func todosToResponses(list []dom.Todo) []dto.TodoResponse {
	out := make([]dto.TodoResponse, len(list))
	for i := range list {
		out[i] = todoToResponse(list[i])
	}
	return out
}
