package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	dom "todoapi/internal/domain"
	"todoapi/internal/dto"
	"todoapi/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// memTodoRepo is a map-backed TodoRepo for handler tests.
type memTodoRepo struct {
	todos  map[int64]dom.Todo
	nextID int64
}

func newMemTodoRepo() *memTodoRepo {
	return &memTodoRepo{todos: map[int64]dom.Todo{}, nextID: 1}
}

func (r *memTodoRepo) add(t dom.Todo) dom.Todo {
	t.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	r.todos[t.ID] = t
	return t
}

func (r *memTodoRepo) Create(_ context.Context, t dom.Todo) (dom.Todo, error) {
	return r.add(t), nil
}

func (r *memTodoRepo) GetByID(_ context.Context, id int64) (dom.Todo, error) {
	t, ok := r.todos[id]
	if !ok {
		return dom.Todo{}, pgx.ErrNoRows
	}
	return t, nil
}

func (r *memTodoRepo) List(_ context.Context, userID int64, _ dom.Sort) ([]dom.Todo, error) {
	return r.forUser(userID), nil
}

func (r *memTodoRepo) Update(_ context.Context, t dom.Todo) (dom.Todo, error) {
	if _, ok := r.todos[t.ID]; !ok {
		return dom.Todo{}, pgx.ErrNoRows
	}
	t.UpdatedAt = time.Now().UTC()
	r.todos[t.ID] = t
	return t, nil
}

func (r *memTodoRepo) Delete(_ context.Context, id int64) error {
	delete(r.todos, id)
	return nil
}

func (r *memTodoRepo) Search(_ context.Context, userID int64, term string) ([]dom.Todo, error) {
	needle := strings.ToLower(term)
	var out []dom.Todo
	for _, t := range r.forUser(userID) {
		if strings.Contains(strings.ToLower(t.Title), needle) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTodoRepo) Filter(_ context.Context, userID int64, f dom.StatusFilter) ([]dom.Todo, error) {
	var out []dom.Todo
	for _, t := range r.forUser(userID) {
		if f == dom.FilterCompleted && !t.Completed {
			continue
		}
		if f == dom.FilterPending && t.Completed {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *memTodoRepo) Upcoming(_ context.Context, userID int64, ref time.Time, limit int) ([]dom.Todo, error) {
	var out []dom.Todo
	for _, t := range r.forUser(userID) {
		if !t.Completed && t.DueDate != nil && !t.DueDate.Before(ref) {
			out = append(out, t)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memTodoRepo) Overdue(_ context.Context, userID int64, ref time.Time) ([]dom.Todo, error) {
	var out []dom.Todo
	for _, t := range r.forUser(userID) {
		if !t.Completed && t.DueDate != nil && t.DueDate.Before(ref) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTodoRepo) forUser(userID int64) []dom.Todo {
	var out []dom.Todo
	for _, t := range r.todos {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// newTestRouter wires the todo routes behind a stub auth middleware that
// always authenticates as user 1.
func newTestRouter(repo *memTodoRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	dto.RegisterTagNames()

	svc := service.NewTodoService(repo, nil)
	h := NewTodoHandler(svc, zerolog.Nop())

	r := gin.New()
	grp := r.Group("/api/v1", func(c *gin.Context) {
		c.Set("user_id", int64(1))
		c.Next()
	})
	grp.GET("/todos", h.List)
	grp.POST("/todos", h.Create)
	grp.GET("/todos/search/:term", h.Search)
	grp.GET("/todos/filter/:filter", h.FilterByStatus)
	grp.GET("/todos/upcoming/overview", h.Upcoming)
	grp.GET("/todos/:id", h.Show)
	grp.PUT("/todos/:id", h.Update)
	grp.DELETE("/todos/:id", h.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, w.Body.String())
	}
	return w, parsed
}

func TestListEchoesDefaultedSort(t *testing.T) {
	r := newTestRouter(newMemTodoRepo())

	w, body := doJSON(t, r, http.MethodGet, "/api/v1/todos?sort_by=banana&sort_order=sideways", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["success"] != true {
		t.Error("success must be true")
	}
	sortEcho, _ := body["sort"].(map[string]any)
	if sortEcho["by"] != "created_at" || sortEcho["order"] != "desc" {
		t.Errorf("sort echo = %v, want created_at/desc", sortEcho)
	}
	if _, ok := body["data"].([]any); !ok {
		t.Errorf("data must be an array, got %T", body["data"])
	}
}

func TestShowOwnershipAndExistence(t *testing.T) {
	repo := newMemTodoRepo()
	repo.add(dom.Todo{UserID: 2, Title: "Foreign"})
	r := newTestRouter(repo)

	w, body := doJSON(t, r, http.MethodGet, "/api/v1/todos/1", "")
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign todo: status = %d, want 403", w.Code)
	}
	if body["message"] != "Unauthorized" {
		t.Errorf("foreign todo: message = %v", body["message"])
	}

	w, body = doJSON(t, r, http.MethodGet, "/api/v1/todos/99", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing todo: status = %d, want 404", w.Code)
	}
	if body["message"] != "Todo not found" {
		t.Errorf("missing todo: message = %v", body["message"])
	}
}

func TestCreateValidation(t *testing.T) {
	r := newTestRouter(newMemTodoRepo())

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/todos", `{}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	errs, _ := body["errors"].(map[string]any)
	if errs["title"] != "The title field is required." {
		t.Errorf("errors = %v", errs)
	}
}

func TestCreateDueDateTodayRejected(t *testing.T) {
	r := newTestRouter(newMemTodoRepo())

	today := time.Now().UTC().Format("2006-01-02")
	w, body := doJSON(t, r, http.MethodPost, "/api/v1/todos",
		`{"title":"Due today","due_date":"`+today+`"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	errs, _ := body["errors"].(map[string]any)
	if errs["due_date"] != "The due date must be a date after today." {
		t.Errorf("errors = %v", errs)
	}
}

func TestCreateAndResponseShape(t *testing.T) {
	r := newTestRouter(newMemTodoRepo())

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	w, body := doJSON(t, r, http.MethodPost, "/api/v1/todos",
		`{"title":"Buy milk","category":"Shopping","due_date":"`+tomorrow+`"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201\n%s", w.Code, w.Body.String())
	}
	if body["message"] != "Todo created successfully" {
		t.Errorf("message = %v", body["message"])
	}
	data, _ := body["data"].(map[string]any)
	if data["title"] != "Buy milk" || data["category"] != "Shopping" || data["due_date"] != tomorrow {
		t.Errorf("data = %v", data)
	}
	if data["completed"] != false {
		t.Error("new todos must start incomplete")
	}
}

func TestUpdateGuardBeforeValidation(t *testing.T) {
	repo := newMemTodoRepo()
	repo.add(dom.Todo{UserID: 2, Title: "Foreign"})
	r := newTestRouter(repo)

	// Even with an invalid body, a foreign record yields 403, not 422.
	w, body := doJSON(t, r, http.MethodPut, "/api/v1/todos/1", `{"title":""}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if body["message"] != "Unauthorized" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestUpdateRejectsEmptyTitle(t *testing.T) {
	repo := newMemTodoRepo()
	repo.add(dom.Todo{UserID: 1, Title: "Mine"})
	r := newTestRouter(repo)

	w, body := doJSON(t, r, http.MethodPut, "/api/v1/todos/1", `{"title":"   "}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	errs, _ := body["errors"].(map[string]any)
	if errs["title"] != "The title field is required." {
		t.Errorf("errors = %v", errs)
	}
}

func TestUpdateAllowsDueDateToday(t *testing.T) {
	repo := newMemTodoRepo()
	repo.add(dom.Todo{UserID: 1, Title: "Mine"})
	r := newTestRouter(repo)

	today := time.Now().UTC().Format("2006-01-02")
	w, body := doJSON(t, r, http.MethodPut, "/api/v1/todos/1", `{"due_date":"`+today+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", w.Code, w.Body.String())
	}
	data, _ := body["data"].(map[string]any)
	if data["due_date"] != today {
		t.Errorf("due_date = %v, want %s", data["due_date"], today)
	}
}

func TestDelete(t *testing.T) {
	repo := newMemTodoRepo()
	repo.add(dom.Todo{UserID: 1, Title: "Mine"})
	r := newTestRouter(repo)

	w, body := doJSON(t, r, http.MethodDelete, "/api/v1/todos/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body["message"] != "Todo deleted successfully" {
		t.Errorf("message = %v", body["message"])
	}
	if len(repo.todos) != 0 {
		t.Error("record must be gone")
	}
}

func TestFilterRoute(t *testing.T) {
	repo := newMemTodoRepo()
	repo.add(dom.Todo{UserID: 1, Title: "Done", Completed: true})
	repo.add(dom.Todo{UserID: 1, Title: "Open"})
	r := newTestRouter(repo)

	w, body := doJSON(t, r, http.MethodGet, "/api/v1/todos/filter/pending", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data, _ := body["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("pending: got %d records", len(data))
	}

	w, body = doJSON(t, r, http.MethodGet, "/api/v1/todos/filter/whatever", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data, _ = body["data"].([]any)
	if len(data) != 2 {
		t.Errorf("unknown token: got %d records, want the full set", len(data))
	}
}

func TestUpcomingOverviewShape(t *testing.T) {
	repo := newMemTodoRepo()
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	repo.add(dom.Todo{UserID: 1, Title: "Late", DueDate: &yesterday})
	repo.add(dom.Todo{UserID: 1, Title: "Soon", DueDate: &tomorrow})
	r := newTestRouter(repo)

	w, body := doJSON(t, r, http.MethodGet, "/api/v1/todos/upcoming/overview", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data, _ := body["data"].(map[string]any)
	upcoming, _ := data["upcoming"].([]any)
	overdue, _ := data["overdue"].([]any)
	if len(upcoming) != 1 || len(overdue) != 1 {
		t.Errorf("upcoming = %d, overdue = %d, want 1 and 1", len(upcoming), len(overdue))
	}
}
