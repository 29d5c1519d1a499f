package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	dom "todoapi/internal/domain"
	"todoapi/internal/repo"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"

	"todoapi/internal/cache"
)

var (
	ErrNotFound       = errors.New("todo not found")
	ErrForbidden      = errors.New("todo belongs to another user")
	ErrInvalidDueDate = errors.New("due_date must be after today")
)

// upcomingLimit caps the upcoming half of the overview; overdue is uncapped.
const upcomingLimit = 10

// CreateTodoInput carries the validated fields for a create.
type CreateTodoInput struct {
	Title       string
	Description *string
	DueDate     *time.Time
	Category    *string
}

// UpdateTodoInput carries a partial update. Nil pointers mean "leave
// unchanged"; DueDate distinguishes unchanged from explicitly cleared.
type UpdateTodoInput struct {
	Title       *string
	Description *string
	Completed   *bool
	DueDate     DueDatePatch
	Category    *string
}

// DueDatePatch is a tri-state due_date field: not supplied, supplied null
// (clear), or supplied with a value.
type DueDatePatch struct {
	Set   bool
	Value *time.Time
}

// TodoService owns the query and mutation logic for a user's todos. All
// operations take the requester id explicitly; nothing is read from ambient
// context.
type TodoService struct {
	repo  repo.TodoRepo
	cache *cache.TodoCache
	sf    singleflight.Group
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
func NewTodoService(r repo.TodoRepo, c *cache.TodoCache) *TodoService {
	return &TodoService{repo: r, cache: c}
}

// Create validates and persists a new todo owned by userID. The due date,
// when present, must be strictly after today; updates deliberately do not
// share this rule.
func (s *TodoService) Create(ctx context.Context, userID int64, in CreateTodoInput) (dom.Todo, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.DueDate != nil && !dateOf(*in.DueDate).After(dateOf(time.Now().UTC())) {
		return dom.Todo{}, ErrInvalidDueDate
	}

	t, err := s.repo.Create(ctx, dom.Todo{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Category:    in.Category,
	})
	if err != nil {
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// List returns all of the user's todos in the requested order, along with the
// sort actually applied after defaulting.
func (s *TodoService) List(ctx context.Context, userID int64, sortBy, sortOrder string) ([]dom.Todo, dom.Sort, error) {
	sort := dom.NormalizeSort(sortBy, sortOrder)
	if s.cache != nil {
		key := "list:" + strconv.FormatInt(userID, 10) + ":" + string(sort.By) + ":" + string(sort.Order)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx, userID, sort); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.List(ctx, userID, sort)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, userID, sort, list)
			return list, nil
		})
		if err != nil {
			return nil, sort, err
		}
		return v.([]dom.Todo), sort, nil
	}
	list, err := s.repo.List(ctx, userID, sort)
	return list, sort, err
}

// Get fetches a todo and applies the ownership guard: a missing id is
// ErrNotFound, a foreign owner is ErrForbidden. Existence is not hidden.
func (s *TodoService) Get(ctx context.Context, userID, id int64) (dom.Todo, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, err
	}
	if t.UserID != userID {
		return dom.Todo{}, ErrForbidden
	}
	return t, nil
}

// Update applies a partial update to the user's todo. Unlike Create, any
// valid due date is accepted, including past and today.
func (s *TodoService) Update(ctx context.Context, userID, id int64, in UpdateTodoInput) (dom.Todo, error) {
	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return dom.Todo{}, err
	}
	patch := existing
	if in.Title != nil {
		patch.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		patch.Description = in.Description
	}
	if in.Completed != nil {
		patch.Completed = *in.Completed
	}
	if in.DueDate.Set {
		patch.DueDate = in.DueDate.Value
	}
	if in.Category != nil {
		patch.Category = in.Category
	}
	t, err := s.repo.Update(ctx, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// Delete removes the user's todo permanently.
func (s *TodoService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx, userID)
	return nil
}

// Search returns the user's todos whose title, description or category
// contains the term as a substring. An empty term matches everything.
func (s *TodoService) Search(ctx context.Context, userID int64, term string) ([]dom.Todo, error) {
	if s.cache != nil {
		key := "search:" + strconv.FormatInt(userID, 10) + ":" + strings.ToLower(term)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetSearch(ctx, userID, term); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.Search(ctx, userID, term)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetSearch(ctx, userID, term, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Todo), nil
	}
	return s.repo.Search(ctx, userID, term)
}

// Filter returns the user's todos narrowed by completion status.
func (s *TodoService) Filter(ctx context.Context, userID int64, f dom.StatusFilter) ([]dom.Todo, error) {
	return s.repo.Filter(ctx, userID, f)
}

// UpcomingOverdue partitions the user's incomplete, dated todos around a
// single reference date captured once per call, so the two halves cannot
// drift across a midnight boundary.
func (s *TodoService) UpcomingOverdue(ctx context.Context, userID int64) (dom.Overview, error) {
	ref := dateOf(time.Now().UTC())
	if s.cache != nil {
		key := "overview:" + strconv.FormatInt(userID, 10) + ":" + ref.Format("2006-01-02")
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if ov, err := s.cache.GetOverview(ctx, userID, ref); err == nil && ov != nil {
				return *ov, nil
			}
			ov, err := s.buildOverview(ctx, userID, ref)
			if err != nil {
				return dom.Overview{}, err
			}
			_ = s.cache.SetOverview(ctx, userID, ref, ov)
			return ov, nil
		})
		if err != nil {
			return dom.Overview{}, err
		}
		return v.(dom.Overview), nil
	}
	return s.buildOverview(ctx, userID, ref)
}

func (s *TodoService) buildOverview(ctx context.Context, userID int64, ref time.Time) (dom.Overview, error) {
	upcoming, err := s.repo.Upcoming(ctx, userID, ref, upcomingLimit)
	if err != nil {
		return dom.Overview{}, err
	}
	overdue, err := s.repo.Overdue(ctx, userID, ref)
	if err != nil {
		return dom.Overview{}, err
	}
	return dom.Overview{Upcoming: upcoming, Overdue: overdue}, nil
}

func (s *TodoService) invalidateCache(ctx context.Context, userID int64) {
	if s.cache != nil {
		_ = s.cache.InvalidateUser(ctx, userID)
	}
}

// dateOf truncates a timestamp to its calendar date in UTC.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
