package repo

import (
	"context"
	"time"

	dom "todoapi/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

const todoColumns = "id, user_id, title, description, completed, due_date, category, created_at, updated_at"

// TodoRepo provides todo persistence. GetByID is deliberately unscoped: the
// service layer fetches the record first and applies the ownership guard
// itself, so a foreign id yields 403 rather than 404.
type TodoRepo interface {
	Create(ctx context.Context, t dom.Todo) (dom.Todo, error)
	GetByID(ctx context.Context, id int64) (dom.Todo, error)
	List(ctx context.Context, userID int64, sort dom.Sort) ([]dom.Todo, error)
	Update(ctx context.Context, t dom.Todo) (dom.Todo, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, userID int64, term string) ([]dom.Todo, error)
	Filter(ctx context.Context, userID int64, f dom.StatusFilter) ([]dom.Todo, error)
	Upcoming(ctx context.Context, userID int64, ref time.Time, limit int) ([]dom.Todo, error)
	Overdue(ctx context.Context, userID int64, ref time.Time) ([]dom.Todo, error)
}

type PGTodoRepo struct {
	db *pgxpool.Pool
}

func NewPGTodoRepo(db *pgxpool.Pool) *PGTodoRepo {
	return &PGTodoRepo{db: db}
}

// orderByClause builds the ORDER BY for a listing.
//
//   - completed: the boolean follows the requested direction, then due_date
//     ascending with nulls last, then created_at descending.
//   - due_date: nulls always sort last regardless of direction (Postgres
//     defaults to NULLS FIRST on DESC, so both branches are explicit), then
//     created_at descending.
//   - anything else: the column and direction as requested, with a
//     created_at DESC tie-break unless the column is created_at itself.
func orderByClause(s dom.Sort) string {
	dir := "DESC"
	if s.Order == dom.OrderAsc {
		dir = "ASC"
	}
	switch s.By {
	case dom.SortCompleted:
		return "ORDER BY completed " + dir + ", due_date ASC NULLS LAST, created_at DESC"
	case dom.SortDueDate:
		return "ORDER BY due_date " + dir + " NULLS LAST, created_at DESC"
	case dom.SortCreatedAt:
		return "ORDER BY created_at " + dir
	default:
		return "ORDER BY " + string(s.By) + " " + dir + ", created_at DESC"
	}
}

func (r *PGTodoRepo) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	query := `
		INSERT INTO todos (user_id, title, description, due_date, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + todoColumns
	var out dom.Todo
	err := r.db.QueryRow(ctx, query, t.UserID, t.Title, t.Description, t.DueDate, t.Category).Scan(
		&out.ID, &out.UserID, &out.Title, &out.Description, &out.Completed,
		&out.DueDate, &out.Category, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (r *PGTodoRepo) GetByID(ctx context.Context, id int64) (dom.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`
	var t dom.Todo
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed,
		&t.DueDate, &t.Category, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *PGTodoRepo) List(ctx context.Context, userID int64, sort dom.Sort) ([]dom.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = $1 ` + orderByClause(sort)
	return r.queryTodos(ctx, query, userID)
}

func (r *PGTodoRepo) Update(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	query := `
		UPDATE todos
		SET title = $2, description = $3, completed = $4, due_date = $5, category = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + todoColumns
	var out dom.Todo
	err := r.db.QueryRow(ctx, query, t.ID, t.Title, t.Description, t.Completed, t.DueDate, t.Category).Scan(
		&out.ID, &out.UserID, &out.Title, &out.Description, &out.Completed,
		&out.DueDate, &out.Category, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (r *PGTodoRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	return err
}

// Search matches the term as an ILIKE substring against title, description
// and category. An empty term matches every record for the user.
func (r *PGTodoRepo) Search(ctx context.Context, userID int64, term string) ([]dom.Todo, error) {
	pattern := "%" + term + "%"
	query := `
		SELECT ` + todoColumns + `
		FROM todos
		WHERE user_id = $1 AND (title ILIKE $2 OR description ILIKE $2 OR category ILIKE $2)
		ORDER BY created_at DESC`
	return r.queryTodos(ctx, query, userID, pattern)
}

func (r *PGTodoRepo) Filter(ctx context.Context, userID int64, f dom.StatusFilter) ([]dom.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = $1`
	switch f {
	case dom.FilterCompleted:
		query += ` AND completed = TRUE`
	case dom.FilterPending:
		query += ` AND completed = FALSE`
	case dom.FilterAll:
		// no status predicate
	}
	query += ` ORDER BY created_at DESC`
	return r.queryTodos(ctx, query, userID)
}

func (r *PGTodoRepo) Upcoming(ctx context.Context, userID int64, ref time.Time, limit int) ([]dom.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos
		WHERE user_id = $1 AND completed = FALSE AND due_date IS NOT NULL AND due_date >= $2::date
		ORDER BY due_date ASC, created_at DESC
		LIMIT $3`
	return r.queryTodos(ctx, query, userID, ref, limit)
}

func (r *PGTodoRepo) Overdue(ctx context.Context, userID int64, ref time.Time) ([]dom.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos
		WHERE user_id = $1 AND completed = FALSE AND due_date IS NOT NULL AND due_date < $2::date
		ORDER BY due_date ASC, created_at DESC`
	return r.queryTodos(ctx, query, userID, ref)
}

func (r *PGTodoRepo) queryTodos(ctx context.Context, query string, args ...any) ([]dom.Todo, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Todo
	for rows.Next() {
		var t dom.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed,
			&t.DueDate, &t.Category, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
