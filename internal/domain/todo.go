package domain

import "time"

// Todo is the domain entity for a single task record. It does not depend on
// Gin, Postgres or Redis.
type Todo struct {
	ID          int64
	UserID      int64
	Title       string
	Description *string
	Completed   bool
	DueDate     *time.Time // calendar date, time-of-day carries no meaning
	Category    *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
