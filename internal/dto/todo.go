package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrBadDueDate marks an unparseable due_date value.
var ErrBadDueDate = errors.New("due_date: use date (YYYY-MM-DD) or RFC3339 datetime")

// DueDate parses due_date from JSON as either a date ("2006-01-02") or an
// RFC3339 datetime. Whatever the input, only the calendar date is kept (start
// of day UTC) — due dates carry no time-of-day. It records whether the field
// was present at all, so updates can tell "absent" from "set to null".
type DueDate struct {
	t       *time.Time
	present bool
}

func (d *DueDate) UnmarshalJSON(data []byte) error {
	d.present = true
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.t = nil
		return nil
	}
	s := strings.TrimSpace(*raw)
	layouts := []string{
		"2006-01-02", // date only
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			day := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			d.t = &day
			return nil
		}
	}
	return fmt.Errorf("%w: got %q", ErrBadDueDate, s)
}

// Ptr returns *time.Time for use in service/domain.
func (d DueDate) Ptr() *time.Time { return d.t }

// Present reports whether the field appeared in the request body at all.
func (d DueDate) Present() bool { return d.present }

type CreateTodoRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description"`
	DueDate     DueDate `json:"due_date"` // optional: "2026-02-19" or RFC3339
	Category    *string `json:"category" binding:"omitempty,max=100"`
}

type UpdateTodoRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	DueDate     DueDate `json:"due_date"` // absent = keep, null = clear, value = set
	Category    *string `json:"category" binding:"omitempty,max=100"`
}

type TodoResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	DueDate     *string   `json:"due_date"` // "2006-01-02" or null
	Category    *string   `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
