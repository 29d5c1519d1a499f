package domain

// Overview is the upcoming/overdue partition of a user's incomplete, dated
// todos, computed against a single reference date.
type Overview struct {
	Upcoming []Todo `json:"upcoming"`
	Overdue  []Todo `json:"overdue"`
}
