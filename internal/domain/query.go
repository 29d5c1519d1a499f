package domain

// SortColumn is a todo column listings may be ordered by.
type SortColumn string

const (
	SortCreatedAt SortColumn = "created_at"
	SortDueDate   SortColumn = "due_date"
	SortTitle     SortColumn = "title"
	SortCompleted SortColumn = "completed"
	SortCategory  SortColumn = "category"
)

// SortOrder is the requested direction.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Sort is the effective ordering applied to a listing. Listings echo it back
// to the client after defaulting.
type Sort struct {
	By    SortColumn `json:"by"`
	Order SortOrder  `json:"order"`
}

// DefaultSort is what listings fall back to.
var DefaultSort = Sort{By: SortCreatedAt, Order: OrderDesc}

// NormalizeSort maps raw query values to an effective Sort. Unrecognized
// values silently fall back to the defaults; that is deliberate policy, not a
// validation gate.
func NormalizeSort(by, order string) Sort {
	s := DefaultSort
	switch SortColumn(by) {
	case SortCreatedAt, SortDueDate, SortTitle, SortCompleted, SortCategory:
		s.By = SortColumn(by)
	}
	switch SortOrder(order) {
	case OrderAsc, OrderDesc:
		s.Order = SortOrder(order)
	}
	return s
}

// StatusFilter narrows a listing by completion status.
type StatusFilter int

const (
	FilterAll StatusFilter = iota
	FilterCompleted
	FilterPending
)

// ParseStatusFilter maps a filter token to a StatusFilter. Unknown tokens
// (including the empty string) mean no status predicate.
func ParseStatusFilter(token string) StatusFilter {
	switch token {
	case "completed":
		return FilterCompleted
	case "pending":
		return FilterPending
	default:
		return FilterAll
	}
}
