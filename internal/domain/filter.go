package domain

import "time"

// FilterKind restricts the ledger view to one kind of movement
type FilterKind string

const (
	FilterKindAll   FilterKind = "all"
	FilterKindEntry FilterKind = "entry"
	FilterKindExit  FilterKind = "exit"
)

// IsValid returns true if the filter kind is known
func (k FilterKind) IsValid() bool {
	switch k {
	case FilterKindAll, FilterKindEntry, FilterKindExit:
		return true
	default:
		return false
	}
}

// MovementFilter is the ephemeral ledger filter state of the UI
type MovementFilter struct {
	Kind   FilterKind
	Date   *time.Time // a single calendar day
	Search string
}

// DateRange bounds a report; nil ends are open
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is one slice of a filtered ledger view
type Page struct {
	Data       []*Movement `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalItems int         `json:"totalItems"`
	TotalPages int         `json:"totalPages"`
}
