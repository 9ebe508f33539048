package service

import (
	"strings"

	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/salao-caixa/caixa-backend/internal/util"
)

// FilterMovements returns the movements matching the filter, keeping their order.
// A nil filter, or one with every criterion empty, matches everything.
func FilterMovements(movements []*domain.Movement, filter *domain.MovementFilter) []*domain.Movement {
	if filter == nil {
		out := make([]*domain.Movement, len(movements))
		copy(out, movements)
		return out
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]*domain.Movement, 0, len(movements))
	for _, m := range movements {
		if matchesFilter(m, filter, search) {
			out = append(out, m)
		}
	}
	return out
}

func matchesFilter(m *domain.Movement, filter *domain.MovementFilter, search string) bool {
	if filter.Kind != "" && filter.Kind != domain.FilterKindAll && string(m.Kind) != string(filter.Kind) {
		return false
	}
	if filter.Date != nil && !util.IsSameCalendarDay(*filter.Date, m.Timestamp) {
		return false
	}
	if search != "" &&
		!strings.Contains(strings.ToLower(m.Description), search) &&
		!strings.Contains(strings.ToLower(m.Category), search) {
		return false
	}
	return true
}

// FilterByRange returns the movements whose timestamp lies in the range
func FilterByRange(movements []*domain.Movement, dateRange *domain.DateRange) []*domain.Movement {
	if dateRange == nil || (dateRange.Start == nil && dateRange.End == nil) {
		out := make([]*domain.Movement, len(movements))
		copy(out, movements)
		return out
	}

	out := make([]*domain.Movement, 0, len(movements))
	for _, m := range movements {
		if util.IsWithinRange(m.Timestamp, dateRange.Start, dateRange.End) {
			out = append(out, m)
		}
	}
	return out
}

// Paginate returns one page of items. The page size falls back to the default
// when not positive and is capped at the maximum; the page number is clamped
// into [1, max(1, totalPages)].
func Paginate(items []*domain.Movement, pageSize, page int) *domain.Page {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = max(1, totalPages)
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	data := make([]*domain.Movement, 0, end-start)
	if start < end {
		data = append(data, items[start:end]...)
	}

	return &domain.Page{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// Paginator holds the filter and paging state of one ledger view.
// Changing the filter or the page size goes back to the first page.
type Paginator struct {
	filter   domain.MovementFilter
	pageSize int
	page     int
}

// NewPaginator creates a Paginator on the first page with the default page size
func NewPaginator() *Paginator {
	return &Paginator{
		filter:   domain.MovementFilter{Kind: domain.FilterKindAll},
		pageSize: domain.DefaultPageSize,
		page:     1,
	}
}

// Filter returns the current filter
func (p *Paginator) Filter() domain.MovementFilter {
	return p.filter
}

// SetFilter replaces the filter and resets to the first page
func (p *Paginator) SetFilter(filter domain.MovementFilter) {
	p.filter = filter
	p.page = 1
}

// SetPageSize changes the page size and resets to the first page
func (p *Paginator) SetPageSize(pageSize int) {
	p.pageSize = pageSize
	p.page = 1
}

// SetPage moves to the given page; it is clamped on View
func (p *Paginator) SetPage(page int) {
	p.page = page
}

// View filters the movements and returns the current page.
// The stored page number is updated to the clamped value.
func (p *Paginator) View(movements []*domain.Movement) *domain.Page {
	filter := p.filter
	result := Paginate(FilterMovements(movements, &filter), p.pageSize, p.page)
	p.page = result.Page
	return result
}
