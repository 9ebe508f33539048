package domain

import "context"

// CashBook is the set of operations exposed to the HTTP, CLI and export layers
type CashBook interface {
	GetLedger(ctx context.Context, filter *MovementFilter) ([]*Movement, error)
	GetLedgerPage(ctx context.Context, filter *MovementFilter, page, pageSize int) (*Page, error)
	GetMovement(ctx context.Context, id int64) (*Movement, error)
	RegisterMovement(ctx context.Context, input MovementInput) (*Movement, error)
	EditMovement(ctx context.Context, id int64, patch MovementPatch) (*Movement, error)
	RemoveMovement(ctx context.Context, id int64) (bool, error)
	GetSummary(ctx context.Context, dateRange *DateRange) (*Summary, error)
	GetReport(ctx context.Context, dateRange *DateRange) ([]*ReportRow, error)
	GetDashboard(ctx context.Context) (*DashboardMetrics, error)
}
