package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultTopServices is the ranking size used by reports
	DefaultTopServices = 10
	// DashboardTopServices is the ranking size used by the dashboard
	DashboardTopServices = 5
	// MaxDailyBuckets caps the daily movement series of a report
	MaxDailyBuckets = 30
)

// ServiceRevenue is one row of the top services ranking
type ServiceRevenue struct {
	Category string          `json:"category"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// PaymentMethodRevenue is the entry revenue of one payment method
type PaymentMethodRevenue struct {
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Amount        decimal.Decimal `json:"amount"`
}

// DayRevenue is the entry revenue of one day of the week view
type DayRevenue struct {
	Date    time.Time       `json:"date"`
	Weekday string          `json:"weekday"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DailyMovement is the per-day balance of the report view
type DailyMovement struct {
	Date    string          `json:"date"` // YYYY-MM-DD
	Entries decimal.Decimal `json:"entries"`
	Exits   decimal.Decimal `json:"exits"`
	Balance decimal.Decimal `json:"balance"`
}

// Totals holds the sums over a ledger slice
type Totals struct {
	TotalEntries     decimal.Decimal `json:"totalEntries"`
	TotalExits       decimal.Decimal `json:"totalExits"`
	NetBalance       decimal.Decimal `json:"netBalance"`
	TransactionCount int             `json:"transactionCount"`
}

// PeriodStats holds today and this-month figures over the full ledger
type PeriodStats struct {
	TodayEntries decimal.Decimal `json:"todayEntries"`
	TodayCount   int             `json:"todayCount"`
	MonthEntries decimal.Decimal `json:"monthEntries"`
	MonthCount   int             `json:"monthCount"`
}

// Summary is the aggregation result of a ledger slice
type Summary struct {
	Totals
	PeriodStats
	TopServices            []ServiceRevenue       `json:"topServices"`
	RevenueByPaymentMethod []PaymentMethodRevenue `json:"revenueByPaymentMethod"`
	WeeklySeries           []DayRevenue           `json:"weeklySeries"`
	DailySeries            []DailyMovement        `json:"dailySeries"`
}

// DashboardMetrics are the figures of the home screen
type DashboardMetrics struct {
	DailyRevenue   decimal.Decimal  `json:"dailyRevenue"`
	MonthlyRevenue decimal.Decimal  `json:"monthlyRevenue"`
	ClientsServed  int              `json:"clientsServed"`
	TopServices    []ServiceRevenue `json:"topServices"`
	WeeklyRevenue  []DayRevenue     `json:"weeklyRevenue"`
}
