package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportRow is a movement joined with its service name, flat for tabular export
type ReportRow struct {
	ID            int64           `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	Kind          MovementKind    `json:"kind"`
	Category      string          `json:"category"`
	ServiceName   *string         `json:"serviceName"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
}
