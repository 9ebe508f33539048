package domain

import (
	"context"
	"time"
)

// LedgerBackup is the point-in-time copy uploaded by the flush worker
type LedgerBackup struct {
	CreatedAt time.Time   `json:"createdAt"`
	Movements []*Movement `json:"movements"`
	Services  []*Service  `json:"services"`
}

// BackupRepository stores serialized ledger backups under a key
type BackupRepository interface {
	Upload(ctx context.Context, key string, data []byte) error
}
