package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/salao-caixa/caixa-backend/internal/domain"
)

// FlushWorker is a background worker that periodically flushes storage and,
// when configured, uploads a ledger backup after changes
type FlushWorker struct {
	ledger       *LedgerService
	catalog      *CatalogService
	flusher      domain.Flusher
	backupRepo   domain.BackupRepository
	backupPrefix string
	logger       zerolog.Logger
	interval     time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
	mu           sync.Mutex
	running      bool
	flushMu      sync.Mutex
}

// FlushWorkerConfig holds configuration for the flush worker
type FlushWorkerConfig struct {
	Interval     time.Duration // How often to flush
	BackupPrefix string        // Object key prefix for backups
}

// DefaultFlushWorkerConfig returns the default flush cadence
func DefaultFlushWorkerConfig() FlushWorkerConfig {
	return FlushWorkerConfig{
		Interval:     30 * time.Second,
		BackupPrefix: "backups",
	}
}

// NewFlushWorker creates a new flush worker. flusher and backupRepo may be nil.
func NewFlushWorker(
	ledger *LedgerService,
	catalog *CatalogService,
	flusher domain.Flusher,
	backupRepo domain.BackupRepository,
	logger zerolog.Logger,
	config FlushWorkerConfig,
) *FlushWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultFlushWorkerConfig().Interval
	}

	return &FlushWorker{
		ledger:       ledger,
		catalog:      catalog,
		flusher:      flusher,
		backupRepo:   backupRepo,
		backupPrefix: config.BackupPrefix,
		logger:       logger.With().Str("component", "flush_worker").Logger(),
		interval:     config.Interval,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start begins the periodic flush
func (w *FlushWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Bool("backups", w.backupRepo != nil).
		Msg("Starting flush worker")

	go w.run(ctx)
}

// Stop stops the worker and runs one last flush
func (w *FlushWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping flush worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Flush worker stopped")
}

// run is the main loop for the flush worker
func (w *FlushWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.finalFlush()
			return
		case <-w.stopCh:
			w.finalFlush()
			return
		case <-ticker.C:
			if err := w.Flush(ctx); err != nil {
				w.logger.Error().Err(err).Msg("Periodic flush failed")
			}
		}
	}
}

// finalFlush runs on shutdown with its own deadline since the run context
// may already be cancelled
func (w *FlushWorker) finalFlush() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := w.Flush(ctx); err != nil {
		w.logger.Error().Err(err).Msg("Shutdown flush failed")
		return
	}
	w.logger.Info().Msg("Shutdown flush completed")
}

// Flush checkpoints storage and uploads a backup if the ledger changed.
// It never takes the ledger's writer lock.
func (w *FlushWorker) Flush(ctx context.Context) error {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	startTime := time.Now()

	if w.flusher != nil {
		if err := w.flusher.Flush(ctx); err != nil {
			return fmt.Errorf("flush storage: %w", err)
		}
	}

	uploaded := false
	if w.backupRepo != nil && w.ledger.ConsumeDirty() {
		if err := w.uploadBackup(ctx); err != nil {
			// try again on the next tick
			w.ledger.MarkDirty()
			return fmt.Errorf("upload backup: %w", err)
		}
		uploaded = true
	}

	w.logger.Debug().
		Bool("backup_uploaded", uploaded).
		Dur("elapsed", time.Since(startTime)).
		Msg("Flush completed")
	return nil
}

func (w *FlushWorker) uploadBackup(ctx context.Context) error {
	services, err := w.catalog.List(ctx)
	if err != nil {
		return err
	}

	now := w.ledger.Now()
	backup := domain.LedgerBackup{
		CreatedAt: now,
		Movements: w.ledger.Snapshot(),
		Services:  services,
	}
	data, err := json.Marshal(backup)
	if err != nil {
		return err
	}

	key := BackupKey(w.backupPrefix, now)
	if err := w.backupRepo.Upload(ctx, key, data); err != nil {
		return err
	}

	w.logger.Info().
		Str("key", key).
		Int("movements", len(backup.Movements)).
		Int("bytes", len(data)).
		Msg("Uploaded ledger backup")
	return nil
}

// IsRunning returns whether the worker is currently running
func (w *FlushWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// BackupKey returns the object key of a backup taken at t
func BackupKey(prefix string, t time.Time) string {
	return path.Join(prefix, t.UTC().Format("2006/01/02"), "ledger-"+t.UTC().Format("20060102T150405.000Z")+".json")
}
