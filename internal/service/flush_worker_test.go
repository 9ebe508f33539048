package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/salao-caixa/caixa-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFlushWorker(interval time.Duration) (*FlushWorker, *LedgerService, *testutil.MockFlusher, *testutil.MockBackupRepository) {
	ledger, _ := setupLedger(fixedClock(time.Date(2026, 3, 10, 12, 0, 0, 0, brt)))
	catalog, _ := setupCatalog()
	flusher := &testutil.MockFlusher{}
	backups := testutil.NewMockBackupRepository()

	config := FlushWorkerConfig{
		Interval:     interval,
		BackupPrefix: "caixa",
	}

	worker := NewFlushWorker(ledger, catalog, flusher, backups, zerolog.Nop(), config)
	return worker, ledger, flusher, backups
}

func TestFlushWorker_NewFlushWorker(t *testing.T) {
	worker, _, _, _ := setupFlushWorker(100 * time.Millisecond)

	assert.NotNil(t, worker)
	assert.Equal(t, 100*time.Millisecond, worker.interval)
	assert.False(t, worker.IsRunning())
}

func TestFlushWorker_DefaultConfig(t *testing.T) {
	config := DefaultFlushWorkerConfig()
	assert.Equal(t, 30*time.Second, config.Interval)

	worker := NewFlushWorker(nil, nil, nil, nil, zerolog.Nop(), FlushWorkerConfig{})
	assert.Equal(t, 30*time.Second, worker.interval)
}

func TestFlushWorker_Flush_SkipsBackupWhenClean(t *testing.T) {
	worker, _, flusher, backups := setupFlushWorker(time.Hour)

	require.NoError(t, worker.Flush(context.Background()))

	assert.Equal(t, 1, flusher.FlushCount())
	assert.Empty(t, backups.Keys())
}

func TestFlushWorker_Flush_UploadsBackupAfterChange(t *testing.T) {
	worker, ledger, _, backups := setupFlushWorker(time.Hour)

	_, err := ledger.Add(context.Background(), entryInput("Corte", "40.00", domain.PaymentMethodCash))
	require.NoError(t, err)

	require.NoError(t, worker.Flush(context.Background()))

	keys := backups.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, "caixa/2026/03/10/ledger-20260310T150000.000Z.json", keys[0])

	var backup domain.LedgerBackup
	require.NoError(t, json.Unmarshal(backups.Objects[keys[0]], &backup))
	require.Len(t, backup.Movements, 1)
	assert.Equal(t, "Corte", backup.Movements[0].Category)

	// nothing changed since, so no second upload
	require.NoError(t, worker.Flush(context.Background()))
	assert.Len(t, backups.Keys(), 1)
}

func TestFlushWorker_Flush_FailedBackupIsRetriedLater(t *testing.T) {
	worker, ledger, _, backups := setupFlushWorker(time.Hour)

	_, err := ledger.Add(context.Background(), entryInput("Corte", "40.00", domain.PaymentMethodCash))
	require.NoError(t, err)

	backups.SetErr(errors.New("bucket unreachable"))
	assert.Error(t, worker.Flush(context.Background()))
	assert.Empty(t, backups.Keys())

	backups.SetErr(nil)
	require.NoError(t, worker.Flush(context.Background()))
	assert.Len(t, backups.Keys(), 1)
}

func TestFlushWorker_Flush_StorageError(t *testing.T) {
	worker, _, flusher, _ := setupFlushWorker(time.Hour)
	flusher.Err = errors.New("disk full")

	err := worker.Flush(context.Background())
	assert.ErrorContains(t, err, "disk full")
}

func TestFlushWorker_Flush_WithoutBackupRepository(t *testing.T) {
	ledger, _ := setupLedger(fixedClock(time.Now()))
	catalog, _ := setupCatalog()
	flusher := &testutil.MockFlusher{}
	worker := NewFlushWorker(ledger, catalog, flusher, nil, zerolog.Nop(), DefaultFlushWorkerConfig())

	_, err := ledger.Add(context.Background(), entryInput("Corte", "40.00", domain.PaymentMethodCash))
	require.NoError(t, err)

	require.NoError(t, worker.Flush(context.Background()))
	assert.Equal(t, 1, flusher.FlushCount())
	assert.True(t, ledger.ConsumeDirty(), "dirty flag is left for a later backup")
}

func TestFlushWorker_StartStop_FlushesOnShutdown(t *testing.T) {
	worker, _, flusher, _ := setupFlushWorker(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	assert.True(t, worker.IsRunning())

	worker.Stop()

	assert.False(t, worker.IsRunning())
	assert.Equal(t, 1, flusher.FlushCount(), "stop runs a final flush")
}

func TestFlushWorker_StartTwice(t *testing.T) {
	worker, _, _, _ := setupFlushWorker(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	worker.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	assert.True(t, worker.IsRunning())

	worker.Stop()
	assert.False(t, worker.IsRunning())
}

func TestFlushWorker_StopWithoutStart(t *testing.T) {
	worker, _, flusher, _ := setupFlushWorker(time.Hour)

	assert.NotPanics(t, func() {
		worker.Stop()
	})
	assert.Equal(t, 0, flusher.FlushCount())
}

func TestFlushWorker_PeriodicFlush(t *testing.T) {
	worker, _, flusher, _ := setupFlushWorker(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	time.Sleep(110 * time.Millisecond)
	worker.Stop()

	assert.GreaterOrEqual(t, flusher.FlushCount(), 3)
}

func TestFlushWorker_ContextCancelFlushes(t *testing.T) {
	worker, _, flusher, _ := setupFlushWorker(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	cancel()

	require.Eventually(t, func() bool { return !worker.IsRunning() }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return flusher.FlushCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestBackupKey(t *testing.T) {
	ts := time.Date(2026, 3, 10, 21, 30, 5, 250*int(time.Millisecond), brt)
	assert.Equal(t, "backups/2026/03/11/ledger-20260311T003005.250Z.json", BackupKey("backups", ts))
}
