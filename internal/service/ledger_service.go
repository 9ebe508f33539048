package service

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/salao-caixa/caixa-backend/internal/websocket"
)

// LedgerService owns the authoritative list of cash movements.
//
// Mutations are serialized by writeMu and persisted before the in-memory
// snapshot is swapped, so memory never runs ahead of storage. Readers grab the
// current snapshot under a read lock and then work on it without locking; a
// snapshot slice and the movements it points to are never modified in place.
type LedgerService struct {
	movementRepo   domain.MovementRepository
	eventPublisher websocket.EventPublisher
	now            func() time.Time

	writeMu  sync.Mutex
	mu       sync.RWMutex
	snapshot []*domain.Movement // timestamp desc, id asc

	dirty atomic.Bool
}

// NewLedgerService creates a new LedgerService. Call Load before serving reads.
func NewLedgerService(movementRepo domain.MovementRepository) *LedgerService {
	return &LedgerService{
		movementRepo: movementRepo,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *LedgerService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock replaces the source of creation timestamps.
// The clock's location is the business location used for calendar math.
func (s *LedgerService) SetClock(now func() time.Time) {
	s.now = now
}

// Now returns the current instant in the business location
func (s *LedgerService) Now() time.Time {
	return s.now()
}

func (s *LedgerService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// Load reads every stored movement into memory
func (s *LedgerService) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var stored []*domain.Movement
	err := withRetry("list movements", func() error {
		var err error
		stored, err = s.movementRepo.List(ctx)
		return err
	})
	if err != nil {
		return err
	}

	loc := s.now().Location()
	loaded := make([]*domain.Movement, 0, len(stored))
	for _, m := range stored {
		c := m.Clone()
		c.Timestamp = c.Timestamp.In(loc)
		loaded = append(loaded, c)
	}
	sortMovements(loaded)

	s.mu.Lock()
	s.snapshot = loaded
	s.mu.Unlock()
	return nil
}

// Snapshot returns the current ledger in list order.
// The returned slice is shared and must be treated as read-only.
func (s *LedgerService) Snapshot() []*domain.Movement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// List returns copies of the movements matching the filter, newest first.
// A nil filter returns the whole ledger.
func (s *LedgerService) List(filter *domain.MovementFilter) []*domain.Movement {
	return cloneMovements(FilterMovements(s.Snapshot(), filter))
}

// Get returns a copy of a single movement
func (s *LedgerService) Get(id int64) (*domain.Movement, error) {
	_, m := findMovement(s.Snapshot(), id)
	if m == nil {
		return nil, domain.ErrMovementNotFound
	}
	return m.Clone(), nil
}

// Add validates, timestamps and persists a new movement.
// Nothing is stored when validation fails.
func (s *LedgerService) Add(ctx context.Context, input domain.MovementInput) (*domain.Movement, error) {
	movement, err := domain.NewMovement(input)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	movement.Timestamp = s.now()

	var stored *domain.Movement
	err = withRetry("insert movement", func() error {
		var err error
		stored, err = s.movementRepo.Insert(ctx, movement)
		return err
	})
	if err != nil {
		return nil, err
	}
	stored = stored.Clone()
	stored.Timestamp = movement.Timestamp

	current := s.Snapshot()
	next := make([]*domain.Movement, 0, len(current)+1)
	next = append(next, current...)
	next = append(next, stored)
	sortMovements(next)
	s.swap(next)

	s.publishEvent(websocket.MovementCreated(stored))
	return stored.Clone(), nil
}

// Update merges the patch into an existing movement, re-validates and persists it.
// The creation timestamp is never changed.
func (s *LedgerService) Update(ctx context.Context, id int64, patch domain.MovementPatch) (*domain.Movement, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.Snapshot()
	idx, existing := findMovement(current, id)
	if existing == nil {
		return nil, domain.ErrMovementNotFound
	}

	merged, err := existing.Apply(patch)
	if err != nil {
		return nil, err
	}

	err = withRetry("update movement", func() error {
		_, err := s.movementRepo.Update(ctx, merged)
		return err
	})
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ErrMovementNotFound
		}
		return nil, err
	}

	next := make([]*domain.Movement, len(current))
	copy(next, current)
	next[idx] = merged
	s.swap(next)

	s.publishEvent(websocket.MovementUpdated(merged))
	return merged.Clone(), nil
}

// Delete removes a movement. It returns false when the id is unknown.
func (s *LedgerService) Delete(ctx context.Context, id int64) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.Snapshot()
	idx, existing := findMovement(current, id)
	if existing == nil {
		return false, nil
	}

	var affected int64
	err := withRetry("delete movement", func() error {
		var err error
		affected, err = s.movementRepo.Delete(ctx, id)
		return err
	})
	if err != nil && !domain.IsNotFound(err) {
		return false, err
	}

	next := make([]*domain.Movement, 0, len(current)-1)
	next = append(next, current[:idx]...)
	next = append(next, current[idx+1:]...)
	s.swap(next)

	if affected == 0 {
		// storage no longer had the row; memory is now in sync again
		return false, nil
	}

	s.publishEvent(websocket.MovementDeleted(map[string]int64{"id": id}))
	return true, nil
}

// ConsumeDirty reports whether the ledger changed since the previous call
func (s *LedgerService) ConsumeDirty() bool {
	return s.dirty.Swap(false)
}

// MarkDirty flags the ledger as changed, e.g. after a failed backup
func (s *LedgerService) MarkDirty() {
	s.dirty.Store(true)
}

func (s *LedgerService) swap(next []*domain.Movement) {
	s.mu.Lock()
	s.snapshot = next
	s.mu.Unlock()
	s.dirty.Store(true)
}

// sortMovements orders newest first, breaking timestamp ties by id ascending
func sortMovements(movements []*domain.Movement) {
	sort.SliceStable(movements, func(i, j int) bool {
		a, b := movements[i], movements[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.ID < b.ID
	})
}

func findMovement(movements []*domain.Movement, id int64) (int, *domain.Movement) {
	for i, m := range movements {
		if m.ID == id {
			return i, m
		}
	}
	return -1, nil
}

func cloneMovements(movements []*domain.Movement) []*domain.Movement {
	out := make([]*domain.Movement, len(movements))
	for i, m := range movements {
		out[i] = m.Clone()
	}
	return out
}
