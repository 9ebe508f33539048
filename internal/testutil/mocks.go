package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/salao-caixa/caixa-backend/internal/domain"
)

// ErrStorageDown is the error returned by mocks when a failure is injected
var ErrStorageDown = errors.New("storage unavailable")

// failures counts down injected failures per operation
type failures struct {
	remaining map[string]int
}

func (f *failures) set(op string, n int) {
	if f.remaining == nil {
		f.remaining = make(map[string]int)
	}
	f.remaining[op] = n
}

func (f *failures) take(op string) error {
	if f.remaining[op] > 0 {
		f.remaining[op]--
		return ErrStorageDown
	}
	return nil
}

// MockMovementRepository is a mock implementation of domain.MovementRepository
type MockMovementRepository struct {
	Movements map[int64]*domain.Movement
	NextID    int64
	Calls     map[string]int
	failures  failures
	mu        sync.Mutex
}

// NewMockMovementRepository creates a new MockMovementRepository
func NewMockMovementRepository() *MockMovementRepository {
	return &MockMovementRepository{
		Movements: make(map[int64]*domain.Movement),
		NextID:    1,
		Calls:     make(map[string]int),
	}
}

// FailNext makes the next n calls of op ("list", "insert", "update", "delete") fail
func (m *MockMovementRepository) FailNext(op string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures.set(op, n)
}

// CallCount returns how many times op was called, failed calls included
func (m *MockMovementRepository) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[op]
}

// List returns every stored movement
func (m *MockMovementRepository) List(ctx context.Context) ([]*domain.Movement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["list"]++
	if err := m.failures.take("list"); err != nil {
		return nil, err
	}
	result := make([]*domain.Movement, 0, len(m.Movements))
	for _, mv := range m.Movements {
		result = append(result, mv.Clone())
	}
	return result, nil
}

// Insert stores a movement and assigns the next id
func (m *MockMovementRepository) Insert(ctx context.Context, movement *domain.Movement) (*domain.Movement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["insert"]++
	if err := m.failures.take("insert"); err != nil {
		return nil, err
	}
	stored := movement.Clone()
	stored.ID = m.NextID
	m.NextID++
	m.Movements[stored.ID] = stored
	return stored.Clone(), nil
}

// Update replaces an existing movement, keeping its timestamp
func (m *MockMovementRepository) Update(ctx context.Context, movement *domain.Movement) (*domain.Movement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["update"]++
	if err := m.failures.take("update"); err != nil {
		return nil, err
	}
	existing, ok := m.Movements[movement.ID]
	if !ok {
		return nil, domain.ErrMovementNotFound
	}
	stored := movement.Clone()
	stored.Timestamp = existing.Timestamp
	m.Movements[stored.ID] = stored
	return stored.Clone(), nil
}

// Delete removes a movement and returns the number of rows affected
func (m *MockMovementRepository) Delete(ctx context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["delete"]++
	if err := m.failures.take("delete"); err != nil {
		return 0, err
	}
	if _, ok := m.Movements[id]; !ok {
		return 0, nil
	}
	delete(m.Movements, id)
	return 1, nil
}

// AddMovement adds a movement directly (helper for tests)
func (m *MockMovementRepository) AddMovement(movement *domain.Movement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := movement.Clone()
	if stored.ID == 0 {
		stored.ID = m.NextID
	}
	if stored.ID >= m.NextID {
		m.NextID = stored.ID + 1
	}
	m.Movements[stored.ID] = stored
}

// MockServiceRepository is a mock implementation of domain.ServiceRepository
type MockServiceRepository struct {
	Services map[string]*domain.Service
	Calls    map[string]int
	failures failures
	mu       sync.Mutex
}

// NewMockServiceRepository creates a new MockServiceRepository
func NewMockServiceRepository() *MockServiceRepository {
	return &MockServiceRepository{
		Services: make(map[string]*domain.Service),
		Calls:    make(map[string]int),
	}
}

// FailNext makes the next n calls of op ("list", "get", "insert", "insertBatch",
// "update", "delete") fail
func (m *MockServiceRepository) FailNext(op string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures.set(op, n)
}

// List returns every stored service in no particular order
func (m *MockServiceRepository) List(ctx context.Context) ([]*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["list"]++
	if err := m.failures.take("list"); err != nil {
		return nil, err
	}
	result := make([]*domain.Service, 0, len(m.Services))
	for _, svc := range m.Services {
		c := *svc
		result = append(result, &c)
	}
	return result, nil
}

// GetByID retrieves a service by id
func (m *MockServiceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["get"]++
	if err := m.failures.take("get"); err != nil {
		return nil, err
	}
	svc, ok := m.Services[id]
	if !ok {
		return nil, domain.ErrServiceNotFound
	}
	c := *svc
	return &c, nil
}

// Insert stores a new service
func (m *MockServiceRepository) Insert(ctx context.Context, service *domain.Service) (*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["insert"]++
	if err := m.failures.take("insert"); err != nil {
		return nil, err
	}
	c := *service
	m.Services[c.ID] = &c
	out := c
	return &out, nil
}

// CallCount returns how many times op was called, failed calls included
func (m *MockServiceRepository) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[op]
}

// InsertBatch stores all services or none
func (m *MockServiceRepository) InsertBatch(ctx context.Context, services []*domain.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["insertBatch"]++
	if err := m.failures.take("insertBatch"); err != nil {
		return err
	}
	for _, svc := range services {
		if _, ok := m.Services[svc.ID]; ok {
			return domain.ErrServiceExists
		}
	}
	for _, svc := range services {
		c := *svc
		m.Services[c.ID] = &c
	}
	return nil
}

// Update replaces an existing service
func (m *MockServiceRepository) Update(ctx context.Context, service *domain.Service) (*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["update"]++
	if err := m.failures.take("update"); err != nil {
		return nil, err
	}
	if _, ok := m.Services[service.ID]; !ok {
		return nil, domain.ErrServiceNotFound
	}
	c := *service
	m.Services[c.ID] = &c
	out := c
	return &out, nil
}

// Delete removes a service and returns the number of rows affected
func (m *MockServiceRepository) Delete(ctx context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["delete"]++
	if err := m.failures.take("delete"); err != nil {
		return 0, err
	}
	if _, ok := m.Services[id]; !ok {
		return 0, nil
	}
	delete(m.Services, id)
	return 1, nil
}

// AddService adds a service directly (helper for tests)
func (m *MockServiceRepository) AddService(service *domain.Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *service
	m.Services[c.ID] = &c
}

// MockFlusher is a mock implementation of domain.Flusher
type MockFlusher struct {
	Count int
	Err   error
	mu    sync.Mutex
}

// Flush records the call and returns Err
func (m *MockFlusher) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Count++
	return m.Err
}

// FlushCount returns how many times Flush was called
func (m *MockFlusher) FlushCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Count
}

// MockBackupRepository is a mock implementation of domain.BackupRepository
type MockBackupRepository struct {
	Objects map[string][]byte
	Err     error
	mu      sync.Mutex
}

// NewMockBackupRepository creates a new MockBackupRepository
func NewMockBackupRepository() *MockBackupRepository {
	return &MockBackupRepository{
		Objects: make(map[string][]byte),
	}
}

// Upload stores the data under key unless Err is set
func (m *MockBackupRepository) Upload(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Objects[key] = append([]byte(nil), data...)
	return nil
}

// Keys returns the uploaded object keys
func (m *MockBackupRepository) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.Objects))
	for k := range m.Objects {
		keys = append(keys, k)
	}
	return keys
}

// SetErr changes the error returned by Upload
func (m *MockBackupRepository) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}
