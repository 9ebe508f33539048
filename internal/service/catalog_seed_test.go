package service

import (
	"context"
	"testing"

	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/salao-caixa/caixa-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultServices(t *testing.T) {
	services := DefaultServices()
	require.Len(t, services, 17)

	seen := map[string]bool{}
	for _, s := range services {
		assert.False(t, seen[s.ID], "duplicate id %s", s.ID)
		seen[s.ID] = true
		assert.NoError(t, domain.ValidateService(s.Name, s.Price))
	}
	assert.Equal(t, "Corte", services[9].Name)
	assert.Equal(t, "40.00", services[9].Price.StringFixed(2))
}

func TestCatalogService_Seed(t *testing.T) {
	repo := testutil.NewMockServiceRepository()
	catalog := NewCatalogService(repo)
	ctx := context.Background()

	n, err := catalog.Seed(ctx, DefaultServices())
	require.NoError(t, err)
	assert.Equal(t, 17, n)
	assert.Len(t, repo.Services, 17)

	n, err = catalog.Seed(ctx, DefaultServices())
	require.NoError(t, err)
	assert.Equal(t, 0, n, "a populated catalog is not seeded again")
	assert.Len(t, repo.Services, 17)
}

func TestCatalogService_Seed_SkipsNonEmptyCatalog(t *testing.T) {
	repo := testutil.NewMockServiceRepository()
	repo.AddService(&domain.Service{ID: "x", Name: "Manicure", Price: money("20")})
	catalog := NewCatalogService(repo)

	n, err := catalog.Seed(context.Background(), DefaultServices())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, repo.Services, 1)
}

func TestCatalogService_Seed_StorageFailure(t *testing.T) {
	repo := testutil.NewMockServiceRepository()
	repo.FailNext("insertBatch", 2)
	catalog := NewCatalogService(repo)

	n, err := catalog.Seed(context.Background(), DefaultServices())
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, 0, n)
	assert.Empty(t, repo.Services, "a failed seed stores nothing")
}

func TestCatalogService_Seed_RetriesAfterFailedStart(t *testing.T) {
	repo := testutil.NewMockServiceRepository()
	repo.FailNext("insertBatch", 2)
	catalog := NewCatalogService(repo)
	ctx := context.Background()

	_, err := catalog.Seed(ctx, DefaultServices())
	require.Error(t, err)

	n, err := catalog.Seed(ctx, DefaultServices())
	require.NoError(t, err)
	assert.Equal(t, 17, n)
	assert.Len(t, repo.Services, 17)
}

func TestCatalogService_Seed_RecoversFromTransientFailure(t *testing.T) {
	repo := testutil.NewMockServiceRepository()
	repo.FailNext("insertBatch", 1)
	catalog := NewCatalogService(repo)

	n, err := catalog.Seed(context.Background(), DefaultServices())
	require.NoError(t, err)
	assert.Equal(t, 17, n)
	assert.Equal(t, 2, repo.CallCount("insertBatch"))
}

func TestCatalogService_Seed_InvalidServiceStoresNothing(t *testing.T) {
	repo := testutil.NewMockServiceRepository()
	catalog := NewCatalogService(repo)

	services := DefaultServices()
	services[5].Price = money("0")

	_, err := catalog.Seed(context.Background(), services)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, repo.Services)
}
