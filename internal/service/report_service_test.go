package service

import (
	"testing"
	"time"

	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleReport(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, brt)
	linked := entry(1, "Corte", "40.00", domain.PaymentMethodCash, now)
	linked.ServiceRef = strPtr("10")
	dangling := entry(2, "Escova", "30.00", domain.PaymentMethodPIX, now.Add(-time.Hour))
	dangling.ServiceRef = strPtr("deleted")
	unlinked := exit(3, "Aluguel", "800.00", now.Add(-2*time.Hour))

	services := []*domain.Service{
		{ID: "10", Name: "Corte", Price: money("40.00")},
		{ID: "7", Name: "Escova", Price: money("30.00")},
	}

	rows := AssembleReport([]*domain.Movement{linked, dangling, unlinked}, services)

	require.Len(t, rows, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{rows[0].ID, rows[1].ID, rows[2].ID})

	require.NotNil(t, rows[0].ServiceName)
	assert.Equal(t, "Corte", *rows[0].ServiceName)
	assert.Nil(t, rows[1].ServiceName, "deleted service leaves the name empty")
	assert.Nil(t, rows[2].ServiceName)

	assert.Equal(t, domain.MovementKindExit, rows[2].Kind)
	assert.Equal(t, "800.00", rows[2].Amount.StringFixed(2))
	assert.Equal(t, domain.PaymentMethodPIX, rows[1].PaymentMethod)
	assert.True(t, rows[0].Timestamp.Equal(now))
}

func TestAssembleReport_Empty(t *testing.T) {
	rows := AssembleReport(nil, nil)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}
