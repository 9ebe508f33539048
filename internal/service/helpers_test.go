package service

import (
	"sync"
	"time"

	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/salao-caixa/caixa-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

var brt = time.FixedZone("BRT", -3*60*60)

// steppingClock returns start on the first call and advances by step on each call
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(step)
		return now
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func moneyPtr(s string) *decimal.Decimal {
	d := money(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func entry(id int64, category, amount string, method domain.PaymentMethod, ts time.Time) *domain.Movement {
	return &domain.Movement{
		ID:            id,
		Kind:          domain.MovementKindEntry,
		Category:      category,
		Amount:        money(amount),
		Description:   category,
		Timestamp:     ts,
		PaymentMethod: method,
	}
}

func exit(id int64, category, amount string, ts time.Time) *domain.Movement {
	return &domain.Movement{
		ID:            id,
		Kind:          domain.MovementKindExit,
		Category:      category,
		Amount:        money(amount),
		Description:   category,
		Timestamp:     ts,
		PaymentMethod: domain.PaymentMethodCash,
	}
}

func entryInput(category, amount string, method domain.PaymentMethod) domain.MovementInput {
	return domain.MovementInput{
		Kind:          domain.MovementKindEntry,
		Category:      category,
		Amount:        moneyPtr(amount),
		Description:   "Atendimento " + category,
		PaymentMethod: method,
	}
}

func exitInput(category, amount string) domain.MovementInput {
	return domain.MovementInput{
		Kind:        domain.MovementKindExit,
		Category:    category,
		Amount:      moneyPtr(amount),
		Description: "Pagamento " + category,
	}
}

// setupLedger returns a loaded ledger over an empty mock repository
func setupLedger(clock func() time.Time) (*LedgerService, *testutil.MockMovementRepository) {
	repo := testutil.NewMockMovementRepository()
	ledger := NewLedgerService(repo)
	ledger.SetClock(clock)
	return ledger, repo
}
