package service

import (
	"testing"
	"time"

	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateTotals(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, brt)
	movements := []*domain.Movement{
		entry(1, "Corte", "50.00", domain.PaymentMethodPIX, now),
		exit(2, "Aluguel", "20.00", now),
	}

	totals := CalculateTotals(movements)

	assert.Equal(t, "50.00", totals.TotalEntries.StringFixed(2))
	assert.Equal(t, "20.00", totals.TotalExits.StringFixed(2))
	assert.Equal(t, "30.00", totals.NetBalance.StringFixed(2))
	assert.Equal(t, 2, totals.TransactionCount)
}

func TestCalculateTotals_Empty(t *testing.T) {
	totals := CalculateTotals(nil)

	assert.True(t, totals.TotalEntries.IsZero())
	assert.True(t, totals.TotalExits.IsZero())
	assert.True(t, totals.NetBalance.IsZero())
	assert.Equal(t, 0, totals.TransactionCount)
}

func TestCalculateTotals_NoFloatDrift(t *testing.T) {
	now := time.Now()
	movements := make([]*domain.Movement, 0, 1000)
	for i := 0; i < 1000; i++ {
		movements = append(movements, entry(int64(i+1), "Buço", "0.10", domain.PaymentMethodCash, now))
	}
	movements = append(movements, exit(1001, "Troco", "0.30", now))

	totals := CalculateTotals(movements)

	assert.Equal(t, "100.00", totals.TotalEntries.StringFixed(2))
	assert.Equal(t, "99.70", totals.NetBalance.StringFixed(2))
	assert.True(t, totals.NetBalance.Equal(totals.TotalEntries.Sub(totals.TotalExits)))
}

func TestCalculatePeriodStats_UsesFullLedger(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, brt)
	all := []*domain.Movement{
		entry(1, "Corte", "40.00", domain.PaymentMethodCash, now.Add(-time.Hour)),
		exit(2, "Aluguel", "100.00", now.Add(-2*time.Hour)),
		entry(3, "Escova", "30.00", domain.PaymentMethodCash, now.AddDate(0, 0, -5)),
		entry(4, "Progressiva", "180.00", domain.PaymentMethodCredit, now.AddDate(0, -1, 0)),
	}

	stats := CalculatePeriodStats(all, now)

	assert.Equal(t, "40.00", stats.TodayEntries.StringFixed(2))
	assert.Equal(t, 2, stats.TodayCount)
	assert.Equal(t, "70.00", stats.MonthEntries.StringFixed(2))
	assert.Equal(t, 3, stats.MonthCount)
}

func TestTopServices(t *testing.T) {
	now := time.Now()
	movements := []*domain.Movement{
		entry(1, "Corte", "40.00", domain.PaymentMethodCash, now),
		entry(2, "Corte", "45.00", domain.PaymentMethodCash, now),
		entry(3, "Escova", "30.00", domain.PaymentMethodCash, now),
	}

	top := TopServices(movements, 5)

	require.Len(t, top, 2)
	assert.Equal(t, "Corte", top[0].Category)
	assert.Equal(t, 2, top[0].Quantity)
	assert.Equal(t, "85.00", top[0].Revenue.StringFixed(2))
	assert.Equal(t, "Escova", top[1].Category)
	assert.Equal(t, 1, top[1].Quantity)
	assert.Equal(t, "30.00", top[1].Revenue.StringFixed(2))
}

func TestTopServices_ExcludesExitsAndBreaksTies(t *testing.T) {
	now := time.Now()
	movements := []*domain.Movement{
		exit(1, "Aluguel", "900.00", now),
		entry(2, "Escova", "30.00", domain.PaymentMethodCash, now),
		entry(3, "Buço", "30.00", domain.PaymentMethodCash, now),
		entry(4, "Corte", "40.00", domain.PaymentMethodCash, now),
	}

	top := TopServices(movements, 0)

	require.Len(t, top, 3)
	assert.Equal(t, []string{"Corte", "Buço", "Escova"}, []string{top[0].Category, top[1].Category, top[2].Category})
	for _, row := range top {
		assert.NotEqual(t, "Aluguel", row.Category)
	}
}

func TestTopServices_Truncates(t *testing.T) {
	now := time.Now()
	var movements []*domain.Movement
	for i, cat := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		movements = append(movements, entry(int64(i+1), cat, "10.00", domain.PaymentMethodCash, now))
	}

	assert.Len(t, TopServices(movements, 5), 5)
	assert.Len(t, TopServices(movements, 10), 7)
	assert.NotNil(t, TopServices(nil, 5))
}

func TestTopServices_EntryWithoutServiceRefIsCounted(t *testing.T) {
	m := entry(1, "Manicure avulsa", "25.00", domain.PaymentMethodCash, time.Now())
	m.ServiceRef = nil

	top := TopServices([]*domain.Movement{m}, 5)
	require.Len(t, top, 1)
	assert.Equal(t, "Manicure avulsa", top[0].Category)
}

func TestRevenueByPaymentMethod(t *testing.T) {
	now := time.Now()
	movements := []*domain.Movement{
		entry(1, "Corte", "40.00", domain.PaymentMethodCash, now),
		entry(2, "Coloração", "120.00", domain.PaymentMethodCredit, now),
		entry(3, "Escova", "30.00", domain.PaymentMethodCash, now),
		entry(4, "Buço", "70.00", domain.PaymentMethodPIX, now),
		exit(5, "Aluguel", "500.00", now),
	}

	got := RevenueByPaymentMethod(movements)

	require.Len(t, got, 3)
	assert.Equal(t, domain.PaymentMethodCredit, got[0].PaymentMethod)
	assert.Equal(t, "120.00", got[0].Amount.StringFixed(2))
	// cash and pix tie at 70; method name decides
	assert.Equal(t, domain.PaymentMethodCash, got[1].PaymentMethod)
	assert.Equal(t, domain.PaymentMethodPIX, got[2].PaymentMethod)
}

func TestWeeklySeries(t *testing.T) {
	// Wednesday; the week starts on Sunday 2026-03-08
	now := time.Date(2026, 3, 11, 15, 0, 0, 0, brt)
	movements := []*domain.Movement{
		entry(1, "Corte", "40.00", domain.PaymentMethodCash, time.Date(2026, 3, 8, 10, 0, 0, 0, brt)),
		entry(2, "Escova", "30.00", domain.PaymentMethodCash, time.Date(2026, 3, 11, 9, 0, 0, 0, brt)),
		entry(3, "Corte", "45.00", domain.PaymentMethodCash, time.Date(2026, 3, 11, 11, 0, 0, 0, brt)),
		exit(4, "Aluguel", "800.00", time.Date(2026, 3, 11, 12, 0, 0, 0, brt)),
		entry(5, "Buço", "15.00", domain.PaymentMethodCash, time.Date(2026, 3, 7, 10, 0, 0, 0, brt)),
	}

	series := WeeklySeries(movements, now)

	require.Len(t, series, 7)
	assert.Equal(t, "Dom", series[0].Weekday)
	assert.Equal(t, "Sáb", series[6].Weekday)
	assert.True(t, series[0].Date.Equal(time.Date(2026, 3, 8, 0, 0, 0, 0, brt)))
	assert.Equal(t, "40.00", series[0].Revenue.StringFixed(2))
	assert.Equal(t, "75.00", series[3].Revenue.StringFixed(2))
	for _, i := range []int{1, 2, 4, 5, 6} {
		assert.True(t, series[i].Revenue.IsZero(), "day %d should be zero", i)
	}
}

func TestDailySeries(t *testing.T) {
	movements := []*domain.Movement{
		entry(1, "Corte", "40.00", domain.PaymentMethodCash, time.Date(2026, 3, 10, 10, 0, 0, 0, brt)),
		exit(2, "Aluguel", "100.00", time.Date(2026, 3, 10, 11, 0, 0, 0, brt)),
		entry(3, "Escova", "30.00", domain.PaymentMethodCash, time.Date(2026, 3, 8, 9, 0, 0, 0, brt)),
		// 02:00 UTC on the 9th is still the 8th in BRT
		entry(4, "Buço", "15.00", domain.PaymentMethodCash, time.Date(2026, 3, 9, 2, 0, 0, 0, time.UTC)),
	}

	series := DailySeries(movements, brt, 30)

	require.Len(t, series, 2)
	assert.Equal(t, "2026-03-10", series[0].Date)
	assert.Equal(t, "40.00", series[0].Entries.StringFixed(2))
	assert.Equal(t, "100.00", series[0].Exits.StringFixed(2))
	assert.Equal(t, "-60.00", series[0].Balance.StringFixed(2))
	assert.Equal(t, "2026-03-08", series[1].Date)
	assert.Equal(t, "45.00", series[1].Entries.StringFixed(2))
	assert.Equal(t, "45.00", series[1].Balance.StringFixed(2))
}

func TestDailySeries_KeepsMostRecentBuckets(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, brt)
	var movements []*domain.Movement
	for i := 0; i < 45; i++ {
		movements = append(movements, entry(int64(i+1), "Corte", "40.00", domain.PaymentMethodCash, start.AddDate(0, 0, i)))
	}

	series := DailySeries(movements, brt, domain.MaxDailyBuckets)

	require.Len(t, series, 30)
	assert.Equal(t, "2026-02-14", series[0].Date)
	assert.Equal(t, "2026-01-16", series[29].Date)
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, brt)
	all := []*domain.Movement{
		entry(1, "Corte", "50.00", domain.PaymentMethodPIX, now.Add(-time.Hour)),
		exit(2, "Aluguel", "20.00", now.Add(-2*time.Hour)),
		entry(3, "Escova", "30.00", domain.PaymentMethodCash, now.AddDate(0, 0, -20)),
	}
	slice := FilterMovements(all, &domain.MovementFilter{Date: &now})

	summary := Summarize(slice, all, now)

	assert.Equal(t, "50.00", summary.TotalEntries.StringFixed(2))
	assert.Equal(t, "20.00", summary.TotalExits.StringFixed(2))
	assert.Equal(t, "30.00", summary.NetBalance.StringFixed(2))
	assert.Equal(t, 2, summary.TransactionCount)
	// period stats ignore the filter
	assert.Equal(t, "50.00", summary.TodayEntries.StringFixed(2))
	assert.Equal(t, 2, summary.TodayCount)
	assert.Len(t, summary.TopServices, 1)
	assert.Len(t, summary.RevenueByPaymentMethod, 1)
	assert.Len(t, summary.WeeklySeries, 7)
	assert.Len(t, summary.DailySeries, 1)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil, nil, time.Now())

	assert.True(t, summary.NetBalance.IsZero())
	assert.Equal(t, 0, summary.TransactionCount)
	assert.Empty(t, summary.TopServices)
	assert.NotNil(t, summary.TopServices)
	assert.Empty(t, summary.RevenueByPaymentMethod)
	assert.Empty(t, summary.DailySeries)
	assert.Len(t, summary.WeeklySeries, 7)
}

func TestCalculateDashboard(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, brt)
	all := []*domain.Movement{
		entry(1, "Corte", "40.00", domain.PaymentMethodCash, now.Add(-time.Hour)),
		entry(2, "Escova", "30.00", domain.PaymentMethodCash, now.Add(-2*time.Hour)),
		exit(3, "Aluguel", "500.00", now.Add(-3*time.Hour)),
		entry(4, "Coloração", "120.00", domain.PaymentMethodCredit, now.AddDate(0, 0, -3)),
		entry(5, "Progressiva", "180.00", domain.PaymentMethodCredit, now.AddDate(0, -1, 0)),
	}

	metrics := CalculateDashboard(all, now)

	assert.Equal(t, "70.00", metrics.DailyRevenue.StringFixed(2))
	assert.Equal(t, "190.00", metrics.MonthlyRevenue.StringFixed(2))
	assert.Equal(t, 2, metrics.ClientsServed)
	require.Len(t, metrics.TopServices, 3)
	assert.Equal(t, "Coloração", metrics.TopServices[0].Category)
	assert.Len(t, metrics.WeeklyRevenue, 7)
}
