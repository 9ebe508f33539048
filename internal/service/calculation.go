package service

import (
	"sort"
	"time"

	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/salao-caixa/caixa-backend/internal/util"
	"github.com/shopspring/decimal"
)

// The aggregation functions below are pure: they read an explicit ledger
// snapshot and never fail. Empty input yields zero values and empty slices.

// CalculateTotals sums entries and exits over a ledger slice
func CalculateTotals(movements []*domain.Movement) domain.Totals {
	entries := decimal.Zero
	exits := decimal.Zero
	for _, m := range movements {
		switch m.Kind {
		case domain.MovementKindEntry:
			entries = entries.Add(m.Amount)
		case domain.MovementKindExit:
			exits = exits.Add(m.Amount)
		}
	}
	return domain.Totals{
		TotalEntries:     entries,
		TotalExits:       exits,
		NetBalance:       entries.Sub(exits),
		TransactionCount: len(movements),
	}
}

// CalculatePeriodStats computes today and this-month figures.
// It must be given the full ledger, not a filtered slice. Counts include
// both kinds; amounts only sum entries.
func CalculatePeriodStats(all []*domain.Movement, now time.Time) domain.PeriodStats {
	stats := domain.PeriodStats{
		TodayEntries: decimal.Zero,
		MonthEntries: decimal.Zero,
	}
	monthStart := util.MonthStart(now)
	for _, m := range all {
		isEntry := m.Kind == domain.MovementKindEntry
		if util.IsSameCalendarDay(now, m.Timestamp) {
			stats.TodayCount++
			if isEntry {
				stats.TodayEntries = stats.TodayEntries.Add(m.Amount)
			}
		}
		if !m.Timestamp.Before(monthStart) {
			stats.MonthCount++
			if isEntry {
				stats.MonthEntries = stats.MonthEntries.Add(m.Amount)
			}
		}
	}
	return stats
}

// TopServices ranks entry categories by revenue, ties by category name.
// A limit <= 0 returns the full ranking.
func TopServices(movements []*domain.Movement, limit int) []domain.ServiceRevenue {
	byCategory := make(map[string]*domain.ServiceRevenue)
	for _, m := range movements {
		if m.Kind != domain.MovementKindEntry {
			continue
		}
		row, ok := byCategory[m.Category]
		if !ok {
			row = &domain.ServiceRevenue{Category: m.Category, Revenue: decimal.Zero}
			byCategory[m.Category] = row
		}
		row.Quantity++
		row.Revenue = row.Revenue.Add(m.Amount)
	}

	result := make([]domain.ServiceRevenue, 0, len(byCategory))
	for _, row := range byCategory {
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].Revenue.Cmp(result[j].Revenue); c != 0 {
			return c > 0
		}
		return result[i].Category < result[j].Category
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// RevenueByPaymentMethod sums entry amounts per payment method, largest first
func RevenueByPaymentMethod(movements []*domain.Movement) []domain.PaymentMethodRevenue {
	byMethod := make(map[domain.PaymentMethod]decimal.Decimal)
	for _, m := range movements {
		if m.Kind != domain.MovementKindEntry {
			continue
		}
		current, ok := byMethod[m.PaymentMethod]
		if !ok {
			current = decimal.Zero
		}
		byMethod[m.PaymentMethod] = current.Add(m.Amount)
	}

	result := make([]domain.PaymentMethodRevenue, 0, len(byMethod))
	for method, amount := range byMethod {
		result = append(result, domain.PaymentMethodRevenue{PaymentMethod: method, Amount: amount})
	}
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].Amount.Cmp(result[j].Amount); c != 0 {
			return c > 0
		}
		return result[i].PaymentMethod < result[j].PaymentMethod
	})
	return result
}

// WeeklySeries returns seven days of entry revenue starting on the most
// recent Sunday. Days without entries report zero.
func WeeklySeries(movements []*domain.Movement, now time.Time) []domain.DayRevenue {
	loc := now.Location()
	byDay := make(map[string]decimal.Decimal)
	for _, m := range movements {
		if m.Kind != domain.MovementKindEntry {
			continue
		}
		key := util.DayKey(m.Timestamp.In(loc))
		current, ok := byDay[key]
		if !ok {
			current = decimal.Zero
		}
		byDay[key] = current.Add(m.Amount)
	}

	start := util.WeekStart(now)
	series := make([]domain.DayRevenue, 7)
	for i := range series {
		day := start.AddDate(0, 0, i)
		revenue, ok := byDay[util.DayKey(day)]
		if !ok {
			revenue = decimal.Zero
		}
		series[i] = domain.DayRevenue{
			Date:    day,
			Weekday: util.WeekdayLabel(day.Weekday()),
			Revenue: revenue,
		}
	}
	return series
}

// DailySeries groups all movements by calendar day in loc, most recent day
// first, keeping at most limit buckets (all when limit <= 0)
func DailySeries(movements []*domain.Movement, loc *time.Location, limit int) []domain.DailyMovement {
	byDay := make(map[string]*domain.DailyMovement)
	for _, m := range movements {
		key := util.DayKey(m.Timestamp.In(loc))
		bucket, ok := byDay[key]
		if !ok {
			bucket = &domain.DailyMovement{
				Date:    key,
				Entries: decimal.Zero,
				Exits:   decimal.Zero,
			}
			byDay[key] = bucket
		}
		switch m.Kind {
		case domain.MovementKindEntry:
			bucket.Entries = bucket.Entries.Add(m.Amount)
		case domain.MovementKindExit:
			bucket.Exits = bucket.Exits.Add(m.Amount)
		}
	}

	result := make([]domain.DailyMovement, 0, len(byDay))
	for _, bucket := range byDay {
		bucket.Balance = bucket.Entries.Sub(bucket.Exits)
		result = append(result, *bucket)
	}
	// YYYY-MM-DD keys sort chronologically as strings
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date > result[j].Date
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Summarize computes every aggregate of a ledger slice. Period stats come
// from the full ledger so that active filters never affect them.
func Summarize(slice, all []*domain.Movement, now time.Time) *domain.Summary {
	return &domain.Summary{
		Totals:                 CalculateTotals(slice),
		PeriodStats:            CalculatePeriodStats(all, now),
		TopServices:            TopServices(slice, domain.DefaultTopServices),
		RevenueByPaymentMethod: RevenueByPaymentMethod(slice),
		WeeklySeries:           WeeklySeries(slice, now),
		DailySeries:            DailySeries(slice, now.Location(), domain.MaxDailyBuckets),
	}
}

// CalculateDashboard computes the home screen metrics over the full ledger
func CalculateDashboard(all []*domain.Movement, now time.Time) *domain.DashboardMetrics {
	stats := CalculatePeriodStats(all, now)

	clients := 0
	monthStart := util.MonthStart(now)
	month := make([]*domain.Movement, 0, len(all))
	for _, m := range all {
		if m.Kind == domain.MovementKindEntry && util.IsSameCalendarDay(now, m.Timestamp) {
			clients++
		}
		if !m.Timestamp.Before(monthStart) {
			month = append(month, m)
		}
	}

	return &domain.DashboardMetrics{
		DailyRevenue:   stats.TodayEntries,
		MonthlyRevenue: stats.MonthEntries,
		ClientsServed:  clients,
		TopServices:    TopServices(month, domain.DashboardTopServices),
		WeeklyRevenue:  WeeklySeries(all, now),
	}
}
