package util

import "time"

// DayLayout is the layout of calendar-day keys and query parameters
const DayLayout = "2006-01-02"

// weekdayLabels are the short weekday names shown in the weekly chart
var weekdayLabels = [7]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

// IsSameCalendarDay returns true if both instants fall on the same
// year/month/day in the location of a
func IsSameCalendarDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsWithinRange returns true if start <= t <= end; a nil bound is open
func IsWithinRange(t time.Time, start, end *time.Time) bool {
	if start != nil && t.Before(*start) {
		return false
	}
	if end != nil && t.After(*end) {
		return false
	}
	return true
}

// StartOfDay returns midnight of the day containing t, in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of the day containing t
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// MonthStart returns the first instant of the calendar month containing t
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// WeekStart returns midnight of the most recent Sunday (t's day if it is Sunday)
func WeekStart(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// DayKey renders the calendar day of t as YYYY-MM-DD
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD day in the given location
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, loc)
}

// WeekdayLabel returns the short label of a weekday
func WeekdayLabel(d time.Weekday) string {
	return weekdayLabels[d]
}
