package util

import (
	"fmt"
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
)

// ResolvePeriod returns the inclusive window of the given kind that contains ref.
// Boundaries are computed in ref's location.
func ResolvePeriod(kind domain.PeriodKind, ref time.Time) (domain.Period, error) {
	loc := ref.Location()
	year, month, day := ref.Date()

	var start, next time.Time
	switch kind {
	case domain.PeriodMonthly:
		start = time.Date(year, month, 1, 0, 0, 0, 0, loc)
		next = start.AddDate(0, 1, 0)
	case domain.PeriodWeekly:
		offset := (int(ref.Weekday()) - int(domain.WeekStart) + 7) % 7
		start = time.Date(year, month, day-offset, 0, 0, 0, 0, loc)
		next = start.AddDate(0, 0, 7)
	case domain.PeriodYearly:
		start = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		next = start.AddDate(1, 0, 0)
	default:
		return domain.Period{}, fmt.Errorf("%w: unknown period kind %q", domain.ErrInvalidArgument, kind)
	}

	return domain.Period{Start: start, End: endOfDay(next.AddDate(0, 0, -1))}, nil
}

// MonthPeriod returns the window of a calendar month in UTC
func MonthPeriod(year, month int) domain.Period {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return domain.Period{Start: start, End: endOfDay(start.AddDate(0, 1, -1))}
}

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// DaysRemaining returns the number of calendar days from ref through the end of p, counting ref's day
func DaysRemaining(p domain.Period, ref time.Time) int {
	if ref.After(p.End) {
		return 0
	}
	if ref.Before(p.Start) {
		ref = p.Start
	}
	y1, m1, d1 := ref.Date()
	y2, m2, d2 := p.End.Date()
	from := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	to := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours()/24) + 1
}

// endOfDay returns the last representable instant of t's calendar day
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
