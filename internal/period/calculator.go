// Package period implements the period lifecycle: boundary math, cached
// statistics, archiving and the reset state transition.
package period

import (
	"time"

	"dompet/internal/core"
)

// StartDate returns the first day of the payday period containing ref.
//
// The payday of a month shorter than paydayDay is that month's last day, so a
// payday of 31 falls on Feb 28 (or 29). When ref has not reached this month's
// payday yet the period started on the previous month's payday.
func StartDate(paydayDay int, ref core.Date) core.Date {
	year, month := ref.Year(), ref.Month()
	if ref.Day() < min(paydayDay, core.DaysInMonth(year, month)) {
		prev := time.Date(year, time.Month(month)-1, 1, 0, 0, 0, 0, time.UTC)
		year, month = prev.Year(), int(prev.Month())
	}
	return clampedDate(year, month, paydayDay)
}

// EndDate returns the day before the payday of the month following start's month.
func EndDate(start core.Date, paydayDay int) core.Date {
	next := time.Date(start.Year(), time.Month(start.Month())+1, 1, 0, 0, 0, 0, time.UTC)
	return clampedDate(next.Year(), int(next.Month()), paydayDay).AddDays(-1)
}

// CustomEndDate is the end of a fixed-length period started on an explicit
// date: start + 1 month - 1 day, with Go's AddDate normalisation (Jan 31 ends
// on Mar 2, not in February).
func CustomEndDate(start core.Date) core.Date {
	return core.Date{Time: start.Time.AddDate(0, 1, -1)}
}

// Bounds returns the payday period containing ref.
func Bounds(paydayDay int, ref core.Date) (start, end core.Date) {
	start = StartDate(paydayDay, ref)
	return start, EndDate(start, paydayDay)
}

// ArchivedEndDate is the end date stamped on a period archived at now: the day
// before now, but never earlier than the period's own start.
func ArchivedEndDate(start core.Date, now time.Time) core.Date {
	end := core.DateOf(now).AddDays(-1)
	if end.Before(start) {
		return start
	}
	return end
}

func clampedDate(year, month, day int) core.Date {
	return core.NewDate(year, month, min(day, core.DaysInMonth(year, month)))
}
