// Package dateutil provides calendar date arithmetic for billing schedules.
package dateutil

import "time"

// AddMonths returns t with its month advanced by the given count, clamping
// the day to the last valid day of the target month. Unlike time.AddDate,
// Jan 31 + 1 month yields Feb 28 (or Feb 29 in a leap year), never Mar 3.
// The count may be negative. Clock and location are preserved.
func AddMonths(t time.Time, months int) time.Time {
	year := t.Year()
	// Zero-based month index so integer division carries years correctly
	// for negative offsets too.
	monthIdx := int(t.Month()) - 1 + months
	year += monthIdx / 12
	monthIdx %= 12
	if monthIdx < 0 {
		monthIdx += 12
		year--
	}
	month := time.Month(monthIdx + 1)

	day := t.Day()
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}

	hour, min, sec := t.Clock()
	return time.Date(year, month, day, hour, min, sec, t.Nanosecond(), t.Location())
}

// DateOnly truncates t to midnight UTC. Billing, renewal, and transaction
// dates are stored date-only; normalizing through this keeps equality
// comparisons exact across drivers.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// lastDayOfMonth returns the number of days in the given month.
func lastDayOfMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
