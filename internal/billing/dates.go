// Package billing holds the calendar arithmetic behind recurring charges.
package billing

import "time"

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextBillingDate advances a billing date by exactly one calendar month,
// clamping to the last day when the next month is shorter (Jan 31 -> Feb 28).
// It is always computed from the previous billing date, never from "today",
// so repeated cycles do not drift.
func NextBillingDate(prev time.Time) time.Time {
	year, month, day := prev.Date()
	next := time.Date(year, month+1, 1, 0, 0, 0, 0, prev.Location())
	if dim := DaysInMonth(next.Year(), next.Month()); day > dim {
		day = dim
	}
	return time.Date(next.Year(), next.Month(), day, 0, 0, 0, 0, prev.Location())
}

// PeriodKey renders the billing period a date falls in, used to build
// idempotency keys so one participation is charged at most once per cycle.
func PeriodKey(t time.Time) string {
	return t.Format("2006-01")
}

// ProrateFirstMonth charges only the remainder of the launch month:
// cost * daysRemaining / daysInMonth, with the launch day included and the
// result rounded up so a launch on the last day still costs something.
// The first full cycle then starts on the first of the next month.
func ProrateFirstMonth(cost int64, launch time.Time) (int64, time.Time) {
	dim := DaysInMonth(launch.Year(), launch.Month())
	remaining := dim - launch.Day() + 1
	amount := (cost*int64(remaining) + int64(dim) - 1) / int64(dim)
	next := time.Date(launch.Year(), launch.Month()+1, 1, 0, 0, 0, 0, launch.Location())
	return amount, next
}

// NextMonthOnDay moves a billing date one month past prev, landing on the
// configured day-of-month (clamped to shorter months). Keeping the target
// day separate from prev means a February clamp to the 28th still returns
// to the 31st in months that have one.
func NextMonthOnDay(prev time.Time, dayOfMonth int) time.Time {
	next := time.Date(prev.Year(), prev.Month()+1, 1, 0, 0, 0, 0, prev.Location())
	day := dayOfMonth
	if dim := DaysInMonth(next.Year(), next.Month()); day > dim {
		day = dim
	}
	return time.Date(next.Year(), next.Month(), day, 0, 0, 0, 0, prev.Location())
}

// FirstOccurrence returns the first time the given day-of-month comes up
// on or after asOf, clamping to the last day of shorter months.
func FirstOccurrence(dayOfMonth int, asOf time.Time) time.Time {
	year, month, _ := asOf.Date()
	day := dayOfMonth
	if dim := DaysInMonth(year, month); day > dim {
		day = dim
	}
	candidate := time.Date(year, month, day, 0, 0, 0, 0, asOf.Location())
	if candidate.Before(time.Date(year, month, asOf.Day(), 0, 0, 0, 0, asOf.Location())) {
		next := time.Date(year, month+1, 1, 0, 0, 0, 0, asOf.Location())
		day = dayOfMonth
		if dim := DaysInMonth(next.Year(), next.Month()); day > dim {
			day = dim
		}
		candidate = time.Date(next.Year(), next.Month(), day, 0, 0, 0, 0, asOf.Location())
	}
	return candidate
}

// Due reports whether a billing date has been reached as of the given day.
// Comparison is by calendar day, not instant.
func Due(billingDate, asOf time.Time) bool {
	y1, m1, d1 := billingDate.Date()
	y2, m2, d2 := asOf.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return !a.After(b)
}
