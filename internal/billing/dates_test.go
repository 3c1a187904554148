package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextBillingDate(t *testing.T) {
	tests := []struct {
		name string
		prev time.Time
		want time.Time
	}{
		{"MidMonth", date(2026, time.March, 15), date(2026, time.April, 15)},
		{"ClampsToFebruary", date(2026, time.January, 31), date(2026, time.February, 28)},
		{"LeapFebruary", date(2028, time.January, 31), date(2028, time.February, 29)},
		{"YearRollover", date(2026, time.December, 10), date(2027, time.January, 10)},
		{"EndOfLongMonth", date(2026, time.May, 31), date(2026, time.June, 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextBillingDate(tt.prev))
		})
	}
}

func TestNextMonthOnDay_RecoversClampedDay(t *testing.T) {
	// A deduction pinned to the 31st clamps through February but lands
	// back on the 31st in March.
	feb := NextMonthOnDay(date(2026, time.January, 31), 31)
	assert.Equal(t, date(2026, time.February, 28), feb)
	mar := NextMonthOnDay(feb, 31)
	assert.Equal(t, date(2026, time.March, 31), mar)
}

func TestProrateFirstMonth(t *testing.T) {
	// Launch on April 16th: 15 of 30 days remain, so half the cost.
	amount, next := ProrateFirstMonth(1000, date(2026, time.April, 16))
	assert.Equal(t, int64(500), amount)
	assert.Equal(t, date(2026, time.May, 1), next)

	// Launch on the first covers the whole month.
	amount, next = ProrateFirstMonth(1000, date(2026, time.April, 1))
	assert.Equal(t, int64(1000), amount)
	assert.Equal(t, date(2026, time.May, 1), next)

	// Launch on the last day still rounds up to a non-zero charge.
	amount, _ = ProrateFirstMonth(1000, date(2026, time.April, 30))
	assert.Equal(t, int64(34), amount)
}

func TestFirstOccurrence(t *testing.T) {
	// Day later this month.
	assert.Equal(t, date(2026, time.April, 20), FirstOccurrence(20, date(2026, time.April, 10)))
	// Same day counts as due today.
	assert.Equal(t, date(2026, time.April, 10), FirstOccurrence(10, date(2026, time.April, 10)))
	// Day already passed rolls to next month.
	assert.Equal(t, date(2026, time.May, 5), FirstOccurrence(5, date(2026, time.April, 10)))
	// Clamped in short months.
	assert.Equal(t, date(2026, time.February, 28), FirstOccurrence(31, date(2026, time.February, 10)))
}

func TestDue(t *testing.T) {
	assert.True(t, Due(date(2026, time.April, 10), date(2026, time.April, 10)))
	assert.True(t, Due(date(2026, time.April, 9), date(2026, time.April, 10)))
	assert.False(t, Due(date(2026, time.April, 11), date(2026, time.April, 10)))
	// Time of day does not matter, only the calendar day.
	assert.True(t, Due(
		time.Date(2026, time.April, 10, 23, 0, 0, 0, time.UTC),
		time.Date(2026, time.April, 10, 1, 0, 0, 0, time.UTC),
	))
}

func TestPeriodKey(t *testing.T) {
	assert.Equal(t, "2026-04", PeriodKey(date(2026, time.April, 16)))
}
