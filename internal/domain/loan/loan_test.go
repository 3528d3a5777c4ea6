package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewLoan(t *testing.T) {
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	l := NewLoan(7, 250000, 18, 12.5, 15230.44, start)

	assert.Equal(t, int64(7), l.CustomerID)
	assert.Equal(t, 0, l.EMIsPaidOnTime)
	assert.Equal(t, start, l.StartDate)
	assert.Equal(t, start.AddDate(0, 18, 0), l.EndDate)
}

func TestLoanIsActive(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLoan(1, 100000, 12, 10, 8791.59, start)

	assert.True(t, l.IsActive(l.EndDate), "a loan ending today is still active")
	assert.True(t, l.IsActive(l.EndDate.AddDate(0, 0, -1)))
	assert.False(t, l.IsActive(l.EndDate.AddDate(0, 0, 1)))
}

func TestRepaymentsLeft(t *testing.T) {
	l := &Loan{TenureMonths: 12, EMIsPaidOnTime: 5}
	assert.Equal(t, 7, l.RepaymentsLeft())

	l.EMIsPaidOnTime = 15
	assert.Equal(t, 0, l.RepaymentsLeft(), "overpaid history never goes negative")
}

func TestStartOfDayUsesTheLocalCalendarDay(t *testing.T) {
	zone := time.FixedZone("UTC+5:30", 5*3600+30*60)
	lateEvening := time.Date(2026, 3, 10, 23, 30, 0, 0, zone)

	day := startOfDay(lateEvening)

	assert.True(t, day.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, zone)),
		"a request just before midnight must stay on the same local day")
	assert.Equal(t, zone, day.Location())

	// Epoch-grid truncation would land on the previous local day here.
	earlyMorning := time.Date(2026, 3, 10, 2, 0, 0, 0, zone)
	assert.True(t, startOfDay(earlyMorning).Equal(day))
}
