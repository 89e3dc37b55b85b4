package occupancy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := ParseDate(value)
	require.NoError(t, err)
	return parsed
}

func TestNightsInPeriod(t *testing.T) {
	tests := []struct {
		name        string
		checkIn     string
		checkOut    string
		periodStart string
		periodEnd   string
		want        int
	}{
		{"stay crossing month end", "2025-09-29", "2025-10-03", "2025-09-01", "2025-10-01", 2},
		{"same stay in following month", "2025-09-29", "2025-10-03", "2025-10-01", "2025-11-01", 2},
		{"single night inside month", "2025-09-13", "2025-09-14", "2025-09-01", "2025-10-01", 1},
		{"checkout on period end", "2025-09-28", "2025-10-01", "2025-09-01", "2025-10-01", 3},
		{"checkout one day after period end", "2025-09-30", "2025-10-02", "2025-09-01", "2025-10-01", 1},
		{"stay before period", "2025-08-01", "2025-08-05", "2025-09-01", "2025-10-01", 0},
		{"stay after period", "2025-10-01", "2025-10-05", "2025-09-01", "2025-10-01", 0},
		{"checkout on period start", "2025-08-28", "2025-09-01", "2025-09-01", "2025-10-01", 0},
		{"stay covering whole period", "2025-08-20", "2025-10-10", "2025-09-01", "2025-10-01", 30},
		{"fiscal year tail", "2025-03-30", "2025-04-02", "2024-04-01", "2025-04-01", 2},
		{"fiscal year head", "2025-03-30", "2025-04-02", "2025-04-01", "2026-04-01", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NightsInPeriod(date(t, tt.checkIn), date(t, tt.checkOut), date(t, tt.periodStart), date(t, tt.periodEnd))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNightsInPeriodIgnoresTimeOfDay(t *testing.T) {
	checkIn := time.Date(2025, 9, 13, 15, 0, 0, 0, time.UTC)
	checkOut := time.Date(2025, 9, 14, 10, 0, 0, 0, time.UTC)
	got := NightsInPeriod(checkIn, checkOut, date(t, "2025-09-01"), date(t, "2025-10-01"))
	assert.Equal(t, 1, got)
}

func TestNightsAcrossAdjacentPeriodsSumToStay(t *testing.T) {
	checkIn, checkOut := date(t, "2025-01-28"), date(t, "2025-03-03")
	total := 0
	for _, month := range CalendarYearPeriod(2025).Months() {
		total += NightsInPeriod(checkIn, checkOut, month.Start, month.End)
	}
	assert.Equal(t, DaysBetween(checkIn, checkOut), total)
}

func TestAllocatedRevenue(t *testing.T) {
	fee := decimal.NewFromInt(40000)

	assert.True(t, AllocatedRevenue(2, 4, fee).Equal(decimal.NewFromInt(20000)))
	assert.True(t, AllocatedRevenue(4, 4, fee).Equal(fee))
	assert.True(t, AllocatedRevenue(0, 4, fee).IsZero())
}

func TestAllocatedRevenueZeroNightCount(t *testing.T) {
	for _, nights := range []int{0, 1, 5} {
		for _, fee := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(12345), decimal.RequireFromString("-10.5")} {
			assert.True(t, AllocatedRevenue(nights, 0, fee).IsZero())
			assert.True(t, AllocatedRevenue(nights, -1, fee).IsZero())
		}
	}
}

func TestAllocatedRevenueSumsToFeeOverYear(t *testing.T) {
	stays := []struct {
		checkIn  string
		checkOut string
		fee      string
	}{
		{"2025-03-30", "2025-04-02", "10000"},
		{"2025-01-31", "2025-03-02", "98765.43"},
		{"2025-06-10", "2025-06-12", "15000"},
		{"2025-12-30", "2026-01-01", "7777"},
	}

	year := CalendarYearPeriod(2025)
	for _, stay := range stays {
		checkIn, checkOut := date(t, stay.checkIn), date(t, stay.checkOut)
		fee := decimal.RequireFromString(stay.fee)
		nightCount := DaysBetween(checkIn, checkOut)

		sum := decimal.Zero
		for _, month := range year.Months() {
			nights := NightsInPeriod(checkIn, checkOut, month.Start, month.End)
			sum = sum.Add(AllocatedRevenue(nights, nightCount, fee))
		}
		assert.True(t, sum.Round(2).Equal(fee), "stay %s..%s: got %s want %s", stay.checkIn, stay.checkOut, sum, fee)
	}
}

func TestStayCleaningCount(t *testing.T) {
	want := map[int]int{1: 0, 2: 0, 3: 0, 4: 1, 5: 1, 6: 1, 7: 2, 10: 3, 0: 0}
	for nights, expected := range want {
		assert.Equal(t, expected, StayCleaningCount(nights), "nights=%d", nights)
	}
}

func TestCountCleaningEvents(t *testing.T) {
	start, end := date(t, "2025-09-01"), date(t, "2025-10-01")

	events := CountCleaningEvents(date(t, "2025-09-28"), 7, start, end)
	assert.Equal(t, 1, events.CheckoutCount)
	assert.Equal(t, 2, events.StayCleaningCount)
	require.Len(t, events.StayCleaningDates, 2)
	assert.Equal(t, "2025-10-01", events.StayCleaningDates[0].Format(DateLayout))
	assert.Equal(t, "2025-10-04", events.StayCleaningDates[1].Format(DateLayout))

	outside := CountCleaningEvents(date(t, "2025-08-30"), 7, start, end)
	assert.Equal(t, 0, outside.CheckoutCount)
	assert.Equal(t, 0, outside.StayCleaningCount)
	assert.Empty(t, outside.StayCleaningDates)

	onEnd := CountCleaningEvents(end, 2, start, end)
	assert.Equal(t, 0, onEnd.CheckoutCount)
}

func TestPercentAndSafeDiv(t *testing.T) {
	assert.True(t, Percent(decimal.NewFromInt(1), decimal.Zero).IsZero())
	assert.Equal(t, 25.0, Round2(Percent(decimal.NewFromInt(1), decimal.NewFromInt(4))))
	assert.True(t, SafeDiv(decimal.NewFromInt(3), decimal.Zero).IsZero())
	assert.Equal(t, 33.33, Round2(SafeDiv(decimal.NewFromInt(100), decimal.NewFromInt(3))))
}
