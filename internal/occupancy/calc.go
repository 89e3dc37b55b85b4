package occupancy

import (
	"time"

	"github.com/shopspring/decimal"
)

// StayCleaningIntervalNights is how often a stay cleaning recurs during a stay.
const StayCleaningIntervalNights = 3

// NightsInPeriod counts the nights of a [checkIn, checkOut) stay that fall inside
// [periodStart, periodEnd). The checkout date is never an occupied night.
func NightsInPeriod(checkIn, checkOut, periodStart, periodEnd time.Time) int {
	start := DateOf(checkIn)
	if ps := DateOf(periodStart); ps.After(start) {
		start = ps
	}
	end := DateOf(checkOut)
	if pe := DateOf(periodEnd); pe.Before(end) {
		end = pe
	}
	nights := DaysBetween(start, end)
	if nights < 0 {
		return 0
	}
	return nights
}

// AllocatedRevenue is the share of totalFee earned by nightsInPeriod of a stay of totalNightCount nights.
// The result is not rounded.
func AllocatedRevenue(nightsInPeriod, totalNightCount int, totalFee decimal.Decimal) decimal.Decimal {
	if totalNightCount <= 0 || nightsInPeriod <= 0 {
		return decimal.Zero
	}
	return totalFee.Mul(decimal.NewFromInt(int64(nightsInPeriod))).Div(decimal.NewFromInt(int64(totalNightCount)))
}

type CleaningEvents struct {
	CheckoutCount     int
	StayCleaningCount int
	StayCleaningDates []time.Time
}

// StayCleaningCount is the number of mid-stay cleanings for a stay, the final night excluded.
func StayCleaningCount(nightCount int) int {
	if nightCount <= StayCleaningIntervalNights {
		return 0
	}
	return (nightCount - 1) / StayCleaningIntervalNights
}

// CountCleaningEvents attributes a booking's cleanings to the period its check-in falls in.
func CountCleaningEvents(checkIn time.Time, nightCount int, periodStart, periodEnd time.Time) CleaningEvents {
	checkIn = DateOf(checkIn)
	if checkIn.Before(DateOf(periodStart)) || !checkIn.Before(DateOf(periodEnd)) {
		return CleaningEvents{StayCleaningDates: []time.Time{}}
	}

	count := StayCleaningCount(nightCount)
	dates := make([]time.Time, 0, count)
	for i := 1; i <= count; i++ {
		dates = append(dates, checkIn.AddDate(0, 0, i*StayCleaningIntervalNights))
	}
	return CleaningEvents{
		CheckoutCount:     1,
		StayCleaningCount: count,
		StayCleaningDates: dates,
	}
}

// SafeDiv returns numerator/denominator, or zero when the denominator is zero.
func SafeDiv(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return numerator.Div(denominator)
}

// Percent returns part/whole*100, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	return SafeDiv(part.Mul(decimal.NewFromInt(100)), whole)
}

// Round2 rounds a value for output.
func Round2(value decimal.Decimal) float64 {
	return value.Round(2).InexactFloat64()
}
