package services

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"occupancy_backend/internal/models"
	"occupancy_backend/internal/repositories"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolioMetrics(t *testing.T) {
	asakusa := hostel("Asakusa", 1, "A", "B", "Csf")
	villa := guesthouse("Villa", 2)
	ghost := guesthouse("Ghost", 99)
	inactive := guesthouse("Closed", 3)
	inactive.IsActive = false
	f := newFixture(asakusa, villa, ghost, inactive)

	a := stay(t, "2025-06-01", "2025-06-04", 30000)
	a.RoomType = "A"
	b := stay(t, "2025-06-10", "2025-06-12", 20000)
	b.RoomType = "B"
	f.bookings.add(1, a, b)
	f.bookings.add(2, stay(t, "2025-06-05", "2025-06-11", 60000))
	f.bookings.add(3, stay(t, "2025-06-05", "2025-06-11", 60000))

	report, err := f.reports().GetPortfolioMetrics(context.Background(), 2025, 6, nil)
	require.NoError(t, err)
	require.Len(t, report.Properties, 2)
	assert.Equal(t, "Asakusa", report.Properties[0].PropertyName)
	assert.Equal(t, "Villa", report.Properties[1].PropertyName)
	assert.Equal(t, []string{"Ghost"}, report.SkippedProperties)
	assert.Equal(t, 2, report.Summary.PropertyCount)
	assert.Equal(t, 11, report.Summary.TotalBookedNights)
	assert.Equal(t, 90, report.Summary.TotalAvailableRoomNights)
	assert.Equal(t, 110000.0, report.Summary.TotalRevenue)
	assert.Equal(t, 16500.0, report.Summary.TotalCommission)
	assert.Equal(t, 93500.0, report.Summary.TotalOwnerPayment)
	assert.Equal(t, 12.22, report.OverallOccupancyRate)
}

func TestPortfolioRoomFilterTargetsOneHostel(t *testing.T) {
	f := newFixture(hostel("Asakusa", 1, "A", "B"), hostel("Ueno", 2, "A", "B"))
	a := stay(t, "2025-06-01", "2025-06-04", 30000)
	a.RoomType = "A"
	b := stay(t, "2025-06-10", "2025-06-12", 20000)
	b.RoomType = "B"
	f.bookings.add(1, a, b)
	f.bookings.add(2, a, b)

	report, err := f.reports().GetPortfolioMetrics(context.Background(), 2025, 6, &models.RoomFilter{PropertyName: "Asakusa", Room: "A"})
	require.NoError(t, err)
	require.Len(t, report.Properties, 2)
	assert.Equal(t, "A", report.Properties[0].RoomName)
	assert.Equal(t, 30, report.Properties[0].AvailableRooms)
	assert.Equal(t, 3, report.Properties[0].BookedNights)
	assert.Empty(t, report.Properties[1].RoomName)
	assert.Equal(t, 60, report.Properties[1].AvailableRooms)
	assert.Equal(t, 5, report.Properties[1].BookedNights)

	_, err = f.reports().GetPortfolioMetrics(context.Background(), 2025, 6, &models.RoomFilter{PropertyName: "Shinjuku", Room: "A"})
	assert.ErrorIs(t, err, ErrPropertyNotFound)

	_, err = f.reports().GetPortfolioMetrics(context.Background(), 2025, 6, &models.RoomFilter{Room: "A"})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = f.reports().GetPortfolioMetrics(context.Background(), 2025, 13, nil)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestPropertyRoomMetricsExcludesStaffRooms(t *testing.T) {
	f := newFixture(hostel("Asakusa", 1, "A", "Bsf", "C"), guesthouse("Villa", 2))
	f.bookings.add(1)
	f.bookings.add(2)

	rooms, err := f.reports().GetPropertyRoomMetrics(context.Background(), "Asakusa", 2025, 6)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "A", rooms[0].RoomName)
	assert.Equal(t, "C", rooms[1].RoomName)
	for _, r := range rooms {
		assert.NotEqual(t, "Bsf", r.RoomName)
		assert.Equal(t, 30, r.AvailableRooms)
	}

	_, err = f.reports().GetPropertyRoomMetrics(context.Background(), "Villa", 2025, 6)
	assert.ErrorIs(t, err, ErrNotHostel)
}

func TestYearlyMetricsOccupancyIsNotMeanOfMonths(t *testing.T) {
	f := newFixture(guesthouse("Villa", 2))
	f.bookings.add(2,
		stay(t, "2025-02-01", "2025-02-15", 140000),
		stay(t, "2025-08-01", "2025-09-01", 310000),
	)

	yearly, err := f.reports().GetYearlyMetrics(context.Background(), "Villa", 2025)
	require.NoError(t, err)
	require.Len(t, yearly.MonthlyData, 12)
	assert.Equal(t, 50.0, yearly.MonthlyData[1].OccRate)
	assert.Equal(t, 100.0, yearly.MonthlyData[7].OccRate)

	naive := 0.0
	for _, m := range yearly.MonthlyData {
		naive += m.OccRate
	}
	naive /= 12

	totals := yearly.Totals
	assert.Equal(t, 45, totals.TotalBookedNights)
	assert.Equal(t, 365, totals.TotalAvailableRooms)
	assert.Equal(t, 12.33, totals.AvgOccRate)
	assert.NotEqual(t, naive, totals.AvgOccRate)
	assert.Equal(t, 450000.0, totals.TotalRevenue)
	assert.Equal(t, 10000.0, totals.AvgADR)
	assert.Equal(t, 2, totals.TotalBookings)
}

func TestCompareYears(t *testing.T) {
	f := newFixture(guesthouse("Villa", 2))
	f.bookings.add(2,
		stay(t, "2024-05-01", "2024-05-11", 100000),
		stay(t, "2025-05-01", "2025-05-16", 180000),
	)

	cmp, err := f.reports().CompareYears(context.Background(), "Villa", 2024, 2025)
	require.NoError(t, err)
	assert.Equal(t, 100000.0, cmp.Year1Totals.TotalRevenue)
	assert.Equal(t, 180000.0, cmp.Year2Totals.TotalRevenue)
	assert.Equal(t, 80000.0, cmp.Differences.RevenueChange)
	assert.Equal(t, 80.0, cmp.Differences.RevenueChangePercent)
	assert.Equal(t, 5, cmp.Differences.BookedNightsChange)
	assert.Equal(t, 50.0, cmp.Differences.BookedNightsChangePercent)
	assert.Equal(t, 2000.0, cmp.Differences.ADRChange)
	assert.Equal(t, 20.0, cmp.Differences.ADRChangePercent)
	assert.Len(t, cmp.Year1Monthly, 12)
}

func TestYearDeltaFromEmptyYear(t *testing.T) {
	diff := YearDelta(models.YearTotals{}, models.YearTotals{TotalRevenue: 5000, TotalBookedNights: 4})
	assert.Equal(t, 5000.0, diff.RevenueChange)
	assert.Equal(t, 0.0, diff.RevenueChangePercent)
	assert.Equal(t, 0.0, diff.BookedNightsChangePercent)
}

func TestLimitReportFiscalYearBoundary(t *testing.T) {
	capped := guesthouse("Villa", 2)
	capped.Subject180DayCap = true
	uncapped := guesthouse("Hotel", 4)
	f := newFixture(capped, uncapped)
	f.bookings.add(2, stay(t, "2025-03-30", "2025-04-02", 30000))
	f.bookings.add(4, stay(t, "2025-03-01", "2025-03-20", 30000))

	march := f.reports(WithClock(func() time.Time { return day(t, "2025-03-15") }))
	report, err := march.Get180DayLimitReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", report.FiscalYearStart)
	assert.Equal(t, "2025-03-31", report.FiscalYearEnd)
	assert.Equal(t, 180, report.LimitNights)
	require.Len(t, report.Properties, 1)
	assert.Equal(t, 2, report.Properties[0].BookedDays)
	assert.Equal(t, 178, report.Properties[0].RemainingDays)
	assert.Equal(t, models.LimitStatusSafe, report.Properties[0].Status)

	april := f.reports(WithClock(func() time.Time { return day(t, "2025-04-10") }))
	report, err = april.Get180DayLimitReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-04-01", report.FiscalYearStart)
	require.Len(t, report.Properties, 1)
	assert.Equal(t, 1, report.Properties[0].BookedDays)
}

func TestLimitReportCapsAndCountsUnpaidStays(t *testing.T) {
	capped := guesthouse("Villa", 2)
	capped.Subject180DayCap = true
	f := newFixture(capped)
	f.bookings.add(2,
		stay(t, "2025-04-01", "2025-09-01", 1000000),
		stay(t, "2025-09-01", "2025-11-01", 0),
	)

	report, err := f.reports(WithClock(func() time.Time { return day(t, "2025-11-01") })).Get180DayLimitReport(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Properties, 1)
	status := report.Properties[0]
	assert.Equal(t, 214, status.BookedDays)
	assert.Equal(t, 0, status.RemainingDays)
	assert.Equal(t, 100.0, status.UtilizationPercent)
	assert.Equal(t, models.LimitStatusCritical, status.Status)
}

func TestLimitStatusFor(t *testing.T) {
	assert.Equal(t, models.LimitStatusSafe, LimitStatusFor(61))
	assert.Equal(t, models.LimitStatusWarning, LimitStatusFor(60))
	assert.Equal(t, models.LimitStatusWarning, LimitStatusFor(31))
	assert.Equal(t, models.LimitStatusCritical, LimitStatusFor(30))
	assert.Equal(t, models.LimitStatusCritical, LimitStatusFor(0))
}

func TestDailySnapshotsIncludeAggregate(t *testing.T) {
	f := newFixture(guesthouse("Villa", 2), hostel("Asakusa", 1, "A", "B"))
	f.bookings.add(2, stay(t, "2025-01-10", "2025-01-20", 100000))
	f.bookings.add(1, stay(t, "2025-02-01", "2025-02-03", 20000))

	snapshots, err := f.reports().ComputeDailySnapshots(context.Background(), day(t, "2025-02-03"))
	require.NoError(t, err)
	require.Len(t, snapshots, 3)

	all := snapshots[2]
	assert.Equal(t, models.AllPropertiesName, all.PropertyName)
	assert.Equal(t, "2025-02-03", all.SnapshotDate)
	assert.Equal(t, 12, all.BookedNights)
	assert.Equal(t, 34*3, all.AvailableRoomNights)
	assert.Equal(t, 120000.0, all.RoomRevenue)
	assert.Equal(t, 10000.0, all.ADR)
}

func TestGenerateSnapshotsPersists(t *testing.T) {
	store, err := repositories.OpenSnapshotRepository(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := newFixture(guesthouse("Villa", 2))
	f.bookings.add(2, stay(t, "2025-01-10", "2025-01-20", 100000))
	svc := f.reports(WithSnapshotRepository(store))

	written, err := svc.GenerateSnapshots(context.Background(), day(t, "2025-01-14"), day(t, "2025-01-16"))
	require.NoError(t, err)
	assert.Equal(t, 6, written)

	stored, err := svc.GetSnapshots(context.Background(), day(t, "2025-01-15"))
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Villa", stored[0].PropertyName)
	assert.Equal(t, 6, stored[0].BookedNights)
	assert.Equal(t, 15, stored[0].AvailableRoomNights)

	_, err = f.reports().GenerateSnapshots(context.Background(), day(t, "2025-01-14"), day(t, "2025-01-16"))
	assert.Error(t, err)
}

func TestYearlyTotalsSumUnroundedMonths(t *testing.T) {
	f := newFixture(guesthouse("Villa", 2))
	f.bookings.add(2, stay(t, "2025-01-31", "2025-03-02", 100))

	yearly, err := f.reports().GetYearlyMetrics(context.Background(), "Villa", 2025)
	require.NoError(t, err)
	assert.Equal(t, 3.33, yearly.MonthlyData[0].RoomRevenue)
	assert.Equal(t, 93.33, yearly.MonthlyData[1].RoomRevenue)
	assert.Equal(t, 3.33, yearly.MonthlyData[2].RoomRevenue)

	assert.Equal(t, 30, yearly.Totals.TotalBookedNights)
	assert.Equal(t, 100.0, yearly.Totals.TotalRevenue)
	assert.Equal(t, 15.0, yearly.Totals.TotalCommission)
	assert.Equal(t, 3.33, yearly.Totals.AvgADR)
}

func TestPortfolioAndSnapshotTotalsSumUnroundedRevenue(t *testing.T) {
	f := newFixture(guesthouse("Villa", 2), guesthouse("Annex", 3))
	f.bookings.add(2, stay(t, "2025-05-30", "2025-06-02", 100))
	f.bookings.add(3, stay(t, "2025-05-30", "2025-06-02", 100))

	report, err := f.reports().GetPortfolioMetrics(context.Background(), 2025, 6, nil)
	require.NoError(t, err)
	require.Len(t, report.Properties, 2)
	assert.Equal(t, 33.33, report.Properties[0].RoomRevenue)
	assert.Equal(t, 66.67, report.Summary.TotalRevenue)
	assert.Equal(t, 10.0, report.Summary.TotalCommission)
	assert.Equal(t, 56.67, report.Summary.TotalOwnerPayment)

	snapshots, err := f.reports().ComputeDailySnapshots(context.Background(), day(t, "2025-05-30"))
	require.NoError(t, err)
	require.Len(t, snapshots, 3)
	assert.Equal(t, 33.33, snapshots[0].RoomRevenue)
	assert.Equal(t, models.AllPropertiesName, snapshots[2].PropertyName)
	assert.Equal(t, 66.67, snapshots[2].RoomRevenue)
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) lines(substr string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, line := range strings.Split(b.buf.String(), "\n") {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

func captureLogs(t *testing.T) *lockedBuffer {
	t.Helper()
	out := &lockedBuffer{}
	previous, previousLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(out)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(previousLevel)
	})
	return out
}

func TestDefaultCommissionWarnsOncePerReport(t *testing.T) {
	logs := captureLogs(t)
	f := newFixture(guesthouse("Villa", 2), guesthouse("Annex", 3))
	f.commissions.configs["Annex"] = models.PercentageCommission{CommissionPercent: dec(20)}
	f.bookings.add(2, stay(t, "2024-05-01", "2024-05-11", 100000))
	f.bookings.add(3)

	_, err := f.reports().GetYearlyMetrics(context.Background(), "Villa", 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.lines(`"level":"warn"`))

	_, err = f.reports().CompareYears(context.Background(), "Villa", 2024, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, logs.lines(`"level":"warn"`))

	_, err = f.reports().GetYearlyMetrics(context.Background(), "Annex", 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, logs.lines(`"level":"warn"`))
	assert.Equal(t, 2, logs.lines(`"properties":["Villa"]`))
}
