package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"occupancy_backend/internal/models"
	"occupancy_backend/internal/occupancy"
	"occupancy_backend/internal/repositories"
	"occupancy_backend/pkg/utils"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultLimitNightsPerYear is the regulatory annual night cap.
const DefaultLimitNightsPerYear = 180

const (
	limitSafeRemaining    = 60
	limitWarningRemaining = 30

	// maxParallelComputations bounds concurrent booking fetches.
	maxParallelComputations = 4
)

// ReportService builds the multi-property and multi-period reports.
type ReportService interface {
	GetPortfolioMetrics(ctx context.Context, year, month int, filter *models.RoomFilter) (*models.PortfolioMetrics, error)
	GetPropertyMetrics(ctx context.Context, propertyName string, year, month int, room string) (*models.PropertyPeriodMetrics, error)
	GetPropertyRoomMetrics(ctx context.Context, propertyName string, year, month int) ([]models.PropertyPeriodMetrics, error)
	GetYearlyMetrics(ctx context.Context, propertyName string, year int) (*models.YearlyMetrics, error)
	CompareYears(ctx context.Context, propertyName string, year1, year2 int) (*models.YearComparison, error)
	GetCleaningSchedule(ctx context.Context, propertyName string, year, month int) (*models.CleaningSchedule, error)
	Get180DayLimitReport(ctx context.Context) (*models.LimitReport, error)
	// ComputeDailySnapshots computes year-to-date metrics as of date for every active property
	// plus the models.AllPropertiesName aggregate.
	ComputeDailySnapshots(ctx context.Context, date time.Time) ([]models.DailySnapshot, error)
	// GenerateSnapshots computes and stores snapshots for every date in [from, to].
	GenerateSnapshots(ctx context.Context, from, to time.Time) (int, error)
	// GetSnapshots returns stored snapshots for date, computing them when none are stored.
	GetSnapshots(ctx context.Context, date time.Time) ([]models.DailySnapshot, error)
}

type reportService struct {
	catalog     repositories.PropertyCatalog
	bookingRepo repositories.BookingRepository
	metrics     MetricsService
	snapshots   repositories.SnapshotRepository // may be nil
	limitNights int
	now         func() time.Time
}

// ReportServiceOption customises a ReportService.
type ReportServiceOption func(*reportService)

// WithSnapshotRepository enables snapshot persistence.
func WithSnapshotRepository(repo repositories.SnapshotRepository) ReportServiceOption {
	return func(s *reportService) { s.snapshots = repo }
}

// WithLimitNights overrides the annual night cap.
func WithLimitNights(nights int) ReportServiceOption {
	return func(s *reportService) {
		if nights > 0 {
			s.limitNights = nights
		}
	}
}

// WithClock replaces time.Now, used to select the current fiscal year.
func WithClock(now func() time.Time) ReportServiceOption {
	return func(s *reportService) { s.now = now }
}

// NewReportService creates a new instance of ReportService.
func NewReportService(
	catalog repositories.PropertyCatalog,
	bookingRepo repositories.BookingRepository,
	metrics MetricsService,
	opts ...ReportServiceOption,
) ReportService {
	s := &reportService{
		catalog:     catalog,
		bookingRepo: bookingRepo,
		metrics:     metrics,
		limitNights: DefaultLimitNightsPerYear,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// computeEach runs fn for every property concurrently. Results keep the input order;
// properties without booking data are reported through skipped instead of failing the batch.
func (s *reportService) computeEach(
	ctx context.Context,
	properties []models.Property,
	fn func(ctx context.Context, p *models.Property) (*models.PropertyPeriodMetrics, error),
) (results []*models.PropertyPeriodMetrics, skipped []string, err error) {
	results = make([]*models.PropertyPeriodMetrics, len(properties))
	missing := make([]bool, len(properties))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelComputations)
	for i := range properties {
		i := i
		g.Go(func() error {
			m, err := fn(gctx, &properties[i])
			if err != nil {
				if IsNotFound(err) {
					missing[i] = true
					return nil
				}
				return err
			}
			results[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for i, isMissing := range missing {
		if isMissing {
			utils.LogWarn("Property skipped, no booking data", map[string]interface{}{"property": properties[i].Name})
			skipped = append(skipped, properties[i].Name)
		}
	}
	return results, skipped, nil
}

func (s *reportService) listActive(ctx context.Context) ([]models.Property, error) {
	properties, err := s.catalog.ListActiveProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

// defaultCommissionLog collects properties priced at the default percentage.
// flush logs them in one warning per report.
type defaultCommissionLog struct {
	seen  map[string]bool
	names []string
}

func (l *defaultCommissionLog) note(m *models.PropertyPeriodMetrics) {
	if m == nil || !m.Exact.DefaultCommission || l.seen[m.PropertyName] {
		return
	}
	if l.seen == nil {
		l.seen = map[string]bool{}
	}
	l.seen[m.PropertyName] = true
	l.names = append(l.names, m.PropertyName)
}

func (l *defaultCommissionLog) noteAll(ms []models.PropertyPeriodMetrics) {
	for i := range ms {
		l.note(&ms[i])
	}
}

func (l *defaultCommissionLog) flush(report string) {
	if len(l.names) == 0 {
		return
	}
	utils.LogWarn("No commission config, using default percentage", map[string]interface{}{
		"report":     report,
		"properties": l.names,
	})
}

func (s *reportService) GetPortfolioMetrics(ctx context.Context, year, month int, filter *models.RoomFilter) (*models.PortfolioMetrics, error) {
	period, err := monthPeriod(year, month)
	if err != nil {
		return nil, err
	}
	properties, err := s.listActive(ctx)
	if err != nil {
		return nil, err
	}

	var filterRoom *string
	var filterProperty string
	if filter != nil && strings.TrimSpace(filter.Room) != "" {
		filterProperty = strings.TrimSpace(filter.PropertyName)
		if filterProperty == "" {
			return nil, fmt.Errorf("%w: room given without property", ErrInvalidFilter)
		}
		room := strings.TrimSpace(filter.Room)
		filterRoom = &room

		found := false
		for _, p := range properties {
			if p.Name == filterProperty {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: room filter targets %q", ErrPropertyNotFound, filterProperty)
		}
	}

	results, skipped, err := s.computeEach(ctx, properties, func(ctx context.Context, p *models.Property) (*models.PropertyPeriodMetrics, error) {
		var room *string
		if filterRoom != nil && p.Name == filterProperty {
			room = filterRoom
		}
		return s.metrics.ComputeForProperty(ctx, p, period, room)
	})
	if err != nil {
		return nil, err
	}

	report := &models.PortfolioMetrics{
		Year:              year,
		Month:             month,
		Properties:        []models.PropertyPeriodMetrics{},
		SkippedProperties: skipped,
	}
	var defaults defaultCommissionLog
	revenue, commission, owner := decimal.Zero, decimal.Zero, decimal.Zero
	for _, m := range results {
		if m == nil {
			continue
		}
		defaults.note(m)
		report.Properties = append(report.Properties, *m)
		report.Summary.TotalBookedNights += m.BookedNights
		report.Summary.TotalAvailableRoomNights += m.AvailableRooms
		revenue = revenue.Add(m.Exact.RoomRevenue)
		commission = commission.Add(m.Exact.AgencyFee)
		owner = owner.Add(m.Exact.OwnerPayment)
	}
	defaults.flush("portfolio")
	report.Summary.PropertyCount = len(report.Properties)
	report.Summary.TotalRevenue = occupancy.Round2(revenue)
	report.Summary.TotalCommission = occupancy.Round2(commission)
	report.Summary.TotalOwnerPayment = occupancy.Round2(owner)
	report.OverallOccupancyRate = occupancy.Round2(occupancy.Percent(
		decimal.NewFromInt(int64(report.Summary.TotalBookedNights)),
		decimal.NewFromInt(int64(report.Summary.TotalAvailableRoomNights)),
	))
	return report, nil
}

func (s *reportService) GetPropertyMetrics(ctx context.Context, propertyName string, year, month int, room string) (*models.PropertyPeriodMetrics, error) {
	period, err := monthPeriod(year, month)
	if err != nil {
		return nil, err
	}
	m, err := s.metrics.ComputeMetrics(ctx, propertyName, period, utils.NewNullString(room))
	if err != nil {
		return nil, err
	}
	var defaults defaultCommissionLog
	defaults.note(m)
	defaults.flush("property")
	return m, nil
}

func (s *reportService) GetPropertyRoomMetrics(ctx context.Context, propertyName string, year, month int) ([]models.PropertyPeriodMetrics, error) {
	period, err := monthPeriod(year, month)
	if err != nil {
		return nil, err
	}
	property, err := s.metrics.LoadProperty(ctx, propertyName)
	if err != nil {
		return nil, err
	}
	if !property.IsHostel() {
		return nil, fmt.Errorf("%w: %s", ErrNotHostel, property.Name)
	}

	rooms := property.RealRooms()
	results := make([]models.PropertyPeriodMetrics, len(rooms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelComputations)
	for i := range rooms {
		i := i
		g.Go(func() error {
			m, err := s.metrics.ComputeForProperty(gctx, property, period, &rooms[i])
			if err != nil {
				return err
			}
			results[i] = *m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var defaults defaultCommissionLog
	defaults.noteAll(results)
	defaults.flush("rooms")
	return results, nil
}

func (s *reportService) yearMonths(ctx context.Context, property *models.Property, year int) ([]models.PropertyPeriodMetrics, error) {
	months := occupancy.CalendarYearPeriod(year).Months()
	results := make([]models.PropertyPeriodMetrics, len(months))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelComputations)
	for i := range months {
		i := i
		g.Go(func() error {
			m, err := s.metrics.ComputeForProperty(gctx, property, months[i], nil)
			if err != nil {
				return err
			}
			results[i] = *m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ReduceYear totals twelve monthly results. The occupancy rate is recomputed from the
// summed nights and the ADR averages only months that sold something.
func ReduceYear(year int, monthly []models.PropertyPeriodMetrics) models.YearTotals {
	totals := models.YearTotals{Year: year}
	revenue, commission, adrSum := decimal.Zero, decimal.Zero, decimal.Zero
	adrMonths := 0
	for _, m := range monthly {
		revenue = revenue.Add(m.Exact.RoomRevenue)
		commission = commission.Add(m.Exact.AgencyFee)
		totals.TotalBookedNights += m.BookedNights
		totals.TotalAvailableRooms += m.AvailableRooms
		totals.TotalBookings += m.BookingCount
		if m.Exact.ADR.IsPositive() {
			adrSum = adrSum.Add(m.Exact.ADR)
			adrMonths++
		}
	}
	totals.TotalRevenue = occupancy.Round2(revenue)
	totals.TotalCommission = occupancy.Round2(commission)
	totals.AvgOccRate = occupancy.Round2(occupancy.Percent(
		decimal.NewFromInt(int64(totals.TotalBookedNights)),
		decimal.NewFromInt(int64(totals.TotalAvailableRooms)),
	))
	totals.AvgADR = occupancy.Round2(occupancy.SafeDiv(adrSum, decimal.NewFromInt(int64(adrMonths))))
	return totals
}

func (s *reportService) GetYearlyMetrics(ctx context.Context, propertyName string, year int) (*models.YearlyMetrics, error) {
	if _, err := monthPeriod(year, 1); err != nil {
		return nil, err
	}
	property, err := s.metrics.LoadProperty(ctx, propertyName)
	if err != nil {
		return nil, err
	}
	monthly, err := s.yearMonths(ctx, property, year)
	if err != nil {
		return nil, err
	}
	var defaults defaultCommissionLog
	defaults.noteAll(monthly)
	defaults.flush("yearly")
	return &models.YearlyMetrics{
		PropertyName: property.Name,
		Year:         year,
		MonthlyData:  monthly,
		Totals:       ReduceYear(year, monthly),
	}, nil
}

func changePercent(from, to float64) float64 {
	base := decimal.NewFromFloat(from)
	return occupancy.Round2(occupancy.Percent(decimal.NewFromFloat(to).Sub(base), base))
}

// YearDelta computes year2 minus year1 for the compared totals.
func YearDelta(y1, y2 models.YearTotals) models.YearDifferences {
	return models.YearDifferences{
		RevenueChange:             occupancy.Round2(decimal.NewFromFloat(y2.TotalRevenue).Sub(decimal.NewFromFloat(y1.TotalRevenue))),
		RevenueChangePercent:      changePercent(y1.TotalRevenue, y2.TotalRevenue),
		BookedNightsChange:        y2.TotalBookedNights - y1.TotalBookedNights,
		BookedNightsChangePercent: changePercent(float64(y1.TotalBookedNights), float64(y2.TotalBookedNights)),
		OccRateChange:             occupancy.Round2(decimal.NewFromFloat(y2.AvgOccRate).Sub(decimal.NewFromFloat(y1.AvgOccRate))),
		OccRateChangePercent:      changePercent(y1.AvgOccRate, y2.AvgOccRate),
		ADRChange:                 occupancy.Round2(decimal.NewFromFloat(y2.AvgADR).Sub(decimal.NewFromFloat(y1.AvgADR))),
		ADRChangePercent:          changePercent(y1.AvgADR, y2.AvgADR),
	}
}

func (s *reportService) CompareYears(ctx context.Context, propertyName string, year1, year2 int) (*models.YearComparison, error) {
	for _, y := range []int{year1, year2} {
		if _, err := monthPeriod(y, 1); err != nil {
			return nil, err
		}
	}
	property, err := s.metrics.LoadProperty(ctx, propertyName)
	if err != nil {
		return nil, err
	}

	var monthly1, monthly2 []models.PropertyPeriodMetrics
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		monthly1, err = s.yearMonths(gctx, property, year1)
		return err
	})
	g.Go(func() error {
		var err error
		monthly2, err = s.yearMonths(gctx, property, year2)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var defaults defaultCommissionLog
	defaults.noteAll(monthly1)
	defaults.noteAll(monthly2)
	defaults.flush("compare")

	totals1, totals2 := ReduceYear(year1, monthly1), ReduceYear(year2, monthly2)
	return &models.YearComparison{
		PropertyName: property.Name,
		Year1Totals:  totals1,
		Year2Totals:  totals2,
		Differences:  YearDelta(totals1, totals2),
		Year1Monthly: monthly1,
		Year2Monthly: monthly2,
	}, nil
}

func (s *reportService) GetCleaningSchedule(ctx context.Context, propertyName string, year, month int) (*models.CleaningSchedule, error) {
	period, err := monthPeriod(year, month)
	if err != nil {
		return nil, err
	}
	return s.metrics.CleaningSchedule(ctx, propertyName, period)
}

// LimitStatusFor tiers the remaining nights under the cap.
func LimitStatusFor(remaining int) models.LimitStatus {
	switch {
	case remaining > limitSafeRemaining:
		return models.LimitStatusSafe
	case remaining > limitWarningRemaining:
		return models.LimitStatusWarning
	default:
		return models.LimitStatusCritical
	}
}

// fiscalYearNights counts every occupied night in the fiscal year, unpaid stays included.
func (s *reportService) fiscalYearNights(ctx context.Context, property *models.Property, fy occupancy.Period) (int, error) {
	if property.Source == nil {
		return 0, fmt.Errorf("%w: %s", ErrNoBookingData, property.Name)
	}
	bookings, err := s.bookingRepo.FetchOverlappingBookings(ctx, models.BookingQuery{
		Source:        *property.Source,
		PeriodStart:   fy.Start,
		PeriodEnd:     fy.End,
		IncludeUnpaid: true,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDatasetNotFound) {
			return 0, fmt.Errorf("%w: %s", ErrNoBookingData, property.Name)
		}
		return 0, fmt.Errorf("failed to fetch bookings for %s: %w", property.Name, err)
	}
	nights := 0
	for _, b := range bookings {
		nights += occupancy.NightsInPeriod(b.CheckIn, b.CheckOut, fy.Start, fy.End)
	}
	return nights, nil
}

func (s *reportService) Get180DayLimitReport(ctx context.Context) (*models.LimitReport, error) {
	fy := occupancy.FiscalYearFor(s.now())
	properties, err := s.listActive(ctx)
	if err != nil {
		return nil, err
	}

	capped := make([]models.Property, 0, len(properties))
	for _, p := range properties {
		if p.Subject180DayCap {
			capped = append(capped, p)
		}
	}

	nights := make([]int, len(capped))
	missing := make([]bool, len(capped))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelComputations)
	for i := range capped {
		i := i
		g.Go(func() error {
			n, err := s.fiscalYearNights(gctx, &capped[i], fy)
			if err != nil {
				if IsNotFound(err) {
					missing[i] = true
					return nil
				}
				return err
			}
			nights[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &models.LimitReport{
		FiscalYearStart: fy.Start.Format(occupancy.DateLayout),
		FiscalYearEnd:   fy.LastDay().Format(occupancy.DateLayout),
		LimitNights:     s.limitNights,
		Properties:      []models.LimitPropertyStatus{},
	}
	limit := decimal.NewFromInt(int64(s.limitNights))
	for i, p := range capped {
		if missing[i] {
			utils.LogWarn("Property skipped in limit report, no booking data", map[string]interface{}{"property": p.Name})
			continue
		}
		remaining := s.limitNights - nights[i]
		if remaining < 0 {
			remaining = 0
		}
		utilization := occupancy.Percent(decimal.NewFromInt(int64(nights[i])), limit)
		if utilization.GreaterThan(hundred) {
			utilization = hundred
		}
		report.Properties = append(report.Properties, models.LimitPropertyStatus{
			PropertyName:       p.Name,
			BookedDays:         nights[i],
			RemainingDays:      remaining,
			UtilizationPercent: occupancy.Round2(utilization),
			Status:             LimitStatusFor(remaining),
		})
	}
	return report, nil
}

func snapshotFrom(date string, name string, booked, available int, revenue decimal.Decimal) models.DailySnapshot {
	bookedDec := decimal.NewFromInt(int64(booked))
	availableDec := decimal.NewFromInt(int64(available))
	return models.DailySnapshot{
		SnapshotDate:        date,
		PropertyName:        name,
		BookedNights:        booked,
		AvailableRoomNights: available,
		OccRate:             occupancy.Round2(occupancy.Percent(bookedDec, availableDec)),
		RoomRevenue:         occupancy.Round2(revenue),
		ADR:                 occupancy.Round2(occupancy.SafeDiv(revenue, bookedDec)),
		RevPAR:              occupancy.Round2(occupancy.SafeDiv(revenue, availableDec)),
	}
}

func (s *reportService) ComputeDailySnapshots(ctx context.Context, date time.Time) ([]models.DailySnapshot, error) {
	var defaults defaultCommissionLog
	snapshots, err := s.dailySnapshots(ctx, date, &defaults)
	if err != nil {
		return nil, err
	}
	defaults.flush("snapshot")
	return snapshots, nil
}

func (s *reportService) dailySnapshots(ctx context.Context, date time.Time, defaults *defaultCommissionLog) ([]models.DailySnapshot, error) {
	period := occupancy.YearToDate(date)
	label := occupancy.DateOf(date).Format(occupancy.DateLayout)

	properties, err := s.listActive(ctx)
	if err != nil {
		return nil, err
	}
	results, _, err := s.computeEach(ctx, properties, func(ctx context.Context, p *models.Property) (*models.PropertyPeriodMetrics, error) {
		return s.metrics.ComputeForProperty(ctx, p, period, nil)
	})
	if err != nil {
		return nil, err
	}

	snapshots := make([]models.DailySnapshot, 0, len(results)+1)
	totalBooked, totalAvailable, totalRevenue := 0, 0, decimal.Zero
	for _, m := range results {
		if m == nil {
			continue
		}
		defaults.note(m)
		revenue := m.Exact.RoomRevenue
		snapshots = append(snapshots, snapshotFrom(label, m.PropertyName, m.BookedNights, m.AvailableRooms, revenue))
		totalBooked += m.BookedNights
		totalAvailable += m.AvailableRooms
		totalRevenue = totalRevenue.Add(revenue)
	}
	snapshots = append(snapshots, snapshotFrom(label, models.AllPropertiesName, totalBooked, totalAvailable, totalRevenue))
	return snapshots, nil
}

func (s *reportService) GenerateSnapshots(ctx context.Context, from, to time.Time) (int, error) {
	if s.snapshots == nil {
		return 0, errors.New("snapshot store is not configured")
	}
	days, err := occupancy.RangeInclusive(from, to)
	if err != nil {
		return 0, err
	}

	var defaults defaultCommissionLog
	written := 0
	for day := days.Start; day.Before(days.End); day = day.AddDate(0, 0, 1) {
		snapshots, err := s.dailySnapshots(ctx, day, &defaults)
		if err != nil {
			return written, fmt.Errorf("snapshot %s: %w", day.Format(occupancy.DateLayout), err)
		}
		if err := s.snapshots.UpsertSnapshots(ctx, snapshots); err != nil {
			return written, fmt.Errorf("snapshot %s: %w", day.Format(occupancy.DateLayout), err)
		}
		written += len(snapshots)
	}

	defaults.flush("snapshot")
	utils.LogInfo("Daily snapshots generated", map[string]interface{}{
		"from": days.Start.Format(occupancy.DateLayout),
		"to":   days.LastDay().Format(occupancy.DateLayout),
		"days": days.Days(),
		"rows": written,
	})
	return written, nil
}

func (s *reportService) GetSnapshots(ctx context.Context, date time.Time) ([]models.DailySnapshot, error) {
	if s.snapshots != nil {
		stored, err := s.snapshots.ListByDate(ctx, occupancy.DateOf(date).Format(occupancy.DateLayout))
		if err != nil {
			return nil, err
		}
		if len(stored) > 0 {
			return stored, nil
		}
	}
	return s.ComputeDailySnapshots(ctx, date)
}
