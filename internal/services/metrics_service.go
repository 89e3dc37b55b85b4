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
)

// --- Custom Service Errors for Metrics ---
var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrNoBookingData    = errors.New("property has no booking data")
	ErrInvalidPeriod    = occupancy.ErrInvalidPeriod
	ErrNotHostel        = errors.New("property is not a hostel")
	ErrInvalidFilter    = errors.New("invalid room filter")
)

// IsNotFound reports whether err means the property or its booking data is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPropertyNotFound) || errors.Is(err, ErrNoBookingData)
}

// MetricsService aggregates bookings into per-property period metrics.
type MetricsService interface {
	LoadProperty(ctx context.Context, name string) (*models.Property, error)
	// ComputeMetrics returns ErrPropertyNotFound or ErrNoBookingData when nothing can be computed.
	ComputeMetrics(ctx context.Context, propertyName string, period occupancy.Period, room *string) (*models.PropertyPeriodMetrics, error)
	ComputeForProperty(ctx context.Context, property *models.Property, period occupancy.Period, room *string) (*models.PropertyPeriodMetrics, error)
	CleaningSchedule(ctx context.Context, propertyName string, period occupancy.Period) (*models.CleaningSchedule, error)
}

type metricsService struct {
	catalog     repositories.PropertyCatalog
	bookingRepo repositories.BookingRepository
	commissions CommissionService
}

// NewMetricsService creates a new instance of MetricsService.
func NewMetricsService(catalog repositories.PropertyCatalog, bookingRepo repositories.BookingRepository, commissions CommissionService) MetricsService {
	return &metricsService{
		catalog:     catalog,
		bookingRepo: bookingRepo,
		commissions: commissions,
	}
}

func (s *metricsService) LoadProperty(ctx context.Context, name string) (*models.Property, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrPropertyNotFound)
	}
	property, err := s.catalog.GetProperty(ctx, name)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPropertyNotFound, name)
		}
		return nil, fmt.Errorf("failed to load property %s: %w", name, err)
	}
	return property, nil
}

func (s *metricsService) ComputeMetrics(ctx context.Context, propertyName string, period occupancy.Period, room *string) (*models.PropertyPeriodMetrics, error) {
	property, err := s.LoadProperty(ctx, propertyName)
	if err != nil {
		return nil, err
	}
	return s.ComputeForProperty(ctx, property, period, room)
}

// effectiveRoom drops a room filter that cannot apply: blank, or the property has no rooms.
func effectiveRoom(property *models.Property, room *string) *string {
	if room == nil || !property.IsHostel() {
		return nil
	}
	name := strings.TrimSpace(*room)
	if name == "" {
		return nil
	}
	return &name
}

func (s *metricsService) fetchBookings(ctx context.Context, property *models.Property, period occupancy.Period, room *string, includeUnpaid bool) ([]models.Booking, error) {
	if property.Source == nil {
		utils.LogWarn("Property has no booking dataset", map[string]interface{}{"property": property.Name})
		return nil, fmt.Errorf("%w: %s", ErrNoBookingData, property.Name)
	}
	bookings, err := s.bookingRepo.FetchOverlappingBookings(ctx, models.BookingQuery{
		Source:        *property.Source,
		PeriodStart:   period.Start,
		PeriodEnd:     period.End,
		Room:          room,
		IncludeUnpaid: includeUnpaid,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDatasetNotFound) {
			utils.LogWarn("Booking dataset absent", map[string]interface{}{"property": property.Name, "source": int64(*property.Source)})
			return nil, fmt.Errorf("%w: %s", ErrNoBookingData, property.Name)
		}
		return nil, fmt.Errorf("failed to fetch bookings for %s: %w", property.Name, err)
	}
	return bookings, nil
}

// periodAccumulator holds the running totals of one (property, period, room) computation.
type periodAccumulator struct {
	bookedNights  int
	bookingCount  int
	totalPeople   int
	stayCleanings int
	revenue       decimal.Decimal
	leadTimeDays  int
	leadTimeCount int
}

func (a *periodAccumulator) add(b models.Booking, period occupancy.Period) {
	nights := occupancy.NightsInPeriod(b.CheckIn, b.CheckOut, period.Start, period.End)
	a.bookedNights += nights
	a.revenue = a.revenue.Add(occupancy.AllocatedRevenue(nights, b.NightCount, b.AccommodationFee))

	if !period.Contains(b.CheckIn) {
		return
	}
	a.bookingCount++
	a.totalPeople += b.PeopleCount
	a.stayCleanings += occupancy.CountCleaningEvents(b.CheckIn, b.NightCount, period.Start, period.End).StayCleaningCount

	if b.BookingDate != nil {
		if lead := occupancy.DaysBetween(*b.BookingDate, b.CheckIn); lead >= 0 {
			a.leadTimeDays += lead
			a.leadTimeCount++
		}
	}
}

func (s *metricsService) ComputeForProperty(ctx context.Context, property *models.Property, period occupancy.Period, room *string) (*models.PropertyPeriodMetrics, error) {
	room = effectiveRoom(property, room)
	bookings, err := s.fetchBookings(ctx, property, period, room, false)
	if err != nil {
		return nil, err
	}

	acc := periodAccumulator{revenue: decimal.Zero}
	for _, b := range bookings {
		acc.add(b, period)
	}

	roomCount := property.TotalRooms()
	if room != nil {
		roomCount = 1
	}
	available := period.Days() * roomCount

	booked := decimal.NewFromInt(int64(acc.bookedNights))
	availableDec := decimal.NewFromInt(int64(available))
	adr := occupancy.SafeDiv(acc.revenue, booked)

	commission, err := s.commissions.ResolveCommission(ctx, property, period, models.CommissionAggregates{
		Revenue:            acc.revenue,
		BookingCount:       acc.bookingCount,
		TotalPeople:        acc.totalPeople,
		TotalStayCleanings: acc.stayCleanings,
	})
	if err != nil {
		return nil, err
	}

	metrics := &models.PropertyPeriodMetrics{
		PropertyName:        property.Name,
		PeriodLabel:         period.Label,
		PeriodStart:         period.Start.Format(occupancy.DateLayout),
		PeriodEnd:           period.End.Format(occupancy.DateLayout),
		BookedNights:        acc.bookedNights,
		BookingCount:        acc.bookingCount,
		AvailableRooms:      available,
		SoldRooms:           acc.bookedNights,
		RoomRevenue:         occupancy.Round2(acc.revenue),
		OccRate:             occupancy.Round2(occupancy.Percent(booked, availableDec)),
		ADR:                 occupancy.Round2(adr),
		RevPAR:              occupancy.Round2(occupancy.SafeDiv(acc.revenue, availableDec)),
		CleaningFeePerTime:  occupancy.Round2(property.CleaningFeePerTime),
		TotalCleaningFee:    occupancy.Round2(property.CleaningFeePerTime.Mul(decimal.NewFromInt(int64(acc.bookingCount)))),
		OTACommission:       occupancy.Round2(acc.revenue.Mul(property.OTACommissionPercent).Div(hundred)),
		CommissionPercent:   occupancy.Round2(commission.CommissionPercent),
		AgencyFee:           occupancy.Round2(commission.AgencyFee),
		OwnerPayment:        occupancy.Round2(commission.OwnerPayment),
		AvgLeadTime:         occupancy.Round2(occupancy.SafeDiv(decimal.NewFromInt(int64(acc.leadTimeDays)), decimal.NewFromInt(int64(acc.leadTimeCount)))),
		TotalPeople:         acc.totalPeople,
		TotalStayCleanings:  acc.stayCleanings,
		CommissionMethod:    commission.Method,
		CommissionBreakdown: commission.Breakdown,
		Exact: models.ExactAmounts{
			RoomRevenue:  acc.revenue,
			ADR:          adr,
			AgencyFee:    commission.AgencyFee,
			OwnerPayment: commission.OwnerPayment,

			DefaultCommission: commission.UsedDefault,
		},
	}
	if room != nil {
		metrics.RoomName = *room
	}
	return metrics, nil
}

func (s *metricsService) CleaningSchedule(ctx context.Context, propertyName string, period occupancy.Period) (*models.CleaningSchedule, error) {
	property, err := s.LoadProperty(ctx, propertyName)
	if err != nil {
		return nil, err
	}
	bookings, err := s.fetchBookings(ctx, property, period, nil, false)
	if err != nil {
		return nil, err
	}

	schedule := &models.CleaningSchedule{
		PropertyName: property.Name,
		PeriodLabel:  period.Label,
		Bookings:     []models.CleaningEntry{},
	}
	for _, b := range bookings {
		events := occupancy.CountCleaningEvents(b.CheckIn, b.NightCount, period.Start, period.End)
		if events.CheckoutCount == 0 {
			continue
		}
		schedule.CheckoutCleanings += events.CheckoutCount
		schedule.TotalStayCleanings += events.StayCleaningCount

		dates := make([]string, 0, len(events.StayCleaningDates))
		for _, d := range events.StayCleaningDates {
			dates = append(dates, d.Format(occupancy.DateLayout))
		}
		schedule.Bookings = append(schedule.Bookings, models.CleaningEntry{
			CheckIn:           b.CheckIn.Format(occupancy.DateLayout),
			CheckOut:          b.CheckOut.Format(occupancy.DateLayout),
			RoomType:          b.RoomType,
			NightCount:        b.NightCount,
			StayCleaningCount: events.StayCleaningCount,
			StayCleaningDates: dates,
		})
	}
	return schedule, nil
}

// Requested report years must fall in [minReportYear, maxReportYear]. Booking imports
// start well after 2000, so anything outside the range is a malformed query parameter.
const (
	minReportYear = 2000
	maxReportYear = 2100
)

// monthPeriod validates a (year, month) request.
func monthPeriod(year, month int) (occupancy.Period, error) {
	if year < minReportYear || year > maxReportYear {
		return occupancy.Period{}, fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	return occupancy.MonthPeriod(year, time.Month(month))
}
