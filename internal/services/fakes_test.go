package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"occupancy_backend/internal/models"
	"occupancy_backend/internal/occupancy"
	"occupancy_backend/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := occupancy.ParseDate(value)
	require.NoError(t, err)
	return d
}

func dayPtr(t *testing.T, value string) *time.Time {
	d := day(t, value)
	return &d
}

func month(t *testing.T, year int, m time.Month) occupancy.Period {
	t.Helper()
	p, err := occupancy.MonthPeriod(year, m)
	require.NoError(t, err)
	return p
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func source(id int64) *models.DataSourceHandle {
	h := models.DataSourceHandle(id)
	return &h
}

// stay builds a paid booking; the night count is derived from the dates.
func stay(t *testing.T, checkIn, checkOut string, fee int64) models.Booking {
	in, out := day(t, checkIn), day(t, checkOut)
	return models.Booking{
		CheckIn:          in,
		CheckOut:         out,
		NightCount:       occupancy.DaysBetween(in, out),
		AccommodationFee: dec(fee),
		PeopleCount:      1,
	}
}

type fakeCatalog struct {
	properties map[string]models.Property
}

func newFakeCatalog(properties ...models.Property) *fakeCatalog {
	c := &fakeCatalog{properties: map[string]models.Property{}}
	for _, p := range properties {
		c.properties[p.Name] = p
	}
	return c
}

func (c *fakeCatalog) GetProperty(_ context.Context, name string) (*models.Property, error) {
	p, ok := c.properties[name]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (c *fakeCatalog) ListActiveProperties(_ context.Context) ([]models.Property, error) {
	list := []models.Property{}
	for _, p := range c.properties {
		if p.IsActive {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

type fakeBookings struct {
	mu       sync.Mutex
	datasets map[models.DataSourceHandle][]models.Booking
	queries  []models.BookingQuery
	err      error
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{datasets: map[models.DataSourceHandle][]models.Booking{}}
}

func (f *fakeBookings) add(id int64, bookings ...models.Booking) {
	h := models.DataSourceHandle(id)
	f.datasets[h] = append(f.datasets[h], bookings...)
}

func (f *fakeBookings) FetchOverlappingBookings(_ context.Context, q models.BookingQuery) ([]models.Booking, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	rows, ok := f.datasets[q.Source]
	if !ok {
		return nil, fmt.Errorf("%w: source %d", repositories.ErrDatasetNotFound, q.Source)
	}
	out := []models.Booking{}
	for _, b := range rows {
		if !q.IncludeUnpaid && !b.AccommodationFee.IsPositive() {
			continue
		}
		if !b.CheckIn.Before(q.PeriodEnd) || !b.CheckOut.After(q.PeriodStart) {
			continue
		}
		if q.Room != nil && strings.TrimSpace(b.RoomType) != *q.Room {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

type fakeCommissions struct {
	configs   map[string]models.CommissionConfig
	overrides map[string]*models.MonthlyOverrideRow
}

func newFakeCommissions() *fakeCommissions {
	return &fakeCommissions{
		configs:   map[string]models.CommissionConfig{},
		overrides: map[string]*models.MonthlyOverrideRow{},
	}
}

func overrideKey(name string, year, month int) string {
	return fmt.Sprintf("%s/%d/%d", name, year, month)
}

func (f *fakeCommissions) addOverride(row models.MonthlyOverrideRow) {
	f.overrides[overrideKey(row.PropertyName, row.Year, row.Month)] = &row
}

func (f *fakeCommissions) GetCommissionConfig(_ context.Context, name string) (models.CommissionConfig, error) {
	cfg, ok := f.configs[name]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cfg, nil
}

func (f *fakeCommissions) GetMonthlyOverride(_ context.Context, name string, year, month int) (*models.MonthlyOverrideRow, error) {
	row, ok := f.overrides[overrideKey(name, year, month)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return row, nil
}

type fixture struct {
	catalog     *fakeCatalog
	bookings    *fakeBookings
	commissions *fakeCommissions
	metrics     MetricsService
}

func newFixture(properties ...models.Property) *fixture {
	f := &fixture{
		catalog:     newFakeCatalog(properties...),
		bookings:    newFakeBookings(),
		commissions: newFakeCommissions(),
	}
	f.metrics = NewMetricsService(f.catalog, f.bookings, NewCommissionService(f.commissions, models.DefaultCommissionPercent))
	return f
}

func (f *fixture) reports(opts ...ReportServiceOption) ReportService {
	return NewReportService(f.catalog, f.bookings, f.metrics, opts...)
}
