package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"occupancy_backend/internal/models"
	"occupancy_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// BookingRepository supplies imported booking rows for one dataset.
type BookingRepository interface {
	// FetchOverlappingBookings returns bookings with check_in < PeriodEnd and check_out > PeriodStart.
	// It returns ErrDatasetNotFound when the dataset handle is unknown.
	FetchOverlappingBookings(ctx context.Context, q models.BookingQuery) ([]models.Booking, error)
}

type bookingRepository struct {
	db *sql.DB
}

// NewBookingRepository creates a new instance of BookingRepository.
func NewBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db}
}

// bookingDateLayouts are the shapes seen in the spreadsheet exports.
var bookingDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006-1-2",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	time.RFC3339,
}

// ParseBookingDate parses a free-form reservation date. It returns nil for blank or unparseable input.
func ParseBookingDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range bookingDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			y, m, d := parsed.Date()
			day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
			return &day
		}
	}
	return nil
}

const selectBookingFields = `
	b.id, b.check_in, b.check_out, b.night_count, b.accommodation_fee,
	b.booking_date, b.room_type, b.people_count
`

func scanBookingRow(row scanner) (*models.Booking, error) {
	var booking models.Booking
	var nightCount, peopleCount sql.NullInt64
	var fee decimal.NullDecimal
	var bookingDate, roomType sql.NullString

	err := row.Scan(
		&booking.ID, &booking.CheckIn, &booking.CheckOut, &nightCount, &fee,
		&bookingDate, &roomType, &peopleCount,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: scanning booking: %v", ErrDatabaseError, err)
	}

	booking.CheckIn = booking.CheckIn.UTC()
	booking.CheckOut = booking.CheckOut.UTC()
	if nightCount.Valid {
		booking.NightCount = int(nightCount.Int64)
	}
	if fee.Valid {
		booking.AccommodationFee = fee.Decimal
	}
	if roomType.Valid {
		booking.RoomType = strings.TrimSpace(roomType.String)
	}
	if peopleCount.Valid && peopleCount.Int64 > 0 {
		booking.PeopleCount = int(peopleCount.Int64)
	}
	if bookingDate.Valid {
		booking.BookingDate = ParseBookingDate(bookingDate.String)
		if booking.BookingDate == nil && strings.TrimSpace(bookingDate.String) != "" {
			utils.LogDebug("Unparseable booking date ignored", map[string]interface{}{"booking_id": booking.ID, "value": bookingDate.String})
		}
	}
	return &booking, nil
}

// buildOverlapQuery selects the bookings of q.Source that overlap [PeriodStart, PeriodEnd).
// $2 is the period end and $3 the period start.
func buildOverlapQuery(q models.BookingQuery) (string, []interface{}) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + selectBookingFields + " FROM bookings b")

	conditions := []string{"b.source_id = $1", "b.check_in < $2", "b.check_out > $3"}
	args := []interface{}{int64(q.Source), q.PeriodEnd, q.PeriodStart}
	argCount := 4

	if !q.IncludeUnpaid {
		conditions = append(conditions, "b.accommodation_fee > 0")
	}
	if q.Room != nil {
		conditions = append(conditions, fmt.Sprintf("TRIM(b.room_type) = $%d", argCount))
		args = append(args, strings.TrimSpace(*q.Room))
		argCount++
	}

	queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	queryBuilder.WriteString(" ORDER BY b.check_in ASC, b.id ASC")
	return queryBuilder.String(), args
}

func (r *bookingRepository) datasetExists(ctx context.Context, source models.DataSourceHandle) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM booking_sources WHERE id = $1)`, int64(source)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: checking booking source %d: %v", ErrDatabaseError, source, err)
	}
	return exists, nil
}

func (r *bookingRepository) FetchOverlappingBookings(ctx context.Context, q models.BookingQuery) ([]models.Booking, error) {
	exists, err := r.datasetExists(ctx, q.Source)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: source %d", ErrDatasetNotFound, q.Source)
	}

	query, args := buildOverlapQuery(q)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying bookings for source %d: %v", ErrDatabaseError, q.Source, err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		booking, scanErr := scanBookingRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		bookings = append(bookings, *booking)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating booking rows: %v", ErrDatabaseError, err)
	}
	return bookings, nil
}
