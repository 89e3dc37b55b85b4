package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DataSourceHandle identifies the booking dataset that belongs to a property.
// The catalog hands it out; only the booking repository knows what it maps to.
type DataSourceHandle int64

// Booking represents one imported reservation row.
type Booking struct {
	ID               int64           `json:"id" db:"id"`
	CheckIn          time.Time       `json:"check_in" db:"check_in"`
	CheckOut         time.Time       `json:"check_out" db:"check_out"`
	NightCount       int             `json:"night_count" db:"night_count"`
	AccommodationFee decimal.Decimal `json:"accommodation_fee" db:"accommodation_fee"`
	BookingDate      *time.Time      `json:"booking_date,omitempty" db:"booking_date"` // nil when missing or unparseable
	RoomType         string          `json:"room_type,omitempty" db:"room_type"`
	PeopleCount      int             `json:"people_count" db:"people_count"`
}

// BookingQuery describes the overlap window requested from the booking repository.
type BookingQuery struct {
	Source      DataSourceHandle
	PeriodStart time.Time // inclusive
	PeriodEnd   time.Time // exclusive
	Room        *string
	// IncludeUnpaid also returns rows whose accommodation_fee is zero.
	IncludeUnpaid bool
}
