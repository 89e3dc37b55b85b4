package models

import "github.com/shopspring/decimal"

// PropertyPeriodMetrics is the per-property (or per-room) result for one reporting period.
// Field names are read by other systems; do not rename the json tags.
type PropertyPeriodMetrics struct {
	PropertyName        string              `json:"property_name"`
	RoomName            string              `json:"room_name,omitempty"`
	PeriodLabel         string              `json:"period_label"`
	PeriodStart         string              `json:"period_start"` // YYYY-MM-DD, inclusive
	PeriodEnd           string              `json:"period_end"`   // YYYY-MM-DD, exclusive
	BookedNights        int                 `json:"booked_nights"`
	BookingCount        int                 `json:"booking_count"`
	AvailableRooms      int                 `json:"available_rooms"` // available room-nights
	SoldRooms           int                 `json:"sold_rooms"`
	RoomRevenue         float64             `json:"room_revenue"`
	OccRate             float64             `json:"occ_rate"`
	ADR                 float64             `json:"adr"`
	RevPAR              float64             `json:"revpar"`
	CleaningFeePerTime  float64             `json:"cleaning_fee_per_time"`
	TotalCleaningFee    float64             `json:"total_cleaning_fee"`
	OTACommission       float64             `json:"ota_commission"`
	CommissionPercent   float64             `json:"commission_percent"`
	AgencyFee           float64             `json:"agency_fee"`
	OwnerPayment        float64             `json:"owner_payment"`
	AvgLeadTime         float64             `json:"avg_lead_time"`
	TotalPeople         int                 `json:"total_people"`
	TotalStayCleanings  int                 `json:"total_stay_cleanings"`
	CommissionMethod    CommissionMethod    `json:"commission_method"`
	CommissionBreakdown CommissionBreakdown `json:"commission_breakdown"`

	// Exact holds the unrounded amounts; report totals are summed from it.
	Exact ExactAmounts `json:"-"`
}

// ExactAmounts are the money figures of a PropertyPeriodMetrics before rounding.
type ExactAmounts struct {
	RoomRevenue  decimal.Decimal
	ADR          decimal.Decimal
	AgencyFee    decimal.Decimal
	OwnerPayment decimal.Decimal

	DefaultCommission bool
}

// PortfolioSummary totals a portfolio report.
type PortfolioSummary struct {
	PropertyCount            int     `json:"property_count"`
	TotalRevenue             float64 `json:"total_revenue"`
	TotalBookedNights        int     `json:"total_booked_nights"`
	TotalAvailableRoomNights int     `json:"total_available_room_nights"`
	TotalCommission          float64 `json:"total_commission"`
	TotalOwnerPayment        float64 `json:"total_owner_payment"`
}

// PortfolioMetrics is the monthly report across every active property.
type PortfolioMetrics struct {
	Year                 int                     `json:"year"`
	Month                int                     `json:"month"`
	OverallOccupancyRate float64                 `json:"overall_occupancy_rate"`
	Properties           []PropertyPeriodMetrics `json:"properties"`
	Summary              PortfolioSummary        `json:"summary"`
	SkippedProperties    []string                `json:"skipped_properties,omitempty"`
}

// RoomFilter narrows a portfolio report to one room of one hostel.
type RoomFilter struct {
	PropertyName string `form:"property" json:"property_name"`
	Room         string `form:"room" json:"room"`
}

// YearlyMetrics holds the twelve monthly results of one property year.
type YearlyMetrics struct {
	PropertyName string                  `json:"property_name"`
	Year         int                     `json:"year"`
	MonthlyData  []PropertyPeriodMetrics `json:"monthly_data"`
	Totals       YearTotals              `json:"totals"`
}

// YearTotals reduces twelve monthly results.
// AvgOccRate is total booked nights over total available room-nights, not a mean of monthly rates.
type YearTotals struct {
	Year                int     `json:"year"`
	TotalRevenue        float64 `json:"total_revenue"`
	TotalBookedNights   int     `json:"total_booked_nights"`
	TotalAvailableRooms int     `json:"total_available_rooms"`
	TotalBookings       int     `json:"total_bookings"`
	TotalCommission     float64 `json:"total_commission"`
	AvgOccRate          float64 `json:"avg_occ_rate"`
	AvgADR              float64 `json:"avg_adr"`
}

// YearDifferences are year2 minus year1; percentages are relative to year1 (0 when year1 is 0).
type YearDifferences struct {
	RevenueChange             float64 `json:"revenue_change"`
	RevenueChangePercent      float64 `json:"revenue_change_percent"`
	BookedNightsChange        int     `json:"booked_nights_change"`
	BookedNightsChangePercent float64 `json:"booked_nights_change_percent"`
	OccRateChange             float64 `json:"occ_rate_change"`
	OccRateChangePercent      float64 `json:"occ_rate_change_percent"`
	ADRChange                 float64 `json:"adr_change"`
	ADRChangePercent          float64 `json:"adr_change_percent"`
}

// YearComparison compares two years of one property.
type YearComparison struct {
	PropertyName string                  `json:"property_name"`
	Year1Totals  YearTotals              `json:"year1_totals"`
	Year2Totals  YearTotals              `json:"year2_totals"`
	Differences  YearDifferences         `json:"differences"`
	Year1Monthly []PropertyPeriodMetrics `json:"year1_monthly,omitempty"`
	Year2Monthly []PropertyPeriodMetrics `json:"year2_monthly,omitempty"`
}

// LimitStatus tiers a property's remaining nights under the annual cap.
type LimitStatus string

const (
	LimitStatusSafe     LimitStatus = "safe"
	LimitStatusWarning  LimitStatus = "warning"
	LimitStatusCritical LimitStatus = "critical"
)

// LimitPropertyStatus is one row of the 180-day report.
type LimitPropertyStatus struct {
	PropertyName       string      `json:"property_name"`
	BookedDays         int         `json:"booked_days"`
	RemainingDays      int         `json:"remaining_days"`
	UtilizationPercent float64     `json:"utilization_percent"`
	Status             LimitStatus `json:"status"`
}

// LimitReport covers every property subject to the annual night cap.
type LimitReport struct {
	FiscalYearStart string                `json:"fiscal_year_start"`
	FiscalYearEnd   string                `json:"fiscal_year_end"` // inclusive, YYYY-MM-DD
	LimitNights     int                   `json:"limit_nights"`
	Properties      []LimitPropertyStatus `json:"properties"`
}

// AllPropertiesName is the pseudo-property aggregating every active property in snapshots.
const AllPropertiesName = "__all__"

// DailySnapshot is the year-to-date occupancy of one property as of a date.
type DailySnapshot struct {
	SnapshotDate        string  `json:"snapshot_date" db:"snapshot_date"`
	PropertyName        string  `json:"property_name" db:"property_name"`
	BookedNights        int     `json:"booked_nights" db:"booked_nights"`
	AvailableRoomNights int     `json:"available_room_nights" db:"available_room_nights"`
	OccRate             float64 `json:"occ_rate" db:"occ_rate"`
	RoomRevenue         float64 `json:"room_revenue" db:"room_revenue"`
	ADR                 float64 `json:"adr" db:"adr"`
	RevPAR              float64 `json:"revpar" db:"revpar"`
}

// CleaningSchedule lists the cleanings owed for bookings arriving in a period.
type CleaningSchedule struct {
	PropertyName       string          `json:"property_name"`
	PeriodLabel        string          `json:"period_label"`
	CheckoutCleanings  int             `json:"checkout_cleanings"`
	TotalStayCleanings int             `json:"total_stay_cleanings"`
	Bookings           []CleaningEntry `json:"bookings"`
}

// CleaningEntry is the audit view of one booking's cleanings.
type CleaningEntry struct {
	CheckIn           string   `json:"check_in"`
	CheckOut          string   `json:"check_out"`
	RoomType          string   `json:"room_type,omitempty"`
	NightCount        int      `json:"night_count"`
	StayCleaningCount int      `json:"stay_cleaning_count"`
	StayCleaningDates []string `json:"stay_cleaning_dates"`
}

// ReportRequestParams holds common query parameters for metrics requests.
type ReportRequestParams struct {
	Year  int    `form:"year"`
	Month int    `form:"month"`
	Room  string `form:"room"`
}
