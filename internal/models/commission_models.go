package models

import (
	"github.com/shopspring/decimal"
)

// CommissionMethod identifies the strategy that produced a commission figure.
type CommissionMethod string

const (
	CommissionMethodPercentage    CommissionMethod = "percentage"
	CommissionMethodFixed         CommissionMethod = "fixed"
	CommissionMethodKaguyaMonthly CommissionMethod = "kaguya_monthly"
)

// DefaultCommissionPercent applies whenever a property has no usable commission configuration.
var DefaultCommissionPercent = decimal.NewFromInt(15)

// CommissionConfig is implemented by PercentageCommission and FixedFeeCommission.
type CommissionConfig interface {
	Method() CommissionMethod
}

// PercentageCommission takes a share of the room revenue.
type PercentageCommission struct {
	CommissionPercent decimal.Decimal `json:"commission_percent" db:"commission_percent"`
}

func (PercentageCommission) Method() CommissionMethod { return CommissionMethodPercentage }

// FixedFeeCommission charges per cleaning event and per guest.
type FixedFeeCommission struct {
	CheckoutCleaningFee decimal.Decimal `json:"checkout_cleaning_fee" db:"checkout_cleaning_fee"`
	StayCleaningFee     decimal.Decimal `json:"stay_cleaning_fee" db:"stay_cleaning_fee"`
	LinenFeePerPerson   decimal.Decimal `json:"linen_fee_per_person" db:"linen_fee_per_person"`
}

func (FixedFeeCommission) Method() CommissionMethod { return CommissionMethodFixed }

// MonthlyOverrideRow pre-supplies the settlement figures for one property month.
type MonthlyOverrideRow struct {
	PropertyName         string          `json:"property_name" db:"property_name"`
	Year                 int             `json:"year" db:"year"`
	Month                int             `json:"month" db:"month"`
	TotalSales           decimal.Decimal `json:"total_sales" db:"total_sales"`
	OwnerPayment         decimal.Decimal `json:"owner_payment" db:"owner_payment"`
	ExseedCommission     decimal.Decimal `json:"exseed_commission" db:"exseed_commission"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage" db:"commission_percentage"`
}

// CommissionAggregates are the per-period totals a strategy may read.
type CommissionAggregates struct {
	Revenue            decimal.Decimal
	BookingCount       int
	TotalPeople        int
	TotalStayCleanings int
}

// CommissionResult is the resolved commission for one property period.
// AgencyFee always equals Commission.
type CommissionResult struct {
	Method            CommissionMethod
	Commission        decimal.Decimal
	AgencyFee         decimal.Decimal
	OwnerPayment      decimal.Decimal
	CommissionPercent decimal.Decimal
	Breakdown         CommissionBreakdown
	UsedDefault       bool // no usable config; the default percentage was applied
}

// CommissionBreakdown is the strategy-specific detail attached to a metrics response.
// Implemented by PercentageBreakdown, FixedFeeBreakdown and MonthlyOverrideBreakdown.
type CommissionBreakdown interface {
	BreakdownMethod() CommissionMethod
}

type PercentageBreakdown struct {
	Method            CommissionMethod `json:"method"`
	RoomRevenue       float64          `json:"room_revenue"`
	CommissionPercent float64          `json:"commission_percent"`
	Commission        float64          `json:"commission"`
	OwnerPayment      float64          `json:"owner_payment"`
	UsedDefault       bool             `json:"used_default"`
}

func (b PercentageBreakdown) BreakdownMethod() CommissionMethod { return b.Method }

type FixedFeeBreakdown struct {
	Method                CommissionMethod `json:"method"`
	CheckoutCleaningFee   float64          `json:"checkout_cleaning_fee"`
	CheckoutCleaningCount int              `json:"checkout_cleaning_count"`
	CheckoutCleaningTotal float64          `json:"checkout_cleaning_total"`
	StayCleaningFee       float64          `json:"stay_cleaning_fee"`
	StayCleaningCount     int              `json:"stay_cleaning_count"`
	StayCleaningTotal     float64          `json:"stay_cleaning_total"`
	LinenFeePerPerson     float64          `json:"linen_fee_per_person"`
	TotalPeople           int              `json:"total_people"`
	LinenTotal            float64          `json:"linen_total"`
	Commission            float64          `json:"commission"`
	OwnerPayment          float64          `json:"owner_payment"`
}

func (b FixedFeeBreakdown) BreakdownMethod() CommissionMethod { return b.Method }

type MonthlyOverrideBreakdown struct {
	Method               CommissionMethod `json:"method"`
	Year                 int              `json:"year"`
	Month                int              `json:"month"`
	TotalSales           float64          `json:"total_sales"`
	OwnerPayment         float64          `json:"owner_payment"`
	ExseedCommission     float64          `json:"exseed_commission"`
	CommissionPercentage float64          `json:"commission_percentage"`
}

func (b MonthlyOverrideBreakdown) BreakdownMethod() CommissionMethod { return b.Method }
