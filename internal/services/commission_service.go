package services

import (
	"context"
	"errors"
	"fmt"

	"occupancy_backend/internal/models"
	"occupancy_backend/internal/occupancy"
	"occupancy_backend/internal/repositories"
	"occupancy_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CommissionService picks the commission strategy of a property period and evaluates it.
type CommissionService interface {
	// ResolveCommission applies, in order: the monthly override for an exact calendar month,
	// the fixed-fee config, the percentage config, and finally the default percentage.
	ResolveCommission(ctx context.Context, property *models.Property, period occupancy.Period, agg models.CommissionAggregates) (*models.CommissionResult, error)
}

type commissionService struct {
	commissionRepo repositories.CommissionRepository
	defaultPercent decimal.Decimal
}

// NewCommissionService creates a new instance of CommissionService.
// A non-positive defaultPercent falls back to models.DefaultCommissionPercent.
func NewCommissionService(commissionRepo repositories.CommissionRepository, defaultPercent decimal.Decimal) CommissionService {
	if !defaultPercent.IsPositive() {
		defaultPercent = models.DefaultCommissionPercent
	}
	return &commissionService{commissionRepo: commissionRepo, defaultPercent: defaultPercent}
}

func (s *commissionService) ResolveCommission(ctx context.Context, property *models.Property, period occupancy.Period, agg models.CommissionAggregates) (*models.CommissionResult, error) {
	if year, month, ok := period.CalendarMonth(); ok {
		row, err := s.commissionRepo.GetMonthlyOverride(ctx, property.Name, year, int(month))
		switch {
		case err == nil:
			return monthlyOverrideResult(row), nil
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, fmt.Errorf("failed to load monthly override for %s: %w", property.Name, err)
		}
	}

	cfg, err := s.commissionRepo.GetCommissionConfig(ctx, property.Name)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to load commission config for %s: %w", property.Name, err)
		}
		utils.LogDebug("No commission config, using default percentage", map[string]interface{}{
			"property":        property.Name,
			"default_percent": s.defaultPercent.String(),
		})
		return percentageResult(agg.Revenue, s.defaultPercent, true), nil
	}

	switch c := cfg.(type) {
	case models.FixedFeeCommission:
		return fixedFeeResult(c, agg), nil
	case models.PercentageCommission:
		return percentageResult(agg.Revenue, c.CommissionPercent, false), nil
	default:
		utils.LogWarn("Unknown commission method, using default percentage", map[string]interface{}{
			"property": property.Name,
			"method":   string(cfg.Method()),
		})
		return percentageResult(agg.Revenue, s.defaultPercent, true), nil
	}
}

func monthlyOverrideResult(row *models.MonthlyOverrideRow) *models.CommissionResult {
	return &models.CommissionResult{
		Method:            models.CommissionMethodKaguyaMonthly,
		Commission:        row.ExseedCommission,
		AgencyFee:         row.ExseedCommission,
		OwnerPayment:      row.OwnerPayment,
		CommissionPercent: row.CommissionPercentage,
		Breakdown: models.MonthlyOverrideBreakdown{
			Method:               models.CommissionMethodKaguyaMonthly,
			Year:                 row.Year,
			Month:                row.Month,
			TotalSales:           occupancy.Round2(row.TotalSales),
			OwnerPayment:         occupancy.Round2(row.OwnerPayment),
			ExseedCommission:     occupancy.Round2(row.ExseedCommission),
			CommissionPercentage: occupancy.Round2(row.CommissionPercentage),
		},
	}
}

func fixedFeeResult(cfg models.FixedFeeCommission, agg models.CommissionAggregates) *models.CommissionResult {
	checkoutTotal := cfg.CheckoutCleaningFee.Mul(decimal.NewFromInt(int64(agg.BookingCount)))
	stayTotal := cfg.StayCleaningFee.Mul(decimal.NewFromInt(int64(agg.TotalStayCleanings)))
	linenTotal := cfg.LinenFeePerPerson.Mul(decimal.NewFromInt(int64(agg.TotalPeople)))
	commission := checkoutTotal.Add(stayTotal).Add(linenTotal)
	owner := agg.Revenue.Sub(commission)

	return &models.CommissionResult{
		Method:            models.CommissionMethodFixed,
		Commission:        commission,
		AgencyFee:         commission,
		OwnerPayment:      owner,
		CommissionPercent: occupancy.Percent(commission, agg.Revenue),
		Breakdown: models.FixedFeeBreakdown{
			Method:                models.CommissionMethodFixed,
			CheckoutCleaningFee:   occupancy.Round2(cfg.CheckoutCleaningFee),
			CheckoutCleaningCount: agg.BookingCount,
			CheckoutCleaningTotal: occupancy.Round2(checkoutTotal),
			StayCleaningFee:       occupancy.Round2(cfg.StayCleaningFee),
			StayCleaningCount:     agg.TotalStayCleanings,
			StayCleaningTotal:     occupancy.Round2(stayTotal),
			LinenFeePerPerson:     occupancy.Round2(cfg.LinenFeePerPerson),
			TotalPeople:           agg.TotalPeople,
			LinenTotal:            occupancy.Round2(linenTotal),
			Commission:            occupancy.Round2(commission),
			OwnerPayment:          occupancy.Round2(owner),
		},
	}
}

func percentageResult(revenue, percent decimal.Decimal, usedDefault bool) *models.CommissionResult {
	commission := revenue.Mul(percent).Div(hundred)
	owner := revenue.Sub(commission)

	return &models.CommissionResult{
		Method:            models.CommissionMethodPercentage,
		Commission:        commission,
		AgencyFee:         commission,
		OwnerPayment:      owner,
		CommissionPercent: percent,
		Breakdown: models.PercentageBreakdown{
			Method:            models.CommissionMethodPercentage,
			RoomRevenue:       occupancy.Round2(revenue),
			CommissionPercent: occupancy.Round2(percent),
			Commission:        occupancy.Round2(commission),
			OwnerPayment:      occupancy.Round2(owner),
			UsedDefault:       usedDefault,
		},
		UsedDefault: usedDefault,
	}
}
