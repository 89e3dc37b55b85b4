package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"occupancy_backend/internal/models"

	"github.com/shopspring/decimal"
)

// CommissionRepository reads per-property commission settings.
type CommissionRepository interface {
	// GetCommissionConfig returns ErrNotFound when the property has no configuration row.
	GetCommissionConfig(ctx context.Context, propertyName string) (models.CommissionConfig, error)
	// GetMonthlyOverride returns ErrNotFound when no settlement row exists for the month.
	GetMonthlyOverride(ctx context.Context, propertyName string, year, month int) (*models.MonthlyOverrideRow, error)
}

type commissionRepository struct {
	db *sql.DB
}

// NewCommissionRepository creates a new instance of CommissionRepository.
func NewCommissionRepository(db *sql.DB) CommissionRepository {
	return &commissionRepository{db: db}
}

func (r *commissionRepository) GetCommissionConfig(ctx context.Context, propertyName string) (models.CommissionConfig, error) {
	query := `
		SELECT commission_method, commission_percent,
		       checkout_cleaning_fee, stay_cleaning_fee, linen_fee_per_person
		FROM commission_settings
		WHERE property_name = $1`

	var method sql.NullString
	var percent, checkoutFee, stayFee, linenFee decimal.NullDecimal
	err := r.db.QueryRowContext(ctx, query, strings.TrimSpace(propertyName)).Scan(
		&method, &percent, &checkoutFee, &stayFee, &linenFee,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting commission config for %s: %v", ErrDatabaseError, propertyName, err)
	}

	if models.CommissionMethod(strings.TrimSpace(method.String)) == models.CommissionMethodFixed {
		return models.FixedFeeCommission{
			CheckoutCleaningFee: checkoutFee.Decimal,
			StayCleaningFee:     stayFee.Decimal,
			LinenFeePerPerson:   linenFee.Decimal,
		}, nil
	}

	// Unknown or empty methods fall back to the percentage strategy.
	cfg := models.PercentageCommission{CommissionPercent: models.DefaultCommissionPercent}
	if percent.Valid {
		cfg.CommissionPercent = percent.Decimal
	}
	return cfg, nil
}

func (r *commissionRepository) GetMonthlyOverride(ctx context.Context, propertyName string, year, month int) (*models.MonthlyOverrideRow, error) {
	query := `
		SELECT property_name, year, month, total_sales, owner_payment,
		       exseed_commission, commission_percentage
		FROM monthly_commission_overrides
		WHERE property_name = $1 AND year = $2 AND month = $3`

	row := &models.MonthlyOverrideRow{}
	var totalSales, ownerPayment, commission, percentage decimal.NullDecimal
	err := r.db.QueryRowContext(ctx, query, strings.TrimSpace(propertyName), year, month).Scan(
		&row.PropertyName, &row.Year, &row.Month, &totalSales, &ownerPayment,
		&commission, &percentage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting monthly override for %s %d-%02d: %v", ErrDatabaseError, propertyName, year, month, err)
	}

	row.TotalSales = totalSales.Decimal
	row.OwnerPayment = ownerPayment.Decimal
	row.ExseedCommission = commission.Decimal
	row.CommissionPercentage = percentage.Decimal
	return row, nil
}
