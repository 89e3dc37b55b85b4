package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"occupancy_backend/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// PropertyCatalog provides read access to the managed properties.
type PropertyCatalog interface {
	GetProperty(ctx context.Context, name string) (*models.Property, error)
	ListActiveProperties(ctx context.Context) ([]models.Property, error)
}

type propertyRepository struct {
	db *sql.DB
}

// NewPropertyRepository creates a new instance of PropertyCatalog backed by PostgreSQL.
func NewPropertyRepository(db *sql.DB) PropertyCatalog {
	return &propertyRepository{db: db}
}

const selectPropertyFields = `
	p.id, p.name, p.kind, p.room_list, p.total_rooms, p.source_id,
	p.cleaning_fee, p.ota_commission_percent, p.subject_180_day_cap, p.is_active
`

func scanPropertyRow(row scanner) (*models.Property, error) {
	var property models.Property
	var kind string
	var roomList pq.StringArray
	var totalRooms, sourceID sql.NullInt64
	var cleaningFee, otaPercent decimal.NullDecimal

	err := row.Scan(
		&property.ID, &property.Name, &kind, &roomList, &totalRooms, &sourceID,
		&cleaningFee, &otaPercent, &property.Subject180DayCap, &property.IsActive,
	)
	if err != nil {
		return nil, err
	}

	property.Name = strings.TrimSpace(property.Name)
	property.Kind = models.PropertyKind(strings.ToLower(strings.TrimSpace(kind)))
	if !models.IsValidPropertyKind(string(property.Kind)) {
		property.Kind = models.PropertyKindHostel
	}
	property.RoomList = []string(roomList)
	if totalRooms.Valid {
		n := int(totalRooms.Int64)
		property.TotalRoomsOverride = &n
	}
	if sourceID.Valid {
		handle := models.DataSourceHandle(sourceID.Int64)
		property.Source = &handle
	}
	if cleaningFee.Valid {
		property.CleaningFeePerTime = cleaningFee.Decimal
	}
	if otaPercent.Valid {
		property.OTACommissionPercent = otaPercent.Decimal
	}
	return &property, nil
}

func (r *propertyRepository) GetProperty(ctx context.Context, name string) (*models.Property, error) {
	query := "SELECT " + selectPropertyFields + " FROM properties p WHERE p.name = $1"
	property, err := scanPropertyRow(r.db.QueryRowContext(ctx, query, strings.TrimSpace(name)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting property %s: %v", ErrDatabaseError, name, err)
	}
	return property, nil
}

func (r *propertyRepository) ListActiveProperties(ctx context.Context) ([]models.Property, error) {
	query := "SELECT " + selectPropertyFields + " FROM properties p WHERE p.is_active = TRUE ORDER BY p.name ASC"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: listing active properties: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	properties := []models.Property{}
	for rows.Next() {
		property, scanErr := scanPropertyRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: scanning property: %v", ErrDatabaseError, scanErr)
		}
		properties = append(properties, *property)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating property rows: %v", ErrDatabaseError, err)
	}
	return properties, nil
}
