package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PropertyKind defines the type for property kinds
type PropertyKind string

const (
	PropertyKindHostel     PropertyKind = "hostel"
	PropertyKindGuesthouse PropertyKind = "guesthouse"
)

// StaffRoomSuffix marks non-bookable staff rooms in a hostel room list.
const StaffRoomSuffix = "sf"

// IsValidPropertyKind checks if the provided kind string is a valid PropertyKind.
func IsValidPropertyKind(kind string) bool {
	switch PropertyKind(kind) {
	case PropertyKindHostel, PropertyKindGuesthouse:
		return true
	default:
		return false
	}
}

// Property represents one managed property of the portfolio.
type Property struct {
	ID                   int64             `json:"id" db:"id"`
	Name                 string            `json:"name" db:"name"`
	Kind                 PropertyKind      `json:"kind" db:"kind"`
	RoomList             []string          `json:"room_list,omitempty" db:"room_list"`
	TotalRoomsOverride   *int              `json:"total_rooms_override,omitempty" db:"total_rooms"`
	Source               *DataSourceHandle `json:"-" db:"source_id"` // nil when no dataset has been imported yet
	CleaningFeePerTime   decimal.Decimal   `json:"cleaning_fee_per_time" db:"cleaning_fee"`
	OTACommissionPercent decimal.Decimal   `json:"ota_commission_percent" db:"ota_commission_percent"`
	Subject180DayCap     bool              `json:"subject_180_day_cap" db:"subject_180_day_cap"`
	IsActive             bool              `json:"is_active" db:"is_active"`
}

// IsStaffRoom reports whether a room name denotes a staff room.
func IsStaffRoom(room string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(room)), StaffRoomSuffix)
}

// IsHostel reports whether the property has individually bookable rooms.
func (p *Property) IsHostel() bool {
	return p.Kind == PropertyKindHostel
}

// RealRooms returns the bookable rooms in catalog order, staff rooms excluded.
func (p *Property) RealRooms() []string {
	if !p.IsHostel() {
		return nil
	}
	rooms := make([]string, 0, len(p.RoomList))
	for _, room := range p.RoomList {
		name := strings.TrimSpace(room)
		if name == "" || IsStaffRoom(name) {
			continue
		}
		rooms = append(rooms, name)
	}
	return rooms
}

// TotalRooms is the room count used as the occupancy denominator.
func (p *Property) TotalRooms() int {
	if p.Kind == PropertyKindGuesthouse {
		return 1
	}
	if rooms := p.RealRooms(); len(rooms) > 0 {
		return len(rooms)
	}
	if p.TotalRoomsOverride != nil && *p.TotalRoomsOverride > 0 {
		return *p.TotalRoomsOverride
	}
	return 1
}
