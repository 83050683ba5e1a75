package models

import "time"

// Bed states. Every bed is always in exactly one of these; claiming
// transitions go through a compare-and-swap on the stored state.
const (
	BedStateVacant      = "vacant"
	BedStateReserved    = "reserved"
	BedStatePreoccupied = "preoccupied"
	BedStateOccupied    = "occupied"
)

// Bed represents a single physical bed within a room
type Bed struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	RoomID        uint       `gorm:"not null;index" json:"room_id"`
	Code          string     `gorm:"size:50;not null" json:"code"`
	State         string     `gorm:"size:20;not null;default:'vacant';index" json:"state"`
	ReservedUntil *time.Time `json:"reserved_until"`
	Note          string     `gorm:"size:255" json:"note,omitempty"`
	CreatedAt     time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`

	// Relationships
	Room Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

// TableName specifies the table name for Bed model
func (Bed) TableName() string {
	return "beds"
}

// ValidBedState reports whether s is one of the four bed states.
func ValidBedState(s string) bool {
	switch s {
	case BedStateVacant, BedStateReserved, BedStatePreoccupied, BedStateOccupied:
		return true
	}
	return false
}

// Claimable reports whether the bed can be claimed at instant now: vacant,
// or reserved with an elapsed TTL. A reservation past its reserved_until is
// treated as vacant by any subsequent writer.
func (b *Bed) Claimable(now time.Time) bool {
	if b.State == BedStateVacant {
		return true
	}
	if b.State == BedStateReserved && b.ReservedUntil != nil && !b.ReservedUntil.After(now) {
		return true
	}
	return false
}
