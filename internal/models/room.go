package models

import "time"

// Room types used for bed-rate lookup
const (
	RoomTypeGeneral   = "general"
	RoomTypePrivate   = "private"
	RoomTypeICU       = "icu"
	RoomTypeIsolation = "isolation"
)

// Room represents a room within a ward
type Room struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	WardID    uint      `gorm:"not null;index" json:"ward_id"`
	Number    string    `gorm:"size:50;not null" json:"number"`
	RoomType  string    `gorm:"size:50;default:'general'" json:"room_type"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`

	// Relationships
	Ward Ward `gorm:"foreignKey:WardID" json:"ward,omitempty"`
}

// TableName specifies the table name for Room model
func (Room) TableName() string {
	return "rooms"
}

// ValidRoomType reports whether t is one of the known room types.
func ValidRoomType(t string) bool {
	switch t {
	case RoomTypeGeneral, RoomTypePrivate, RoomTypeICU, RoomTypeIsolation:
		return true
	}
	return false
}
