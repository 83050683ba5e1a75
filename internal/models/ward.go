package models

import "time"

// Ward represents a hospital ward grouping rooms on a floor
type Ward struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Floor     int       `json:"floor"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`

	// Relationships
	Rooms []Room `gorm:"foreignKey:WardID" json:"rooms,omitempty"`
}

// TableName specifies the table name for Ward model
func (Ward) TableName() string {
	return "wards"
}
