package models

import "time"

// BedRate is one row of the room-type rate table. A day is priced by the
// row whose [EffectiveFrom, EffectiveTo] interval contains it; when rows
// overlap the most recently created one wins.
type BedRate struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RoomType      string    `gorm:"size:50;not null;index" json:"room_type"`
	DailyRate     float64   `gorm:"not null" json:"daily_rate"`
	EffectiveFrom time.Time `gorm:"not null" json:"effective_from"`
	EffectiveTo   time.Time `gorm:"not null" json:"effective_to"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for BedRate model
func (BedRate) TableName() string {
	return "bed_rates"
}
