package repository

import (
	"errors"
	"time"

	"hospital-bed-management/internal/models"

	"gorm.io/gorm"
)

type RateRepository struct {
	db *gorm.DB
}

func NewRateRepo(db *gorm.DB) *RateRepository {
	return &RateRepository{db: db}
}

// GetAllRates retrieves the full rate table
func (r *RateRepository) GetAllRates() ([]models.BedRate, error) {
	var rates []models.BedRate
	err := r.db.Order("room_type ASC, effective_from ASC").Find(&rates).Error
	return rates, err
}

// CreateRate inserts a new rate row
func (r *RateRepository) CreateRate(rate *models.BedRate) error {
	return r.db.Create(rate).Error
}

// RateForDay looks up the rate row covering the given day for a room type.
// When overlapping rows exist the most recently created wins. Returns nil
// when no row covers the day.
func (r *RateRepository) RateForDay(roomType string, day time.Time) (*models.BedRate, error) {
	var rate models.BedRate
	err := r.db.Where("room_type = ? AND effective_from <= ? AND effective_to >= ?", roomType, day, day).
		Order("created_at DESC, id DESC").
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rate, nil
}
