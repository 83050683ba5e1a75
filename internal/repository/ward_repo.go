package repository

import (
	"errors"

	"hospital-bed-management/internal/models"
	"hospital-bed-management/pkg/apperr"

	"gorm.io/gorm"
)

type WardRepository struct {
	db *gorm.DB
}

func NewWardRepo(db *gorm.DB) *WardRepository {
	return &WardRepository{db: db}
}

// GetAllWards retrieves all active wards
func (r *WardRepository) GetAllWards() ([]models.Ward, error) {
	var wards []models.Ward
	err := r.db.Where("is_active = ?", true).Order("code ASC").Find(&wards).Error
	return wards, err
}

// GetWardByID retrieves a ward by ID
func (r *WardRepository) GetWardByID(id uint) (*models.Ward, error) {
	var ward models.Ward
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&ward).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("ward %d not found", id)
		}
		return nil, err
	}
	return &ward, nil
}

// CreateWard creates a new ward
func (r *WardRepository) CreateWard(ward *models.Ward) error {
	err := r.db.Create(ward).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("ward code %q already exists", ward.Code)
	}
	return err
}

// UpdateWard updates an existing ward
func (r *WardRepository) UpdateWard(ward *models.Ward) error {
	return r.db.Save(ward).Error
}

// SoftDeleteWard soft deletes a ward by setting is_active to false
func (r *WardRepository) SoftDeleteWard(id uint) error {
	return r.db.Model(&models.Ward{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// CountRoomsInWard counts active rooms that still reference the ward
func (r *WardRepository) CountRoomsInWard(wardID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Room{}).
		Where("ward_id = ? AND is_active = ?", wardID, true).
		Count(&count).Error
	return count, err
}
