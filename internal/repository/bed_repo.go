package repository

import (
	"errors"
	"time"

	"hospital-bed-management/internal/models"
	"hospital-bed-management/pkg/apperr"

	"gorm.io/gorm"
)

type BedRepository struct {
	db *gorm.DB
}

func NewBedRepo(db *gorm.DB) *BedRepository {
	return &BedRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *BedRepository) WithTx(tx *gorm.DB) *BedRepository {
	return &BedRepository{db: tx}
}

// GetAllBeds retrieves all active beds
func (r *BedRepository) GetAllBeds() ([]models.Bed, error) {
	var beds []models.Bed
	err := r.db.Where("is_active = ?", true).
		Preload("Room").
		Order("room_id ASC, code ASC").
		Find(&beds).Error
	return beds, err
}

// GetBedsByRoomID retrieves all active beds for a specific room
func (r *BedRepository) GetBedsByRoomID(roomID uint) ([]models.Bed, error) {
	var beds []models.Bed
	err := r.db.Where("room_id = ? AND is_active = ?", roomID, true).
		Order("code ASC").
		Find(&beds).Error
	return beds, err
}

// GetBedByID retrieves a bed by ID with its room preloaded
func (r *BedRepository) GetBedByID(id uint) (*models.Bed, error) {
	var bed models.Bed
	err := r.db.Where("id = ? AND is_active = ?", id, true).
		Preload("Room").
		First(&bed).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("bed %d not found", id)
		}
		return nil, err
	}
	return &bed, nil
}

// CreateBed creates a new bed
func (r *BedRepository) CreateBed(bed *models.Bed) error {
	return r.db.Create(bed).Error
}

// UpdateBed updates an existing bed's static attributes
func (r *BedRepository) UpdateBed(bed *models.Bed) error {
	return r.db.Save(bed).Error
}

// SoftDeleteBed soft deletes a bed by setting is_active to false
func (r *BedRepository) SoftDeleteBed(id uint) error {
	return r.db.Model(&models.Bed{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// ClaimBed performs the compare-and-swap transition that guards every bed
// claim: the row is updated only if its stored state still matches
// expectedState. When the caller expects vacant, a reservation whose TTL has
// elapsed also matches, so stale holds never block a claim. RowsAffected of
// zero means another actor won the bed.
func (r *BedRepository) ClaimBed(bedID uint, expectedState, newState string, reservedUntil *time.Time, now time.Time) error {
	q := r.db.Model(&models.Bed{}).
		Where("id = ? AND is_active = ?", bedID, true)

	if expectedState == models.BedStateVacant {
		q = q.Where(
			r.db.Where("state = ?", models.BedStateVacant).
				Or("state = ? AND reserved_until IS NOT NULL AND reserved_until <= ?",
					models.BedStateReserved, now),
		)
	} else {
		q = q.Where("state = ?", expectedState)
	}

	res := q.Updates(map[string]interface{}{
		"state":          newState,
		"reserved_until": reservedUntil,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.BedUnavailable("bed %d is not %s", bedID, expectedState)
	}
	return nil
}

// ReleaseBed transitions a bed back to vacant if it is still in fromState.
// The release is idempotent: a bed that already moved on is left untouched.
func (r *BedRepository) ReleaseBed(bedID uint, fromState string) error {
	return r.db.Model(&models.Bed{}).
		Where("id = ? AND state = ?", bedID, fromState).
		Updates(map[string]interface{}{
			"state":          models.BedStateVacant,
			"reserved_until": nil,
		}).Error
}

// SetBedState overrides a bed's state outside the transfer workflow
// (e.g. marking a bed preoccupied for cleaning)
func (r *BedRepository) SetBedState(bedID uint, state string, reservedUntil *time.Time, note string) error {
	return r.db.Model(&models.Bed{}).
		Where("id = ? AND is_active = ?", bedID, true).
		Updates(map[string]interface{}{
			"state":          state,
			"reserved_until": reservedUntil,
			"note":           note,
		}).Error
}

// SweepExpiredReservations releases every reservation whose TTL elapsed
// before now. Safe against concurrent claims: a claim that already consumed
// the reservation changed the state, so the predicate no longer matches.
func (r *BedRepository) SweepExpiredReservations(now time.Time) (int64, error) {
	res := r.db.Model(&models.Bed{}).
		Where("state = ? AND reserved_until IS NOT NULL AND reserved_until <= ?",
			models.BedStateReserved, now).
		Updates(map[string]interface{}{
			"state":          models.BedStateVacant,
			"reserved_until": nil,
		})
	return res.RowsAffected, res.Error
}

// CountReferencesToBed counts admission and transfer history rows that
// reference the bed, used to refuse hard inventory deletes
func (r *BedRepository) CountReferencesToBed(bedID uint) (int64, error) {
	var admissions int64
	if err := r.db.Model(&models.Admission{}).
		Where("current_bed_id = ?", bedID).
		Count(&admissions).Error; err != nil {
		return 0, err
	}

	var transfers int64
	if err := r.db.Model(&models.TransferRequest{}).
		Where("from_bed_id = ? OR to_bed_id = ?", bedID, bedID).
		Count(&transfers).Error; err != nil {
		return 0, err
	}

	return admissions + transfers, nil
}
