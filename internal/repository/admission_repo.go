package repository

import (
	"errors"

	"hospital-bed-management/internal/models"
	"hospital-bed-management/pkg/apperr"

	"gorm.io/gorm"
)

type AdmissionRepository struct {
	db *gorm.DB
}

func NewAdmissionRepo(db *gorm.DB) *AdmissionRepository {
	return &AdmissionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *AdmissionRepository) WithTx(tx *gorm.DB) *AdmissionRepository {
	return &AdmissionRepository{db: tx}
}

// CreateAdmission inserts a new admission. The unique index on
// active_patient_id is the hard guard against two concurrent admissions for
// the same patient: the loser's insert fails with a duplicate key error.
func (r *AdmissionRepository) CreateAdmission(admission *models.Admission) error {
	err := r.db.Create(admission).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("patient %d already has an active admission", admission.PatientID)
	}
	return err
}

// GetAdmissionByID retrieves an admission with its current bed and room
func (r *AdmissionRepository) GetAdmissionByID(id uint) (*models.Admission, error) {
	var admission models.Admission
	err := r.db.Preload("CurrentBed.Room").First(&admission, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("admission %d not found", id)
		}
		return nil, err
	}
	return &admission, nil
}

// ListAdmissions retrieves admissions filtered by status and/or patient ID.
// Zero values mean no filter.
func (r *AdmissionRepository) ListAdmissions(status string, patientID uint) ([]models.Admission, error) {
	q := r.db.Preload("CurrentBed.Room").Order("admitted_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if patientID != 0 {
		q = q.Where("patient_id = ?", patientID)
	}

	var admissions []models.Admission
	err := q.Find(&admissions).Error
	return admissions, err
}

// UpdateAdmissionFields applies a partial update to an admission row
func (r *AdmissionRepository) UpdateAdmissionFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Admission{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// GetActiveAdmissionByPatientID retrieves the patient's admitted admission,
// if any
func (r *AdmissionRepository) GetActiveAdmissionByPatientID(patientID uint) (*models.Admission, error) {
	var admission models.Admission
	err := r.db.Where("patient_id = ? AND status = ?", patientID, models.AdmissionStatusAdmitted).
		First(&admission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no active admission for patient %d", patientID)
		}
		return nil, err
	}
	return &admission, nil
}
