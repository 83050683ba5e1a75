package repository

import (
	"errors"

	"hospital-bed-management/internal/models"
	"hospital-bed-management/pkg/apperr"

	"gorm.io/gorm"
)

type TransferRepository struct {
	db *gorm.DB
}

func NewTransferRepo(db *gorm.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *TransferRepository) WithTx(tx *gorm.DB) *TransferRepository {
	return &TransferRepository{db: tx}
}

// CreateTransferRequest inserts a new transfer request
func (r *TransferRepository) CreateTransferRequest(req *models.TransferRequest) error {
	return r.db.Create(req).Error
}

// GetTransferByID retrieves a transfer request with its beds preloaded
func (r *TransferRepository) GetTransferByID(id uint) (*models.TransferRequest, error) {
	var req models.TransferRequest
	err := r.db.Preload("FromBed.Room").Preload("ToBed.Room").First(&req, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("transfer request %d not found", id)
		}
		return nil, err
	}
	return &req, nil
}

// ListTransfersByAdmission retrieves all transfer requests for an admission,
// oldest first
func (r *TransferRepository) ListTransfersByAdmission(admissionID uint) ([]models.TransferRequest, error) {
	var reqs []models.TransferRequest
	err := r.db.Where("admission_id = ?", admissionID).
		Preload("FromBed").Preload("ToBed").
		Order("requested_at ASC").
		Find(&reqs).Error
	return reqs, err
}

// ListCompletedTransfersByAdmission retrieves completed transfers in
// completion order, used by the charge calculator to walk the occupancy
// timeline
func (r *TransferRepository) ListCompletedTransfersByAdmission(admissionID uint) ([]models.TransferRequest, error) {
	var reqs []models.TransferRequest
	err := r.db.Where("admission_id = ? AND status = ?", admissionID, models.TransferStatusCompleted).
		Preload("FromBed.Room").
		Preload("ToBed.Room").
		Order("completed_at ASC").
		Find(&reqs).Error
	return reqs, err
}

// AdvanceStatus moves a transfer request to toStatus, conditional on the
// stored status still being one of fromStatuses. Workflow steps between
// human interactions run optimistically: nothing holds a lock, this
// conditional update re-validates the persisted state instead. RowsAffected
// of zero means the workflow moved on underneath the caller.
func (r *TransferRepository) AdvanceStatus(id uint, fromStatuses []string, toStatus string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = toStatus

	res := r.db.Model(&models.TransferRequest{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Precondition("transfer request %d is not in a state that allows %s", id, toStatus)
	}
	return nil
}

// UpdateTransferFields applies a partial update without a status guard
func (r *TransferRepository) UpdateTransferFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.TransferRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// HasActiveTransferForAdmission reports whether the admission has a transfer
// mid-flight (requested, approved or scheduled)
func (r *TransferRepository) HasActiveTransferForAdmission(admissionID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.TransferRequest{}).
		Where("admission_id = ? AND status IN ?", admissionID,
			[]string{models.TransferStatusRequested, models.TransferStatusApproved, models.TransferStatusScheduled}).
		Count(&count).Error
	return count > 0, err
}

// AppendEvent records one status transition in the transfer audit trail
func (r *TransferRepository) AppendEvent(event *models.TransferEvent) error {
	return r.db.Create(event).Error
}

// ListEventsByTransfer retrieves the audit trail for a transfer request
func (r *TransferRepository) ListEventsByTransfer(transferID uint) ([]models.TransferEvent, error) {
	var events []models.TransferEvent
	err := r.db.Where("transfer_request_id = ?", transferID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}
