package service

import (
	"context"
	"fmt"
	"time"

	"hospital-bed-management/internal/models"
	"hospital-bed-management/internal/repository"
	"hospital-bed-management/pkg/apperr"

	"gorm.io/gorm"
)

// AdmissionService creates and terminates admissions and is the single
// component allowed to change an admission's bed binding. Completing a
// transfer commits through CommitTransfer so bed-state flips and the
// current_bed_id update are one atomic unit.
type AdmissionService struct {
	db            *gorm.DB
	admissionRepo *repository.AdmissionRepository
	bedRepo       *repository.BedRepository
	transferRepo  *repository.TransferRepository
	patients      PatientDirectory
	auditRepo     *repository.AuditRepository
}

func NewAdmissionService(
	db *gorm.DB,
	admissionRepo *repository.AdmissionRepository,
	bedRepo *repository.BedRepository,
	transferRepo *repository.TransferRepository,
	patients PatientDirectory,
	auditRepo *repository.AuditRepository,
) *AdmissionService {
	return &AdmissionService{
		db:            db,
		admissionRepo: admissionRepo,
		bedRepo:       bedRepo,
		transferRepo:  transferRepo,
		patients:      patients,
		auditRepo:     auditRepo,
	}
}

// CreateAdmissionInput carries the full context of an admission request.
type CreateAdmissionInput struct {
	PatientID           uint
	BedID               uint
	AdmittedAt          *time.Time
	ExpectedDischargeAt *time.Time
	Practitioner        string
	Diagnosis           string
	PayorType           string
	PayorReference      string
}

// CreateAdmission admits a patient to a vacant bed. The bed is claimed
// vacant→occupied through the CAS and the admission row carries the unique
// active-patient guard; both happen in one transaction so a lost race on
// either side leaves no partial state.
func (s *AdmissionService) CreateAdmission(ctx context.Context, in CreateAdmissionInput, userID uint) (*models.Admission, error) {
	if in.PatientID == 0 {
		return nil, apperr.Validation("patient_id is required")
	}
	if in.BedID == 0 {
		return nil, apperr.Validation("bed_id is required")
	}

	if _, err := s.patients.GetPatient(ctx, in.PatientID); err != nil {
		return nil, err
	}

	now := time.Now().Truncate(time.Second)
	admittedAt := now
	if in.AdmittedAt != nil {
		admittedAt = *truncateToSecond(in.AdmittedAt)
	}

	patientID := in.PatientID
	bedID := in.BedID
	admission := &models.Admission{
		PatientID:           patientID,
		ActivePatientID:     &patientID,
		CurrentBedID:        &bedID,
		Status:              models.AdmissionStatusAdmitted,
		AdmittedAt:          admittedAt,
		ExpectedDischargeAt: truncateToSecond(in.ExpectedDischargeAt),
		Practitioner:        in.Practitioner,
		Diagnosis:           in.Diagnosis,
		PayorType:           in.PayorType,
		PayorReference:      in.PayorReference,
	}

	err := retryBedClaim(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.bedRepo.WithTx(tx).ClaimBed(in.BedID,
				models.BedStateVacant, models.BedStateOccupied, nil, now); err != nil {
				return err
			}
			admission.ID = 0
			return s.admissionRepo.WithTx(tx).CreateAdmission(admission)
		})
	})
	if err != nil {
		return nil, err
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "admission_create",
		fmt.Sprintf("Admitted patient %d to bed %d (admission %d)", in.PatientID, in.BedID, admission.ID))

	return s.admissionRepo.GetAdmissionByID(admission.ID)
}

// GetAdmission retrieves a single admission
func (s *AdmissionService) GetAdmission(id uint) (*models.Admission, error) {
	return s.admissionRepo.GetAdmissionByID(id)
}

// ListAdmissions retrieves admissions, optionally filtered by status and
// patient
func (s *AdmissionService) ListAdmissions(status string, patientID uint) ([]models.Admission, error) {
	if status != "" && status != models.AdmissionStatusAdmitted &&
		status != models.AdmissionStatusDischarged && status != models.AdmissionStatusCancelled {
		return nil, apperr.Validation("invalid admission status %q", status)
	}
	return s.admissionRepo.ListAdmissions(status, patientID)
}

// UpdateAdmissionInput carries the metadata fields an update may touch.
type UpdateAdmissionInput struct {
	ExpectedDischargeAt *time.Time
	Practitioner        *string
	Diagnosis           *string
	PayorType           *string
	PayorReference      *string
}

// UpdateAdmission mutates admission metadata only; it never touches bed
// state or the bed binding.
func (s *AdmissionService) UpdateAdmission(id uint, in UpdateAdmissionInput, userID uint) (*models.Admission, error) {
	admission, err := s.admissionRepo.GetAdmissionByID(id)
	if err != nil {
		return nil, err
	}
	if admission.Terminal() {
		return nil, apperr.Precondition("admission %d is already %s", id, admission.Status)
	}

	updates := map[string]interface{}{}
	if in.ExpectedDischargeAt != nil {
		updates["expected_discharge_at"] = truncateToSecond(in.ExpectedDischargeAt)
	}
	if in.Practitioner != nil {
		updates["practitioner"] = *in.Practitioner
	}
	if in.Diagnosis != nil {
		updates["diagnosis"] = *in.Diagnosis
	}
	if in.PayorType != nil {
		updates["payor_type"] = *in.PayorType
	}
	if in.PayorReference != nil {
		updates["payor_reference"] = *in.PayorReference
	}
	if len(updates) == 0 {
		return admission, nil
	}

	if err := s.admissionRepo.UpdateAdmissionFields(id, updates); err != nil {
		return nil, fmt.Errorf("failed to update admission: %w", err)
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "admission_update",
		fmt.Sprintf("Updated admission %d metadata", id))

	return s.admissionRepo.GetAdmissionByID(id)
}

// DischargeAdmission ends an admitted stay: the bed is released
// occupied→vacant and the admission becomes terminal.
func (s *AdmissionService) DischargeAdmission(id uint, dischargedAt *time.Time, userID uint) (*models.Admission, error) {
	admission, err := s.admissionRepo.GetAdmissionByID(id)
	if err != nil {
		return nil, err
	}
	if admission.Status == models.AdmissionStatusDischarged {
		// Repeat discharge returns the same terminal state.
		return admission, nil
	}
	if admission.Status != models.AdmissionStatusAdmitted {
		return nil, apperr.Precondition("admission %d is %s, not admitted", id, admission.Status)
	}

	inFlight, err := s.transferRepo.HasActiveTransferForAdmission(id)
	if err != nil {
		return nil, err
	}
	if inFlight {
		return nil, apperr.Conflict("admission %d has a transfer in flight", id)
	}

	when := time.Now().Truncate(time.Second)
	if dischargedAt != nil {
		when = *truncateToSecond(dischargedAt)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if admission.CurrentBedID != nil {
			if err := s.bedRepo.WithTx(tx).ReleaseBed(*admission.CurrentBedID, models.BedStateOccupied); err != nil {
				return err
			}
		}
		return s.admissionRepo.WithTx(tx).UpdateAdmissionFields(id, map[string]interface{}{
			"status":            models.AdmissionStatusDischarged,
			"discharged_at":     when,
			"active_patient_id": nil,
		})
	})
	if err != nil {
		return nil, err
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "admission_discharge",
		fmt.Sprintf("Discharged admission %d", id))

	return s.admissionRepo.GetAdmissionByID(id)
}

// CancelAdmission cancels an admitted stay and releases its bed. Calling it
// again on an already-cancelled admission returns the same terminal state
// without erroring, tolerating client retry storms.
func (s *AdmissionService) CancelAdmission(id uint, userID uint) (*models.Admission, error) {
	admission, err := s.admissionRepo.GetAdmissionByID(id)
	if err != nil {
		return nil, err
	}
	if admission.Status == models.AdmissionStatusCancelled {
		return admission, nil
	}
	if admission.Status != models.AdmissionStatusAdmitted {
		return nil, apperr.Precondition("admission %d is %s, not admitted", id, admission.Status)
	}

	inFlight, err := s.transferRepo.HasActiveTransferForAdmission(id)
	if err != nil {
		return nil, err
	}
	if inFlight {
		return nil, apperr.Conflict("admission %d has a transfer in flight", id)
	}

	when := time.Now().Truncate(time.Second)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if admission.CurrentBedID != nil {
			if err := s.bedRepo.WithTx(tx).ReleaseBed(*admission.CurrentBedID, models.BedStateOccupied); err != nil {
				return err
			}
		}
		return s.admissionRepo.WithTx(tx).UpdateAdmissionFields(id, map[string]interface{}{
			"status":            models.AdmissionStatusCancelled,
			"cancelled_at":      when,
			"active_patient_id": nil,
		})
	})
	if err != nil {
		return nil, err
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "admission_cancel",
		fmt.Sprintf("Cancelled admission %d", id))

	return s.admissionRepo.GetAdmissionByID(id)
}

// CommitTransfer is the single commit point of a completed transfer: within
// the caller's transaction it releases the old bed, occupies the new bed and
// rebinds the admission. No other operation may change a bed's state and an
// admission's current_bed_id together.
func (s *AdmissionService) CommitTransfer(tx *gorm.DB, admissionID, fromBedID, toBedID uint, now time.Time) error {
	bedRepo := s.bedRepo.WithTx(tx)

	if err := bedRepo.ReleaseBed(fromBedID, models.BedStateOccupied); err != nil {
		return err
	}

	// Consume our reservation; if the sweeper already returned the bed to
	// vacant, claim it from vacant instead.
	err := bedRepo.ClaimBed(toBedID, models.BedStateReserved, models.BedStateOccupied, nil, now)
	if apperr.IsKind(err, apperr.KindBedUnavailable) {
		err = bedRepo.ClaimBed(toBedID, models.BedStateVacant, models.BedStateOccupied, nil, now)
	}
	if err != nil {
		return err
	}

	return s.admissionRepo.WithTx(tx).UpdateAdmissionFields(admissionID, map[string]interface{}{
		"current_bed_id": toBedID,
	})
}
