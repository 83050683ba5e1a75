package service

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"hospital-bed-management/internal/models"
	"hospital-bed-management/internal/repository"
	"hospital-bed-management/pkg/apperr"

	"gorm.io/gorm"
)

// TransferService drives the request/approve/assign/complete/cancel workflow
// that moves an admission between beds. Steps are short and non-blocking:
// each commits and releases, and the next step re-validates the persisted
// status through a conditional update before acting.
type TransferService struct {
	db               *gorm.DB
	transferRepo     *repository.TransferRepository
	admissionRepo    *repository.AdmissionRepository
	bedRepo          *repository.BedRepository
	admissionService *AdmissionService
	auditRepo        *repository.AuditRepository
}

func NewTransferService(
	db *gorm.DB,
	transferRepo *repository.TransferRepository,
	admissionRepo *repository.AdmissionRepository,
	bedRepo *repository.BedRepository,
	admissionService *AdmissionService,
	auditRepo *repository.AuditRepository,
) *TransferService {
	return &TransferService{
		db:               db,
		transferRepo:     transferRepo,
		admissionRepo:    admissionRepo,
		bedRepo:          bedRepo,
		admissionService: admissionService,
		auditRepo:        auditRepo,
	}
}

const defaultReserveMinutes = 30

// RequestTransferInput carries the full context of a transfer request.
type RequestTransferInput struct {
	AdmissionID    uint
	TransferType   string
	Priority       string
	Reason         string
	RequestNote    string
	ToBedID        *uint
	ScheduledAt    *time.Time
	ReserveMinutes int
}

// RequestTransfer opens a transfer request for an admitted patient. When a
// target bed is named and available it is reserved with a TTL; when the
// reservation loses, the request is still created with to_bed_id cleared,
// deferring target selection to a later AssignBed call.
func (s *TransferService) RequestTransfer(in RequestTransferInput, userID uint) (*models.TransferRequest, error) {
	if in.AdmissionID == 0 {
		return nil, apperr.Validation("admission_id is required")
	}
	if in.Reason == "" {
		return nil, apperr.Validation("reason is required")
	}
	if in.TransferType == "" {
		return nil, apperr.Validation("transfer_type is required")
	}
	if in.ReserveMinutes < 0 {
		return nil, apperr.Validation("reserve_minutes must not be negative")
	}
	if in.ReserveMinutes == 0 {
		in.ReserveMinutes = defaultReserveMinutes
	}
	if in.Priority == "" {
		in.Priority = models.TransferPriorityRoutine
	}

	admission, err := s.admissionRepo.GetAdmissionByID(in.AdmissionID)
	if err != nil {
		return nil, err
	}
	if admission.Status != models.AdmissionStatusAdmitted {
		return nil, apperr.Precondition("admission %d is %s, not admitted", in.AdmissionID, admission.Status)
	}
	if admission.CurrentBedID == nil {
		return nil, apperr.Precondition("admission %d has no current bed", in.AdmissionID)
	}

	inFlight, err := s.transferRepo.HasActiveTransferForAdmission(in.AdmissionID)
	if err != nil {
		return nil, err
	}
	if inFlight {
		return nil, apperr.Conflict("admission %d already has a transfer in flight", in.AdmissionID)
	}

	now := time.Now().Truncate(time.Second)
	toBedID := in.ToBedID

	if toBedID != nil {
		if *toBedID == *admission.CurrentBedID {
			return nil, apperr.Validation("target bed equals the current bed")
		}
		if _, err := s.bedRepo.GetBedByID(*toBedID); err != nil {
			return nil, err
		}
	}

	req := &models.TransferRequest{
		AdmissionID:    in.AdmissionID,
		TransferType:   in.TransferType,
		Priority:       in.Priority,
		Status:         models.TransferStatusRequested,
		FromBedID:      *admission.CurrentBedID,
		ReserveMinutes: in.ReserveMinutes,
		RequestedAt:    now,
		ScheduledAt:    truncateToSecond(in.ScheduledAt),
		Reason:         in.Reason,
		RequestNote:    in.RequestNote,
	}

	// Reservation and insert commit together; a failed insert must not
	// leave the bed held until the TTL elapses.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if toBedID != nil {
			until := now.Add(time.Duration(in.ReserveMinutes) * time.Minute)
			err := s.bedRepo.WithTx(tx).ClaimBed(*toBedID, models.BedStateVacant, models.BedStateReserved, &until, now)
			if apperr.IsKind(err, apperr.KindBedUnavailable) {
				// Soft-fail to manual assignment: the request proceeds
				// without a target and a bed manager assigns one later.
				toBedID = nil
			} else if err != nil {
				return err
			}
		}
		req.ToBedID = toBedID
		if err := s.transferRepo.WithTx(tx).CreateTransferRequest(req); err != nil {
			return fmt.Errorf("failed to create transfer request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(req.ID, userID, "", models.TransferStatusRequested, in.Reason)

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "transfer_request",
		fmt.Sprintf("Requested transfer %d for admission %d", req.ID, in.AdmissionID))

	return s.transferRepo.GetTransferByID(req.ID)
}

// GetTransfer retrieves a single transfer request
func (s *TransferService) GetTransfer(id uint) (*models.TransferRequest, error) {
	return s.transferRepo.GetTransferByID(id)
}

// ListTransfersByAdmission retrieves the transfer history of an admission
func (s *TransferService) ListTransfersByAdmission(admissionID uint) ([]models.TransferRequest, error) {
	if _, err := s.admissionRepo.GetAdmissionByID(admissionID); err != nil {
		return nil, err
	}
	return s.transferRepo.ListTransfersByAdmission(admissionID)
}

// ListTransferEvents retrieves the audit trail of a transfer request
func (s *TransferService) ListTransferEvents(id uint) ([]models.TransferEvent, error) {
	if _, err := s.transferRepo.GetTransferByID(id); err != nil {
		return nil, err
	}
	return s.transferRepo.ListEventsByTransfer(id)
}

// ApproveTransfer decides a requested transfer. Rejection requires a reason
// and releases any reservation the request held.
func (s *TransferService) ApproveTransfer(id uint, approve bool, approvalNote, rejectedReason string, userID uint) (*models.TransferRequest, error) {
	req, err := s.transferRepo.GetTransferByID(id)
	if err != nil {
		return nil, err
	}

	now := time.Now().Truncate(time.Second)

	if approve {
		err = s.transferRepo.AdvanceStatus(id,
			models.TransferStatusesAllowing(models.TransferStatusApproved),
			models.TransferStatusApproved,
			map[string]interface{}{
				"approved_at":   now,
				"approval_note": approvalNote,
			})
		if err != nil {
			return nil, err
		}
		s.recordEvent(id, userID, req.Status, models.TransferStatusApproved, approvalNote)
	} else {
		if rejectedReason == "" {
			return nil, apperr.Validation("rejected_reason is required when rejecting")
		}
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.transferRepo.WithTx(tx).AdvanceStatus(id,
				models.TransferStatusesAllowing(models.TransferStatusRejected),
				models.TransferStatusRejected,
				map[string]interface{}{
					"rejected_reason": rejectedReason,
				}); err != nil {
				return err
			}
			if req.ToBedID != nil {
				return s.bedRepo.WithTx(tx).ReleaseBed(*req.ToBedID, models.BedStateReserved)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		s.recordEvent(id, userID, req.Status, models.TransferStatusRejected, rejectedReason)
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "transfer_decision",
		fmt.Sprintf("Transfer %d approve=%t", id, approve))

	return s.transferRepo.GetTransferByID(id)
}

// AssignTransferBed releases any reservation the request holds, claims the
// new target bed, and schedules the transfer if a time is given. Concurrent
// assignments racing for the same bed are settled by the claim CAS: the
// loser gets BedUnavailableError and must pick a different bed.
func (s *TransferService) AssignTransferBed(id uint, toBedID uint, scheduledAt *time.Time, reserveMinutes int, userID uint) (*models.TransferRequest, error) {
	if toBedID == 0 {
		return nil, apperr.Validation("to_bed_id is required")
	}
	if reserveMinutes < 0 {
		return nil, apperr.Validation("reserve_minutes must not be negative")
	}

	req, err := s.transferRepo.GetTransferByID(id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.TransferStatusApproved && req.Status != models.TransferStatusScheduled {
		return nil, apperr.Precondition("transfer %d is %s; only approved or scheduled transfers can be assigned a bed", id, req.Status)
	}
	if toBedID == req.FromBedID {
		return nil, apperr.Validation("target bed equals the current bed")
	}
	if _, err := s.bedRepo.GetBedByID(toBedID); err != nil {
		return nil, err
	}

	if reserveMinutes == 0 {
		reserveMinutes = req.ReserveMinutes
	}

	// Without a new schedule time the status is preserved: an approved
	// request stays approved and a scheduled one keeps its slot.
	nextStatus := req.Status
	fromStatuses := []string{req.Status}
	if scheduledAt != nil {
		nextStatus = models.TransferStatusScheduled
		fromStatuses = []string{models.TransferStatusApproved, models.TransferStatusScheduled}
	}

	now := time.Now().Truncate(time.Second)
	until := now.Add(time.Duration(reserveMinutes) * time.Minute)

	err = retryBedClaim(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			bedRepo := s.bedRepo.WithTx(tx)

			if req.ToBedID != nil && *req.ToBedID != toBedID {
				if err := bedRepo.ReleaseBed(*req.ToBedID, models.BedStateReserved); err != nil {
					return err
				}
			}
			if req.ToBedID == nil || *req.ToBedID != toBedID {
				if err := bedRepo.ClaimBed(toBedID, models.BedStateVacant, models.BedStateReserved, &until, now); err != nil {
					return err
				}
			} else {
				// Same bed re-assigned: extend the reservation we hold, or
				// re-claim it if the sweeper already returned it to vacant.
				err := bedRepo.ClaimBed(toBedID, models.BedStateReserved, models.BedStateReserved, &until, now)
				if apperr.IsKind(err, apperr.KindBedUnavailable) {
					err = bedRepo.ClaimBed(toBedID, models.BedStateVacant, models.BedStateReserved, &until, now)
				}
				if err != nil {
					return err
				}
			}

			updates := map[string]interface{}{
				"to_bed_id":       toBedID,
				"reserve_minutes": reserveMinutes,
			}
			if scheduledAt != nil {
				updates["scheduled_at"] = truncateToSecond(scheduledAt)
			}
			return s.transferRepo.WithTx(tx).AdvanceStatus(id, fromStatuses, nextStatus, updates)
		})
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(id, userID, req.Status, nextStatus, fmt.Sprintf("assigned bed %d", toBedID))

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "transfer_assign_bed",
		fmt.Sprintf("Assigned bed %d to transfer %d", toBedID, id))

	return s.transferRepo.GetTransferByID(id)
}

// CompleteTransfer commits the move: old bed released, new bed occupied,
// admission rebound and the handover checklist persisted, all in one
// transaction through the admission binder.
func (s *TransferService) CompleteTransfer(id uint, vacatedAt, occupiedAt *time.Time, handover map[string]interface{}, userID uint) (*models.TransferRequest, error) {
	req, err := s.transferRepo.GetTransferByID(id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.TransferStatusApproved && req.Status != models.TransferStatusScheduled {
		return nil, apperr.Precondition("transfer %d is %s; only approved or scheduled transfers can be completed", id, req.Status)
	}
	if req.ToBedID == nil {
		return nil, apperr.Precondition("transfer %d has no target bed; assign target bed first", id)
	}

	now := time.Now().Truncate(time.Second)

	var handoverJSON []byte
	if handover != nil {
		handoverJSON, err = json.Marshal(handover)
		if err != nil {
			return nil, apperr.Validation("handover checklist is not serializable: %v", err)
		}
	}

	updates := map[string]interface{}{
		"completed_at": now,
		"vacated_at":   truncateToSecond(vacatedAt),
		"occupied_at":  truncateToSecond(occupiedAt),
	}
	if handoverJSON != nil {
		updates["handover_checklist"] = handoverJSON
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.transferRepo.WithTx(tx).AdvanceStatus(id,
			models.TransferStatusesAllowing(models.TransferStatusCompleted),
			models.TransferStatusCompleted,
			updates); err != nil {
			return err
		}
		return s.admissionService.CommitTransfer(tx, req.AdmissionID, req.FromBedID, *req.ToBedID, now)
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(id, userID, req.Status, models.TransferStatusCompleted,
		fmt.Sprintf("moved to bed %d", *req.ToBedID))

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "transfer_complete",
		fmt.Sprintf("Completed transfer %d (admission %d to bed %d)", id, req.AdmissionID, *req.ToBedID))

	return s.transferRepo.GetTransferByID(id)
}

// CancelTransfer cancels a transfer that has not completed, releasing any
// reservation it holds. Cancelling an already-cancelled transfer returns the
// same terminal state without erroring.
func (s *TransferService) CancelTransfer(id uint, reason string, userID uint) (*models.TransferRequest, error) {
	req, err := s.transferRepo.GetTransferByID(id)
	if err != nil {
		return nil, err
	}
	if req.Status == models.TransferStatusCancelled {
		return req, nil
	}
	if req.Status == models.TransferStatusCompleted {
		return nil, apperr.Precondition("transfer %d is already completed", id)
	}

	now := time.Now().Truncate(time.Second)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.transferRepo.WithTx(tx).AdvanceStatus(id,
			models.TransferStatusesAllowing(models.TransferStatusCancelled),
			models.TransferStatusCancelled,
			map[string]interface{}{
				"cancelled_at":  now,
				"cancel_reason": reason,
			}); err != nil {
			return err
		}
		if req.ToBedID != nil {
			return s.bedRepo.WithTx(tx).ReleaseBed(*req.ToBedID, models.BedStateReserved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(id, userID, req.Status, models.TransferStatusCancelled, reason)

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "transfer_cancel",
		fmt.Sprintf("Cancelled transfer %d", id))

	return s.transferRepo.GetTransferByID(id)
}

func (s *TransferService) recordEvent(transferID, userID uint, from, to, note string) {
	userIDPtr := &userID
	if err := s.transferRepo.AppendEvent(&models.TransferEvent{
		TransferRequestID: transferID,
		ActorUserID:       userIDPtr,
		FromStatus:        from,
		ToStatus:          to,
		Note:              note,
	}); err != nil {
		// The audit trail is written outside the workflow transaction;
		// a failed append must not undo a committed transition.
		log.Printf("Warning: failed to append transfer event for %d: %v", transferID, err)
	}
}
