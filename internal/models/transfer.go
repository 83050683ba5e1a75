package models

import (
	"time"

	"gorm.io/datatypes"
)

// TransferRequest statuses
const (
	TransferStatusRequested = "requested"
	TransferStatusApproved  = "approved"
	TransferStatusRejected  = "rejected"
	TransferStatusScheduled = "scheduled"
	TransferStatusCompleted = "completed"
	TransferStatusCancelled = "cancelled"
)

// Transfer types and priorities are free-form labels from the requesting
// clinician; only a few well-known values are validated.
const (
	TransferTypeWard      = "ward"
	TransferTypeICU       = "icu"
	TransferTypeIsolation = "isolation"

	TransferPriorityRoutine = "routine"
	TransferPriorityUrgent  = "urgent"
)

// TransferRequest represents one bed-to-bed move of an admission through the
// request/approve/assign/complete workflow. Rows are never deleted; they
// only advance to a terminal status.
type TransferRequest struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	AdmissionID    uint           `gorm:"not null;index" json:"admission_id"`
	TransferType   string         `gorm:"size:50;not null" json:"transfer_type"`
	Priority       string         `gorm:"size:20;default:'routine'" json:"priority"`
	Status         string         `gorm:"size:20;not null;default:'requested';index" json:"status"`
	FromBedID      uint           `gorm:"not null" json:"from_bed_id"`
	ToBedID        *uint          `json:"to_bed_id"`
	ReserveMinutes int            `gorm:"default:30" json:"reserve_minutes"`
	RequestedAt    time.Time      `gorm:"not null" json:"requested_at"`
	ApprovedAt     *time.Time     `json:"approved_at"`
	ScheduledAt    *time.Time     `json:"scheduled_at"`
	CompletedAt    *time.Time     `json:"completed_at"`
	CancelledAt    *time.Time     `json:"cancelled_at"`
	VacatedAt      *time.Time     `json:"vacated_at"`
	OccupiedAt     *time.Time     `json:"occupied_at"`
	Reason         string         `gorm:"size:255;not null" json:"reason"`
	RequestNote    string         `gorm:"type:text" json:"request_note,omitempty"`
	ApprovalNote   string         `gorm:"size:255" json:"approval_note,omitempty"`
	RejectedReason string         `gorm:"size:255" json:"rejected_reason,omitempty"`
	CancelReason   string         `gorm:"size:255" json:"cancel_reason,omitempty"`
	Handover       datatypes.JSON `gorm:"column:handover_checklist" json:"handover_checklist,omitempty"`
	CreatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	Admission Admission `gorm:"foreignKey:AdmissionID" json:"admission,omitempty"`
	FromBed   Bed       `gorm:"foreignKey:FromBedID" json:"from_bed,omitempty"`
	ToBed     *Bed      `gorm:"foreignKey:ToBedID" json:"to_bed,omitempty"`
}

// TableName specifies the table name for TransferRequest model
func (TransferRequest) TableName() string {
	return "transfer_requests"
}

// Terminal reports whether the request has reached a final status.
func (t *TransferRequest) Terminal() bool {
	switch t.Status {
	case TransferStatusRejected, TransferStatusCompleted, TransferStatusCancelled:
		return true
	}
	return false
}

// transferTransitions maps a target status to the statuses it may be reached
// from. Cancel is reachable from any status except completed and cancelled.
var transferTransitions = map[string][]string{
	TransferStatusApproved:  {TransferStatusRequested},
	TransferStatusRejected:  {TransferStatusRequested},
	TransferStatusScheduled: {TransferStatusApproved, TransferStatusScheduled},
	TransferStatusCompleted: {TransferStatusApproved, TransferStatusScheduled},
	TransferStatusCancelled: {TransferStatusRequested, TransferStatusApproved, TransferStatusScheduled, TransferStatusRejected},
}

// TransferStatusesAllowing returns the statuses from which target is a legal
// transition.
func TransferStatusesAllowing(target string) []string {
	return transferTransitions[target]
}

// ValidTransferTransition reports whether from → target is a legal workflow
// transition.
func ValidTransferTransition(from, target string) bool {
	for _, s := range transferTransitions[target] {
		if s == from {
			return true
		}
	}
	return false
}

// TransferEvent is one row of the transfer audit trail: every status
// transition records its actor and timestamp for compliance review.
type TransferEvent struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	TransferRequestID uint      `gorm:"not null;index" json:"transfer_request_id"`
	ActorUserID       *uint     `gorm:"index" json:"actor_user_id"`
	FromStatus        string    `gorm:"size:20" json:"from_status"`
	ToStatus          string    `gorm:"size:20;not null" json:"to_status"`
	Note              string    `gorm:"size:255" json:"note,omitempty"`
	CreatedAt         time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for TransferEvent model
func (TransferEvent) TableName() string {
	return "transfer_events"
}
