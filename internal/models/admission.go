package models

import "time"

// Admission statuses
const (
	AdmissionStatusAdmitted   = "admitted"
	AdmissionStatusDischarged = "discharged"
	AdmissionStatusCancelled  = "cancelled"
)

// Admission represents a patient's inpatient stay, bound to one bed at a
// time. ActivePatientID mirrors PatientID while the admission is in status
// admitted and is NULL once terminal; its unique index is the hard guard
// that keeps a patient from holding two active admissions under races.
type Admission struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	PatientID           uint       `gorm:"not null;index" json:"patient_id"`
	ActivePatientID     *uint      `gorm:"uniqueIndex" json:"-"`
	CurrentBedID        *uint      `gorm:"index" json:"current_bed_id"`
	Status              string     `gorm:"size:20;not null;default:'admitted';index" json:"status"`
	AdmittedAt          time.Time  `gorm:"not null" json:"admitted_at"`
	DischargedAt        *time.Time `json:"discharged_at"`
	CancelledAt         *time.Time `json:"cancelled_at"`
	ExpectedDischargeAt *time.Time `json:"expected_discharge_at"`
	Practitioner        string     `gorm:"size:255" json:"practitioner,omitempty"`
	Diagnosis           string     `gorm:"type:text" json:"diagnosis,omitempty"`
	PayorType           string     `gorm:"size:50" json:"payor_type,omitempty"`
	PayorReference      string     `gorm:"size:100" json:"payor_reference,omitempty"`
	CreatedAt           time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	CurrentBed *Bed `gorm:"foreignKey:CurrentBedID" json:"current_bed,omitempty"`
}

// TableName specifies the table name for Admission model
func (Admission) TableName() string {
	return "admissions"
}

// Terminal reports whether the admission has reached a final status.
func (a *Admission) Terminal() bool {
	return a.Status == AdmissionStatusDischarged || a.Status == AdmissionStatusCancelled
}
