package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"hospital-bed-management/pkg/apperr"

	"github.com/go-resty/resty/v2"
)

// Patient is the subset of the patient-directory record the engine needs.
type Patient struct {
	ID            uint   `json:"id"`
	MedicalRecord string `json:"medical_record_no"`
	FullName      string `json:"full_name"`
	BirthDate     string `json:"birth_date,omitempty"`
	Sex           string `json:"sex,omitempty"`
}

// PatientDirectory is the port to the external patient/identity service.
type PatientDirectory interface {
	GetPatient(ctx context.Context, id uint) (*Patient, error)
	SearchPatients(ctx context.Context, query string) ([]Patient, error)
}

// PatientClient is the HTTP implementation of PatientDirectory.
type PatientClient struct {
	http *resty.Client
}

func NewPatientClient(baseURL string, timeout time.Duration) *PatientClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &PatientClient{http: client}
}

// GetPatient fetches a single patient by ID
func (c *PatientClient) GetPatient(ctx context.Context, id uint) (*Patient, error) {
	var patient Patient
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&patient).
		Get(fmt.Sprintf("/patients/%d", id))
	if err != nil {
		return nil, fmt.Errorf("patient service request failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return &patient, nil
	case http.StatusNotFound:
		return nil, apperr.NotFound("patient %d not found", id)
	default:
		return nil, fmt.Errorf("patient service returned status %d", resp.StatusCode())
	}
}

// SearchPatients searches the directory by free-text query
func (c *PatientClient) SearchPatients(ctx context.Context, query string) ([]Patient, error) {
	var patients []Patient
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("query", query).
		SetResult(&patients).
		Get("/patients")
	if err != nil {
		return nil, fmt.Errorf("patient service request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("patient service returned status %d", resp.StatusCode())
	}
	return patients, nil
}
