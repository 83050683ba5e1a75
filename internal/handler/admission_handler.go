package handler

import (
	"net/http"
	"strconv"
	"time"

	"hospital-bed-management/internal/service"
	"hospital-bed-management/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AdmissionHandler struct {
	admissionService *service.AdmissionService
}

func NewAdmissionHandler(admissionService *service.AdmissionService) *AdmissionHandler {
	return &AdmissionHandler{
		admissionService: admissionService,
	}
}

type createAdmissionRequest struct {
	PatientID           uint       `json:"patient_id" binding:"required"`
	BedID               uint       `json:"bed_id" binding:"required"`
	AdmittedAt          *time.Time `json:"admitted_at"`
	ExpectedDischargeAt *time.Time `json:"expected_discharge_at"`
	Practitioner        string     `json:"practitioner"`
	Diagnosis           string     `json:"diagnosis"`
	PayorType           string     `json:"payor_type"`
	PayorReference      string     `json:"payor_reference"`
}

// CreateAdmission admits a patient to a vacant bed
func (h *AdmissionHandler) CreateAdmission(c *gin.Context) {
	var req createAdmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	admission, err := h.admissionService.CreateAdmission(c.Request.Context(), service.CreateAdmissionInput{
		PatientID:           req.PatientID,
		BedID:               req.BedID,
		AdmittedAt:          req.AdmittedAt,
		ExpectedDischargeAt: req.ExpectedDischargeAt,
		Practitioner:        req.Practitioner,
		Diagnosis:           req.Diagnosis,
		PayorType:           req.PayorType,
		PayorReference:      req.PayorReference,
	}, actorID(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.CreatedResponse(c, admission)
}

// ListAdmissions retrieves admissions filtered by status and/or patient_id
func (h *AdmissionHandler) ListAdmissions(c *gin.Context) {
	var patientID uint
	if s := c.Query("patient_id"); s != "" {
		parsed, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid patient_id")
			return
		}
		patientID = uint(parsed)
	}

	admissions, err := h.admissionService.ListAdmissions(c.Query("status"), patientID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"admissions": admissions, "count": len(admissions)})
}

// GetAdmission retrieves a single admission
func (h *AdmissionHandler) GetAdmission(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	admission, err := h.admissionService.GetAdmission(id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, admission)
}

type updateAdmissionRequest struct {
	ExpectedDischargeAt *time.Time `json:"expected_discharge_at"`
	Practitioner        *string    `json:"practitioner"`
	Diagnosis           *string    `json:"diagnosis"`
	PayorType           *string    `json:"payor_type"`
	PayorReference      *string    `json:"payor_reference"`
}

// UpdateAdmission mutates admission metadata only
func (h *AdmissionHandler) UpdateAdmission(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateAdmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	admission, err := h.admissionService.UpdateAdmission(id, service.UpdateAdmissionInput{
		ExpectedDischargeAt: req.ExpectedDischargeAt,
		Practitioner:        req.Practitioner,
		Diagnosis:           req.Diagnosis,
		PayorType:           req.PayorType,
		PayorReference:      req.PayorReference,
	}, actorID(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, admission)
}

type dischargeRequest struct {
	DischargedAt *time.Time `json:"discharged_at"`
}

// DischargeAdmission ends an admitted stay and releases its bed
func (h *AdmissionHandler) DischargeAdmission(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dischargeRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	admission, err := h.admissionService.DischargeAdmission(id, req.DischargedAt, actorID(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, admission)
}

// CancelAdmission cancels an admitted stay and releases its bed
func (h *AdmissionHandler) CancelAdmission(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	admission, err := h.admissionService.CancelAdmission(id, actorID(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, admission)
}
