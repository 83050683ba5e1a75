package handler

import (
	"net/http"
	"time"

	"hospital-bed-management/internal/service"
	"hospital-bed-management/pkg/utils"

	"github.com/gin-gonic/gin"
)

type TransferHandler struct {
	transferService *service.TransferService
}

func NewTransferHandler(transferService *service.TransferService) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
	}
}

type requestTransferRequest struct {
	AdmissionID    uint       `json:"admission_id" binding:"required"`
	TransferType   string     `json:"transfer_type" binding:"required"`
	Priority       string     `json:"priority"`
	Reason         string     `json:"reason" binding:"required"`
	RequestNote    string     `json:"request_note"`
	ToBedID        *uint      `json:"to_bed_id"`
	ScheduledAt    *time.Time `json:"scheduled_at"`
	ReserveMinutes int        `json:"reserve_minutes"`
}

// RequestTransfer opens a transfer request for an admission
func (h *TransferHandler) RequestTransfer(c *gin.Context) {
	var req requestTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	transfer, err := h.transferService.RequestTransfer(service.RequestTransferInput{
		AdmissionID:    req.AdmissionID,
		TransferType:   req.TransferType,
		Priority:       req.Priority,
		Reason:         req.Reason,
		RequestNote:    req.RequestNote,
		ToBedID:        req.ToBedID,
		ScheduledAt:    req.ScheduledAt,
		ReserveMinutes: req.ReserveMinutes,
	}, actorID(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.CreatedResponse(c, transfer)
}

// GetTransfer retrieves a single transfer request
func (h *TransferHandler) GetTransfer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	transfer, err := h.transferService.GetTransfer(id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, transfer)
}

// ListTransfersByAdmission retrieves an admission's transfer history
func (h *TransferHandler) ListTransfersByAdmission(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	transfers, err := h.transferService.ListTransfersByAdmission(id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"transfers": transfers, "count": len(transfers)})
}

// ListTransferEvents retrieves the audit trail of a transfer request
func (h *TransferHandler) ListTransferEvents(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	events, err := h.transferService.ListTransferEvents(id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"events": events, "count": len(events)})
}

type approveTransferRequest struct {
	Approve        *bool  `json:"approve" binding:"required"`
	ApprovalNote   string `json:"approval_note"`
	RejectedReason string `json:"rejected_reason"`
}

// ApproveTransfer decides a requested transfer
func (h *TransferHandler) ApproveTransfer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req approveTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	transfer, err := h.transferService.ApproveTransfer(id, *req.Approve, req.ApprovalNote, req.RejectedReason, actorID(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, transfer)
}

type assignBedRequest struct {
	ToBedID        uint       `json:"to_bed_id" binding:"required"`
	ScheduledAt    *time.Time `json:"scheduled_at"`
	ReserveMinutes int        `json:"reserve_minutes"`
}

// AssignTransferBed claims a target bed for an approved transfer
func (h *TransferHandler) AssignTransferBed(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req assignBedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	transfer, err := h.transferService.AssignTransferBed(id, req.ToBedID, req.ScheduledAt, req.ReserveMinutes, actorID(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, transfer)
}

type completeTransferRequest struct {
	VacatedAt  *time.Time             `json:"vacated_at"`
	OccupiedAt *time.Time             `json:"occupied_at"`
	Handover   map[string]interface{} `json:"handover_checklist"`
}

// CompleteTransfer commits the move to the target bed
func (h *TransferHandler) CompleteTransfer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req completeTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	transfer, err := h.transferService.CompleteTransfer(id, req.VacatedAt, req.OccupiedAt, req.Handover, actorID(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, transfer)
}

type cancelTransferRequest struct {
	Reason string `json:"reason"`
}

// CancelTransfer cancels an in-flight transfer
func (h *TransferHandler) CancelTransfer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req cancelTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	transfer, err := h.transferService.CancelTransfer(id, req.Reason, actorID(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, transfer)
}
