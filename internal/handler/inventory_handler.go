package handler

import (
	"net/http"
	"strconv"
	"time"

	"hospital-bed-management/internal/models"
	"hospital-bed-management/internal/service"
	"hospital-bed-management/pkg/utils"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService *service.InventoryService
}

func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

func actorID(c *gin.Context) uint {
	userID, _ := c.Get("userID")
	id, _ := userID.(uint)
	return id
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// --- Wards ---

func (h *InventoryHandler) GetWards(c *gin.Context) {
	wards, err := h.inventoryService.GetAllWards()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"wards": wards, "count": len(wards)})
}

type wardRequest struct {
	Code  string `json:"code" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Floor int    `json:"floor"`
}

func (h *InventoryHandler) CreateWard(c *gin.Context) {
	var req wardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ward, err := h.inventoryService.CreateWard(&models.Ward{
		Code:  req.Code,
		Name:  req.Name,
		Floor: req.Floor,
	}, actorID(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.CreatedResponse(c, ward)
}

func (h *InventoryHandler) UpdateWard(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req wardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ward, err := h.inventoryService.UpdateWard(&models.Ward{
		ID:    id,
		Code:  req.Code,
		Name:  req.Name,
		Floor: req.Floor,
	}, actorID(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, ward)
}

func (h *InventoryHandler) DeleteWard(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.inventoryService.DeleteWard(id, actorID(c)); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.MessageResponse(c, "Ward deleted")
}

// --- Rooms ---

func (h *InventoryHandler) GetRooms(c *gin.Context) {
	var wardID uint
	if s := c.Query("ward_id"); s != "" {
		parsed, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid ward_id")
			return
		}
		wardID = uint(parsed)
	}

	rooms, err := h.inventoryService.GetRooms(wardID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"rooms": rooms, "count": len(rooms)})
}

type roomRequest struct {
	WardID   uint   `json:"ward_id" binding:"required"`
	Number   string `json:"number" binding:"required"`
	RoomType string `json:"room_type" binding:"required"`
}

func (h *InventoryHandler) CreateRoom(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	room, err := h.inventoryService.CreateRoom(&models.Room{
		WardID:   req.WardID,
		Number:   req.Number,
		RoomType: req.RoomType,
	}, actorID(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.CreatedResponse(c, room)
}

func (h *InventoryHandler) UpdateRoom(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	room, err := h.inventoryService.UpdateRoom(&models.Room{
		ID:       id,
		WardID:   req.WardID,
		Number:   req.Number,
		RoomType: req.RoomType,
	}, actorID(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, room)
}

func (h *InventoryHandler) DeleteRoom(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.inventoryService.DeleteRoom(id, actorID(c)); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.MessageResponse(c, "Room deleted")
}

// --- Beds ---

func (h *InventoryHandler) GetBeds(c *gin.Context) {
	var roomID uint
	if s := c.Query("room_id"); s != "" {
		parsed, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid room_id")
			return
		}
		roomID = uint(parsed)
	}

	beds, err := h.inventoryService.GetBeds(roomID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"beds": beds, "count": len(beds)})
}

type bedRequest struct {
	RoomID uint   `json:"room_id" binding:"required"`
	Code   string `json:"code" binding:"required"`
	Note   string `json:"note"`
}

func (h *InventoryHandler) CreateBed(c *gin.Context) {
	var req bedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	bed, err := h.inventoryService.CreateBed(&models.Bed{
		RoomID: req.RoomID,
		Code:   req.Code,
		Note:   req.Note,
	}, actorID(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.CreatedResponse(c, bed)
}

func (h *InventoryHandler) UpdateBed(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req bedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	bed, err := h.inventoryService.UpdateBed(&models.Bed{
		ID:     id,
		RoomID: req.RoomID,
		Code:   req.Code,
		Note:   req.Note,
	}, actorID(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, bed)
}

func (h *InventoryHandler) DeleteBed(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.inventoryService.DeleteBed(id, actorID(c)); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.MessageResponse(c, "Bed deleted")
}

type setBedStateRequest struct {
	State         string     `json:"state" binding:"required"`
	ReservedUntil *time.Time `json:"reserved_until"`
	Note          string     `json:"note"`
}

// SetBedState applies a manual bed state override outside the transfer
// workflow
func (h *InventoryHandler) SetBedState(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req setBedStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	bed, err := h.inventoryService.SetBedState(id, req.State, req.ReservedUntil, req.Note, actorID(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, bed)
}

// --- Bed rates ---

func (h *InventoryHandler) GetBedRates(c *gin.Context) {
	rates, err := h.inventoryService.GetAllRates()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"rates": rates, "count": len(rates)})
}

type bedRateRequest struct {
	RoomType      string    `json:"room_type" binding:"required"`
	DailyRate     float64   `json:"daily_rate"`
	EffectiveFrom time.Time `json:"effective_from" binding:"required"`
	EffectiveTo   time.Time `json:"effective_to" binding:"required"`
}

func (h *InventoryHandler) CreateBedRate(c *gin.Context) {
	var req bedRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rate, err := h.inventoryService.CreateRate(&models.BedRate{
		RoomType:      req.RoomType,
		DailyRate:     req.DailyRate,
		EffectiveFrom: req.EffectiveFrom,
		EffectiveTo:   req.EffectiveTo,
	}, actorID(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.CreatedResponse(c, rate)
}
