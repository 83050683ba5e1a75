package handler

import (
	"net/http"
	"time"

	"hospital-bed-management/internal/service"
	"hospital-bed-management/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ChargeHandler struct {
	chargeService *service.ChargeService
}

func NewChargeHandler(chargeService *service.ChargeService) *ChargeHandler {
	return &ChargeHandler{
		chargeService: chargeService,
	}
}

// PreviewBedCharges prices the admission's occupancy timeline over an
// optional date range
func (h *ChargeHandler) PreviewBedCharges(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	from, ok := parseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return
	}

	preview, err := h.chargeService.PreviewBedCharges(id, from, to)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, preview)
}

func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	s := c.Query(name)
	if s == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name+" date, expected YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}
