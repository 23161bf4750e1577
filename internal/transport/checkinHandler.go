package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gateon/ticketing/internal/service"
)

type CheckinHandler struct {
	checkinService service.CheckinService
}

func NewCheckinHandler(checkinService service.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkinService: checkinService}
}

// CheckIn гасит билет по коду сканирования
func (h *CheckinHandler) CheckIn(c *gin.Context) {
	var req service.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: err.Error()})
		return
	}

	booking, err := h.checkinService.CheckIn(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "booking checked in",
		Data:    booking,
	})
}

// Resolve возвращает бронь по коду без изменения состояния, для предпросмотра на воротах
func (h *CheckinHandler) Resolve(c *gin.Context) {
	booking, err := h.checkinService.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}
