package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gateon/ticketing/internal/service"
)

type PromoHandler struct {
	promoService service.PromoService
}

func NewPromoHandler(promoService service.PromoService) *PromoHandler {
	return &PromoHandler{promoService: promoService}
}

func (h *PromoHandler) AddPromo(c *gin.Context) {
	var req service.AddPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: err.Error()})
		return
	}

	promo, err := h.promoService.AddPromo(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "promo code created",
		Data:    promo,
	})
}

func (h *PromoHandler) GetAllPromos(c *gin.Context) {
	promos, err := h.promoService.GetAllPromos(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, promos)
}

// GetPromo возвращает активный промокод или 404
func (h *PromoHandler) GetPromo(c *gin.Context) {
	promo, err := h.promoService.ApplyPromo(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, promo)
}

func (h *PromoHandler) DeactivatePromo(c *gin.Context) {
	if err := h.promoService.DeactivatePromo(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "promo code deactivated",
	})
}
