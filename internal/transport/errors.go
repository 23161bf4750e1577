package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gateon/ticketing/internal/entity"
)

// SuccessResponse представляет успешный ответ
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// statusForError сопоставляет доменные ошибки HTTP-статусам
func statusForError(err error) int {
	switch {
	case errors.Is(err, entity.ErrPromoNotFound),
		errors.Is(err, entity.ErrEventNotFound),
		errors.Is(err, entity.ErrTicketNotFound),
		errors.Is(err, entity.ErrBookingNotFound):
		return http.StatusNotFound

	case errors.Is(err, entity.ErrDuplicateCode),
		errors.Is(err, entity.ErrSoldOut),
		errors.Is(err, entity.ErrAlreadyCancelled),
		errors.Is(err, entity.ErrAlreadyCheckedIn),
		errors.Is(err, entity.ErrWrongStatus),
		errors.Is(err, entity.ErrEventMismatch):
		return http.StatusConflict

	case errors.Is(err, entity.ErrInvalidPromoConfig),
		errors.Is(err, entity.ErrInvalidQuantity),
		errors.Is(err, entity.ErrInvalidPrice),
		errors.Is(err, entity.ErrEventDatePast),
		errors.Is(err, entity.ErrInvalidInput):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), ErrorResponse{
		Success: false,
		Error:   err.Error(),
	})
}
