package transport

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gateon/ticketing/internal/service"
)

type BookingHandler struct {
	bookingService service.BookingService
	pricingService service.PricingService
}

func NewBookingHandler(bookingService service.BookingService, pricingService service.PricingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		pricingService: pricingService,
	}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: err.Error()})
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookingService.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	booking, err := h.bookingService.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "booking cancelled",
		Data:    booking,
	})
}

// GetAllBookings возвращает страницу бронирований,
// поддерживает фильтры email и status и пагинацию limit/offset
func (h *BookingHandler) GetAllBookings(c *gin.Context) {
	req, ok := listRequestFromQuery(c)
	if !ok {
		return
	}
	req.Email = c.Query("email")

	list, err := h.bookingService.ListBookings(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: list})
}

// GetEventBookings возвращает страницу бронирований мероприятия
func (h *BookingHandler) GetEventBookings(c *gin.Context) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return
	}

	req, ok := listRequestFromQuery(c)
	if !ok {
		return
	}
	req.EventID = eventID

	list, err := h.bookingService.ListBookings(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: list})
}

// listRequestFromQuery читает status, limit и offset из query-параметров
func listRequestFromQuery(c *gin.Context) (*service.ListBookingsRequest, bool) {
	req := &service.ListBookingsRequest{Status: c.Query("status")}

	for param, dst := range map[string]*int{"limit": &req.Limit, "offset": &req.Offset} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		val, err := strconv.Atoi(raw)
		if err != nil || val < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "invalid " + param})
			return nil, false
		}
		*dst = val
	}

	return req, true
}

// GetSoldQuantity возвращает количество проданных мест по паре событие-билет
func (h *BookingHandler) GetSoldQuantity(c *gin.Context) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := parseID(c, "ticket_id")
	if !ok {
		return
	}

	sold, err := h.bookingService.SoldQuantity(c.Request.Context(), eventID, ticketID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event_id":  eventID,
		"ticket_id": ticketID,
		"sold":      sold,
	})
}

// Quote рассчитывает стоимость заказа без создания брони
func (h *BookingHandler) Quote(c *gin.Context) {
	var req service.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: err.Error()})
		return
	}

	quote, err := h.pricingService.Quote(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}
