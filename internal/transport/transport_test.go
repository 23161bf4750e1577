package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gateon/ticketing/internal/database/memory"
	"github.com/gateon/ticketing/internal/entity"
	"github.com/gateon/ticketing/internal/service"
	"github.com/gateon/ticketing/pkg/lock"
)

// newTestRouter собирает полный HTTP-стек поверх in-memory репозиториев
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	promoRepo := memory.NewPromoRepository()
	eventRepo := memory.NewEventRepository()
	bookingRepo := memory.NewBookingRepository(eventRepo)

	promoService := service.NewPromoService(promoRepo, logger)
	eventService := service.NewEventService(eventRepo, bookingRepo, nil, logger)
	pricingService := service.NewPricingService(eventService, promoService)

	locks := lock.NewKeyedMutex()
	bookingService := service.NewBookingService(bookingRepo, eventRepo, pricingService, nil, locks, 5, logger)
	checkinService := service.NewCheckinService(bookingRepo, nil, locks, logger)

	return InitRoutes(
		NewPromoHandler(promoService),
		NewEventHandler(eventService),
		NewBookingHandler(bookingService, pricingService),
		NewCheckinHandler(checkinService),
	)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// seedEventHTTP создает мероприятие и билет через API
func seedEventHTTP(t *testing.T, router *gin.Engine, unitPrice int64, capacity int) (int64, int64) {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/v1/events", gin.H{
		"title": "Go Conference",
		"date":  time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var event entity.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &event))

	// Мероприятие билета определяется путем запроса, не телом
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/tickets", event.ID), gin.H{
		"label":      "Standard",
		"unit_price": unitPrice,
		"capacity":   capacity,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var ticket entity.Ticket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticket))

	return event.ID, ticket.ID
}

func bookingPayload(eventID, ticketID int64, quantity int) gin.H {
	return gin.H{
		"event_id":  eventID,
		"ticket_id": ticketID,
		"quantity":  quantity,
		"name":      "Ivan Petrov",
		"email":     "ivan@example.com",
		"phone":     "+7-900-000-00-00",
	}
}

// TestBookingFlowHTTP тестирует полный цикл: бронь, вход, повторный вход
func TestBookingFlowHTTP(t *testing.T) {
	router := newTestRouter(t)
	eventID, ticketID := seedEventHTTP(t, router, 500, 10)

	w := doJSON(t, router, http.MethodPost, "/api/v1/promos", gin.H{
		"code": "SAVE10", "kind": "percent", "value": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	payload := bookingPayload(eventID, ticketID, 2)
	payload["promo_code"] = "save10"
	w = doJSON(t, router, http.MethodPost, "/api/v1/bookings", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	var booking entity.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
	assert.Equal(t, int64(900), booking.Pricing.Total)

	// Вход по коду билета
	w = doJSON(t, router, http.MethodPost, "/api/v1/checkin", gin.H{
		"scan_code":         booking.TicketCode,
		"expected_event_id": eventID,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Повторный вход отклоняется
	w = doJSON(t, router, http.MethodPost, "/api/v1/checkin", gin.H{
		"scan_code": booking.TicketCode,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

// TestBookingErrorsHTTP тестирует коды ответов на доменные ошибки
func TestBookingErrorsHTTP(t *testing.T) {
	router := newTestRouter(t)
	eventID, ticketID := seedEventHTTP(t, router, 500, 3)

	// Превышение вместимости
	w := doJSON(t, router, http.MethodPost, "/api/v1/bookings", bookingPayload(eventID, ticketID, 4))
	assert.Equal(t, http.StatusConflict, w.Code)

	// Неизвестная бронь
	w = doJSON(t, router, http.MethodGet, "/api/v1/bookings/missing-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Неизвестный код сканирования
	w = doJSON(t, router, http.MethodPost, "/api/v1/checkin", gin.H{"scan_code": "TKT-FFFFFFFF"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Дубликат промокода
	w = doJSON(t, router, http.MethodPost, "/api/v1/promos", gin.H{"code": "X", "kind": "flat", "value": 100})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/v1/promos", gin.H{"code": "x", "kind": "flat", "value": 50})
	assert.Equal(t, http.StatusConflict, w.Code)
}

// TestCancelBookingHTTP тестирует отмену через DELETE
func TestCancelBookingHTTP(t *testing.T) {
	router := newTestRouter(t)
	eventID, ticketID := seedEventHTTP(t, router, 500, 10)

	w := doJSON(t, router, http.MethodPost, "/api/v1/bookings", bookingPayload(eventID, ticketID, 2))
	require.Equal(t, http.StatusCreated, w.Code)

	var booking entity.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))

	w = doJSON(t, router, http.MethodDelete, "/api/v1/bookings/"+booking.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Повторная отмена не идемпотентна
	w = doJSON(t, router, http.MethodDelete, "/api/v1/bookings/"+booking.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Отмененный билет не проходит на входе
	w = doJSON(t, router, http.MethodPost, "/api/v1/checkin", gin.H{"scan_code": booking.TicketCode})
	assert.Equal(t, http.StatusConflict, w.Code)
}

// TestCreateTicketHTTP тестирует, что билет привязывается к мероприятию из пути
func TestCreateTicketHTTP(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/events", gin.H{
		"title": "Go Conference",
		"date":  time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var event entity.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &event))

	// Тело без event_id, чужой event_id в теле игнорируется
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/tickets", event.ID), gin.H{
		"event_id":   event.ID + 100,
		"label":      "VIP",
		"unit_price": 1500,
		"capacity":   20,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var ticket entity.Ticket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticket))
	assert.Equal(t, event.ID, ticket.EventID)
}

// TestListBookingsHTTP тестирует конверт списка с метаданными пагинации
func TestListBookingsHTTP(t *testing.T) {
	router := newTestRouter(t)
	eventID, ticketID := seedEventHTTP(t, router, 500, 100)

	var cancelledID string
	for i := 0; i < 3; i++ {
		w := doJSON(t, router, http.MethodPost, "/api/v1/bookings", bookingPayload(eventID, ticketID, 1))
		require.Equal(t, http.StatusCreated, w.Code)

		var booking entity.Booking
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
		cancelledID = booking.ID
	}
	w := doJSON(t, router, http.MethodDelete, "/api/v1/bookings/"+cancelledID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	type listEnvelope struct {
		Success bool                `json:"success"`
		Data    service.BookingList `json:"data"`
	}

	// Список по мероприятию со статусом и пагинацией
	path := fmt.Sprintf("/api/v1/events/%d/bookings?status=confirmed&limit=1&offset=1", eventID)
	w = doJSON(t, router, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope listEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, 2, envelope.Data.Total)
	assert.Len(t, envelope.Data.Bookings, 1)
	assert.Equal(t, 1, envelope.Data.Limit)
	assert.Equal(t, 1, envelope.Data.Offset)

	// Список по email посетителя
	w = doJSON(t, router, http.MethodGet, "/api/v1/bookings?email=ivan@example.com&status=cancelled", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Bookings, 1)
	assert.Equal(t, cancelledID, envelope.Data.Bookings[0].ID)

	// Неизвестный статус и нечисловой limit отклоняются
	w = doJSON(t, router, http.MethodGet, "/api/v1/bookings?status=refunded", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, router, http.MethodGet, "/api/v1/bookings?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestQuoteHTTP тестирует расчет стоимости без брони
func TestQuoteHTTP(t *testing.T) {
	router := newTestRouter(t)
	_, ticketID := seedEventHTTP(t, router, 500, 100)

	w := doJSON(t, router, http.MethodPost, "/api/v1/promos", gin.H{
		"code": "SAVE10", "kind": "percent", "value": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/pricing/quote", gin.H{
		"ticket_id":  ticketID,
		"quantity":   6,
		"promo_code": "SAVE10",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var quote service.QuoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, int64(3000), quote.BaseTotal)
	assert.Equal(t, int64(800), quote.Discount)
	assert.Equal(t, int64(2200), quote.Total)
}

// TestEventStatsHTTP тестирует выдачу статистики мероприятия
func TestEventStatsHTTP(t *testing.T) {
	router := newTestRouter(t)
	eventID, ticketID := seedEventHTTP(t, router, 500, 10)

	w := doJSON(t, router, http.MethodPost, "/api/v1/bookings", bookingPayload(eventID, ticketID, 3))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/events/%d/stats", eventID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats entity.EventSalesStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.ConfirmedBookings)
	assert.Equal(t, int64(1500), stats.Revenue)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/events/%d/tickets/%d/sold", eventID, ticketID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sold":3`)
}

// TestHealthHTTP тестирует health endpoint
func TestHealthHTTP(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
