package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gateon/ticketing/internal/entity"
)

func validBookingRequest(eventID, ticketID int64) *CreateBookingRequest {
	return &CreateBookingRequest{
		EventID:  eventID,
		TicketID: ticketID,
		Quantity: 1,
		Name:     "Ivan Petrov",
		Email:    "ivan@example.com",
		Phone:    "+7-900-000-00-00",
	}
}

// TestCreateBooking тестирует создание брони с замороженной ценой
func TestCreateBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eventID, ticketID := env.seedEvent(t, 500, 100)

	_, err := env.promos.AddPromo(ctx, &AddPromoRequest{Code: "SAVE10", Kind: "percent", Value: 10})
	require.NoError(t, err)

	req := validBookingRequest(eventID, ticketID)
	req.Quantity = 5
	req.PromoCode = "save10"

	booking, err := env.bookings.CreateBooking(ctx, req)
	require.NoError(t, err)

	assert.NotEmpty(t, booking.ID)
	assert.True(t, strings.HasPrefix(booking.TicketCode, "TKT-"))
	assert.Equal(t, entity.StatusConfirmed, booking.Status)
	assert.Nil(t, booking.CheckedInAt)
	assert.Equal(t, entity.DeliveryEmail, booking.Delivery)

	// 500*5=2500, скидка 10% = 250, групповой скидки нет
	assert.Equal(t, int64(500), booking.Pricing.UnitPrice)
	assert.Equal(t, int64(2500), booking.Pricing.BaseTotal)
	assert.Equal(t, int64(250), booking.Pricing.PromoDiscount)
	assert.Equal(t, int64(0), booking.Pricing.GroupDiscount)
	assert.Equal(t, int64(250), booking.Pricing.TotalDiscount)
	assert.Equal(t, int64(2250), booking.Pricing.Total)
	assert.Equal(t, "SAVE10", booking.Pricing.PromoCode)
}

// TestCreateBookingFrozenPricing тестирует, что цена брони не пересчитывается
func TestCreateBookingFrozenPricing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eventID, ticketID := env.seedEvent(t, 1000, 100)

	_, err := env.promos.AddPromo(ctx, &AddPromoRequest{Code: "SAVE20", Kind: "percent", Value: 20})
	require.NoError(t, err)

	req := validBookingRequest(eventID, ticketID)
	req.PromoCode = "SAVE20"

	booking, err := env.bookings.CreateBooking(ctx, req)
	require.NoError(t, err)
	require.Equal(t, int64(800), booking.Pricing.Total)

	// Деактивация промокода не меняет уже созданную бронь
	require.NoError(t, env.promos.DeactivatePromo(ctx, "SAVE20"))

	stored, err := env.bookings.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(800), stored.Pricing.Total)
	assert.Equal(t, "SAVE20", stored.Pricing.PromoCode)
}

// TestCreateBookingUnknownPromo тестирует, что несуществующий код просто не дает скидки
func TestCreateBookingUnknownPromo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eventID, ticketID := env.seedEvent(t, 500, 100)

	req := validBookingRequest(eventID, ticketID)
	req.PromoCode = "NOPE"

	booking, err := env.bookings.CreateBooking(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(500), booking.Pricing.Total)
	assert.Empty(t, booking.Pricing.PromoCode)
}

// TestCreateBookingValidation тестирует ошибки валидации при создании
func TestCreateBookingValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eventID, ticketID := env.seedEvent(t, 500, 100)

	tests := []struct {
		name    string
		mutate  func(req *CreateBookingRequest)
		wantErr error
	}{
		{
			name:    "zero quantity",
			mutate:  func(req *CreateBookingRequest) { req.Quantity = 0 },
			wantErr: entity.ErrInvalidQuantity,
		},
		{
			name:    "negative quantity",
			mutate:  func(req *CreateBookingRequest) { req.Quantity = -2 },
			wantErr: entity.ErrInvalidQuantity,
		},
		{
			name:    "quantity above per-attendee limit",
			mutate:  func(req *CreateBookingRequest) { req.Quantity = 6 },
			wantErr: entity.ErrInvalidQuantity,
		},
		{
			name:    "blank attendee name",
			mutate:  func(req *CreateBookingRequest) { req.Name = "  " },
			wantErr: entity.ErrInvalidInput,
		},
		{
			name:    "unknown delivery mode",
			mutate:  func(req *CreateBookingRequest) { req.Delivery = "pigeon" },
			wantErr: entity.ErrInvalidInput,
		},
		{
			name:    "unknown ticket",
			mutate:  func(req *CreateBookingRequest) { req.TicketID = 999 },
			wantErr: entity.ErrTicketNotFound,
		},
		{
			name:    "unknown event",
			mutate:  func(req *CreateBookingRequest) { req.EventID = 999 },
			wantErr: entity.ErrEventNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validBookingRequest(eventID, ticketID)
			tt.mutate(req)

			_, err := env.bookings.CreateBooking(ctx, req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestCreateBookingTicketFromOtherEvent тестирует несоответствие билета мероприятию
func TestCreateBookingTicketFromOtherEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eventID, _ := env.seedEvent(t, 500, 100)
	_, otherTicketID := env.seedEvent(t, 700, 100)

	req := validBookingRequest(eventID, otherTicketID)
	_, err := env.bookings.CreateBooking(ctx, req)
	assert.ErrorIs(t, err, entity.ErrEventMismatch)
}

// TestCreateBookingPastEvent тестирует запрет брони на прошедшее мероприятие
func TestCreateBookingPastEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	event := &entity.Event{Title: "Old Meetup", Date: time.Now().Add(-24 * time.Hour)}
	require.NoError(t, env.eventRepo.CreateEvent(ctx, event))

	ticket := &entity.Ticket{EventID: event.ID, Label: "Standard", UnitPrice: 500, Capacity: 10}
	require.NoError(t, env.eventRepo.CreateTicket(ctx, ticket))

	_, err := env.bookings.CreateBooking(ctx, validBookingRequest(event.ID, ticket.ID))
	assert.ErrorIs(t, err, entity.ErrEventDatePast)
}

// TestCreateBookingSoldOut тестирует контроль вместимости
func TestCreateBookingSoldOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eventID, ticketID := env.seedEvent(t, 500, 5)

	// Вместимость проверяется раньше лимита на посетителя
	req := validBookingRequest(eventID, ticketID)
	req.Quantity = 6
	_, err := env.bookings.CreateBooking(ctx, req)
	assert.ErrorIs(t, err, entity.ErrSoldOut)

	req = validBookingRequest(eventID, ticketID)
	req.Quantity = 4
	_, err = env.bookings.CreateBooking(ctx, req)
	require.NoError(t, err)

	// Осталось 1 место, запрос на 2 отклоняется
	req = validBookingRequest(eventID, ticketID)
	req.Quantity = 2
	_, err = env.bookings.CreateBooking(ctx, req)
	assert.ErrorIs(t, err, entity.ErrSoldOut)

	req = validBookingRequest(eventID, ticketID)
	req.Quantity = 1
	_, err = env.bookings.CreateBooking(ctx, req)
	assert.NoError(t, err)
}

// TestCreateBookingUntrackedCapacity тестирует билет без ограничения вместимости
func TestCreateBookingUntrackedCapacity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eventID, ticketID := env.seedEvent(t, 500, 0)

	for i := 0; i < 10; i++ {
		req := validBookingRequest(eventID, ticketID)
		req.Quantity = 5
		_, err := env.bookings.CreateBooking(ctx, req)
		require.NoError(t, err)
	}

	sold, err := env.bookings.SoldQuantity(ctx, eventID, ticketID)
	require.NoError(t, err)
	assert.Equal(t, 50, sold)
}

// TestCancelBooking тестирует отмену и освобождение мест
func TestCancelBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eventID, ticketID := env.seedEvent(t, 500, 5)

	req := validBookingRequest(eventID, ticketID)
	req.Quantity = 5
	booking, err := env.bookings.CreateBooking(ctx, req)
	require.NoError(t, err)

	sold, err := env.bookings.SoldQuantity(ctx, eventID, ticketID)
	require.NoError(t, err)
	require.Equal(t, 5, sold)

	cancelled, err := env.bookings.CancelBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, cancelled.Status)

	// Отмена освобождает места, но не трогает зафиксированную цену
	sold, err = env.bookings.SoldQuantity(ctx, eventID, ticketID)
	require.NoError(t, err)
	assert.Equal(t, 0, sold)
	assert.Equal(t, int64(2500), cancelled.Pricing.Total)

	req = validBookingRequest(eventID, ticketID)
	req.Quantity = 5
	_, err = env.bookings.CreateBooking(ctx, req)
	assert.NoError(t, err)

	// Повторная отмена не идемпотентна
	_, err = env.bookings.CancelBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, entity.ErrAlreadyCancelled)

	_, err = env.bookings.CancelBooking(ctx, "missing-id")
	assert.ErrorIs(t, err, entity.ErrBookingNotFound)
}

// TestConcurrentBookingNearCapacity тестирует отсутствие перепродажи под нагрузкой
func TestConcurrentBookingNearCapacity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eventID, ticketID := env.seedEvent(t, 500, 10)

	const workers = 30

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := validBookingRequest(eventID, ticketID)
			req.Quantity = 2
			if _, err := env.bookings.CreateBooking(ctx, req); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, created)

	sold, err := env.bookings.SoldQuantity(ctx, eventID, ticketID)
	require.NoError(t, err)
	assert.Equal(t, 10, sold)
}

// TestGetAttendeeBookings тестирует выборку по email посетителя
func TestGetAttendeeBookings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eventID, ticketID := env.seedEvent(t, 500, 100)

	req := validBookingRequest(eventID, ticketID)
	_, err := env.bookings.CreateBooking(ctx, req)
	require.NoError(t, err)

	other := validBookingRequest(eventID, ticketID)
	other.Email = "other@example.com"
	_, err = env.bookings.CreateBooking(ctx, other)
	require.NoError(t, err)

	bookings, err := env.bookings.GetAttendeeBookings(ctx, "IVAN@example.com")
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

// TestListBookings тестирует фильтр по статусу и пагинацию списка
func TestListBookings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eventID, ticketID := env.seedEvent(t, 500, 100)

	var cancelledID string
	for i := 0; i < 5; i++ {
		booking, err := env.bookings.CreateBooking(ctx, validBookingRequest(eventID, ticketID))
		require.NoError(t, err)
		if i == 0 {
			cancelledID = booking.ID
		}
	}
	_, err := env.bookings.CancelBooking(ctx, cancelledID)
	require.NoError(t, err)

	// Без фильтров: все брони, лимит по умолчанию
	list, err := env.bookings.ListBookings(ctx, &ListBookingsRequest{EventID: eventID})
	require.NoError(t, err)
	assert.Equal(t, 5, list.Total)
	assert.Len(t, list.Bookings, 5)
	assert.Equal(t, 50, list.Limit)

	// Фильтр по статусу, регистр не важен
	list, err = env.bookings.ListBookings(ctx, &ListBookingsRequest{EventID: eventID, Status: "Cancelled"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Bookings, 1)
	assert.Equal(t, cancelledID, list.Bookings[0].ID)

	// Пагинация: Total считается до среза страницы
	list, err = env.bookings.ListBookings(ctx, &ListBookingsRequest{EventID: eventID, Status: "confirmed", Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, list.Total)
	assert.Len(t, list.Bookings, 2)
	assert.Equal(t, 2, list.Limit)
	assert.Equal(t, 2, list.Offset)

	// Смещение за пределами выборки дает пустую страницу
	list, err = env.bookings.ListBookings(ctx, &ListBookingsRequest{EventID: eventID, Offset: 100})
	require.NoError(t, err)
	assert.Equal(t, 5, list.Total)
	assert.Empty(t, list.Bookings)

	// Фильтр по email посетителя
	list, err = env.bookings.ListBookings(ctx, &ListBookingsRequest{Email: "IVAN@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 5, list.Total)

	_, err = env.bookings.ListBookings(ctx, &ListBookingsRequest{EventID: eventID, Status: "refunded"})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}
