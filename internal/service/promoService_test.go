package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gateon/ticketing/internal/database/memory"
	"github.com/gateon/ticketing/internal/entity"
	"github.com/gateon/ticketing/pkg/lock"
)

// testEnv собирает сервисы поверх in-memory репозиториев
type testEnv struct {
	promoRepo   *memory.PromoRepository
	eventRepo   *memory.EventRepository
	bookingRepo *memory.BookingRepository

	promos   PromoService
	pricing  PricingService
	events   EventService
	bookings BookingService
	checkin  CheckinService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	promoRepo := memory.NewPromoRepository()
	eventRepo := memory.NewEventRepository()
	bookingRepo := memory.NewBookingRepository(eventRepo)

	promos := NewPromoService(promoRepo, logger)
	events := NewEventService(eventRepo, bookingRepo, nil, logger)
	pricing := NewPricingService(events, promos)

	locks := lock.NewKeyedMutex()
	bookings := NewBookingService(bookingRepo, eventRepo, pricing, nil, locks, 5, logger)
	checkin := NewCheckinService(bookingRepo, nil, locks, logger)

	return &testEnv{
		promoRepo:   promoRepo,
		eventRepo:   eventRepo,
		bookingRepo: bookingRepo,
		promos:      promos,
		pricing:     pricing,
		events:      events,
		bookings:    bookings,
		checkin:     checkin,
	}
}

// seedEvent создает мероприятие с одним типом билета и возвращает их ID
func (e *testEnv) seedEvent(t *testing.T, unitPrice int64, capacity int) (int64, int64) {
	t.Helper()

	ctx := context.Background()
	event, err := e.events.CreateEvent(ctx, &CreateEventRequest{
		Title:    "Go Conference",
		Date:     time.Now().Add(48 * time.Hour),
		Location: "Main Hall",
	})
	require.NoError(t, err)

	ticket, err := e.events.CreateTicket(ctx, &CreateTicketRequest{
		EventID:   event.ID,
		Label:     "Standard",
		UnitPrice: unitPrice,
		Capacity:  capacity,
	})
	require.NoError(t, err)

	return event.ID, ticket.ID
}

// TestAddPromo тестирует создание промокодов с валидацией
func TestAddPromo(t *testing.T) {
	tests := []struct {
		name    string
		req     *AddPromoRequest
		wantErr error
	}{
		{
			name: "valid percent promo",
			req:  &AddPromoRequest{Code: "SAVE10", Kind: "percent", Value: 10},
		},
		{
			name: "valid flat promo",
			req:  &AddPromoRequest{Code: "FLAT200", Kind: "flat", Value: 200},
		},
		{
			name:    "unknown kind",
			req:     &AddPromoRequest{Code: "BAD", Kind: "bogo", Value: 10},
			wantErr: entity.ErrInvalidPromoConfig,
		},
		{
			name:    "percent above 100",
			req:     &AddPromoRequest{Code: "BIG", Kind: "percent", Value: 150},
			wantErr: entity.ErrInvalidPromoConfig,
		},
		{
			name:    "non-positive value",
			req:     &AddPromoRequest{Code: "ZERO", Kind: "flat", Value: 0},
			wantErr: entity.ErrInvalidPromoConfig,
		},
		{
			name:    "blank code",
			req:     &AddPromoRequest{Code: "   ", Kind: "percent", Value: 10},
			wantErr: entity.ErrInvalidPromoConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			promo, err := env.promos.AddPromo(context.Background(), tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, promo.Active)
			assert.NotZero(t, promo.ID)
		})
	}
}

// TestAddPromoNormalizesCode тестирует нормализацию кода при создании
func TestAddPromoNormalizesCode(t *testing.T) {
	env := newTestEnv(t)

	promo, err := env.promos.AddPromo(context.Background(), &AddPromoRequest{
		Code: "  save20 ", Kind: "percent", Value: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", promo.Code)
}

// TestAddPromoDuplicate тестирует запрет дубликатов среди активных кодов
func TestAddPromoDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.promos.AddPromo(ctx, &AddPromoRequest{Code: "SAVE10", Kind: "percent", Value: 10})
	require.NoError(t, err)

	// Дубликат в другом регистре тоже отклоняется
	_, err = env.promos.AddPromo(ctx, &AddPromoRequest{Code: "save10", Kind: "flat", Value: 100})
	assert.ErrorIs(t, err, entity.ErrDuplicateCode)

	// После деактивации код можно завести заново
	require.NoError(t, env.promos.DeactivatePromo(ctx, "SAVE10"))

	_, err = env.promos.AddPromo(ctx, &AddPromoRequest{Code: "SAVE10", Kind: "flat", Value: 100})
	assert.NoError(t, err)
}

// TestFindPromo тестирует поиск без ошибки на отсутствующем коде
func TestFindPromo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.promos.AddPromo(ctx, &AddPromoRequest{Code: "SAVE20", Kind: "percent", Value: 20})
	require.NoError(t, err)

	// Поиск нечувствителен к регистру и пробелам
	promo, err := env.promos.FindPromo(ctx, " save20 ")
	require.NoError(t, err)
	require.NotNil(t, promo)
	assert.Equal(t, "SAVE20", promo.Code)

	// Отсутствующий код не является ошибкой
	promo, err = env.promos.FindPromo(ctx, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, promo)

	// Деактивированный код не находится
	require.NoError(t, env.promos.DeactivatePromo(ctx, "SAVE20"))
	promo, err = env.promos.FindPromo(ctx, "SAVE20")
	require.NoError(t, err)
	assert.Nil(t, promo)
}

// TestApplyPromo тестирует строгий вариант поиска
func TestApplyPromo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.promos.AddPromo(ctx, &AddPromoRequest{Code: "SAVE20", Kind: "percent", Value: 20})
	require.NoError(t, err)

	promo, err := env.promos.ApplyPromo(ctx, "save20")
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", promo.Code)

	_, err = env.promos.ApplyPromo(ctx, "NOPE")
	assert.ErrorIs(t, err, entity.ErrPromoNotFound)
}

// TestDeactivatePromoIdempotent тестирует идемпотентность деактивации
func TestDeactivatePromoIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.NoError(t, env.promos.DeactivatePromo(ctx, "MISSING"))

	_, err := env.promos.AddPromo(ctx, &AddPromoRequest{Code: "SAVE10", Kind: "percent", Value: 10})
	require.NoError(t, err)

	assert.NoError(t, env.promos.DeactivatePromo(ctx, "SAVE10"))
	assert.NoError(t, env.promos.DeactivatePromo(ctx, "SAVE10"))
}
