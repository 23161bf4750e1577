package service

import (
	"context"

	"github.com/gateon/ticketing/internal/entity"
	"github.com/gateon/ticketing/internal/pricing"
)

// PromoService определяет интерфейс для операций с промокодами
type PromoService interface {
	// Основные операции
	AddPromo(ctx context.Context, req *AddPromoRequest) (*entity.PromoCode, error)
	DeactivatePromo(ctx context.Context, code string) error
	GetAllPromos(ctx context.Context) ([]*entity.PromoCode, error)

	// Поиск: FindPromo возвращает (nil, nil), если кода нет,
	// ApplyPromo в этом случае возвращает ошибку
	FindPromo(ctx context.Context, code string) (*entity.PromoCode, error)
	ApplyPromo(ctx context.Context, code string) (*entity.PromoCode, error)
}

// PricingService определяет интерфейс расчета стоимости
type PricingService interface {
	Quote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error)
	PriceOrder(ctx context.Context, ticket *entity.Ticket, quantity int, promoCode string) (*pricing.Quote, *entity.PromoCode, error)
}

// EventService определяет интерфейс для операций с мероприятиями и билетами
type EventService interface {
	// Основные операции
	CreateEvent(ctx context.Context, req *CreateEventRequest) (*entity.Event, error)
	GetEvent(ctx context.Context, id int64) (*entity.EventWithTickets, error)
	GetAllEvents(ctx context.Context) ([]*entity.Event, error)
	CreateTicket(ctx context.Context, req *CreateTicketRequest) (*entity.Ticket, error)
	GetTicket(ctx context.Context, id int64) (*entity.Ticket, error)

	// Аналитика
	GetEventStats(ctx context.Context, eventID int64) (*entity.EventSalesStats, error)
	RefreshEventStats(ctx context.Context, eventID int64) (*entity.EventSalesStats, error)
}

// BookingService определяет интерфейс для операций с бронированиями
type BookingService interface {
	// Основные операции
	CreateBooking(ctx context.Context, req *CreateBookingRequest) (*entity.Booking, error)
	CancelBooking(ctx context.Context, id string) (*entity.Booking, error)
	GetBooking(ctx context.Context, id string) (*entity.Booking, error)

	// Списки: ListBookings отдает страницу с метаданными пагинации,
	// остальные методы возвращают выборки целиком
	ListBookings(ctx context.Context, req *ListBookingsRequest) (*BookingList, error)
	GetEventBookings(ctx context.Context, eventID int64) ([]*entity.Booking, error)
	GetAttendeeBookings(ctx context.Context, email string) ([]*entity.Booking, error)
	GetAllBookings(ctx context.Context) ([]*entity.Booking, error)

	// Утилиты
	SoldQuantity(ctx context.Context, eventID, ticketID int64) (int, error)
}

// CheckinService определяет интерфейс валидации входа по брони
type CheckinService interface {
	// Resolve находит бронь по коду билета или идентификатору без изменения состояния
	Resolve(ctx context.Context, code string) (*entity.Booking, error)
	CheckIn(ctx context.Context, req *CheckInRequest) (*entity.Booking, error)
}
