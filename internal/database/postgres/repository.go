package repository

import (
	"context"
	"time"

	"github.com/gateon/ticketing/internal/entity"
)

type PromoRepository interface {
	// Basic operations
	Create(ctx context.Context, promo *entity.PromoCode) error
	GetActiveByCode(ctx context.Context, code string) (*entity.PromoCode, error)
	Deactivate(ctx context.Context, code string) error

	GetAll(ctx context.Context) ([]*entity.PromoCode, error)
}

type EventRepository interface {
	// Event operations
	CreateEvent(ctx context.Context, event *entity.Event) error
	GetEvent(ctx context.Context, id int64) (*entity.Event, error)
	GetAllEvents(ctx context.Context) ([]*entity.Event, error)

	// Ticket operations
	CreateTicket(ctx context.Context, ticket *entity.Ticket) error
	GetTicket(ctx context.Context, id int64) (*entity.Ticket, error)
	GetTicketsByEvent(ctx context.Context, eventID int64) ([]*entity.Ticket, error)
}

type BookingRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, booking *entity.Booking) error
	GetByID(ctx context.Context, id string) (*entity.Booking, error)
	GetByTicketCode(ctx context.Context, code string) (*entity.Booking, error)
	UpdateStatus(ctx context.Context, id string, status entity.BookingStatus) error

	// Check-in: sets checked_in_at exactly once, rejects a second attempt
	SetCheckedIn(ctx context.Context, id string, at time.Time) error

	// Query operations
	GetByEventID(ctx context.Context, eventID int64) ([]*entity.Booking, error)
	GetByAttendeeEmail(ctx context.Context, email string) ([]*entity.Booking, error)
	GetAll(ctx context.Context) ([]*entity.Booking, error)

	// Capacity query: sums quantity over confirmed bookings only
	SumConfirmedQuantity(ctx context.Context, eventID, ticketID int64) (int, error)
}
