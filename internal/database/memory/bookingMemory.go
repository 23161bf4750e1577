package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gateon/ticketing/internal/entity"
)

type BookingRepository struct {
	mu       sync.RWMutex
	bookings []*entity.Booking
	tickets  *EventRepository
}

// NewBookingRepository принимает репозиторий событий, чтобы проверять
// вместимость билетов при создании брони так же, как это делает postgres.
func NewBookingRepository(tickets *EventRepository) *BookingRepository {
	return &BookingRepository{tickets: tickets}
}

func (r *BookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, err := r.tickets.GetTicket(ctx, booking.TicketID)
	if err != nil {
		return err
	}

	if ticket.CapacityTracked() {
		sold := r.sumConfirmedLocked(booking.EventID, booking.TicketID)
		if sold+booking.Quantity > ticket.Capacity {
			return entity.ErrSoldOut
		}
	}

	now := time.Now()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now

	stored := *booking
	r.bookings = append(r.bookings, &stored)
	return nil
}

func (r *BookingRepository) GetByID(_ context.Context, id string) (*entity.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookings {
		if b.ID == id {
			found := *b
			return &found, nil
		}
	}
	return nil, entity.ErrBookingNotFound
}

func (r *BookingRepository) GetByTicketCode(_ context.Context, code string) (*entity.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookings {
		if b.TicketCode == code {
			found := *b
			return &found, nil
		}
	}
	return nil, entity.ErrBookingNotFound
}

func (r *BookingRepository) UpdateStatus(_ context.Context, id string, status entity.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.ID == id {
			b.Status = status
			b.UpdatedAt = time.Now()
			return nil
		}
	}
	return entity.ErrBookingNotFound
}

func (r *BookingRepository) SetCheckedIn(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.ID == id {
			if b.CheckedInAt != nil {
				return entity.ErrAlreadyCheckedIn
			}
			stamp := at
			b.CheckedInAt = &stamp
			b.UpdatedAt = time.Now()
			return nil
		}
	}
	return entity.ErrBookingNotFound
}

func (r *BookingRepository) GetByEventID(_ context.Context, eventID int64) ([]*entity.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Booking, 0)
	for _, b := range r.bookings {
		if b.EventID == eventID {
			found := *b
			out = append(out, &found)
		}
	}
	return out, nil
}

func (r *BookingRepository) GetByAttendeeEmail(_ context.Context, email string) ([]*entity.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Booking, 0)
	for _, b := range r.bookings {
		if strings.EqualFold(b.Attendee.Email, email) {
			found := *b
			out = append(out, &found)
		}
	}
	return out, nil
}

func (r *BookingRepository) GetAll(_ context.Context) ([]*entity.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		found := *b
		out = append(out, &found)
	}
	return out, nil
}

func (r *BookingRepository) SumConfirmedQuantity(_ context.Context, eventID, ticketID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sumConfirmedLocked(eventID, ticketID), nil
}

func (r *BookingRepository) sumConfirmedLocked(eventID, ticketID int64) int {
	total := 0
	for _, b := range r.bookings {
		if b.EventID == eventID && b.TicketID == ticketID && b.Status == entity.StatusConfirmed {
			total += b.Quantity
		}
	}
	return total
}
