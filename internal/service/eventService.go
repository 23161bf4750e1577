package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	repository "github.com/gateon/ticketing/internal/database/postgres"
	"github.com/gateon/ticketing/internal/entity"
	"github.com/gateon/ticketing/internal/pricing"
)

// CreateEventRequest представляет данные для создания мероприятия
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,min=1,max=255"`
	Description string    `json:"description" binding:"max=1000"`
	Date        time.Time `json:"date" binding:"required"`
	Location    string    `json:"location" binding:"max=255"`
}

// CreateTicketRequest представляет данные для создания типа билета.
// Capacity = 0 означает билет без ограничения вместимости.
// EventID берется из пути запроса и в теле игнорируется.
type CreateTicketRequest struct {
	EventID   int64  `json:"-"`
	Label     string `json:"label" binding:"required,min=1,max=255"`
	UnitPrice int64  `json:"unit_price" binding:"min=0"`
	Capacity  int    `json:"capacity" binding:"min=0,max=100000"`
}

// StatsCache кеширует агрегированную статистику продаж.
// Промах кеша возвращает (nil, nil).
type StatsCache interface {
	GetEventStats(ctx context.Context, eventID int64) (*entity.EventSalesStats, error)
	SetEventStats(ctx context.Context, stats *entity.EventSalesStats) error
}

type eventService struct {
	eventRepo   repository.EventRepository
	bookingRepo repository.BookingRepository
	statsCache  StatsCache
	logger      *logrus.Logger
}

// NewEventService создает новый экземпляр EventService.
// statsCache может быть nil, тогда статистика считается на каждый запрос.
func NewEventService(
	eventRepo repository.EventRepository,
	bookingRepo repository.BookingRepository,
	statsCache StatsCache,
	logger *logrus.Logger,
) EventService {
	return &eventService{
		eventRepo:   eventRepo,
		bookingRepo: bookingRepo,
		statsCache:  statsCache,
		logger:      logger,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, req *CreateEventRequest) (*entity.Event, error) {
	if req.Date.Before(time.Now()) {
		return nil, entity.ErrEventDatePast
	}

	event := &entity.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
	}

	if err := s.eventRepo.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"title":    event.Title,
	}).Info("event created")

	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id int64) (*entity.EventWithTickets, error) {
	event, err := s.eventRepo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	tickets, err := s.eventRepo.GetTicketsByEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event tickets: %w", err)
	}

	return &entity.EventWithTickets{
		Event:   *event,
		Tickets: tickets,
	}, nil
}

func (s *eventService) GetAllEvents(ctx context.Context) ([]*entity.Event, error) {
	events, err := s.eventRepo.GetAllEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all events: %w", err)
	}
	return events, nil
}

func (s *eventService) CreateTicket(ctx context.Context, req *CreateTicketRequest) (*entity.Ticket, error) {
	if req.UnitPrice < 0 || req.UnitPrice > pricing.MaxUnitPrice {
		return nil, entity.ErrInvalidPrice
	}

	if _, err := s.eventRepo.GetEvent(ctx, req.EventID); err != nil {
		return nil, err
	}

	ticket := &entity.Ticket{
		EventID:   req.EventID,
		Label:     req.Label,
		UnitPrice: req.UnitPrice,
		Capacity:  req.Capacity,
	}

	if err := s.eventRepo.CreateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"ticket_id": ticket.ID,
		"event_id":  ticket.EventID,
		"label":     ticket.Label,
	}).Info("ticket created")

	return ticket, nil
}

func (s *eventService) GetTicket(ctx context.Context, id int64) (*entity.Ticket, error) {
	ticket, err := s.eventRepo.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// GetEventStats возвращает статистику продаж, по возможности из кеша
func (s *eventService) GetEventStats(ctx context.Context, eventID int64) (*entity.EventSalesStats, error) {
	if s.statsCache != nil {
		stats, err := s.statsCache.GetEventStats(ctx, eventID)
		if err != nil {
			s.logger.WithError(err).WithField("event_id", eventID).Warn("stats cache read failed")
		} else if stats != nil {
			return stats, nil
		}
	}

	return s.RefreshEventStats(ctx, eventID)
}

// RefreshEventStats пересчитывает статистику и обновляет кеш
func (s *eventService) RefreshEventStats(ctx context.Context, eventID int64) (*entity.EventSalesStats, error) {
	stats, err := s.computeEventStats(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if s.statsCache != nil {
		if err := s.statsCache.SetEventStats(ctx, stats); err != nil {
			s.logger.WithError(err).WithField("event_id", eventID).Warn("stats cache write failed")
		}
	}

	return stats, nil
}

func (s *eventService) computeEventStats(ctx context.Context, eventID int64) (*entity.EventSalesStats, error) {
	if _, err := s.eventRepo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	tickets, err := s.eventRepo.GetTicketsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event tickets: %w", err)
	}

	bookings, err := s.bookingRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event bookings: %w", err)
	}

	stats := &entity.EventSalesStats{
		EventID:         eventID,
		TicketBreakdown: make([]*entity.TicketSales, 0, len(tickets)),
		RefreshedAt:     time.Now(),
	}

	soldByTicket := make(map[int64]int)
	for _, b := range bookings {
		stats.TotalBookings++
		switch b.Status {
		case entity.StatusConfirmed:
			stats.ConfirmedBookings++
			stats.ConfirmedQuantity += b.Quantity
			stats.Revenue += b.Pricing.Total
			stats.DiscountsGranted += b.Pricing.TotalDiscount
			soldByTicket[b.TicketID] += b.Quantity
			if b.IsCheckedIn() {
				stats.CheckedInBookings++
			}
		case entity.StatusCancelled:
			stats.CancelledBookings++
			stats.CancelledQuantity += b.Quantity
		}
	}

	for _, t := range tickets {
		sales := &entity.TicketSales{
			TicketID:  t.ID,
			Label:     t.Label,
			UnitPrice: t.UnitPrice,
			Capacity:  t.Capacity,
			Sold:      soldByTicket[t.ID],
			Remaining: -1,
		}
		if t.CapacityTracked() {
			sales.Remaining = t.Capacity - sales.Sold
		}
		stats.TicketBreakdown = append(stats.TicketBreakdown, sales)
	}

	return stats, nil
}
