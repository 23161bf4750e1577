package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	repository "github.com/gateon/ticketing/internal/database/postgres"
	"github.com/gateon/ticketing/internal/entity"
	"github.com/gateon/ticketing/pkg/lock"
)

// CreateBookingRequest представляет данные для создания бронирования
type CreateBookingRequest struct {
	EventID   int64  `json:"event_id" binding:"required"`
	TicketID  int64  `json:"ticket_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Name      string `json:"name" binding:"required,min=1,max=255"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required,min=3,max=32"`
	Delivery  string `json:"delivery"`
	PromoCode string `json:"promo_code"`
}

// ListBookingsRequest описывает фильтры списка бронирований.
// EventID и Email сужают выборку, Status фильтрует по статусу брони.
type ListBookingsRequest struct {
	EventID int64
	Email   string
	Status  string
	Limit   int
	Offset  int
}

// BookingList — страница списка бронирований с метаданными пагинации.
// Total считается по отфильтрованной выборке до применения Limit/Offset.
type BookingList struct {
	Bookings []*entity.Booking `json:"bookings"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// TaskPublisher интерфейс для публикации задач в очередь
type TaskPublisher interface {
	Publish(ctx context.Context, task *Task) error
}

// Task представляет задачу для очереди
type Task struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	ExecuteAt  time.Time              `json:"execute_at"`
	MaxRetries int                    `json:"max_retries"`
	Attempts   int                    `json:"attempts"`
}

// Константы типов задач
const (
	TaskTypeBookingCreated   = "booking_created"
	TaskTypeBookingCancelled = "booking_cancelled"
	TaskTypeBookingCheckedIn = "booking_checked_in"
	TaskTypeStatsRefresh     = "stats_refresh"
)

type bookingService struct {
	bookingRepo    repository.BookingRepository
	eventRepo      repository.EventRepository
	pricing        PricingService
	queue          TaskPublisher
	locks          *lock.KeyedMutex
	maxPerAttendee int
	logger         *logrus.Logger
}

// NewBookingService создает новый экземпляр BookingService
func NewBookingService(
	bookingRepo repository.BookingRepository,
	eventRepo repository.EventRepository,
	pricing PricingService,
	queue TaskPublisher,
	locks *lock.KeyedMutex,
	maxPerAttendee int,
	logger *logrus.Logger,
) BookingService {
	if maxPerAttendee <= 0 {
		maxPerAttendee = 5
	}
	return &bookingService{
		bookingRepo:    bookingRepo,
		eventRepo:      eventRepo,
		pricing:        pricing,
		queue:          queue,
		locks:          locks,
		maxPerAttendee: maxPerAttendee,
		logger:         logger,
	}
}

// CreateBooking создает подтвержденное бронирование с замороженной ценой.
// Проверка вместимости и запись выполняются в одной критической секции
// на пару событие-билет.
func (s *bookingService) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*entity.Booking, error) {
	if req.Quantity < 1 {
		return nil, entity.ErrInvalidQuantity
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Phone) == "" {
		return nil, entity.ErrInvalidInput
	}

	delivery := entity.DeliveryMode(req.Delivery)
	if delivery == "" {
		delivery = entity.DeliveryEmail
	}
	if delivery != entity.DeliveryEmail && delivery != entity.DeliveryWhatsApp {
		return nil, entity.ErrInvalidInput
	}

	event, err := s.eventRepo.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event.Date.Before(time.Now()) {
		return nil, entity.ErrEventDatePast
	}

	ticket, err := s.eventRepo.GetTicket(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket.EventID != req.EventID {
		return nil, entity.ErrEventMismatch
	}

	mu := s.locks.Lock(lock.TicketKey(req.EventID, req.TicketID))
	defer mu.Unlock()

	if ticket.CapacityTracked() {
		sold, err := s.bookingRepo.SumConfirmedQuantity(ctx, req.EventID, req.TicketID)
		if err != nil {
			return nil, fmt.Errorf("failed to get sold quantity: %w", err)
		}
		if sold+req.Quantity > ticket.Capacity {
			return nil, entity.ErrSoldOut
		}
	}

	if req.Quantity > s.maxPerAttendee {
		return nil, entity.ErrInvalidQuantity
	}

	quote, promo, err := s.pricing.PriceOrder(ctx, ticket, req.Quantity, req.PromoCode)
	if err != nil {
		return nil, err
	}

	snapshot := entity.PricingSnapshot{
		UnitPrice:     ticket.UnitPrice,
		BaseTotal:     quote.BaseTotal,
		PromoDiscount: quote.PromoDiscount,
		GroupDiscount: quote.GroupDiscount,
		TotalDiscount: quote.Discount,
		Total:         quote.Total,
	}
	if promo != nil {
		snapshot.PromoCode = promo.Code
	}

	booking := &entity.Booking{
		ID:         uuid.NewString(),
		TicketCode: newTicketCode(),
		EventID:    req.EventID,
		TicketID:   req.TicketID,
		Quantity:   req.Quantity,
		Attendee: entity.Attendee{
			Name:  strings.TrimSpace(req.Name),
			Email: strings.TrimSpace(req.Email),
			Phone: strings.TrimSpace(req.Phone),
		},
		Pricing:  snapshot,
		Delivery: delivery,
		Status:   entity.StatusConfirmed,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"ticket_code": booking.TicketCode,
		"event_id":    booking.EventID,
		"quantity":    booking.Quantity,
		"total":       booking.Pricing.Total,
	}).Info("booking created")

	s.publishBookingTask(ctx, TaskTypeBookingCreated, booking)

	return booking, nil
}

// newTicketCode генерирует код билета вида TKT-1A2B3C4D
func newTicketCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TKT-" + strings.ToUpper(raw[:8])
}

// CancelBooking отменяет бронирование, повторная отмена является ошибкой
func (s *bookingService) CancelBooking(ctx context.Context, id string) (*entity.Booking, error) {
	mu := s.locks.Lock(lock.BookingKey(id))
	defer mu.Unlock()

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status == entity.StatusCancelled {
		return nil, entity.ErrAlreadyCancelled
	}

	if err := s.bookingRepo.UpdateStatus(ctx, id, entity.StatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	booking.Status = entity.StatusCancelled
	booking.UpdatedAt = time.Now()

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"event_id":   booking.EventID,
		"quantity":   booking.Quantity,
	}).Info("booking cancelled")

	s.publishBookingTask(ctx, TaskTypeBookingCancelled, booking)

	return booking, nil
}

// GetBooking возвращает бронирование по идентификатору
func (s *bookingService) GetBooking(ctx context.Context, id string) (*entity.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// GetEventBookings возвращает все бронирования мероприятия
func (s *bookingService) GetEventBookings(ctx context.Context, eventID int64) ([]*entity.Booking, error) {
	bookings, err := s.bookingRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event bookings: %w", err)
	}
	return bookings, nil
}

// GetAttendeeBookings возвращает бронирования по email посетителя
func (s *bookingService) GetAttendeeBookings(ctx context.Context, email string) ([]*entity.Booking, error) {
	bookings, err := s.bookingRepo.GetByAttendeeEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendee bookings: %w", err)
	}
	return bookings, nil
}

// GetAllBookings возвращает все бронирования
func (s *bookingService) GetAllBookings(ctx context.Context) ([]*entity.Booking, error) {
	bookings, err := s.bookingRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all bookings: %w", err)
	}
	return bookings, nil
}

// ListBookings возвращает страницу бронирований по фильтрам запроса
func (s *bookingService) ListBookings(ctx context.Context, req *ListBookingsRequest) (*BookingList, error) {
	status, err := parseBookingStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var bookings []*entity.Booking
	switch {
	case req.EventID > 0:
		bookings, err = s.bookingRepo.GetByEventID(ctx, req.EventID)
	case strings.TrimSpace(req.Email) != "":
		bookings, err = s.bookingRepo.GetByAttendeeEmail(ctx, strings.TrimSpace(req.Email))
	default:
		bookings, err = s.bookingRepo.GetAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	if status != "" {
		filtered := make([]*entity.Booking, 0, len(bookings))
		for _, b := range bookings {
			if b.Status == status {
				filtered = append(filtered, b)
			}
		}
		bookings = filtered
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	total := len(bookings)
	if offset >= total {
		bookings = []*entity.Booking{}
	} else {
		end := offset + limit
		if end > total {
			end = total
		}
		bookings = bookings[offset:end]
	}

	return &BookingList{
		Bookings: bookings,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

// parseBookingStatus переводит строку фильтра в статус брони,
// пустая строка означает отсутствие фильтра
func parseBookingStatus(raw string) (entity.BookingStatus, error) {
	switch entity.BookingStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return "", nil
	case entity.StatusPending:
		return entity.StatusPending, nil
	case entity.StatusConfirmed:
		return entity.StatusConfirmed, nil
	case entity.StatusCancelled:
		return entity.StatusCancelled, nil
	default:
		return "", entity.ErrInvalidInput
	}
}

// SoldQuantity возвращает сумму мест подтвержденных бронирований
func (s *bookingService) SoldQuantity(ctx context.Context, eventID, ticketID int64) (int, error) {
	sold, err := s.bookingRepo.SumConfirmedQuantity(ctx, eventID, ticketID)
	if err != nil {
		return 0, fmt.Errorf("failed to get sold quantity: %w", err)
	}
	return sold, nil
}

func (s *bookingService) publishBookingTask(ctx context.Context, taskType string, booking *entity.Booking) {
	if s.queue == nil {
		return
	}

	task := &Task{
		ID:   fmt.Sprintf("%s_%s_%d", taskType, booking.ID, time.Now().Unix()),
		Type: taskType,
		Data: map[string]interface{}{
			"booking_id":  booking.ID,
			"ticket_code": booking.TicketCode,
			"event_id":    booking.EventID,
			"ticket_id":   booking.TicketID,
			"quantity":    booking.Quantity,
			"email":       booking.Attendee.Email,
			"total":       booking.Pricing.Total,
		},
		ExecuteAt:  time.Now(),
		MaxRetries: 3,
	}

	if err := s.queue.Publish(ctx, task); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"task_type":  taskType,
		}).Error("failed to publish booking task")
	}
}
