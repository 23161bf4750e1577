package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	repository "github.com/gateon/ticketing/internal/database/postgres"
	"github.com/gateon/ticketing/internal/entity"
	"github.com/gateon/ticketing/pkg/lock"
)

// CheckInRequest представляет данные для регистрации входа.
// ExpectedEventID = 0 означает, что мероприятие не проверяется.
type CheckInRequest struct {
	ScanCode        string `json:"scan_code" binding:"required"`
	ExpectedEventID int64  `json:"expected_event_id"`
}

type checkinService struct {
	bookingRepo repository.BookingRepository
	queue       TaskPublisher
	locks       *lock.KeyedMutex
	logger      *logrus.Logger
}

// NewCheckinService создает новый экземпляр CheckinService
func NewCheckinService(
	bookingRepo repository.BookingRepository,
	queue TaskPublisher,
	locks *lock.KeyedMutex,
	logger *logrus.Logger,
) CheckinService {
	return &checkinService{
		bookingRepo: bookingRepo,
		queue:       queue,
		locks:       locks,
		logger:      logger,
	}
}

// Resolve ищет бронь сначала по коду билета, затем по идентификатору брони
func (s *checkinService) Resolve(ctx context.Context, code string) (*entity.Booking, error) {
	scan := strings.TrimSpace(code)
	if scan == "" {
		return nil, entity.ErrBookingNotFound
	}

	booking, err := s.bookingRepo.GetByTicketCode(ctx, scan)
	if err == nil {
		return booking, nil
	}
	if !errors.Is(err, entity.ErrBookingNotFound) {
		return nil, fmt.Errorf("failed to resolve scan code: %w", err)
	}

	booking, err = s.bookingRepo.GetByID(ctx, scan)
	if err != nil {
		if errors.Is(err, entity.ErrBookingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to resolve scan code: %w", err)
	}
	return booking, nil
}

// CheckIn регистрирует вход по брони. Билет можно погасить ровно один раз:
// повторный вызов для той же брони завершается ошибкой, а не тихим успехом.
func (s *checkinService) CheckIn(ctx context.Context, req *CheckInRequest) (*entity.Booking, error) {
	booking, err := s.Resolve(ctx, req.ScanCode)
	if err != nil {
		return nil, err
	}

	mu := s.locks.Lock(lock.BookingKey(booking.ID))
	defer mu.Unlock()

	// Перечитываем под блокировкой, чтобы не гасить билет дважды
	booking, err = s.bookingRepo.GetByID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	if booking.Status == entity.StatusCancelled {
		return nil, entity.ErrWrongStatus
	}
	if booking.IsCheckedIn() {
		return nil, entity.ErrAlreadyCheckedIn
	}
	if req.ExpectedEventID != 0 && req.ExpectedEventID != booking.EventID {
		return nil, entity.ErrEventMismatch
	}

	now := time.Now()
	if err := s.bookingRepo.SetCheckedIn(ctx, booking.ID, now); err != nil {
		return nil, err
	}

	booking.CheckedInAt = &now
	booking.UpdatedAt = now

	s.logger.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"ticket_code": booking.TicketCode,
		"event_id":    booking.EventID,
	}).Info("booking checked in")

	if s.queue != nil {
		task := &Task{
			ID:   fmt.Sprintf("%s_%s_%d", TaskTypeBookingCheckedIn, booking.ID, now.Unix()),
			Type: TaskTypeBookingCheckedIn,
			Data: map[string]interface{}{
				"booking_id":  booking.ID,
				"ticket_code": booking.TicketCode,
				"event_id":    booking.EventID,
				"quantity":    booking.Quantity,
			},
			ExecuteAt:  now,
			MaxRetries: 3,
		}
		if err := s.queue.Publish(ctx, task); err != nil {
			s.logger.WithError(err).WithField("booking_id", booking.ID).Error("failed to publish check-in task")
		}
	}

	return booking, nil
}
