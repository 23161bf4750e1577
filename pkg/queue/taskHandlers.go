package queue

import (
	"context"
	"fmt"
	"log"

	"github.com/gateon/ticketing/internal/entity"
)

// TelegramBot интерфейс для Telegram бота
type TelegramBot interface {
	SendMessage(chatID, text string) error
}

// BookingDirectory предоставляет брони для обработки задач
type BookingDirectory interface {
	GetBooking(ctx context.Context, id string) (*entity.Booking, error)
}

// EventDirectory предоставляет мероприятия и пересчет их статистики
type EventDirectory interface {
	GetEvent(ctx context.Context, id int64) (*entity.EventWithTickets, error)
	RefreshEventStats(ctx context.Context, eventID int64) (*entity.EventSalesStats, error)
}

// TaskHandler обрабатывает задачи из очереди
type TaskHandler struct {
	bookings    BookingDirectory
	events      EventDirectory
	telegramBot TelegramBot
	adminChatID string
}

// NewTaskHandler создает новый обработчик задач. Уведомления уходят
// в админский чат, adminChatID может быть пустым.
func NewTaskHandler(
	bookings BookingDirectory,
	events EventDirectory,
	telegramBot TelegramBot,
	adminChatID string,
) *TaskHandler {
	return &TaskHandler{
		bookings:    bookings,
		events:      events,
		telegramBot: telegramBot,
		adminChatID: adminChatID,
	}
}

// HandleTask обрабатывает задачу
func (h *TaskHandler) HandleTask(task *Task) error {
	log.Printf("Processing task %s of type %s (attempt %d/%d)",
		task.ID, task.Type, task.Attempts, task.MaxRetries)

	switch task.Type {
	case TaskTypeBookingCreated:
		return h.handleBookingCreated(task)
	case TaskTypeBookingCancelled:
		return h.handleBookingCancelled(task)
	case TaskTypeBookingCheckedIn:
		return h.handleBookingCheckedIn(task)
	case TaskTypeStatsRefresh:
		return h.handleStatsRefresh(task)
	default:
		return fmt.Errorf("unknown task type: %s", task.Type)
	}
}

// handleBookingCreated уведомляет о новой брони и обновляет статистику
func (h *TaskHandler) handleBookingCreated(task *Task) error {
	ctx := context.Background()

	bookingID := task.GetString("booking_id")
	if bookingID == "" {
		return fmt.Errorf("invalid booking_id in task data")
	}

	booking, err := h.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("failed to get booking %s: %v", bookingID, err)
	}

	event, err := h.events.GetEvent(ctx, booking.EventID)
	if err != nil {
		return fmt.Errorf("failed to get event %d: %v", booking.EventID, err)
	}

	h.notifyAdmin(fmt.Sprintf(
		"🎫 Новая бронь\n\n"+
			"Мероприятие: %s\n"+
			"Дата: %s\n"+
			"Билетов: %d\n"+
			"Сумма: %d\n"+
			"Код билета: %s",
		event.Title,
		event.Date.Format("02.01.2006 в 15:04"),
		booking.Quantity,
		booking.Pricing.Total,
		booking.TicketCode,
	))

	return h.refreshStats(ctx, booking.EventID)
}

// handleBookingCancelled уведомляет об отмене и обновляет статистику
func (h *TaskHandler) handleBookingCancelled(task *Task) error {
	ctx := context.Background()

	bookingID := task.GetString("booking_id")
	if bookingID == "" {
		return fmt.Errorf("invalid booking_id in task data")
	}

	booking, err := h.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("failed to get booking %s: %v", bookingID, err)
	}

	h.notifyAdmin(fmt.Sprintf(
		"❌ Бронь отменена\n\n"+
			"Бронь: %s\n"+
			"Билетов: %d\n"+
			"Мероприятие: %d",
		booking.ID,
		booking.Quantity,
		booking.EventID,
	))

	return h.refreshStats(ctx, booking.EventID)
}

// handleBookingCheckedIn уведомляет о регистрации входа
func (h *TaskHandler) handleBookingCheckedIn(task *Task) error {
	ctx := context.Background()

	bookingID := task.GetString("booking_id")
	if bookingID == "" {
		return fmt.Errorf("invalid booking_id in task data")
	}

	booking, err := h.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("failed to get booking %s: %v", bookingID, err)
	}

	h.notifyAdmin(fmt.Sprintf(
		"✅ Вход зарегистрирован\n\n"+
			"Код билета: %s\n"+
			"Билетов: %d\n"+
			"Мероприятие: %d",
		booking.TicketCode,
		booking.Quantity,
		booking.EventID,
	))

	return h.refreshStats(ctx, booking.EventID)
}

// handleStatsRefresh пересчитывает статистику мероприятия
func (h *TaskHandler) handleStatsRefresh(task *Task) error {
	eventID := task.GetInt64("event_id")
	if eventID == 0 {
		return fmt.Errorf("invalid event_id in task data")
	}

	return h.refreshStats(context.Background(), eventID)
}

func (h *TaskHandler) refreshStats(ctx context.Context, eventID int64) error {
	if _, err := h.events.RefreshEventStats(ctx, eventID); err != nil {
		return fmt.Errorf("failed to refresh stats for event %d: %v", eventID, err)
	}
	return nil
}

// notifyAdmin отправляет сообщение в админский чат, ошибки не фатальны
func (h *TaskHandler) notifyAdmin(message string) {
	if h.telegramBot == nil || h.adminChatID == "" {
		return
	}

	if err := h.telegramBot.SendMessage(h.adminChatID, message); err != nil {
		log.Printf("Failed to send Telegram notification: %v", err)
	}
}
