package worker

import (
	"context"
	"time"

	"github.com/gateon/ticketing/internal/service"

	"github.com/sirupsen/logrus"
)

// StatsRefreshWorker пересчитывает статистику продаж по расписанию.
// Используется, когда очередь недоступна и кеш некому обновлять.
type StatsRefreshWorker struct {
	eventService service.EventService
	interval     time.Duration
}

func NewStatsRefreshWorker(eventService service.EventService, interval time.Duration) *StatsRefreshWorker {
	return &StatsRefreshWorker{
		eventService: eventService,
		interval:     interval,
	}
}

func (w *StatsRefreshWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Stats refresh worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Stats refresh worker stopped")
			return
		case <-ticker.C:
			w.refreshAll(ctx)
		}
	}
}

// refreshAll обновляет статистику для всех мероприятий
func (w *StatsRefreshWorker) refreshAll(ctx context.Context) {
	events, err := w.eventService.GetAllEvents(ctx)
	if err != nil {
		logrus.Errorf("Failed to list events for stats refresh: %v", err)
		return
	}

	successCount := 0
	failedCount := 0

	for _, event := range events {
		select {
		case <-ctx.Done():
			logrus.Info("Stats refresh interrupted by context cancellation")
			return
		default:
		}

		if _, err := w.eventService.RefreshEventStats(ctx, event.ID); err != nil {
			logrus.Errorf("Failed to refresh stats for event %d: %v", event.ID, err)
			failedCount++
			continue
		}
		successCount++
	}

	logrus.Infof("Stats refresh completed: %d successful, %d failed", successCount, failedCount)
}
