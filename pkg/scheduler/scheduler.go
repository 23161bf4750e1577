package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/gateon/ticketing/internal/service"
)

// Scheduler периодически публикует задачи пересчета статистики,
// чтобы обработчик очереди обновлял кеш для всех мероприятий
type Scheduler struct {
	eventService service.EventService
	publisher    service.TaskPublisher
	interval     time.Duration
}

func NewScheduler(eventService service.EventService, publisher service.TaskPublisher, interval time.Duration) *Scheduler {
	return &Scheduler{
		eventService: eventService,
		publisher:    publisher,
		interval:     interval,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.publishRefreshTasks(ctx); err != nil {
				fmt.Printf("Error scheduling stats refresh: %v\n", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) publishRefreshTasks(ctx context.Context) error {
	events, err := s.eventService.GetAllEvents(ctx)
	if err != nil {
		return err
	}

	for _, event := range events {
		task := &service.Task{
			ID:   fmt.Sprintf("stats_refresh_%d_%d", event.ID, time.Now().Unix()),
			Type: service.TaskTypeStatsRefresh,
			Data: map[string]interface{}{
				"event_id": event.ID,
			},
			ExecuteAt:  time.Now(),
			MaxRetries: 2,
		}
		if err := s.publisher.Publish(ctx, task); err != nil {
			return err
		}
	}

	return nil
}
