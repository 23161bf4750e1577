package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gateon/ticketing/internal/entity"
)

type EventRepository struct {
	mu           sync.RWMutex
	nextEventID  int64
	nextTicketID int64
	events       map[int64]*entity.Event
	tickets      map[int64]*entity.Ticket
}

func NewEventRepository() *EventRepository {
	return &EventRepository{
		nextEventID:  1,
		nextTicketID: 1,
		events:       make(map[int64]*entity.Event),
		tickets:      make(map[int64]*entity.Ticket),
	}
}

func (r *EventRepository) CreateEvent(_ context.Context, event *entity.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.ID = r.nextEventID
	r.nextEventID++

	now := time.Now()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	stored := *event
	r.events[event.ID] = &stored
	return nil
}

func (r *EventRepository) GetEvent(_ context.Context, id int64) (*entity.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[id]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	found := *event
	return &found, nil
}

func (r *EventRepository) GetAllEvents(_ context.Context) ([]*entity.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Event, 0, len(r.events))
	for id := int64(1); id < r.nextEventID; id++ {
		if event, ok := r.events[id]; ok {
			found := *event
			out = append(out, &found)
		}
	}
	return out, nil
}

func (r *EventRepository) CreateTicket(_ context.Context, ticket *entity.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[ticket.EventID]; !ok {
		return entity.ErrEventNotFound
	}

	ticket.ID = r.nextTicketID
	r.nextTicketID++
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}

	stored := *ticket
	r.tickets[ticket.ID] = &stored
	return nil
}

func (r *EventRepository) GetTicket(_ context.Context, id int64) (*entity.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, entity.ErrTicketNotFound
	}
	found := *ticket
	return &found, nil
}

func (r *EventRepository) GetTicketsByEvent(_ context.Context, eventID int64) ([]*entity.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Ticket, 0)
	for id := int64(1); id < r.nextTicketID; id++ {
		ticket, ok := r.tickets[id]
		if !ok || ticket.EventID != eventID {
			continue
		}
		found := *ticket
		out = append(out, &found)
	}
	return out, nil
}
