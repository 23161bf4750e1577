package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gateon/ticketing/internal/entity"
)

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) CreateEvent(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (title, description, date, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		event.Title,
		event.Description,
		event.Date,
		event.Location,
		now,
		now,
	).Scan(&event.ID)

	if err != nil {
		return fmt.Errorf("failed to create event: %v", err)
	}

	event.CreatedAt = now
	event.UpdatedAt = now
	return nil
}

func (r *eventRepository) GetEvent(ctx context.Context, id int64) (*entity.Event, error) {
	query := `
		SELECT id, title, description, date, location, created_at, updated_at
		FROM events
		WHERE id = $1
	`

	var event entity.Event
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Location,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %v", err)
	}

	return &event, nil
}

func (r *eventRepository) GetAllEvents(ctx context.Context) ([]*entity.Event, error) {
	query := `
		SELECT id, title, description, date, location, created_at, updated_at
		FROM events
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %v", err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		var event entity.Event
		err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Description,
			&event.Date,
			&event.Location,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %v", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %v", err)
	}

	return events, nil
}

func (r *eventRepository) CreateTicket(ctx context.Context, ticket *entity.Ticket) error {
	query := `
		INSERT INTO tickets (event_id, label, unit_price, capacity, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		ticket.EventID,
		ticket.Label,
		ticket.UnitPrice,
		ticket.Capacity,
		now,
	).Scan(&ticket.ID)

	if err != nil {
		return fmt.Errorf("failed to create ticket: %v", err)
	}

	ticket.CreatedAt = now
	return nil
}

func (r *eventRepository) GetTicket(ctx context.Context, id int64) (*entity.Ticket, error) {
	query := `
		SELECT id, event_id, label, unit_price, capacity, created_at
		FROM tickets
		WHERE id = $1
	`

	var ticket entity.Ticket
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.Label,
		&ticket.UnitPrice,
		&ticket.Capacity,
		&ticket.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %v", err)
	}

	return &ticket, nil
}

func (r *eventRepository) GetTicketsByEvent(ctx context.Context, eventID int64) ([]*entity.Ticket, error) {
	query := `
		SELECT id, event_id, label, unit_price, capacity, created_at
		FROM tickets
		WHERE event_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %v", err)
	}
	defer rows.Close()

	var tickets []*entity.Ticket
	for rows.Next() {
		var ticket entity.Ticket
		err := rows.Scan(
			&ticket.ID,
			&ticket.EventID,
			&ticket.Label,
			&ticket.UnitPrice,
			&ticket.Capacity,
			&ticket.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %v", err)
		}
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %v", err)
	}

	return tickets, nil
}
