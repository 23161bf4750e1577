package entity

import (
	"time"
)

type Event struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Date        time.Time `json:"date" db:"date"`
	Location    string    `json:"location" db:"location"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Ticket представляет тип билета внутри мероприятия.
// UnitPrice хранится в минимальных денежных единицах.
type Ticket struct {
	ID        int64     `json:"id" db:"id"`
	EventID   int64     `json:"event_id" db:"event_id"`
	Label     string    `json:"label" db:"label"`
	UnitPrice int64     `json:"unit_price" db:"unit_price"`
	Capacity  int       `json:"capacity" db:"capacity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CapacityTracked сообщает, ведется ли учет вместимости для билета.
// Нулевая вместимость унаследована от исходной системы как "без учета".
func (t *Ticket) CapacityTracked() bool {
	return t.Capacity > 0
}

type EventWithTickets struct {
	Event
	Tickets []*Ticket `json:"tickets"`
}
