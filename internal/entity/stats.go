package entity

import (
	"time"
)

// TicketSales содержит продажи по одному типу билета
type TicketSales struct {
	TicketID  int64  `json:"ticket_id"`
	Label     string `json:"label"`
	UnitPrice int64  `json:"unit_price"`
	Capacity  int    `json:"capacity"`
	Sold      int    `json:"sold"`
	Remaining int    `json:"remaining"` // -1, если вместимость не отслеживается
}

// EventSalesStats содержит агрегированную статистику продаж мероприятия.
// Выручка считается по подтвержденным броням; обновляется воркером и
// кэшируется в Redis.
type EventSalesStats struct {
	EventID            int64          `json:"event_id"`
	TotalBookings      int            `json:"total_bookings"`
	ConfirmedBookings  int            `json:"confirmed_bookings"`
	CancelledBookings  int            `json:"cancelled_bookings"`
	ConfirmedQuantity  int            `json:"confirmed_quantity"`
	CancelledQuantity  int            `json:"cancelled_quantity"`
	CheckedInBookings  int            `json:"checked_in_bookings"`
	Revenue            int64          `json:"revenue"`
	DiscountsGranted   int64          `json:"discounts_granted"`
	TicketBreakdown    []*TicketSales `json:"ticket_breakdown"`
	RefreshedAt        time.Time      `json:"refreshed_at"`
}

// CheckInRate возвращает долю подтвержденных броней, прошедших вход
func (s *EventSalesStats) CheckInRate() float64 {
	if s.ConfirmedBookings == 0 {
		return 0.0
	}
	return float64(s.CheckedInBookings) / float64(s.ConfirmedBookings)
}
