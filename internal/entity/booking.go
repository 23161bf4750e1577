package entity

import (
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

type DeliveryMode string

const (
	DeliveryEmail    DeliveryMode = "email"
	DeliveryWhatsApp DeliveryMode = "whatsapp"
)

// Attendee содержит контактные данные посетителя
type Attendee struct {
	Name  string `json:"name" db:"attendee_name"`
	Email string `json:"email" db:"attendee_email"`
	Phone string `json:"phone" db:"attendee_phone"`
}

// PricingSnapshot — зафиксированная на момент создания брони цена.
// После создания брони снимок никогда не пересчитывается.
// Инвариант: BaseTotal - TotalDiscount == Total и Total >= 0.
type PricingSnapshot struct {
	UnitPrice     int64  `json:"unit_price" db:"unit_price"`
	BaseTotal     int64  `json:"base_total" db:"base_total"`
	PromoDiscount int64  `json:"promo_discount" db:"promo_discount"`
	GroupDiscount int64  `json:"group_discount" db:"group_discount"`
	TotalDiscount int64  `json:"total_discount" db:"total_discount"`
	Total         int64  `json:"total" db:"total"`
	PromoCode     string `json:"promo_code,omitempty" db:"promo_code"`
}

// Booking представляет бронирование билетов.
// CheckedInAt заполняется ровно один раз: повторная регистрация на входе
// отклоняется, это основной анти-фрод инвариант системы.
type Booking struct {
	ID          string          `json:"id" db:"id"`
	TicketCode  string          `json:"ticket_code" db:"ticket_code"`
	EventID     int64           `json:"event_id" db:"event_id"`
	TicketID    int64           `json:"ticket_id" db:"ticket_id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Attendee    Attendee        `json:"attendee"`
	Pricing     PricingSnapshot `json:"pricing"`
	Delivery    DeliveryMode    `json:"delivery" db:"delivery"`
	Status      BookingStatus   `json:"status" db:"status"`
	CheckedInAt *time.Time      `json:"checked_in_at,omitempty" db:"checked_in_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// IsCheckedIn сообщает, была ли бронь уже использована на входе
func (b *Booking) IsCheckedIn() bool {
	return b.CheckedInAt != nil
}
