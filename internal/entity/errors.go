package entity

import "errors"

var (
	// Promo errors
	ErrPromoNotFound      = errors.New("promo code not found")
	ErrDuplicateCode      = errors.New("promo code already exists")
	ErrInvalidPromoConfig = errors.New("invalid promo configuration")

	// Pricing errors
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidPrice    = errors.New("invalid unit price")

	// Event errors
	ErrEventNotFound  = errors.New("event not found")
	ErrTicketNotFound = errors.New("ticket not found")
	ErrEventDatePast  = errors.New("event date cannot be in the past")

	// Booking errors
	ErrBookingNotFound  = errors.New("booking not found")
	ErrSoldOut          = errors.New("not enough tickets remaining")
	ErrAlreadyCancelled = errors.New("booking already cancelled")

	// Check-in errors
	ErrAlreadyCheckedIn = errors.New("booking already checked in")
	ErrWrongStatus      = errors.New("booking status does not allow check-in")
	ErrEventMismatch    = errors.New("booking belongs to another event")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
