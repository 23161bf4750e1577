package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gateon/ticketing/internal/entity"
)

const bookingColumns = `
	id, ticket_code, event_id, ticket_id, quantity,
	attendee_name, attendee_email, attendee_phone, delivery,
	unit_price, base_total, promo_discount, group_discount,
	total_discount, total, promo_code,
	status, checked_in_at, created_at, updated_at
`

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db}
}

// Create appends a booking inside a transaction: the capacity check over
// confirmed bookings and the insert form a single atomic section, so two
// near-simultaneous bookings cannot both pass the remaining-seats check
func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	// Lock the ticket row so concurrent creations for the same ticket
	// serialize on the capacity check
	var capacity int
	query := `SELECT capacity FROM tickets WHERE id = $1 FOR UPDATE`
	err = tx.QueryRowContext(ctx, query, booking.TicketID).Scan(&capacity)
	if err == sql.ErrNoRows {
		return entity.ErrTicketNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock ticket: %v", err)
	}

	if capacity > 0 {
		var sold int
		query = `
			SELECT COALESCE(SUM(quantity), 0)
			FROM bookings
			WHERE event_id = $1 AND ticket_id = $2 AND status = 'confirmed'
		`
		err = tx.QueryRowContext(ctx, query, booking.EventID, booking.TicketID).Scan(&sold)
		if err != nil {
			return fmt.Errorf("failed to check sold quantity: %v", err)
		}

		if sold+booking.Quantity > capacity {
			return entity.ErrSoldOut
		}
	}

	query = `
		INSERT INTO bookings (
			id, ticket_code, event_id, ticket_id, quantity,
			attendee_name, attendee_email, attendee_phone, delivery,
			unit_price, base_total, promo_discount, group_discount,
			total_discount, total, promo_code,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	now := time.Now()
	_, err = tx.ExecContext(ctx, query,
		booking.ID,
		booking.TicketCode,
		booking.EventID,
		booking.TicketID,
		booking.Quantity,
		booking.Attendee.Name,
		booking.Attendee.Email,
		booking.Attendee.Phone,
		booking.Delivery,
		booking.Pricing.UnitPrice,
		booking.Pricing.BaseTotal,
		booking.Pricing.PromoDiscount,
		booking.Pricing.GroupDiscount,
		booking.Pricing.TotalDiscount,
		booking.Pricing.Total,
		booking.Pricing.PromoCode,
		booking.Status,
		now,
		now,
	)

	if err != nil {
		return fmt.Errorf("failed to create booking: %v", err)
	}

	booking.CreatedAt = now
	booking.UpdatedAt = now

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *bookingRepository) GetByTicketCode(ctx context.Context, code string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ticket_code = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, code))
}

// UpdateStatus updates the status of a booking
func (r *bookingRepository) UpdateStatus(ctx context.Context, id string, status entity.BookingStatus) error {
	query := `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return entity.ErrBookingNotFound
	}

	return nil
}

// SetCheckedIn stamps checked_in_at exactly once: the WHERE clause only
// matches a row that has not been redeemed yet, so a second attempt
// reports entity.ErrAlreadyCheckedIn even under concurrent scans
func (r *bookingRepository) SetCheckedIn(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE bookings
		SET checked_in_at = $1, updated_at = $2
		WHERE id = $3 AND checked_in_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, at, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set check-in: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rowsAffected == 0 {
		// Either the booking does not exist or it was already redeemed
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return entity.ErrAlreadyCheckedIn
	}

	return nil
}

func (r *bookingRepository) GetByEventID(ctx context.Context, eventID int64) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE event_id = $1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, eventID)
}

func (r *bookingRepository) GetByAttendeeEmail(ctx context.Context, email string) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE LOWER(attendee_email) = LOWER($1) ORDER BY created_at DESC`
	return r.queryMany(ctx, query, email)
}

func (r *bookingRepository) GetAll(ctx context.Context) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`
	return r.queryMany(ctx, query)
}

// SumConfirmedQuantity sums quantities of confirmed bookings for a ticket
func (r *bookingRepository) SumConfirmedQuantity(ctx context.Context, eventID, ticketID int64) (int, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM bookings
		WHERE event_id = $1 AND ticket_id = $2 AND status = 'confirmed'
	`

	var sum int
	err := r.db.QueryRowContext(ctx, query, eventID, ticketID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum confirmed quantity: %v", err)
	}
	return sum, nil
}

func (r *bookingRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*entity.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %v", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %v", err)
	}

	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *bookingRepository) scanOne(row *sql.Row) (*entity.Booking, error) {
	booking, err := r.scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *bookingRepository) scanBooking(row rowScanner) (*entity.Booking, error) {
	var booking entity.Booking
	var checkedInAt sql.NullTime
	var promoCode sql.NullString

	err := row.Scan(
		&booking.ID,
		&booking.TicketCode,
		&booking.EventID,
		&booking.TicketID,
		&booking.Quantity,
		&booking.Attendee.Name,
		&booking.Attendee.Email,
		&booking.Attendee.Phone,
		&booking.Delivery,
		&booking.Pricing.UnitPrice,
		&booking.Pricing.BaseTotal,
		&booking.Pricing.PromoDiscount,
		&booking.Pricing.GroupDiscount,
		&booking.Pricing.TotalDiscount,
		&booking.Pricing.Total,
		&promoCode,
		&booking.Status,
		&checkedInAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan booking: %v", err)
	}

	if checkedInAt.Valid {
		booking.CheckedInAt = &checkedInAt.Time
	}
	if promoCode.Valid {
		booking.Pricing.PromoCode = promoCode.String
	}

	return &booking, nil
}
