package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gateon/ticketing/internal/entity"
)

type promoRepository struct {
	db *sql.DB
}

func NewPromoRepository(db *sql.DB) PromoRepository {
	return &promoRepository{db: db}
}

// Create inserts a promo code; a partial unique index on active codes
// turns a duplicate insert into entity.ErrDuplicateCode
func (r *promoRepository) Create(ctx context.Context, promo *entity.PromoCode) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	// Check for an existing active code first to report the business error
	// without relying on driver-specific constraint error codes
	var existing int
	query := `SELECT COUNT(*) FROM promo_codes WHERE code = $1 AND active = TRUE`
	if err := tx.QueryRowContext(ctx, query, promo.Code).Scan(&existing); err != nil {
		return fmt.Errorf("failed to check existing promo: %v", err)
	}
	if existing > 0 {
		return entity.ErrDuplicateCode
	}

	query = `
		INSERT INTO promo_codes (code, kind, value, active, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now()
	err = tx.QueryRowContext(ctx, query,
		promo.Code,
		promo.Kind,
		promo.Value,
		promo.Active,
		now,
	).Scan(&promo.ID)

	if err != nil {
		return fmt.Errorf("failed to create promo code: %v", err)
	}

	promo.CreatedAt = now

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// GetActiveByCode retrieves an active promo by its normalized code.
// Inactive promos are never returned.
func (r *promoRepository) GetActiveByCode(ctx context.Context, code string) (*entity.PromoCode, error) {
	query := `
		SELECT id, code, kind, value, active, created_at
		FROM promo_codes
		WHERE code = $1 AND active = TRUE
	`

	var promo entity.PromoCode
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&promo.ID,
		&promo.Code,
		&promo.Kind,
		&promo.Value,
		&promo.Active,
		&promo.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrPromoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promo code: %v", err)
	}

	return &promo, nil
}

// Deactivate marks a promo inactive; a missing code is not an error so
// the organizer action stays idempotent
func (r *promoRepository) Deactivate(ctx context.Context, code string) error {
	query := `UPDATE promo_codes SET active = FALSE WHERE code = $1 AND active = TRUE`
	if _, err := r.db.ExecContext(ctx, query, code); err != nil {
		return fmt.Errorf("failed to deactivate promo code: %v", err)
	}
	return nil
}

func (r *promoRepository) GetAll(ctx context.Context) ([]*entity.PromoCode, error) {
	query := `
		SELECT id, code, kind, value, active, created_at
		FROM promo_codes
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query promo codes: %v", err)
	}
	defer rows.Close()

	var promos []*entity.PromoCode
	for rows.Next() {
		var promo entity.PromoCode
		err := rows.Scan(
			&promo.ID,
			&promo.Code,
			&promo.Kind,
			&promo.Value,
			&promo.Active,
			&promo.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promo code: %v", err)
		}
		promos = append(promos, &promo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating promo codes: %v", err)
	}

	return promos, nil
}
