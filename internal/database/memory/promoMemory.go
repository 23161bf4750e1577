// Package memory provides in-memory repository implementations with the
// same contracts as the postgres ones. Used by tests and by the server's
// standalone mode, so every test case gets an isolated instance.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gateon/ticketing/internal/entity"
)

type PromoRepository struct {
	mu     sync.RWMutex
	nextID int64
	promos []*entity.PromoCode
}

func NewPromoRepository() *PromoRepository {
	return &PromoRepository{nextID: 1}
}

func (r *PromoRepository) Create(_ context.Context, promo *entity.PromoCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.promos {
		if p.Active && p.Code == promo.Code {
			return entity.ErrDuplicateCode
		}
	}

	promo.ID = r.nextID
	r.nextID++
	if promo.CreatedAt.IsZero() {
		promo.CreatedAt = time.Now()
	}

	stored := *promo
	r.promos = append(r.promos, &stored)
	return nil
}

func (r *PromoRepository) GetActiveByCode(_ context.Context, code string) (*entity.PromoCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.promos {
		if p.Active && p.Code == code {
			found := *p
			return &found, nil
		}
	}
	return nil, entity.ErrPromoNotFound
}

func (r *PromoRepository) Deactivate(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Отсутствующий код не является ошибкой: деактивация идемпотентна
	for _, p := range r.promos {
		if p.Active && p.Code == code {
			p.Active = false
		}
	}
	return nil
}

func (r *PromoRepository) GetAll(_ context.Context) ([]*entity.PromoCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.PromoCode, 0, len(r.promos))
	for _, p := range r.promos {
		found := *p
		out = append(out, &found)
	}
	return out, nil
}
