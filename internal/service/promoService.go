package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	repository "github.com/gateon/ticketing/internal/database/postgres"
	"github.com/gateon/ticketing/internal/entity"
)

// AddPromoRequest представляет данные для создания промокода
type AddPromoRequest struct {
	Code  string `json:"code" binding:"required,min=1,max=64"`
	Kind  string `json:"kind" binding:"required"`
	Value int64  `json:"value" binding:"required"`
}

type promoService struct {
	promoRepo repository.PromoRepository
	logger    *logrus.Logger
}

// NewPromoService создает новый экземпляр PromoService
func NewPromoService(promoRepo repository.PromoRepository, logger *logrus.Logger) PromoService {
	return &promoService{
		promoRepo: promoRepo,
		logger:    logger,
	}
}

// AddPromo создает новый активный промокод
func (s *promoService) AddPromo(ctx context.Context, req *AddPromoRequest) (*entity.PromoCode, error) {
	code := entity.NormalizeCode(req.Code)
	if code == "" {
		return nil, entity.ErrInvalidPromoConfig
	}

	kind := entity.PromoKind(req.Kind)
	if !kind.IsValid() {
		return nil, entity.ErrInvalidPromoConfig
	}

	// Процент ограничен сверху, фиксированная скидка — только снизу
	if req.Value <= 0 {
		return nil, entity.ErrInvalidPromoConfig
	}
	if kind == entity.PromoKindPercent && req.Value > 100 {
		return nil, entity.ErrInvalidPromoConfig
	}

	promo := &entity.PromoCode{
		Code:   code,
		Kind:   kind,
		Value:  req.Value,
		Active: true,
	}

	if err := s.promoRepo.Create(ctx, promo); err != nil {
		if errors.Is(err, entity.ErrDuplicateCode) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create promo code: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"code":  promo.Code,
		"kind":  promo.Kind,
		"value": promo.Value,
	}).Info("promo code created")

	return promo, nil
}

// DeactivatePromo деактивирует промокод, операция идемпотентна
func (s *promoService) DeactivatePromo(ctx context.Context, code string) error {
	normalized := entity.NormalizeCode(code)
	if err := s.promoRepo.Deactivate(ctx, normalized); err != nil {
		return fmt.Errorf("failed to deactivate promo code: %w", err)
	}

	s.logger.WithField("code", normalized).Info("promo code deactivated")
	return nil
}

// GetAllPromos возвращает все промокоды, включая неактивные
func (s *promoService) GetAllPromos(ctx context.Context) ([]*entity.PromoCode, error) {
	promos, err := s.promoRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get promo codes: %w", err)
	}
	return promos, nil
}

// FindPromo возвращает активный промокод или (nil, nil), если кода нет
func (s *promoService) FindPromo(ctx context.Context, code string) (*entity.PromoCode, error) {
	normalized := entity.NormalizeCode(code)
	if normalized == "" {
		return nil, nil
	}

	promo, err := s.promoRepo.GetActiveByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, entity.ErrPromoNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find promo code: %w", err)
	}
	return promo, nil
}

// ApplyPromo возвращает активный промокод или ErrPromoNotFound
func (s *promoService) ApplyPromo(ctx context.Context, code string) (*entity.PromoCode, error) {
	normalized := entity.NormalizeCode(code)
	if normalized == "" {
		return nil, entity.ErrPromoNotFound
	}

	promo, err := s.promoRepo.GetActiveByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, entity.ErrPromoNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to apply promo code: %w", err)
	}
	return promo, nil
}
