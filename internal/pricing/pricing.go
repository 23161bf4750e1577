// Package pricing computes booking totals in integer minor currency units.
package pricing

import (
	"github.com/gateon/ticketing/internal/entity"
)

// GroupSize — размер группы, за каждую полную группу начисляется
// скидка в размере стоимости одного билета
const GroupSize = 6

// Верхние границы входных значений. MaxUnitPrice * MaxQuantity и
// промежуточное произведение baseTotal * 100 остаются в пределах int64.
const (
	MaxUnitPrice int64 = 1_000_000_000
	MaxQuantity        = 100_000
)

// Quote — результат расчета стоимости. Все поля неотрицательны.
type Quote struct {
	BaseTotal     int64 `json:"base_total"`
	PromoDiscount int64 `json:"promo_discount"`
	GroupDiscount int64 `json:"group_discount"`
	Discount      int64 `json:"discount"`
	Total         int64 `json:"total"`
}

// ComputeTotal рассчитывает стоимость брони. Порядок шагов фиксирован:
// базовая сумма, скидка по промокоду, групповая скидка, ограничение
// суммарной скидки базовой суммой. promo == nil означает "без промокода".
func ComputeTotal(unitPrice int64, quantity int, promo *entity.PromoCode) (*Quote, error) {
	if quantity <= 0 || quantity > MaxQuantity {
		return nil, entity.ErrInvalidQuantity
	}
	if unitPrice < 0 || unitPrice > MaxUnitPrice {
		return nil, entity.ErrInvalidPrice
	}

	baseTotal := unitPrice * int64(quantity)

	var promoDiscount int64
	if promo != nil {
		switch promo.Kind {
		case entity.PromoKindPercent:
			promoDiscount = roundHalfUp(baseTotal*promo.Value, 100)
		case entity.PromoKindFlat:
			promoDiscount = min64(baseTotal, promo.Value)
		}
	}

	var groupDiscount int64
	if quantity >= GroupSize {
		groupSets := int64(quantity / GroupSize)
		groupDiscount = unitPrice * groupSets
	}

	// Скидки никогда не превышают базовую сумму
	discount := min64(baseTotal, promoDiscount+groupDiscount)

	return &Quote{
		BaseTotal:     baseTotal,
		PromoDiscount: promoDiscount,
		GroupDiscount: groupDiscount,
		Discount:      discount,
		Total:         baseTotal - discount,
	}, nil
}

// roundHalfUp делит num на den с округлением half-away-from-zero.
// Все входные значения в этом пакете неотрицательны.
func roundHalfUp(num, den int64) int64 {
	return (num + den/2) / den
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
