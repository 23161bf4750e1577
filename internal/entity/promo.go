package entity

import (
	"strings"
	"time"
)

type PromoKind string

const (
	PromoKindPercent PromoKind = "percent"
	PromoKindFlat    PromoKind = "flat"
)

// IsValid проверяет, что тип промокода поддерживается
func (k PromoKind) IsValid() bool {
	return k == PromoKindPercent || k == PromoKindFlat
}

// PromoCode представляет промокод организатора.
// Value хранится в процентных пунктах (percent) или в минимальных
// денежных единицах (flat). Промокоды никогда не удаляются физически,
// только переводятся в active = false.
type PromoCode struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Kind      PromoKind `json:"kind" db:"kind"`
	Value     int64     `json:"value" db:"value"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NormalizeCode приводит пользовательский ввод промокода к каноничному
// виду: обрезает пробелы и переводит в верхний регистр
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
