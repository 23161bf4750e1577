package service

import (
	"context"
	"fmt"

	"github.com/gateon/ticketing/internal/entity"
	"github.com/gateon/ticketing/internal/pricing"
)

// QuoteRequest представляет запрос расчета стоимости без создания брони
type QuoteRequest struct {
	TicketID  int64  `json:"ticket_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	PromoCode string `json:"promo_code"`
}

// QuoteResponse представляет результат расчета стоимости
type QuoteResponse struct {
	TicketID      int64  `json:"ticket_id"`
	UnitPrice     int64  `json:"unit_price"`
	Quantity      int    `json:"quantity"`
	BaseTotal     int64  `json:"base_total"`
	PromoDiscount int64  `json:"promo_discount"`
	GroupDiscount int64  `json:"group_discount"`
	Discount      int64  `json:"discount"`
	Total         int64  `json:"total"`
	PromoCode     string `json:"promo_code,omitempty"`
}

type pricingService struct {
	eventService EventService
	promoService PromoService
}

// NewPricingService создает новый экземпляр PricingService
func NewPricingService(eventService EventService, promoService PromoService) PricingService {
	return &pricingService{
		eventService: eventService,
		promoService: promoService,
	}
}

// Quote рассчитывает стоимость заказа по существующему билету.
// Несуществующий промокод не является ошибкой и просто не дает скидки.
func (s *pricingService) Quote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error) {
	ticket, err := s.eventService.GetTicket(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}

	quote, promo, err := s.PriceOrder(ctx, ticket, req.Quantity, req.PromoCode)
	if err != nil {
		return nil, err
	}

	resp := &QuoteResponse{
		TicketID:      ticket.ID,
		UnitPrice:     ticket.UnitPrice,
		Quantity:      req.Quantity,
		BaseTotal:     quote.BaseTotal,
		PromoDiscount: quote.PromoDiscount,
		GroupDiscount: quote.GroupDiscount,
		Discount:      quote.Discount,
		Total:         quote.Total,
	}
	if promo != nil {
		resp.PromoCode = promo.Code
	}
	return resp, nil
}

// PriceOrder выполняет расчет и возвращает примененный промокод, если он был найден
func (s *pricingService) PriceOrder(ctx context.Context, ticket *entity.Ticket, quantity int, promoCode string) (*pricing.Quote, *entity.PromoCode, error) {
	promo, err := s.promoService.FindPromo(ctx, promoCode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up promo code: %w", err)
	}

	quote, err := pricing.ComputeTotal(ticket.UnitPrice, quantity, promo)
	if err != nil {
		return nil, nil, err
	}
	return quote, promo, nil
}
