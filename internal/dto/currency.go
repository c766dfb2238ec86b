package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCurrencyRequest defines the payload for registering a currency.
type CreateCurrencyRequest struct {
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
	Name         string          `json:"name" binding:"required"`
	Symbol       string          `json:"symbol" binding:"required"`
	Rate         decimal.Decimal `json:"rate" binding:"required"`
}

// UpsertRateRequest carries a fresh rate observation from the external feed.
type UpsertRateRequest struct {
	Rate       decimal.Decimal `json:"rate" binding:"required"`
	ObservedAt *time.Time      `json:"observedAt"` // Defaults to now
}

// CreateForeignAccountRequest defines the payload for opening a foreign-currency account.
// The original rate is fixed at this point and never rewritten.
type CreateForeignAccountRequest struct {
	Name         string          `json:"name" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
	Balance      decimal.Decimal `json:"balance"`
	OriginalRate decimal.Decimal `json:"originalRate" binding:"required"`
}

// ConvertRequest asks for a base-currency equivalent of a foreign amount.
type ConvertRequest struct {
	Amount       decimal.Decimal `form:"amount" binding:"required"`
	CurrencyCode string          `form:"currencyCode" binding:"required,len=3"`
}
