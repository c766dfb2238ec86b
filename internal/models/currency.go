package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency represents a supported currency and its latest rate to the base currency.
type Currency struct {
	CurrencyCode  string          `json:"currencyCode"` // Primary Key (e.g., "USD")
	Name          string          `json:"name"`
	Symbol        string          `json:"symbol"`
	Rate          decimal.Decimal `json:"rate"`
	RateUpdatedAt time.Time       `json:"rateUpdatedAt"`
	AuditFields
}

// RatePoint is one persisted observation of a currency's rate.
type RatePoint struct {
	CurrencyCode string          `json:"currencyCode"`
	Rate         decimal.Decimal `json:"rate"`
	ObservedAt   time.Time       `json:"observedAt"`
}

// ForeignAccount is a holding account denominated in a non-base currency.
type ForeignAccount struct {
	AccountID    string          `json:"accountID"` // Primary Key (UUID)
	Name         string          `json:"name"`
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`
	OriginalRate decimal.Decimal `json:"originalRate"`
	CurrentRate  decimal.Decimal `json:"currentRate"`
	AuditFields
}
