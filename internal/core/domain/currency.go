package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency represents a supported currency and its latest rate to the base currency.
// Rates are refreshed by an external feed; the engine never invents one.
type Currency struct {
	CurrencyCode  string          `json:"currencyCode"` // Primary Key (e.g., "USD")
	Name          string          `json:"name"`         // e.g., "US Dollar"
	Symbol        string          `json:"symbol"`       // e.g., "$"
	Rate          decimal.Decimal `json:"rate"`         // Units of base currency per unit of this currency
	RateUpdatedAt time.Time       `json:"rateUpdatedAt"`
	AuditFields
}

// RatePoint is one persisted observation of a currency's rate.
type RatePoint struct {
	CurrencyCode string          `json:"currencyCode"`
	Rate         decimal.Decimal `json:"rate"`
	ObservedAt   time.Time       `json:"observedAt"`
}

// ForeignAccount is a bank or holding account denominated in a non-base currency.
// OriginalRate is fixed at account opening and never rewritten.
type ForeignAccount struct {
	AccountID    string          `json:"accountID"` // Primary Key (UUID)
	Name         string          `json:"name"`
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`      // In the account's own currency
	OriginalRate decimal.Decimal `json:"originalRate"` // Rate recorded at origination
	CurrentRate  decimal.Decimal `json:"currentRate"`  // Rate at last revaluation
	AuditFields
}

// RevaluedAccount is the result of revaluing one ForeignAccount at a given rate.
type RevaluedAccount struct {
	AccountID          string          `json:"accountID"`
	CurrencyCode       string          `json:"currencyCode"`
	Balance            decimal.Decimal `json:"balance"`
	OriginalRate       decimal.Decimal `json:"originalRate"`
	CurrentRate        decimal.Decimal `json:"currentRate"`
	BaseEquivalent     decimal.Decimal `json:"baseEquivalent"`     // Balance x CurrentRate
	UnrealizedGainLoss decimal.Decimal `json:"unrealizedGainLoss"` // Balance x (CurrentRate - OriginalRate)
}

// RateTrend summarises a currency's persisted rate history.
type RateTrend struct {
	CurrencyCode string          `json:"currencyCode"`
	Highest      decimal.Decimal `json:"highest"`
	Lowest       decimal.Decimal `json:"lowest"`
	Volatility   decimal.Decimal `json:"volatility"` // (Highest - Lowest) / Lowest x 100
	Observations int             `json:"observations"`
}
