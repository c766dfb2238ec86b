package services

import (
	"context"
	"time"

	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	"github.com/atelierhq/atelier_finance_app/internal/dto"
	"github.com/shopspring/decimal"
)

// CurrencySvcFacade manages currencies, the rate feed boundary and foreign accounts.
type CurrencySvcFacade interface {
	// GetCurrencyByCode retrieves a currency with its latest rate.
	GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)

	// ListCurrencies retrieves all currencies on file.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)

	// CreateCurrency registers a currency with its initial rate.
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error)

	// RecordRate ingests a fresh rate observation from the external feed.
	RecordRate(ctx context.Context, code string, req dto.UpsertRateRequest, userID string) (*domain.Currency, error)

	// GetRateTrend summarises the persisted rate history for a currency.
	// Fewer than two observations yields ErrInsufficientData.
	GetRateTrend(ctx context.Context, code string, since time.Time) (*domain.RateTrend, error)

	// CreateForeignAccount opens a foreign-currency account, fixing its original rate.
	CreateForeignAccount(ctx context.Context, req dto.CreateForeignAccountRequest, creatorUserID string) (*domain.ForeignAccount, error)

	// ListForeignAccounts retrieves all foreign-currency accounts.
	ListForeignAccounts(ctx context.Context) ([]domain.ForeignAccount, error)
}

// RevaluationSvcFacade performs the pure currency revaluation computations.
type RevaluationSvcFacade interface {
	// Convert returns amount x current rate for the given currency.
	// An unknown currency yields ErrUnknownCurrency; a rate older than the
	// freshness threshold yields ErrStaleRate.
	Convert(ctx context.Context, amount decimal.Decimal, currencyCode string) (decimal.Decimal, error)

	// RevalueAccounts recomputes base-currency equivalents and unrealized
	// gain/loss for the given accounts at the given rates. Pure and idempotent.
	RevalueAccounts(accounts []domain.ForeignAccount, rates map[string]decimal.Decimal) ([]domain.RevaluedAccount, decimal.Decimal, error)

	// RevalueAll loads all foreign accounts and current rates, revalues them,
	// and persists each account's current rate.
	RevalueAll(ctx context.Context, userID string) ([]domain.RevaluedAccount, decimal.Decimal, error)

	// BuildAdjustmentLines constructs balanced journal lines recognising the
	// aggregate unrealized gain/loss; the caller decides whether to post them.
	BuildAdjustmentLines(aggregate decimal.Decimal, fxAccountCode, gainAccountCode, lossAccountCode string) ([]domain.JournalLine, error)
}
