package repositories

import (
	"context"
	"time"

	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CurrencyReader defines read operations for currency and rate data
type CurrencyReader interface {
	// FindCurrencyByCode retrieves a currency with its latest rate.
	FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)

	// ListCurrencies retrieves all currencies on file.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)

	// ListRatePoints retrieves the persisted rate history for a currency,
	// oldest first. An empty slice means no history has been recorded.
	ListRatePoints(ctx context.Context, code string, since time.Time) ([]domain.RatePoint, error)
}

// CurrencyWriter defines write operations for currency and rate data
type CurrencyWriter interface {
	// SaveCurrency persists a new currency.
	SaveCurrency(ctx context.Context, currency domain.Currency) error

	// UpsertRate records a fresh rate from the external feed, updating the
	// currency's current rate and appending to the rate history.
	UpsertRate(ctx context.Context, code string, rate decimal.Decimal, observedAt time.Time) error
}

// ForeignAccountReader defines read operations for foreign-currency holdings
type ForeignAccountReader interface {
	// FindForeignAccountByID retrieves a foreign account by id.
	FindForeignAccountByID(ctx context.Context, accountID string) (*domain.ForeignAccount, error)

	// ListForeignAccounts retrieves all foreign-currency accounts.
	ListForeignAccounts(ctx context.Context) ([]domain.ForeignAccount, error)
}

// ForeignAccountWriter defines write operations for foreign-currency holdings
type ForeignAccountWriter interface {
	// SaveForeignAccount persists a new foreign account. OriginalRate is fixed here
	// and never rewritten afterward.
	SaveForeignAccount(ctx context.Context, account domain.ForeignAccount) error

	// UpdateCurrentRate records the rate applied at the account's latest revaluation.
	UpdateCurrentRate(ctx context.Context, accountID string, rate decimal.Decimal, updatedBy string, updatedAt time.Time) error
}

// CurrencyRepositoryFacade combines all currency-related repository interfaces
type CurrencyRepositoryFacade interface {
	CurrencyReader
	CurrencyWriter
	ForeignAccountReader
	ForeignAccountWriter
}
