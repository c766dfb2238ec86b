package services

import (
	"context"

	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
)

// AccountSvcFacade exposes the chart of accounts.
type AccountSvcFacade interface {
	// GetAccountByCode retrieves an account by its stable code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// GetAccountsByCodes retrieves multiple accounts keyed by code.
	GetAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListActiveAccounts retrieves all active accounts for line selection.
	ListActiveAccounts(ctx context.Context) ([]domain.Account, error)

	// CreateAccount registers a new account.
	CreateAccount(ctx context.Context, account domain.Account, creatorUserID string) (*domain.Account, error)
}
