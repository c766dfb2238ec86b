package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atelierhq/atelier_finance_app/internal/apperrors"
	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	portsrepo "github.com/atelierhq/atelier_finance_app/internal/core/ports/repositories"
	portssvc "github.com/atelierhq/atelier_finance_app/internal/core/ports/services"
)

// accountService exposes the chart of accounts. The account list itself is
// owned by an external provider; this service trusts but validates it.
type accountService struct {
	accountRepo  portsrepo.AccountRepositoryFacade
	baseCurrency string
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, baseCurrency string) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo:  accountRepo,
		baseCurrency: baseCurrency,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", code, err)
	}
	return account, nil
}

func (s *accountService) GetAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByCodes(ctx, codes)
}

func (s *accountService) ListActiveAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.accountRepo.ListActiveAccounts(ctx)
}

func (s *accountService) CreateAccount(ctx context.Context, account domain.Account, creatorUserID string) (*domain.Account, error) {
	account.Code = strings.TrimSpace(account.Code)
	if account.Code == "" || account.Name == "" {
		return nil, fmt.Errorf("%w: account code and name are required", apperrors.ErrValidation)
	}
	if !account.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, account.AccountType)
	}
	if account.CurrencyCode == "" {
		account.CurrencyCode = s.baseCurrency
	}

	now := time.Now().UTC()
	account.IsActive = true
	account.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	return &account, nil
}
