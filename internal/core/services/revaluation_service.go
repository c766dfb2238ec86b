package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier_finance_app/internal/apperrors"
	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	portsrepo "github.com/atelierhq/atelier_finance_app/internal/core/ports/repositories"
	portssvc "github.com/atelierhq/atelier_finance_app/internal/core/ports/services"
)

// revaluationService recomputes base-currency equivalents of foreign-currency
// balances and attributes unrealized gain/loss. The computation itself is a
// pure function of (balance, originalRate, currentRate); only RevalueAll
// touches storage, and even that never rewrites an original rate.
type revaluationService struct {
	currencyRepo  portsrepo.CurrencyRepositoryFacade
	rateFreshness time.Duration
}

// NewRevaluationService creates a new RevaluationService. rateFreshness is the
// maximum age a rate may have before conversions refuse it as stale.
func NewRevaluationService(currencyRepo portsrepo.CurrencyRepositoryFacade, rateFreshness time.Duration) portssvc.RevaluationSvcFacade {
	return &revaluationService{
		currencyRepo:  currencyRepo,
		rateFreshness: rateFreshness,
	}
}

var _ portssvc.RevaluationSvcFacade = (*revaluationService)(nil)

// Convert returns amount x current rate for the given currency.
func (s *revaluationService) Convert(ctx context.Context, amount decimal.Decimal, currencyCode string) (decimal.Decimal, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrUnknownCurrency, currencyCode)
	}

	if s.rateFreshness > 0 {
		age := time.Since(currency.RateUpdatedAt)
		if age > s.rateFreshness {
			return decimal.Zero, fmt.Errorf("%w: rate for %s is %s old (threshold %s)",
				apperrors.ErrStaleRate, currencyCode, age.Round(time.Minute), s.rateFreshness)
		}
	}

	return amount.Mul(currency.Rate), nil
}

// RevalueAccounts is the pure revaluation: for each account,
// baseEquivalent = balance x currentRate and
// unrealizedGainLoss = balance x (currentRate - originalRate).
// The original rate is read, never written; calling twice with unchanged
// inputs yields identical output. The second return value is the aggregate
// gain/loss, which a caller may recognise as an adjusting journal entry.
func (s *revaluationService) RevalueAccounts(accounts []domain.ForeignAccount, rates map[string]decimal.Decimal) ([]domain.RevaluedAccount, decimal.Decimal, error) {
	results := make([]domain.RevaluedAccount, 0, len(accounts))
	aggregate := decimal.Zero

	for _, account := range accounts {
		rate, ok := rates[account.CurrencyCode]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrUnknownCurrency, account.CurrencyCode)
		}

		gainLoss := account.Balance.Mul(rate.Sub(account.OriginalRate))
		results = append(results, domain.RevaluedAccount{
			AccountID:          account.AccountID,
			CurrencyCode:       account.CurrencyCode,
			Balance:            account.Balance,
			OriginalRate:       account.OriginalRate,
			CurrentRate:        rate,
			BaseEquivalent:     account.Balance.Mul(rate),
			UnrealizedGainLoss: gainLoss,
		})
		aggregate = aggregate.Add(gainLoss)
	}

	return results, aggregate, nil
}

// RevalueAll revalues every foreign account at the rates currently on file and
// records the applied rate on each account. Stale rates abort the whole run;
// partially revalued books would be worse than delayed ones.
func (s *revaluationService) RevalueAll(ctx context.Context, userID string) ([]domain.RevaluedAccount, decimal.Decimal, error) {
	accounts, err := s.currencyRepo.ListForeignAccounts(ctx)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to list foreign accounts: %w", err)
	}

	rates := make(map[string]decimal.Decimal)
	now := time.Now().UTC()
	for _, account := range accounts {
		if _, seen := rates[account.CurrencyCode]; seen {
			continue
		}
		currency, err := s.currencyRepo.FindCurrencyByCode(ctx, account.CurrencyCode)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrUnknownCurrency, account.CurrencyCode)
		}
		if s.rateFreshness > 0 && now.Sub(currency.RateUpdatedAt) > s.rateFreshness {
			return nil, decimal.Zero, fmt.Errorf("%w: rate for %s last updated %s",
				apperrors.ErrStaleRate, account.CurrencyCode, currency.RateUpdatedAt.Format(time.RFC3339))
		}
		rates[account.CurrencyCode] = currency.Rate
	}

	results, aggregate, err := s.RevalueAccounts(accounts, rates)
	if err != nil {
		return nil, decimal.Zero, err
	}

	for _, r := range results {
		if err := s.currencyRepo.UpdateCurrentRate(ctx, r.AccountID, r.CurrentRate, userID, now); err != nil {
			return nil, decimal.Zero, fmt.Errorf("failed to record revaluation rate for account %s: %w", r.AccountID, err)
		}
	}

	return results, aggregate, nil
}

// BuildAdjustmentLines constructs the balanced line pair recognising the
// aggregate unrealized gain/loss. A gain debits the FX holding account and
// credits the gain account; a loss does the opposite. A zero aggregate needs
// no adjustment and yields ErrValidation.
func (s *revaluationService) BuildAdjustmentLines(aggregate decimal.Decimal, fxAccountCode, gainAccountCode, lossAccountCode string) ([]domain.JournalLine, error) {
	if aggregate.IsZero() {
		return nil, fmt.Errorf("%w: aggregate gain/loss is zero, no adjustment needed", apperrors.ErrValidation)
	}

	if aggregate.IsPositive() {
		return []domain.JournalLine{
			{AccountCode: fxAccountCode, Debit: aggregate, Position: 0, Description: "Unrealized FX gain"},
			{AccountCode: gainAccountCode, Credit: aggregate, Position: 1, Description: "Unrealized FX gain"},
		}, nil
	}

	loss := aggregate.Neg()
	return []domain.JournalLine{
		{AccountCode: lossAccountCode, Debit: loss, Position: 0, Description: "Unrealized FX loss"},
		{AccountCode: fxAccountCode, Credit: loss, Position: 1, Description: "Unrealized FX loss"},
	}, nil
}
