package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier_finance_app/internal/apperrors"
	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	portsrepo "github.com/atelierhq/atelier_finance_app/internal/core/ports/repositories"
	portssvc "github.com/atelierhq/atelier_finance_app/internal/core/ports/services"
	"github.com/atelierhq/atelier_finance_app/internal/dto"
	"github.com/atelierhq/atelier_finance_app/internal/middleware"
)

// currencyService manages currencies, the external rate feed boundary and
// foreign-currency accounts. The engine never invents a rate: every rate on
// file arrived through RecordRate.
type currencyService struct {
	currencyRepo portsrepo.CurrencyRepositoryFacade
	baseCurrency string
}

// NewCurrencyService creates a new CurrencyService.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade, baseCurrency string) portssvc.CurrencySvcFacade {
	return &currencyService{
		currencyRepo: currencyRepo,
		baseCurrency: baseCurrency,
	}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

func normalizeCurrencyCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	return code, nil
}

func (s *currencyService) GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	code, err := normalizeCurrencyCode(code)
	if err != nil {
		return nil, err
	}
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency %s: %w", code, err)
	}
	return currency, nil
}

func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	return s.currencyRepo.ListCurrencies(ctx)
}

func (s *currencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	code, err := normalizeCurrencyCode(req.CurrencyCode)
	if err != nil {
		return nil, err
	}
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	currency := domain.Currency{
		CurrencyCode:  code,
		Name:          req.Name,
		Symbol:        req.Symbol,
		Rate:          req.Rate,
		RateUpdatedAt: now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		return nil, fmt.Errorf("failed to create currency: %w", err)
	}
	return &currency, nil
}

// RecordRate ingests one observation from the external rate feed. It updates
// the currency's current rate and appends to the rate history, which is the
// only source trend statistics may draw from.
func (s *currencyService) RecordRate(ctx context.Context, code string, req dto.UpsertRateRequest, userID string) (*domain.Currency, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	code, err := normalizeCurrencyCode(code)
	if err != nil {
		return nil, err
	}
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}

	observedAt := time.Now().UTC()
	if req.ObservedAt != nil {
		observedAt = req.ObservedAt.UTC()
	}

	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, code); err != nil {
		return nil, fmt.Errorf("failed to find currency %s: %w", code, err)
	}

	if err := s.currencyRepo.UpsertRate(ctx, code, req.Rate, observedAt); err != nil {
		logger.Error("Failed to record rate", slog.String("currency", code), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to record rate for %s: %w", code, err)
	}

	logger.Info("Rate recorded", slog.String("currency", code), slog.String("rate", req.Rate.String()))
	return s.currencyRepo.FindCurrencyByCode(ctx, code)
}

// GetRateTrend summarises persisted rate history. With fewer than two
// observations there is nothing to summarise and ErrInsufficientData is
// returned; statistics are never synthesised to fill the gap.
func (s *currencyService) GetRateTrend(ctx context.Context, code string, since time.Time) (*domain.RateTrend, error) {
	code, err := normalizeCurrencyCode(code)
	if err != nil {
		return nil, err
	}

	points, err := s.currencyRepo.ListRatePoints(ctx, code, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate history for %s: %w", code, err)
	}
	return ComputeRateTrend(code, points)
}

// ComputeRateTrend derives high/low/volatility from persisted observations.
// Exported for direct use by batch callers; pure.
func ComputeRateTrend(code string, points []domain.RatePoint) (*domain.RateTrend, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: %d rate observation(s) for %s", apperrors.ErrInsufficientData, len(points), code)
	}

	highest := points[0].Rate
	lowest := points[0].Rate
	for _, p := range points[1:] {
		if p.Rate.GreaterThan(highest) {
			highest = p.Rate
		}
		if p.Rate.LessThan(lowest) {
			lowest = p.Rate
		}
	}

	volatility := decimal.Zero
	if lowest.IsPositive() {
		volatility = highest.Sub(lowest).Div(lowest).Mul(decimal.NewFromInt(100))
	}

	return &domain.RateTrend{
		CurrencyCode: code,
		Highest:      highest,
		Lowest:       lowest,
		Volatility:   volatility,
		Observations: len(points),
	}, nil
}

func (s *currencyService) CreateForeignAccount(ctx context.Context, req dto.CreateForeignAccountRequest, creatorUserID string) (*domain.ForeignAccount, error) {
	code, err := normalizeCurrencyCode(req.CurrencyCode)
	if err != nil {
		return nil, err
	}
	if code == s.baseCurrency {
		return nil, fmt.Errorf("%w: foreign account cannot be denominated in the base currency %s", apperrors.ErrValidation, s.baseCurrency)
	}
	if req.OriginalRate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: original rate must be positive", apperrors.ErrValidation)
	}
	if req.Balance.IsNegative() {
		return nil, fmt.Errorf("%w: balance must be non-negative", apperrors.ErrValidation)
	}

	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, code); err != nil {
		return nil, fmt.Errorf("failed to validate currency %s: %w", code, err)
	}

	now := time.Now().UTC()
	account := domain.ForeignAccount{
		AccountID:    uuid.NewString(),
		Name:         req.Name,
		CurrencyCode: code,
		Balance:      req.Balance,
		OriginalRate: req.OriginalRate,
		CurrentRate:  req.OriginalRate, // No revaluation has happened yet
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.currencyRepo.SaveForeignAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save foreign account: %w", err)
	}
	return &account, nil
}

func (s *currencyService) ListForeignAccounts(ctx context.Context) ([]domain.ForeignAccount, error) {
	return s.currencyRepo.ListForeignAccounts(ctx)
}
