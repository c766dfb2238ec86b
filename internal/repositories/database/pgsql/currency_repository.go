package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier_finance_app/internal/apperrors"
	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	portsrepo "github.com/atelierhq/atelier_finance_app/internal/core/ports/repositories"
	"github.com/atelierhq/atelier_finance_app/internal/models"
	"github.com/atelierhq/atelier_finance_app/internal/utils/mapping"
)

type PgxCurrencyRepository struct {
	pool *pgxpool.Pool
}

// NewPgxCurrencyRepository creates a new repository for currency, rate history
// and foreign account data.
func NewPgxCurrencyRepository(pool *pgxpool.Pool) portsrepo.CurrencyRepositoryFacade {
	return &PgxCurrencyRepository{pool: pool}
}

var _ portsrepo.CurrencyRepositoryFacade = (*PgxCurrencyRepository)(nil)

// SaveCurrency persists a new currency.
func (r *PgxCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	m := mapping.ToModelCurrency(currency)
	query := `
		INSERT INTO currencies (currency_code, name, symbol, rate, rate_updated_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.pool.Exec(ctx, query,
		m.CurrencyCode,
		m.Name,
		m.Symbol,
		m.Rate,
		m.RateUpdatedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert currency %s: %w", m.CurrencyCode, translatePgError(err))
	}
	return nil
}

// FindCurrencyByCode retrieves a currency with its latest rate.
func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	query := `
		SELECT currency_code, name, symbol, rate, rate_updated_at, created_at, created_by, last_updated_at, last_updated_by
		FROM currencies
		WHERE currency_code = $1;
	`
	var m models.Currency
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&m.CurrencyCode,
		&m.Name,
		&m.Symbol,
		&m.Rate,
		&m.RateUpdatedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find currency by code %s: %w", code, err)
	}
	currency := mapping.ToDomainCurrency(m)
	return &currency, nil
}

// ListCurrencies retrieves all currencies on file ordered by code.
func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	query := `
		SELECT currency_code, name, symbol, rate, rate_updated_at, created_at, created_by, last_updated_at, last_updated_by
		FROM currencies
		ORDER BY currency_code;
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	currencies := []domain.Currency{}
	for rows.Next() {
		var m models.Currency
		if err := rows.Scan(
			&m.CurrencyCode,
			&m.Name,
			&m.Symbol,
			&m.Rate,
			&m.RateUpdatedAt,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, mapping.ToDomainCurrency(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currencies: %w", err)
	}
	return currencies, nil
}

// UpsertRate records a fresh rate observation: the currency's current rate is
// replaced and the observation is appended to the history table in one transaction.
func (r *PgxCurrencyRepository) UpsertRate(ctx context.Context, code string, rate decimal.Decimal, observedAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	updateQuery := `
		UPDATE currencies
		SET rate = $1, rate_updated_at = $2, last_updated_at = $2
		WHERE currency_code = $3;
	`
	tag, err := tx.Exec(ctx, updateQuery, rate, observedAt, code)
	if err != nil {
		return fmt.Errorf("failed to update rate for %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	historyQuery := `
		INSERT INTO currency_rate_history (currency_code, rate, observed_at)
		VALUES ($1, $2, $3);
	`
	if _, err := tx.Exec(ctx, historyQuery, code, rate, observedAt); err != nil {
		return fmt.Errorf("failed to append rate history for %s: %w", code, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rate update for %s: %w", code, err)
	}
	return nil
}

// ListRatePoints retrieves the persisted rate history for a currency since the
// given time, oldest first.
func (r *PgxCurrencyRepository) ListRatePoints(ctx context.Context, code string, since time.Time) ([]domain.RatePoint, error) {
	query := `
		SELECT currency_code, rate, observed_at
		FROM currency_rate_history
		WHERE currency_code = $1 AND observed_at >= $2
		ORDER BY observed_at;
	`
	rows, err := r.pool.Query(ctx, query, code, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate history for %s: %w", code, err)
	}
	defer rows.Close()

	points := []domain.RatePoint{}
	for rows.Next() {
		var m models.RatePoint
		if err := rows.Scan(&m.CurrencyCode, &m.Rate, &m.ObservedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rate point: %w", err)
		}
		points = append(points, mapping.ToDomainRatePoint(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rate history: %w", err)
	}
	return points, nil
}

// SaveForeignAccount persists a new foreign-currency account.
func (r *PgxCurrencyRepository) SaveForeignAccount(ctx context.Context, account domain.ForeignAccount) error {
	m := mapping.ToModelForeignAccount(account)
	query := `
		INSERT INTO foreign_accounts (account_id, name, currency_code, balance, original_rate, current_rate, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.pool.Exec(ctx, query,
		m.AccountID,
		m.Name,
		m.CurrencyCode,
		m.Balance,
		m.OriginalRate,
		m.CurrentRate,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert foreign account %s: %w", m.AccountID, translatePgError(err))
	}
	return nil
}

// FindForeignAccountByID retrieves a foreign account by id.
func (r *PgxCurrencyRepository) FindForeignAccountByID(ctx context.Context, accountID string) (*domain.ForeignAccount, error) {
	query := `
		SELECT account_id, name, currency_code, balance, original_rate, current_rate, created_at, created_by, last_updated_at, last_updated_by
		FROM foreign_accounts
		WHERE account_id = $1;
	`
	var m models.ForeignAccount
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&m.AccountID,
		&m.Name,
		&m.CurrencyCode,
		&m.Balance,
		&m.OriginalRate,
		&m.CurrentRate,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find foreign account by ID %s: %w", accountID, err)
	}
	account := mapping.ToDomainForeignAccount(m)
	return &account, nil
}

// ListForeignAccounts retrieves all foreign-currency accounts ordered by name.
func (r *PgxCurrencyRepository) ListForeignAccounts(ctx context.Context) ([]domain.ForeignAccount, error) {
	query := `
		SELECT account_id, name, currency_code, balance, original_rate, current_rate, created_at, created_by, last_updated_at, last_updated_by
		FROM foreign_accounts
		ORDER BY name;
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.ForeignAccount{}
	for rows.Next() {
		var m models.ForeignAccount
		if err := rows.Scan(
			&m.AccountID,
			&m.Name,
			&m.CurrencyCode,
			&m.Balance,
			&m.OriginalRate,
			&m.CurrentRate,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan foreign account: %w", err)
		}
		accounts = append(accounts, mapping.ToDomainForeignAccount(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating foreign accounts: %w", err)
	}
	return accounts, nil
}

// UpdateCurrentRate records the rate applied at the account's latest revaluation.
func (r *PgxCurrencyRepository) UpdateCurrentRate(ctx context.Context, accountID string, rate decimal.Decimal, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE foreign_accounts
		SET current_rate = $1, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $4;
	`
	tag, err := r.pool.Exec(ctx, query, rate, updatedAt, updatedBy, accountID)
	if err != nil {
		return fmt.Errorf("failed to update current rate for account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
