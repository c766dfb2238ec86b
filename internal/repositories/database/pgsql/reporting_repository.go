package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	portsrepo "github.com/atelierhq/atelier_finance_app/internal/core/ports/repositories"
)

// reportingRepository implements the ReportingReader interface
type reportingRepository struct {
	pool *pgxpool.Pool
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingReader {
	return &reportingRepository{pool: pool}
}

var _ portsrepo.ReportingReader = (*reportingRepository)(nil)

// DashboardTotals aggregates POSTED entries by account type. Asset accounts
// carry debit-normal balances, revenue accounts credit-normal, expense
// accounts debit-normal.
func (r *reportingRepository) DashboardTotals(ctx context.Context) (*domain.DashboardTotals, error) {
	query := `
		SELECT
			a.account_type,
			SUM(l.debit - l.credit) AS net
		FROM journal_lines l
		JOIN accounts a ON l.account_code = a.code
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE e.status = 'POSTED'
			AND a.account_type IN ('ASSET', 'REVENUE', 'EXPENSE')
		GROUP BY a.account_type;
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying dashboard totals: %w", err)
	}
	defer rows.Close()

	totals := &domain.DashboardTotals{}
	for rows.Next() {
		var accountType string
		var net decimal.Decimal
		if err := rows.Scan(&accountType, &net); err != nil {
			return nil, fmt.Errorf("error scanning dashboard total: %w", err)
		}
		switch accountType {
		case string(domain.Asset):
			totals.BankBalance = net
		case string(domain.Revenue):
			totals.TotalRevenue = net.Neg()
		case string(domain.Expense):
			totals.TotalExpenses = net
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dashboard totals: %w", err)
	}
	return totals, nil
}
