package repositories

import (
	"context"

	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
)

// ReportingReader supplies whole-ledger aggregates over POSTED entries only.
// These seed the cash-flow forecast; the forecast engine never derives them itself.
type ReportingReader interface {
	// DashboardTotals computes bank balance, total revenue and total expenses.
	DashboardTotals(ctx context.Context) (*domain.DashboardTotals, error)
}
