package dto

import (
	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CashFlowRequest parameterises a cash-flow projection.
type CashFlowRequest struct {
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	MonthlyRevenue decimal.Decimal `json:"monthlyRevenue"`
	MonthlyExpense decimal.Decimal `json:"monthlyExpense"`
	Periods        int             `json:"periods" binding:"required,min=1,max=120"`
	RevenueGrowth  decimal.Decimal `json:"revenueGrowth"` // Fractional per-period growth, e.g. 0.05
	ExpenseGrowth  decimal.Decimal `json:"expenseGrowth"`

	// MinimumCashThreshold drives alert detection; nil uses the configured default.
	MinimumCashThreshold *decimal.Decimal `json:"minimumCashThreshold"`
}

// ScenarioComparisonRequest runs the same projection under several named scenarios.
type ScenarioComparisonRequest struct {
	OpeningBalance decimal.Decimal           `json:"openingBalance"`
	MonthlyRevenue decimal.Decimal           `json:"monthlyRevenue"`
	MonthlyExpense decimal.Decimal           `json:"monthlyExpense"`
	Periods        int                       `json:"periods" binding:"required,min=1,max=120"`
	Scenarios      []domain.ForecastScenario `json:"scenarios" binding:"required,min=1,dive"`
}

// EarnedValueRequest asks for EVM metrics for a project.
// ActualPctComplete overrides the milestone-derived completion fraction when set.
type EarnedValueRequest struct {
	ActualPctComplete *decimal.Decimal `json:"actualPctComplete"`
}

// CashFlowResponse is the projection plus any detected alerts.
type CashFlowResponse struct {
	Periods []domain.CashFlowPeriod `json:"periods"`
	Alerts  []domain.CashAlert      `json:"alerts"`
}
