package services

import (
	"context"
	"time"

	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	"github.com/atelierhq/atelier_finance_app/internal/dto"
	"github.com/shopspring/decimal"
)

// ForecastSvcFacade derives EVM metrics and cash-flow projections.
// Every computation here is a pure function of its inputs; nothing is persisted.
type ForecastSvcFacade interface {
	// ComputeEarnedValue derives the EVM metrics for a project as of a point in
	// time. actualPctComplete overrides the milestone-derived completion
	// fraction when non-nil.
	ComputeEarnedValue(ctx context.Context, projectID string, actualPctComplete *decimal.Decimal, asOf time.Time) (*domain.EarnedValueMetrics, error)

	// ProjectCashFlow folds the growth assumptions over the requested periods.
	ProjectCashFlow(req dto.CashFlowRequest) ([]domain.CashFlowPeriod, error)

	// CompareScenarios runs the same fold under each named scenario with no
	// shared state between runs.
	CompareScenarios(req dto.ScenarioComparisonRequest) ([]domain.ScenarioProjection, error)

	// DetectAlerts classifies projected periods against the cash threshold.
	DetectAlerts(periods []domain.CashFlowPeriod, minimumCashThreshold decimal.Decimal) []domain.CashAlert

	// ForecastFromDashboard seeds a projection from the ledger's aggregate totals.
	ForecastFromDashboard(ctx context.Context, req dto.CashFlowRequest) (*dto.CashFlowResponse, error)
}
