package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier_finance_app/internal/apperrors"
	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	portsrepo "github.com/atelierhq/atelier_finance_app/internal/core/ports/repositories"
	portssvc "github.com/atelierhq/atelier_finance_app/internal/core/ports/services"
	"github.com/atelierhq/atelier_finance_app/internal/dto"
	"github.com/atelierhq/atelier_finance_app/internal/middleware"
)

var one = decimal.NewFromInt(1)

// forecastService derives earned value metrics and cash-flow projections.
// It reads the project ledger and the reporting aggregates but writes nothing.
type forecastService struct {
	projectRepo   portsrepo.ProjectRepositoryFacade
	reportingRepo portsrepo.ReportingReader

	// minimumCashThreshold is the default alert floor when a request carries none.
	minimumCashThreshold decimal.Decimal
}

// NewForecastService creates a new ForecastService.
func NewForecastService(projectRepo portsrepo.ProjectRepositoryFacade, reportingRepo portsrepo.ReportingReader, minimumCashThreshold decimal.Decimal) portssvc.ForecastSvcFacade {
	return &forecastService{
		projectRepo:          projectRepo,
		reportingRepo:        reportingRepo,
		minimumCashThreshold: minimumCashThreshold,
	}
}

var _ portssvc.ForecastSvcFacade = (*forecastService)(nil)

// ComputeEarnedValue derives the EVM quantities for a project as of a point in
// time. Every ratio with a zero denominator is left nil rather than forced to
// a sentinel number.
func (s *forecastService) ComputeEarnedValue(ctx context.Context, projectID string, actualPctComplete *decimal.Decimal, asOf time.Time) (*domain.EarnedValueMetrics, error) {
	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project %s: %w", projectID, err)
	}

	bac, err := budgetAtCompletion(project)
	if err != nil {
		return nil, err
	}

	actualPct, err := s.resolveActualPct(ctx, projectID, actualPctComplete)
	if err != nil {
		return nil, err
	}

	entries, err := s.projectRepo.ListCostEntriesByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cost entries: %w", err)
	}

	actualCost := decimal.Zero
	var earliestCost *time.Time
	for _, entry := range entries {
		if entry.EntryDate.After(asOf) {
			continue
		}
		actualCost = actualCost.Add(entry.TotalCost)
		if earliestCost == nil || entry.EntryDate.Before(*earliestCost) {
			d := entry.EntryDate
			earliestCost = &d
		}
	}

	metrics := domain.EarnedValueMetrics{
		ProjectID:          projectID,
		AsOf:               asOf,
		BudgetAtCompletion: bac,
		ActualPctComplete:  actualPct,
		EarnedValue:        bac.Mul(actualPct),
		ActualCost:         actualCost,
	}
	metrics.CostVariance = metrics.EarnedValue.Sub(actualCost)

	if plannedPct := plannedPctComplete(project, asOf); plannedPct != nil {
		pv := bac.Mul(*plannedPct)
		sv := metrics.EarnedValue.Sub(pv)
		metrics.PlannedPctComplete = plannedPct
		metrics.PlannedValue = &pv
		metrics.ScheduleVariance = &sv
		if !pv.IsZero() {
			spi := metrics.EarnedValue.Div(pv)
			metrics.SchedulePerfIndex = &spi
		}
	}

	if !actualCost.IsZero() {
		cpi := metrics.EarnedValue.Div(actualCost)
		metrics.CostPerfIndex = &cpi
		if !cpi.IsZero() {
			eac := bac.Div(cpi)
			etc := eac.Sub(actualCost)
			vac := bac.Sub(eac)
			metrics.EstimateAtCompletion = &eac
			metrics.EstimateToComplete = &etc
			metrics.VarianceAtCompletion = &vac
		}
	}

	s.attachBurnRates(&metrics, project, earliestCost, asOf)
	return &metrics, nil
}

// budgetAtCompletion resolves BAC from the budget amount, falling back to the
// fixed price for fixed-price projects without one.
func budgetAtCompletion(project *domain.CostProject) (decimal.Decimal, error) {
	if project.BudgetAmount != nil && project.BudgetAmount.IsPositive() {
		return *project.BudgetAmount, nil
	}
	if project.BillingMethod == domain.BillingFixed && project.FixedPrice != nil && project.FixedPrice.IsPositive() {
		return *project.FixedPrice, nil
	}
	return decimal.Zero, fmt.Errorf("%w: project %s has no budget amount", apperrors.ErrComputationUndefined, project.ProjectID)
}

// resolveActualPct returns the caller's override when present, otherwise the
// completed share of the project's milestones. Amounts weight the share when
// every milestone carries one; otherwise milestones count equally.
func (s *forecastService) resolveActualPct(ctx context.Context, projectID string, override *decimal.Decimal) (decimal.Decimal, error) {
	if override != nil {
		if override.IsNegative() || override.GreaterThan(one) {
			return decimal.Zero, fmt.Errorf("%w: actual completion must be within [0, 1]", apperrors.ErrValidation)
		}
		return *override, nil
	}

	milestones, err := s.projectRepo.ListMilestonesByProject(ctx, projectID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list milestones: %w", err)
	}

	total := decimal.Zero
	completed := decimal.Zero
	weighted := true
	for _, m := range milestones {
		if m.Status == domain.MilestoneCancelled {
			continue
		}
		if m.Amount == nil || !m.Amount.IsPositive() {
			weighted = false
		}
	}
	for _, m := range milestones {
		if m.Status == domain.MilestoneCancelled {
			continue
		}
		weight := one
		if weighted {
			weight = *m.Amount
		}
		total = total.Add(weight)
		if m.Status == domain.MilestoneCompleted {
			completed = completed.Add(weight)
		}
	}
	if total.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: project %s has no milestones to derive completion from", apperrors.ErrInsufficientData, projectID)
	}
	return completed.Div(total), nil
}

// plannedPctComplete derives the schedule-elapsed fraction from the project's
// date range, clamped to [0, 1]. Nil when either date is missing.
func plannedPctComplete(project *domain.CostProject, asOf time.Time) *decimal.Decimal {
	if project.StartDate == nil || project.EndDate == nil {
		return nil
	}
	totalDays := project.EndDate.Sub(*project.StartDate).Hours() / 24
	if totalDays <= 0 {
		return nil
	}
	elapsedDays := asOf.Sub(*project.StartDate).Hours() / 24

	pct := decimal.NewFromFloat(elapsedDays / totalDays)
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	if pct.GreaterThan(one) {
		pct = one
	}
	return &pct
}

// attachBurnRates derives weekly and monthly spend rates from the cost history.
// The window runs from the project start, or the first cost entry when the
// project has no start date.
func (s *forecastService) attachBurnRates(metrics *domain.EarnedValueMetrics, project *domain.CostProject, earliestCost *time.Time, asOf time.Time) {
	start := project.StartDate
	if start == nil {
		start = earliestCost
	}
	if start == nil || metrics.ActualCost.IsZero() {
		return
	}
	days := asOf.Sub(*start).Hours() / 24
	if days < 1 {
		days = 1
	}
	perDay := metrics.ActualCost.Div(decimal.NewFromFloat(days))
	weekly := perDay.Mul(decimal.NewFromInt(7))
	monthly := perDay.Mul(decimal.NewFromInt(30))
	metrics.WeeklyBurnRate = &weekly
	metrics.MonthlyBurnRate = &monthly
}

// ProjectCashFlow folds the growth assumptions forward one period at a time.
// Each period's closing balance becomes the next period's opening balance.
func (s *forecastService) ProjectCashFlow(req dto.CashFlowRequest) ([]domain.CashFlowPeriod, error) {
	if req.Periods < 1 {
		return nil, fmt.Errorf("%w: at least one period is required", apperrors.ErrValidation)
	}
	if req.RevenueGrowth.LessThanOrEqual(decimal.NewFromInt(-1)) || req.ExpenseGrowth.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return nil, fmt.Errorf("%w: growth rate cannot be -100%% or below", apperrors.ErrValidation)
	}

	periods := make([]domain.CashFlowPeriod, 0, req.Periods)
	opening := req.OpeningBalance
	inflow := req.MonthlyRevenue
	outflow := req.MonthlyExpense
	for i := 0; i < req.Periods; i++ {
		net := inflow.Sub(outflow)
		closing := opening.Add(net)
		periods = append(periods, domain.CashFlowPeriod{
			Period:  i,
			Inflow:  inflow,
			Outflow: outflow,
			Net:     net,
			Opening: opening,
			Closing: closing,
		})
		opening = closing
		inflow = inflow.Mul(one.Add(req.RevenueGrowth))
		outflow = outflow.Mul(one.Add(req.ExpenseGrowth))
	}
	return periods, nil
}

// CompareScenarios runs an independent fold per scenario from the same
// starting position.
func (s *forecastService) CompareScenarios(req dto.ScenarioComparisonRequest) ([]domain.ScenarioProjection, error) {
	if len(req.Scenarios) == 0 {
		return nil, fmt.Errorf("%w: at least one scenario is required", apperrors.ErrValidation)
	}

	projections := make([]domain.ScenarioProjection, 0, len(req.Scenarios))
	for _, scenario := range req.Scenarios {
		periods, err := s.ProjectCashFlow(dto.CashFlowRequest{
			OpeningBalance: req.OpeningBalance,
			MonthlyRevenue: req.MonthlyRevenue,
			MonthlyExpense: req.MonthlyExpense,
			Periods:        req.Periods,
			RevenueGrowth:  scenario.RevenueGrowth,
			ExpenseGrowth:  scenario.ExpenseGrowth,
		})
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
		projections = append(projections, domain.ScenarioProjection{Scenario: scenario, Periods: periods})
	}
	return projections, nil
}

// DetectAlerts flags periods whose closing balance breaks the cash floor.
// Negative closings are CRITICAL, closings under the threshold are WARNING.
func (s *forecastService) DetectAlerts(periods []domain.CashFlowPeriod, minimumCashThreshold decimal.Decimal) []domain.CashAlert {
	var alerts []domain.CashAlert
	for _, p := range periods {
		switch {
		case p.Closing.IsNegative():
			alerts = append(alerts, domain.CashAlert{Period: p.Period, Closing: p.Closing, Severity: domain.AlertCritical})
		case p.Closing.LessThan(minimumCashThreshold):
			alerts = append(alerts, domain.CashAlert{Period: p.Period, Closing: p.Closing, Severity: domain.AlertWarning})
		}
	}
	return alerts
}

// ForecastFromDashboard seeds a projection from the ledger's posted totals:
// the bank balance opens the projection, and the recognised revenue and
// expense totals averaged over twelve months seed the monthly flows.
// Request fields that are already set are kept as-is.
func (s *forecastService) ForecastFromDashboard(ctx context.Context, req dto.CashFlowRequest) (*dto.CashFlowResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	totals, err := s.reportingRepo.DashboardTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard totals: %w", err)
	}

	twelve := decimal.NewFromInt(12)
	if req.OpeningBalance.IsZero() {
		req.OpeningBalance = totals.BankBalance
	}
	if req.MonthlyRevenue.IsZero() {
		req.MonthlyRevenue = totals.TotalRevenue.Div(twelve)
	}
	if req.MonthlyExpense.IsZero() {
		req.MonthlyExpense = totals.TotalExpenses.Div(twelve)
	}

	periods, err := s.ProjectCashFlow(req)
	if err != nil {
		return nil, err
	}

	threshold := s.minimumCashThreshold
	if req.MinimumCashThreshold != nil {
		threshold = *req.MinimumCashThreshold
	}
	alerts := s.DetectAlerts(periods, threshold)

	logger.Info("Cash flow forecast computed",
		slog.Int("periods", len(periods)),
		slog.Int("alerts", len(alerts)))

	return &dto.CashFlowResponse{Periods: periods, Alerts: alerts}, nil
}
