package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/atelierhq/atelier_finance_app/internal/apperrors"
	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	portsrepo "github.com/atelierhq/atelier_finance_app/internal/core/ports/repositories"
	portssvc "github.com/atelierhq/atelier_finance_app/internal/core/ports/services"
	"github.com/atelierhq/atelier_finance_app/internal/core/services"
	"github.com/atelierhq/atelier_finance_app/internal/dto"
)

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingReader = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) DashboardTotals(ctx context.Context) (*domain.DashboardTotals, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardTotals), args.Error(1)
}

// --- Test Suite Setup ---
type ForecastServiceTestSuite struct {
	suite.Suite
	mockProjectRepo   *MockProjectRepository
	mockReportingRepo *MockReportingRepository
	service           portssvc.ForecastSvcFacade
}

func (suite *ForecastServiceTestSuite) SetupTest() {
	suite.mockProjectRepo = new(MockProjectRepository)
	suite.mockReportingRepo = new(MockReportingRepository)
	suite.service = services.NewForecastService(suite.mockProjectRepo, suite.mockReportingRepo, decimal.NewFromInt(10000))
}

func (suite *ForecastServiceTestSuite) budgetedProject() *domain.CostProject {
	budget := decimal.NewFromInt(10000)
	return &domain.CostProject{
		ProjectID:     uuid.NewString(),
		Code:          "WEB-2026-04",
		Status:        domain.ProjectActive,
		BillingMethod: domain.BillingFixed,
		BudgetAmount:  &budget,
	}
}

func pctOf(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

// --- ComputeEarnedValue ---

func (suite *ForecastServiceTestSuite) TestComputeEarnedValue_CoreMetrics() {
	project := suite.budgetedProject()
	asOf := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entries := []domain.CostEntry{
		{EntryDate: asOf.AddDate(0, -1, 0), TotalCost: decimal.NewFromInt(3000)},
		{EntryDate: asOf.AddDate(0, 0, -10), TotalCost: decimal.NewFromInt(2000)},
		// Future costs are excluded from AC.
		{EntryDate: asOf.AddDate(0, 1, 0), TotalCost: decimal.NewFromInt(9999)},
	}

	suite.mockProjectRepo.On("FindProjectByID", mock.Anything, project.ProjectID).Return(project, nil).Once()
	suite.mockProjectRepo.On("ListCostEntriesByProject", mock.Anything, project.ProjectID).Return(entries, nil).Once()

	metrics, err := suite.service.ComputeEarnedValue(context.Background(), project.ProjectID, pctOf(0.4), asOf)

	suite.Require().NoError(err)
	assert.True(suite.T(), metrics.BudgetAtCompletion.Equal(decimal.NewFromInt(10000)))
	assert.True(suite.T(), metrics.EarnedValue.Equal(decimal.NewFromInt(4000)), "EV = 10000 x 0.4")
	assert.True(suite.T(), metrics.ActualCost.Equal(decimal.NewFromInt(5000)))
	assert.True(suite.T(), metrics.CostVariance.Equal(decimal.NewFromInt(-1000)))

	suite.Require().NotNil(metrics.CostPerfIndex)
	assert.True(suite.T(), metrics.CostPerfIndex.Equal(decimal.RequireFromString("0.8")))
	suite.Require().NotNil(metrics.EstimateAtCompletion)
	assert.True(suite.T(), metrics.EstimateAtCompletion.Equal(decimal.NewFromInt(12500)), "EAC = BAC / CPI")
	suite.Require().NotNil(metrics.EstimateToComplete)
	assert.True(suite.T(), metrics.EstimateToComplete.Equal(decimal.NewFromInt(7500)))
	suite.Require().NotNil(metrics.VarianceAtCompletion)
	assert.True(suite.T(), metrics.VarianceAtCompletion.Equal(decimal.NewFromInt(-2500)))

	// No schedule dates, so the schedule-side metrics stay nil.
	assert.Nil(suite.T(), metrics.PlannedValue)
	assert.Nil(suite.T(), metrics.ScheduleVariance)
	assert.Nil(suite.T(), metrics.SchedulePerfIndex)
}

func (suite *ForecastServiceTestSuite) TestComputeEarnedValue_ZeroActualCostLeavesRatiosNil() {
	project := suite.budgetedProject()

	suite.mockProjectRepo.On("FindProjectByID", mock.Anything, project.ProjectID).Return(project, nil).Once()
	suite.mockProjectRepo.On("ListCostEntriesByProject", mock.Anything, project.ProjectID).Return([]domain.CostEntry{}, nil).Once()

	metrics, err := suite.service.ComputeEarnedValue(context.Background(), project.ProjectID, pctOf(0.25), time.Now().UTC())

	suite.Require().NoError(err)
	assert.Nil(suite.T(), metrics.CostPerfIndex)
	assert.Nil(suite.T(), metrics.EstimateAtCompletion)
	assert.Nil(suite.T(), metrics.WeeklyBurnRate)
}

func (suite *ForecastServiceTestSuite) TestComputeEarnedValue_ScheduleMetricsFromDates() {
	project := suite.budgetedProject()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 100)
	project.StartDate = &start
	project.EndDate = &end
	asOf := start.AddDate(0, 0, 50)

	entries := []domain.CostEntry{
		{EntryDate: start.AddDate(0, 0, 10), TotalCost: decimal.NewFromInt(4000)},
	}

	suite.mockProjectRepo.On("FindProjectByID", mock.Anything, project.ProjectID).Return(project, nil).Once()
	suite.mockProjectRepo.On("ListCostEntriesByProject", mock.Anything, project.ProjectID).Return(entries, nil).Once()

	metrics, err := suite.service.ComputeEarnedValue(context.Background(), project.ProjectID, pctOf(0.6), asOf)

	suite.Require().NoError(err)
	suite.Require().NotNil(metrics.PlannedPctComplete)
	assert.True(suite.T(), metrics.PlannedPctComplete.Equal(decimal.RequireFromString("0.5")))
	suite.Require().NotNil(metrics.PlannedValue)
	assert.True(suite.T(), metrics.PlannedValue.Equal(decimal.NewFromInt(5000)))
	suite.Require().NotNil(metrics.ScheduleVariance)
	assert.True(suite.T(), metrics.ScheduleVariance.Equal(decimal.NewFromInt(1000)), "SV = EV - PV")
	suite.Require().NotNil(metrics.SchedulePerfIndex)
	assert.True(suite.T(), metrics.SchedulePerfIndex.Equal(decimal.RequireFromString("1.2")))

	// 4000 spent over 50 days is 80/day.
	suite.Require().NotNil(metrics.WeeklyBurnRate)
	assert.True(suite.T(), metrics.WeeklyBurnRate.Equal(decimal.NewFromInt(560)))
	suite.Require().NotNil(metrics.MonthlyBurnRate)
	assert.True(suite.T(), metrics.MonthlyBurnRate.Equal(decimal.NewFromInt(2400)))
}

func (suite *ForecastServiceTestSuite) TestComputeEarnedValue_MilestoneWeightedCompletion() {
	project := suite.budgetedProject()
	a1 := decimal.NewFromInt(6000)
	a2 := decimal.NewFromInt(2000)
	a3 := decimal.NewFromInt(2000)
	milestones := []domain.Milestone{
		{Status: domain.MilestoneCompleted, Amount: &a1},
		{Status: domain.MilestonePending, Amount: &a2},
		{Status: domain.MilestoneCancelled, Amount: &a3},
		{Status: domain.MilestonePending, Amount: &a3},
	}

	suite.mockProjectRepo.On("FindProjectByID", mock.Anything, project.ProjectID).Return(project, nil).Once()
	suite.mockProjectRepo.On("ListMilestonesByProject", mock.Anything, project.ProjectID).Return(milestones, nil).Once()
	suite.mockProjectRepo.On("ListCostEntriesByProject", mock.Anything, project.ProjectID).Return([]domain.CostEntry{}, nil).Once()

	metrics, err := suite.service.ComputeEarnedValue(context.Background(), project.ProjectID, nil, time.Now().UTC())

	suite.Require().NoError(err)
	// 6000 of 10000 non-cancelled amount is complete.
	assert.True(suite.T(), metrics.ActualPctComplete.Equal(decimal.RequireFromString("0.6")))
}

func (suite *ForecastServiceTestSuite) TestComputeEarnedValue_EqualWeightFallback() {
	project := suite.budgetedProject()
	amount := decimal.NewFromInt(5000)
	milestones := []domain.Milestone{
		{Status: domain.MilestoneCompleted, Amount: &amount},
		{Status: domain.MilestonePending}, // No amount: every milestone counts equally.
		{Status: domain.MilestonePending},
		{Status: domain.MilestonePending},
	}

	suite.mockProjectRepo.On("FindProjectByID", mock.Anything, project.ProjectID).Return(project, nil).Once()
	suite.mockProjectRepo.On("ListMilestonesByProject", mock.Anything, project.ProjectID).Return(milestones, nil).Once()
	suite.mockProjectRepo.On("ListCostEntriesByProject", mock.Anything, project.ProjectID).Return([]domain.CostEntry{}, nil).Once()

	metrics, err := suite.service.ComputeEarnedValue(context.Background(), project.ProjectID, nil, time.Now().UTC())

	suite.Require().NoError(err)
	assert.True(suite.T(), metrics.ActualPctComplete.Equal(decimal.RequireFromString("0.25")))
}

func (suite *ForecastServiceTestSuite) TestComputeEarnedValue_NoMilestonesNoOverride() {
	project := suite.budgetedProject()

	suite.mockProjectRepo.On("FindProjectByID", mock.Anything, project.ProjectID).Return(project, nil).Once()
	suite.mockProjectRepo.On("ListMilestonesByProject", mock.Anything, project.ProjectID).Return([]domain.Milestone{}, nil).Once()

	_, err := suite.service.ComputeEarnedValue(context.Background(), project.ProjectID, nil, time.Now().UTC())

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInsufficientData)
}

func (suite *ForecastServiceTestSuite) TestComputeEarnedValue_NoBudget() {
	project := suite.budgetedProject()
	project.BudgetAmount = nil

	suite.mockProjectRepo.On("FindProjectByID", mock.Anything, project.ProjectID).Return(project, nil).Once()

	_, err := suite.service.ComputeEarnedValue(context.Background(), project.ProjectID, pctOf(0.5), time.Now().UTC())

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrComputationUndefined)
}

func (suite *ForecastServiceTestSuite) TestComputeEarnedValue_FixedPriceFallback() {
	price := decimal.NewFromInt(24000)
	project := suite.budgetedProject()
	project.BudgetAmount = nil
	project.FixedPrice = &price

	suite.mockProjectRepo.On("FindProjectByID", mock.Anything, project.ProjectID).Return(project, nil).Once()
	suite.mockProjectRepo.On("ListCostEntriesByProject", mock.Anything, project.ProjectID).Return([]domain.CostEntry{}, nil).Once()

	metrics, err := suite.service.ComputeEarnedValue(context.Background(), project.ProjectID, pctOf(0.5), time.Now().UTC())

	suite.Require().NoError(err)
	assert.True(suite.T(), metrics.BudgetAtCompletion.Equal(price))
}

func (suite *ForecastServiceTestSuite) TestComputeEarnedValue_OverrideOutOfRange() {
	project := suite.budgetedProject()

	suite.mockProjectRepo.On("FindProjectByID", mock.Anything, project.ProjectID).Return(project, nil).Once()

	_, err := suite.service.ComputeEarnedValue(context.Background(), project.ProjectID, pctOf(1.3), time.Now().UTC())

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

// --- ProjectCashFlow ---

func (suite *ForecastServiceTestSuite) TestProjectCashFlow_FoldsClosingIntoOpening() {
	req := dto.CashFlowRequest{
		OpeningBalance: decimal.NewFromInt(1000),
		MonthlyRevenue: decimal.NewFromInt(500),
		MonthlyExpense: decimal.NewFromInt(300),
		Periods:        3,
	}

	periods, err := suite.service.ProjectCashFlow(req)

	suite.Require().NoError(err)
	suite.Require().Len(periods, 3)
	assert.True(suite.T(), periods[0].Closing.Equal(decimal.NewFromInt(1200)))
	assert.True(suite.T(), periods[1].Opening.Equal(decimal.NewFromInt(1200)))
	assert.True(suite.T(), periods[1].Closing.Equal(decimal.NewFromInt(1400)))
	assert.True(suite.T(), periods[2].Closing.Equal(decimal.NewFromInt(1600)))
}

func (suite *ForecastServiceTestSuite) TestProjectCashFlow_GrowthCompounds() {
	req := dto.CashFlowRequest{
		OpeningBalance: decimal.NewFromInt(0),
		MonthlyRevenue: decimal.NewFromInt(1000),
		MonthlyExpense: decimal.NewFromInt(0),
		Periods:        3,
		RevenueGrowth:  decimal.RequireFromString("0.1"),
	}

	periods, err := suite.service.ProjectCashFlow(req)

	suite.Require().NoError(err)
	assert.True(suite.T(), periods[0].Inflow.Equal(decimal.NewFromInt(1000)))
	assert.True(suite.T(), periods[1].Inflow.Equal(decimal.NewFromInt(1100)))
	assert.True(suite.T(), periods[2].Inflow.Equal(decimal.NewFromInt(1210)))
}

func (suite *ForecastServiceTestSuite) TestProjectCashFlow_GrowthFloorRejected() {
	req := dto.CashFlowRequest{
		Periods:       6,
		RevenueGrowth: decimal.NewFromInt(-1),
	}

	_, err := suite.service.ProjectCashFlow(req)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

// --- CompareScenarios ---

func (suite *ForecastServiceTestSuite) TestCompareScenarios_IndependentFolds() {
	req := dto.ScenarioComparisonRequest{
		OpeningBalance: decimal.NewFromInt(1000),
		MonthlyRevenue: decimal.NewFromInt(1000),
		MonthlyExpense: decimal.NewFromInt(800),
		Periods:        2,
		Scenarios: []domain.ForecastScenario{
			{Name: "base"},
			{Name: "optimistic", RevenueGrowth: decimal.RequireFromString("0.5")},
		},
	}

	projections, err := suite.service.CompareScenarios(req)

	suite.Require().NoError(err)
	suite.Require().Len(projections, 2)
	assert.Equal(suite.T(), "base", projections[0].Scenario.Name)

	// Both scenarios start from the same opening balance.
	assert.True(suite.T(), projections[0].Periods[0].Opening.Equal(decimal.NewFromInt(1000)))
	assert.True(suite.T(), projections[1].Periods[0].Opening.Equal(decimal.NewFromInt(1000)))
	// Base: 1000 + 200 + 200; optimistic second period inflow grows to 1500.
	assert.True(suite.T(), projections[0].Periods[1].Closing.Equal(decimal.NewFromInt(1400)))
	assert.True(suite.T(), projections[1].Periods[1].Closing.Equal(decimal.NewFromInt(1900)))
}

func (suite *ForecastServiceTestSuite) TestCompareScenarios_BadScenarioNamed() {
	req := dto.ScenarioComparisonRequest{
		Periods: 2,
		Scenarios: []domain.ForecastScenario{
			{Name: "collapse", ExpenseGrowth: decimal.NewFromInt(-2)},
		},
	}

	_, err := suite.service.CompareScenarios(req)

	suite.Require().Error(err)
	assert.Contains(suite.T(), err.Error(), "collapse")
}

// --- DetectAlerts ---

func (suite *ForecastServiceTestSuite) TestDetectAlerts_Classification() {
	periods := []domain.CashFlowPeriod{
		{Period: 0, Closing: decimal.NewFromInt(20000)},
		{Period: 1, Closing: decimal.NewFromInt(5000)},
		{Period: 2, Closing: decimal.NewFromInt(-100)},
	}

	alerts := suite.service.DetectAlerts(periods, decimal.NewFromInt(10000))

	suite.Require().Len(alerts, 2)
	assert.Equal(suite.T(), 1, alerts[0].Period)
	assert.Equal(suite.T(), domain.AlertWarning, alerts[0].Severity)
	assert.Equal(suite.T(), 2, alerts[1].Period)
	assert.Equal(suite.T(), domain.AlertCritical, alerts[1].Severity)
}

// --- ForecastFromDashboard ---

func (suite *ForecastServiceTestSuite) TestForecastFromDashboard_SeedsZeroFields() {
	totals := &domain.DashboardTotals{
		BankBalance:   decimal.NewFromInt(50000),
		TotalRevenue:  decimal.NewFromInt(120000),
		TotalExpenses: decimal.NewFromInt(96000),
	}
	suite.mockReportingRepo.On("DashboardTotals", mock.Anything).Return(totals, nil).Once()

	resp, err := suite.service.ForecastFromDashboard(context.Background(), dto.CashFlowRequest{Periods: 2})

	suite.Require().NoError(err)
	suite.Require().Len(resp.Periods, 2)
	assert.True(suite.T(), resp.Periods[0].Opening.Equal(decimal.NewFromInt(50000)))
	assert.True(suite.T(), resp.Periods[0].Inflow.Equal(decimal.NewFromInt(10000)), "monthly revenue is totals / 12")
	assert.True(suite.T(), resp.Periods[0].Outflow.Equal(decimal.NewFromInt(8000)))
	assert.Empty(suite.T(), resp.Alerts)
}

func (suite *ForecastServiceTestSuite) TestForecastFromDashboard_ExplicitFieldsKept() {
	totals := &domain.DashboardTotals{
		BankBalance:   decimal.NewFromInt(50000),
		TotalRevenue:  decimal.NewFromInt(120000),
		TotalExpenses: decimal.NewFromInt(96000),
	}
	suite.mockReportingRepo.On("DashboardTotals", mock.Anything).Return(totals, nil).Once()

	req := dto.CashFlowRequest{
		OpeningBalance: decimal.NewFromInt(500),
		MonthlyRevenue: decimal.NewFromInt(100),
		MonthlyExpense: decimal.NewFromInt(900),
		Periods:        1,
	}

	resp, err := suite.service.ForecastFromDashboard(context.Background(), req)

	suite.Require().NoError(err)
	assert.True(suite.T(), resp.Periods[0].Opening.Equal(decimal.NewFromInt(500)))
	// Closing falls to -300, under the configured 10000 floor and negative.
	suite.Require().Len(resp.Alerts, 1)
	assert.Equal(suite.T(), domain.AlertCritical, resp.Alerts[0].Severity)
}

func TestForecastServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ForecastServiceTestSuite))
}
