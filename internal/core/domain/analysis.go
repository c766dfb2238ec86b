package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetAnalysis is an aggregated snapshot of a project's cost position.
// It is derived, never persisted.
type BudgetAnalysis struct {
	ProjectID        string                       `json:"projectID"`
	AsOf             time.Time                    `json:"asOf"`
	TotalCost        decimal.Decimal              `json:"totalCost"`
	TotalBillable    decimal.Decimal              `json:"totalBillable"`
	TotalBilled      decimal.Decimal              `json:"totalBilled"`
	UnbilledAmount   decimal.Decimal              `json:"unbilledAmount"`             // TotalBillable - TotalBilled
	TotalHours       decimal.Decimal              `json:"totalHours"`                 // Sum of LABOR quantities
	BudgetUsedPct    decimal.Decimal              `json:"budgetUsedPct"`              // 0 when no budget amount is set
	HoursUsedPct     decimal.Decimal              `json:"hoursUsedPct"`               // 0 when no budget hours are set
	Revenue          decimal.Decimal              `json:"revenue"`                    // Per billing method
	ProfitabilityPct *decimal.Decimal             `json:"profitabilityPct,omitempty"` // nil when revenue is zero
	CostsByType      map[CostType]decimal.Decimal `json:"costsByType"`
}

// EarnedValueMetrics holds the EVM quantities for a project as of a point in time.
// Ratio fields are nil when their denominator is zero; they are never NaN or Inf.
type EarnedValueMetrics struct {
	ProjectID            string           `json:"projectID"`
	AsOf                 time.Time        `json:"asOf"`
	BudgetAtCompletion   decimal.Decimal  `json:"budgetAtCompletion"` // BAC
	PlannedPctComplete   *decimal.Decimal `json:"plannedPctComplete,omitempty"`
	ActualPctComplete    decimal.Decimal  `json:"actualPctComplete"`
	PlannedValue         *decimal.Decimal `json:"plannedValue,omitempty"` // PV = BAC x planned pct
	EarnedValue          decimal.Decimal  `json:"earnedValue"`            // EV = BAC x actual pct
	ActualCost           decimal.Decimal  `json:"actualCost"`             // AC
	CostVariance         decimal.Decimal  `json:"costVariance"`           // CV = EV - AC
	ScheduleVariance     *decimal.Decimal `json:"scheduleVariance,omitempty"`     // SV = EV - PV
	CostPerfIndex        *decimal.Decimal `json:"costPerfIndex,omitempty"`        // CPI = EV / AC
	SchedulePerfIndex    *decimal.Decimal `json:"schedulePerfIndex,omitempty"`    // SPI = EV / PV
	EstimateAtCompletion *decimal.Decimal `json:"estimateAtCompletion,omitempty"` // EAC = BAC / CPI
	EstimateToComplete   *decimal.Decimal `json:"estimateToComplete,omitempty"`   // ETC = EAC - AC
	VarianceAtCompletion *decimal.Decimal `json:"varianceAtCompletion,omitempty"` // VAC = BAC - EAC
	WeeklyBurnRate       *decimal.Decimal `json:"weeklyBurnRate,omitempty"`
	MonthlyBurnRate      *decimal.Decimal `json:"monthlyBurnRate,omitempty"`
}

// CashFlowPeriod is one period of a cash-flow projection.
type CashFlowPeriod struct {
	Period  int             `json:"period"` // 0-indexed
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Net     decimal.Decimal `json:"net"`
	Opening decimal.Decimal `json:"opening"`
	Closing decimal.Decimal `json:"closing"`
}

// ForecastScenario names a pair of growth assumptions applied to a projection.
type ForecastScenario struct {
	Name          string          `json:"name"`
	RevenueGrowth decimal.Decimal `json:"revenueGrowth"` // Per-period fractional growth, e.g. 0.05
	ExpenseGrowth decimal.Decimal `json:"expenseGrowth"`
}

// ScenarioProjection is the projection produced by one scenario.
type ScenarioProjection struct {
	Scenario ForecastScenario `json:"scenario"`
	Periods  []CashFlowPeriod `json:"periods"`
}

// AlertSeverity classifies a cash position alert.
type AlertSeverity string

const (
	AlertWarning  AlertSeverity = "WARNING"
	AlertCritical AlertSeverity = "CRITICAL"
)

// CashAlert flags a projected period whose closing balance falls below the
// minimum cash threshold. Closing below zero is CRITICAL.
type CashAlert struct {
	Period   int             `json:"period"`
	Closing  decimal.Decimal `json:"closing"`
	Severity AlertSeverity   `json:"severity"`
}

// DashboardTotals are whole-ledger aggregates supplied by the reporting reader
// and used to seed cash-flow forecasts.
type DashboardTotals struct {
	BankBalance   decimal.Decimal `json:"bankBalance"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
}
