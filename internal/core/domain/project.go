package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectStatus indicates the lifecycle state of a cost project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCancelled ProjectStatus = "CANCELLED"
)

// CanTransitionTo reports whether a project status change is legal.
// COMPLETED and CANCELLED are terminal.
func (s ProjectStatus) CanTransitionTo(next ProjectStatus) bool {
	switch s {
	case ProjectActive:
		return next == ProjectCompleted || next == ProjectOnHold || next == ProjectCancelled
	case ProjectOnHold:
		return next == ProjectActive || next == ProjectCancelled
	default:
		return false
	}
}

// BillingMethod determines how a project's revenue is recognised.
type BillingMethod string

const (
	BillingFixed            BillingMethod = "FIXED"
	BillingTimeAndMaterials BillingMethod = "TIME_AND_MATERIALS"
	BillingRetainer         BillingMethod = "RETAINER"
)

// CostProject tracks costs and milestones against a budget for one client engagement.
type CostProject struct {
	ProjectID         string           `json:"projectID"` // Primary Key (UUID)
	Code              string           `json:"code"`      // Unique short code (e.g. "PRJ-014")
	Name              string           `json:"name"`
	Client            string           `json:"client"`
	Status            ProjectStatus    `json:"status"`
	BillingMethod     BillingMethod    `json:"billingMethod"`
	BudgetHours       *decimal.Decimal `json:"budgetHours,omitempty"`
	BudgetAmount      *decimal.Decimal `json:"budgetAmount,omitempty"`
	FixedPrice        *decimal.Decimal `json:"fixedPrice,omitempty"`
	RetainerAmount    *decimal.Decimal `json:"retainerAmount,omitempty"` // Per retainer period
	RetainerPeriods   int              `json:"retainerPeriods"`          // Total contracted periods; 0 when not a retainer
	DefaultHourlyRate decimal.Decimal  `json:"defaultHourlyRate"`
	StartDate         *time.Time       `json:"startDate,omitempty"`
	EndDate           *time.Time       `json:"endDate,omitempty"`
	AuditFields
}

// CostType classifies a cost entry.
type CostType string

const (
	CostLabor         CostType = "LABOR"
	CostExpense       CostType = "EXPENSE"
	CostMaterial      CostType = "MATERIAL"
	CostSubcontractor CostType = "SUBCONTRACTOR"
	CostOverhead      CostType = "OVERHEAD"
)

// CostEntry records one unit of cost against a project.
// TotalCost is always derived from Quantity x UnitCost, never supplied.
// Once InvoiceID is set the entry is immutable.
type CostEntry struct {
	CostEntryID    string          `json:"costEntryID"` // Primary Key (UUID)
	ProjectID      string          `json:"projectID"`
	Type           CostType        `json:"type"`
	EntryDate      time.Time       `json:"entryDate"`
	Quantity       decimal.Decimal `json:"quantity"` // Hours for LABOR, units otherwise
	UnitCost       decimal.Decimal `json:"unitCost"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	BillableAmount decimal.Decimal `json:"billableAmount"`
	Billable       bool            `json:"billable"`
	Description    string          `json:"description"`
	InvoiceID      *string         `json:"invoiceID,omitempty"`
	AuditFields
}

// MilestoneStatus indicates the state of a project milestone.
type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "PENDING"
	MilestoneInProgress MilestoneStatus = "IN_PROGRESS"
	MilestoneCompleted  MilestoneStatus = "COMPLETED"
	MilestoneCancelled  MilestoneStatus = "CANCELLED"
)

// CanTransitionTo reports whether a milestone status change is legal.
// COMPLETED and CANCELLED are terminal.
func (s MilestoneStatus) CanTransitionTo(next MilestoneStatus) bool {
	switch s {
	case MilestonePending:
		return next == MilestoneInProgress || next == MilestoneCompleted || next == MilestoneCancelled
	case MilestoneInProgress:
		return next == MilestoneCompleted || next == MilestoneCancelled
	default:
		return false
	}
}

// Milestone is a scheduled deliverable within a project. CompletedAt is stamped
// on the transition to COMPLETED and serves as the actual-finish signal for the
// earned value computation.
type Milestone struct {
	MilestoneID string           `json:"milestoneID"` // Primary Key (UUID)
	ProjectID   string           `json:"projectID"`
	Name        string           `json:"name"`
	DueDate     *time.Time       `json:"dueDate,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Status      MilestoneStatus  `json:"status"`
	SortOrder   int              `json:"sortOrder"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	InvoiceID   *string          `json:"invoiceID,omitempty"`
	AuditFields
}
