package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectStatus indicates the lifecycle state of a cost project row.
type ProjectStatus string

// BillingMethod determines how a project's revenue is recognised.
type BillingMethod string

// CostProject tracks costs and milestones against a budget.
type CostProject struct {
	ProjectID         string           `json:"projectID"` // Primary Key (UUID)
	Code              string           `json:"code"`      // Unique
	Name              string           `json:"name"`
	Client            string           `json:"client"`
	Status            ProjectStatus    `json:"status"`
	BillingMethod     BillingMethod    `json:"billingMethod"`
	BudgetHours       *decimal.Decimal `json:"budgetHours"`
	BudgetAmount      *decimal.Decimal `json:"budgetAmount"`
	FixedPrice        *decimal.Decimal `json:"fixedPrice"`
	RetainerAmount    *decimal.Decimal `json:"retainerAmount"`
	RetainerPeriods   int              `json:"retainerPeriods"`
	DefaultHourlyRate decimal.Decimal  `json:"defaultHourlyRate"`
	StartDate         *time.Time       `json:"startDate"`
	EndDate           *time.Time       `json:"endDate"`
	AuditFields
}

// CostType classifies a cost entry.
type CostType string

// CostEntry records one unit of cost against a project.
type CostEntry struct {
	CostEntryID    string          `json:"costEntryID"` // Primary Key (UUID)
	ProjectID      string          `json:"projectID"`   // FK -> CostProject
	Type           CostType        `json:"type"`
	EntryDate      time.Time       `json:"entryDate"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unitCost"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	BillableAmount decimal.Decimal `json:"billableAmount"`
	Billable       bool            `json:"billable"`
	Description    string          `json:"description"`
	InvoiceID      *string         `json:"invoiceID"`
	AuditFields
}

// MilestoneStatus indicates the state of a project milestone row.
type MilestoneStatus string

// Milestone is a scheduled deliverable within a project.
type Milestone struct {
	MilestoneID string           `json:"milestoneID"` // Primary Key (UUID)
	ProjectID   string           `json:"projectID"`   // FK -> CostProject
	Name        string           `json:"name"`
	DueDate     *time.Time       `json:"dueDate"`
	Amount      *decimal.Decimal `json:"amount"`
	Status      MilestoneStatus  `json:"status"`
	SortOrder   int              `json:"sortOrder"`
	CompletedAt *time.Time       `json:"completedAt"`
	InvoiceID   *string          `json:"invoiceID"`
	AuditFields
}
