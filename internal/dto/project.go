package dto

import (
	"time"

	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateProjectRequest defines the payload for creating a cost project.
type CreateProjectRequest struct {
	Code              string               `json:"code" binding:"required"`
	Name              string               `json:"name" binding:"required"`
	Client            string               `json:"client"`
	BillingMethod     domain.BillingMethod `json:"billingMethod" binding:"required,oneof=FIXED TIME_AND_MATERIALS RETAINER"`
	BudgetHours       *decimal.Decimal     `json:"budgetHours"`
	BudgetAmount      *decimal.Decimal     `json:"budgetAmount"`
	FixedPrice        *decimal.Decimal     `json:"fixedPrice"`
	RetainerAmount    *decimal.Decimal     `json:"retainerAmount"`
	RetainerPeriods   int                  `json:"retainerPeriods"`
	DefaultHourlyRate decimal.Decimal      `json:"defaultHourlyRate"`
	StartDate         *time.Time           `json:"startDate"`
	EndDate           *time.Time           `json:"endDate"`
}

// UpdateProjectStatusRequest changes a project's lifecycle status.
type UpdateProjectStatusRequest struct {
	Status domain.ProjectStatus `json:"status" binding:"required,oneof=ACTIVE COMPLETED ON_HOLD CANCELLED"`
}

// CreateCostEntryRequest defines the payload for recording a cost entry.
// TotalCost is derived server-side from quantity and unit cost and is never accepted.
type CreateCostEntryRequest struct {
	Type           domain.CostType `json:"type" binding:"required,oneof=LABOR EXPENSE MATERIAL SUBCONTRACTOR OVERHEAD"`
	Date           time.Time       `json:"date" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost       decimal.Decimal `json:"unitCost"`
	BillableAmount decimal.Decimal `json:"billableAmount"`
	Billable       bool            `json:"billable"`
	Description    string          `json:"description"`
}

// CreateMilestoneRequest defines the payload for adding a milestone.
type CreateMilestoneRequest struct {
	Name      string           `json:"name" binding:"required"`
	DueDate   *time.Time       `json:"dueDate"`
	Amount    *decimal.Decimal `json:"amount"`
	SortOrder int              `json:"sortOrder"`
}

// UpdateMilestoneStatusRequest advances a milestone's status.
type UpdateMilestoneStatusRequest struct {
	Status domain.MilestoneStatus `json:"status" binding:"required,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
}

// InvoiceSelectionRequest names the unbilled items an invoice should claim.
// For TIME_AND_MATERIALS projects CostEntryIDs must be non-empty; for FIXED and
// RETAINER projects MilestoneID must name one COMPLETED milestone with an amount.
type InvoiceSelectionRequest struct {
	CostEntryIDs []string `json:"costEntryIDs"`
	MilestoneID  *string  `json:"milestoneID"`
}

// ProjectResponse defines the data returned for a project.
type ProjectResponse struct {
	ProjectID     string    `json:"projectID"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Client        string    `json:"client,omitempty"`
	Status        string    `json:"status"`
	BillingMethod string    `json:"billingMethod"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ToProjectResponse converts a domain.CostProject to ProjectResponse.
func ToProjectResponse(p *domain.CostProject) ProjectResponse {
	return ProjectResponse{
		ProjectID:     p.ProjectID,
		Code:          p.Code,
		Name:          p.Name,
		Client:        p.Client,
		Status:        string(p.Status),
		BillingMethod: string(p.BillingMethod),
		CreatedAt:     p.CreatedAt,
	}
}
