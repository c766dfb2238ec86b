package services

import (
	"context"
	"time"

	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	"github.com/atelierhq/atelier_finance_app/internal/dto"
)

// ProjectReaderSvc defines read operations for cost projects
type ProjectReaderSvc interface {
	// GetProject retrieves a project by id.
	GetProject(ctx context.Context, projectID string) (*domain.CostProject, error)

	// ListProjects retrieves projects, optionally filtered by status.
	ListProjects(ctx context.Context, status *domain.ProjectStatus) ([]domain.CostProject, error)

	// ListCostEntries retrieves a project's cost entries.
	ListCostEntries(ctx context.Context, projectID string) ([]domain.CostEntry, error)

	// ListMilestones retrieves a project's milestones.
	ListMilestones(ctx context.Context, projectID string) ([]domain.Milestone, error)

	// ListInvoices retrieves a project's invoices, newest first.
	ListInvoices(ctx context.Context, projectID string) ([]domain.Invoice, error)

	// GetInvoice retrieves an invoice by id, including its claimed item references.
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ComputeBudgetAnalysis aggregates cost entries into a budget snapshot.
	ComputeBudgetAnalysis(ctx context.Context, projectID string, asOf time.Time) (*domain.BudgetAnalysis, error)
}

// ProjectWriterSvc defines mutating operations for cost projects
type ProjectWriterSvc interface {
	// CreateProject registers a new project in ACTIVE.
	CreateProject(ctx context.Context, req dto.CreateProjectRequest, creatorUserID string) (*domain.CostProject, error)

	// UpdateProjectStatus advances a project's lifecycle status.
	UpdateProjectStatus(ctx context.Context, projectID string, status domain.ProjectStatus, userID string) (*domain.CostProject, error)

	// AddCostEntry records a cost against a project; total cost is derived.
	AddCostEntry(ctx context.Context, projectID string, req dto.CreateCostEntryRequest, creatorUserID string) (*domain.CostEntry, error)

	// AddMilestone adds a milestone in PENDING.
	AddMilestone(ctx context.Context, projectID string, req dto.CreateMilestoneRequest, creatorUserID string) (*domain.Milestone, error)

	// UpdateMilestoneStatus advances a milestone's status, stamping the
	// completion time on the transition to COMPLETED.
	UpdateMilestoneStatus(ctx context.Context, milestoneID string, status domain.MilestoneStatus, userID string) (*domain.Milestone, error)

	// GenerateInvoice claims the selected unbilled items and creates one invoice
	// plus a DRAFT receivable journal entry, all in one transaction.
	GenerateInvoice(ctx context.Context, projectID string, selection dto.InvoiceSelectionRequest, userID string) (*domain.Invoice, error)
}

// ProjectSvcFacade combines all project service interfaces
type ProjectSvcFacade interface {
	ProjectReaderSvc
	ProjectWriterSvc
}
