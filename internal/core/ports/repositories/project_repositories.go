package repositories

import (
	"context"
	"time"

	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ProjectReader defines read operations for cost project data
type ProjectReader interface {
	// FindProjectByID retrieves a project by id.
	FindProjectByID(ctx context.Context, projectID string) (*domain.CostProject, error)

	// FindProjectByCode retrieves a project by its unique code.
	FindProjectByCode(ctx context.Context, code string) (*domain.CostProject, error)

	// ListProjects retrieves projects, optionally filtered by status.
	ListProjects(ctx context.Context, status *domain.ProjectStatus) ([]domain.CostProject, error)
}

// ProjectWriter defines write operations for cost project data
type ProjectWriter interface {
	// SaveProject persists a new project.
	SaveProject(ctx context.Context, project domain.CostProject) error

	// UpdateProjectStatus updates a project's lifecycle status.
	UpdateProjectStatus(ctx context.Context, projectID string, status domain.ProjectStatus, updatedBy string, updatedAt time.Time) error
}

// CostEntryReader defines read operations for cost entry data
type CostEntryReader interface {
	// ListCostEntriesByProject retrieves all cost entries for a project, oldest first.
	ListCostEntriesByProject(ctx context.Context, projectID string) ([]domain.CostEntry, error)
}

// CostEntryWriter defines write operations for cost entry data
type CostEntryWriter interface {
	// SaveCostEntry persists a new cost entry.
	SaveCostEntry(ctx context.Context, entry domain.CostEntry) error

	// FindCostEntriesForUpdate retrieves the given cost entries under exclusive
	// row locks without waiting; a lock held elsewhere surfaces as
	// ErrConcurrentModification. Missing ids surface as ErrNotFound.
	FindCostEntriesForUpdate(ctx context.Context, tx pgx.Tx, entryIDs []string) ([]domain.CostEntry, error)

	// LinkCostEntriesToInvoice stamps the invoice id onto the claimed cost entries.
	LinkCostEntriesToInvoice(ctx context.Context, tx pgx.Tx, entryIDs []string, invoiceID string, updatedBy string, updatedAt time.Time) error
}

// MilestoneReader defines read operations for milestone data
type MilestoneReader interface {
	// FindMilestoneByID retrieves a milestone by id.
	FindMilestoneByID(ctx context.Context, milestoneID string) (*domain.Milestone, error)

	// ListMilestonesByProject retrieves a project's milestones ordered by sort order.
	ListMilestonesByProject(ctx context.Context, projectID string) ([]domain.Milestone, error)
}

// MilestoneWriter defines write operations for milestone data
type MilestoneWriter interface {
	// SaveMilestone persists a new milestone.
	SaveMilestone(ctx context.Context, milestone domain.Milestone) error

	// UpdateMilestoneStatus updates a milestone's status, stamping CompletedAt
	// when the new status is COMPLETED.
	UpdateMilestoneStatus(ctx context.Context, milestoneID string, status domain.MilestoneStatus, completedAt *time.Time, updatedBy string, updatedAt time.Time) error

	// FindMilestoneForUpdate retrieves a milestone under an exclusive row lock
	// without waiting.
	FindMilestoneForUpdate(ctx context.Context, tx pgx.Tx, milestoneID string) (*domain.Milestone, error)

	// LinkMilestoneToInvoice stamps the invoice id onto the claimed milestone.
	LinkMilestoneToInvoice(ctx context.Context, tx pgx.Tx, milestoneID string, invoiceID string, updatedBy string, updatedAt time.Time) error
}

// ProjectRepositoryFacade combines all project-related repository interfaces
type ProjectRepositoryFacade interface {
	ProjectReader
	ProjectWriter
	CostEntryReader
	CostEntryWriter
	MilestoneReader
	MilestoneWriter
}

// ProjectRepositoryWithTx extends ProjectRepositoryFacade with transaction capabilities
type ProjectRepositoryWithTx interface {
	ProjectRepositoryFacade
	TransactionManager
}
