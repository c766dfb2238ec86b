package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelierhq/atelier_finance_app/internal/apperrors"
	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	portsrepo "github.com/atelierhq/atelier_finance_app/internal/core/ports/repositories"
	"github.com/atelierhq/atelier_finance_app/internal/models"
	"github.com/atelierhq/atelier_finance_app/internal/utils/mapping"
)

const projectColumns = `project_id, code, name, client, status, billing_method,
		budget_hours, budget_amount, fixed_price, retainer_amount, retainer_periods,
		default_hourly_rate, start_date, end_date,
		created_at, created_by, last_updated_at, last_updated_by`

const costEntryColumns = `cost_entry_id, project_id, type, entry_date, quantity, unit_cost,
		total_cost, billable_amount, billable, description, invoice_id,
		created_at, created_by, last_updated_at, last_updated_by`

const milestoneColumns = `milestone_id, project_id, name, due_date, amount, status, sort_order,
		completed_at, invoice_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxProjectRepository struct {
	baseRepository
}

// NewPgxProjectRepository creates a new repository for project, cost entry and
// milestone data.
func NewPgxProjectRepository(pool *pgxpool.Pool) portsrepo.ProjectRepositoryWithTx {
	return &PgxProjectRepository{baseRepository{pool: pool}}
}

var _ portsrepo.ProjectRepositoryWithTx = (*PgxProjectRepository)(nil)

// SaveProject persists a new project.
func (r *PgxProjectRepository) SaveProject(ctx context.Context, project domain.CostProject) error {
	m := mapping.ToModelCostProject(project)
	query := `
		INSERT INTO cost_projects (project_id, code, name, client, status, billing_method,
			budget_hours, budget_amount, fixed_price, retainer_amount, retainer_periods,
			default_hourly_rate, start_date, end_date,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := r.pool.Exec(ctx, query,
		m.ProjectID,
		m.Code,
		m.Name,
		m.Client,
		m.Status,
		m.BillingMethod,
		m.BudgetHours,
		m.BudgetAmount,
		m.FixedPrice,
		m.RetainerAmount,
		m.RetainerPeriods,
		m.DefaultHourlyRate,
		m.StartDate,
		m.EndDate,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project %s: %w", m.ProjectID, translatePgError(err))
	}
	return nil
}

// FindProjectByID retrieves a project by id.
func (r *PgxProjectRepository) FindProjectByID(ctx context.Context, projectID string) (*domain.CostProject, error) {
	query := `SELECT ` + projectColumns + ` FROM cost_projects WHERE project_id = $1;`
	return r.scanProjectRow(r.pool.QueryRow(ctx, query, projectID), projectID)
}

// FindProjectByCode retrieves a project by its unique code.
func (r *PgxProjectRepository) FindProjectByCode(ctx context.Context, code string) (*domain.CostProject, error) {
	query := `SELECT ` + projectColumns + ` FROM cost_projects WHERE code = $1;`
	return r.scanProjectRow(r.pool.QueryRow(ctx, query, code), code)
}

func (r *PgxProjectRepository) scanProjectRow(row pgx.Row, key string) (*domain.CostProject, error) {
	var m models.CostProject
	err := row.Scan(
		&m.ProjectID,
		&m.Code,
		&m.Name,
		&m.Client,
		&m.Status,
		&m.BillingMethod,
		&m.BudgetHours,
		&m.BudgetAmount,
		&m.FixedPrice,
		&m.RetainerAmount,
		&m.RetainerPeriods,
		&m.DefaultHourlyRate,
		&m.StartDate,
		&m.EndDate,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find project %s: %w", key, err)
	}
	project := mapping.ToDomainCostProject(m)
	return &project, nil
}

// ListProjects retrieves projects ordered by code, optionally filtered by status.
func (r *PgxProjectRepository) ListProjects(ctx context.Context, status *domain.ProjectStatus) ([]domain.CostProject, error) {
	query := `SELECT ` + projectColumns + ` FROM cost_projects`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*status))
	}
	query += ` ORDER BY code;`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []domain.CostProject{}
	for rows.Next() {
		var m models.CostProject
		if err := rows.Scan(
			&m.ProjectID,
			&m.Code,
			&m.Name,
			&m.Client,
			&m.Status,
			&m.BillingMethod,
			&m.BudgetHours,
			&m.BudgetAmount,
			&m.FixedPrice,
			&m.RetainerAmount,
			&m.RetainerPeriods,
			&m.DefaultHourlyRate,
			&m.StartDate,
			&m.EndDate,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, mapping.ToDomainCostProject(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}
	return projects, nil
}

// UpdateProjectStatus updates a project's lifecycle status.
func (r *PgxProjectRepository) UpdateProjectStatus(ctx context.Context, projectID string, status domain.ProjectStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE cost_projects
		SET status = $1, last_updated_at = $2, last_updated_by = $3
		WHERE project_id = $4;
	`
	tag, err := r.pool.Exec(ctx, query, string(status), updatedAt, updatedBy, projectID)
	if err != nil {
		return fmt.Errorf("failed to update status for project %s: %w", projectID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SaveCostEntry persists a new cost entry.
func (r *PgxProjectRepository) SaveCostEntry(ctx context.Context, entry domain.CostEntry) error {
	m := mapping.ToModelCostEntry(entry)
	query := `
		INSERT INTO cost_entries (cost_entry_id, project_id, type, entry_date, quantity, unit_cost,
			total_cost, billable_amount, billable, description, invoice_id,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.pool.Exec(ctx, query,
		m.CostEntryID,
		m.ProjectID,
		m.Type,
		m.EntryDate,
		m.Quantity,
		m.UnitCost,
		m.TotalCost,
		m.BillableAmount,
		m.Billable,
		m.Description,
		m.InvoiceID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cost entry %s: %w", m.CostEntryID, translatePgError(err))
	}
	return nil
}

// ListCostEntriesByProject retrieves all cost entries for a project, oldest first.
func (r *PgxProjectRepository) ListCostEntriesByProject(ctx context.Context, projectID string) ([]domain.CostEntry, error) {
	query := `SELECT ` + costEntryColumns + ` FROM cost_entries WHERE project_id = $1 ORDER BY entry_date, created_at;`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cost entries for project %s: %w", projectID, err)
	}
	defer rows.Close()
	return scanCostEntries(rows)
}

// FindCostEntriesForUpdate retrieves the given cost entries under exclusive row
// locks without waiting, so two invoices can never claim the same entry.
func (r *PgxProjectRepository) FindCostEntriesForUpdate(ctx context.Context, tx pgx.Tx, entryIDs []string) ([]domain.CostEntry, error) {
	query := `SELECT ` + costEntryColumns + ` FROM cost_entries WHERE cost_entry_id = ANY($1) FOR UPDATE NOWAIT;`
	rows, err := tx.Query(ctx, query, entryIDs)
	if err != nil {
		if translated := translatePgError(err); errors.Is(translated, apperrors.ErrConcurrentModification) {
			return nil, translated
		}
		return nil, fmt.Errorf("failed to lock cost entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanCostEntries(rows)
	if err != nil {
		if translated := translatePgError(err); errors.Is(translated, apperrors.ErrConcurrentModification) {
			return nil, translated
		}
		return nil, err
	}
	if len(entries) != len(entryIDs) {
		return nil, fmt.Errorf("%w: %d of %d cost entries found", apperrors.ErrNotFound, len(entries), len(entryIDs))
	}
	return entries, nil
}

func scanCostEntries(rows pgx.Rows) ([]domain.CostEntry, error) {
	entries := []models.CostEntry{}
	for rows.Next() {
		var m models.CostEntry
		if err := rows.Scan(
			&m.CostEntryID,
			&m.ProjectID,
			&m.Type,
			&m.EntryDate,
			&m.Quantity,
			&m.UnitCost,
			&m.TotalCost,
			&m.BillableAmount,
			&m.Billable,
			&m.Description,
			&m.InvoiceID,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cost entry: %w", err)
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cost entries: %w", err)
	}
	return mapping.ToDomainCostEntrySlice(entries), nil
}

// LinkCostEntriesToInvoice stamps the invoice id onto the claimed cost entries.
func (r *PgxProjectRepository) LinkCostEntriesToInvoice(ctx context.Context, tx pgx.Tx, entryIDs []string, invoiceID string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE cost_entries
		SET invoice_id = $1, last_updated_at = $2, last_updated_by = $3
		WHERE cost_entry_id = ANY($4) AND invoice_id IS NULL;
	`
	tag, err := tx.Exec(ctx, query, invoiceID, updatedAt, updatedBy, entryIDs)
	if err != nil {
		return fmt.Errorf("failed to link cost entries to invoice %s: %w", invoiceID, err)
	}
	if tag.RowsAffected() != int64(len(entryIDs)) {
		return fmt.Errorf("%w: %d of %d cost entries were unclaimed", apperrors.ErrAlreadyBilled, tag.RowsAffected(), len(entryIDs))
	}
	return nil
}

// SaveMilestone persists a new milestone.
func (r *PgxProjectRepository) SaveMilestone(ctx context.Context, milestone domain.Milestone) error {
	m := mapping.ToModelMilestone(milestone)
	query := `
		INSERT INTO milestones (milestone_id, project_id, name, due_date, amount, status, sort_order,
			completed_at, invoice_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.pool.Exec(ctx, query,
		m.MilestoneID,
		m.ProjectID,
		m.Name,
		m.DueDate,
		m.Amount,
		m.Status,
		m.SortOrder,
		m.CompletedAt,
		m.InvoiceID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert milestone %s: %w", m.MilestoneID, translatePgError(err))
	}
	return nil
}

// FindMilestoneByID retrieves a milestone by id.
func (r *PgxProjectRepository) FindMilestoneByID(ctx context.Context, milestoneID string) (*domain.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM milestones WHERE milestone_id = $1;`
	return r.scanMilestoneRow(r.pool.QueryRow(ctx, query, milestoneID), milestoneID)
}

// FindMilestoneForUpdate retrieves a milestone under an exclusive row lock
// without waiting.
func (r *PgxProjectRepository) FindMilestoneForUpdate(ctx context.Context, tx pgx.Tx, milestoneID string) (*domain.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM milestones WHERE milestone_id = $1 FOR UPDATE NOWAIT;`
	return r.scanMilestoneRow(tx.QueryRow(ctx, query, milestoneID), milestoneID)
}

func (r *PgxProjectRepository) scanMilestoneRow(row pgx.Row, milestoneID string) (*domain.Milestone, error) {
	var m models.Milestone
	err := row.Scan(
		&m.MilestoneID,
		&m.ProjectID,
		&m.Name,
		&m.DueDate,
		&m.Amount,
		&m.Status,
		&m.SortOrder,
		&m.CompletedAt,
		&m.InvoiceID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		if translated := translatePgError(err); errors.Is(translated, apperrors.ErrConcurrentModification) {
			return nil, translated
		}
		return nil, fmt.Errorf("failed to find milestone %s: %w", milestoneID, err)
	}
	milestone := mapping.ToDomainMilestone(m)
	return &milestone, nil
}

// ListMilestonesByProject retrieves a project's milestones ordered by sort order.
func (r *PgxProjectRepository) ListMilestonesByProject(ctx context.Context, projectID string) ([]domain.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM milestones WHERE project_id = $1 ORDER BY sort_order, created_at;`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestones for project %s: %w", projectID, err)
	}
	defer rows.Close()

	milestones := []domain.Milestone{}
	for rows.Next() {
		var m models.Milestone
		if err := rows.Scan(
			&m.MilestoneID,
			&m.ProjectID,
			&m.Name,
			&m.DueDate,
			&m.Amount,
			&m.Status,
			&m.SortOrder,
			&m.CompletedAt,
			&m.InvoiceID,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		milestones = append(milestones, mapping.ToDomainMilestone(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating milestones: %w", err)
	}
	return milestones, nil
}

// UpdateMilestoneStatus updates a milestone's status and completion stamp.
func (r *PgxProjectRepository) UpdateMilestoneStatus(ctx context.Context, milestoneID string, status domain.MilestoneStatus, completedAt *time.Time, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE milestones
		SET status = $1, completed_at = $2, last_updated_at = $3, last_updated_by = $4
		WHERE milestone_id = $5;
	`
	tag, err := r.pool.Exec(ctx, query, string(status), completedAt, updatedAt, updatedBy, milestoneID)
	if err != nil {
		return fmt.Errorf("failed to update status for milestone %s: %w", milestoneID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// LinkMilestoneToInvoice stamps the invoice id onto the claimed milestone.
func (r *PgxProjectRepository) LinkMilestoneToInvoice(ctx context.Context, tx pgx.Tx, milestoneID string, invoiceID string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE milestones
		SET invoice_id = $1, last_updated_at = $2, last_updated_by = $3
		WHERE milestone_id = $4 AND invoice_id IS NULL;
	`
	tag, err := tx.Exec(ctx, query, invoiceID, updatedAt, updatedBy, milestoneID)
	if err != nil {
		return fmt.Errorf("failed to link milestone %s to invoice %s: %w", milestoneID, invoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAlreadyBilled
	}
	return nil
}
