package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelierhq/atelier_finance_app/internal/apperrors"
	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	portsrepo "github.com/atelierhq/atelier_finance_app/internal/core/ports/repositories"
	"github.com/atelierhq/atelier_finance_app/internal/models"
	"github.com/atelierhq/atelier_finance_app/internal/utils/mapping"
)

const invoiceColumns = `invoice_id, invoice_number, project_id, issue_date, amount, milestone_id, journal_entry_id,
		created_at, created_by, last_updated_at, last_updated_by`

type PgxInvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewPgxInvoiceRepository creates a new repository for invoice data.
func NewPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{pool: pool}
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

// SaveInvoice persists an invoice within the claiming transaction, assigning
// the next invoice number for the issue year from the counter table.
func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, tx pgx.Tx, invoice *domain.Invoice) error {
	year := invoice.IssueDate.Year()
	var seq int64
	counterQuery := `
		INSERT INTO invoice_number_counters (year, last_value)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = invoice_number_counters.last_value + 1
		RETURNING last_value;
	`
	if err := tx.QueryRow(ctx, counterQuery, year).Scan(&seq); err != nil {
		return fmt.Errorf("failed to claim invoice number for year %d: %w", year, err)
	}
	invoice.InvoiceNumber = fmt.Sprintf("INV-%d-%06d", year, seq)

	m := mapping.ToModelInvoice(*invoice)
	query := `
		INSERT INTO invoices (invoice_id, invoice_number, project_id, issue_date, amount, milestone_id, journal_entry_id,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, query,
		m.InvoiceID,
		m.InvoiceNumber,
		m.ProjectID,
		m.IssueDate,
		m.Amount,
		m.MilestoneID,
		m.JournalEntryID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice %s: %w", m.InvoiceID, translatePgError(err))
	}
	return nil
}

// FindInvoiceByID retrieves an invoice by id, including the ids of the cost
// entries it claimed.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1;`
	var m models.Invoice
	err := r.pool.QueryRow(ctx, query, invoiceID).Scan(
		&m.InvoiceID,
		&m.InvoiceNumber,
		&m.ProjectID,
		&m.IssueDate,
		&m.Amount,
		&m.MilestoneID,
		&m.JournalEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find invoice by ID %s: %w", invoiceID, err)
	}

	invoice := mapping.ToDomainInvoice(m)
	invoice.CostEntryIDs, err = r.claimedCostEntryIDs(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *PgxInvoiceRepository) claimedCostEntryIDs(ctx context.Context, invoiceID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT cost_entry_id FROM cost_entries WHERE invoice_id = $1 ORDER BY entry_date;`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query claimed entries for invoice %s: %w", invoiceID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan claimed entry id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claimed entry ids: %w", err)
	}
	return ids, nil
}

// ListInvoicesByProject retrieves a project's invoices, newest first.
func (r *PgxInvoiceRepository) ListInvoicesByProject(ctx context.Context, projectID string) ([]domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE project_id = $1 ORDER BY issue_date DESC, created_at DESC;`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices for project %s: %w", projectID, err)
	}
	defer rows.Close()

	invoices := []domain.Invoice{}
	for rows.Next() {
		var m models.Invoice
		if err := rows.Scan(
			&m.InvoiceID,
			&m.InvoiceNumber,
			&m.ProjectID,
			&m.IssueDate,
			&m.Amount,
			&m.MilestoneID,
			&m.JournalEntryID,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, mapping.ToDomainInvoice(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}
	return invoices, nil
}

// LinkJournalEntry stamps the draft recognition entry's id onto the invoice.
func (r *PgxInvoiceRepository) LinkJournalEntry(ctx context.Context, invoiceID string, entryID string) error {
	query := `UPDATE invoices SET journal_entry_id = $1, last_updated_at = NOW() WHERE invoice_id = $2;`
	tag, err := r.pool.Exec(ctx, query, entryID, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to link journal entry to invoice %s: %w", invoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
