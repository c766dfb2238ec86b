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
	"github.com/atelierhq/atelier_finance_app/internal/utils/pagination"
)

const entryColumns = `entry_id, entry_number, entry_date, description, reference, source, status,
		posted_at, posted_by, voided_at, voided_by, reversal_entry_id, attachment_count,
		created_at, created_by, last_updated_at, last_updated_by`

type PgxLedgerRepository struct {
	baseRepository
}

// NewPgxLedgerRepository creates a new repository for journal entry and line data.
func NewPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryWithTx {
	return &PgxLedgerRepository{baseRepository{pool: pool}}
}

var _ portsrepo.LedgerRepositoryWithTx = (*PgxLedgerRepository)(nil)

// SaveEntry saves a DRAFT entry and its lines within a DB transaction, assigning
// the next entry number for the entry's year from the counter table.
func (r *PgxLedgerRepository) SaveEntry(ctx context.Context, entry *domain.JournalEntry, lines []domain.JournalLine) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Claim the next sequence value for the entry's year. The counter row is
	// created on first use.
	year := entry.EntryDate.Year()
	var seq int64
	counterQuery := `
		INSERT INTO entry_number_counters (year, last_value)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = entry_number_counters.last_value + 1
		RETURNING last_value;
	`
	if err := tx.QueryRow(ctx, counterQuery, year).Scan(&seq); err != nil {
		return fmt.Errorf("failed to claim entry number for year %d: %w", year, err)
	}
	entry.EntryNumber = fmt.Sprintf("JE-%d-%06d", year, seq)

	m := mapping.ToModelJournalEntry(*entry)
	entryQuery := `
		INSERT INTO journal_entries (entry_id, entry_number, entry_date, description, reference, source, status,
			posted_at, posted_by, voided_at, voided_by, reversal_entry_id, attachment_count,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err = tx.Exec(ctx, entryQuery,
		m.EntryID,
		m.EntryNumber,
		m.EntryDate,
		m.Description,
		m.Reference,
		m.Source,
		m.Status,
		m.PostedAt,
		m.PostedBy,
		m.VoidedAt,
		m.VoidedBy,
		m.ReversalEntryID,
		m.AttachmentCount,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert journal entry %s: %w", m.EntryID, translatePgError(err))
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (line_id, entry_id, account_code, debit, credit, description, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, line := range lines {
		lm := mapping.ToModelJournalLine(line)
		batch.Queue(lineQuery,
			lm.LineID,
			lm.EntryID,
			lm.AccountCode,
			lm.Debit,
			lm.Credit,
			lm.Description,
			lm.Position,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute line batch for entry %s: %w", m.EntryID, translatePgError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction for entry %s: %w", m.EntryID, err)
	}
	return nil
}

// FindEntryByID retrieves an entry by its ID, without lines.
func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	return r.scanEntryRow(r.pool.QueryRow(ctx, query, entryID), entryID)
}

// FindEntryForUpdate retrieves an entry under an exclusive row lock without
// waiting. A lock held by a concurrent transaction surfaces as
// ErrConcurrentModification rather than blocking.
func (r *PgxLedgerRepository) FindEntryForUpdate(ctx context.Context, tx pgx.Tx, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1 FOR UPDATE NOWAIT;`
	return r.scanEntryRow(tx.QueryRow(ctx, query, entryID), entryID)
}

func (r *PgxLedgerRepository) scanEntryRow(row pgx.Row, entryID string) (*domain.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.EntryNumber,
		&m.EntryDate,
		&m.Description,
		&m.Reference,
		&m.Source,
		&m.Status,
		&m.PostedAt,
		&m.PostedBy,
		&m.VoidedAt,
		&m.VoidedBy,
		&m.ReversalEntryID,
		&m.AttachmentCount,
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
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}
	entry := mapping.ToDomainJournalEntry(m)
	return &entry, nil
}

// FindLinesByEntryID retrieves all lines for an entry, ordered by position.
func (r *PgxLedgerRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT line_id, entry_id, account_code, debit, credit, description, position
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY position;
	`
	rows, err := r.pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()
	return scanLines(rows, entryID)
}

// FindLinesByEntryIDInTx retrieves an entry's lines within an open transaction.
func (r *PgxLedgerRepository) FindLinesByEntryIDInTx(ctx context.Context, tx pgx.Tx, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT line_id, entry_id, account_code, debit, credit, description, position
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY position;
	`
	rows, err := tx.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()
	return scanLines(rows, entryID)
}

func scanLines(rows pgx.Rows, entryID string) ([]domain.JournalLine, error) {
	lines := []models.JournalLine{}
	for rows.Next() {
		var m models.JournalLine
		if err := rows.Scan(
			&m.LineID,
			&m.EntryID,
			&m.AccountCode,
			&m.Debit,
			&m.Credit,
			&m.Description,
			&m.Position,
		); err != nil {
			return nil, fmt.Errorf("failed to scan line for entry %s: %w", entryID, err)
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lines for entry %s: %w", entryID, err)
	}
	return mapping.ToDomainJournalLineSlice(lines), nil
}

// ListEntries retrieves a page of entries ordered newest first, using a
// (entry_date, created_at) keyset token, optionally filtered by status.
func (r *PgxLedgerRepository) ListEntries(ctx context.Context, limit int, nextToken *string, status *domain.EntryStatus) ([]domain.JournalEntry, *string, error) {
	args := []interface{}{}
	query := `SELECT ` + entryColumns + ` FROM journal_entries`

	conditions := ""
	addCondition := func(cond string) {
		if conditions == "" {
			conditions = " WHERE " + cond
		} else {
			conditions += " AND " + cond
		}
	}

	if status != nil {
		args = append(args, string(*status))
		addCondition(fmt.Sprintf("status = $%d", len(args)))
	}

	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		args = append(args, entryDate, createdAt)
		addCondition(fmt.Sprintf("(entry_date, created_at) < ($%d, $%d)", len(args)-1, len(args)))
	}

	args = append(args, limit+1)
	query += conditions + fmt.Sprintf(" ORDER BY entry_date DESC, created_at DESC LIMIT $%d;", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		var m models.JournalEntry
		if err := rows.Scan(
			&m.EntryID,
			&m.EntryNumber,
			&m.EntryDate,
			&m.Description,
			&m.Reference,
			&m.Source,
			&m.Status,
			&m.PostedAt,
			&m.PostedBy,
			&m.VoidedAt,
			&m.VoidedBy,
			&m.ReversalEntryID,
			&m.AttachmentCount,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, mapping.ToDomainJournalEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating entries: %w", err)
	}

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		t := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		token = &t
	}
	return entries, token, nil
}

// MarkEntryPosted transitions an entry to POSTED within the given transaction.
func (r *PgxLedgerRepository) MarkEntryPosted(ctx context.Context, tx pgx.Tx, entryID string, postedBy string, postedAt time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = $1, posted_at = $2, posted_by = $3, last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $4;
	`
	tag, err := tx.Exec(ctx, query, models.Posted, postedAt, postedBy, entryID)
	if err != nil {
		return fmt.Errorf("failed to mark entry %s posted: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkEntryVoided transitions an entry to VOIDED within the given transaction.
func (r *PgxLedgerRepository) MarkEntryVoided(ctx context.Context, tx pgx.Tx, entryID string, voidedBy string, voidedAt time.Time, reversalEntryID *string) error {
	query := `
		UPDATE journal_entries
		SET status = $1, voided_at = $2, voided_by = $3, reversal_entry_id = $4, last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $5;
	`
	tag, err := tx.Exec(ctx, query, models.Voided, voidedAt, voidedBy, reversalEntryID, entryID)
	if err != nil {
		return fmt.Errorf("failed to mark entry %s voided: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteDraftEntry removes a DRAFT entry and its lines. The status guard is in
// the statement itself so a concurrent post cannot race the delete.
func (r *PgxLedgerRepository) DeleteDraftEntry(ctx context.Context, tx pgx.Tx, entryID string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1;`, entryID); err != nil {
		return fmt.Errorf("failed to delete lines for entry %s: %w", entryID, err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1 AND status = $2;`, entryID, models.Draft)
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
