package repositories

import (
	"context"
	"time"

	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// EntryReader defines read operations for journal entry data
type EntryReader interface {
	// FindEntryByID retrieves a specific entry (without lines) by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves all lines for an entry, ordered by position.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// ListEntries retrieves a paginated list of entries using token-based pagination,
	// optionally filtered by status. It returns the entries, a token for the next page, and an error.
	ListEntries(ctx context.Context, limit int, nextToken *string, status *domain.EntryStatus) ([]domain.JournalEntry, *string, error)
}

// EntryWriter defines write operations for journal entry data
type EntryWriter interface {
	// SaveEntry persists a DRAFT entry and its lines in one transaction,
	// assigning the next entry number for the entry's year and writing it back
	// onto the passed entry.
	SaveEntry(ctx context.Context, entry *domain.JournalEntry, lines []domain.JournalLine) error

	// DeleteDraftEntry removes a DRAFT entry and its lines.
	DeleteDraftEntry(ctx context.Context, tx pgx.Tx, entryID string) error

	// FindEntryForUpdate retrieves an entry under an exclusive row lock without
	// waiting; a lock held elsewhere surfaces as ErrConcurrentModification.
	FindEntryForUpdate(ctx context.Context, tx pgx.Tx, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryIDInTx retrieves an entry's lines within an open transaction.
	FindLinesByEntryIDInTx(ctx context.Context, tx pgx.Tx, entryID string) ([]domain.JournalLine, error)

	// MarkEntryPosted transitions an entry to POSTED within the given transaction.
	MarkEntryPosted(ctx context.Context, tx pgx.Tx, entryID string, postedBy string, postedAt time.Time) error

	// MarkEntryVoided transitions an entry to VOIDED within the given transaction,
	// optionally linking the caller-created reversal entry.
	MarkEntryVoided(ctx context.Context, tx pgx.Tx, entryID string, voidedBy string, voidedAt time.Time, reversalEntryID *string) error
}

// LedgerRepositoryFacade combines all entry-related repository interfaces
type LedgerRepositoryFacade interface {
	EntryReader
	EntryWriter
}

// LedgerRepositoryWithTx extends LedgerRepositoryFacade with transaction capabilities
type LedgerRepositoryWithTx interface {
	LedgerRepositoryFacade
	TransactionManager
}
