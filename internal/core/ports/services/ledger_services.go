package services

import (
	"context"

	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	"github.com/atelierhq/atelier_finance_app/internal/dto"
)

// LedgerReaderSvc defines read operations for journal entries
type LedgerReaderSvc interface {
	// GetEntry retrieves an entry with its lines.
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// LedgerWriterSvc defines the entry state machine operations
type LedgerWriterSvc interface {
	// CreateEntry validates and persists a new balanced entry in DRAFT.
	CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error)

	// PostEntry transitions DRAFT -> POSTED; irreversible.
	PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// VoidEntry transitions POSTED -> VOIDED, optionally linking the
	// caller-created reversal entry. The reversal itself is never auto-generated.
	VoidEntry(ctx context.Context, entryID string, reversalEntryID *string, userID string) (*domain.JournalEntry, error)

	// DeleteDraftEntry discards a DRAFT entry.
	DeleteDraftEntry(ctx context.Context, entryID string, userID string) error
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
