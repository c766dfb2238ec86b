package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/atelierhq/atelier_finance_app/internal/apperrors"
	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	portsrepo "github.com/atelierhq/atelier_finance_app/internal/core/ports/repositories"
	portssvc "github.com/atelierhq/atelier_finance_app/internal/core/ports/services"
	"github.com/atelierhq/atelier_finance_app/internal/dto"
	"github.com/atelierhq/atelier_finance_app/internal/middleware"
	"github.com/atelierhq/atelier_finance_app/internal/utils/accounting"
)

var (
	ErrEntryMinLines      = errors.New("entry must have at least two lines")
	ErrAccountNotFound    = errors.New("account not found")
	ErrDescriptionMissing = errors.New("entry description is required")
	ErrUnknownSource      = errors.New("unknown entry source")
)

// ledgerService owns the journal entry state machine:
// DRAFT -(post)-> POSTED -(void)-> VOIDED, with DRAFT also deletable.
type ledgerService struct {
	ledgerRepo portsrepo.LedgerRepositoryWithTx
	accountSvc portssvc.AccountSvcFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryWithTx, accountSvc portssvc.AccountSvcFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo: ledgerRepo,
		accountSvc: accountSvc,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// withTx runs fn inside one repository transaction, rolling back on error.
func (s *ledgerService) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.ledgerRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.ledgerRepo.Rollback(ctx, tx)

	if err := fn(tx); err != nil {
		return err
	}
	return s.ledgerRepo.Commit(ctx, tx)
}

func validateSource(source domain.EntrySource) error {
	switch source {
	case domain.SourceManual, domain.SourceSale, domain.SourceInvoice,
		domain.SourceRevaluation, domain.SourceAdjustment:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownSource, source)
}

// CreateEntry validates and persists a new journal entry in DRAFT.
// The balance invariant is checked with exact decimal equality; callers must
// balance fractional cents explicitly.
func (s *ledgerService) CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(req.Lines) < 2 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrEntryMinLines)
	}
	if req.Description == "" {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrDescriptionMissing)
	}

	source := req.Source
	if source == "" {
		source = domain.SourceManual
	}
	if err := validateSource(source); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()

	domainLines := make([]domain.JournalLine, len(req.Lines))
	accountCodes := make([]string, 0, len(req.Lines))
	for i, lineReq := range req.Lines {
		domainLines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountCode: lineReq.AccountCode,
			Debit:       lineReq.Debit,
			Credit:      lineReq.Credit,
			Description: lineReq.Description,
			Position:    i,
		}
		accountCodes = append(accountCodes, lineReq.AccountCode)
	}

	// Per-line invariants plus the double-entry balance check.
	if err := accounting.ValidateEntryBalance(domainLines); err != nil {
		return nil, err
	}

	// Every referenced account code must exist and be active.
	uniqueCodes := uniqueStrings(accountCodes)
	accountsMap, err := s.accountSvc.GetAccountsByCodes(ctx, uniqueCodes)
	if err != nil {
		logger.Error("Failed to fetch accounts for entry creation", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, code := range uniqueCodes {
		acc, found := accountsMap[code]
		if !found {
			return nil, fmt.Errorf("%w: code %s", ErrAccountNotFound, code)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, code)
		}
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   req.Date,
		Description: req.Description,
		Reference:   req.Reference,
		Source:      source,
		Status:      domain.Draft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	// The repository assigns the entry number inside the insert transaction.
	if err := s.ledgerRepo.SaveEntry(ctx, &entry, domainLines); err != nil {
		logger.Error("Failed to save entry", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	logger.Info("Entry created", slog.String("entry_id", entry.EntryID), slog.String("entry_number", entry.EntryNumber))
	entry.Lines = domainLines
	return &entry, nil
}

// PostEntry transitions DRAFT -> POSTED. The balance invariant is re-checked
// defensively inside the same transaction as the status write, so no reader
// ever observes a posted entry whose lines do not balance.
func (s *ledgerService) PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var posted *domain.JournalEntry
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		entry, err := s.ledgerRepo.FindEntryForUpdate(ctx, tx, entryID)
		if err != nil {
			return err
		}
		if entry.Status != domain.Draft {
			return fmt.Errorf("%w: entry %s is %s, expected DRAFT", apperrors.ErrInvalidState, entryID, entry.Status)
		}

		lines, err := s.ledgerRepo.FindLinesByEntryIDInTx(ctx, tx, entryID)
		if err != nil {
			return fmt.Errorf("failed to load lines for posting: %w", err)
		}
		if err := accounting.ValidateEntryBalance(lines); err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := s.ledgerRepo.MarkEntryPosted(ctx, tx, entryID, userID, now); err != nil {
			return err
		}

		entry.Status = domain.Posted
		entry.PostedAt = &now
		entry.PostedBy = userID
		entry.LastUpdatedAt = now
		entry.LastUpdatedBy = userID
		entry.Lines = lines
		posted = entry
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConcurrentModification) {
			logger.Warn("Lost posting race", slog.String("entry_id", entryID))
		}
		return nil, err
	}

	logger.Info("Entry posted", slog.String("entry_id", entryID), slog.String("entry_number", posted.EntryNumber))
	return posted, nil
}

// VoidEntry transitions POSTED -> VOIDED. The entry is kept, not deleted;
// the caller separately creates a reversing entry with debit/credit swapped
// (see accounting.ReversalLines) and may link it here.
func (s *ledgerService) VoidEntry(ctx context.Context, entryID string, reversalEntryID *string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if reversalEntryID != nil {
		reversal, err := s.ledgerRepo.FindEntryByID(ctx, *reversalEntryID)
		if err != nil {
			return nil, fmt.Errorf("reversal entry %s: %w", *reversalEntryID, err)
		}
		if reversal.EntryID == entryID {
			return nil, fmt.Errorf("%w: entry cannot be its own reversal", apperrors.ErrValidation)
		}
	}

	var voided *domain.JournalEntry
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		entry, err := s.ledgerRepo.FindEntryForUpdate(ctx, tx, entryID)
		if err != nil {
			return err
		}
		if !entry.Status.CanTransitionTo(domain.Voided) {
			return fmt.Errorf("%w: entry %s is %s, expected POSTED", apperrors.ErrInvalidState, entryID, entry.Status)
		}

		now := time.Now().UTC()
		if err := s.ledgerRepo.MarkEntryVoided(ctx, tx, entryID, userID, now, reversalEntryID); err != nil {
			return err
		}

		entry.Status = domain.Voided
		entry.VoidedAt = &now
		entry.VoidedBy = userID
		entry.ReversalEntryID = reversalEntryID
		entry.LastUpdatedAt = now
		entry.LastUpdatedBy = userID
		voided = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Entry voided", slog.String("entry_id", entryID))
	return voided, nil
}

// DeleteDraftEntry discards a DRAFT entry outright. Any other status is
// immutable and must go through the void path instead.
func (s *ledgerService) DeleteDraftEntry(ctx context.Context, entryID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		entry, err := s.ledgerRepo.FindEntryForUpdate(ctx, tx, entryID)
		if err != nil {
			return err
		}
		if entry.Status != domain.Draft {
			return fmt.Errorf("%w: only DRAFT entries may be deleted, entry %s is %s", apperrors.ErrInvalidState, entryID, entry.Status)
		}
		return s.ledgerRepo.DeleteDraftEntry(ctx, tx, entryID)
	})
	if err != nil {
		return err
	}

	logger.Info("Draft entry deleted", slog.String("entry_id", entryID), slog.String("user_id", userID))
	return nil
}

// GetEntry retrieves an entry with its lines.
func (s *ledgerService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	lines, err := s.ledgerRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines for entry %s: %w", entryID, err)
	}
	entry.Lines = lines
	return entry, nil
}

// ListEntries retrieves a paginated list of entries.
func (s *ledgerService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20 // Default limit
	}

	entries, nextToken, err := s.ledgerRepo.ListEntries(ctx, limit, params.NextToken, params.Status)
	if err != nil {
		logger.Error("Failed to list entries from repository", "error", err)
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}

	responses := make([]dto.EntryResponse, len(entries))
	for i := range entries {
		responses[i] = dto.ToEntryResponse(&entries[i])
	}

	return &dto.ListEntriesResponse{
		Entries:   responses,
		NextToken: nextToken,
	}, nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
