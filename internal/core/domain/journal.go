package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	Draft  EntryStatus = "DRAFT"
	Posted EntryStatus = "POSTED"
	Voided EntryStatus = "VOIDED"
)

// CanTransitionTo reports whether the status machine permits moving to next.
// The only legal transitions are DRAFT -> POSTED and POSTED -> VOIDED; a DRAFT
// may also be deleted outright, which is not a status transition.
func (s EntryStatus) CanTransitionTo(next EntryStatus) bool {
	switch s {
	case Draft:
		return next == Posted
	case Posted:
		return next == Voided
	default:
		return false
	}
}

// EntrySource classifies how a journal entry originated.
type EntrySource string

const (
	SourceManual      EntrySource = "MANUAL"
	SourceSale        EntrySource = "SALE"
	SourceInvoice     EntrySource = "INVOICE"
	SourceRevaluation EntrySource = "REVALUATION"
	SourceAdjustment  EntrySource = "ADJUSTMENT"
)

// JournalEntry represents a single financial event composed of balanced lines.
// An entry with status other than DRAFT is immutable, except for the
// POSTED -> VOIDED transition which only stamps void metadata.
type JournalEntry struct {
	EntryID         string        `json:"entryID"`     // Primary Key (UUID)
	EntryNumber     string        `json:"entryNumber"` // Human-readable, unique and monotonic per year (e.g. "JE-2026-000042")
	EntryDate       time.Time     `json:"entryDate"`   // Date the event occurred
	Description     string        `json:"description"`
	Reference       string        `json:"reference"` // Optional external reference
	Source          EntrySource   `json:"source"`
	Status          EntryStatus   `json:"status"`
	PostedAt        *time.Time    `json:"postedAt,omitempty"`
	PostedBy        string        `json:"postedBy,omitempty"`
	VoidedAt        *time.Time    `json:"voidedAt,omitempty"`
	VoidedBy        string        `json:"voidedBy,omitempty"`
	ReversalEntryID *string       `json:"reversalEntryID,omitempty"` // Caller-created reversal, recorded at void time
	AttachmentCount int           `json:"attachmentCount"`
	Lines           []JournalLine `json:"lines,omitempty"`
	AuditFields
}

// JournalLine represents a single debit or credit within a JournalEntry.
// Exactly one of Debit and Credit is non-zero; both are non-negative.
type JournalLine struct {
	LineID      string          `json:"lineID"`  // Primary Key (UUID)
	EntryID     string          `json:"entryID"` // FK -> JournalEntry.entryID
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"` // Nullable
	Position    int             `json:"position"`    // Order within the entry
}

// IsDebit reports whether the line carries a debit amount.
func (l JournalLine) IsDebit() bool {
	return l.Debit.IsPositive()
}

// Amount returns the non-zero side of the line.
func (l JournalLine) Amount() decimal.Decimal {
	if l.IsDebit() {
		return l.Debit
	}
	return l.Credit
}
