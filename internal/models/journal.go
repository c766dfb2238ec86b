package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry row.
type EntryStatus string

const (
	Draft  EntryStatus = "DRAFT"
	Posted EntryStatus = "POSTED"
	Voided EntryStatus = "VOIDED"
)

// EntrySource classifies how a journal entry originated.
type EntrySource string

// JournalEntry represents a single, balanced financial event composed of multiple lines.
type JournalEntry struct {
	EntryID         string      `json:"entryID"`     // Primary Key (UUID)
	EntryNumber     string      `json:"entryNumber"` // Unique, assigned at insert
	EntryDate       time.Time   `json:"entryDate"`
	Description     string      `json:"description"`
	Reference       string      `json:"reference"`
	Source          EntrySource `json:"source"`
	Status          EntryStatus `json:"status"`
	PostedAt        *time.Time  `json:"postedAt"`
	PostedBy        string      `json:"postedBy"`
	VoidedAt        *time.Time  `json:"voidedAt"`
	VoidedBy        string      `json:"voidedBy"`
	ReversalEntryID *string     `json:"reversalEntryID"`
	AttachmentCount int         `json:"attachmentCount"`
	AuditFields
}

// JournalLine represents a single debit or credit within a JournalEntry.
type JournalLine struct {
	LineID      string          `json:"lineID"`  // Primary Key (UUID)
	EntryID     string          `json:"entryID"` // FK -> JournalEntry
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"` // Nullable
	Position    int             `json:"position"`
}
