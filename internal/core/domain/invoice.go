package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the billing document produced from a selection of unbilled
// cost entries (time and materials) or one completed milestone (fixed/retainer).
type Invoice struct {
	InvoiceID      string          `json:"invoiceID"`     // Primary Key (UUID)
	InvoiceNumber  string          `json:"invoiceNumber"` // e.g. "INV-2026-000107"
	ProjectID      string          `json:"projectID"`
	IssueDate      time.Time       `json:"issueDate"`
	Amount         decimal.Decimal `json:"amount"`
	CostEntryIDs   []string        `json:"costEntryIDs,omitempty"` // Claimed cost entries (T&M)
	MilestoneID    *string         `json:"milestoneID,omitempty"`  // Claimed milestone (fixed/retainer)
	JournalEntryID *string         `json:"journalEntryID,omitempty"`
	AuditFields
}
