package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the billing document produced from claimed unbilled items.
type Invoice struct {
	InvoiceID      string          `json:"invoiceID"`     // Primary Key (UUID)
	InvoiceNumber  string          `json:"invoiceNumber"` // Unique, assigned at insert
	ProjectID      string          `json:"projectID"`     // FK -> CostProject
	IssueDate      time.Time       `json:"issueDate"`
	Amount         decimal.Decimal `json:"amount"`
	MilestoneID    *string         `json:"milestoneID"`
	JournalEntryID *string         `json:"journalEntryID"`
	AuditFields
}
