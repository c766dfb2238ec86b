package mapping

import (
	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	"github.com/atelierhq/atelier_finance_app/internal/models"
)

// ToModelInvoice converts a domain Invoice to a model Invoice.
// Claimed cost entry ids live on the cost entry rows, not the invoice row.
func ToModelInvoice(d domain.Invoice) models.Invoice {
	return models.Invoice{
		InvoiceID:      d.InvoiceID,
		InvoiceNumber:  d.InvoiceNumber,
		ProjectID:      d.ProjectID,
		IssueDate:      d.IssueDate,
		Amount:         d.Amount,
		MilestoneID:    d.MilestoneID,
		JournalEntryID: d.JournalEntryID,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInvoice converts a model Invoice to a domain Invoice
func ToDomainInvoice(m models.Invoice) domain.Invoice {
	return domain.Invoice{
		InvoiceID:      m.InvoiceID,
		InvoiceNumber:  m.InvoiceNumber,
		ProjectID:      m.ProjectID,
		IssueDate:      m.IssueDate,
		Amount:         m.Amount,
		MilestoneID:    m.MilestoneID,
		JournalEntryID: m.JournalEntryID,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
