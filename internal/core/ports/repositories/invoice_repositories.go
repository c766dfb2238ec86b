package repositories

import (
	"context"

	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// InvoiceReader defines read operations for invoice data
type InvoiceReader interface {
	// FindInvoiceByID retrieves an invoice by id, including its claimed item references.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ListInvoicesByProject retrieves a project's invoices, newest first.
	ListInvoicesByProject(ctx context.Context, projectID string) ([]domain.Invoice, error)
}

// InvoiceWriter defines write operations for invoice data
type InvoiceWriter interface {
	// SaveInvoice persists an invoice within the claiming transaction,
	// assigning the next invoice number for the invoice's year and writing it
	// back onto the passed invoice.
	SaveInvoice(ctx context.Context, tx pgx.Tx, invoice *domain.Invoice) error

	// LinkJournalEntry stamps the draft recognition entry's id onto the invoice.
	LinkJournalEntry(ctx context.Context, invoiceID string, entryID string) error
}

// InvoiceRepositoryFacade combines all invoice-related repository interfaces
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
}
