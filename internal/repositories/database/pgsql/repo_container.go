package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/atelierhq/atelier_finance_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:  NewPgxAccountRepository(dbPool),
		CurrencyRepo: NewPgxCurrencyRepository(dbPool),
		LedgerRepo:   NewPgxLedgerRepository(dbPool),
		ProjectRepo:  NewPgxProjectRepository(dbPool),
		InvoiceRepo:  NewPgxInvoiceRepository(dbPool),
		Reporting:    newReportingRepository(dbPool),
	}
}
