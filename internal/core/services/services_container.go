package services

import (
	portsrepo "github.com/atelierhq/atelier_finance_app/internal/core/ports/repositories"
	portssvc "github.com/atelierhq/atelier_finance_app/internal/core/ports/services"
	"github.com/atelierhq/atelier_finance_app/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Account and currency services come first since the ledger depends on them
	container.Account = NewAccountService(repos.AccountRepo, cfg.BaseCurrency)
	container.Currency = NewCurrencyService(repos.CurrencyRepo, cfg.BaseCurrency)
	container.Revaluation = NewRevaluationService(repos.CurrencyRepo, cfg.RateFreshness)

	container.Ledger = NewLedgerService(repos.LedgerRepo, container.Account)

	container.Project = NewProjectService(
		repos.ProjectRepo,
		repos.InvoiceRepo,
		container.Ledger,
		cfg.ReceivableAccountCode,
		cfg.RevenueAccountCode,
	)

	container.Forecast = NewForecastService(repos.ProjectRepo, repos.Reporting, cfg.MinimumCashThreshold)

	return container
}
