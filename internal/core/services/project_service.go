package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier_finance_app/internal/apperrors"
	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	portsrepo "github.com/atelierhq/atelier_finance_app/internal/core/ports/repositories"
	portssvc "github.com/atelierhq/atelier_finance_app/internal/core/ports/services"
	"github.com/atelierhq/atelier_finance_app/internal/dto"
	"github.com/atelierhq/atelier_finance_app/internal/middleware"
)

var (
	ErrProjectNotActive = errors.New("project is not active")
	ErrEmptySelection   = errors.New("invoice selection is empty")
)

// hundred is shared by the percentage computations.
var hundred = decimal.NewFromInt(100)

// projectService owns the project cost ledger: cost capture, milestones,
// budget analysis and invoice generation.
type projectService struct {
	projectRepo portsrepo.ProjectRepositoryWithTx
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	ledgerSvc   portssvc.LedgerSvcFacade

	// Account codes for the receivable entry drafted alongside an invoice.
	receivableAccount string
	revenueAccount    string
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo portsrepo.ProjectRepositoryWithTx, invoiceRepo portsrepo.InvoiceRepositoryFacade, ledgerSvc portssvc.LedgerSvcFacade, receivableAccount, revenueAccount string) portssvc.ProjectSvcFacade {
	return &projectService{
		projectRepo:       projectRepo,
		invoiceRepo:       invoiceRepo,
		ledgerSvc:         ledgerSvc,
		receivableAccount: receivableAccount,
		revenueAccount:    revenueAccount,
	}
}

var _ portssvc.ProjectSvcFacade = (*projectService)(nil)

func (s *projectService) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.projectRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.projectRepo.Rollback(ctx, tx)

	if err := fn(tx); err != nil {
		return err
	}
	return s.projectRepo.Commit(ctx, tx)
}

// CreateProject registers a new project in ACTIVE.
func (s *projectService) CreateProject(ctx context.Context, req dto.CreateProjectRequest, creatorUserID string) (*domain.CostProject, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.BillingMethod == domain.BillingFixed && req.FixedPrice == nil {
		return nil, fmt.Errorf("%w: fixed-price projects require a fixed price", apperrors.ErrValidation)
	}
	if req.BillingMethod == domain.BillingRetainer && req.RetainerAmount == nil {
		return nil, fmt.Errorf("%w: retainer projects require a retainer amount", apperrors.ErrValidation)
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("%w: end date precedes start date", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	project := domain.CostProject{
		ProjectID:         uuid.NewString(),
		Code:              req.Code,
		Name:              req.Name,
		Client:            req.Client,
		Status:            domain.ProjectActive,
		BillingMethod:     req.BillingMethod,
		BudgetHours:       req.BudgetHours,
		BudgetAmount:      req.BudgetAmount,
		FixedPrice:        req.FixedPrice,
		RetainerAmount:    req.RetainerAmount,
		RetainerPeriods:   req.RetainerPeriods,
		DefaultHourlyRate: req.DefaultHourlyRate,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.projectRepo.SaveProject(ctx, project); err != nil {
		logger.Error("Failed to save project", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	logger.Info("Project created", slog.String("project_id", project.ProjectID), slog.String("code", project.Code))
	return &project, nil
}

func (s *projectService) GetProject(ctx context.Context, projectID string) (*domain.CostProject, error) {
	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project %s: %w", projectID, err)
	}
	return project, nil
}

func (s *projectService) ListProjects(ctx context.Context, status *domain.ProjectStatus) ([]domain.CostProject, error) {
	return s.projectRepo.ListProjects(ctx, status)
}

// UpdateProjectStatus advances a project's lifecycle status through the
// central transition table. COMPLETED and CANCELLED are terminal.
func (s *projectService) UpdateProjectStatus(ctx context.Context, projectID string, status domain.ProjectStatus, userID string) (*domain.CostProject, error) {
	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project %s: %w", projectID, err)
	}

	if !project.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: project %s cannot move from %s to %s", apperrors.ErrInvalidState, projectID, project.Status, status)
	}

	now := time.Now().UTC()
	if err := s.projectRepo.UpdateProjectStatus(ctx, projectID, status, userID, now); err != nil {
		return nil, fmt.Errorf("failed to update project status: %w", err)
	}

	project.Status = status
	project.LastUpdatedAt = now
	project.LastUpdatedBy = userID
	return project, nil
}

// AddCostEntry records a cost against an active project.
// TotalCost is always derived from quantity x unit cost so the stored total
// can never drift from its inputs.
func (s *projectService) AddCostEntry(ctx context.Context, projectID string, req dto.CreateCostEntryRequest, creatorUserID string) (*domain.CostEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project %s: %w", projectID, err)
	}
	if project.Status != domain.ProjectActive {
		return nil, fmt.Errorf("%w: %s (project is %s)", apperrors.ErrInvalidState, ErrProjectNotActive, project.Status)
	}

	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}
	if req.UnitCost.IsNegative() {
		return nil, fmt.Errorf("%w: unit cost must be non-negative", apperrors.ErrValidation)
	}
	if req.BillableAmount.IsNegative() {
		return nil, fmt.Errorf("%w: billable amount must be non-negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	entry := domain.CostEntry{
		CostEntryID:    uuid.NewString(),
		ProjectID:      projectID,
		Type:           req.Type,
		EntryDate:      req.Date,
		Quantity:       req.Quantity,
		UnitCost:       req.UnitCost,
		TotalCost:      req.Quantity.Mul(req.UnitCost),
		BillableAmount: req.BillableAmount,
		Billable:       req.Billable,
		Description:    req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.projectRepo.SaveCostEntry(ctx, entry); err != nil {
		logger.Error("Failed to save cost entry", slog.String("error", err.Error()), slog.String("project_id", projectID))
		return nil, fmt.Errorf("failed to save cost entry: %w", err)
	}

	return &entry, nil
}

func (s *projectService) ListCostEntries(ctx context.Context, projectID string) ([]domain.CostEntry, error) {
	return s.projectRepo.ListCostEntriesByProject(ctx, projectID)
}

// AddMilestone adds a milestone in PENDING.
func (s *projectService) AddMilestone(ctx context.Context, projectID string, req dto.CreateMilestoneRequest, creatorUserID string) (*domain.Milestone, error) {
	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project %s: %w", projectID, err)
	}
	if project.Status == domain.ProjectCancelled {
		return nil, fmt.Errorf("%w: cannot add milestones to a cancelled project", apperrors.ErrInvalidState)
	}
	if req.Amount != nil && req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: milestone amount must be non-negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	milestone := domain.Milestone{
		MilestoneID: uuid.NewString(),
		ProjectID:   projectID,
		Name:        req.Name,
		DueDate:     req.DueDate,
		Amount:      req.Amount,
		Status:      domain.MilestonePending,
		SortOrder:   req.SortOrder,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.projectRepo.SaveMilestone(ctx, milestone); err != nil {
		return nil, fmt.Errorf("failed to save milestone: %w", err)
	}
	return &milestone, nil
}

func (s *projectService) ListMilestones(ctx context.Context, projectID string) ([]domain.Milestone, error) {
	return s.projectRepo.ListMilestonesByProject(ctx, projectID)
}

func (s *projectService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
}

func (s *projectService) ListInvoices(ctx context.Context, projectID string) ([]domain.Invoice, error) {
	if _, err := s.projectRepo.FindProjectByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.invoiceRepo.ListInvoicesByProject(ctx, projectID)
}

// UpdateMilestoneStatus advances a milestone through the central transition
// table. The completion timestamp stamped here is the actual-finish signal the
// earned value engine reads.
func (s *projectService) UpdateMilestoneStatus(ctx context.Context, milestoneID string, status domain.MilestoneStatus, userID string) (*domain.Milestone, error) {
	milestone, err := s.projectRepo.FindMilestoneByID(ctx, milestoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to find milestone %s: %w", milestoneID, err)
	}

	if !milestone.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: milestone %s cannot move from %s to %s", apperrors.ErrInvalidState, milestoneID, milestone.Status, status)
	}

	now := time.Now().UTC()
	var completedAt *time.Time
	if status == domain.MilestoneCompleted {
		completedAt = &now
	}

	if err := s.projectRepo.UpdateMilestoneStatus(ctx, milestoneID, status, completedAt, userID, now); err != nil {
		return nil, fmt.Errorf("failed to update milestone status: %w", err)
	}

	milestone.Status = status
	milestone.CompletedAt = completedAt
	milestone.LastUpdatedAt = now
	milestone.LastUpdatedBy = userID
	return milestone, nil
}

// ComputeBudgetAnalysis aggregates a project's cost entries into a budget
// snapshot. Revenue follows the billing method: FIXED uses the fixed price,
// RETAINER prorates the retainer by elapsed periods, TIME_AND_MATERIALS uses
// the billable total. A project carrying figures for a method it is not billed
// under has those figures ignored, not summed.
func (s *projectService) ComputeBudgetAnalysis(ctx context.Context, projectID string, asOf time.Time) (*domain.BudgetAnalysis, error) {
	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project %s: %w", projectID, err)
	}

	entries, err := s.projectRepo.ListCostEntriesByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cost entries: %w", err)
	}

	analysis := domain.BudgetAnalysis{
		ProjectID:   projectID,
		AsOf:        asOf,
		CostsByType: make(map[domain.CostType]decimal.Decimal),
	}

	for _, entry := range entries {
		analysis.TotalCost = analysis.TotalCost.Add(entry.TotalCost)
		analysis.CostsByType[entry.Type] = analysis.CostsByType[entry.Type].Add(entry.TotalCost)
		if entry.Type == domain.CostLabor {
			analysis.TotalHours = analysis.TotalHours.Add(entry.Quantity)
		}
		if entry.Billable {
			analysis.TotalBillable = analysis.TotalBillable.Add(entry.BillableAmount)
			if entry.InvoiceID != nil {
				analysis.TotalBilled = analysis.TotalBilled.Add(entry.BillableAmount)
			}
		}
	}
	analysis.UnbilledAmount = analysis.TotalBillable.Sub(analysis.TotalBilled)

	if project.BudgetAmount != nil && project.BudgetAmount.IsPositive() {
		analysis.BudgetUsedPct = analysis.TotalCost.Div(*project.BudgetAmount).Mul(hundred)
	}
	if project.BudgetHours != nil && project.BudgetHours.IsPositive() {
		analysis.HoursUsedPct = analysis.TotalHours.Div(*project.BudgetHours).Mul(hundred)
	}

	analysis.Revenue = projectRevenue(project, analysis.TotalBillable, asOf)
	if analysis.Revenue.IsPositive() {
		pct := analysis.Revenue.Sub(analysis.TotalCost).Div(analysis.Revenue).Mul(hundred)
		analysis.ProfitabilityPct = &pct
	}

	return &analysis, nil
}

// projectRevenue resolves the revenue figure for a project per its billing method.
func projectRevenue(project *domain.CostProject, totalBillable decimal.Decimal, asOf time.Time) decimal.Decimal {
	switch project.BillingMethod {
	case domain.BillingFixed:
		if project.FixedPrice != nil {
			return *project.FixedPrice
		}
	case domain.BillingRetainer:
		if project.RetainerAmount != nil {
			return project.RetainerAmount.Mul(decimal.NewFromInt(int64(elapsedRetainerPeriods(project, asOf))))
		}
	case domain.BillingTimeAndMaterials:
		return totalBillable
	}
	return decimal.Zero
}

// elapsedRetainerPeriods counts the retainer periods (calendar months) that
// have started since the project began, capped at the contracted count.
// The first period counts from day one. Without a start date only the current
// period is assumed.
func elapsedRetainerPeriods(project *domain.CostProject, asOf time.Time) int {
	periods := 1
	if project.StartDate != nil && asOf.After(*project.StartDate) {
		start := *project.StartDate
		months := (asOf.Year()-start.Year())*12 + int(asOf.Month()-start.Month())
		periods = months + 1
	}
	if project.RetainerPeriods > 0 && periods > project.RetainerPeriods {
		periods = project.RetainerPeriods
	}
	if periods < 1 {
		periods = 1
	}
	return periods
}

// GenerateInvoice claims the selected unbilled items and creates the invoice
// in one transaction, so no item can ever be claimed by two invoices.
// A DRAFT receivable entry is drafted afterwards for the caller to review and post.
func (s *projectService) GenerateInvoice(ctx context.Context, projectID string, selection dto.InvoiceSelectionRequest, userID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project %s: %w", projectID, err)
	}

	now := time.Now().UTC()
	invoice := domain.Invoice{
		InvoiceID: uuid.NewString(),
		ProjectID: projectID,
		IssueDate: now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		switch project.BillingMethod {
		case domain.BillingTimeAndMaterials:
			amount, err := s.claimCostEntries(ctx, tx, project, selection.CostEntryIDs, &invoice, userID, now)
			if err != nil {
				return err
			}
			invoice.Amount = amount
		case domain.BillingFixed, domain.BillingRetainer:
			amount, err := s.claimMilestone(ctx, tx, project, selection.MilestoneID, &invoice, userID, now)
			if err != nil {
				return err
			}
			invoice.Amount = amount
		default:
			return fmt.Errorf("%w: unknown billing method %q", apperrors.ErrValidation, project.BillingMethod)
		}

		return s.invoiceRepo.SaveInvoice(ctx, tx, &invoice)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Invoice generated",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("invoice_number", invoice.InvoiceNumber),
		slog.String("project_id", projectID),
		slog.String("amount", invoice.Amount.String()))

	s.draftReceivableEntry(ctx, &invoice, project, userID)
	return &invoice, nil
}

// claimCostEntries locks and validates the selected cost entries, links them
// to the invoice, and returns the invoice amount.
func (s *projectService) claimCostEntries(ctx context.Context, tx pgx.Tx, project *domain.CostProject, entryIDs []string, invoice *domain.Invoice, userID string, now time.Time) (decimal.Decimal, error) {
	if len(entryIDs) == 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrEmptySelection)
	}

	entries, err := s.projectRepo.FindCostEntriesForUpdate(ctx, tx, entryIDs)
	if err != nil {
		return decimal.Zero, err
	}

	amount := decimal.Zero
	for _, entry := range entries {
		if entry.ProjectID != project.ProjectID {
			return decimal.Zero, fmt.Errorf("%w: cost entry %s belongs to another project", apperrors.ErrValidation, entry.CostEntryID)
		}
		if !entry.Billable {
			return decimal.Zero, fmt.Errorf("%w: cost entry %s is not billable", apperrors.ErrValidation, entry.CostEntryID)
		}
		if entry.InvoiceID != nil {
			return decimal.Zero, fmt.Errorf("%w: cost entry %s is on invoice %s", apperrors.ErrAlreadyBilled, entry.CostEntryID, *entry.InvoiceID)
		}
		amount = amount.Add(entry.BillableAmount)
	}

	if err := s.projectRepo.LinkCostEntriesToInvoice(ctx, tx, entryIDs, invoice.InvoiceID, userID, now); err != nil {
		return decimal.Zero, err
	}
	invoice.CostEntryIDs = entryIDs
	return amount, nil
}

// claimMilestone locks and validates the selected milestone, links it to the
// invoice, and returns the invoice amount.
func (s *projectService) claimMilestone(ctx context.Context, tx pgx.Tx, project *domain.CostProject, milestoneID *string, invoice *domain.Invoice, userID string, now time.Time) (decimal.Decimal, error) {
	if milestoneID == nil {
		return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrEmptySelection)
	}

	milestone, err := s.projectRepo.FindMilestoneForUpdate(ctx, tx, *milestoneID)
	if err != nil {
		return decimal.Zero, err
	}
	if milestone.ProjectID != project.ProjectID {
		return decimal.Zero, fmt.Errorf("%w: milestone %s belongs to another project", apperrors.ErrValidation, *milestoneID)
	}
	if milestone.Status != domain.MilestoneCompleted {
		return decimal.Zero, fmt.Errorf("%w: milestone %s is %s, expected COMPLETED", apperrors.ErrInvalidState, *milestoneID, milestone.Status)
	}
	if milestone.Amount == nil || !milestone.Amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: milestone %s has no billable amount", apperrors.ErrValidation, *milestoneID)
	}
	if milestone.InvoiceID != nil {
		return decimal.Zero, fmt.Errorf("%w: milestone %s is on invoice %s", apperrors.ErrAlreadyBilled, *milestoneID, *milestone.InvoiceID)
	}

	if err := s.projectRepo.LinkMilestoneToInvoice(ctx, tx, *milestoneID, invoice.InvoiceID, userID, now); err != nil {
		return decimal.Zero, err
	}
	invoice.MilestoneID = milestoneID
	return *milestone.Amount, nil
}

// draftReceivableEntry creates the DRAFT ledger entry recognising the invoice.
// The claim transaction has already committed; a failure here leaves a valid
// invoice without a draft entry, which the caller can create manually.
func (s *projectService) draftReceivableEntry(ctx context.Context, invoice *domain.Invoice, project *domain.CostProject, userID string) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if s.ledgerSvc == nil || s.receivableAccount == "" || s.revenueAccount == "" {
		return
	}

	entry, err := s.ledgerSvc.CreateEntry(ctx, dto.CreateEntryRequest{
		Date:        invoice.IssueDate,
		Description: fmt.Sprintf("Invoice %s for project %s", invoice.InvoiceNumber, project.Code),
		Reference:   invoice.InvoiceNumber,
		Source:      domain.SourceInvoice,
		Lines: []dto.EntryLineRequest{
			{AccountCode: s.receivableAccount, Debit: invoice.Amount},
			{AccountCode: s.revenueAccount, Credit: invoice.Amount},
		},
	}, userID)
	if err != nil {
		logger.Warn("Failed to draft receivable entry for invoice",
			slog.String("invoice_id", invoice.InvoiceID), slog.String("error", err.Error()))
		return
	}

	if err := s.invoiceRepo.LinkJournalEntry(ctx, invoice.InvoiceID, entry.EntryID); err != nil {
		logger.Warn("Failed to link journal entry to invoice",
			slog.String("invoice_id", invoice.InvoiceID), slog.String("error", err.Error()))
		return
	}
	invoice.JournalEntryID = &entry.EntryID
}
