package mapping

import (
	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	"github.com/atelierhq/atelier_finance_app/internal/models"
)

// ToModelCostProject converts a domain CostProject to a model CostProject
func ToModelCostProject(d domain.CostProject) models.CostProject {
	return models.CostProject{
		ProjectID:         d.ProjectID,
		Code:              d.Code,
		Name:              d.Name,
		Client:            d.Client,
		Status:            models.ProjectStatus(d.Status),
		BillingMethod:     models.BillingMethod(d.BillingMethod),
		BudgetHours:       d.BudgetHours,
		BudgetAmount:      d.BudgetAmount,
		FixedPrice:        d.FixedPrice,
		RetainerAmount:    d.RetainerAmount,
		RetainerPeriods:   d.RetainerPeriods,
		DefaultHourlyRate: d.DefaultHourlyRate,
		StartDate:         d.StartDate,
		EndDate:           d.EndDate,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCostProject converts a model CostProject to a domain CostProject
func ToDomainCostProject(m models.CostProject) domain.CostProject {
	return domain.CostProject{
		ProjectID:         m.ProjectID,
		Code:              m.Code,
		Name:              m.Name,
		Client:            m.Client,
		Status:            domain.ProjectStatus(m.Status),
		BillingMethod:     domain.BillingMethod(m.BillingMethod),
		BudgetHours:       m.BudgetHours,
		BudgetAmount:      m.BudgetAmount,
		FixedPrice:        m.FixedPrice,
		RetainerAmount:    m.RetainerAmount,
		RetainerPeriods:   m.RetainerPeriods,
		DefaultHourlyRate: m.DefaultHourlyRate,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelCostEntry converts a domain CostEntry to a model CostEntry
func ToModelCostEntry(d domain.CostEntry) models.CostEntry {
	return models.CostEntry{
		CostEntryID:    d.CostEntryID,
		ProjectID:      d.ProjectID,
		Type:           models.CostType(d.Type),
		EntryDate:      d.EntryDate,
		Quantity:       d.Quantity,
		UnitCost:       d.UnitCost,
		TotalCost:      d.TotalCost,
		BillableAmount: d.BillableAmount,
		Billable:       d.Billable,
		Description:    d.Description,
		InvoiceID:      d.InvoiceID,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCostEntry converts a model CostEntry to a domain CostEntry
func ToDomainCostEntry(m models.CostEntry) domain.CostEntry {
	return domain.CostEntry{
		CostEntryID:    m.CostEntryID,
		ProjectID:      m.ProjectID,
		Type:           domain.CostType(m.Type),
		EntryDate:      m.EntryDate,
		Quantity:       m.Quantity,
		UnitCost:       m.UnitCost,
		TotalCost:      m.TotalCost,
		BillableAmount: m.BillableAmount,
		Billable:       m.Billable,
		Description:    m.Description,
		InvoiceID:      m.InvoiceID,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCostEntrySlice converts a slice of model CostEntries to domain CostEntries
func ToDomainCostEntrySlice(ms []models.CostEntry) []domain.CostEntry {
	ds := make([]domain.CostEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCostEntry(m)
	}
	return ds
}

// ToModelMilestone converts a domain Milestone to a model Milestone
func ToModelMilestone(d domain.Milestone) models.Milestone {
	return models.Milestone{
		MilestoneID: d.MilestoneID,
		ProjectID:   d.ProjectID,
		Name:        d.Name,
		DueDate:     d.DueDate,
		Amount:      d.Amount,
		Status:      models.MilestoneStatus(d.Status),
		SortOrder:   d.SortOrder,
		CompletedAt: d.CompletedAt,
		InvoiceID:   d.InvoiceID,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMilestone converts a model Milestone to a domain Milestone
func ToDomainMilestone(m models.Milestone) domain.Milestone {
	return domain.Milestone{
		MilestoneID: m.MilestoneID,
		ProjectID:   m.ProjectID,
		Name:        m.Name,
		DueDate:     m.DueDate,
		Amount:      m.Amount,
		Status:      domain.MilestoneStatus(m.Status),
		SortOrder:   m.SortOrder,
		CompletedAt: m.CompletedAt,
		InvoiceID:   m.InvoiceID,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
