package mapping

import (
	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	"github.com/atelierhq/atelier_finance_app/internal/models"
)

// ToModelCurrency converts a domain Currency to a model Currency
func ToModelCurrency(d domain.Currency) models.Currency {
	return models.Currency{
		CurrencyCode:  d.CurrencyCode,
		Name:          d.Name,
		Symbol:        d.Symbol,
		Rate:          d.Rate,
		RateUpdatedAt: d.RateUpdatedAt,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCurrency converts a model Currency to a domain Currency
func ToDomainCurrency(m models.Currency) domain.Currency {
	return domain.Currency{
		CurrencyCode:  m.CurrencyCode,
		Name:          m.Name,
		Symbol:        m.Symbol,
		Rate:          m.Rate,
		RateUpdatedAt: m.RateUpdatedAt,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainRatePoint converts a model RatePoint to a domain RatePoint
func ToDomainRatePoint(m models.RatePoint) domain.RatePoint {
	return domain.RatePoint{
		CurrencyCode: m.CurrencyCode,
		Rate:         m.Rate,
		ObservedAt:   m.ObservedAt,
	}
}

// ToModelForeignAccount converts a domain ForeignAccount to a model ForeignAccount
func ToModelForeignAccount(d domain.ForeignAccount) models.ForeignAccount {
	return models.ForeignAccount{
		AccountID:    d.AccountID,
		Name:         d.Name,
		CurrencyCode: d.CurrencyCode,
		Balance:      d.Balance,
		OriginalRate: d.OriginalRate,
		CurrentRate:  d.CurrentRate,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainForeignAccount converts a model ForeignAccount to a domain ForeignAccount
func ToDomainForeignAccount(m models.ForeignAccount) domain.ForeignAccount {
	return domain.ForeignAccount{
		AccountID:    m.AccountID,
		Name:         m.Name,
		CurrencyCode: m.CurrencyCode,
		Balance:      m.Balance,
		OriginalRate: m.OriginalRate,
		CurrentRate:  m.CurrentRate,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
