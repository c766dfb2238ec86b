package models

// AccountType defines the fundamental accounting type of an account row.
type AccountType string

// Account represents a chart-of-accounts row.
type Account struct {
	Code         string      `json:"code"` // Primary Key
	Name         string      `json:"name"`
	AccountType  AccountType `json:"accountType"`
	CurrencyCode string      `json:"currencyCode"`
	IsActive     bool        `json:"isActive"`
	AuditFields
}
