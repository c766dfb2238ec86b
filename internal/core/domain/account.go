package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether the account type is one of the five fundamental types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// Account represents a node in the chart of accounts.
// Accounts are referenced by journal lines via their stable code; an account
// that has been referenced by a posted line must never change its code or currency.
type Account struct {
	Code         string      `json:"code"` // Unique, stable identifier (e.g., "1000")
	Name         string      `json:"name"` // Display name
	AccountType  AccountType `json:"accountType"`
	CurrencyCode string      `json:"currencyCode"` // ISO code; defaults to the base currency
	IsActive     bool        `json:"isActive"`
	AuditFields
}
