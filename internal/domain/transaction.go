package domain

import (
	"time"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TypeIncome         TransactionType = "income"
	TypeExpense        TransactionType = "expense"
	TypeNonCashJournal TransactionType = "non_cash_journal"
)

// Transaction is one bookkeeping entry in the ledger.
//
// ID is assigned by the repository; TransactionNo is the business key carried
// over from the source system and is what reconciliation dedupes on. Hash is a
// fingerprint of the economically meaningful fields, used to detect identical
// re-imports.
type Transaction struct {
	ID            string          `json:"id"`
	ProjectID     string          `json:"project_id,omitempty"`
	TransactionNo string          `json:"transaction_no"`

	TransactionDate time.Time       `json:"transaction_date"`
	FinancialYear   int             `json:"financial_year"`
	TransactionType TransactionType `json:"transaction_type"`

	DebitAccount     string  `json:"debit_account"`
	DebitSubAccount  string  `json:"debit_sub_account,omitempty"`
	DebitDepartment  string  `json:"debit_department,omitempty"`
	DebitPartner     string  `json:"debit_partner,omitempty"`
	DebitTaxCategory string  `json:"debit_tax_category,omitempty"`
	DebitAmount      float64 `json:"debit_amount"`

	CreditAccount     string  `json:"credit_account"`
	CreditSubAccount  string  `json:"credit_sub_account,omitempty"`
	CreditDepartment  string  `json:"credit_department,omitempty"`
	CreditPartner     string  `json:"credit_partner,omitempty"`
	CreditTaxCategory string  `json:"credit_tax_category,omitempty"`
	CreditAmount      float64 `json:"credit_amount"`

	Description      string `json:"description,omitempty"`
	FriendlyCategory string `json:"friendly_category,omitempty"`
	Memo             string `json:"memo,omitempty"`
	CategoryKey      string `json:"category_key,omitempty"`
	Label            string `json:"label"`
	Hash             string `json:"hash"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Amount returns the economically meaningful amount of the entry: for income
// and expense exactly one side carries the value.
func (t Transaction) Amount() float64 {
	if t.DebitAmount != 0 {
		return t.DebitAmount
	}
	return t.CreditAmount
}

// CreateTransactionInput carries the fields the caller controls when inserting
// a new ledger entry. ID and timestamps are stamped by the repository.
type CreateTransactionInput struct {
	ProjectID     string
	TransactionNo string

	TransactionDate time.Time
	FinancialYear   int
	TransactionType TransactionType

	DebitAccount     string
	DebitSubAccount  string
	DebitDepartment  string
	DebitPartner     string
	DebitTaxCategory string
	DebitAmount      float64

	CreditAccount     string
	CreditSubAccount  string
	CreditDepartment  string
	CreditPartner     string
	CreditTaxCategory string
	CreditAmount      float64

	Description      string
	FriendlyCategory string
	Memo             string
	CategoryKey      string
	Label            string
	Hash             string
}

// UpdateTransactionInput is a partial patch merged onto an existing entry
// during a keyed update. Nil fields are left untouched.
type UpdateTransactionInput struct {
	ProjectID *string

	TransactionDate *time.Time
	FinancialYear   *int
	TransactionType *TransactionType

	DebitAccount     *string
	DebitSubAccount  *string
	DebitDepartment  *string
	DebitPartner     *string
	DebitTaxCategory *string
	DebitAmount      *float64

	CreditAccount     *string
	CreditSubAccount  *string
	CreditDepartment  *string
	CreditPartner     *string
	CreditTaxCategory *string
	CreditAmount      *float64

	Description      *string
	FriendlyCategory *string
	Memo             *string
	CategoryKey      *string
	Label            *string
	Hash             *string
}

// TransactionUpdate pairs a business key with the patch to apply to the row it
// identifies.
type TransactionUpdate struct {
	TransactionNo string
	Patch         UpdateTransactionInput
}

// TransactionFilters is the conjunctive filter applied by ledger queries.
// Zero-valued members are not applied. Date bounds are inclusive.
type TransactionFilters struct {
	ProjectIDs      []string
	TransactionType TransactionType
	DateFrom        *time.Time
	DateTo          *time.Time
}

// Empty reports whether no predicate is set.
func (f TransactionFilters) Empty() bool {
	return len(f.ProjectIDs) == 0 && f.TransactionType == "" && f.DateFrom == nil && f.DateTo == nil
}

// Match reports whether t satisfies every supplied predicate.
func (f TransactionFilters) Match(t Transaction) bool {
	if len(f.ProjectIDs) > 0 {
		found := false
		for _, id := range f.ProjectIDs {
			if t.ProjectID != "" && t.ProjectID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.TransactionType != "" && t.TransactionType != f.TransactionType {
		return false
	}
	if f.DateFrom != nil && t.TransactionDate.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && t.TransactionDate.After(*f.DateTo) {
		return false
	}
	return true
}

// Pagination selects one page of a filtered result set.
type Pagination struct {
	Page    int
	PerPage int
}

// PaginatedTransactions is one page of a filtered query. Total and TotalPages
// are computed from the filtered set, not the raw collection.
type PaginatedTransactions struct {
	Items      []Transaction `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PerPage    int           `json:"perPage"`
	TotalPages int           `json:"totalPages"`
}
