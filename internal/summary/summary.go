// Package summary aggregates the ledger into the profit figures the
// dashboard shows. The backing store has no aggregation capability, so this
// is a full filtered read plus in-memory accumulation.
package summary

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/okanelab/ledgersheet/internal/domain"
)

// fetchAllPerPage is large enough to pull the whole bounded ledger in one
// page.
const fetchAllPerPage = 100000

// FinancialSummary is a marginal-costing profit breakdown.
type FinancialSummary struct {
	Revenue              float64 `json:"revenue"`
	VariableCosts        float64 `json:"variableCosts"`
	MarginalProfit       float64 `json:"marginalProfit"`
	FixedCosts           float64 `json:"fixedCosts"`
	OperatingProfit      float64 `json:"operatingProfit"`
	NonOperatingIncome   float64 `json:"nonOperatingIncome"`
	NonOperatingExpenses float64 `json:"nonOperatingExpenses"`
	OrdinaryProfit       float64 `json:"ordinaryProfit"`
}

// LedgerReader is the slice of the ledger repository the summary needs.
type LedgerReader interface {
	FindWithPagination(ctx context.Context, filters domain.TransactionFilters, p domain.Pagination) (*domain.PaginatedTransactions, error)
}

// Service computes financial summaries.
type Service struct {
	repo LedgerReader
}

// NewService creates a summary service.
func NewService(repo LedgerReader) *Service {
	return &Service{repo: repo}
}

// Compute aggregates all ledger entries within the optional date bounds.
// Expense entries are bucketed by category_key convention: keys containing
// "variable" or "cost-of-sales" are variable costs, keys containing
// "non-operating" are non-operating expenses, everything else is a fixed
// cost.
func (s *Service) Compute(ctx context.Context, dateFrom, dateTo *time.Time) (*FinancialSummary, error) {
	page, err := s.repo.FindWithPagination(ctx, domain.TransactionFilters{
		DateFrom: dateFrom,
		DateTo:   dateTo,
	}, domain.Pagination{Page: 1, PerPage: fetchAllPerPage})
	if err != nil {
		return nil, fmt.Errorf("Compute: %w", err)
	}

	var sum FinancialSummary
	for _, t := range page.Items {
		amount := math.Abs(t.Amount())

		switch t.TransactionType {
		case domain.TypeIncome:
			sum.Revenue += amount
		case domain.TypeExpense:
			key := t.CategoryKey
			switch {
			case strings.Contains(key, "variable"), strings.Contains(key, "cost-of-sales"):
				sum.VariableCosts += amount
			case strings.Contains(key, "non-operating"):
				sum.NonOperatingExpenses += amount
			default:
				sum.FixedCosts += amount
			}
		}
	}

	sum.MarginalProfit = sum.Revenue - sum.VariableCosts
	sum.OperatingProfit = sum.MarginalProfit - sum.FixedCosts
	sum.OrdinaryProfit = sum.OperatingProfit + sum.NonOperatingIncome - sum.NonOperatingExpenses
	return &sum, nil
}
