package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okanelab/ledgersheet/internal/domain"
)

type stubReader struct {
	items      []domain.Transaction
	err        error
	gotFilters domain.TransactionFilters
}

func (s *stubReader) FindWithPagination(ctx context.Context, filters domain.TransactionFilters, p domain.Pagination) (*domain.PaginatedTransactions, error) {
	s.gotFilters = filters
	if s.err != nil {
		return nil, s.err
	}
	return &domain.PaginatedTransactions{Items: s.items, Total: len(s.items)}, nil
}

func income(amount float64) domain.Transaction {
	return domain.Transaction{TransactionType: domain.TypeIncome, CreditAmount: amount}
}

func expense(amount float64, categoryKey string) domain.Transaction {
	return domain.Transaction{TransactionType: domain.TypeExpense, DebitAmount: amount, CategoryKey: categoryKey}
}

func TestComputeBuckets(t *testing.T) {
	reader := &stubReader{items: []domain.Transaction{
		income(100000),
		income(50000),
		expense(30000, "variable-costs"),
		expense(10000, "cost-of-sales"),
		expense(40000, "fixed-rent"),
		expense(5000, ""),
		expense(2000, "non-operating-interest"),
		{TransactionType: domain.TypeNonCashJournal, DebitAmount: 9999, CreditAmount: 9999},
	}}

	sum, err := NewService(reader).Compute(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	want := FinancialSummary{
		Revenue:              150000,
		VariableCosts:        40000,
		MarginalProfit:       110000,
		FixedCosts:           45000,
		OperatingProfit:      65000,
		NonOperatingExpenses: 2000,
		OrdinaryProfit:       63000,
	}
	if *sum != want {
		t.Errorf("summary mismatch:\n got  %+v\n want %+v", *sum, want)
	}
}

func TestComputeEmptyLedger(t *testing.T) {
	sum, err := NewService(&stubReader{}).Compute(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if *sum != (FinancialSummary{}) {
		t.Errorf("summary = %+v, want all zeros", *sum)
	}
}

func TestComputePassesDateBounds(t *testing.T) {
	reader := &stubReader{}
	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)

	if _, err := NewService(reader).Compute(context.Background(), &from, &to); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if reader.gotFilters.DateFrom == nil || !reader.gotFilters.DateFrom.Equal(from) {
		t.Errorf("DateFrom not forwarded: %v", reader.gotFilters.DateFrom)
	}
	if reader.gotFilters.DateTo == nil || !reader.gotFilters.DateTo.Equal(to) {
		t.Errorf("DateTo not forwarded: %v", reader.gotFilters.DateTo)
	}
}

func TestComputeReaderFailure(t *testing.T) {
	reader := &stubReader{err: errors.New("store unavailable")}
	if _, err := NewService(reader).Compute(context.Background(), nil, nil); !errors.Is(err, reader.err) {
		t.Errorf("error = %v, want wrapped reader failure", err)
	}
}

func TestComputeNegativeAmounts(t *testing.T) {
	// Correction entries carry negative amounts; bucketing uses magnitude.
	reader := &stubReader{items: []domain.Transaction{
		expense(-1000, "fixed-rent"),
	}}
	sum, err := NewService(reader).Compute(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if sum.FixedCosts != 1000 {
		t.Errorf("FixedCosts = %v, want 1000", sum.FixedCosts)
	}
}
