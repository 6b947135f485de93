package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/okanelab/ledgersheet/internal/cache"
	"github.com/okanelab/ledgersheet/internal/domain"
)

type mockTransactionRepo struct {
	page       *domain.PaginatedTransactions
	created    []domain.CreateTransactionInput
	deleted    int
	gotFilters domain.TransactionFilters
	gotPaging  domain.Pagination
	err        error
}

func (m *mockTransactionRepo) FindWithPagination(ctx context.Context, filters domain.TransactionFilters, p domain.Pagination) (*domain.PaginatedTransactions, error) {
	m.gotFilters = filters
	m.gotPaging = p
	if m.err != nil {
		return nil, m.err
	}
	if m.page == nil {
		return &domain.PaginatedTransactions{Page: p.Page, PerPage: p.PerPage, TotalPages: 0}, nil
	}
	return m.page, nil
}

func (m *mockTransactionRepo) FindByTransactionNos(ctx context.Context, nos []string) ([]domain.Transaction, error) {
	return nil, nil
}

func (m *mockTransactionRepo) CreateMany(ctx context.Context, inputs []domain.CreateTransactionInput) ([]domain.Transaction, error) {
	m.created = inputs
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Transaction, len(inputs))
	for i, in := range inputs {
		out[i] = domain.Transaction{ID: "tx-1", TransactionNo: in.TransactionNo, TransactionType: in.TransactionType}
	}
	return out, nil
}

func (m *mockTransactionRepo) UpdateMany(ctx context.Context, updates []domain.TransactionUpdate) ([]domain.Transaction, []string, error) {
	return nil, nil, nil
}

func (m *mockTransactionRepo) DeleteAll(ctx context.Context, filters domain.TransactionFilters) (int, error) {
	m.gotFilters = filters
	if m.err != nil {
		return 0, m.err
	}
	return m.deleted, nil
}

func TestListParsesQueryParameters(t *testing.T) {
	repo := &mockTransactionRepo{}
	h := NewTransactionsHandler(repo, cache.NewMemory(), zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet,
		"/api/transactions?project_ids=p1,p2&type=expense&date_from=2025-04-01&date_to=2025-04-30&page=2&per_page=25", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(repo.gotFilters.ProjectIDs) != 2 {
		t.Errorf("ProjectIDs = %v, want [p1 p2]", repo.gotFilters.ProjectIDs)
	}
	if repo.gotFilters.TransactionType != domain.TypeExpense {
		t.Errorf("type = %q, want expense", repo.gotFilters.TransactionType)
	}
	if repo.gotFilters.DateFrom == nil || repo.gotFilters.DateFrom.Format("2006-01-02") != "2025-04-01" {
		t.Errorf("DateFrom = %v, want 2025-04-01", repo.gotFilters.DateFrom)
	}
	if repo.gotPaging.Page != 2 || repo.gotPaging.PerPage != 25 {
		t.Errorf("pagination = %+v, want page 2 per_page 25", repo.gotPaging)
	}
}

func TestListRejectsInvalidType(t *testing.T) {
	h := NewTransactionsHandler(&mockTransactionRepo{}, cache.NewMemory(), zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/transactions?type=bogus", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCreateManualEntry(t *testing.T) {
	repo := &mockTransactionRepo{}
	invalidator := cache.NewMemory()
	h := NewTransactionsHandler(repo, invalidator, zerolog.Nop())

	body := `{"transaction_date":"2025-04-15","transaction_type":"income","description":"入金","amount":50000,"debit_account":"普通預金","credit_account":"売上高"}`
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if len(repo.created) != 1 {
		t.Fatalf("created %d inputs, want 1", len(repo.created))
	}

	in := repo.created[0]
	if !strings.HasPrefix(in.TransactionNo, "manual-") {
		t.Errorf("TransactionNo = %q, want manual- prefix", in.TransactionNo)
	}
	if in.CreditAmount != 50000 || in.DebitAmount != 0 {
		t.Errorf("income amounts = debit %v / credit %v, want the credit side", in.DebitAmount, in.CreditAmount)
	}
	if in.FinancialYear != 2025 {
		t.Errorf("FinancialYear = %d, want 2025", in.FinancialYear)
	}
	if got := invalidator.Count(cache.TagTransactions); got != 1 {
		t.Errorf("cache invalidated %d times, want 1", got)
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad date", `{"transaction_date":"15/04/2025","transaction_type":"expense","amount":100,"debit_account":"a","credit_account":"b"}`},
		{"bad type", `{"transaction_date":"2025-04-15","transaction_type":"transfer","amount":100,"debit_account":"a","credit_account":"b"}`},
		{"zero amount", `{"transaction_date":"2025-04-15","transaction_type":"expense","amount":0,"debit_account":"a","credit_account":"b"}`},
		{"missing accounts", `{"transaction_date":"2025-04-15","transaction_type":"expense","amount":100}`},
		{"not json", `nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockTransactionRepo{}
			h := NewTransactionsHandler(repo, cache.NewMemory(), zerolog.Nop())

			req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.Create(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if repo.created != nil {
				t.Errorf("repository written on invalid input")
			}
		})
	}
}

func TestDeleteAllReportsCount(t *testing.T) {
	repo := &mockTransactionRepo{deleted: 7}
	invalidator := cache.NewMemory()
	h := NewTransactionsHandler(repo, invalidator, zerolog.Nop())

	req := httptest.NewRequest(http.MethodDelete, "/api/transactions?type=expense", nil)
	rec := httptest.NewRecorder()

	h.DeleteAll(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["deletedCount"] != 7 {
		t.Errorf("deletedCount = %d, want 7", resp["deletedCount"])
	}
	if got := invalidator.Count(cache.TagTransactionsForCSV); got != 1 {
		t.Errorf("csv cache tag invalidated %d times, want 1", got)
	}
}

func TestParseFiltersInclusiveDates(t *testing.T) {
	query := url.Values{}
	query.Set("date_from", "2025-04-01")
	query.Set("date_to", "2025-04-30")

	filters, err := parseFilters(query)
	if err != nil {
		t.Fatalf("parseFilters: %v", err)
	}

	boundary := domain.Transaction{TransactionDate: time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)}
	if !filters.Match(boundary) {
		t.Error("transaction on date_to excluded, bounds should be inclusive")
	}
}
