package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/okanelab/ledgersheet/internal/domain"
	"github.com/okanelab/ledgersheet/internal/sheets"
)

const (
	transactionsSheet       = "Transactions"
	transactionsDataRange   = transactionsSheet + "!A2:Z"
	transactionsAppendRange = transactionsSheet + "!A:A"

	// transactionNoColumn is the 0-based index of the business key in a row.
	transactionNoColumn = 2

	defaultPerPage = 50
)

// TransactionRepository is the ledger access contract consumed by
// reconciliation, summary and the HTTP handlers.
type TransactionRepository interface {
	FindWithPagination(ctx context.Context, filters domain.TransactionFilters, p domain.Pagination) (*domain.PaginatedTransactions, error)
	FindByTransactionNos(ctx context.Context, nos []string) ([]domain.Transaction, error)
	CreateMany(ctx context.Context, inputs []domain.CreateTransactionInput) ([]domain.Transaction, error)
	// UpdateMany applies each patch to the row identified by its business key
	// and returns the updated records plus the keys that matched no row.
	UpdateMany(ctx context.Context, updates []domain.TransactionUpdate) (updated []domain.Transaction, missing []string, err error)
	DeleteAll(ctx context.Context, filters domain.TransactionFilters) (int, error)
}

// Transactions is the ledger repository over the tabular store.
//
// The store has no server-side query capability, so every operation is a full
// range read plus in-memory work. That is O(collection) per call and is
// acceptable only because the ledger stays in the tens of thousands of rows.
// Mutating operations serialize through a mutex; the store itself offers no
// compare-and-swap, so this is the single-writer discipline for one process.
type Transactions struct {
	store sheets.Store
	codec transactionCodec
	log   zerolog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewTransactions creates the ledger repository.
func NewTransactions(store sheets.Store, log zerolog.Logger) *Transactions {
	return &Transactions{
		store: store,
		codec: transactionCodec{log: log, now: time.Now},
		log:   log,
		now:   time.Now,
	}
}

func (r *Transactions) fetchAll(ctx context.Context) ([]domain.Transaction, error) {
	raw, err := r.store.GetRange(ctx, transactionsDataRange)
	if err != nil {
		return nil, fmt.Errorf("fetchAll: %w", err)
	}

	txs := make([]domain.Transaction, 0, len(raw))
	for _, row := range raw {
		if !rowPopulated(row) {
			continue
		}
		txs = append(txs, r.codec.decode(row))
	}
	return txs, nil
}

// rowPopulated filters out blank padding rows: a data row has at least an id
// or a transaction date.
func rowPopulated(row []interface{}) bool {
	return len(row) > 0 && (cellString(row, 0) != "" || cellString(row, 3) != "")
}

// FindWithPagination fetches the collection, applies the conjunctive filter
// in memory and slices out one page. Total and TotalPages reflect the
// filtered set.
func (r *Transactions) FindWithPagination(ctx context.Context, filters domain.TransactionFilters, p domain.Pagination) (*domain.PaginatedTransactions, error) {
	all, err := r.fetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindWithPagination: %w", err)
	}

	filtered := make([]domain.Transaction, 0, len(all))
	for _, t := range all {
		if filters.Match(t) {
			filtered = append(filtered, t)
		}
	}

	page := p.Page
	if page < 1 {
		page = 1
	}
	perPage := p.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}

	total := len(filtered)
	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &domain.PaginatedTransactions{
		Items:      filtered[start:end],
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: (total + perPage - 1) / perPage,
	}, nil
}

// FindByTransactionNos returns every ledger row whose business key is in nos.
func (r *Transactions) FindByTransactionNos(ctx context.Context, nos []string) ([]domain.Transaction, error) {
	if len(nos) == 0 {
		return nil, nil
	}

	all, err := r.fetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindByTransactionNos: %w", err)
	}

	want := make(map[string]bool, len(nos))
	for _, no := range nos {
		want[no] = true
	}

	var matched []domain.Transaction
	for _, t := range all {
		if want[t.TransactionNo] {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

// CreateMany appends all inputs in a single batch request. IDs are
// "{epoch-millis}-{index}": monotonic enough for display ordering, but not
// collision-proof across concurrent callers in the same millisecond.
func (r *Transactions) CreateMany(ctx context.Context, inputs []domain.CreateTransactionInput) ([]domain.Transaction, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	created := make([]domain.Transaction, 0, len(inputs))
	rows := make([][]interface{}, 0, len(inputs))

	for i, in := range inputs {
		t := domain.Transaction{
			ID:                fmt.Sprintf("%d-%d", now.UnixMilli(), i),
			ProjectID:         in.ProjectID,
			TransactionNo:     in.TransactionNo,
			TransactionDate:   in.TransactionDate,
			FinancialYear:     in.FinancialYear,
			TransactionType:   in.TransactionType,
			DebitAccount:      in.DebitAccount,
			DebitSubAccount:   in.DebitSubAccount,
			DebitDepartment:   in.DebitDepartment,
			DebitPartner:      in.DebitPartner,
			DebitTaxCategory:  in.DebitTaxCategory,
			DebitAmount:       in.DebitAmount,
			CreditAccount:     in.CreditAccount,
			CreditSubAccount:  in.CreditSubAccount,
			CreditDepartment:  in.CreditDepartment,
			CreditPartner:     in.CreditPartner,
			CreditTaxCategory: in.CreditTaxCategory,
			CreditAmount:      in.CreditAmount,
			Description:       in.Description,
			FriendlyCategory:  in.FriendlyCategory,
			Memo:              in.Memo,
			CategoryKey:       in.CategoryKey,
			Label:             in.Label,
			Hash:              in.Hash,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		created = append(created, t)
		rows = append(rows, r.codec.encode(t))
	}

	if err := r.store.Append(ctx, transactionsAppendRange, rows); err != nil {
		return nil, fmt.Errorf("CreateMany: %w", err)
	}

	r.log.Info().Int("count", len(created)).Msg("appended transactions")
	return created, nil
}

// UpdateMany reads the full range once to map business keys to physical row
// indexes, merges each patch onto the decoded current row, and issues one
// batched write covering exactly the matched rows. Keys that match no row are
// returned in missing; nothing is written for them.
func (r *Transactions) UpdateMany(ctx context.Context, updates []domain.TransactionUpdate) ([]domain.Transaction, []string, error) {
	if len(updates) == 0 {
		return nil, nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := r.store.GetRange(ctx, transactionsDataRange)
	if err != nil {
		return nil, nil, fmt.Errorf("UpdateMany: %w", err)
	}

	// Business key -> 1-based sheet row (data starts at row 2).
	rowIndex := make(map[string]int, len(raw))
	for i, row := range raw {
		if no := cellString(row, transactionNoColumn); no != "" {
			rowIndex[no] = i + 2
		}
	}

	now := r.now()
	var (
		updated []domain.Transaction
		missing []string
		writes  []sheets.RangeUpdate
	)

	for _, u := range updates {
		idx, ok := rowIndex[u.TransactionNo]
		if !ok {
			missing = append(missing, u.TransactionNo)
			continue
		}

		t := applyPatch(r.codec.decode(raw[idx-2]), u.Patch)
		t.UpdatedAt = now

		updated = append(updated, t)
		writes = append(writes, sheets.RangeUpdate{
			Range: fmt.Sprintf("%s!A%d:Z%d", transactionsSheet, idx, idx),
			Rows:  [][]interface{}{r.codec.encode(t)},
		})
	}

	if len(writes) > 0 {
		if err := r.store.BatchUpdate(ctx, writes); err != nil {
			return nil, nil, fmt.Errorf("UpdateMany: %w", err)
		}
	}

	if len(missing) > 0 {
		r.log.Warn().Strs("transaction_nos", missing).Msg("update keys matched no ledger row")
	}
	return updated, missing, nil
}

// DeleteAll removes every row matching the filter and reports how many were
// removed. With no filter the whole data range is cleared. The filtered case
// is read-filter-clear-rewrite and is not atomic: a crash between clear and
// re-append loses the retained rows.
func (r *Transactions) DeleteAll(ctx context.Context, filters domain.TransactionFilters) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.fetchAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("DeleteAll: %w", err)
	}

	if filters.Empty() {
		if err := r.store.Clear(ctx, transactionsDataRange); err != nil {
			return 0, fmt.Errorf("DeleteAll: %w", err)
		}
		r.log.Info().Int("count", len(all)).Msg("cleared transactions sheet")
		return len(all), nil
	}

	kept := make([]domain.Transaction, 0, len(all))
	for _, t := range all {
		if !filters.Match(t) {
			kept = append(kept, t)
		}
	}
	deleted := len(all) - len(kept)
	if deleted == 0 {
		return 0, nil
	}

	if err := r.store.Clear(ctx, transactionsDataRange); err != nil {
		return 0, fmt.Errorf("DeleteAll: %w", err)
	}

	if len(kept) > 0 {
		rows := make([][]interface{}, 0, len(kept))
		for _, t := range kept {
			rows = append(rows, r.codec.encode(t))
		}
		if err := r.store.Append(ctx, transactionsAppendRange, rows); err != nil {
			return 0, fmt.Errorf("DeleteAll: rewriting retained rows: %w", err)
		}
	}

	r.log.Info().Int("deleted", deleted).Int("kept", len(kept)).Msg("filtered delete")
	return deleted, nil
}

func applyPatch(t domain.Transaction, p domain.UpdateTransactionInput) domain.Transaction {
	if p.ProjectID != nil {
		t.ProjectID = *p.ProjectID
	}
	if p.TransactionDate != nil {
		t.TransactionDate = *p.TransactionDate
	}
	if p.FinancialYear != nil {
		t.FinancialYear = *p.FinancialYear
	}
	if p.TransactionType != nil {
		t.TransactionType = *p.TransactionType
	}
	if p.DebitAccount != nil {
		t.DebitAccount = *p.DebitAccount
	}
	if p.DebitSubAccount != nil {
		t.DebitSubAccount = *p.DebitSubAccount
	}
	if p.DebitDepartment != nil {
		t.DebitDepartment = *p.DebitDepartment
	}
	if p.DebitPartner != nil {
		t.DebitPartner = *p.DebitPartner
	}
	if p.DebitTaxCategory != nil {
		t.DebitTaxCategory = *p.DebitTaxCategory
	}
	if p.DebitAmount != nil {
		t.DebitAmount = *p.DebitAmount
	}
	if p.CreditAccount != nil {
		t.CreditAccount = *p.CreditAccount
	}
	if p.CreditSubAccount != nil {
		t.CreditSubAccount = *p.CreditSubAccount
	}
	if p.CreditDepartment != nil {
		t.CreditDepartment = *p.CreditDepartment
	}
	if p.CreditPartner != nil {
		t.CreditPartner = *p.CreditPartner
	}
	if p.CreditTaxCategory != nil {
		t.CreditTaxCategory = *p.CreditTaxCategory
	}
	if p.CreditAmount != nil {
		t.CreditAmount = *p.CreditAmount
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.FriendlyCategory != nil {
		t.FriendlyCategory = *p.FriendlyCategory
	}
	if p.Memo != nil {
		t.Memo = *p.Memo
	}
	if p.CategoryKey != nil {
		t.CategoryKey = *p.CategoryKey
	}
	if p.Label != nil {
		t.Label = *p.Label
	}
	if p.Hash != nil {
		t.Hash = *p.Hash
	}
	return t
}
