package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/okanelab/ledgersheet/internal/api/middleware"
	"github.com/okanelab/ledgersheet/internal/cache"
	"github.com/okanelab/ledgersheet/internal/domain"
	"github.com/okanelab/ledgersheet/internal/repository"
)

const dateParamLayout = "2006-01-02"

// TransactionsHandler handles ledger endpoints.
type TransactionsHandler struct {
	repo        repository.TransactionRepository
	invalidator cache.Invalidator
	log         zerolog.Logger
}

// NewTransactionsHandler creates a transactions handler.
func NewTransactionsHandler(repo repository.TransactionRepository, invalidator cache.Invalidator, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{repo: repo, invalidator: invalidator, log: log}
}

// List handles GET /api/transactions with filter and pagination parameters.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filters, err := parseFilters(query)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := domain.Pagination{}
	if v := query.Get("page"); v != "" {
		p.Page, _ = strconv.Atoi(v)
	}
	if v := query.Get("per_page"); v != "" {
		p.PerPage, _ = strconv.Atoi(v)
	}

	page, err := h.repo.FindWithPagination(r.Context(), filters, p)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to query transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}
	if page.Items == nil {
		page.Items = []domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, page)
}

// CreateRequest is the body of POST /api/transactions: a manual ledger entry.
type CreateRequest struct {
	TransactionDate string                 `json:"transaction_date"`
	TransactionType domain.TransactionType `json:"transaction_type"`
	Description     string                 `json:"description"`
	Amount          float64                `json:"amount"`
	ProjectID       string                 `json:"project_id,omitempty"`
	CategoryKey     string                 `json:"category_key,omitempty"`
	DebitAccount    string                 `json:"debit_account"`
	CreditAccount   string                 `json:"credit_account"`
}

// Create handles POST /api/transactions. Income carries its amount on the
// credit side, everything else on the debit side. The business key is stamped
// "manual-{millis}" so manual entries never collide with imported ones.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	date, err := time.Parse(dateParamLayout, req.TransactionDate)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "transaction_date must be YYYY-MM-DD")
		return
	}
	switch req.TransactionType {
	case domain.TypeIncome, domain.TypeExpense, domain.TypeNonCashJournal:
	default:
		middleware.WriteError(w, http.StatusBadRequest, "Invalid transaction_type")
		return
	}
	if req.Amount <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if req.DebitAccount == "" || req.CreditAccount == "" {
		middleware.WriteError(w, http.StatusBadRequest, "debit_account and credit_account are required")
		return
	}

	in := domain.CreateTransactionInput{
		ProjectID:       req.ProjectID,
		TransactionNo:   fmt.Sprintf("manual-%d", time.Now().UnixMilli()),
		TransactionDate: date,
		FinancialYear:   date.Year(),
		TransactionType: req.TransactionType,
		Description:     req.Description,
		CategoryKey:     req.CategoryKey,
		DebitAccount:    req.DebitAccount,
		CreditAccount:   req.CreditAccount,
	}
	if req.TransactionType == domain.TypeIncome {
		in.CreditAmount = req.Amount
	} else {
		in.DebitAmount = req.Amount
	}

	created, err := h.repo.CreateMany(r.Context(), []domain.CreateTransactionInput{in})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save transaction")
		return
	}

	h.invalidator.Invalidate(cache.TagTransactions)
	middleware.WriteJSON(w, http.StatusCreated, created[0])
}

// DeleteAll handles DELETE /api/transactions with the same filter parameters
// as List. Without filters the whole ledger is cleared.
func (h *TransactionsHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	deleted, err := h.repo.DeleteAll(r.Context(), filters)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to delete transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete transactions")
		return
	}

	h.invalidator.Invalidate(cache.TagTransactions, cache.TagTransactionsForCSV)
	middleware.WriteJSON(w, http.StatusOK, map[string]int{"deletedCount": deleted})
}

func parseFilters(query url.Values) (domain.TransactionFilters, error) {
	var filters domain.TransactionFilters

	if v := query.Get("project_ids"); v != "" {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				filters.ProjectIDs = append(filters.ProjectIDs, id)
			}
		}
	}
	if v := query.Get("type"); v != "" {
		switch domain.TransactionType(v) {
		case domain.TypeIncome, domain.TypeExpense, domain.TypeNonCashJournal:
			filters.TransactionType = domain.TransactionType(v)
		default:
			return filters, fmt.Errorf("invalid type %q", v)
		}
	}
	if v := query.Get("date_from"); v != "" {
		t, err := time.Parse(dateParamLayout, v)
		if err != nil {
			return filters, fmt.Errorf("invalid date_from %q", v)
		}
		filters.DateFrom = &t
	}
	if v := query.Get("date_to"); v != "" {
		t, err := time.Parse(dateParamLayout, v)
		if err != nil {
			return filters, fmt.Errorf("invalid date_to %q", v)
		}
		filters.DateTo = &t
	}
	return filters, nil
}
