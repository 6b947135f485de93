package reconcile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/okanelab/ledgersheet/internal/cache"
	"github.com/okanelab/ledgersheet/internal/domain"
)

// LedgerWriter is the slice of the ledger repository commit needs.
type LedgerWriter interface {
	CreateMany(ctx context.Context, inputs []domain.CreateTransactionInput) ([]domain.Transaction, error)
	UpdateMany(ctx context.Context, updates []domain.TransactionUpdate) (updated []domain.Transaction, missing []string, err error)
}

// CommitResult is the partial-failure-aware accounting of one commit.
// ProcessedCount is every candidate considered, SavedCount those that reached
// storage, SkippedCount those excluded from submission. A batch that fails
// fails as a whole and contributes one error entry; the insert batch and the
// update batch succeed or fail independently.
type CommitResult struct {
	ProcessedCount int      `json:"processedCount"`
	SavedCount     int      `json:"savedCount"`
	SkippedCount   int      `json:"skippedCount"`
	Errors         []string `json:"errors,omitempty"`
}

// Committer writes approved candidates through the ledger repository.
type Committer struct {
	repo        LedgerWriter
	invalidator cache.Invalidator
	log         zerolog.Logger
}

// NewCommitter creates a Committer.
func NewCommitter(repo LedgerWriter, invalidator cache.Invalidator, log zerolog.Logger) *Committer {
	return &Committer{repo: repo, invalidator: invalidator, log: log}
}

// Commit writes the approved candidates: insert-classified ones in a single
// batched create, update-classified ones in a single batched keyed update.
// Callers are expected to have excluded duplicates already; any candidate
// with another status is counted as skipped rather than written. On any
// successful write the stale cache tags are invalidated.
func (c *Committer) Commit(ctx context.Context, approved []domain.PreviewTransaction) (*CommitResult, error) {
	result := &CommitResult{ProcessedCount: len(approved)}

	var (
		inserts []domain.CreateTransactionInput
		updates []domain.TransactionUpdate
	)
	for _, pt := range approved {
		switch pt.Status {
		case domain.PreviewInsert:
			inserts = append(inserts, toCreateInput(pt.Transaction))
		case domain.PreviewUpdate:
			updates = append(updates, domain.TransactionUpdate{
				TransactionNo: pt.Transaction.TransactionNo,
				Patch:         toPatch(pt.Transaction),
			})
		default:
			result.SkippedCount++
		}
	}

	if len(inserts) > 0 {
		created, err := c.repo.CreateMany(ctx, inserts)
		if err != nil {
			c.log.Error().Err(err).Int("count", len(inserts)).Msg("insert batch failed")
			result.Errors = append(result.Errors, fmt.Sprintf("insert batch (%d records): %v", len(inserts), err))
		} else {
			result.SavedCount += len(created)
		}
	}

	if len(updates) > 0 {
		updated, missing, err := c.repo.UpdateMany(ctx, updates)
		if err != nil {
			c.log.Error().Err(err).Int("count", len(updates)).Msg("update batch failed")
			result.Errors = append(result.Errors, fmt.Sprintf("update batch (%d records): %v", len(updates), err))
		} else {
			result.SavedCount += len(updated)
			for _, no := range missing {
				result.Errors = append(result.Errors, fmt.Sprintf("update %s: no ledger row with this transaction number", no))
			}
		}
	}

	if result.SavedCount > 0 {
		c.invalidator.Invalidate(cache.TagTransactions, cache.TagTransactionsForCSV)
	}

	c.log.Info().
		Int("processed", result.ProcessedCount).
		Int("saved", result.SavedCount).
		Int("skipped", result.SkippedCount).
		Int("errors", len(result.Errors)).
		Msg("commit finished")
	return result, nil
}

func toCreateInput(t domain.Transaction) domain.CreateTransactionInput {
	return domain.CreateTransactionInput{
		ProjectID:         t.ProjectID,
		TransactionNo:     t.TransactionNo,
		TransactionDate:   t.TransactionDate,
		FinancialYear:     t.FinancialYear,
		TransactionType:   t.TransactionType,
		DebitAccount:      t.DebitAccount,
		DebitSubAccount:   t.DebitSubAccount,
		DebitDepartment:   t.DebitDepartment,
		DebitPartner:      t.DebitPartner,
		DebitTaxCategory:  t.DebitTaxCategory,
		DebitAmount:       t.DebitAmount,
		CreditAccount:     t.CreditAccount,
		CreditSubAccount:  t.CreditSubAccount,
		CreditDepartment:  t.CreditDepartment,
		CreditPartner:     t.CreditPartner,
		CreditTaxCategory: t.CreditTaxCategory,
		CreditAmount:      t.CreditAmount,
		Description:       t.Description,
		FriendlyCategory:  t.FriendlyCategory,
		Memo:              t.Memo,
		CategoryKey:       t.CategoryKey,
		Label:             t.Label,
		Hash:              t.Hash,
	}
}

// toPatch replaces every source-controlled field; the existing row's id and
// created_at survive the merge.
func toPatch(t domain.Transaction) domain.UpdateTransactionInput {
	return domain.UpdateTransactionInput{
		ProjectID:         &t.ProjectID,
		TransactionDate:   &t.TransactionDate,
		FinancialYear:     &t.FinancialYear,
		TransactionType:   &t.TransactionType,
		DebitAccount:      &t.DebitAccount,
		DebitSubAccount:   &t.DebitSubAccount,
		DebitDepartment:   &t.DebitDepartment,
		DebitPartner:      &t.DebitPartner,
		DebitTaxCategory:  &t.DebitTaxCategory,
		DebitAmount:       &t.DebitAmount,
		CreditAccount:     &t.CreditAccount,
		CreditSubAccount:  &t.CreditSubAccount,
		CreditDepartment:  &t.CreditDepartment,
		CreditPartner:     &t.CreditPartner,
		CreditTaxCategory: &t.CreditTaxCategory,
		CreditAmount:      &t.CreditAmount,
		Description:       &t.Description,
		Memo:              &t.Memo,
		Label:             &t.Label,
		Hash:              &t.Hash,
	}
}
