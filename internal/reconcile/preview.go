// Package reconcile turns uploaded journal exports into classified ledger
// candidates and commits the approved subset.
//
// The flow mirrors the import pipeline end to end: decode bytes → parse rows
// → one batched ledger lookup → classify each candidate as insert, update or
// duplicate. Preview never mutates anything; classification is a pure
// function of the candidates and the ledger snapshot.
package reconcile

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/okanelab/ledgersheet/internal/domain"
)

// LedgerLookup is the slice of the ledger repository preview needs.
type LedgerLookup interface {
	FindByTransactionNos(ctx context.Context, nos []string) ([]domain.Transaction, error)
}

// PreviewSummary counts candidates per classification.
type PreviewSummary struct {
	InsertCount    int `json:"insertCount"`
	UpdateCount    int `json:"updateCount"`
	DuplicateCount int `json:"duplicateCount"`
}

// PreviewResult is the classified preview the operator reviews before
// committing.
type PreviewResult struct {
	// RunID identifies this import run in logs.
	RunID        string                      `json:"run_id"`
	Transactions []domain.PreviewTransaction `json:"transactions"`
	Summary      PreviewSummary              `json:"summary"`
	// SkippedRows counts source rows dropped during parsing (no business
	// key, unparsable date, or no amount).
	SkippedRows int `json:"skipped_rows"`
}

// Previewer classifies uploaded exports against the current ledger.
type Previewer struct {
	repo LedgerLookup
	log  zerolog.Logger
}

// NewPreviewer creates a Previewer.
func NewPreviewer(repo LedgerLookup, log zerolog.Logger) *Previewer {
	return &Previewer{repo: repo, log: log}
}

// Preview decodes and parses the uploaded bytes, then classifies every
// candidate against the ledger. No mutation occurs.
func (p *Previewer) Preview(ctx context.Context, raw []byte) (*PreviewResult, error) {
	runID := uuid.NewString()

	text, err := DecodeBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("Preview: %w", err)
	}

	candidates, skipped, err := ParseJournalCSV(text)
	if err != nil {
		return nil, fmt.Errorf("Preview: %w", err)
	}

	nos := make([]string, 0, len(candidates))
	for _, c := range candidates {
		nos = append(nos, c.TransactionNo)
	}

	existing, err := p.repo.FindByTransactionNos(ctx, nos)
	if err != nil {
		return nil, fmt.Errorf("Preview: ledger lookup: %w", err)
	}

	byNo := make(map[string]domain.Transaction, len(existing))
	for _, t := range existing {
		byNo[t.TransactionNo] = t
	}

	result := &PreviewResult{RunID: runID, SkippedRows: skipped}
	for _, c := range candidates {
		pt := domain.PreviewTransaction{Transaction: c}

		if cur, ok := byNo[c.TransactionNo]; !ok {
			pt.Status = domain.PreviewInsert
			result.Summary.InsertCount++
		} else if cur.Hash != c.Hash {
			pt.Status = domain.PreviewUpdate
			pt.ExistingID = cur.ID
			result.Summary.UpdateCount++
		} else {
			pt.Status = domain.PreviewDuplicate
			pt.ExistingID = cur.ID
			result.Summary.DuplicateCount++
		}
		result.Transactions = append(result.Transactions, pt)
	}

	p.log.Info().
		Str("run_id", runID).
		Int("candidates", len(candidates)).
		Int("insert", result.Summary.InsertCount).
		Int("update", result.Summary.UpdateCount).
		Int("duplicate", result.Summary.DuplicateCount).
		Int("skipped_rows", skipped).
		Msg("classified import preview")
	return result, nil
}
