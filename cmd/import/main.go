// Command import previews a journal export from disk against the ledger and
// optionally commits the approved candidates. Useful for bulk backfills that
// would be tedious through the dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/okanelab/ledgersheet/internal/cache"
	"github.com/okanelab/ledgersheet/internal/config"
	"github.com/okanelab/ledgersheet/internal/domain"
	"github.com/okanelab/ledgersheet/internal/logger"
	"github.com/okanelab/ledgersheet/internal/reconcile"
	"github.com/okanelab/ledgersheet/internal/repository"
	"github.com/okanelab/ledgersheet/internal/sheets"
)

func main() {
	var (
		file   = flag.String("file", "", "Path to the CSV export to import")
		commit = flag.Bool("commit", false, "Write insert/update candidates to the ledger (default: preview only)")
	)
	flag.Parse()

	log := logger.New()

	if *file == "" {
		log.Fatal().Msg("-file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read export file")
	}

	ctx := context.Background()

	store, err := sheets.NewClient(ctx, sheets.ClientConfig{
		SpreadsheetID:       cfg.SpreadsheetID,
		ServiceAccountEmail: cfg.ServiceAccountEmail,
		PrivateKey:          cfg.PrivateKey,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create sheets client")
	}

	txRepo := repository.NewTransactions(store, log)
	previewer := reconcile.NewPreviewer(txRepo, log)

	result, err := previewer.Preview(ctx, data)
	if err != nil {
		log.Fatal().Err(err).Msg("Preview failed")
	}

	fmt.Printf("%s: %d candidates (%d insert, %d update, %d duplicate), %d rows skipped\n",
		*file, len(result.Transactions),
		result.Summary.InsertCount, result.Summary.UpdateCount, result.Summary.DuplicateCount,
		result.SkippedRows)

	if !*commit {
		fmt.Println("preview only; re-run with -commit to save")
		return
	}

	approved := make([]domain.PreviewTransaction, 0, len(result.Transactions))
	for _, pt := range result.Transactions {
		if pt.Status == domain.PreviewInsert || pt.Status == domain.PreviewUpdate {
			approved = append(approved, pt)
		}
	}
	if len(approved) == 0 {
		fmt.Println("nothing to save")
		return
	}

	committer := reconcile.NewCommitter(txRepo, cache.NewMemory(), log)
	commitResult, err := committer.Commit(ctx, approved)
	if err != nil {
		log.Fatal().Err(err).Msg("Commit failed")
	}

	fmt.Printf("processed %d, saved %d, skipped %d\n",
		commitResult.ProcessedCount, commitResult.SavedCount, commitResult.SkippedCount)
	for _, e := range commitResult.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}
	if len(commitResult.Errors) > 0 {
		os.Exit(1)
	}
}
