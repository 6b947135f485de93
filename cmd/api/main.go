package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/okanelab/ledgersheet/internal/api/handlers"
	"github.com/okanelab/ledgersheet/internal/api/middleware"
	"github.com/okanelab/ledgersheet/internal/archive"
	"github.com/okanelab/ledgersheet/internal/cache"
	"github.com/okanelab/ledgersheet/internal/config"
	"github.com/okanelab/ledgersheet/internal/logger"
	"github.com/okanelab/ledgersheet/internal/reconcile"
	"github.com/okanelab/ledgersheet/internal/repository"
	"github.com/okanelab/ledgersheet/internal/sheets"
	"github.com/okanelab/ledgersheet/internal/summary"
)

func main() {
	port := flag.String("port", "", "HTTP server port (overrides PORT env)")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Port = *port
	}
	if cfg.Bucket == "" {
		log.Warn().Msg("No GCS bucket configured - upload archival disabled")
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
	projectRepo := repository.NewProjects(store, log)
	invalidator := cache.NewMemory()

	previewer := reconcile.NewPreviewer(txRepo, log)
	committer := reconcile.NewCommitter(txRepo, invalidator, log)
	archiver := archive.New(cfg.Bucket, log)
	summarySvc := summary.NewService(txRepo)

	csvHandler := handlers.NewCSVHandler(previewer, committer, archiver, log)
	txHandler := handlers.NewTransactionsHandler(txRepo, invalidator, log)
	projectsHandler := handlers.NewProjectsHandler(projectRepo, log)
	summaryHandler := handlers.NewSummaryHandler(summarySvc, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/csv/preview", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			csvHandler.Preview(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/csv/commit", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			csvHandler.Commit(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			txHandler.List(w, r)
		case http.MethodPost:
			txHandler.Create(w, r)
		case http.MethodDelete:
			txHandler.DeleteAll(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/projects", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			projectsHandler.List(w, r)
		case http.MethodPost:
			projectsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/projects/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/projects/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Project ID is required")
			return
		}
		switch r.Method {
		case http.MethodGet:
			projectsHandler.Get(w, r, id)
		case http.MethodPut:
			projectsHandler.Update(w, r, id)
		case http.MethodDelete:
			projectsHandler.Delete(w, r, id)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			summaryHandler.Get(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
