package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/okanelab/ledgersheet/internal/api/middleware"
	"github.com/okanelab/ledgersheet/internal/archive"
	"github.com/okanelab/ledgersheet/internal/domain"
	"github.com/okanelab/ledgersheet/internal/reconcile"
)

// maxUploadBytes bounds an uploaded export file.
const maxUploadBytes = 16 << 20

// CSVHandler handles the import endpoints: preview and commit.
type CSVHandler struct {
	previewer *reconcile.Previewer
	committer *reconcile.Committer
	archiver  *archive.Archiver
	log       zerolog.Logger
}

// NewCSVHandler creates a CSV import handler.
func NewCSVHandler(previewer *reconcile.Previewer, committer *reconcile.Committer, archiver *archive.Archiver, log zerolog.Logger) *CSVHandler {
	return &CSVHandler{
		previewer: previewer,
		committer: committer,
		archiver:  archiver,
		log:       log,
	}
}

// Preview handles POST /api/csv/preview: multipart upload of an export file,
// returning the classified candidates without mutating anything.
func (h *CSVHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "A CSV file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	// Archival is best-effort: a failed archive never blocks the preview.
	if h.archiver.Enabled() {
		if _, err := h.archiver.ArchiveCSV(ctx, header.Filename, data); err != nil {
			h.log.Warn().Err(err).Str("filename", header.Filename).Msg("failed to archive upload")
		}
	}

	result, err := h.previewer.Preview(ctx, data)
	if err != nil {
		h.log.Error().Err(err).Str("filename", header.Filename).Msg("preview failed")
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// CommitRequest is the body of POST /api/csv/commit: the candidates the
// operator approved, i.e. everything the preview classified as insert or
// update.
type CommitRequest struct {
	Transactions []domain.PreviewTransaction `json:"transactions"`
}

// CommitResponse reports the outcome of a commit.
type CommitResponse struct {
	OK             bool     `json:"ok"`
	ProcessedCount int      `json:"processedCount"`
	SavedCount     int      `json:"savedCount"`
	SkippedCount   int      `json:"skippedCount"`
	Message        string   `json:"message"`
	Errors         []string `json:"errors,omitempty"`
}

// Commit handles POST /api/csv/commit.
func (h *CSVHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Transactions) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "No transactions to save")
		return
	}

	result, err := h.committer.Commit(r.Context(), req.Transactions)
	if err != nil {
		h.log.Error().Err(err).Msg("commit failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save transactions")
		return
	}

	resp := CommitResponse{
		OK:             len(result.Errors) == 0,
		ProcessedCount: result.ProcessedCount,
		SavedCount:     result.SavedCount,
		SkippedCount:   result.SkippedCount,
		Errors:         result.Errors,
		Message: fmt.Sprintf("processed %d records, saved %d, skipped %d",
			result.ProcessedCount, result.SavedCount, result.SkippedCount),
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}
