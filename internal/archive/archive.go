// Package archive retains the raw bytes of uploaded exports in GCS so an
// import can be audited or replayed later. Archival is best-effort and
// entirely optional: without a configured bucket it is a no-op.
package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Archiver writes uploaded export files to a GCS bucket.
type Archiver struct {
	bucket string
	log    zerolog.Logger
}

// New creates an Archiver. An empty bucket disables archival.
func New(bucket string, log zerolog.Logger) *Archiver {
	return &Archiver{bucket: bucket, log: log}
}

// Enabled reports whether a bucket is configured.
func (a *Archiver) Enabled() bool {
	return a.bucket != ""
}

// ArchiveCSV stores the raw upload under a dated object name and returns its
// gs:// URI.
func (a *Archiver) ArchiveCSV(ctx context.Context, filename string, data []byte) (string, error) {
	if !a.Enabled() {
		return "", nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("ArchiveCSV: storage client: %w", err)
	}
	defer client.Close()

	object := fmt.Sprintf("csv-exports/%s/%s-%s",
		time.Now().Format("2006/01/02"), uuid.NewString(), filepath.Base(filename))
	gcsURI := fmt.Sprintf("gs://%s/%s", a.bucket, object)

	wc := client.Bucket(a.bucket).Object(object).NewWriter(ctx)
	wc.ContentType = "text/csv"

	if _, err := wc.Write(data); err != nil {
		return "", fmt.Errorf("ArchiveCSV: writing object: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("ArchiveCSV: closing writer: %w", err)
	}

	a.log.Info().Str("gcs_uri", gcsURI).Int("bytes", len(data)).Msg("archived export file")
	return gcsURI, nil
}
