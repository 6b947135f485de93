package domain

// PreviewStatus is the classification a reconciliation candidate received
// against the current ledger snapshot.
type PreviewStatus string

const (
	// PreviewInsert means no ledger row shares the candidate's business key.
	PreviewInsert PreviewStatus = "insert"
	// PreviewUpdate means a ledger row shares the key but its fingerprint
	// differs, so the candidate would replace it.
	PreviewUpdate PreviewStatus = "update"
	// PreviewDuplicate means a ledger row shares both key and fingerprint;
	// re-saving it would be a no-op.
	PreviewDuplicate PreviewStatus = "duplicate"
)

// PreviewTransaction is a transient candidate produced by reconciliation. It
// is never persisted as-is; the commit coordinator turns insert candidates
// into creates and update candidates into keyed patches.
type PreviewTransaction struct {
	Transaction Transaction   `json:"transaction"`
	Status      PreviewStatus `json:"status"`
	// ExistingID is set for update/duplicate candidates: the id of the ledger
	// row sharing the business key.
	ExistingID string `json:"existing_id,omitempty"`
}
