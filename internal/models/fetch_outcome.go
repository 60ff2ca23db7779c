package models

// FetchStatus distinguishes the ways a host fetch can end.
type FetchStatus string

const (
	// FetchStatusFetched means the host answered with at least one record.
	FetchStatusFetched FetchStatus = "fetched"
	// FetchStatusEmpty means the host answered successfully with nothing.
	FetchStatusEmpty FetchStatus = "empty"
	// FetchStatusFailed means the fetch failed (transport, status or payload).
	FetchStatusFailed FetchStatus = "failed"
)

// HistoryOutcome is the result of fetching the change list for a single path.
// Records is empty unless Status is FetchStatusFetched.
type HistoryOutcome struct {
	Path    string
	Records []ChangeRecord
	Status  FetchStatus
	Err     error
}

// Failed reports whether the fetch failed.
func (o HistoryOutcome) Failed() bool {
	return o.Status == FetchStatusFailed
}

// BlobAttempt records the result of probing one candidate path for content.
type BlobAttempt struct {
	Path   string
	Status FetchStatus
	Err    error
}

// ContentOutcome is the result of reconstructing a document at a change.
type ContentOutcome struct {
	ChangeID string
	Content  string
	Path     string
	Found    bool
	Cached   bool
	Attempts []BlobAttempt
}

// Blob is the raw content payload returned by the host for a path at a ref.
type Blob struct {
	Path           string
	Ref            string
	EncodedContent string
	Encoding       string
}
