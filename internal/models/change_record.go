package models

import "time"

// ShortIDLength is the display length of a change identifier.
const ShortIDLength = 7

// ChangeRecord describes one change (commit) that touched a document.
// Identity is ID; records are immutable once fetched.
type ChangeRecord struct {
	ID         string    `json:"hash"`
	ShortID    string    `json:"shortHash"`
	Timestamp  time.Time `json:"date"`
	AuthorName string    `json:"author"`
	Summary    string    `json:"message"`
}

// NewChangeRecord builds a ChangeRecord, deriving ShortID from id and keeping only
// the first line of message as the summary.
func NewChangeRecord(id string, timestamp time.Time, authorName, message string) ChangeRecord {
	return ChangeRecord{
		ID:         id,
		ShortID:    ShortID(id),
		Timestamp:  timestamp,
		AuthorName: authorName,
		Summary:    FirstLine(message),
	}
}

// ShortID truncates a change identifier for display.
func ShortID(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}

// FirstLine returns text up to the first newline.
func FirstLine(text string) string {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			return text[:i]
		}
	}
	return text
}

// Revision is a ChangeRecord with the document content reconstructed at that change.
// Diff is nil for the oldest revision of a fetched window.
type Revision struct {
	ChangeRecord
	Content string      `json:"content"`
	Diff    *DiffResult `json:"diff,omitempty"`
}

// Clone returns a copy of r that shares no diff lines with it.
func (r Revision) Clone() Revision {
	if r.Diff != nil {
		diff := *r.Diff
		diff.Lines = append([]DiffLine(nil), r.Diff.Lines...)
		r.Diff = &diff
	}
	return r
}

// CloneRevisions deep-copies a revision list; nil stays nil.
func CloneRevisions(revisions []Revision) []Revision {
	if revisions == nil {
		return nil
	}
	out := make([]Revision, len(revisions))
	for i, r := range revisions {
		out[i] = r.Clone()
	}
	return out
}
