package models

// DiffLineType classifies a single line of a line-level diff.
type DiffLineType string

const (
	// DiffLineAdd marks a line present only in the newer text.
	DiffLineAdd DiffLineType = "add"
	// DiffLineRemove marks a line present only in the older text.
	DiffLineRemove DiffLineType = "remove"
	// DiffLineContext marks a line present in both texts.
	DiffLineContext DiffLineType = "context"
)

// DiffLine is one classified, numbered line of a diff.
// Line numbers are 1-based; zero means the number does not apply to the line type
// (adds have no old number, removes have no new number).
type DiffLine struct {
	Type          DiffLineType `json:"type"`
	Content       string       `json:"content"`
	OldLineNumber int          `json:"oldLineNumber,omitempty"`
	NewLineNumber int          `json:"newLineNumber,omitempty"`
}

// HasOldLineNumber reports whether the line belongs to the old numbering stream.
func (l DiffLine) HasOldLineNumber() bool {
	return l.Type == DiffLineRemove || l.Type == DiffLineContext
}

// HasNewLineNumber reports whether the line belongs to the new numbering stream.
func (l DiffLine) HasNewLineNumber() bool {
	return l.Type == DiffLineAdd || l.Type == DiffLineContext
}

// DiffResult holds the edit script between two texts plus summary counts.
// Additions and Deletions always equal the tallies of add and remove lines in Lines.
type DiffResult struct {
	Lines     []DiffLine `json:"lines"`
	Additions int        `json:"additions"`
	Deletions int        `json:"deletions"`
}

// IsIdentical reports whether the diff contains no additions and no deletions.
func (r DiffResult) IsIdentical() bool {
	return r.Additions == 0 && r.Deletions == 0
}
