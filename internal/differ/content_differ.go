package differ

import (
	"github.com/aleister1102/revtrail/internal/models"
)

// ContentDiffer produces classified, line-numbered diffs between two texts.
// It holds no per-call state and is safe for concurrent use.
type ContentDiffer struct {
	processor *DiffProcessor
}

// NewContentDiffer creates a new instance of ContentDiffer
func NewContentDiffer() *ContentDiffer {
	return &ContentDiffer{processor: NewDiffProcessor()}
}

// Diff compares oldText with newText. Any two strings are valid input;
// an empty side yields an all-additions or all-deletions result.
func (cd *ContentDiffer) Diff(oldText, newText string) models.DiffResult {
	builder := NewDiffResultBuilder()
	for _, group := range cd.processor.ProcessLines(oldText, newText) {
		builder.AddGroup(group)
	}
	return builder.Build()
}
