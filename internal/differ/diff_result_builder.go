package differ

import (
	"strings"

	"github.com/aleister1102/revtrail/internal/models"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffResultBuilder walks change groups in order and numbers their lines.
// Both counters start at 1 and are shared across groups.
type DiffResultBuilder struct {
	result  models.DiffResult
	oldLine int
	newLine int
}

// NewDiffResultBuilder creates a new result builder
func NewDiffResultBuilder() *DiffResultBuilder {
	return &DiffResultBuilder{
		result:  models.DiffResult{Lines: []models.DiffLine{}},
		oldLine: 1,
		newLine: 1,
	}
}

// AddGroup appends every line of one change group
func (rb *DiffResultBuilder) AddGroup(group diffmatchpatch.Diff) *DiffResultBuilder {
	for _, content := range splitLines(group.Text) {
		switch group.Type {
		case diffmatchpatch.DiffInsert:
			rb.addLine(content)
		case diffmatchpatch.DiffDelete:
			rb.removeLine(content)
		default:
			rb.contextLine(content)
		}
	}
	return rb
}

func (rb *DiffResultBuilder) addLine(content string) {
	rb.result.Lines = append(rb.result.Lines, models.DiffLine{
		Type:          models.DiffLineAdd,
		Content:       content,
		NewLineNumber: rb.newLine,
	})
	rb.newLine++
	rb.result.Additions++
}

func (rb *DiffResultBuilder) removeLine(content string) {
	rb.result.Lines = append(rb.result.Lines, models.DiffLine{
		Type:          models.DiffLineRemove,
		Content:       content,
		OldLineNumber: rb.oldLine,
	})
	rb.oldLine++
	rb.result.Deletions++
}

func (rb *DiffResultBuilder) contextLine(content string) {
	rb.result.Lines = append(rb.result.Lines, models.DiffLine{
		Type:          models.DiffLineContext,
		Content:       content,
		OldLineNumber: rb.oldLine,
		NewLineNumber: rb.newLine,
	})
	rb.oldLine++
	rb.newLine++
}

// Build returns the accumulated result
func (rb *DiffResultBuilder) Build() models.DiffResult {
	return rb.result
}

// splitLines splits a group on "\n", dropping the single empty element a final
// terminator produces.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
