package differ

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffProcessor handles the core diffing logic
type DiffProcessor struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewDiffProcessor creates a new diff processor.
// The diff timeout is disabled so identical inputs always yield identical scripts.
func NewDiffProcessor() *DiffProcessor {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	return &DiffProcessor{dmp: dmp}
}

// ProcessLines computes a line-granular edit script. Every returned group's
// Text is a concatenation of whole lines, each keeping its terminator.
func (dp *DiffProcessor) ProcessLines(oldText, newText string) []diffmatchpatch.Diff {
	oldRunes, newRunes, lineArray := dp.dmp.DiffLinesToRunes(oldText, newText)
	diffs := dp.dmp.DiffMainRunes(oldRunes, newRunes, false)
	return dp.dmp.DiffCharsToLines(diffs, lineArray)
}
