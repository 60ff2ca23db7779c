package history

import (
	"context"
	"slices"
	"time"

	"github.com/aleister1102/revtrail/internal/metrics"
	"github.com/aleister1102/revtrail/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Differ computes the line diff between two texts.
type Differ interface {
	Diff(oldText, newText string) models.DiffResult
}

// RevisionAssembler turns a document's merged history into revisions with
// content and diffs.
type RevisionAssembler struct {
	resolver      *AliasResolver
	merger        *HistoryMerger
	reconstructor *ContentReconstructor
	differ        Differ
	maxConcurrent int
	logger        zerolog.Logger
}

// NewRevisionAssembler creates a new RevisionAssembler
func NewRevisionAssembler(
	resolver *AliasResolver,
	merger *HistoryMerger,
	reconstructor *ContentReconstructor,
	differ Differ,
	maxConcurrent int,
	logger zerolog.Logger,
) *RevisionAssembler {
	return &RevisionAssembler{
		resolver:      resolver,
		merger:        merger,
		reconstructor: reconstructor,
		differ:        differ,
		maxConcurrent: maxConcurrent,
		logger:        logger.With().Str("component", "RevisionAssembler").Logger(),
	}
}

// Assemble returns the revisions of currentPath newest first. Changes whose
// content cannot be recovered are omitted. A document without history yields
// an empty, non-nil slice.
func (a *RevisionAssembler) Assemble(ctx context.Context, currentPath string) []models.Revision {
	start := time.Now()
	defer func() { metrics.AssembleDuration.Observe(time.Since(start).Seconds()) }()

	paths := a.resolver.PathSet(currentPath)
	history := a.merger.Merge(ctx, paths)
	if len(history) == 0 {
		a.logger.Info().Str("path", currentPath).Msg("No recoverable history")
		return []models.Revision{}
	}

	contents := a.reconstructAll(ctx, history, paths)
	revisions, dropped := a.buildRevisions(history, contents)

	if dropped > 0 {
		metrics.RevisionsDroppedTotal.Add(float64(dropped))
		a.logger.Warn().Str("path", currentPath).Int("dropped", dropped).Msg("Omitted changes whose content could not be recovered")
	}
	a.logger.Info().
		Str("path", currentPath).
		Int("changes", len(history)).
		Int("revisions", len(revisions)).
		Dur("duration", time.Since(start)).
		Msg("Assembled revisions")
	return revisions
}

// reconstructAll fetches the content of every change. contents[i] belongs to history[i].
func (a *RevisionAssembler) reconstructAll(ctx context.Context, history []models.ChangeRecord, paths models.PathSet) []models.ContentOutcome {
	contents := make([]models.ContentOutcome, len(history))

	var g errgroup.Group
	if a.maxConcurrent > 0 {
		g.SetLimit(a.maxConcurrent)
	}
	for i, record := range history {
		g.Go(func() error {
			contents[i] = a.reconstructor.Reconstruct(ctx, record.ID, paths)
			return nil
		})
	}
	_ = g.Wait()

	return contents
}

// buildRevisions walks from the oldest change to the newest. Each kept revision
// except the oldest change of the window is diffed against the next older
// change's content, or against empty text when that content was not recovered.
func (a *RevisionAssembler) buildRevisions(history []models.ChangeRecord, contents []models.ContentOutcome) ([]models.Revision, int) {
	oldest := len(history) - 1
	revisions := make([]models.Revision, 0, len(history))
	dropped := 0

	for i := oldest; i >= 0; i-- {
		if !contents[i].Found {
			dropped++
			continue
		}

		revision := models.Revision{
			ChangeRecord: history[i],
			Content:      contents[i].Content,
		}
		if i < oldest {
			previous := ""
			if contents[i+1].Found {
				previous = contents[i+1].Content
			}
			diff := a.differ.Diff(previous, revision.Content)
			revision.Diff = &diff
		}
		revisions = append(revisions, revision)
	}

	slices.Reverse(revisions)
	return revisions, dropped
}
