package history

import (
	"context"
	"sort"

	"github.com/aleister1102/revtrail/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// HistoryMerger unions the histories of every path a document has been known by.
type HistoryMerger struct {
	resolver      *AliasResolver
	fetcher       *HistoryFetcher
	maxConcurrent int
	logger        zerolog.Logger
}

// NewHistoryMerger creates a new HistoryMerger. maxConcurrent <= 0 leaves the fan-out unbounded.
func NewHistoryMerger(resolver *AliasResolver, fetcher *HistoryFetcher, maxConcurrent int, logger zerolog.Logger) *HistoryMerger {
	return &HistoryMerger{
		resolver:      resolver,
		fetcher:       fetcher,
		maxConcurrent: maxConcurrent,
		logger:        logger.With().Str("component", "HistoryMerger").Logger(),
	}
}

// MergedHistory returns the merged history of currentPath and its aliases, newest first.
func (m *HistoryMerger) MergedHistory(ctx context.Context, currentPath string) []models.ChangeRecord {
	return m.Merge(ctx, m.resolver.PathSet(currentPath))
}

// Merge fetches every path of paths concurrently, then deduplicates by change id
// (first seen wins, scanning paths in PathSet order) and sorts newest first.
// Records with equal timestamps keep their concatenation order.
func (m *HistoryMerger) Merge(ctx context.Context, paths models.PathSet) []models.ChangeRecord {
	outcomes := m.fetchAll(ctx, paths.All())

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Failed() {
			failed++
		}
	}

	merged := mergeOutcomes(outcomes)
	if ties := countTimestampTies(merged); ties > 0 {
		m.logger.Debug().Str("path", paths.Current).Int("ties", ties).
			Msg("Changes share timestamps, keeping concatenation order")
	}

	m.logger.Debug().
		Str("path", paths.Current).
		Int("paths", paths.Len()).
		Int("failed_paths", failed).
		Int("changes", len(merged)).
		Msg("Merged change history")
	return merged
}

// fetchAll runs one fetch per path. Each result lands in its own slot, so the
// output order follows paths regardless of completion order.
func (m *HistoryMerger) fetchAll(ctx context.Context, paths []string) []models.HistoryOutcome {
	outcomes := make([]models.HistoryOutcome, len(paths))

	var g errgroup.Group
	if m.maxConcurrent > 0 {
		g.SetLimit(m.maxConcurrent)
	}
	for i, path := range paths {
		g.Go(func() error {
			outcomes[i] = m.fetcher.FetchHistory(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func mergeOutcomes(outcomes []models.HistoryOutcome) []models.ChangeRecord {
	seen := make(map[string]struct{})
	merged := make([]models.ChangeRecord, 0)

	for _, outcome := range outcomes {
		for _, record := range outcome.Records {
			if _, dup := seen[record.ID]; dup {
				continue
			}
			seen[record.ID] = struct{}{}
			merged = append(merged, record)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	return merged
}

func countTimestampTies(sorted []models.ChangeRecord) int {
	ties := 0
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Timestamp.Equal(sorted[i-1].Timestamp) {
			ties++
		}
	}
	return ties
}
