package history

import (
	"context"

	"github.com/aleister1102/revtrail/internal/metrics"
	"github.com/aleister1102/revtrail/internal/models"
	"github.com/rs/zerolog"
)

// HistoryFetcher lists the changes of a single path and never fails: host
// errors become a FetchStatusFailed outcome with no records.
type HistoryFetcher struct {
	lister ChangeLister
	logger zerolog.Logger
}

// NewHistoryFetcher creates a new HistoryFetcher
func NewHistoryFetcher(lister ChangeLister, logger zerolog.Logger) *HistoryFetcher {
	return &HistoryFetcher{
		lister: lister,
		logger: logger.With().Str("component", "HistoryFetcher").Logger(),
	}
}

// FetchHistory returns the change records of path in host order.
func (f *HistoryFetcher) FetchHistory(ctx context.Context, path string) models.HistoryOutcome {
	outcome := models.HistoryOutcome{Path: path}

	records, err := f.lister.ListChanges(ctx, path)
	switch {
	case err != nil:
		outcome.Status = models.FetchStatusFailed
		outcome.Err = err
		f.logger.Warn().Err(err).Str("path", path).Msg("Failed to fetch change history, treating as empty")
	case len(records) == 0:
		outcome.Status = models.FetchStatusEmpty
		f.logger.Debug().Str("path", path).Msg("No changes recorded for path")
	default:
		outcome.Status = models.FetchStatusFetched
		outcome.Records = records
		f.logger.Debug().Str("path", path).Int("changes", len(records)).Msg("Fetched change history")
	}

	metrics.HistoryFetchesTotal.WithLabelValues(string(outcome.Status)).Inc()
	return outcome
}
