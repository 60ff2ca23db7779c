package history

import (
	"context"
	"errors"

	"github.com/aleister1102/revtrail/internal/host"
	"github.com/aleister1102/revtrail/internal/metrics"
	"github.com/aleister1102/revtrail/internal/models"
	"github.com/rs/zerolog"
)

// ContentReconstructor recovers a document's text at a change by probing its
// candidate paths in order and stopping at the first decodable blob.
type ContentReconstructor struct {
	resolver *AliasResolver
	getter   BlobGetter
	cache    BlobCache
	logger   zerolog.Logger
}

// ReconstructorOption configures a ContentReconstructor
type ReconstructorOption func(*ContentReconstructor)

// WithBlobCache consults cache before the host and fills it after a successful fetch.
func WithBlobCache(cache BlobCache) ReconstructorOption {
	return func(r *ContentReconstructor) {
		r.cache = cache
	}
}

// NewContentReconstructor creates a new ContentReconstructor
func NewContentReconstructor(resolver *AliasResolver, getter BlobGetter, logger zerolog.Logger, opts ...ReconstructorOption) *ContentReconstructor {
	r := &ContentReconstructor{
		resolver: resolver,
		getter:   getter,
		logger:   logger.With().Str("component", "ContentReconstructor").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ContentAt returns the document text at changeID, or false when no candidate
// path yields content.
func (r *ContentReconstructor) ContentAt(ctx context.Context, changeID, currentPath string) (string, bool) {
	outcome := r.Reconstruct(ctx, changeID, r.resolver.PathSet(currentPath))
	return outcome.Content, outcome.Found
}

// Reconstruct tries paths in order and records every attempt.
func (r *ContentReconstructor) Reconstruct(ctx context.Context, changeID string, paths models.PathSet) models.ContentOutcome {
	outcome := models.ContentOutcome{ChangeID: changeID}

	for _, path := range paths.All() {
		if content, ok := r.cachedContent(ctx, changeID, path); ok {
			outcome.Content, outcome.Path = content, path
			outcome.Found, outcome.Cached = true, true
			return outcome
		}

		content, attempt := r.tryPath(ctx, changeID, path)
		outcome.Attempts = append(outcome.Attempts, attempt)
		metrics.BlobFetchesTotal.WithLabelValues(string(attempt.Status)).Inc()

		if attempt.Status == models.FetchStatusFetched {
			outcome.Content, outcome.Path, outcome.Found = content, path, true
			r.storeContent(ctx, changeID, path, content)
			return outcome
		}
		if ctx.Err() != nil {
			break
		}
	}

	r.logger.Debug().
		Str("change_id", changeID).
		Str("path", paths.Current).
		Int("attempts", len(outcome.Attempts)).
		Msg("Content not recoverable from any candidate path")
	return outcome
}

func (r *ContentReconstructor) tryPath(ctx context.Context, changeID, path string) (string, models.BlobAttempt) {
	attempt := models.BlobAttempt{Path: path}

	blob, err := r.getter.GetBlobAt(ctx, path, changeID)
	if err != nil {
		attempt.Err = err
		if errors.Is(err, host.ErrBlobNotFound) {
			attempt.Status = models.FetchStatusEmpty
		} else {
			attempt.Status = models.FetchStatusFailed
			r.logger.Warn().Err(err).Str("change_id", changeID).Str("path", path).Msg("Blob fetch failed, trying next candidate")
		}
		return "", attempt
	}

	content, err := host.DecodeContent(blob)
	if err != nil {
		attempt.Status = models.FetchStatusFailed
		attempt.Err = err
		r.logger.Warn().Err(err).Str("change_id", changeID).Str("path", path).Msg("Blob not decodable, trying next candidate")
		return "", attempt
	}

	attempt.Status = models.FetchStatusFetched
	return content, attempt
}

func (r *ContentReconstructor) cachedContent(ctx context.Context, changeID, path string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	content, found, err := r.cache.GetBlob(ctx, changeID, path)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheKindBlob, metrics.CacheResultErr).Inc()
		r.logger.Warn().Err(err).Str("change_id", changeID).Str("path", path).Msg("Blob cache lookup failed")
		return "", false
	case !found:
		metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheKindBlob, metrics.CacheResultMiss).Inc()
		return "", false
	default:
		metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheKindBlob, metrics.CacheResultHit).Inc()
		return content, true
	}
}

func (r *ContentReconstructor) storeContent(ctx context.Context, changeID, path, content string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.PutBlob(ctx, changeID, path, content); err != nil {
		r.logger.Warn().Err(err).Str("change_id", changeID).Str("path", path).Msg("Failed to cache blob")
	}
}
