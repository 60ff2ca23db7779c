// Package writing exposes the documents of a repository together with their
// reconstructed revision history.
package writing

import (
	"context"
	"errors"
	"path"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/aleister1102/revtrail/internal/common"
	"github.com/aleister1102/revtrail/internal/config"
	"github.com/aleister1102/revtrail/internal/history"
	"github.com/aleister1102/revtrail/internal/metrics"
	"github.com/aleister1102/revtrail/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrWritingNotFound is returned for a slug the host does not list.
var ErrWritingNotFound = common.WrapError(common.ErrNotFound, "writing")

// DocumentLister lists the document directories of the repository.
type DocumentLister interface {
	ListDocuments(ctx context.Context) ([]string, error)
}

// RevisionCache stores assembled revision sets keyed by current path.
type RevisionCache interface {
	GetRevisions(ctx context.Context, path string) ([]models.Revision, bool, error)
	PutRevisions(ctx context.Context, path string, revisions []models.Revision) error
}

// BranchListerFunc returns a ChangeLister for another repository ("owner/name").
type BranchListerFunc func(repo string) (history.ChangeLister, error)

// LibraryOption configures a Library
type LibraryOption func(*Library)

// WithRevisionCache enables revision-set caching
func WithRevisionCache(cache RevisionCache) LibraryOption {
	return func(l *Library) {
		l.cache = cache
	}
}

// WithBranchLister enables history lookups for branches published in other repositories
func WithBranchLister(fn BranchListerFunc) LibraryOption {
	return func(l *Library) {
		l.branchLister = fn
	}
}

// Library serves writings and their histories.
type Library struct {
	engine             *history.Engine
	documents          DocumentLister
	cache              RevisionCache
	branchLister       BranchListerFunc
	hostCfg            config.HostConfig
	catalogConcurrency int
	assembleTimeout    time.Duration
	inflight           singleflight.Group
	logger             zerolog.Logger
}

// NewLibrary creates a Library over an assembled history engine.
func NewLibrary(
	engine *history.Engine,
	documents DocumentLister,
	hostCfg config.HostConfig,
	historyCfg config.HistoryConfig,
	logger zerolog.Logger,
	opts ...LibraryOption,
) (*Library, error) {
	if engine == nil {
		return nil, common.NewValidationError("engine", nil, "history engine cannot be nil")
	}
	if documents == nil {
		return nil, common.NewValidationError("documents", nil, "document lister cannot be nil")
	}

	concurrency := historyCfg.CatalogConcurrency
	if concurrency <= 0 {
		concurrency = config.DefaultCatalogConcurrency
	}

	l := &Library{
		engine:             engine,
		documents:          documents,
		hostCfg:            hostCfg,
		catalogConcurrency: concurrency,
		assembleTimeout:    historyCfg.AssembleTimeout(),
		logger:             logger.With().Str("component", "WritingLibrary").Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// PathFor returns the repository path of the document named slug.
func (l *Library) PathFor(slug string) string {
	return path.Join(l.hostCfg.DocumentsDir, slug, l.hostCfg.DocumentFile)
}

// Slugs lists the documents. Host failures are logged and yield an empty list.
func (l *Library) Slugs(ctx context.Context) []string {
	slugs, err := l.documents.ListDocuments(ctx)
	if err != nil {
		l.logger.Warn().Err(err).Msg("Failed to list documents")
		return []string{}
	}
	return slugs
}

// Revisions returns the assembled revisions of slug, newest first. Concurrent
// calls for the same document share one assembly, which runs detached from any
// single caller so that one caller giving up does not fail the others. Each
// caller receives its own copy of the result.
func (l *Library) Revisions(ctx context.Context, slug string) ([]models.Revision, error) {
	currentPath := l.PathFor(slug)

	if cached, ok := l.cachedRevisions(ctx, currentPath); ok {
		return models.CloneRevisions(cached), nil
	}

	ch := l.inflight.DoChan(currentPath, func() (interface{}, error) {
		return l.assemble(context.WithoutCancel(ctx), currentPath)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-ch:
		if result.Err != nil {
			return nil, result.Err
		}
		if result.Shared {
			l.logger.Debug().Str("path", currentPath).Msg("Shared in-flight assembly")
		}
		return models.CloneRevisions(result.Val.([]models.Revision)), nil
	}
}

// assemble runs one assembly bounded by the configured timeout. A timed out
// assembly may be incomplete, so it is reported as an error and not cached.
func (l *Library) assemble(ctx context.Context, currentPath string) ([]models.Revision, error) {
	if l.assembleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.assembleTimeout)
		defer cancel()
	}

	revisions := l.engine.Assembler.Assemble(ctx, currentPath)
	if err := ctx.Err(); err != nil {
		return nil, common.WrapErrorf(err, "assembling %s", currentPath)
	}
	l.storeRevisions(ctx, currentPath, revisions)
	return revisions, nil
}

// Load returns the writing named slug with its history. A writing whose history
// cannot be recovered is returned with no revisions rather than an error.
func (l *Library) Load(ctx context.Context, slug string) (*models.WritingWithHistory, error) {
	slugs := l.Slugs(ctx)
	if !slices.Contains(slugs, slug) {
		return nil, common.WrapErrorf(ErrWritingNotFound, "slug %q", slug)
	}

	revisions, err := l.Revisions(ctx, slug)
	if err != nil {
		return nil, err
	}

	writing := &models.WritingWithHistory{
		Metadata:  models.WritingMetadata{Slug: slug, RevisionCount: len(revisions)},
		Revisions: revisions,
		NextSlug:  l.nextSlug(ctx, slugs, slug),
	}
	if len(revisions) == 0 {
		writing.Metadata.Title = titleFromSlug(slug)
		return writing, nil
	}

	fm := l.frontmatter(slug, revisions[0].Content)
	writing.CurrentContent = fm.Body
	writing.Metadata.Title = resolveTitle(fm, slug)
	writing.Metadata.Description = fm.Description
	writing.Metadata.Authors = fm.Authors
	writing.Metadata.Style = fm.Style
	writing.Metadata.Branches = l.branchHistories(ctx, fm.Branches)
	writing.Metadata.CreatedAt = revisions[len(revisions)-1].Timestamp
	writing.Metadata.UpdatedAt = revisions[0].Timestamp
	return writing, nil
}

// branchHistories fills in the change history of branches that live on the
// host. Failures are logged and leave that branch without revisions.
func (l *Library) branchHistories(ctx context.Context, branches []models.Branch) []models.Branch {
	if len(branches) == 0 {
		return nil
	}
	out := slices.Clone(branches)
	if l.branchLister == nil {
		return out
	}

	var g errgroup.Group
	g.SetLimit(l.catalogConcurrency)
	for i, branch := range out {
		if !branch.HasExternalHistory() {
			continue
		}
		g.Go(func() error {
			lister, err := l.branchLister(branch.Repo)
			if err != nil {
				l.logger.Warn().Err(err).Str("repo", branch.Repo).Msg("Skipping branch history")
				return nil
			}
			outcome := history.NewHistoryFetcher(lister, l.logger).FetchHistory(ctx, branch.Path)
			out[i].Revisions = outcome.Records
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// nextSlug orders all writings by last update, newest first, and returns the
// one updated just after slug. The newest writing wraps around to the oldest.
func (l *Library) nextSlug(ctx context.Context, slugs []string, slug string) string {
	order := l.navigationOrder(ctx, slugs)
	idx := slices.Index(order, slug)
	if idx > 0 {
		return order[idx-1]
	}
	return order[len(order)-1]
}

// navigationOrder sorts slugs by the newest change of their merged history.
// Writings without history sort last, in listing order.
func (l *Library) navigationOrder(ctx context.Context, slugs []string) []string {
	updated := make([]time.Time, len(slugs))

	var g errgroup.Group
	g.SetLimit(l.catalogConcurrency)
	for i, slug := range slugs {
		g.Go(func() error {
			if changes := l.engine.Merger.MergedHistory(ctx, l.PathFor(slug)); len(changes) > 0 {
				updated[i] = changes[0].Timestamp
			}
			return nil
		})
	}
	_ = g.Wait()

	idx := make([]int, len(slugs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return updated[idx[a]].After(updated[idx[b]])
	})

	order := make([]string, len(idx))
	for i, j := range idx {
		order[i] = slugs[j]
	}
	return order
}

// Catalog returns metadata for every writing, most recently updated first.
// It reads only the merged history and the newest content of each document.
// Writings without history keep zero timestamps and sort last.
func (l *Library) Catalog(ctx context.Context) ([]models.WritingMetadata, error) {
	slugs := l.Slugs(ctx)
	entries := make([]models.WritingMetadata, len(slugs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.catalogConcurrency)
	for i, slug := range slugs {
		g.Go(func() error {
			entries[i] = l.catalogEntry(gctx, slug)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries, nil
}

func (l *Library) catalogEntry(ctx context.Context, slug string) models.WritingMetadata {
	currentPath := l.PathFor(slug)
	changes := l.engine.Merger.MergedHistory(ctx, currentPath)

	entry := models.WritingMetadata{
		Slug:          slug,
		Title:         titleFromSlug(slug),
		RevisionCount: len(changes),
	}
	if len(changes) == 0 {
		return entry
	}

	entry.CreatedAt = changes[len(changes)-1].Timestamp
	entry.UpdatedAt = changes[0].Timestamp

	content, found := l.engine.Reconstructor.ContentAt(ctx, changes[0].ID, currentPath)
	if !found {
		return entry
	}
	fm := l.frontmatter(slug, content)
	entry.Title = resolveTitle(fm, slug)
	entry.Description = fm.Description
	entry.Authors = fm.Authors
	entry.Style = fm.Style
	entry.Branches = fm.Branches
	return entry
}

func (l *Library) frontmatter(slug, content string) models.Frontmatter {
	fm, err := ExtractFrontmatter(content)
	if err != nil {
		l.logger.Warn().Err(err).Str("slug", slug).Msg("Ignoring unreadable frontmatter")
	}
	return fm
}

func (l *Library) cachedRevisions(ctx context.Context, currentPath string) ([]models.Revision, bool) {
	if l.cache == nil {
		return nil, false
	}
	revisions, found, err := l.cache.GetRevisions(ctx, currentPath)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheKindRevisionSet, metrics.CacheResultErr).Inc()
		l.logger.Warn().Err(err).Str("path", currentPath).Msg("Revision cache lookup failed")
		return nil, false
	case !found:
		metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheKindRevisionSet, metrics.CacheResultMiss).Inc()
		return nil, false
	default:
		metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheKindRevisionSet, metrics.CacheResultHit).Inc()
		return revisions, true
	}
}

// storeRevisions skips empty sets, which are indistinguishable from a host outage.
func (l *Library) storeRevisions(ctx context.Context, currentPath string, revisions []models.Revision) {
	if l.cache == nil || len(revisions) == 0 {
		return
	}
	if err := l.cache.PutRevisions(ctx, currentPath, revisions); err != nil {
		l.logger.Warn().Err(err).Str("path", currentPath).Msg("Failed to cache revisions")
	}
}

func resolveTitle(fm models.Frontmatter, slug string) string {
	if fm.Title != "" {
		return fm.Title
	}
	if heading := FirstHeading(fm.Body); heading != "" {
		return heading
	}
	return titleFromSlug(slug)
}

func titleFromSlug(slug string) string {
	return strings.ReplaceAll(slug, "-", " ")
}

// IsNotFound reports whether err means the writing does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWritingNotFound)
}
