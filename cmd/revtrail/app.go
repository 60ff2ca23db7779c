package main

import (
	"context"
	"fmt"
	"io"

	"github.com/aleister1102/revtrail/internal/common"
	"github.com/aleister1102/revtrail/internal/config"
	"github.com/aleister1102/revtrail/internal/datastore"
	"github.com/aleister1102/revtrail/internal/history"
	"github.com/aleister1102/revtrail/internal/host"
	"github.com/aleister1102/revtrail/internal/metrics"
	"github.com/aleister1102/revtrail/internal/writing"
	"github.com/rs/zerolog"
)

// application holds the wired services for one run
type application struct {
	cfg     *config.GlobalConfig
	library *writing.Library
	archive *datastore.ParquetRevisionArchive
	cache   *datastore.SQLiteCache
	logger  zerolog.Logger
}

func newApplication(cfg *config.GlobalConfig, logger zerolog.Logger) (*application, error) {
	httpClient, err := common.NewHTTPClient(cfg.HTTPClientConfig.ToClientConfig(), logger)
	if err != nil {
		return nil, common.WrapError(err, "failed to create HTTP client")
	}

	gitHub, err := host.NewGitHubClient(httpClient, cfg.Host, logger)
	if err != nil {
		return nil, err
	}

	app := &application{cfg: cfg, logger: logger}

	builder := history.NewEngineBuilder(logger).
		WithHost(gitHub, gitHub).
		WithRenames(cfg.Renames).
		WithHistoryConfig(cfg.HistoryConfig)

	libraryOpts := []writing.LibraryOption{
		writing.WithBranchLister(func(repo string) (history.ChangeLister, error) {
			client, err := gitHub.ForRepository(repo)
			if err != nil {
				return nil, err
			}
			return client, nil
		}),
	}
	if cfg.StorageConfig.CacheEnabled {
		cache, err := datastore.NewSQLiteCache(cfg.StorageConfig, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		} else {
			app.cache = cache
			builder = builder.WithBlobCache(cache)
			libraryOpts = append(libraryOpts, writing.WithRevisionCache(cache))
		}
	}

	engine, err := builder.Build()
	if err != nil {
		app.close()
		return nil, err
	}

	app.library, err = writing.NewLibrary(engine, gitHub, cfg.Host, cfg.HistoryConfig, logger, libraryOpts...)
	if err != nil {
		app.close()
		return nil, err
	}

	app.archive, err = datastore.NewParquetRevisionArchive(&cfg.StorageConfig, logger)
	if err != nil {
		app.close()
		return nil, err
	}
	return app, nil
}

func (a *application) close() {
	if a.cache == nil {
		return
	}
	var collector common.ErrorCollector
	purged, err := a.cache.PurgeExpired(context.Background())
	collector.Add(err)
	collector.Add(a.cache.Close())
	if collector.HasErrors() {
		a.logger.Warn().Err(collector.Error()).Msg("Failed to shut down cache cleanly")
		return
	}
	a.logger.Debug().Int64("purged", purged).Msg("Cache closed")
}

// run executes the configured mode and writes its result to out.
func (a *application) run(ctx context.Context, flags AppFlags, out io.Writer) error {
	defer func() {
		if err := metrics.WriteTextfile(a.cfg.MetricsConfig.TextfilePath); err != nil {
			a.logger.Warn().Err(err).Str("path", a.cfg.MetricsConfig.TextfilePath).Msg("Failed to write metrics textfile")
		}
	}()

	switch a.cfg.Mode {
	case config.ModeList:
		return a.runList(ctx, flags, out)
	case config.ModeHistory:
		return a.runHistory(ctx, flags, out)
	case config.ModeExport:
		return a.runExport(ctx, flags, out)
	default:
		return common.NewValidationError("mode", a.cfg.Mode, "unknown mode")
	}
}

func (a *application) runList(ctx context.Context, flags AppFlags, out io.Writer) error {
	catalog, err := a.library.Catalog(ctx)
	if err != nil {
		return err
	}
	if flags.Output == outputJSON {
		return writeJSON(out, catalog)
	}
	renderCatalog(out, catalog)
	return nil
}

func (a *application) runHistory(ctx context.Context, flags AppFlags, out io.Writer) error {
	if flags.Slug == "" {
		return common.NewValidationError("slug", "", "a slug is required in history mode")
	}

	w, err := a.library.Load(ctx, flags.Slug)
	if err != nil {
		return err
	}
	if !w.HasHistory() {
		_, err := fmt.Fprintln(out, noHistoryMessage)
		return err
	}
	if flags.Output == outputJSON {
		return writeJSON(out, w)
	}
	renderHistory(out, w)
	return nil
}

func (a *application) runExport(ctx context.Context, flags AppFlags, out io.Writer) error {
	slugs := []string{flags.Slug}
	if flags.Slug == "" {
		slugs = a.library.Slugs(ctx)
	}

	var exported []exportResult
	for _, slug := range slugs {
		if result := common.CheckCancellationWithLog(ctx, a.logger, "export"); result.Cancelled {
			return result.Error
		}

		revisions, err := a.library.Revisions(ctx, slug)
		if err != nil {
			return err
		}
		if len(revisions) == 0 {
			a.logger.Info().Str("slug", slug).Msg("Nothing to export")
			if flags.Slug != "" {
				_, err := fmt.Fprintln(out, noHistoryMessage)
				return err
			}
			continue
		}

		filePath, err := a.archive.Write(ctx, slug, a.library.PathFor(slug), revisions)
		if err != nil {
			return common.WrapErrorf(err, "exporting %s", slug)
		}
		exported = append(exported, exportResult{Slug: slug, Revisions: len(revisions), File: filePath})
	}

	if flags.Output == outputJSON {
		return writeJSON(out, exported)
	}
	renderExports(out, exported)
	return nil
}
