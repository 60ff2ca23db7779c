package history

import (
	"github.com/aleister1102/revtrail/internal/common"
	"github.com/aleister1102/revtrail/internal/config"
	"github.com/aleister1102/revtrail/internal/differ"
	"github.com/rs/zerolog"
)

// Engine bundles the wired history components for one repository.
type Engine struct {
	Resolver      *AliasResolver
	Fetcher       *HistoryFetcher
	Merger        *HistoryMerger
	Reconstructor *ContentReconstructor
	Assembler     *RevisionAssembler
}

// EngineBuilder provides a fluent interface for creating an Engine
type EngineBuilder struct {
	logger     zerolog.Logger
	lister     ChangeLister
	getter     BlobGetter
	renames    config.RenameConfig
	historyCfg config.HistoryConfig
	cache      BlobCache
	differ     Differ
}

// NewEngineBuilder creates a new builder
func NewEngineBuilder(logger zerolog.Logger) *EngineBuilder {
	return &EngineBuilder{
		logger:     logger,
		historyCfg: config.NewDefaultHistoryConfig(),
	}
}

// WithHost sets the change lister and blob getter, usually the same host client
func (b *EngineBuilder) WithHost(lister ChangeLister, getter BlobGetter) *EngineBuilder {
	b.lister = lister
	b.getter = getter
	return b
}

// WithRenames sets the rename table
func (b *EngineBuilder) WithRenames(renames config.RenameConfig) *EngineBuilder {
	b.renames = renames
	return b
}

// WithHistoryConfig sets the fan-out limits
func (b *EngineBuilder) WithHistoryConfig(cfg config.HistoryConfig) *EngineBuilder {
	b.historyCfg = cfg
	return b
}

// WithBlobCache enables the content cache
func (b *EngineBuilder) WithBlobCache(cache BlobCache) *EngineBuilder {
	b.cache = cache
	return b
}

// WithDiffer replaces the default line differ
func (b *EngineBuilder) WithDiffer(d Differ) *EngineBuilder {
	b.differ = d
	return b
}

// Build wires the components
func (b *EngineBuilder) Build() (*Engine, error) {
	if b.lister == nil || b.getter == nil {
		return nil, common.NewValidationError("host", nil, "change lister and blob getter are required")
	}

	d := b.differ
	if d == nil {
		d = differ.NewContentDiffer()
	}

	var opts []ReconstructorOption
	if b.cache != nil {
		opts = append(opts, WithBlobCache(b.cache))
	}

	limit := b.historyCfg.MaxConcurrentFetches
	resolver := NewAliasResolver(b.renames)
	fetcher := NewHistoryFetcher(b.lister, b.logger)
	merger := NewHistoryMerger(resolver, fetcher, limit, b.logger)
	reconstructor := NewContentReconstructor(resolver, b.getter, b.logger, opts...)

	return &Engine{
		Resolver:      resolver,
		Fetcher:       fetcher,
		Merger:        merger,
		Reconstructor: reconstructor,
		Assembler:     NewRevisionAssembler(resolver, merger, reconstructor, d, limit, b.logger),
	}, nil
}
