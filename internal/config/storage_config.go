package config

import "time"

// StorageConfig defines configuration for the revision cache and the Parquet archive
type StorageConfig struct {
	CompressionCodec string `json:"compression_codec,omitempty" yaml:"compression_codec,omitempty" validate:"omitempty,codec"`
	ParquetBasePath  string `json:"parquet_base_path,omitempty" yaml:"parquet_base_path,omitempty"`
	SQLitePath       string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
	CacheEnabled     bool   `json:"cache_enabled" yaml:"cache_enabled"`
	CacheTTLSeconds  int    `json:"cache_ttl_seconds,omitempty" yaml:"cache_ttl_seconds,omitempty" validate:"omitempty,min=0"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		CompressionCodec: DefaultStorageCompressionCodec,
		ParquetBasePath:  DefaultStorageParquetBasePath,
		SQLitePath:       DefaultStorageSQLitePath,
		CacheEnabled:     true,
		CacheTTLSeconds:  DefaultStorageCacheTTLSeconds,
	}
}

// CacheTTL returns the revision-set cache lifetime.
func (s StorageConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// HistoryConfig tunes the fan-out of history and content fetches
type HistoryConfig struct {
	MaxConcurrentFetches   int `json:"max_concurrent_fetches,omitempty" yaml:"max_concurrent_fetches,omitempty" validate:"omitempty,min=1,max=64"`
	CatalogConcurrency     int `json:"catalog_concurrency,omitempty" yaml:"catalog_concurrency,omitempty" validate:"omitempty,min=1,max=64"`
	AssembleTimeoutSeconds int `json:"assemble_timeout_seconds,omitempty" yaml:"assemble_timeout_seconds,omitempty" validate:"omitempty,min=0"`
}

// NewDefaultHistoryConfig creates default history configuration
func NewDefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		MaxConcurrentFetches:   DefaultHistoryConcurrency,
		CatalogConcurrency:     DefaultCatalogConcurrency,
		AssembleTimeoutSeconds: DefaultAssembleTimeout,
	}
}

// AssembleTimeout bounds one shared revision assembly; zero means no limit.
func (h HistoryConfig) AssembleTimeout() time.Duration {
	return time.Duration(h.AssembleTimeoutSeconds) * time.Second
}

// MetricsConfig defines where Prometheus metrics are written
type MetricsConfig struct {
	TextfilePath string `json:"textfile_path,omitempty" yaml:"textfile_path,omitempty"`
}

// NewDefaultMetricsConfig creates default metrics configuration (disabled)
func NewDefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{}
}
