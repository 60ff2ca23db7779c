package config

const (
	// Environment overrides
	EnvConfigPath  = "REVTRAIL_CONFIG_PATH"
	EnvGitHubToken = "REVTRAIL_GITHUB_TOKEN"

	// Host Defaults
	DefaultHostAPIBaseURL   = "https://api.github.com"
	DefaultHostDocumentsDir = "src/lib/writings"
	DefaultHostDocumentFile = "content.md"
	DefaultHostPerPage      = 100
	DefaultHostMaxPages     = 10

	// HTTP Client Defaults
	DefaultHTTPTimeoutSecs    = 30
	DefaultHTTPUserAgent      = "revtrail/1.0"
	DefaultHTTPMaxContentMB   = 20
	DefaultRetryMaxRetries    = 3
	DefaultRetryBaseDelayMs   = 500
	DefaultRetryMaxDelayMs    = 10000
	DefaultRetryEnableJitter  = true
	DefaultHistoryConcurrency = 8
	DefaultCatalogConcurrency = 4
	DefaultAssembleTimeout    = 120 // seconds

	// Storage Defaults
	DefaultStorageParquetBasePath  = "database/archive"
	DefaultStorageCompressionCodec = "zstd"
	DefaultStorageSQLitePath       = "database/cache/revtrail.db"
	DefaultStorageCacheTTLSeconds  = 60

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Modes
	ModeList    = "list"
	ModeHistory = "history"
	ModeExport  = "export"
)

// DefaultRetryStatusCodes are the host responses worth retrying.
var DefaultRetryStatusCodes = []int{429, 502, 503, 504}
