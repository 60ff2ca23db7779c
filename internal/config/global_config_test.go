package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/revtrail/internal/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *GlobalConfig {
	cfg := NewDefaultGlobalConfig()
	cfg.Host.Owner = "acme"
	cfg.Host.Repo = "site"
	return cfg
}

func TestNewDefaultGlobalConfig(t *testing.T) {
	cfg := NewDefaultGlobalConfig()

	assert.Equal(t, ModeList, cfg.Mode)
	assert.Equal(t, DefaultHostAPIBaseURL, cfg.Host.APIBaseURL)
	assert.Equal(t, DefaultHostDocumentFile, cfg.Host.DocumentFile)
	assert.Equal(t, DefaultHistoryConcurrency, cfg.HistoryConfig.MaxConcurrentFetches)
	assert.Equal(t, DefaultStorageCompressionCodec, cfg.StorageConfig.CompressionCodec)
	assert.NotNil(t, cfg.Renames)
	assert.Equal(t, DefaultRetryStatusCodes, cfg.HTTPClientConfig.Retry.RetryStatusCodes)
	assert.Equal(t, 2*time.Minute, cfg.HistoryConfig.AssembleTimeout())
}

func TestHistoryConfig_AssembleTimeoutZeroMeansUnbounded(t *testing.T) {
	assert.Zero(t, HistoryConfig{}.AssembleTimeout())
	assert.Equal(t, 5*time.Second, HistoryConfig{AssembleTimeoutSeconds: 5}.AssembleTimeout())
}

func TestLoadGlobalConfig_NoConfigFile(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvGitHubToken, "")

	cfg, err := LoadGlobalConfig("", zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, ModeList, cfg.Mode)
}

func TestLoadGlobalConfig_NonExistentFile(t *testing.T) {
	cfg, err := LoadGlobalConfig("/nonexistent/config.json", zerolog.Nop())

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config file does not exist")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestLoadGlobalConfig_JSONFile(t *testing.T) {
	t.Setenv(EnvGitHubToken, "")
	configFile := filepath.Join(t.TempDir(), "config.json")
	configData := `{
		"mode": "history",
		"host": {"api_base_url": "https://api.github.com", "owner": "acme", "repo": "site", "documents_dir": "docs", "document_file": "index.md"},
		"renames": {"docs/new/index.md": ["docs/old/index.md"]},
		"log_config": {"log_level": "debug"}
	}`
	require.NoError(t, os.WriteFile(configFile, []byte(configData), 0644))

	cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, ModeHistory, cfg.Mode)
	assert.Equal(t, "acme", cfg.Host.Owner)
	assert.Equal(t, "docs", cfg.Host.DocumentsDir)
	assert.Equal(t, "debug", cfg.LogConfig.LogLevel)
	assert.Equal(t, []string{"docs/old/index.md"}, cfg.Renames["docs/new/index.md"])
	// Untouched sections keep their defaults
	assert.Equal(t, DefaultHostPerPage, cfg.Host.PerPage)
}

func TestLoadGlobalConfig_YAMLFileAndTokenOverride(t *testing.T) {
	t.Setenv(EnvGitHubToken, "env-token")
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	configData := `
mode: export
host:
  owner: acme
  repo: site
  token: file-token
renames:
  src/lib/writings/b/content.md:
    - src/lib/writings/a/content.md
    - src/lib/writings/a2/content.md
storage_config:
  compression_codec: snappy
  cache_ttl_seconds: 5
`
	require.NoError(t, os.WriteFile(configFile, []byte(configData), 0644))

	cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, ModeExport, cfg.Mode)
	assert.Equal(t, "env-token", cfg.Host.Token)
	assert.Equal(t, "snappy", cfg.StorageConfig.CompressionCodec)
	assert.Equal(t, 5, cfg.StorageConfig.CacheTTLSeconds)
	assert.Equal(t, []string{
		"src/lib/writings/a/content.md",
		"src/lib/writings/a2/content.md",
	}, cfg.Renames["src/lib/writings/b/content.md"])
	require.NoError(t, ValidateConfig(cfg))
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(configFile, []byte("mode: [unclosed"), 0644))

	_, err := LoadGlobalConfig(configFile, zerolog.Nop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config content")
}

func TestGetConfigPath_EnvVariable(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("mode: list\n"), 0644))
	t.Setenv(EnvConfigPath, configFile)

	assert.Equal(t, configFile, GetConfigPath(""))
	assert.Equal(t, "explicit.yaml", GetConfigPath("explicit.yaml"))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GlobalConfig)
		wantErr string
	}{
		{name: "valid defaults with repository", mutate: func(*GlobalConfig) {}},
		{name: "missing owner", mutate: func(c *GlobalConfig) { c.Host.Owner = "" }, wantErr: "Host.Owner"},
		{name: "unknown mode", mutate: func(c *GlobalConfig) { c.Mode = "watch" }, wantErr: "rule 'mode'"},
		{name: "unknown log level", mutate: func(c *GlobalConfig) { c.LogConfig.LogLevel = "verbose" }, wantErr: "rule 'loglevel'"},
		{name: "unknown log format", mutate: func(c *GlobalConfig) { c.LogConfig.LogFormat = "xml" }, wantErr: "rule 'logformat'"},
		{name: "unknown codec", mutate: func(c *GlobalConfig) { c.StorageConfig.CompressionCodec = "lz4" }, wantErr: "rule 'codec'"},
		{name: "per page above host limit", mutate: func(c *GlobalConfig) { c.Host.PerPage = 500 }, wantErr: "Host.PerPage"},
		{name: "retry status outside error range", mutate: func(c *GlobalConfig) { c.HTTPClientConfig.Retry.RetryStatusCodes = []int{200} }, wantErr: "RetryStatusCodes"},
		{
			name:    "alias equal to current path",
			mutate:  func(c *GlobalConfig) { c.Renames["a/content.md"] = []string{"a/content.md"} },
			wantErr: "alias equals current path",
		},
		{
			name:    "empty alias",
			mutate:  func(c *GlobalConfig) { c.Renames["a/content.md"] = []string{""} },
			wantErr: "empty alias",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHTTPClientConfig_ToClientConfig(t *testing.T) {
	cfg := NewDefaultHTTPClientConfig()
	cfg.TimeoutSecs = 5
	cfg.MaxContentMB = 2

	clientCfg := cfg.ToClientConfig()

	assert.Equal(t, int64(5), int64(clientCfg.Timeout.Seconds()))
	assert.Equal(t, 2*1024*1024, clientCfg.MaxContentSize)
	assert.Equal(t, DefaultHTTPUserAgent, clientCfg.UserAgent)
	require.NotNil(t, clientCfg.Retry)
	assert.Equal(t, DefaultRetryMaxRetries, clientCfg.Retry.MaxRetries)

	cfg.Retry.MaxRetries = 0
	assert.Nil(t, cfg.ToClientConfig().Retry)
}
