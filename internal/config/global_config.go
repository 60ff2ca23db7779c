package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/revtrail/internal/common"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	Host             HostConfig       `json:"host,omitempty" yaml:"host,omitempty"`
	Renames          RenameConfig     `json:"renames,omitempty" yaml:"renames,omitempty"`
	HTTPClientConfig HTTPClientConfig `json:"http_client,omitempty" yaml:"http_client,omitempty"`
	HistoryConfig    HistoryConfig    `json:"history,omitempty" yaml:"history,omitempty"`
	StorageConfig    StorageConfig    `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
	LogConfig        LogConfig        `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	MetricsConfig    MetricsConfig    `json:"metrics_config,omitempty" yaml:"metrics_config,omitempty"`
	Mode             string           `json:"mode,omitempty" yaml:"mode,omitempty" validate:"required,mode"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Host:             NewDefaultHostConfig(),
		Renames:          RenameConfig{},
		HTTPClientConfig: NewDefaultHTTPClientConfig(),
		HistoryConfig:    NewDefaultHistoryConfig(),
		StorageConfig:    NewDefaultStorageConfig(),
		LogConfig:        NewDefaultLogConfig(),
		MetricsConfig:    NewDefaultMetricsConfig(),
		Mode:             ModeList,
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath, supports both JSON and YAML formats.
// YAML is preferred if the file extension is .yaml or .yml.
// The REVTRAIL_GITHUB_TOKEN environment variable overrides host.token.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath != "" {
		fileManager := common.NewFileManager(logger)
		if !fileManager.FileExists(filePath) {
			return nil, common.NewValidationError("config_file", filePath, "config file does not exist")
		}

		data, err := loadConfigFileContent(fileManager, filePath)
		if err != nil {
			return nil, common.WrapError(err, "failed to load config file content")
		}

		if err := parseConfigContent(data, filePath, cfg); err != nil {
			return nil, common.WrapError(err, "failed to parse config content")
		}
		logger.Debug().Str("path", filePath).Msg("Configuration file loaded")
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *GlobalConfig) {
	if token := os.Getenv(EnvGitHubToken); token != "" {
		cfg.Host.Token = token
	}
	if cfg.Renames == nil {
		cfg.Renames = RenameConfig{}
	}
}

// loadConfigFileContent reads the config file using FileManager
func loadConfigFileContent(fileManager *common.FileManager, filePath string) ([]byte, error) {
	opts := common.DefaultFileReadOptions()
	opts.MaxSize = 10 * 1024 * 1024

	return fileManager.ReadFile(filePath, opts)
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	if isYAMLFile(filepath.Ext(filePath)) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return common.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}
