package config

import "strings"

// HostConfig defines how to reach the content-hosting service (GitHub REST API)
type HostConfig struct {
	APIBaseURL   string `json:"api_base_url,omitempty" yaml:"api_base_url,omitempty" validate:"required,url"`
	Owner        string `json:"owner,omitempty" yaml:"owner,omitempty" validate:"required"`
	Repo         string `json:"repo,omitempty" yaml:"repo,omitempty" validate:"required"`
	Token        string `json:"token,omitempty" yaml:"token,omitempty"`
	DocumentsDir string `json:"documents_dir,omitempty" yaml:"documents_dir,omitempty" validate:"required"`
	DocumentFile string `json:"document_file,omitempty" yaml:"document_file,omitempty" validate:"required"`
	PerPage      int    `json:"per_page,omitempty" yaml:"per_page,omitempty" validate:"omitempty,min=1,max=100"`
	MaxPages     int    `json:"max_pages,omitempty" yaml:"max_pages,omitempty" validate:"omitempty,min=1,max=100"`
}

// NewDefaultHostConfig creates default host configuration
func NewDefaultHostConfig() HostConfig {
	return HostConfig{
		APIBaseURL:   DefaultHostAPIBaseURL,
		DocumentsDir: DefaultHostDocumentsDir,
		DocumentFile: DefaultHostDocumentFile,
		PerPage:      DefaultHostPerPage,
		MaxPages:     DefaultHostMaxPages,
	}
}

// BaseURL returns APIBaseURL without a trailing slash.
func (h HostConfig) BaseURL() string {
	return strings.TrimRight(h.APIBaseURL, "/")
}

// RenameConfig maps a document's current path to the paths it was previously known by.
// Alias order is significant: content reconstruction tries aliases in this order.
type RenameConfig map[string][]string
