package config

import (
	"time"

	"github.com/aleister1102/revtrail/internal/common"
)

// HTTPClientConfig defines configuration for the outbound HTTP client
type HTTPClientConfig struct {
	TimeoutSecs  int         `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"omitempty,min=1,max=600"`
	UserAgent    string      `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	EnableHTTP2  bool        `json:"enable_http2" yaml:"enable_http2"`
	MaxContentMB int         `json:"max_content_mb,omitempty" yaml:"max_content_mb,omitempty" validate:"omitempty,min=1,max=1024"`
	Retry        RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// RetryConfig defines configuration for HTTP request retries
type RetryConfig struct {
	// Maximum number of retry attempts; 0 disables retries
	MaxRetries int `json:"max_retries" yaml:"max_retries" validate:"min=0,max=10"`
	// Base delay in milliseconds for exponential backoff
	BaseDelayMs int `json:"base_delay_ms,omitempty" yaml:"base_delay_ms,omitempty" validate:"omitempty,min=1,max=300000"`
	// Maximum delay in milliseconds for exponential backoff
	MaxDelayMs int `json:"max_delay_ms,omitempty" yaml:"max_delay_ms,omitempty" validate:"omitempty,min=1,max=3600000"`
	// Enable jitter to randomize delays slightly
	EnableJitter bool `json:"enable_jitter" yaml:"enable_jitter"`
	// HTTP status codes that should trigger retries
	RetryStatusCodes []int `json:"retry_status_codes,omitempty" yaml:"retry_status_codes,omitempty" validate:"dive,min=400,max=599"`
}

// NewDefaultHTTPClientConfig creates default HTTP client configuration
func NewDefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		TimeoutSecs:  DefaultHTTPTimeoutSecs,
		UserAgent:    DefaultHTTPUserAgent,
		EnableHTTP2:  true,
		MaxContentMB: DefaultHTTPMaxContentMB,
		Retry:        NewDefaultRetryConfig(),
	}
}

// NewDefaultRetryConfig creates default retry configuration
func NewDefaultRetryConfig() RetryConfig {
	codes := make([]int, len(DefaultRetryStatusCodes))
	copy(codes, DefaultRetryStatusCodes)
	return RetryConfig{
		MaxRetries:       DefaultRetryMaxRetries,
		BaseDelayMs:      DefaultRetryBaseDelayMs,
		MaxDelayMs:       DefaultRetryMaxDelayMs,
		EnableJitter:     DefaultRetryEnableJitter,
		RetryStatusCodes: codes,
	}
}

// ToClientConfig converts the file configuration into the common.HTTPClientConfig used at runtime
func (c HTTPClientConfig) ToClientConfig() common.HTTPClientConfig {
	clientCfg := common.DefaultHTTPClientConfig()
	if c.TimeoutSecs > 0 {
		clientCfg.Timeout = time.Duration(c.TimeoutSecs) * time.Second
	}
	if c.UserAgent != "" {
		clientCfg.UserAgent = c.UserAgent
	}
	if c.MaxContentMB > 0 {
		clientCfg.MaxContentSize = c.MaxContentMB * 1024 * 1024
	}
	clientCfg.EnableHTTP2 = c.EnableHTTP2

	if c.Retry.MaxRetries > 0 {
		clientCfg.Retry = &common.RetryHandlerConfig{
			MaxRetries:       c.Retry.MaxRetries,
			BaseDelay:        time.Duration(c.Retry.BaseDelayMs) * time.Millisecond,
			MaxDelay:         time.Duration(c.Retry.MaxDelayMs) * time.Millisecond,
			EnableJitter:     c.Retry.EnableJitter,
			RetryStatusCodes: c.Retry.RetryStatusCodes,
		}
	}
	return clientCfg
}
