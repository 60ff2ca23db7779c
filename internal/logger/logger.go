package logger

import (
	"github.com/aleister1102/revtrail/internal/config"
	"github.com/rs/zerolog"
)

// New creates the application logger from the log_config section
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	return NewLoggerBuilder().WithConfig(cfg).Build()
}
