package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleister1102/revtrail/internal/common"
	"github.com/aleister1102/revtrail/internal/config"
	"github.com/aleister1102/revtrail/internal/logger"
	"github.com/aleister1102/revtrail/internal/writing"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	flags, err := ParseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		return 2
	}

	bootstrap := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile, bootstrap)
	if err != nil {
		bootstrap.Error().Err(err).Str("path", flags.GlobalConfigFile).Msg("Could not load global config")
		return 1
	}

	if flags.Mode != "" {
		gCfg.Mode = flags.Mode
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		bootstrap.Error().Err(err).Msg("Could not initialize logger")
		return 1
	}
	zLogger = zLogger.With().Str("run_id", uuid.NewString()).Logger()

	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Error().Err(err).Msg("Configuration validation failed")
		return 1
	}
	zLogger.Debug().Str("mode", gCfg.Mode).Msg("Configuration validated")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(gCfg, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Failed to initialize application")
		return 1
	}
	defer app.close()

	if err := app.run(ctx, flags, os.Stdout); err != nil {
		if writing.IsNotFound(err) {
			zLogger.Error().Str("slug", flags.Slug).Msg("Writing not found")
			return 1
		}
		if common.IsContextError(err) {
			zLogger.Warn().Msg("Interrupted")
			return 130
		}
		zLogger.Error().Err(err).Str("mode", gCfg.Mode).Msg("Run failed")
		return 1
	}
	return 0
}
