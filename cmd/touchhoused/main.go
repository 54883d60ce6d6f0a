package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/touchhouse/touchhouse/internal/catalog"
	"github.com/touchhouse/touchhouse/internal/config"
	"github.com/touchhouse/touchhouse/internal/merge"
	"github.com/touchhouse/touchhouse/internal/protocol"
	"github.com/touchhouse/touchhouse/internal/recovery"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	bootstrapLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootstrapLogger.Fatal().Err(err).Msg("loading config")
	}
	if err := cfg.Validate(); err != nil {
		bootstrapLogger.Fatal().Err(err).Msg("invalid config")
	}

	root := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(levelFor(cfg.LogLevel))
	root.Info().Str("storage_directory", cfg.StorageDirectory).Str("tcp_socket", cfg.TCPSocket).Msg("starting touchhoused")

	recoveryLog := root.With().Str("component", "recovery").Logger()
	report, err := recovery.Run(cfg.StorageDirectory, recoveryLog)
	if err != nil {
		root.Fatal().Err(err).Msg("recovery sweep failed")
	}
	if len(report.RemovedTempDirs) > 0 || len(report.QuarantinedParts) > 0 {
		root.Warn().
			Int("removed_temp_dirs", len(report.RemovedTempDirs)).
			Int("quarantined_parts", len(report.QuarantinedParts)).
			Msg("recovery sweep found issues")
	}

	cat, err := catalog.Open(cfg.StorageDirectory)
	if err != nil {
		root.Fatal().Err(err).Msg("opening catalog")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		root.Info().Msg("shutting down")
		cancel()
	}()

	mergeLog := root.With().Str("component", "merge").Logger()
	worker := merge.NewWorker(cat, cfg.BackgroundMergeAvailableUnder, mergeLog)
	go worker.Run(ctx)

	protocolLog := root.With().Str("component", "protocol").Logger()
	srv := protocol.NewServer(cat, cfg.TCPSocket, protocolLog)
	if err := srv.Start(ctx); err != nil && ctx.Err() == nil {
		root.Fatal().Err(err).Msg("server error")
	}
}

func levelFor(l config.LogLevel) zerolog.Level {
	switch l {
	case config.LogLevelWarn:
		return zerolog.WarnLevel
	case config.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
