// Command etl ingests JMA landslide-risk record files into a grid store.
//
// Directories to read are given as arguments, in chronological order; with no
// arguments they are read whitespace-separated from stdin. By default the
// command drains the directories once and exits; with WATCH=true it keeps
// polling for newly published files.
package main

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mizulab/dosha-risk-etl/internal/adapter/filescan"
	"github.com/mizulab/dosha-risk-etl/internal/adapter/gridstore"
	"github.com/mizulab/dosha-risk-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/mizulab/dosha-risk-etl/internal/adapter/kafka"
	"github.com/mizulab/dosha-risk-etl/internal/config"
	"github.com/mizulab/dosha-risk-etl/internal/observability"
	"github.com/mizulab/dosha-risk-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	dirs := os.Args[1:]
	if len(dirs) == 0 {
		dirs = readDirsFromStdin()
	}
	if len(dirs) == 0 {
		logger.Error("no input directories given")
		os.Exit(1)
	}

	scanner := filescan.New(dirs, config.FileNamePrefix, logger)
	transformer := pipeline.NewTransformer(config.ExpectedRows, config.ExpectedCols, logger)

	store, err := gridstore.Create(cfg.StorePath, logger, metrics)
	if err != nil {
		logger.Error("failed to create grid store", "error", err, "path", cfg.StorePath)
		os.Exit(1)
	}

	// Notifications are feature-flagged via KAFKA_ENABLED.
	var notifier pipeline.Notifier
	var notifierCloser *kafkaadapter.Notifier
	if cfg.KafkaEnabled {
		notifierCloser = kafkaadapter.NewNotifier(cfg, logger)
		notifier = notifierCloser
		metrics.NotifyEnabled.Set(1)
		logger.Info("kafka notifications enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka notifications disabled")
	}

	p := pipeline.New(scanner, transformer, store, notifier, logger, metrics, pipeline.Options{
		BatchSize:    cfg.BatchSize,
		Watch:        cfg.Watch,
		PollInterval: cfg.PollInterval,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the ingest pipeline. In one-shot mode Run returns once the
	// directories are drained, which triggers the shutdown path below.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
		stop()
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("grid store close error", "error", err)
	}
	if notifierCloser != nil {
		if err := notifierCloser.Close(); err != nil {
			logger.Error("kafka notifier close error", "error", err)
		}
	}

	logger.Info("shutdown complete", "records_stored", store.Count())
}

// readDirsFromStdin reads whitespace-separated directory names, so the
// command can sit at the end of a shell pipeline.
func readDirsFromStdin() []string {
	var dirs []string
	sc := bufio.NewScanner(os.Stdin)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		dirs = append(dirs, sc.Text())
	}
	return dirs
}
