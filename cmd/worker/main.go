package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"chazz/app"
	"chazz/app/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger := app.NewLogger(cfg.Logs, nil)

	if cfg.QueueURL == "" {
		logger.Fatal().Msg("QUEUE_URL environment variable is required")
	}
	if !cfg.DB.Enabled() {
		logger.Fatal().Msg("POSTGRES_URL environment variable is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := app.MustInitDB(ctx, cfg.DB, logger)
	defer store.Close()

	client, err := app.NewSQSClient(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("SQS client")
	}

	proc := app.NewBatchProcessor(cfg, store, logger)
	w := app.NewWorker(client, cfg.QueueURL, proc, logger)
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal().Err(err).Msg("worker stopped")
	}
	logger.Info().Msg("worker shut down")
}
