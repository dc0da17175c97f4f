package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store app.JobStore = app.NewMemoryStore()
	if cfg.DB.Enabled() {
		pg := app.MustInitDB(ctx, cfg.DB, logger)
		defer pg.Close()
		store = pg
	} else {
		logger.Warn().Msg("POSTGRES_URL not set; keeping jobs in memory")
	}

	var queue app.Enqueuer
	if cfg.QueueURL != "" {
		client, err := app.NewSQSClient(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("SQS client")
		}
		queue = app.NewSQSQueue(client, cfg.QueueURL)
	} else {
		logger.Warn().Msg("QUEUE_URL not set; processing jobs in-process")
		inline := app.NewInlineQueue(app.NewBatchProcessor(cfg, store, logger), logger)
		defer inline.Wait()
		queue = inline
	}

	h := app.NewHandlers(cfg, store, queue, logger)
	go h.ExpireGames(ctx)
	router := app.NewRouter(h)
	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", cfg.HTTP.Addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
