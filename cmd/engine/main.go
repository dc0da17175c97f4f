// Command engine speaks the line protocol on stdin and stdout. Logs go to
// stderr.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"chazz/app"
	"chazz/app/config"
	"chazz/engine"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger := app.NewLogger(cfg.Logs, os.Stderr)

	ec, err := cfg.EngineConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("engine config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := app.NewDriver(engine.New(ec, engine.WithLogger(logger)), logger)
	if err := d.Run(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		logger.Fatal().Err(err).Msg("driver stopped")
	}
}
