// Command arena plays two engines against each other and prints the score
// table. An engine given as a binary path runs as a subprocess speaking the
// line protocol; an empty path plays in-process. The preset "first" plays the
// first legal move every turn, as a baseline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"chazz/app"
	"chazz/app/config"
	"chazz/engine"
)

func main() {
	var (
		pathA   = flag.String("a", "", "engine binary for player A (empty plays in-process)")
		pathB   = flag.String("b", "", "engine binary for player B (empty plays in-process)")
		presetA = flag.String("preset-a", "full", "preset for player A, or \"first\" for the baseline")
		presetB = flag.String("preset-b", "material", "preset for player B, or \"first\" for the baseline")
		depth   = flag.Int("depth", 0, "search depth override, 0 keeps each preset's policy")
		games   = flag.Int("games", 2, "number of games, colors alternate")
		fen     = flag.String("fen", "", "start position (default: initial position)")
		timeout = flag.Duration("movetime", 30*time.Second, "time allowed per move")
		plies   = flag.Int("maxplies", 400, "adjudicate a draw after this many plies, 0 for no limit")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger := app.NewLogger(cfg.Logs, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := entrant("A", *pathA, *presetA, *depth)
	if err != nil {
		logger.Fatal().Err(err).Msg("player A")
	}
	b, err := entrant("B", *pathB, *presetB, *depth)
	if err != nil {
		logger.Fatal().Err(err).Msg("player B")
	}

	arena := app.NewArena(*timeout, *plies, logger)
	st, err := arena.Match(ctx, a, b, *fen, *games)
	if err != nil {
		logger.Error().Err(err).Msg("match stopped early")
	}
	if err := st.Print(os.Stdout); err != nil {
		logger.Fatal().Err(err).Msg("print standings")
	}
}

func entrant(label, path, preset string, depth int) (app.Entrant, error) {
	if preset == app.BaselinePreset {
		if path != "" {
			return app.Entrant{}, fmt.Errorf("player %s: the %q baseline plays in-process, drop the binary path", label, preset)
		}
		return app.Entrant{Name: label + ":" + preset, Start: func(context.Context) (app.PlayerProcess, error) {
			return app.FirstMovePlayer{}, nil
		}}, nil
	}

	ec, err := engine.PresetByName(preset)
	if err != nil {
		return app.Entrant{}, err
	}
	ec = ec.WithDepth(depth)
	name := fmt.Sprintf("%s:%s", label, ec.Name)

	if path == "" {
		eng := engine.New(ec)
		return app.Entrant{Name: name, Start: func(context.Context) (app.PlayerProcess, error) {
			return app.EnginePlayer{Engine: eng}, nil
		}}, nil
	}

	env := []string{"ENGINE_PRESET=" + ec.Name, fmt.Sprintf("ENGINE_DEPTH=%d", depth)}
	return app.Entrant{Name: name, Start: func(ctx context.Context) (app.PlayerProcess, error) {
		p, err := app.NewEngineProcess(ctx, path, env...)
		if err != nil {
			return nil, err
		}
		return p, nil
	}}, nil
}
