package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"chazz/app/models"
	"chazz/engine"
	"chazz/rules"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameOver     = errors.New("game is over")
)

// EngineFactory builds an engine for a preset name; "" selects the default.
type EngineFactory func(preset string) (*engine.Engine, error)

// Game is one session against the engine. The notnil game adjudicates
// fivefold repetition, the seventy-five-move rule and insufficient material.
type Game struct {
	mu        sync.Mutex
	id        string
	preset    string
	eng       *engine.Engine
	game      *chess.Game
	lastReply string
	created   time.Time
	updated   time.Time
}

type GameManager struct {
	mu      sync.RWMutex
	games   map[string]*Game
	engines EngineFactory
}

func NewGameManager(engines EngineFactory) *GameManager {
	return &GameManager{games: make(map[string]*Game), engines: engines}
}

// NewGame starts a session from fen, or from the initial position when fen is empty.
func (m *GameManager) NewGame(fen, preset string) (models.GameState, error) {
	eng, err := m.engines(preset)
	if err != nil {
		return models.GameState{}, err
	}

	var opts []func(*chess.Game)
	if fen != "" {
		// Validate through the rules adapter so callers get a *rules.ParseError.
		pos, err := rules.Parse(fen)
		if err != nil {
			return models.GameState{}, err
		}
		opt, err := chess.FEN(pos.FEN())
		if err != nil {
			return models.GameState{}, &rules.ParseError{Input: fen, Err: err}
		}
		opts = append(opts, opt)
	}

	now := time.Now()
	g := &Game{
		id:      uuid.NewString(),
		preset:  eng.Config().Name,
		eng:     eng,
		game:    chess.NewGame(opts...),
		created: now,
		updated: now,
	}

	m.mu.Lock()
	m.games[g.id] = g
	m.mu.Unlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state(), nil
}

func (m *GameManager) get(id string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return g, nil
}

func (m *GameManager) Get(id string) (models.GameState, error) {
	g, err := m.get(id)
	if err != nil {
		return models.GameState{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state(), nil
}

// Play applies the human move, then the engine's reply unless the game ended.
// If the reply fails the human move stays played; Reply can retry it.
func (m *GameManager) Play(ctx context.Context, id, uci string) (models.GameState, error) {
	g, err := m.get(id)
	if err != nil {
		return models.GameState{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.game.Outcome() != chess.NoOutcome {
		return models.GameState{}, ErrGameOver
	}
	pos := rules.FromChess(g.game.Position())
	mv, err := pos.FindMove(uci)
	if err != nil {
		return models.GameState{}, err
	}
	if err := g.game.Move(mv); err != nil {
		return models.GameState{}, fmt.Errorf("%w: %v", rules.ErrIllegalMove, err)
	}
	g.lastReply = ""
	g.updated = time.Now()

	if g.game.Outcome() == chess.NoOutcome {
		if err := g.reply(ctx); err != nil {
			return models.GameState{}, err
		}
	}
	return g.state(), nil
}

// Reply asks the engine to move for the side to move, used when the engine
// plays first.
func (m *GameManager) Reply(ctx context.Context, id string) (models.GameState, error) {
	g, err := m.get(id)
	if err != nil {
		return models.GameState{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.game.Outcome() != chess.NoOutcome {
		return models.GameState{}, ErrGameOver
	}
	if err := g.reply(ctx); err != nil {
		return models.GameState{}, err
	}
	return g.state(), nil
}

// Len is the number of live sessions.
func (m *GameManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// Sweep drops sessions idle since before cutoff and returns how many it
// dropped. A session busy with a move is in use and is kept.
func (m *GameManager) Sweep(cutoff time.Time) int {
	m.mu.RLock()
	var stale []string
	for id, g := range m.games {
		if !g.mu.TryLock() {
			continue
		}
		if g.updated.Before(cutoff) {
			stale = append(stale, id)
		}
		g.mu.Unlock()
	}
	m.mu.RUnlock()

	if len(stale) == 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range stale {
		delete(m.games, id)
	}
	return len(stale)
}

// RunJanitor sweeps sessions idle for longer than ttl every interval until
// ctx is done.
func (m *GameManager) RunJanitor(ctx context.Context, ttl, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.Sweep(now.Add(-ttl)); n > 0 {
				log.Info().Int("expired", n).Int("live", m.Len()).Msg("swept idle games")
			}
		}
	}
}

func (g *Game) reply(ctx context.Context) error {
	positions := g.game.Positions()
	history := make([]uint64, 0, len(positions))
	for _, p := range positions {
		history = append(history, rules.FromChess(p).Hash())
	}

	pos := rules.FromChess(g.game.Position())
	res, err := g.eng.BestMoveFrom(ctx, pos, history)
	if err != nil {
		return err
	}
	if res.Move == nil {
		return nil
	}
	if err := g.game.Move(res.Move); err != nil {
		return fmt.Errorf("engine move %s: %w", res.UCI(), err)
	}
	g.lastReply = res.UCI()
	g.updated = time.Now()
	return nil
}

func (g *Game) state() models.GameState {
	pos := rules.FromChess(g.game.Position())
	moves := g.game.Moves()
	played := make([]string, 0, len(moves))
	for _, mv := range moves {
		played = append(played, rules.MoveString(mv))
	}
	legal := []string{}
	if g.game.Outcome() == chess.NoOutcome {
		for _, mv := range pos.LegalMoves() {
			legal = append(legal, rules.MoveString(mv))
		}
	}

	st := models.GameState{
		ID:         g.id,
		FEN:        pos.FEN(),
		SideToMove: sideName(pos.Turn()),
		Status:     pos.Status().String(),
		Outcome:    string(g.game.Outcome()),
		Moves:      played,
		LegalMoves: legal,
		EngineMove: g.lastReply,
		Preset:     g.preset,
		CreatedAt:  g.created,
		UpdatedAt:  g.updated,
	}
	if g.game.Method() != chess.NoMethod {
		st.Method = g.game.Method().String()
	}
	return st
}
