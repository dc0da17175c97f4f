// Package engine picks a move for a chess position with a depth-limited
// alpha-beta search over a weighted static evaluation.
package engine

import (
	"context"
	"time"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"chazz/rules"
)

// pollInterval is how many nodes pass between context checks.
const pollInterval = 1024

// Result is the outcome of one BestMove call. Move is nil when the side to move
// has no legal moves.
type Result struct {
	Move      *chess.Move
	Score     int
	Depth     int
	Nodes     int64
	Elapsed   time.Duration
	MateInOne bool
}

// UCI returns the move in UCI notation, or "" when there is none.
func (r Result) UCI() string { return rules.MoveString(r.Move) }

// Engine holds immutable configuration; one Engine can serve concurrent calls.
type Engine struct {
	cfg   Config
	eval  *Evaluator
	order *MoveOrderer
	log   zerolog.Logger
}

type Option func(*Engine)

// WithLogger makes the engine log one debug line per search.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log.With().Str("component", "engine").Logger() }
}

func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:   cfg,
		eval:  NewEvaluator(cfg.Weights),
		order: NewMoveOrderer(cfg.Ordering, cfg.Weights),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Evaluator() *Evaluator { return e.eval }

// BestMove searches pos with an empty repetition history.
func (e *Engine) BestMove(ctx context.Context, pos *rules.Position) (Result, error) {
	return e.BestMoveFrom(ctx, pos, nil)
}

// BestMoveFrom searches pos with the repetition table seeded from history, the
// hashes of positions already reached in the game (pos included). It returns
// ctx.Err() if ctx ends mid-search.
func (e *Engine) BestMoveFrom(ctx context.Context, pos *rules.Position, history []uint64) (Result, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return Result{Elapsed: time.Since(start)}, nil
	}

	for _, m := range moves {
		if m.HasTag(chess.Check) && pos.Apply(m).Status() == rules.Checkmate {
			res := Result{Move: m, Score: e.cfg.Weights.MateScore, Depth: 1, MateInOne: true, Elapsed: time.Since(start)}
			e.logResult(pos, res)
			return res, nil
		}
	}

	depth := e.cfg.Depth.TargetDepth(pos)
	s := &searcher{
		ctx:          ctx,
		eng:          e,
		table:        NewRepetitionTable(history...),
		initialDepth: depth,
	}

	res := Result{Score: -Inf, Depth: depth}
	for _, m := range e.order.Order(pos, moves) {
		score := s.search(pos.Apply(m), depth-1, -Inf, Inf, false)
		if s.aborted {
			return Result{}, ctx.Err()
		}
		if res.Move == nil || score > res.Score {
			res.Move = m
			res.Score = score
		}
	}
	res.Nodes = s.nodes
	res.Elapsed = time.Since(start)
	e.logResult(pos, res)
	return res, nil
}

func (e *Engine) logResult(pos *rules.Position, res Result) {
	e.log.Debug().
		Str("fen", pos.FEN()).
		Str("move", res.UCI()).
		Int("score", res.Score).
		Int("depth", res.Depth).
		Int64("nodes", res.Nodes).
		Bool("mate_in_one", res.MateInOne).
		Dur("elapsed", res.Elapsed).
		Msg("search complete")
}

// searcher is the per-call state of one BestMove.
type searcher struct {
	ctx          context.Context
	eng          *Engine
	table        *RepetitionTable
	initialDepth int
	nodes        int64
	aborted      bool
}

// search returns the minimax value of pos from the point of view of the side
// that moves when maximizing is true.
func (s *searcher) search(pos *rules.Position, depth, alpha, beta int, maximizing bool) int {
	if s.aborted {
		return 0
	}
	s.nodes++
	if s.nodes%pollInterval == 0 && s.ctx.Err() != nil {
		s.aborted = true
		return 0
	}

	if depth <= 0 || pos.Terminal() {
		return s.leaf(pos, maximizing)
	}

	rep := s.eng.cfg.Repetition
	hash := pos.Hash()
	if rep.DrawCount > 0 && s.table.Count(hash) >= rep.DrawCount {
		return s.repeated(pos, depth, maximizing)
	}

	prev := s.table.enter(hash)
	defer s.table.exit(hash, prev)

	moves := s.eng.order.Order(pos, pos.LegalMoves())
	if maximizing {
		best := -Inf
		for _, m := range moves {
			v := s.search(pos.Apply(m), depth-1, alpha, beta, false)
			if v > best {
				best = v
			}
			if best > alpha {
				alpha = best
			}
			if beta <= alpha || s.aborted {
				break
			}
		}
		return best
	}

	best := Inf
	for _, m := range moves {
		v := s.search(pos.Apply(m), depth-1, alpha, beta, true)
		if v < best {
			best = v
		}
		if best < beta {
			beta = best
		}
		if beta <= alpha || s.aborted {
			break
		}
	}
	return best
}

func (s *searcher) leaf(pos *rules.Position, maximizing bool) int {
	v := s.eng.eval.Evaluate(pos)
	if maximizing {
		return v
	}
	return -v
}

// repeated scores a position already seen DrawCount times on the path. Near
// the root it is not a flat draw when the maximizing side holds an edge:
// Evaluate is from the mover's view, so at a minimizing node that edge shows
// as a score below -EdgeThreshold.
func (s *searcher) repeated(pos *rules.Position, depth int, maximizing bool) int {
	rep := s.eng.cfg.Repetition
	if rep.Penalty == 0 || depth < s.initialDepth-rep.AvoidPlies {
		return 0
	}
	eval := s.eng.eval.Evaluate(pos)
	switch {
	case maximizing && eval > rep.EdgeThreshold:
		return -rep.Penalty
	case !maximizing && eval < -rep.EdgeThreshold:
		return rep.Penalty
	}
	return 0
}
