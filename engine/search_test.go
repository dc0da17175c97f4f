package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/notnil/chess"

	"chazz/rules"
)

// minimax is an unpruned reference search using the same evaluation and sign
// convention as searcher.search.
func minimax(e *Engine, pos *rules.Position, depth int, maximizing bool) int {
	if depth <= 0 || pos.Terminal() {
		v := e.eval.Evaluate(pos)
		if maximizing {
			return v
		}
		return -v
	}
	if maximizing {
		best := -Inf
		for _, m := range pos.LegalMoves() {
			if v := minimax(e, pos.Apply(m), depth-1, false); v > best {
				best = v
			}
		}
		return best
	}
	best := Inf
	for _, m := range pos.LegalMoves() {
		if v := minimax(e, pos.Apply(m), depth-1, true); v < best {
			best = v
		}
	}
	return best
}

func oracleBestMove(e *Engine, pos *rules.Position, depth int) (*chess.Move, int) {
	var best *chess.Move
	bestScore := -Inf
	for _, m := range e.order.Order(pos, pos.LegalMoves()) {
		score := minimax(e, pos.Apply(m), depth-1, false)
		if best == nil || score > bestScore {
			best, bestScore = m, score
		}
	}
	return best, bestScore
}

func TestSearchMatchesMinimax(t *testing.T) {
	fens := []string{
		knightForkFEN,
		"r3k3/1p6/8/8/8/8/1P6/R3K3 w Qq - 0 1",
		"8/2k5/3p4/8/4P3/2K5/8/8 b - - 0 1",
		"6k1/5pp1/7p/8/8/7P/5PP1/3R2K1 w - - 0 1",
	}
	for _, fen := range fens {
		for depth := 1; depth <= 3; depth++ {
			e := New(Material().WithDepth(depth))
			pos := mustParse(t, fen)
			res, err := e.BestMove(context.Background(), pos)
			if err != nil {
				t.Fatalf("%s depth %d: BestMove error: %v", fen, depth, err)
			}
			want, wantScore := oracleBestMove(e, pos, depth)
			if res.UCI() != rules.MoveString(want) || res.Score != wantScore {
				t.Fatalf("%s depth %d: got %s (%d), minimax %s (%d)",
					fen, depth, res.UCI(), res.Score, rules.MoveString(want), wantScore)
			}
		}
	}
}

func TestSearchMatchesMinimaxDepthFour(t *testing.T) {
	for _, fen := range []string{knightForkFEN, "8/2k5/3p4/8/4P3/2K5/8/8 b - - 0 1"} {
		e := New(Material().WithDepth(4))
		pos := mustParse(t, fen)
		res, err := e.BestMove(context.Background(), pos)
		if err != nil {
			t.Fatalf("%s: BestMove error: %v", fen, err)
		}
		want, wantScore := oracleBestMove(e, pos, 4)
		if res.UCI() != rules.MoveString(want) || res.Score != wantScore {
			t.Fatalf("%s depth 4: got %s (%d), minimax %s (%d)",
				fen, res.UCI(), res.Score, rules.MoveString(want), wantScore)
		}
	}
}

func TestSearchMatchesMinimaxFullWeights(t *testing.T) {
	for _, fen := range []string{knightForkFEN, "8/2k5/3p4/8/4P3/2K5/8/8 b - - 0 1"} {
		e := New(Full().WithDepth(2))
		pos := mustParse(t, fen)
		res, err := e.BestMove(context.Background(), pos)
		if err != nil {
			t.Fatalf("BestMove error: %v", err)
		}
		want, wantScore := oracleBestMove(e, pos, 2)
		if res.UCI() != rules.MoveString(want) || res.Score != wantScore {
			t.Fatalf("%s: got %s (%d), minimax %s (%d)", fen, res.UCI(), res.Score, rules.MoveString(want), wantScore)
		}
	}
}

func TestSearchDepthZeroIsEvaluation(t *testing.T) {
	e := New(Full())
	for _, fen := range []string{knightForkFEN, queenUpFEN, rules.StartingPosition().FEN()} {
		pos := mustParse(t, fen)
		s := &searcher{ctx: context.Background(), eng: e, table: NewRepetitionTable(), initialDepth: 1}
		want := e.eval.Evaluate(pos)
		if got := s.search(pos, 0, -Inf, Inf, true); got != want {
			t.Fatalf("%s: search(max) = %d, want %d", fen, got, want)
		}
		if got := s.search(pos, 0, -Inf, Inf, false); got != -want {
			t.Fatalf("%s: search(min) = %d, want %d", fen, got, -want)
		}
	}
}

func TestBestMoveMateInOne(t *testing.T) {
	e := New(Full())
	res, err := e.BestMove(context.Background(), mustParse(t, backRankFEN))
	if err != nil {
		t.Fatalf("BestMove error: %v", err)
	}
	if res.UCI() != "a1a8" || !res.MateInOne {
		t.Fatalf("BestMove = %s mate=%v, want a1a8 mate", res.UCI(), res.MateInOne)
	}
	if res.Nodes != 0 {
		t.Fatalf("mate in one searched %d nodes, want 0", res.Nodes)
	}
}

func TestBestMoveNoLegalMoves(t *testing.T) {
	e := New(Full())
	for _, fen := range []string{foolsMateFEN, stalemateFEN} {
		res, err := e.BestMove(context.Background(), mustParse(t, fen))
		if err != nil {
			t.Fatalf("%s: BestMove error: %v", fen, err)
		}
		if res.Move != nil || res.UCI() != "" {
			t.Fatalf("%s: BestMove = %s, want no move", fen, res.UCI())
		}
	}
}

func TestBestMoveFromStartIsLegal(t *testing.T) {
	for _, cfg := range []Config{Material(), Full().WithDepth(2)} {
		start := rules.StartingPosition()
		res, err := New(cfg).BestMove(context.Background(), start)
		if err != nil {
			t.Fatalf("%s: BestMove error: %v", cfg.Name, err)
		}
		if res.Move == nil {
			t.Fatalf("%s: BestMove returned no move", cfg.Name)
		}
		if !start.IsLegal(res.Move.S1(), res.Move.S2(), res.Move.Promo()) {
			t.Fatalf("%s: BestMove %s is not legal", cfg.Name, res.UCI())
		}
		if res.Nodes == 0 {
			t.Fatalf("%s: expected a non-empty search", cfg.Name)
		}
	}
}

func TestBestMoveWinsHangingQueen(t *testing.T) {
	res, err := New(Material().WithDepth(2)).BestMove(context.Background(), mustParse(t, knightForkFEN))
	if err != nil {
		t.Fatalf("BestMove error: %v", err)
	}
	if res.UCI() != "c3d5" {
		t.Fatalf("BestMove = %s, want c3d5", res.UCI())
	}
}

func TestRepeatedPositionWithEdgeIsPenalised(t *testing.T) {
	e := New(Full())
	up := mustParse(t, queenUpFEN)
	down := mustParse(t, queenDownFEN)
	tests := []struct {
		name       string
		pos        *rules.Position
		seen       int
		depth      int
		maximizing bool
		want       int
	}{
		{"edge maximizing", up, 2, 2, true, -5000},
		{"maximizer edge at minimizing node", down, 2, 2, false, 5000},
		{"minimizer edge at minimizing node is a draw", up, 2, 2, false, 0},
		{"behind is a draw", down, 2, 2, true, 0},
		{"too deep is a draw", up, 2, 1, true, 0},
		{"too deep at minimizing node is a draw", down, 2, 1, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := make([]uint64, tt.seen)
			for i := range history {
				history[i] = tt.pos.Hash()
			}
			s := &searcher{ctx: context.Background(), eng: e, table: NewRepetitionTable(history...), initialDepth: 4}
			if got := s.search(tt.pos, tt.depth, -Inf, Inf, tt.maximizing); got != tt.want {
				t.Fatalf("search = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSeenOncePositionIsSearched(t *testing.T) {
	e := New(Full())
	up := mustParse(t, queenUpFEN)
	s := &searcher{ctx: context.Background(), eng: e, table: NewRepetitionTable(up.Hash()), initialDepth: 2}
	if got := s.search(up, 1, -Inf, Inf, true); got <= 100 {
		t.Fatalf("search = %d, want the queen edge", got)
	}
}

func TestMaterialPresetScoresRepetitionAsDraw(t *testing.T) {
	e := New(Material())
	up := mustParse(t, queenUpFEN)
	s := &searcher{ctx: context.Background(), eng: e, table: NewRepetitionTable(up.Hash(), up.Hash()), initialDepth: 3}
	if got := s.search(up, 2, -Inf, Inf, true); got != 0 {
		t.Fatalf("search = %d, want 0", got)
	}
}

func TestSearchRestoresRepetitionTable(t *testing.T) {
	e := New(Material())
	start := rules.StartingPosition()
	seed := []uint64{start.Hash(), 12345, 12345}
	s := &searcher{ctx: context.Background(), eng: e, table: NewRepetitionTable(seed...), initialDepth: 3}
	before := s.table.Snapshot()

	for _, m := range start.LegalMoves()[:4] {
		s.search(start.Apply(m), 2, -Inf, Inf, false)
		after := s.table.Snapshot()
		if len(after) != len(before) {
			t.Fatalf("table after %s = %v, want %v", rules.MoveString(m), after, before)
		}
		for h, n := range before {
			if after[h] != n {
				t.Fatalf("count[%x] after %s = %d, want %d", h, rules.MoveString(m), after[h], n)
			}
		}
	}
}

func TestSearchAbortsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := New(Material())
	s := &searcher{ctx: ctx, eng: e, table: NewRepetitionTable(), initialDepth: 5}
	s.search(rules.StartingPosition(), 5, -Inf, Inf, true)
	if !s.aborted {
		t.Fatalf("search should abort on a cancelled context")
	}
	if s.nodes > pollInterval {
		t.Fatalf("search visited %d nodes after cancellation", s.nodes)
	}
	if s.table.Len() != 0 {
		t.Fatalf("aborted search left %d table entries", s.table.Len())
	}
}

func TestBestMoveCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)
	_, err := New(Full()).BestMove(ctx, rules.StartingPosition())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("BestMove error = %v, want DeadlineExceeded", err)
	}
}
