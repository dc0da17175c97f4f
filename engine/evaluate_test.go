package engine

import (
	"testing"

	"chazz/rules"
)

func TestEvaluateInitialPositionIsBalanced(t *testing.T) {
	for _, cfg := range []Config{Material(), Centered()} {
		e := NewEvaluator(cfg.Weights)
		if got := e.Evaluate(rules.StartingPosition()); got != 0 {
			t.Fatalf("%s: Evaluate(start) = %d, want 0", cfg.Name, got)
		}
	}
}

func TestEvaluateTerminal(t *testing.T) {
	e := NewEvaluator(Full().Weights)
	if got := e.Evaluate(mustParse(t, foolsMateFEN)); got != -30000 {
		t.Fatalf("Evaluate(checkmate) = %d, want -30000", got)
	}
	b := e.Breakdown(mustParse(t, stalemateFEN))
	if b.Total != 0 || b.Material != 0 || b.Status != rules.Stalemate {
		t.Fatalf("Breakdown(stalemate) = %+v, want all zero", b)
	}
}

func TestBreakdownTerms(t *testing.T) {
	e := NewEvaluator(Full().Weights)
	tests := []struct {
		name  string
		fen   string
		check func(t *testing.T, b Breakdown)
	}{
		{"queen up", queenUpFEN, func(t *testing.T, b Breakdown) {
			if b.Material != 900 {
				t.Fatalf("Material = %d, want 900", b.Material)
			}
			if b.KingSafety != 0 {
				t.Fatalf("KingSafety = %d, want 0", b.KingSafety)
			}
		}},
		{"advanced pawn", "4k3/8/8/8/4P3/8/8/4K3 w - - 0 1", func(t *testing.T, b Breakdown) {
			if b.PawnAdvance != 10 {
				t.Fatalf("PawnAdvance = %d, want 10", b.PawnAdvance)
			}
			if b.Center != 20 {
				t.Fatalf("Center = %d, want 20", b.Center)
			}
		}},
		{"in check", "4k3/8/8/8/8/8/8/4R2K b - - 0 1", func(t *testing.T, b Breakdown) {
			if b.Check != -50 {
				t.Fatalf("Check = %d, want -50", b.Check)
			}
			if b.KingSafety != 10 {
				t.Fatalf("KingSafety = %d, want 10", b.KingSafety)
			}
		}},
		{"hanging queen", knightForkFEN, func(t *testing.T, b Breakdown) {
			if b.Threats != 90 {
				t.Fatalf("Threats = %d, want 90", b.Threats)
			}
			if b.Material != -600 {
				t.Fatalf("Material = %d, want -600", b.Material)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := e.Breakdown(mustParse(t, tt.fen))
			tt.check(t, b)
			sum := b.Material + b.Center + b.Mobility + b.Check + b.Threats + b.KingSafety + b.PawnAdvance
			if sum != b.Total {
				t.Fatalf("terms sum to %d, Total = %d", sum, b.Total)
			}
		})
	}
}

func TestEvaluateAntisymmetric(t *testing.T) {
	e := NewEvaluator(Full().Weights)
	fens := []string{
		rules.StartingPosition().FEN(),
		knightForkFEN,
		queenUpFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/3PP3/5N2/PPP2PPP/RNBQKB1R b KQkq - 0 3",
		"8/2k5/3p4/8/4P3/2K5/8/8 b - - 0 1",
	}
	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			p := mustParse(t, fen)
			a := e.Breakdown(p)
			b := e.Breakdown(mustNull(t, p))
			pairs := []struct {
				term     string
				got, neg int
			}{
				{"material", a.Material, b.Material},
				{"center", a.Center, b.Center},
				{"king safety", a.KingSafety, b.KingSafety},
				{"pawn advance", a.PawnAdvance, b.PawnAdvance},
				{"threats", a.Threats, b.Threats},
			}
			for _, pr := range pairs {
				if pr.got != -pr.neg {
					t.Fatalf("%s = %d for mover, %d after null move", pr.term, pr.got, pr.neg)
				}
			}
		})
	}
}

func TestMobilityScaling(t *testing.T) {
	start := rules.StartingPosition()
	if got := NewEvaluator(Mobility().Weights).Breakdown(start).Mobility; got != 2 {
		t.Fatalf("mobility preset Mobility = %d, want 2", got)
	}
	if got := NewEvaluator(Full().Weights).Breakdown(start).Mobility; got != 100 {
		t.Fatalf("full preset Mobility = %d, want 100", got)
	}
}
