package engine

import (
	"testing"

	"chazz/rules"
)

const (
	knightForkFEN = "4k3/8/8/3q4/8/2N5/8/4K3 w - - 0 1"
	backRankFEN   = "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1"
	foolsMateFEN  = "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"
	stalemateFEN  = "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"
	queenUpFEN    = "4k3/8/8/8/8/8/8/Q3K3 w - - 0 1"
	queenDownFEN  = "q3k3/8/8/8/8/8/8/4K3 w - - 0 1"
)

func mustParse(t *testing.T, fen string) *rules.Position {
	t.Helper()
	p, err := rules.Parse(fen)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", fen, err)
	}
	return p
}

func mustNull(t *testing.T, p *rules.Position) *rules.Position {
	t.Helper()
	q, err := p.NullMove()
	if err != nil {
		t.Fatalf("NullMove(%q) error: %v", p.FEN(), err)
	}
	return q
}
