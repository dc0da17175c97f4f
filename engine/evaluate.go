package engine

import (
	"github.com/notnil/chess"

	"chazz/rules"
)

// Breakdown is the static evaluation split by term, relative to the side to move.
// Total is the sum of the terms, or the mate/stalemate score when Status is terminal.
type Breakdown struct {
	Status      rules.Status `json:"status"`
	Material    int          `json:"material"`
	Center      int          `json:"center"`
	Mobility    int          `json:"mobility"`
	Check       int          `json:"check"`
	Threats     int          `json:"threats"`
	KingSafety  int          `json:"king_safety"`
	PawnAdvance int          `json:"pawn_advance"`
	Total       int          `json:"total"`
}

// Evaluator scores positions with a fixed set of weights. It keeps no state
// between calls and is safe for concurrent use.
type Evaluator struct {
	w Weights
}

func NewEvaluator(w Weights) *Evaluator {
	return &Evaluator{w: w}
}

func (e *Evaluator) Weights() Weights { return e.w }

// Evaluate returns the score of pos for the side to move.
func (e *Evaluator) Evaluate(pos *rules.Position) int {
	return e.Breakdown(pos).Total
}

func (e *Evaluator) Breakdown(pos *rules.Position) Breakdown {
	b := Breakdown{Status: pos.Status()}
	switch b.Status {
	case rules.Checkmate:
		b.Total = -e.w.MateScore
		return b
	case rules.Stalemate:
		return b
	}

	mover := pos.Turn()
	for sq := chess.A1; sq <= chess.H8; sq++ {
		pc := pos.PieceAt(sq)
		if pc == chess.NoPiece {
			continue
		}
		sign := 1
		if pc.Color() != mover {
			sign = -1
		}
		if pc.Type() != chess.King {
			b.Material += sign * e.w.PieceValue(pc.Type()) * e.w.MaterialScale
		}
		if rules.IsCenter(sq) {
			b.Center += sign * e.w.CenterBonus
		}
		switch pc.Type() {
		case chess.King:
			if sq == homeSquare(pc.Color()) {
				b.KingSafety += sign * e.w.KingHomeBonus
			}
		case chess.Pawn:
			b.PawnAdvance += sign * pawnAdvance(pc.Color(), sq) * e.w.PawnAdvanceScale
		}
	}

	var moves []*chess.Move
	if e.w.MobilityMul != 0 || e.w.ThreatScale != 0 {
		moves = pos.LegalMoves()
	}
	if e.w.MobilityMul != 0 {
		div := e.w.MobilityDiv
		if div <= 0 {
			div = 1
		}
		b.Mobility = len(moves) * e.w.MobilityMul / div
	}
	if pos.InCheck() {
		b.Check = -e.w.CheckPenalty
	}
	if e.w.ThreatScale != 0 {
		b.Threats = e.threatened(pos, moves)
		if probe, err := pos.NullMove(); err == nil {
			b.Threats -= e.threatened(probe, probe.LegalMoves())
		}
	}

	b.Total = b.Material + b.Center + b.Mobility + b.Check + b.Threats + b.KingSafety + b.PawnAdvance
	return b
}

// threatened sums the value of every distinct non-king piece that one of
// moves captures, scaled by ThreatScale.
func (e *Evaluator) threatened(pos *rules.Position, moves []*chess.Move) int {
	var seen [64]bool
	total := 0
	for _, m := range moves {
		if !m.HasTag(chess.Capture) {
			continue
		}
		sq := capturedSquare(m)
		if seen[sq] {
			continue
		}
		seen[sq] = true
		if victim := pos.PieceAt(sq).Type(); victim != chess.King {
			total += e.w.PieceValue(victim) * e.w.ThreatScale
		}
	}
	return total
}

// capturedSquare is the square of the piece m removes. For en passant that is
// beside the destination, not on it.
func capturedSquare(m *chess.Move) chess.Square {
	if m.HasTag(chess.EnPassant) {
		return chess.Square(int(m.S1().Rank())*8 + int(m.S2().File()))
	}
	return m.S2()
}

func homeSquare(c chess.Color) chess.Square {
	if c == chess.White {
		return chess.E1
	}
	return chess.E8
}

func pawnAdvance(c chess.Color, sq chess.Square) int {
	if c == chess.White {
		return int(sq.Rank()) - int(chess.Rank2)
	}
	return int(chess.Rank7) - int(sq.Rank())
}
