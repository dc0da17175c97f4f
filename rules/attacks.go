package rules

import "github.com/notnil/chess"

type offset struct{ file, rank int }

var (
	knightJumps = []offset{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = []offset{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	straight    = []offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonal    = []offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// Attacked reports whether any piece of color by attacks sq. It looks at the
// board only, so pinned pieces still count as attackers.
func (p *Position) Attacked(sq chess.Square, by chess.Color) bool {
	f, r := int(sq.File()), int(sq.Rank())

	for _, o := range knightJumps {
		if p.pieceIs(f+o.file, r+o.rank, by, chess.Knight) {
			return true
		}
	}
	for _, o := range kingSteps {
		if p.pieceIs(f+o.file, r+o.rank, by, chess.King) {
			return true
		}
	}
	// A white pawn attacks upward, so it sits one rank below its target.
	pawnRank := r - 1
	if by == chess.Black {
		pawnRank = r + 1
	}
	if p.pieceIs(f-1, pawnRank, by, chess.Pawn) || p.pieceIs(f+1, pawnRank, by, chess.Pawn) {
		return true
	}
	return p.slider(f, r, straight, by, chess.Rook) || p.slider(f, r, diagonal, by, chess.Bishop)
}

func (p *Position) slider(f, r int, dirs []offset, by chess.Color, kind chess.PieceType) bool {
	for _, d := range dirs {
		for cf, cr := f+d.file, r+d.rank; onBoard(cf, cr); cf, cr = cf+d.file, cr+d.rank {
			pc := p.PieceAt(square(cf, cr))
			if pc == chess.NoPiece {
				continue
			}
			if pc.Color() == by && (pc.Type() == kind || pc.Type() == chess.Queen) {
				return true
			}
			break
		}
	}
	return false
}

func (p *Position) pieceIs(f, r int, c chess.Color, kind chess.PieceType) bool {
	if !onBoard(f, r) {
		return false
	}
	pc := p.PieceAt(square(f, r))
	return pc.Color() == c && pc.Type() == kind
}

func onBoard(f, r int) bool { return f >= 0 && f < 8 && r >= 0 && r < 8 }

func square(f, r int) chess.Square { return chess.Square(r*8 + f) }
