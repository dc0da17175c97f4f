package engine

import "chazz/rules"

// DepthPolicy picks the search depth from the number of pieces on the board.
// Fewer pieces means a narrower tree, so endgames are searched deeper.
type DepthPolicy struct {
	EndgamePieces    int
	EndgameDepth     int
	MiddlegamePieces int
	MiddlegameDepth  int
	OpeningDepth     int
	// Fixed overrides the bands when positive.
	Fixed int
}

// TargetDepth is always at least 1.
func (d DepthPolicy) TargetDepth(pos *rules.Position) int {
	depth := d.Fixed
	if depth <= 0 {
		n := pos.PieceCount()
		switch {
		case n < d.EndgamePieces:
			depth = d.EndgameDepth
		case n < d.MiddlegamePieces:
			depth = d.MiddlegameDepth
		default:
			depth = d.OpeningDepth
		}
	}
	if depth < 1 {
		depth = 1
	}
	return depth
}
