package rules

import (
	"strings"

	"github.com/notnil/chess"
)

// Pieces are indexed by chess.Piece (1..12); index 0 stays unused.
type zobristTable struct {
	pieces    [13][64]uint64
	side      uint64
	castling  [4]uint64
	enPassant [8]uint64
}

var zobrist = newZobristTable(0x43484153535a5a41)

func newZobristTable(seed uint64) *zobristTable {
	rng := splitmix64{state: seed}
	z := &zobristTable{}
	for pc := 1; pc < len(z.pieces); pc++ {
		for sq := range z.pieces[pc] {
			z.pieces[pc][sq] = rng.next()
		}
	}
	z.side = rng.next()
	for i := range z.castling {
		z.castling[i] = rng.next()
	}
	for i := range z.enPassant {
		z.enPassant[i] = rng.next()
	}
	return z
}

// hash covers placement, side to move, castling rights and the en-passant file.
// Move counters are left out so repeated placements hash equal.
func (z *zobristTable) hash(p *Position) uint64 {
	var h uint64
	board := p.pos.Board()
	for sq := chess.A1; sq <= chess.H8; sq++ {
		pc := board.Piece(sq)
		if pc == chess.NoPiece {
			continue
		}
		h ^= z.pieces[pc][sq]
	}
	if p.pos.Turn() == chess.Black {
		h ^= z.side
	}
	rights := string(p.pos.CastleRights())
	for i, r := range "KQkq" {
		if strings.ContainsRune(rights, r) {
			h ^= z.castling[i]
		}
	}
	if ep := p.pos.EnPassantSquare(); ep != chess.NoSquare {
		h ^= z.enPassant[ep.File()]
	}
	return h
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
