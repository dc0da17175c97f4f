// Package rules adapts github.com/notnil/chess to the small, read-only surface the
// search engine needs: queries, legal moves, pure move application and a stable
// 64-bit position hash.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// Status is the game state of a position from the point of view of the rules.
type Status int

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
)

func (s Status) String() string {
	switch s {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	default:
		return "ongoing"
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ErrIllegalMove is returned when a move string does not name a legal move.
var ErrIllegalMove = errors.New("illegal move")

// ParseError reports a malformed board description.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse position %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// CenterSquares are d4, d5, e4 and e5.
var CenterSquares = [4]chess.Square{chess.D4, chess.D5, chess.E4, chess.E5}

// IsCenter reports whether sq is one of the four central squares.
func IsCenter(sq chess.Square) bool {
	for _, c := range CenterSquares {
		if c == sq {
			return true
		}
	}
	return false
}

// Position is an immutable chess position. Children are derived with Apply;
// the receiver is never modified.
type Position struct {
	pos     *chess.Position
	hash    uint64
	inCheck bool
}

func wrap(pos *chess.Position, inCheck bool) *Position {
	p := &Position{pos: pos, inCheck: inCheck}
	p.hash = zobrist.hash(p)
	return p
}

// StartingPosition returns the standard initial position.
func StartingPosition() *Position {
	return wrap(chess.StartingPosition(), false)
}

// Parse reads a position from FEN. The move counters may be omitted.
func Parse(fen string) (*Position, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return nil, &ParseError{Input: fen, Err: errors.New("empty description")}
	}
	if fields := strings.Fields(fen); len(fields) == 4 {
		fen = strings.Join(append(fields, "0", "1"), " ")
	}
	cp, err := decodeFEN(fen)
	if err != nil {
		return nil, &ParseError{Input: fen, Err: err}
	}
	return FromChess(cp), nil
}

// FromChess wraps a library position, for callers that keep a chess.Game.
func FromChess(cp *chess.Position) *Position {
	p := wrap(cp, false)
	p.inCheck = p.kingAttacked()
	return p
}

func decodeFEN(fen string) (*chess.Position, error) {
	cp := &chess.Position{}
	if err := cp.UnmarshalText([]byte(fen)); err != nil {
		return nil, err
	}
	return cp, nil
}

// Chess exposes the wrapped library position.
func (p *Position) Chess() *chess.Position { return p.pos }

func (p *Position) FEN() string { return p.pos.String() }

func (p *Position) String() string { return p.FEN() }

func (p *Position) Turn() chess.Color { return p.pos.Turn() }

func (p *Position) Hash() uint64 { return p.hash }

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool { return p.inCheck }

func (p *Position) PieceAt(sq chess.Square) chess.Piece {
	return p.pos.Board().Piece(sq)
}

// ColorAt returns the owner of the piece on sq, or chess.NoColor.
func (p *Position) ColorAt(sq chess.Square) chess.Color {
	return p.PieceAt(sq).Color()
}

func (p *Position) Status() Status {
	switch p.pos.Status() {
	case chess.Checkmate:
		return Checkmate
	case chess.Stalemate:
		return Stalemate
	default:
		return Ongoing
	}
}

// Terminal reports checkmate or stalemate.
func (p *Position) Terminal() bool { return p.Status() != Ongoing }

// PieceCount counts occupied squares.
func (p *Position) PieceCount() int {
	n := 0
	for sq := chess.A1; sq <= chess.H8; sq++ {
		if p.PieceAt(sq) != chess.NoPiece {
			n++
		}
	}
	return n
}

// LegalMoves returns the legal moves in generation order. The slice is owned by
// the caller.
func (p *Position) LegalMoves() []*chess.Move {
	return p.pos.ValidMoves()
}

// Apply returns the position after m. m must come from LegalMoves.
func (p *Position) Apply(m *chess.Move) *Position {
	return FromChess(p.pos.Update(m))
}

// IsLegal reports whether the (from, to, promo) triple is a legal move here.
func (p *Position) IsLegal(from, to chess.Square, promo chess.PieceType) bool {
	for _, m := range p.LegalMoves() {
		if m.S1() == from && m.S2() == to && m.Promo() == promo {
			return true
		}
	}
	return false
}

// FindMove resolves a UCI move string ("e2e4", "e7e8q") against the legal moves.
func (p *Position) FindMove(uci string) (*chess.Move, error) {
	want := strings.ToLower(strings.TrimSpace(uci))
	for _, m := range p.LegalMoves() {
		if MoveString(m) == want {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrIllegalMove, uci)
}

// NullMove returns the same placement with the other side to move and the
// en-passant square cleared. It is a probe for the opponent's options, not a
// game move.
func (p *Position) NullMove() (*Position, error) {
	fields := strings.Fields(p.FEN())
	if len(fields) < 4 {
		return nil, &ParseError{Input: p.FEN(), Err: errors.New("short FEN")}
	}
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	fields[3] = "-"
	cp, err := decodeFEN(strings.Join(fields, " "))
	if err != nil {
		return nil, &ParseError{Input: p.FEN(), Err: err}
	}
	// A legal position never leaves the side that just moved in check.
	return wrap(cp, false), nil
}

// KingSquare returns the square of c's king, or chess.NoSquare.
func (p *Position) KingSquare(c chess.Color) chess.Square {
	for sq := chess.A1; sq <= chess.H8; sq++ {
		pc := p.PieceAt(sq)
		if pc.Type() == chess.King && pc.Color() == c {
			return sq
		}
	}
	return chess.NoSquare
}

func (p *Position) kingAttacked() bool {
	king := p.KingSquare(p.Turn())
	if king == chess.NoSquare {
		return false
	}
	return p.Attacked(king, p.Turn().Other())
}

// MoveString encodes m in UCI notation.
func MoveString(m *chess.Move) string {
	if m == nil {
		return ""
	}
	return chess.UCINotation{}.Encode(nil, m)
}
