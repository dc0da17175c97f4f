package engine

import (
	"sort"

	"github.com/notnil/chess"

	"chazz/rules"
)

// MoveOrderer sorts moves so that likely-best candidates are searched first.
// Ordering only affects how much of the tree is pruned.
type MoveOrderer struct {
	w      OrderWeights
	values Weights
}

func NewMoveOrderer(w OrderWeights, values Weights) *MoveOrderer {
	return &MoveOrderer{w: w, values: values}
}

// Order returns a new slice sorted by descending key. Moves with equal keys keep
// their generation order.
func (o *MoveOrderer) Order(pos *rules.Position, moves []*chess.Move) []*chess.Move {
	type keyed struct {
		m   *chess.Move
		key int
	}
	ks := make([]keyed, len(moves))
	for i, m := range moves {
		ks[i] = keyed{m: m, key: o.Key(pos, m)}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key > ks[j].key })

	out := make([]*chess.Move, len(ks))
	for i := range ks {
		out[i] = ks[i].m
	}
	return out
}

// Key scores a single move of pos. A mating move returns MateKey alone.
func (o *MoveOrderer) Key(pos *rules.Position, m *chess.Move) int {
	if o.w.MateKey != 0 && m.HasTag(chess.Check) && pos.Apply(m).Status() == rules.Checkmate {
		return o.w.MateKey
	}

	key := 0
	if m.HasTag(chess.Capture) {
		victim := pos.PieceAt(capturedSquare(m)).Type()
		attacker := pos.PieceAt(m.S1()).Type()
		key += o.values.PieceValue(victim)*o.w.VictimScale - o.values.PieceValue(attacker)*o.w.AttackerScale
	}
	if m.Promo() != chess.NoPieceType {
		key += o.w.PromotionBonus + o.values.PieceValue(m.Promo())*o.w.PromotionScale
	}
	if m.HasTag(chess.Check) {
		key += o.w.CheckBonus
	}
	if rules.IsCenter(m.S2()) {
		key += o.w.CenterBonus
	}
	return key
}
