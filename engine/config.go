package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/notnil/chess"
)

// ErrUnknownPreset is returned by PresetByName for names it does not know.
var ErrUnknownPreset = errors.New("unknown preset")

// Inf bounds every score the search can produce.
const Inf = 100000

// Weights holds every term of the static evaluation. PieceValues is indexed by
// chess.PieceType; the king entry is ignored by material and threat terms.
type Weights struct {
	PieceValues      [7]int
	MaterialScale    int
	MateScore        int
	CenterBonus      int
	MobilityMul      int
	MobilityDiv      int
	CheckPenalty     int
	ThreatScale      int
	KingHomeBonus    int
	PawnAdvanceScale int
}

// PieceValue returns the base value of t, 0 for NoPieceType. The king's value
// is a sentinel that only matters as a capturing piece in move ordering.
func (w Weights) PieceValue(t chess.PieceType) int {
	if t == chess.NoPieceType || int(t) >= len(w.PieceValues) {
		return 0
	}
	return w.PieceValues[t]
}

// OrderWeights are the move-ordering keys.
type OrderWeights struct {
	MateKey        int
	VictimScale    int
	AttackerScale  int
	PromotionBonus int
	PromotionScale int
	CheckBonus     int
	CenterBonus    int
}

// RepetitionConfig controls draw scoring for repeated positions.
type RepetitionConfig struct {
	// DrawCount is the number of earlier visits on the current path at which a
	// position counts as repeated. Zero disables repetition scoring.
	DrawCount int
	// AvoidPlies is how far below the root a repetition is still penalised.
	AvoidPlies    int
	EdgeThreshold int
	Penalty       int
}

// Config is a complete engine configuration.
type Config struct {
	Name       string
	Weights    Weights
	Ordering   OrderWeights
	Depth      DepthPolicy
	Repetition RepetitionConfig
}

// WithDepth returns a copy of c searching a fixed depth. depth <= 0 keeps the
// adaptive bands.
func (c Config) WithDepth(depth int) Config {
	if depth > 0 {
		c.Depth.Fixed = depth
	}
	return c
}

var standardValues = [7]int{
	chess.King:   1000,
	chess.Pawn:   1,
	chess.Knight: 3,
	chess.Bishop: 3,
	chess.Rook:   5,
	chess.Queen:  9,
}

var defaultDepth = DepthPolicy{
	EndgamePieces:    10,
	EndgameDepth:     4,
	MiddlegamePieces: 20,
	MiddlegameDepth:  3,
	OpeningDepth:     3,
}

// Material counts pieces only and searches a fixed three plies.
func Material() Config {
	return Config{
		Name: "material",
		Weights: Weights{
			PieceValues:   standardValues,
			MaterialScale: 1,
			MateScore:     20000,
		},
		Ordering: OrderWeights{
			MateKey:     20000,
			VictimScale: 10,
		},
		Depth:      DepthPolicy{Fixed: 3},
		// Repeated positions score as plain draws.
		Repetition: RepetitionConfig{DrawCount: 2},
	}
}

// Centered adds a small bonus for occupying the four central squares.
func Centered() Config {
	c := Material()
	c.Name = "centered"
	c.Weights.CenterBonus = 2
	c.Ordering.CenterBonus = 1
	c.Depth = defaultDepth
	return c
}

// Mobility scores legal move count and check, and orders promotions and checks.
func Mobility() Config {
	c := Centered()
	c.Name = "mobility"
	c.Weights.MobilityMul = 1
	c.Weights.MobilityDiv = 10
	c.Weights.CheckPenalty = 30
	c.Ordering.PromotionBonus = 800
	c.Ordering.CheckBonus = 100
	c.Repetition.DrawCount = 3
	return c
}

// Full is the default configuration with every evaluation term enabled.
func Full() Config {
	return Config{
		Name: "full",
		Weights: Weights{
			PieceValues:      standardValues,
			MaterialScale:    100,
			MateScore:        30000,
			CenterBonus:      20,
			MobilityMul:      5,
			MobilityDiv:      1,
			CheckPenalty:     50,
			ThreatScale:      10,
			KingHomeBonus:    10,
			PawnAdvanceScale: 5,
		},
		Ordering: OrderWeights{
			MateKey:        50000,
			VictimScale:    100,
			AttackerScale:  10,
			PromotionScale: 90,
			CheckBonus:     300,
			CenterBonus:    50,
		},
		Depth: defaultDepth,
		Repetition: RepetitionConfig{
			DrawCount:     2,
			AvoidPlies:    2,
			EdgeThreshold: 100,
			Penalty:       5000,
		},
	}
}

// DefaultConfig returns Full.
func DefaultConfig() Config { return Full() }

var presets = map[string]func() Config{
	"material": Material,
	"centered": Centered,
	"mobility": Mobility,
	"full":     Full,
}

// PresetNames lists the known presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetByName resolves a preset, case-insensitively. An empty name selects the default.
func PresetByName(name string) (Config, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultConfig(), nil
	}
	build, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownPreset, name, strings.Join(PresetNames(), ", "))
	}
	return build(), nil
}
