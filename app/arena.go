package app

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"chazz/engine"
	"chazz/rules"
)

// Player answers a position with a move in UCI notation. An empty answer
// means the player has no move to offer.
type Player interface {
	BestMove(ctx context.Context, fen string) (string, error)
}

// PlayerProcess is a Player that must be shut down after each game.
type PlayerProcess interface {
	Player
	Close() error
}

// EnginePlayer plays with an in-process engine.
type EnginePlayer struct {
	Engine *engine.Engine
}

func (p EnginePlayer) BestMove(ctx context.Context, fen string) (string, error) {
	pos, err := rules.Parse(fen)
	if err != nil {
		return "", err
	}
	res, err := p.Engine.BestMove(ctx, pos)
	if err != nil {
		return "", err
	}
	return res.UCI(), nil
}

func (EnginePlayer) Close() error { return nil }

// BaselinePreset names the FirstMovePlayer where an engine preset is expected.
const BaselinePreset = "first"

// FirstMovePlayer is the baseline opponent. It plays the first legal move in
// generation order and never searches.
type FirstMovePlayer struct{}

func (FirstMovePlayer) BestMove(_ context.Context, fen string) (string, error) {
	pos, err := rules.Parse(fen)
	if err != nil {
		return "", err
	}
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return "", nil
	}
	return rules.MoveString(moves[0]), nil
}

func (FirstMovePlayer) Close() error { return nil }

// Entrant is one side of a match. Start is called once per game so every game
// begins with a fresh engine.
type Entrant struct {
	Name  string
	Start func(ctx context.Context) (PlayerProcess, error)
}

// GameRecord is the result of one arena game.
type GameRecord struct {
	White   string
	Black   string
	Outcome chess.Outcome
	Reason  string
	Moves   []string
}

// Arena plays engines against each other, adjudicating with the notnil game
// rules.
type Arena struct {
	MoveTimeout time.Duration
	MaxPlies    int // 0 means no limit
	log         zerolog.Logger
}

func NewArena(moveTimeout time.Duration, maxPlies int, log zerolog.Logger) *Arena {
	return &Arena{
		MoveTimeout: moveTimeout,
		MaxPlies:    maxPlies,
		log:         log.With().Str("component", "arena").Logger(),
	}
}

// Match plays n games from fen, swapping colors every game. x plays white in
// the first game.
func (a *Arena) Match(ctx context.Context, x, y Entrant, fen string, n int) (*Standings, error) {
	st := NewStandings(x.Name, y.Name)
	for i := 0; i < n; i++ {
		white, black := x, y
		if i%2 == 1 {
			white, black = y, x
		}
		rec, err := a.playFresh(ctx, white, black, fen)
		if err != nil {
			return st, fmt.Errorf("game %d: %w", i+1, err)
		}
		st.Record(rec)
		a.log.Info().
			Int("game", i+1).
			Str("white", rec.White).
			Str("black", rec.Black).
			Str("result", string(rec.Outcome)).
			Str("reason", rec.Reason).
			Int("plies", len(rec.Moves)).
			Msg("game finished")
	}
	return st, nil
}

func (a *Arena) playFresh(ctx context.Context, white, black Entrant, fen string) (GameRecord, error) {
	wp, err := white.Start(ctx)
	if err != nil {
		return GameRecord{}, fmt.Errorf("start %s: %w", white.Name, err)
	}
	defer wp.Close()
	bp, err := black.Start(ctx)
	if err != nil {
		return GameRecord{}, fmt.Errorf("start %s: %w", black.Name, err)
	}
	defer bp.Close()

	rec, err := a.Play(ctx, wp, bp, fen)
	rec.White, rec.Black = white.Name, black.Name
	return rec, err
}

// Play runs one game to completion. A player that errors, times out, answers
// nothing or answers an illegal move loses. Only the end of ctx is an error.
func (a *Arena) Play(ctx context.Context, white, black Player, fen string) (GameRecord, error) {
	var opts []func(*chess.Game)
	if fen != "" {
		pos, err := rules.Parse(fen)
		if err != nil {
			return GameRecord{}, err
		}
		opt, err := chess.FEN(pos.FEN())
		if err != nil {
			return GameRecord{}, err
		}
		opts = append(opts, opt)
	}
	game := chess.NewGame(opts...)

	var rec GameRecord
	for game.Outcome() == chess.NoOutcome {
		if a.MaxPlies > 0 && len(rec.Moves) >= a.MaxPlies {
			rec.Outcome = chess.Draw
			rec.Reason = "ply limit"
			return rec, nil
		}
		if err := ctx.Err(); err != nil {
			return rec, err
		}

		mover := white
		if game.Position().Turn() == chess.Black {
			mover = black
		}
		reply, reason := a.ask(ctx, mover, game)
		if reason != "" {
			if err := ctx.Err(); err != nil {
				return rec, err
			}
			rec.Outcome = forfeit(game.Position().Turn())
			rec.Reason = reason
			return rec, nil
		}
		rec.Moves = append(rec.Moves, reply)
	}

	rec.Outcome = game.Outcome()
	rec.Reason = game.Method().String()
	return rec, nil
}

// ask plays the mover's reply on game, or returns why the mover forfeits.
func (a *Arena) ask(ctx context.Context, p Player, game *chess.Game) (string, string) {
	mctx := ctx
	if a.MoveTimeout > 0 {
		var cancel context.CancelFunc
		mctx, cancel = context.WithTimeout(ctx, a.MoveTimeout)
		defer cancel()
	}
	reply, err := p.BestMove(mctx, game.Position().String())
	if err != nil {
		return "", "engine error: " + err.Error()
	}
	if reply == "" {
		return "", "no move"
	}
	mv, err := rules.FromChess(game.Position()).FindMove(reply)
	if err != nil {
		return "", "illegal move " + reply
	}
	if err := game.Move(mv); err != nil {
		return "", "illegal move " + reply
	}
	return rules.MoveString(mv), ""
}

func forfeit(loser chess.Color) chess.Outcome {
	if loser == chess.White {
		return chess.BlackWon
	}
	return chess.WhiteWon
}

// Standings is the running score of a two-player match.
type Standings struct {
	names  [2]string
	wins   [2]int
	draws  int
	games  int
	reason map[string]int
}

func NewStandings(a, b string) *Standings {
	return &Standings{names: [2]string{a, b}, reason: make(map[string]int)}
}

func (s *Standings) Record(rec GameRecord) {
	s.games++
	s.reason[rec.Reason]++
	switch rec.Outcome {
	case chess.WhiteWon:
		s.wins[s.index(rec.White)]++
	case chess.BlackWon:
		s.wins[s.index(rec.Black)]++
	default:
		s.draws++
	}
}

func (s *Standings) index(name string) int {
	if name == s.names[1] && name != s.names[0] {
		return 1
	}
	return 0
}

// Score returns the points of player i (0 or 1), a draw counting half.
func (s *Standings) Score(i int) float64 {
	return float64(s.wins[i]) + float64(s.draws)/2
}

func (s *Standings) Wins(i int) int { return s.wins[i] }

func (s *Standings) Draws() int { return s.draws }

func (s *Standings) Games() int { return s.games }

// Print writes the score table.
func (s *Standings) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "engine\twins\tdraws\tlosses\tscore")
	for i := range s.names {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.1f/%d\n",
			s.names[i], s.wins[i], s.draws, s.wins[1-i], s.Score(i), s.games)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	reasons := make([]string, 0, len(s.reason))
	for r := range s.reason {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	fmt.Fprintln(w)
	for _, r := range reasons {
		fmt.Fprintf(tw, "%s\t%d\n", r, s.reason[r])
	}
	return tw.Flush()
}
