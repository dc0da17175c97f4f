package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"chazz/engine"
	"chazz/rules"
)

// Driver runs the line protocol spoken on stdin/stdout:
//
//	position <fen>|startpos [moves m1 m2 ...]
//	go
//	debug
//	quit
//
// uci, isready and ucinewgame are answered so GUI front ends can attach.
type Driver struct {
	eng     *engine.Engine
	log     zerolog.Logger
	pos     *rules.Position
	history []uint64
}

func NewDriver(eng *engine.Engine, log zerolog.Logger) *Driver {
	return &Driver{
		eng: eng,
		log: log.With().Str("component", "driver").Logger(),
		pos: rules.StartingPosition(),
	}
}

// Position returns the current position.
func (d *Driver) Position() *rules.Position { return d.pos }

// Run reads commands until quit, EOF or ctx is done.
func (d *Driver) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	w := bufio.NewWriter(out)
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		cmd, args, _ := strings.Cut(line, " ")
		switch cmd {
		case "quit":
			return w.Flush()
		case "uci":
			fmt.Fprintln(w, "id name chazz")
			fmt.Fprintf(w, "id preset %s\n", d.eng.Config().Name)
			fmt.Fprintln(w, "uciok")
		case "isready":
			fmt.Fprintln(w, "readyok")
		case "ucinewgame":
			d.pos = rules.StartingPosition()
			d.history = nil
		case "position":
			if err := d.setPosition(args); err != nil {
				d.log.Warn().Err(err).Str("input", args).Msg("position rejected, keeping previous")
			}
		case "go":
			d.search(ctx, w)
		case "debug":
			d.debug(w)
		default:
			d.log.Warn().Str("command", line).Msg("unknown command")
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return w.Flush()
}

// setPosition replaces the position only when the whole command is valid.
func (d *Driver) setPosition(args string) error {
	fields := strings.Fields(args)
	var moves []string
	for i, f := range fields {
		if f == "moves" {
			fields, moves = fields[:i], fields[i+1:]
			break
		}
	}
	if len(fields) > 0 && fields[0] == "fen" {
		fields = fields[1:]
	}

	var pos *rules.Position
	if len(fields) == 1 && fields[0] == "startpos" {
		pos = rules.StartingPosition()
	} else {
		p, err := rules.Parse(strings.Join(fields, " "))
		if err != nil {
			return err
		}
		pos = p
	}

	var history []uint64
	for _, uci := range moves {
		m, err := pos.FindMove(uci)
		if err != nil {
			return err
		}
		history = append(history, pos.Hash())
		pos = pos.Apply(m)
	}
	if len(history) > 0 {
		history = append(history, pos.Hash())
	}
	d.pos = pos
	d.history = history
	return nil
}

func (d *Driver) search(ctx context.Context, w io.Writer) {
	res, err := d.eng.BestMoveFrom(ctx, d.pos, d.history)
	if err != nil {
		d.log.Error().Err(err).Str("fen", d.pos.FEN()).Msg("search failed")
		return
	}
	if res.Move == nil {
		d.log.Info().Str("fen", d.pos.FEN()).Str("status", d.pos.Status().String()).Msg("no legal moves")
		return
	}
	d.log.Debug().
		Str("move", res.UCI()).
		Int("score", res.Score).
		Int("depth", res.Depth).
		Int64("nodes", res.Nodes).
		Dur("elapsed", res.Elapsed).
		Msg("bestmove")
	fmt.Fprintln(w, res.UCI())
}

func (d *Driver) debug(w io.Writer) {
	b := d.eng.Evaluator().Breakdown(d.pos)
	fmt.Fprintf(w, "fen %s\n", d.pos.FEN())
	fmt.Fprintf(w, "eval %d material %d center %d mobility %d check %d threats %d king %d pawns %d\n",
		b.Total, b.Material, b.Center, b.Mobility, b.Check, b.Threats, b.KingSafety, b.PawnAdvance)
	fmt.Fprintf(w, "status %s\n", d.pos.Status())
	fmt.Fprintf(w, "turn %s\n", sideName(d.pos.Turn()))
	fmt.Fprintf(w, "legal %d\n", len(d.pos.LegalMoves()))
}

func sideName(c chess.Color) string {
	if c == chess.Black {
		return "black"
	}
	return "white"
}
