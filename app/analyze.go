package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"chazz/app/config"
	"chazz/app/models"
	"chazz/engine"
	"chazz/rules"
)

// ErrPermanent marks batch failures that a retry cannot fix. The worker
// deletes such messages instead of leaving them for redelivery.
var ErrPermanent = errors.New("permanent batch failure")

// BatchProcessor searches every position of a queued batch and records the
// results with the job store.
type BatchProcessor struct {
	cfg   *config.Config
	store JobStore
	log   zerolog.Logger
}

func NewBatchProcessor(cfg *config.Config, store JobStore, log zerolog.Logger) *BatchProcessor {
	return &BatchProcessor{cfg: cfg, store: store, log: log.With().Str("component", "batch").Logger()}
}

// ProcessBatch runs the batch on a pool of cfg.Workers goroutines. A position
// that fails or times out gets an error entry; only store failures and the end
// of ctx fail the whole batch.
func (p *BatchProcessor) ProcessBatch(ctx context.Context, job models.JobMessage) error {
	start := time.Now()
	if job.JobID == "" {
		return fmt.Errorf("%w: message has no job id", ErrPermanent)
	}
	ec, err := p.cfg.EngineConfigFor(job.Preset, job.Depth)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermanent, err)
	}
	log := p.log.With().Str("job_id", job.JobID).Int("batch_index", job.BatchIndex).Logger()
	eng := engine.New(ec, engine.WithLogger(log))

	results := make([]models.PositionResult, len(job.FENs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.cfg.Workers, 1))
	for i, fen := range job.FENs {
		i, fen := i, fen
		g.Go(func() error {
			results[i] = p.analyze(gctx, eng, fen)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := p.store.SaveResults(ctx, job.JobID, job.BatchIndex, ec.Name, results); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return fmt.Errorf("%w: %w", ErrPermanent, err)
		}
		return fmt.Errorf("save results: %w", err)
	}
	if err := p.store.UpdateJobProgress(ctx, job.JobID); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return fmt.Errorf("%w: %w", ErrPermanent, err)
		}
		return fmt.Errorf("update progress: %w", err)
	}

	log.Info().
		Int("positions", len(job.FENs)).
		Dur("elapsed", time.Since(start)).
		Msg("batch complete")
	return nil
}

func (p *BatchProcessor) analyze(ctx context.Context, eng *engine.Engine, fen string) models.PositionResult {
	out := models.PositionResult{FEN: NormalizeFEN(fen)}

	pos, err := rules.Parse(fen)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	pctx, cancel := context.WithTimeout(ctx, p.cfg.Engine.MoveTimeout)
	defer cancel()
	res, err := eng.BestMove(pctx, pos)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			out.Error = "search timed out"
		} else {
			out.Error = err.Error()
		}
		return out
	}
	if res.Move == nil {
		out.Error = "no legal moves: " + pos.Status().String()
		return out
	}
	out.BestMove = res.UCI()
	out.Score = res.Score
	out.Depth = res.Depth
	out.Nodes = res.Nodes
	out.MateInOne = res.MateInOne
	return out
}
