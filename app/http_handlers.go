package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chazz/app/config"
	"chazz/app/models"
	"chazz/engine"
	"chazz/rules"
)

// Handlers serves the HTTP API. Each request builds its own engine from the
// configured preset, so handlers share no search state.
type Handlers struct {
	cfg   *config.Config
	games *GameManager
	store JobStore
	queue Enqueuer
	log   zerolog.Logger
}

func NewHandlers(cfg *config.Config, store JobStore, queue Enqueuer, log zerolog.Logger) *Handlers {
	h := &Handlers{
		cfg:   cfg,
		store: store,
		queue: queue,
		log:   log.With().Str("component", "http").Logger(),
	}
	h.games = NewGameManager(func(preset string) (*engine.Engine, error) {
		return h.engine(preset, 0)
	})
	return h
}

// ExpireGames drops idle game sessions until ctx is done.
func (h *Handlers) ExpireGames(ctx context.Context) {
	h.games.RunJanitor(ctx, h.cfg.HTTP.GameTTL, gameSweepInterval(h.cfg.HTTP.GameTTL), h.log)
}

func gameSweepInterval(ttl time.Duration) time.Duration {
	return min(max(ttl/4, time.Second), time.Minute)
}

func (h *Handlers) engine(preset string, depth int) (*engine.Engine, error) {
	ec, err := h.cfg.EngineConfigFor(preset, depth)
	if err != nil {
		return nil, err
	}
	return engine.New(ec, engine.WithLogger(h.log)), nil
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// BestMove handles POST /api/move.
func (h *Handlers) BestMove(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pos, err := rules.Parse(req.FEN)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	eng, err := h.engine(req.Preset, req.Depth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.Engine.MoveTimeout)
	defer cancel()

	res, err := eng.BestMove(ctx, pos)
	if err != nil {
		h.searchError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MoveResponse{
		FEN:       pos.FEN(),
		Move:      res.UCI(),
		Score:     res.Score,
		Depth:     res.Depth,
		Nodes:     res.Nodes,
		MateInOne: res.MateInOne,
		ElapsedMS: res.Elapsed.Milliseconds(),
		Status:    pos.Status().String(),
		Preset:    eng.Config().Name,
	})
}

// Evaluate handles POST /api/evaluate.
func (h *Handlers) Evaluate(c *gin.Context) {
	var req models.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pos, err := rules.Parse(req.FEN)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	eng, err := h.engine(req.Preset, 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b := eng.Evaluator().Breakdown(pos)
	c.JSON(http.StatusOK, models.EvaluateResponse{
		FEN:        pos.FEN(),
		SideToMove: sideName(pos.Turn()),
		Status:     b.Status.String(),
		InCheck:    pos.InCheck(),
		LegalMoves: len(pos.LegalMoves()),
		Total:      b.Total,
		Terms: models.EvalTerms{
			Material:    b.Material,
			Center:      b.Center,
			Mobility:    b.Mobility,
			Check:       b.Check,
			Threats:     b.Threats,
			KingSafety:  b.KingSafety,
			PawnAdvance: b.PawnAdvance,
		},
		Preset: eng.Config().Name,
	})
}

// NewGame handles POST /api/games. An empty body starts from the initial position.
func (h *Handlers) NewGame(c *gin.Context) {
	var req models.NewGameRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	st, err := h.games.NewGame(req.FEN, req.Preset)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.log.Info().Str("game_id", st.ID).Str("preset", st.Preset).Msg("game created")
	c.JSON(http.StatusCreated, st)
}

func (h *Handlers) GetGame(c *gin.Context) {
	st, err := h.games.Get(c.Param("id"))
	if err != nil {
		h.gameError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// PlayMove handles POST /api/games/:id/moves.
func (h *Handlers) PlayMove(c *gin.Context) {
	var req models.PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.Engine.MoveTimeout)
	defer cancel()

	st, err := h.games.Play(ctx, c.Param("id"), req.Move)
	if err != nil {
		h.gameError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// EngineMove handles POST /api/games/:id/engine-move, letting the engine move
// for the side to move.
func (h *Handlers) EngineMove(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.Engine.MoveTimeout)
	defer cancel()

	st, err := h.games.Reply(ctx, c.Param("id"))
	if err != nil {
		h.gameError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// CreateJob handles POST /api/jobs: it records the job, splits the positions
// into batches and enqueues one message per batch.
func (h *Handlers) CreateJob(c *gin.Context) {
	var req models.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fens := make([]string, 0, len(req.FENs))
	for _, f := range req.FENs {
		if f = strings.TrimSpace(f); f != "" {
			fens = append(fens, f)
		}
	}
	if len(fens) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no positions"})
		return
	}
	ec, err := h.cfg.EngineConfigFor(req.Preset, req.Depth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = h.cfg.Engine.BatchSize
	}
	batches := SplitBatches(fens, batchSize)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	jobID, err := h.store.CreateJob(ctx, ec.Name, len(fens), batchSize, len(batches))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for i, batch := range batches {
		msg := models.JobMessage{
			JobID:      jobID,
			BatchIndex: i,
			FENs:       batch,
			Preset:     ec.Name,
			Depth:      req.Depth,
		}
		if err := h.queue.Enqueue(ctx, msg); err != nil {
			h.log.Error().Err(err).Str("job_id", jobID).Int("batch_index", i).Msg("enqueue failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "job_id": jobID})
			return
		}
	}

	c.JSON(http.StatusAccepted, models.CreateJobResponse{
		JobID:     jobID,
		Positions: len(fens),
		Batches:   len(batches),
	})
}

// GetJob handles GET /api/jobs/:id. Results are included as batches finish.
func (h *Handlers) GetJob(c *gin.Context) {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	st, err := h.store.FindJobStatus(ctx, id)
	if errors.Is(err, ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if st.CompletedBatches > 0 {
		results, err := h.store.FindResults(ctx, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		st.Results = results
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handlers) searchError(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "search timed out"})
		return
	}
	h.log.Error().Err(err).Msg("search failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (h *Handlers) gameError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, rules.ErrIllegalMove):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, ErrGameOver):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.searchError(c, err)
	}
}
