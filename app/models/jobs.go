package models

import "time"

const (
	JobQueued    = "queued"
	JobRunning   = "running"
	JobCompleted = "completed"
)

type CreateJobRequest struct {
	FENs      []string `json:"fens" binding:"required"`
	Preset    string   `json:"preset,omitempty"`
	Depth     int      `json:"depth,omitempty" binding:"omitempty,min=0,max=12"`
	BatchSize int      `json:"batch_size,omitempty"`
}

type CreateJobResponse struct {
	JobID     string `json:"job_id"`
	Positions int    `json:"positions"`
	Batches   int    `json:"batches"`
}

// JobStatus summarizes a batch processing job.
type JobStatus struct {
	ID               string           `json:"id"`
	Status           string           `json:"status"`
	Preset           string           `json:"preset"`
	TotalPositions   int              `json:"total_positions"`
	BatchSize        int              `json:"batch_size"`
	CompletedBatches int              `json:"completed_batches"`
	TotalBatches     int              `json:"total_batches"`
	CreatedAt        time.Time        `json:"created_at"`
	Results          []PositionResult `json:"results,omitempty"`
}

// PositionResult is the engine's answer for one queued position. Error is set
// instead of the move fields when the position could not be searched.
type PositionResult struct {
	FEN       string `json:"fen"`
	BestMove  string `json:"best_move"`
	Score     int    `json:"score"`
	Depth     int    `json:"depth"`
	Nodes     int64  `json:"nodes"`
	MateInOne bool   `json:"mate_in_one"`
	Error     string `json:"error,omitempty"`
}
