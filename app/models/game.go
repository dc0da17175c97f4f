package models

import "time"

type NewGameRequest struct {
	FEN    string `json:"fen,omitempty"`
	Preset string `json:"preset,omitempty"`
}

type PlayRequest struct {
	Move string `json:"move" binding:"required"`
}

// GameState is a snapshot of one game session.
type GameState struct {
	ID         string    `json:"id"`
	FEN        string    `json:"fen"`
	SideToMove string    `json:"side_to_move"`
	Status     string    `json:"status"`
	Outcome    string    `json:"outcome"` // "*", "1-0", "0-1" or "1/2-1/2"
	Method     string    `json:"method,omitempty"`
	Moves      []string  `json:"moves"`
	LegalMoves []string  `json:"legal_moves"`
	EngineMove string    `json:"engine_move,omitempty"`
	Preset     string    `json:"preset"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
