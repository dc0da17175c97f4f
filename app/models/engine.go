package models

// MoveRequest asks the engine for one move.
type MoveRequest struct {
	FEN    string `json:"fen" binding:"required"`
	Preset string `json:"preset,omitempty"`
	Depth  int    `json:"depth,omitempty" binding:"omitempty,min=0,max=12"`
}

type MoveResponse struct {
	FEN       string `json:"fen"`
	Move      string `json:"move"` // empty when the side to move has none
	Score     int    `json:"score"`
	Depth     int    `json:"depth"`
	Nodes     int64  `json:"nodes"`
	MateInOne bool   `json:"mate_in_one"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Status    string `json:"status"`
	Preset    string `json:"preset"`
}

type EvaluateRequest struct {
	FEN    string `json:"fen" binding:"required"`
	Preset string `json:"preset,omitempty"`
}

// EvalTerms is the static evaluation split by term, for the side to move.
type EvalTerms struct {
	Material    int `json:"material"`
	Center      int `json:"center"`
	Mobility    int `json:"mobility"`
	Check       int `json:"check"`
	Threats     int `json:"threats"`
	KingSafety  int `json:"king_safety"`
	PawnAdvance int `json:"pawn_advance"`
}

type EvaluateResponse struct {
	FEN        string    `json:"fen"`
	SideToMove string    `json:"side_to_move"`
	Status     string    `json:"status"`
	InCheck    bool      `json:"in_check"`
	LegalMoves int       `json:"legal_moves"`
	Total      int       `json:"total"`
	Terms      EvalTerms `json:"terms"`
	Preset     string    `json:"preset"`
}
