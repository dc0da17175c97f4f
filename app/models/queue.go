package models

type JobMessage struct {
	JobID      string   `json:"job_id"`
	BatchIndex int      `json:"batch_index"` // 0-based
	FENs       []string `json:"fens"`
	Preset     string   `json:"preset"`
	Depth      int      `json:"depth"`
}
