package domain

import "time"

// SolutionRecord captures one generate/execute attempt. Records are
// append-only: written once after a run and never mutated.
type SolutionRecord struct {
	RunID       string    `json:"run_id"`
	Timestamp   time.Time `json:"timestamp"`
	Instruction string    `json:"instruction"`
	Script      string    `json:"script"`
	Model       string    `json:"model"`
	Executed    bool      `json:"executed"`
	Success     bool      `json:"success"`
	ErrorText   string    `json:"error_text,omitempty"`
	Verified    *bool     `json:"verified,omitempty"`
	Feedback    string    `json:"feedback,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
}

// SolutionStats aggregates store-wide counters for the history stats view.
type SolutionStats struct {
	Total     int
	Executed  int
	Succeeded int
	Verified  int
}
