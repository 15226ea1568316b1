package runlog

import "time"

// #region status
// Status is the lifecycle state of a run or a stage execution.
type Status string

const (
	StatusRunning Status = "running"
	StatusOK      Status = "ok"
	StatusError   Status = "error"
)
// #endregion status

// #region run-record
// RunRecord is a single row in the runs table.
type RunRecord struct {
	RunID      string
	Chain      string // "insights" | "report"
	Countries  []string
	Segment    string
	Status     Status
	Retried    bool
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
}
// #endregion run-record

// #region stage-record
// StageRecord is one stage execution. Pass is 1 for the initial pass and
// 2 for the retried pass.
type StageRecord struct {
	RunID      string
	Stage      string
	Pass       int
	StartedAt  time.Time
	Elapsed    time.Duration
	InputKeys  []string
	OutputKeys []string
	Status     Status
	Error      string
}
// #endregion stage-record

// #region decision-record
// DecisionRecord captures the decision handed off for one country.
type DecisionRecord struct {
	RunID         string
	Country       string
	Recommended   string
	Label         string
	Score         float64
	EvidenceCount int
	Rationale     []string
	CreatedAt     time.Time
}
// #endregion decision-record
