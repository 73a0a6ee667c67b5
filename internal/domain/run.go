package domain

import "time"

// StageOutcome describes what a single stage did during one run.
type StageOutcome string

const (
	OutcomeIdle     StageOutcome = "idle"
	OutcomeAdvanced StageOutcome = "advanced"
	OutcomeConflict StageOutcome = "conflict"
	OutcomeFailed   StageOutcome = "failed"
)

// StageReport carries the partial-failure detail of one stage: what was
// skipped or repaired and why.
type StageReport struct {
	Skipped  int
	Repaired int
	Reasons  []string
}

// Skip records an item the stage dropped.
func (r *StageReport) Skip(reason string) {
	r.Skipped++
	r.Reasons = append(r.Reasons, reason)
}

// NoteRepair records an item the stage replaced with a fallback.
func (r *StageReport) NoteRepair(reason string) {
	r.Repaired++
	r.Reasons = append(r.Reasons, reason)
}

type StageResult struct {
	Stage   string
	TaskID  string
	From    Status
	To      Status
	Outcome StageOutcome
	Report  StageReport
	Err     error
}

// RunReport summarizes one pipeline invocation.
type RunReport struct {
	Slot       string
	AdmittedID string
	Stages     []StageResult
	Uploaded   *RunLogEntry
	Duration   time.Duration
}

// Advanced counts stages that moved a task forward.
func (r *RunReport) Advanced() int {
	n := 0
	for _, st := range r.Stages {
		if st.Outcome == OutcomeAdvanced {
			n++
		}
	}
	return n
}

// Failed counts stages that ended with a collaborator or validation error.
func (r *RunReport) Failed() int {
	n := 0
	for _, st := range r.Stages {
		if st.Outcome == OutcomeFailed {
			n++
		}
	}
	return n
}

// RunLogEntry is appended once a task's upload has been confirmed.
type RunLogEntry struct {
	ID          int64     `db:"id" json:"id"`
	TaskID      string    `db:"task_id" json:"task_id"`
	Title       string    `db:"title" json:"title"`
	YouTubeID   string    `db:"youtube_id" json:"youtube_id"`
	Slot        string    `db:"slot" json:"slot"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}

// Task event kinds published to the message bus.
const (
	EventAdmitted = "admitted"
	EventAdvanced = "advanced"
	EventUploaded = "uploaded"
	EventRepaired = "repaired"
)

// TaskEvent is the message emitted on admission, each transition and repair.
type TaskEvent struct {
	Kind      string    `json:"kind"`
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	Slot      string    `json:"slot,omitempty"`
	From      Status    `json:"from,omitempty"`
	To        Status    `json:"to"`
	YouTubeID string    `json:"youtube_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
