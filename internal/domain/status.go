package domain

import "fmt"

// Status is the single field that decides which stage may act on a task.
type Status string

const (
	StatusPending           Status = "pending"
	StatusScripted          Status = "scripted"
	StatusVoiced            Status = "voiced"
	StatusVisualsReady      Status = "visuals_ready"
	StatusReadyToAssemble   Status = "ready_to_assemble"
	StatusReadyToUpload     Status = "ready_to_upload"
	StatusCompletedPackaged Status = "completed_packaged"
	StatusUploaded          Status = "uploaded"
)

// statusOrder is the fixed total order a task moves through.
var statusOrder = []Status{
	StatusPending,
	StatusScripted,
	StatusVoiced,
	StatusVisualsReady,
	StatusReadyToAssemble,
	StatusReadyToUpload,
	StatusCompletedPackaged,
	StatusUploaded,
}

var statusRank = func() map[Status]int {
	m := make(map[Status]int, len(statusOrder))
	for i, s := range statusOrder {
		m[s] = i
	}
	return m
}()

// transitions lists every legal forward move. Anything else is rejected.
var transitions = func() map[Status]Status {
	m := make(map[Status]Status, len(statusOrder)-1)
	for i := 0; i < len(statusOrder)-1; i++ {
		m[statusOrder[i]] = statusOrder[i+1]
	}
	return m
}()

// Statuses returns the ordered list of statuses.
func Statuses() []Status {
	out := make([]Status, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank is the position of s in the total order, or -1 for unknown statuses.
func (s Status) Rank() int {
	r, ok := statusRank[s]
	if !ok {
		return -1
	}
	return r
}

// Next returns the successor of s. Terminal and unknown statuses have none.
func (s Status) Next() (Status, bool) {
	next, ok := transitions[s]
	return next, ok
}

// Before reports whether s comes strictly earlier than other.
func (s Status) Before(other Status) bool {
	return s.Rank() >= 0 && other.Rank() >= 0 && s.Rank() < other.Rank()
}

// IsTerminal reports whether the task has finished the pipeline.
func (s Status) IsTerminal() bool {
	return s == StatusUploaded
}

// CheckTransition returns ErrIllegalTransition unless to directly follows from.
func CheckTransition(from, to Status) error {
	next, ok := transitions[from]
	if !ok || next != to {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}
