package core

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusPending   RunStatus = "PENDING"
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
	// RunStatusDefective marks a run that finished with buffers consumed
	// before their transfers were confirmed. Its result is not trustworthy.
	RunStatusDefective RunStatus = "DEFECTIVE"
)

type Run struct {
	ID          uuid.UUID
	Strategy    string
	Transform   string
	Units       int
	DatasetSize int
	Status      RunStatus
	Progress    RunProgress
	Segments    []SegmentProgress
	Result      []int64
	Elapsed     time.Duration

	SubmittedAt time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time

	Errors  []RunError
	Hazards []string
}

// SegmentProgress tracks one worker's segment through a run.
type SegmentProgress struct {
	Worker     int
	Offset     int
	Length     int
	Dispatched bool
	Collected  bool
}

type RunProgress struct {
	Total      int
	Dispatched int
	Collected  int
}

// Percent returns the share of collected segments, 0..100.
func (p RunProgress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Collected) * 100 / float64(p.Total)
}

type RunError struct {
	Error     string
	Timestamp time.Time
}

// Duration returns the wall-clock time between start and completion, or
// zero while the run is not finished.
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil || r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(*r.StartedAt)
}

// IsFinished reports whether the run reached a terminal status.
func (r *Run) IsFinished() bool {
	switch r.Status {
	case RunStatusCompleted, RunStatusFailed, RunStatusDefective:
		return true
	}
	return false
}

// Clone returns a deep copy, so a stored run can be handed out while the
// coordinator keeps updating the original.
func (r *Run) Clone() *Run {
	c := *r
	c.Segments = append([]SegmentProgress(nil), r.Segments...)
	c.Result = append([]int64(nil), r.Result...)
	c.Errors = append([]RunError(nil), r.Errors...)
	c.Hazards = append([]string(nil), r.Hazards...)
	if r.StartedAt != nil {
		t := *r.StartedAt
		c.StartedAt = &t
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

type RunFilter struct {
	Status *RunStatus
	Limit  int
	Offset int
}
