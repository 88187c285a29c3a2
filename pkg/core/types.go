package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Segment describes the contiguous slice of the dataset assigned to one worker.
// Worker is the worker's unit index (1..W); the coordinator is unit 0.
type Segment struct {
	Worker int
	Offset int
	Length int
}

// End returns the exclusive upper bound of the segment.
func (s Segment) End() int {
	return s.Offset + s.Length
}

func (s Segment) String() string {
	return fmt.Sprintf("worker %d [%d, %d)", s.Worker, s.Offset, s.End())
}

// Plan carries the global parameters every unit of a run must agree on.
type Plan struct {
	RunID             uuid.UUID
	Units             int
	Strategy          string
	Transform         string
	MaxSegmentLength  int
	Timed             bool
	CompletionTimeout time.Duration
}

// Workers returns the number of worker units in the plan.
func (p Plan) Workers() int {
	return p.Units - 1
}
