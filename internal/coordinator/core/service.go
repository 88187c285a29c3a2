package core

import "github.com/google/uuid"

// RunService defines the interface for inspecting runs.
type RunService interface {
	GetRun(id uuid.UUID) (*Run, error)
	GetRuns(filter RunFilter) ([]*Run, int, error)
}

// WorkerService defines the interface for inspecting the connected workers.
type WorkerService interface {
	ConnectedWorkers() []int
	ExpectedWorkers() int
}
