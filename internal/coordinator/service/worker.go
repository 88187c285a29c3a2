package service

import (
	"github.com/nemanja-m/scatter/internal/coordinator/core"
)

// Roster lists the workers currently connected to the coordinator.
type Roster interface {
	Connected() []int
}

type workerService struct {
	roster   Roster
	expected int
}

func NewWorkerService(roster Roster, expected int) core.WorkerService {
	return &workerService{
		roster:   roster,
		expected: expected,
	}
}

func (s *workerService) ConnectedWorkers() []int {
	return s.roster.Connected()
}

func (s *workerService) ExpectedWorkers() int {
	return s.expected
}
