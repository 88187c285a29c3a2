package core

import (
	"fmt"
	"slices"
	"sync"
)

// Hazard records one buffer that was used while the operation bound to it
// was still pending.
type Hazard struct {
	Rank int    // unit that consumed the buffer
	Peer int    // other end of the operation
	Op   string // e.g. "recv length", "send reply"
}

func (h Hazard) String() string {
	return fmt.Sprintf("unit %d used %q (peer %d) before completion", h.Rank, h.Op, h.Peer)
}

// HazardLog is a thread-safe collection of hazards shared by every unit
// running under the same strategy instance.
type HazardLog struct {
	mu      sync.Mutex
	hazards []Hazard
}

func NewHazardLog() *HazardLog {
	return &HazardLog{}
}

func (l *HazardLog) Record(h Hazard) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hazards = append(l.hazards, h)
}

// Hazards returns a copy of every recorded hazard in recording order.
func (l *HazardLog) Hazards() []Hazard {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.hazards)
}

// ForRank returns the hazards recorded by the given unit.
func (l *HazardLog) ForRank(rank int) []Hazard {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Hazard
	for _, h := range l.hazards {
		if h.Rank == rank {
			out = append(out, h)
		}
	}
	return out
}

func (l *HazardLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hazards)
}
