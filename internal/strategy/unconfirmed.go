package strategy

import (
	"context"
	"fmt"

	"github.com/nemanja-m/scatter/internal/transport"
	"github.com/nemanja-m/scatter/pkg/core"
)

// Unconfirmed reproduces the defective discipline: transfers are issued
// like Overlapped but Await returns without waiting, so callers go on to
// use buffers whose operations are still pending. Every such operation is
// recorded as a hazard. It exists to make the defect observable; it never
// produces a trustworthy result.
type Unconfirmed struct {
	hazards *core.HazardLog
}

func NewUnconfirmed(hazards *core.HazardLog) *Unconfirmed {
	if hazards == nil {
		hazards = core.NewHazardLog()
	}
	return &Unconfirmed{hazards: hazards}
}

func (s *Unconfirmed) Kind() Kind { return KindUnconfirmed }

func (s *Unconfirmed) Hazards() *core.HazardLog { return s.hazards }

func (s *Unconfirmed) Send(_ context.Context, comm transport.Comm, dst int, op string, buf []int64) (Pending, error) {
	req, err := comm.Isend(dst, buf)
	if err != nil {
		return Pending{}, fmt.Errorf("%s to %d: %w", op, dst, err)
	}
	return Pending{Op: op, Rank: comm.Rank(), Peer: dst, Req: req}, nil
}

func (s *Unconfirmed) Recv(_ context.Context, comm transport.Comm, src int, op string, buf []int64) (Pending, error) {
	req, err := comm.Irecv(src, buf)
	if err != nil {
		return Pending{}, fmt.Errorf("%s from %d: %w", op, src, err)
	}
	return Pending{Op: op, Rank: comm.Rank(), Peer: src, Req: req}, nil
}

// Await skips the wait. Any operation of the batch whose completion was
// never observed is recorded, since the caller is about to use its buffer.
func (s *Unconfirmed) Await(_ context.Context, batch []Pending) error {
	for _, p := range batch {
		if !p.Confirmed() {
			s.hazards.Record(core.Hazard{Rank: p.Rank, Peer: p.Peer, Op: p.Op})
		}
	}
	return nil
}
