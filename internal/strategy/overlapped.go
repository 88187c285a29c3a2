package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/nemanja-m/scatter/internal/transport"
)

// Overlapped issues transfers without waiting and confirms a whole batch
// at once, letting transfers to different peers proceed together.
type Overlapped struct {
	timeout time.Duration
}

func NewOverlapped(completionTimeout time.Duration) *Overlapped {
	return &Overlapped{timeout: completionTimeout}
}

func (s *Overlapped) Kind() Kind { return KindOverlapped }

func (s *Overlapped) Send(_ context.Context, comm transport.Comm, dst int, op string, buf []int64) (Pending, error) {
	req, err := comm.Isend(dst, buf)
	if err != nil {
		return Pending{}, fmt.Errorf("%s to %d: %w", op, dst, err)
	}
	return Pending{Op: op, Rank: comm.Rank(), Peer: dst, Req: req}, nil
}

func (s *Overlapped) Recv(_ context.Context, comm transport.Comm, src int, op string, buf []int64) (Pending, error) {
	req, err := comm.Irecv(src, buf)
	if err != nil {
		return Pending{}, fmt.Errorf("%s from %d: %w", op, src, err)
	}
	return Pending{Op: op, Rank: comm.Rank(), Peer: src, Req: req}, nil
}

// Await confirms every operation of the batch.
func (s *Overlapped) Await(ctx context.Context, batch []Pending) error {
	return withTimeout(ctx, s.timeout, func(ctx context.Context) error {
		for _, p := range batch {
			if err := p.Req.Wait(ctx); err != nil {
				return fmt.Errorf("%s with %d: %w", p.Op, p.Peer, err)
			}
		}
		return nil
	})
}
