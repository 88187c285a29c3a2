package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/nemanja-m/scatter/internal/transport"
)

// Synchronous completes every transfer before the issuing call returns.
// There is no overlap between transfers to different peers.
type Synchronous struct {
	timeout time.Duration
}

func NewSynchronous(completionTimeout time.Duration) *Synchronous {
	return &Synchronous{timeout: completionTimeout}
}

func (s *Synchronous) Kind() Kind { return KindSynchronous }

func (s *Synchronous) Send(ctx context.Context, comm transport.Comm, dst int, op string, buf []int64) (Pending, error) {
	req, err := comm.Isend(dst, buf)
	if err != nil {
		return Pending{}, fmt.Errorf("%s to %d: %w", op, dst, err)
	}
	if err := withTimeout(ctx, s.timeout, req.Wait); err != nil {
		return Pending{}, fmt.Errorf("%s to %d: %w", op, dst, err)
	}
	return Pending{Op: op, Rank: comm.Rank(), Peer: dst, Req: req}, nil
}

func (s *Synchronous) Recv(ctx context.Context, comm transport.Comm, src int, op string, buf []int64) (Pending, error) {
	req, err := comm.Irecv(src, buf)
	if err != nil {
		return Pending{}, fmt.Errorf("%s from %d: %w", op, src, err)
	}
	if err := withTimeout(ctx, s.timeout, req.Wait); err != nil {
		return Pending{}, fmt.Errorf("%s from %d: %w", op, src, err)
	}
	return Pending{Op: op, Rank: comm.Rank(), Peer: src, Req: req}, nil
}

// Await has nothing left to wait for; it only checks that every operation
// was issued through this strategy.
func (s *Synchronous) Await(ctx context.Context, batch []Pending) error {
	for _, p := range batch {
		if !p.Confirmed() {
			return fmt.Errorf("%s with %d was not completed synchronously", p.Op, p.Peer)
		}
	}
	return nil
}
