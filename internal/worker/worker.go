// Package worker runs one worker unit: it receives a single segment from
// the coordinator, transforms it and sends it back.
package worker

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/nemanja-m/scatter/internal/shared/logging"
	"github.com/nemanja-m/scatter/internal/strategy"
	"github.com/nemanja-m/scatter/internal/transport"
	"github.com/nemanja-m/scatter/pkg/transform"
)

const coordinatorRank = 0

// ErrProtocol reports a descriptor or payload that contradicts the
// length/payload protocol.
var ErrProtocol = errors.New("protocol violation")

type State int

const (
	StateAwaitingDescriptor State = iota
	StateAwaitingPayload
	StateComputing
	StateReplying
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingDescriptor:
		return "AWAITING_DESCRIPTOR"
	case StateAwaitingPayload:
		return "AWAITING_PAYLOAD"
	case StateComputing:
		return "COMPUTING"
	case StateReplying:
		return "REPLYING"
	case StateDone:
		return "DONE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is what a worker processed during its run.
type Result struct {
	Rank    int
	Length  int
	Segment []int64
}

type Worker struct {
	comm      transport.Comm
	strategy  strategy.Strategy
	transform transform.Func
	logger    logging.Logger

	header  []int64
	segment []int64
	state   State
	barrier bool
}

type Option func(*Worker)

// WithBarrier makes the worker enter a fabric barrier before receiving its
// segment and after replying, matching a timed coordinator.
func WithBarrier() Option {
	return func(w *Worker) {
		w.barrier = true
	}
}

// New creates a worker whose receive buffer holds maxSegment elements, the
// largest segment the coordinator may send in this run.
func New(
	comm transport.Comm,
	s strategy.Strategy,
	fn transform.Func,
	maxSegment int,
	logger logging.Logger,
	opts ...Option,
) (*Worker, error) {
	if comm.Rank() == coordinatorRank {
		return nil, fmt.Errorf("rank %d is reserved for the coordinator", coordinatorRank)
	}
	if maxSegment < 0 {
		return nil, fmt.Errorf("max segment length must be non-negative, got %d", maxSegment)
	}
	if fn == nil {
		return nil, errors.New("transform is required")
	}
	w := &Worker{
		comm:      comm,
		strategy:  s,
		transform: fn,
		logger:    logger,
		header:    make([]int64, 1),
		segment:   make([]int64, maxSegment),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *Worker) State() State {
	return w.state
}

// Run processes exactly one segment.
func (w *Worker) Run(ctx context.Context) (Result, error) {
	rank := w.comm.Rank()
	w.state = StateAwaitingDescriptor
	if w.barrier {
		if err := transport.Barrier(ctx, w.comm); err != nil {
			return Result{Rank: rank}, err
		}
	}

	header, err := w.strategy.Recv(ctx, w.comm, coordinatorRank, "recv length", w.header)
	if err != nil {
		return Result{Rank: rank}, err
	}

	w.state = StateAwaitingPayload
	payload, err := w.strategy.Recv(ctx, w.comm, coordinatorRank, "recv payload", w.segment)
	if err != nil {
		return Result{Rank: rank}, err
	}
	if err := w.strategy.Await(ctx, []strategy.Pending{header, payload}); err != nil {
		return Result{Rank: rank}, err
	}

	length := int(w.header[0])
	if header.Confirmed() {
		if err := w.checkSegment(header, payload, length); err != nil {
			return Result{Rank: rank}, err
		}
	} else {
		// Stale length; clamped only so slicing stays in bounds.
		length = max(0, min(length, len(w.segment)))
	}

	w.state = StateComputing
	w.logger.Debug("Computing segment", "worker", rank, "length", length)
	w.transform(w.segment[:length])

	w.state = StateReplying
	reply, err := w.strategy.Send(ctx, w.comm, coordinatorRank, "send reply", w.segment[:length])
	if err != nil {
		return Result{Rank: rank, Length: length}, err
	}
	if err := w.strategy.Await(ctx, []strategy.Pending{reply}); err != nil {
		return Result{Rank: rank, Length: length}, err
	}

	if w.barrier {
		if err := transport.Barrier(ctx, w.comm); err != nil {
			return Result{Rank: rank, Length: length}, err
		}
	}

	w.state = StateDone
	result := Result{
		Rank:    rank,
		Length:  length,
		Segment: slices.Clone(w.segment[:length]),
	}
	if err := strategy.RaceCondition(w.strategy, rank); err != nil {
		return result, err
	}
	w.logger.Debug("Segment replied", "worker", rank, "length", length)
	return result, nil
}

func (w *Worker) checkSegment(header, payload strategy.Pending, length int) error {
	if header.Req.Count() != 1 {
		return fmt.Errorf("%w: descriptor of %d elements", ErrProtocol, header.Req.Count())
	}
	if length < 0 || length > len(w.segment) {
		return fmt.Errorf("%w: segment length %d outside [0, %d]", ErrProtocol, length, len(w.segment))
	}
	if payload.Confirmed() && payload.Req.Count() != length {
		return fmt.Errorf("%w: descriptor announced %d elements, payload carried %d",
			ErrProtocol, length, payload.Req.Count())
	}
	return nil
}
