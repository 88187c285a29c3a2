// Package runtime drives the coordinator side of a run: partition the
// dataset, dispatch one segment per worker, collect the transformed
// segments back in dataset order.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nemanja-m/scatter/internal/shared/logging"
	"github.com/nemanja-m/scatter/internal/strategy"
	"github.com/nemanja-m/scatter/internal/transport"
	"github.com/nemanja-m/scatter/pkg/core"
)

// ErrShortReply reports a reply whose element count differs from the
// segment that was dispatched.
var ErrShortReply = errors.New("reply length mismatch")

// Observer is notified as segments move through a run. Calls are made from
// the goroutine executing Run.
type Observer interface {
	SegmentDispatched(seg core.Segment)
	SegmentCollected(seg core.Segment)
}

type nopObserver struct{}

func (nopObserver) SegmentDispatched(core.Segment) {}
func (nopObserver) SegmentCollected(core.Segment)  {}

type Option func(*Coordinator)

// WithMaxSegmentLength sets the receive capacity of the workers. Runs
// whose largest segment exceeds it are rejected.
func WithMaxSegmentLength(n int) Option {
	return func(c *Coordinator) {
		c.maxSegment = n
	}
}

// WithTimed brackets dispatch and collection with fabric barriers and
// records the elapsed wall-clock time. Workers must use a barrier too.
func WithTimed(timed bool) Option {
	return func(c *Coordinator) {
		c.timed = timed
	}
}

func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		if o != nil {
			c.observer = o
		}
	}
}

func WithRunID(id uuid.UUID) Option {
	return func(c *Coordinator) {
		c.runID = id
	}
}

type Coordinator struct {
	comm     transport.Comm
	strategy strategy.Strategy
	logger   logging.Logger

	runID      uuid.UUID
	maxSegment int
	timed      bool
	observer   Observer
}

func New(comm transport.Comm, s strategy.Strategy, logger logging.Logger, opts ...Option) (*Coordinator, error) {
	if comm.Rank() != 0 {
		return nil, fmt.Errorf("coordinator must be unit 0, got %d", comm.Rank())
	}
	c := &Coordinator{
		comm:     comm,
		strategy: s,
		logger:   logger,
		runID:    uuid.New(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run scatters dataset over every worker of the fabric and gathers the
// transformed segments. Under the unconfirmed strategy the returned report
// is untrustworthy and the error is a *core.RaceConditionDefect.
func (c *Coordinator) Run(ctx context.Context, dataset []int64) (*Report, error) {
	workers := c.comm.Size() - 1
	segments, err := core.Partition(len(dataset), workers)
	if err != nil {
		return nil, err
	}
	if largest := core.MaxSegmentLength(len(dataset), workers); c.maxSegment > 0 && largest > c.maxSegment {
		return nil, core.ConfigErrorf("largest segment has %d elements, workers hold at most %d",
			largest, c.maxSegment)
	}

	c.logger.Info("Run started",
		"run_id", c.runID,
		"strategy", c.strategy.Kind(),
		"workers", workers,
		"size", len(dataset),
	)

	var start time.Time
	if c.timed {
		if err := transport.Barrier(ctx, c.comm); err != nil {
			return nil, err
		}
		start = time.Now()
	}

	sent, err := c.dispatch(ctx, dataset, segments)
	if err != nil {
		return nil, err
	}

	result := make([]int64, len(dataset))
	received, err := c.collect(ctx, result, segments)
	if err != nil {
		return nil, err
	}

	report := newReport(c.runID, c.strategy.Kind(), dataset, segments, result)
	report.BytesTransferred = sent + received
	if c.timed {
		if err := transport.Barrier(ctx, c.comm); err != nil {
			return nil, err
		}
		report.Timed = true
		report.Elapsed = time.Since(start)
	}

	if err := strategy.RaceCondition(c.strategy, c.comm.Rank()); err != nil {
		c.logger.Warn("Run finished with unconfirmed buffers", "run_id", c.runID, "error", err)
		return report, err
	}

	c.logger.Info("Run completed", "run_id", c.runID, "elapsed", report.Elapsed)
	return report, nil
}

// dispatch sends every worker its length header and then its payload, in
// ascending worker order, and confirms the whole batch before returning.
// It returns the confirmed volume.
func (c *Coordinator) dispatch(ctx context.Context, dataset []int64, segments []core.Segment) (uint64, error) {
	batch := make([]strategy.Pending, 0, 2*len(segments))
	for _, seg := range segments {
		header := []int64{int64(seg.Length)}
		p, err := c.strategy.Send(ctx, c.comm, seg.Worker, "send length", header)
		if err != nil {
			return 0, err
		}
		batch = append(batch, p)

		p, err = c.strategy.Send(ctx, c.comm, seg.Worker, "send payload", dataset[seg.Offset:seg.End()])
		if err != nil {
			return 0, err
		}
		batch = append(batch, p)

		c.logger.Debug("Segment dispatched", "run_id", c.runID, "worker", seg.Worker,
			"offset", seg.Offset, "length", seg.Length)
		c.observer.SegmentDispatched(seg)
	}
	if err := c.strategy.Await(ctx, batch); err != nil {
		return 0, err
	}
	return volume(batch), nil
}

// collect receives every reply straight into its segment of result, so
// placement follows the partition and never the arrival order. It returns
// the confirmed volume.
func (c *Coordinator) collect(ctx context.Context, result []int64, segments []core.Segment) (uint64, error) {
	batch := make([]strategy.Pending, len(segments))
	observed := make([]bool, len(segments))
	for i, seg := range segments {
		p, err := c.strategy.Recv(ctx, c.comm, seg.Worker, "recv reply", result[seg.Offset:seg.End():seg.End()])
		if err != nil {
			return 0, err
		}
		batch[i] = p
		if p.Confirmed() {
			if err := c.collected(seg, p); err != nil {
				return 0, err
			}
			observed[i] = true
		}
	}

	if err := c.strategy.Await(ctx, batch); err != nil {
		return 0, err
	}

	for i, seg := range segments {
		if observed[i] || !batch[i].Confirmed() {
			continue
		}
		if err := c.collected(seg, batch[i]); err != nil {
			return 0, err
		}
	}
	return volume(batch), nil
}

func (c *Coordinator) collected(seg core.Segment, p strategy.Pending) error {
	if n := p.Req.Count(); n != seg.Length {
		return fmt.Errorf("%w: %s replied %d elements, want %d", ErrShortReply, seg, n, seg.Length)
	}
	c.logger.Debug("Segment collected", "run_id", c.runID, "worker", seg.Worker,
		"offset", seg.Offset, "length", seg.Length)
	c.observer.SegmentCollected(seg)
	return nil
}
