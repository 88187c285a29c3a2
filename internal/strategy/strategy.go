// Package strategy holds the synchronization disciplines under which the
// coordinator and the workers issue and await their transfers.
package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/nemanja-m/scatter/internal/transport"
	"github.com/nemanja-m/scatter/pkg/core"
)

type Kind string

const (
	KindSynchronous Kind = "synchronous"
	KindOverlapped  Kind = "overlapped"
	KindUnconfirmed Kind = "unconfirmed"
)

// Pending is an issued transfer whose completion may not have been
// observed yet. Its buffer belongs to the fabric until it is confirmed.
type Pending struct {
	Op   string
	Rank int
	Peer int
	Req  *transport.Request
}

// Confirmed reports whether the transfer's completion has been observed.
func (p Pending) Confirmed() bool {
	return p.Req.Confirmed()
}

// Strategy decides how transfers are issued and how a batch of them is
// brought to completion before its buffers are touched.
type Strategy interface {
	Kind() Kind
	Send(ctx context.Context, comm transport.Comm, dst int, op string, buf []int64) (Pending, error)
	Recv(ctx context.Context, comm transport.Comm, src int, op string, buf []int64) (Pending, error)
	Await(ctx context.Context, batch []Pending) error
}

// HazardReporter is implemented by strategies that let buffers be used
// before completion and keep track of every such use.
type HazardReporter interface {
	Hazards() *core.HazardLog
}

type Options struct {
	// CompletionTimeout bounds every blocking wait. Zero means no bound.
	CompletionTimeout time.Duration
	// Hazards collects hazards for the unconfirmed strategy. A fresh log is
	// created when nil.
	Hazards *core.HazardLog
}

// New builds the strategy registered under kind.
func New(kind Kind, opts Options) (Strategy, error) {
	switch kind {
	case KindSynchronous:
		return NewSynchronous(opts.CompletionTimeout), nil
	case KindOverlapped:
		return NewOverlapped(opts.CompletionTimeout), nil
	case KindUnconfirmed:
		return NewUnconfirmed(opts.Hazards), nil
	default:
		return nil, core.ConfigErrorf("unknown strategy %q (want %s, %s or %s)",
			kind, KindSynchronous, KindOverlapped, KindUnconfirmed)
	}
}

// RaceCondition returns a *core.RaceConditionDefect for the hazards rank
// recorded under s, or nil if s keeps no hazards or rank recorded none.
func RaceCondition(s Strategy, rank int) error {
	reporter, ok := s.(HazardReporter)
	if !ok {
		return nil
	}
	hazards := reporter.Hazards().ForRank(rank)
	if len(hazards) == 0 {
		return nil
	}
	return &core.RaceConditionDefect{Hazards: hazards}
}

// withTimeout derives the context used for one blocking wait and maps its
// expiry to core.ErrCompletionTimeout.
func withTimeout(ctx context.Context, timeout time.Duration, wait func(context.Context) error) error {
	if timeout <= 0 {
		return wait(ctx)
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := wait(tctx)
	if err != nil && tctx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return fmt.Errorf("%w after %s: %w", core.ErrCompletionTimeout, timeout, err)
	}
	return err
}
