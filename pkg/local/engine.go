// Package local runs a whole scatter/transform/gather run inside one
// process, one goroutine per unit over the in-memory fabric.
package local

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nemanja-m/scatter/internal/coordinator/runtime"
	"github.com/nemanja-m/scatter/internal/shared/config"
	"github.com/nemanja-m/scatter/internal/shared/logging"
	"github.com/nemanja-m/scatter/internal/strategy"
	"github.com/nemanja-m/scatter/internal/transport/memory"
	"github.com/nemanja-m/scatter/internal/worker"
	"github.com/nemanja-m/scatter/pkg/core"
	"github.com/nemanja-m/scatter/pkg/transform"
)

// Result is the outcome of a local run: the coordinator's report and what
// every worker processed, in rank order.
type Result struct {
	Report  *runtime.Report
	Workers []worker.Result
}

type Engine struct {
	config   config.RunConfig
	logger   logging.Logger
	observer runtime.Observer
}

type Option func(*Engine)

// WithObserver reports segment progress of every run to o.
func WithObserver(o runtime.Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

func NewEngine(cfg config.RunConfig, logger logging.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		config: cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run scatters dataset over the configured number of workers. Under the
// unconfirmed strategy it returns the untrustworthy result together with a
// *core.RaceConditionDefect listing the hazards of every unit.
func (e *Engine) Run(ctx context.Context, dataset []int64) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	plan := e.config.Plan(len(dataset))

	hazards := core.NewHazardLog()
	s, err := strategy.New(strategy.Kind(plan.Strategy), strategy.Options{
		CompletionTimeout: plan.CompletionTimeout,
		Hazards:           hazards,
	})
	if err != nil {
		return nil, err
	}
	fn, err := transform.Get(plan.Transform)
	if err != nil {
		return nil, core.ConfigErrorf("%v", err)
	}

	network := memory.NewNetwork(plan.Units)
	defer network.Close()

	coordinator, err := e.newCoordinator(network, s, plan)
	if err != nil {
		return nil, err
	}
	workers, err := e.newWorkers(network, s, fn, plan)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Starting local run",
		"run_id", plan.RunID,
		"units", plan.Units,
		"strategy", plan.Strategy,
		"transform", plan.Transform,
		"size", len(dataset),
	)

	g, gctx := errgroup.WithContext(ctx)
	results := make([]worker.Result, len(workers))
	for i, w := range workers {
		g.Go(func() error {
			res, err := w.Run(gctx)
			results[i] = res
			if err != nil && !errors.Is(err, core.ErrRaceCondition) {
				return fmt.Errorf("worker %d: %w", i+1, err)
			}
			return nil
		})
	}

	var report *runtime.Report
	g.Go(func() error {
		var err error
		report, err = coordinator.Run(gctx, dataset)
		if err != nil && !errors.Is(err, core.ErrRaceCondition) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Report: report, Workers: results}
	if hazards.Len() > 0 {
		return result, &core.RaceConditionDefect{Hazards: hazards.Hazards()}
	}
	return result, nil
}

func (e *Engine) newCoordinator(network *memory.Network, s strategy.Strategy, plan core.Plan) (*runtime.Coordinator, error) {
	comm, err := network.Comm(0)
	if err != nil {
		return nil, err
	}
	opts := []runtime.Option{
		runtime.WithRunID(plan.RunID),
		runtime.WithMaxSegmentLength(plan.MaxSegmentLength),
		runtime.WithTimed(plan.Timed),
	}
	if e.observer != nil {
		opts = append(opts, runtime.WithObserver(e.observer))
	}
	return runtime.New(comm, s, e.logger, opts...)
}

func (e *Engine) newWorkers(network *memory.Network, s strategy.Strategy, fn transform.Func, plan core.Plan) ([]*worker.Worker, error) {
	var opts []worker.Option
	if plan.Timed {
		opts = append(opts, worker.WithBarrier())
	}

	workers := make([]*worker.Worker, 0, plan.Workers())
	for rank := 1; rank < plan.Units; rank++ {
		comm, err := network.Comm(rank)
		if err != nil {
			return nil, err
		}
		w, err := worker.New(comm, s, fn, plan.MaxSegmentLength, e.logger, opts...)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, nil
}
