package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nemanja-m/scatter/internal/coordinator/core"
	"github.com/nemanja-m/scatter/internal/coordinator/runtime"
	"github.com/nemanja-m/scatter/internal/shared/logging"
	scatter "github.com/nemanja-m/scatter/pkg/core"
)

// Runner executes one run over a dataset.
type Runner interface {
	Run(ctx context.Context, dataset []int64) (*runtime.Report, error)
}

type RunService struct {
	store  core.RunStore
	logger logging.Logger
}

func NewRunService(store core.RunStore, logger logging.Logger) *RunService {
	return &RunService{
		store:  store,
		logger: logger,
	}
}

// Submit records a pending run for plan over datasetSize elements.
func (s *RunService) Submit(plan scatter.Plan, datasetSize int) (*core.Run, error) {
	segments, err := scatter.Partition(datasetSize, plan.Workers())
	if err != nil {
		return nil, err
	}

	run := &core.Run{
		ID:          plan.RunID,
		Strategy:    plan.Strategy,
		Transform:   plan.Transform,
		Units:       plan.Units,
		DatasetSize: datasetSize,
		Status:      core.RunStatusPending,
		Progress:    core.RunProgress{Total: len(segments)},
		Segments:    make([]core.SegmentProgress, len(segments)),
		SubmittedAt: time.Now().UTC(),
	}
	for i, seg := range segments {
		run.Segments[i] = core.SegmentProgress{
			Worker: seg.Worker,
			Offset: seg.Offset,
			Length: seg.Length,
		}
	}

	if err := s.store.SaveRun(run); err != nil {
		return nil, err
	}
	s.logger.Info("Run submitted", "run_id", run.ID, "units", run.Units, "size", datasetSize)
	return run, nil
}

// Observer returns a runtime.Observer that records segment progress of
// the given run.
func (s *RunService) Observer(id uuid.UUID) runtime.Observer {
	return &progressTracker{service: s, runID: id}
}

// Execute runs runner over dataset and records the outcome of run id.
func (s *RunService) Execute(ctx context.Context, id uuid.UUID, runner Runner, dataset []int64) (*runtime.Report, error) {
	if err := s.store.UpdateRun(id, func(run *core.Run) {
		run.Status = core.RunStatusRunning
		run.StartedAt = ptrTimeNow()
	}); err != nil {
		return nil, err
	}

	report, runErr := runner.Run(ctx, dataset)

	if err := s.store.UpdateRun(id, func(run *core.Run) {
		run.CompletedAt = ptrTimeNow()
		if report != nil {
			run.Result = append([]int64(nil), report.Result...)
			run.Elapsed = report.Elapsed
		}

		var defect *scatter.RaceConditionDefect
		switch {
		case runErr == nil:
			run.Status = core.RunStatusCompleted
		case errors.As(runErr, &defect):
			run.Status = core.RunStatusDefective
			for _, h := range defect.Hazards {
				run.Hazards = append(run.Hazards, h.String())
			}
		default:
			run.Status = core.RunStatusFailed
		}
		if runErr != nil {
			run.Errors = append(run.Errors, core.RunError{
				Error:     runErr.Error(),
				Timestamp: time.Now().UTC(),
			})
		}
	}); err != nil {
		s.logger.Error("Failed to record run outcome", "run_id", id, "error", err)
	}

	return report, runErr
}

func (s *RunService) GetRun(id uuid.UUID) (*core.Run, error) {
	return s.store.GetRunByID(id)
}

func (s *RunService) GetRuns(filter core.RunFilter) ([]*core.Run, int, error) {
	return s.store.GetRuns(filter)
}

type progressTracker struct {
	service *RunService
	runID   uuid.UUID
}

func (t *progressTracker) SegmentDispatched(seg scatter.Segment) {
	t.update(seg, func(run *core.Run, p *core.SegmentProgress) {
		if !p.Dispatched {
			p.Dispatched = true
			run.Progress.Dispatched++
		}
	})
}

func (t *progressTracker) SegmentCollected(seg scatter.Segment) {
	t.update(seg, func(run *core.Run, p *core.SegmentProgress) {
		if !p.Collected {
			p.Collected = true
			run.Progress.Collected++
		}
	})
}

func (t *progressTracker) update(seg scatter.Segment, apply func(run *core.Run, p *core.SegmentProgress)) {
	err := t.service.store.UpdateRun(t.runID, func(run *core.Run) {
		i := seg.Worker - 1
		if i < 0 || i >= len(run.Segments) {
			return
		}
		apply(run, &run.Segments[i])
	})
	if err != nil {
		t.service.logger.Warn("Failed to record segment progress", "run_id", t.runID, "worker", seg.Worker, "error", err)
	}
}

func ptrTimeNow() *time.Time {
	now := time.Now().UTC()
	return &now
}
