package rest

import (
	"github.com/nemanja-m/scatter/internal/coordinator/core"
)

func ToGetRunResponse(run *core.Run) GetRunResponse {
	errors := make([]ErrorInfo, 0, len(run.Errors))
	for _, e := range run.Errors {
		errors = append(errors, ErrorInfo{
			Error:     e.Error,
			Timestamp: e.Timestamp,
		})
	}

	segments := make([]SegmentInfo, 0, len(run.Segments))
	for _, s := range run.Segments {
		segments = append(segments, SegmentInfo{
			Worker:     s.Worker,
			Offset:     s.Offset,
			Length:     s.Length,
			Dispatched: s.Dispatched,
			Collected:  s.Collected,
		})
	}

	// Partial results are meaningless while segments are still in flight.
	var result []int64
	if run.IsFinished() {
		result = run.Result
	}

	var elapsed *int64
	if run.Elapsed > 0 {
		ms := run.Elapsed.Milliseconds()
		elapsed = &ms
	}

	return GetRunResponse{
		RunID:       run.ID.String(),
		Strategy:    run.Strategy,
		Transform:   run.Transform,
		Units:       run.Units,
		DatasetSize: run.DatasetSize,
		Status:      string(run.Status),
		Progress: ProgressInfo{
			Total:      run.Progress.Total,
			Dispatched: run.Progress.Dispatched,
			Collected:  run.Progress.Collected,
			Percent:    run.Progress.Percent(),
		},
		Segments:  segments,
		Result:    result,
		ElapsedMs: elapsed,
		Timestamps: TimestampsInfo{
			Submitted: run.SubmittedAt,
			Started:   run.StartedAt,
			Completed: run.CompletedAt,
		},
		Errors:  errors,
		Hazards: run.Hazards,
	}
}

func ToRunSummary(run *core.Run) RunSummary {
	return RunSummary{
		RunID:       run.ID.String(),
		Strategy:    run.Strategy,
		Status:      string(run.Status),
		Units:       run.Units,
		SubmittedAt: run.SubmittedAt,
		CompletedAt: run.CompletedAt,
	}
}
