package core

import (
	"testing"
	"time"
)

func TestRun_Duration(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		startedAt   *time.Time
		completedAt *time.Time
		want        time.Duration
	}{
		{
			name:        "both nil returns zero",
			startedAt:   nil,
			completedAt: nil,
			want:        0,
		},
		{
			name:        "running run returns zero",
			startedAt:   ptrTime(now),
			completedAt: nil,
			want:        0,
		},
		{
			name:        "completed run returns duration",
			startedAt:   ptrTime(now),
			completedAt: ptrTime(now.Add(1500 * time.Microsecond)),
			want:        1500 * time.Microsecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &Run{
				StartedAt:   tt.startedAt,
				CompletedAt: tt.completedAt,
			}

			got := run.Duration()
			if got != tt.want {
				t.Errorf("Run.Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRun_IsFinished(t *testing.T) {
	tests := []struct {
		status RunStatus
		want   bool
	}{
		{RunStatusPending, false},
		{RunStatusRunning, false},
		{RunStatusCompleted, true},
		{RunStatusFailed, true},
		{RunStatusDefective, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			run := &Run{Status: tt.status}
			if got := run.IsFinished(); got != tt.want {
				t.Errorf("IsFinished() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunProgress_Percent(t *testing.T) {
	if got := (RunProgress{}).Percent(); got != 0 {
		t.Errorf("Percent() of empty run = %v, want 0", got)
	}
	if got := (RunProgress{Total: 4, Collected: 1}).Percent(); got != 25 {
		t.Errorf("Percent() = %v, want 25", got)
	}
}

func TestRun_Clone(t *testing.T) {
	started := time.Now()
	run := &Run{
		Status:    RunStatusRunning,
		Segments:  []SegmentProgress{{Worker: 1, Length: 4}},
		Result:    []int64{1, 4},
		StartedAt: &started,
	}

	clone := run.Clone()
	clone.Segments[0].Collected = true
	clone.Result[0] = 99
	*clone.StartedAt = started.Add(time.Hour)

	if run.Segments[0].Collected {
		t.Error("Expected segments to be copied")
	}
	if run.Result[0] != 1 {
		t.Error("Expected result to be copied")
	}
	if !run.StartedAt.Equal(started) {
		t.Error("Expected start time to be copied")
	}
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
