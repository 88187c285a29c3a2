package rest

import (
	"time"
)

type GetRunResponse struct {
	RunID       string         `json:"run_id"`
	Strategy    string         `json:"strategy"`
	Transform   string         `json:"transform"`
	Units       int            `json:"units"`
	DatasetSize int            `json:"dataset_size"`
	Status      string         `json:"status"`
	Progress    ProgressInfo   `json:"progress"`
	Segments    []SegmentInfo  `json:"segments"`
	Result      []int64        `json:"result,omitempty"`
	ElapsedMs   *int64         `json:"elapsed_ms,omitempty"`
	Timestamps  TimestampsInfo `json:"timestamps"`
	Errors      []ErrorInfo    `json:"errors"`
	Hazards     []string       `json:"hazards,omitempty"`
}

type ProgressInfo struct {
	Total      int     `json:"total"`
	Dispatched int     `json:"dispatched"`
	Collected  int     `json:"collected"`
	Percent    float64 `json:"percent"`
}

type SegmentInfo struct {
	Worker     int  `json:"worker"`
	Offset     int  `json:"offset"`
	Length     int  `json:"length"`
	Dispatched bool `json:"dispatched"`
	Collected  bool `json:"collected"`
}

type TimestampsInfo struct {
	Submitted time.Time  `json:"submitted"`
	Started   *time.Time `json:"started"`
	Completed *time.Time `json:"completed"`
}

type ErrorInfo struct {
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

type ListRunsResponse struct {
	Runs       []RunSummary `json:"runs"`
	Total      int          `json:"total"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
	NextOffset *int         `json:"next_offset,omitempty"`
}

type RunSummary struct {
	RunID       string     `json:"run_id"`
	Strategy    string     `json:"strategy"`
	Status      string     `json:"status"`
	Units       int        `json:"units"`
	SubmittedAt time.Time  `json:"submitted_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type WorkersResponse struct {
	Expected  int   `json:"expected"`
	Connected []int `json:"connected"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
