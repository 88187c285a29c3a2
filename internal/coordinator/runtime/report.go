package runtime

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/nemanja-m/scatter/internal/strategy"
	"github.com/nemanja-m/scatter/pkg/core"
)

const elementSize = 8

// Report is the outcome of one coordinator run.
type Report struct {
	RunID    uuid.UUID
	Strategy strategy.Kind
	Dataset  []int64
	Segments []core.Segment
	// Replies holds each worker's transformed segment, in worker order.
	// Every reply aliases its range of Result.
	Replies [][]int64
	Result  []int64
	Timed   bool
	Elapsed time.Duration
	// BytesTransferred counts the headers, payloads and replies whose
	// transfer the coordinator confirmed. Under the unconfirmed strategy it
	// falls short of the planned volume.
	BytesTransferred uint64
}

func newReport(id uuid.UUID, kind strategy.Kind, dataset []int64, segments []core.Segment, result []int64) *Report {
	replies := make([][]int64, len(segments))
	for i, seg := range segments {
		replies[i] = result[seg.Offset:seg.End():seg.End()]
	}
	return &Report{
		RunID:    id,
		Strategy: kind,
		Dataset:  dataset,
		Segments: segments,
		Replies:  replies,
		Result:   result,
	}
}

// volume sums the bytes moved by the transfers of batch that were confirmed
// without error.
func volume(batch []strategy.Pending) uint64 {
	var n uint64
	for _, p := range batch {
		if !p.Confirmed() {
			continue
		}
		if _, err := p.Req.Test(); err != nil {
			continue
		}
		n += uint64(p.Req.Count()) * elementSize
	}
	return n
}

// Print writes the console report: the initial dataset, every worker's
// transformed segment, the final array and the run statistics.
func (r *Report) Print(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Run %s (%s, %d workers)\n", r.RunID, r.Strategy, len(r.Segments)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Initial dataset: %v\n", r.Dataset); err != nil {
		return err
	}
	for i, seg := range r.Segments {
		if _, err := fmt.Fprintf(w, "Worker %d [%d, %d): %v\n", seg.Worker, seg.Offset, seg.End(), r.Replies[i]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Final array: %v\n", r.Result); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Transferred: %s\n", humanize.Bytes(r.BytesTransferred)); err != nil {
		return err
	}
	if r.Timed {
		if _, err := fmt.Fprintf(w, "Elapsed: %s\n", r.Elapsed); err != nil {
			return err
		}
	}
	return nil
}
