package core

// Partition splits n elements into exactly workers contiguous segments in
// worker order. Every segment gets n/workers elements and the first
// n%workers segments get one more, so the segments cover [0, n) with no
// gap and no overlap.
func Partition(n, workers int) ([]Segment, error) {
	if workers <= 0 {
		return nil, ConfigErrorf("at least one worker is required, got %d", workers)
	}
	if n < 0 {
		return nil, ConfigErrorf("dataset size must be non-negative, got %d", n)
	}

	base, remainder := n/workers, n%workers

	segments := make([]Segment, workers)
	offset := 0
	for i := range workers {
		length := base
		if i < remainder {
			length++
		}
		segments[i] = Segment{
			Worker: i + 1,
			Offset: offset,
			Length: length,
		}
		offset += length
	}
	return segments, nil
}

// MaxSegmentLength returns the length of the largest segment Partition
// produces for n elements over workers, i.e. the receive capacity a worker
// needs. It returns 0 for workers <= 0.
func MaxSegmentLength(n, workers int) int {
	if workers <= 0 || n <= 0 {
		return 0
	}
	return (n + workers - 1) / workers
}
