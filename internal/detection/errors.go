package detection

import "errors"

// Precondition errors. Callers match them with errors.Is; the returned errors
// usually wrap them with the offending row or segment index.
var (
	// ErrEmptyRow is returned when a pixel row has no pixels, so it has no mean.
	ErrEmptyRow = errors.New("empty pixel row")

	// ErrTooFewRows is returned when fewer than two row values are available
	// for the sample standard deviation.
	ErrTooFewRows = errors.New("at least 2 rows are required")

	// ErrCandidateSize is returned when a staff candidate is built from a
	// slice that does not hold exactly five segments.
	ErrCandidateSize = errors.New("staff candidate must have exactly 5 segments")

	// ErrCandidateOrder is returned when candidate segments are not ordered
	// top to bottom or overlap each other.
	ErrCandidateOrder = errors.New("staff candidate segments must be ordered and non-overlapping")

	// ErrInvalidSegment is returned for a segment with a negative start or
	// thickness.
	ErrInvalidSegment = errors.New("invalid line segment")

	// ErrProfilerFinalized is returned when a row is pushed into a
	// RowProfiler after its mask has been computed.
	ErrProfilerFinalized = errors.New("row profiler already finalized")
)
