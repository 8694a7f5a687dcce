package detection

import "fmt"

// PixelGrid is a decoded image as rows of pixel intensities, top row first.
//
// Every row is expected to have the same length. Lower values are darker
// (0 = black), which is the encoding the classifier assumes for ink.
type PixelGrid [][]uint16

// RowMean returns the arithmetic mean of a row's pixel intensities.
//
// Returns ErrEmptyRow for a row without pixels.
func RowMean(row []uint16) (float64, error) {
	if len(row) == 0 {
		return 0, ErrEmptyRow
	}

	var sum float64
	for _, p := range row {
		sum += float64(p)
	}
	return sum / float64(len(row)), nil
}

// RowValues reduces every row of the grid to its mean intensity.
//
// The result has one value per row in row order. The first empty row aborts
// the computation with an error wrapping ErrEmptyRow.
func RowValues(grid PixelGrid) ([]float64, error) {
	values := make([]float64, 0, len(grid))
	for y, row := range grid {
		v, err := RowMean(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", y, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// RowProfiler accumulates row means one row at a time.
//
// Only the mean of each pushed row is kept, so memory grows with image height
// rather than with pixel count. The profiler is append-only until Mask or
// Analyze is called; after that Push returns ErrProfilerFinalized.
//
// A RowProfiler is not safe for concurrent use.
type RowProfiler struct {
	values    []float64
	finalized bool
}

// NewRowProfiler returns an empty profiler. heightHint preallocates room for
// that many rows and may be zero.
func NewRowProfiler(heightHint int) *RowProfiler {
	if heightHint < 0 {
		heightHint = 0
	}
	return &RowProfiler{values: make([]float64, 0, heightHint)}
}

// Push records the mean of the next row. The row slice is not retained and
// may be reused by the caller.
func (p *RowProfiler) Push(row []uint16) error {
	if p.finalized {
		return ErrProfilerFinalized
	}
	v, err := RowMean(row)
	if err != nil {
		return fmt.Errorf("row %d: %w", len(p.values), err)
	}
	p.values = append(p.values, v)
	return nil
}

// Len returns the number of rows pushed so far.
func (p *RowProfiler) Len() int {
	return len(p.values)
}

// Values returns a copy of the accumulated row values.
func (p *RowProfiler) Values() []float64 {
	out := make([]float64, len(p.values))
	copy(out, p.values)
	return out
}

// Mask finalizes the profiler and classifies the accumulated rows.
func (p *RowProfiler) Mask() ([]bool, Threshold, error) {
	p.finalized = true
	return ClassifyRows(p.values)
}

// Analyze finalizes the profiler and runs the full pipeline on the
// accumulated rows.
func (p *RowProfiler) Analyze() (*Result, error) {
	p.finalized = true
	return AnalyzeProfile(p.values)
}
