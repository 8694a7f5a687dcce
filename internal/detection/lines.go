package detection

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Threshold is the global cutoff used to classify rows as dark.
type Threshold struct {
	// Mean is the arithmetic mean of all row values.
	Mean float64 `json:"mean" yaml:"mean"`

	// StdDev is the sample standard deviation of the row values (n-1 divisor).
	StdDev float64 `json:"std_dev" yaml:"std_dev"`

	// Cutoff is Mean - StdDev. Rows at or below it are dark.
	Cutoff float64 `json:"cutoff" yaml:"cutoff"`
}

// IsDark reports whether a row value is at or below the cutoff.
func (t Threshold) IsDark(v float64) bool {
	return v <= t.Cutoff
}

// ComputeThreshold derives the dark-row cutoff from a sequence of row values.
//
// The standard deviation uses Bessel's correction, so at least two values are
// required; fewer returns an error wrapping ErrTooFewRows. A zero standard
// deviation is not an error: the cutoff is then the mean itself.
func ComputeThreshold(values []float64) (Threshold, error) {
	if len(values) < 2 {
		return Threshold{}, fmt.Errorf("%w: got %d", ErrTooFewRows, len(values))
	}

	// stat.MeanStdDev with nil weights is the unbiased sample estimate.
	mean, std := stat.MeanStdDev(values, nil)
	return Threshold{
		Mean:   mean,
		StdDev: std,
		Cutoff: mean - std,
	}, nil
}

// ClassifyRows marks each row value as dark or not.
//
// The mask has the same length and order as values. Classification uses a
// single threshold for the whole sequence, see ComputeThreshold.
func ClassifyRows(values []float64) ([]bool, Threshold, error) {
	t, err := ComputeThreshold(values)
	if err != nil {
		return nil, Threshold{}, err
	}

	mask := make([]bool, len(values))
	for i, v := range values {
		mask[i] = t.IsDark(v)
	}
	return mask, t, nil
}

// ComputeDarkRowMask computes the dark-row mask of a pixel grid.
//
// Rows whose mean intensity is at least one standard deviation below the mean
// of all rows are marked true; these are the candidate horizontal line rows.
// The grid needs at least two non-empty rows.
func ComputeDarkRowMask(grid PixelGrid) ([]bool, error) {
	values, err := RowValues(grid)
	if err != nil {
		return nil, err
	}
	mask, _, err := ClassifyRows(values)
	if err != nil {
		return nil, err
	}
	return mask, nil
}

// Segment is a maximal run of consecutive dark rows.
type Segment struct {
	// Start is the index of the first dark row of the run.
	Start int `json:"start" yaml:"start"`

	// Thickness is the number of rows in the run.
	Thickness int `json:"thickness" yaml:"thickness"`
}

// End returns the index of the first row after the segment.
func (s Segment) End() int {
	return s.Start + s.Thickness
}

// GroupDarkRuns run-length encodes the true runs of a dark-row mask.
//
// Segments are returned in increasing Start order and never overlap. A run
// still open at the end of the mask is closed and emitted. An all-false or
// empty mask yields an empty, non-nil slice.
func GroupDarkRuns(mask []bool) []Segment {
	segments := make([]Segment, 0)

	start, length := 0, 0
	for i, dark := range mask {
		if dark {
			if length == 0 {
				start = i
			}
			length++
			continue
		}
		if length > 0 {
			segments = append(segments, Segment{Start: start, Thickness: length})
			length = 0
		}
	}
	if length > 0 {
		segments = append(segments, Segment{Start: start, Thickness: length})
	}

	return segments
}
