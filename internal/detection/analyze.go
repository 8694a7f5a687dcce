package detection

// Result holds every stage of a staff-line analysis for one pixel grid.
type Result struct {
	// Rows is the number of rows analyzed.
	Rows int `json:"rows" yaml:"rows"`

	// RowValues are the per-row mean intensities, top row first.
	RowValues []float64 `json:"row_values,omitempty" yaml:"row_values,omitempty"`

	Threshold Threshold `json:"threshold" yaml:"threshold"`

	// Mask marks the dark rows; same length and order as RowValues.
	Mask []bool `json:"mask,omitempty" yaml:"mask,omitempty"`

	// Segments are the grouped dark rows, top to bottom.
	Segments []Segment `json:"segments" yaml:"segments"`

	// Staves are the regular five-line groups found among Segments.
	Staves []Staff `json:"staves" yaml:"staves"`
}

// Analyze runs the full pipeline on a pixel grid: row profiling,
// thresholding, grouping and staff search.
func Analyze(grid PixelGrid) (*Result, error) {
	values, err := RowValues(grid)
	if err != nil {
		return nil, err
	}
	return AnalyzeProfile(values)
}

// AnalyzeProfile runs the pipeline on precomputed row values.
func AnalyzeProfile(values []float64) (*Result, error) {
	mask, t, err := ClassifyRows(values)
	if err != nil {
		return nil, err
	}

	segments := GroupDarkRuns(mask)
	return &Result{
		Rows:      len(values),
		RowValues: values,
		Threshold: t,
		Mask:      mask,
		Segments:  segments,
		Staves:    FindStaves(segments),
	}, nil
}
