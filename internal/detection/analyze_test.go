package detection

import (
	"errors"
	"testing"
)

// createStaffGrid creates a white grid of the given size with black rows drawn
// at each line start for the given thickness
func createStaffGrid(width, height, thickness int, lineStarts ...int) PixelGrid {
	grid := make(PixelGrid, height)
	for y := range grid {
		grid[y] = uniformRow(width, 255)
	}
	for _, start := range lineStarts {
		for y := start; y < start+thickness && y < height; y++ {
			grid[y] = uniformRow(width, 0)
		}
	}
	return grid
}

func TestAnalyze_SingleStaff(t *testing.T) {
	grid := createStaffGrid(20, 40, 1, 5, 9, 13, 17, 21)

	result, err := Analyze(grid)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Rows != 40 {
		t.Errorf("Rows: got %d, want 40", result.Rows)
	}
	if len(result.RowValues) != 40 || len(result.Mask) != 40 {
		t.Errorf("RowValues/Mask length: got %d/%d, want 40", len(result.RowValues), len(result.Mask))
	}
	if len(result.Segments) != 5 {
		t.Fatalf("Segments: got %d, want 5: %v", len(result.Segments), result.Segments)
	}
	for i, s := range result.Segments {
		if s.Start != 5+4*i || s.Thickness != 1 {
			t.Errorf("segment %d: got %+v", i, s)
		}
	}
	if len(result.Staves) != 1 {
		t.Fatalf("Staves: got %d, want 1", len(result.Staves))
	}
	if result.Staves[0].Top != 5 || result.Staves[0].Bottom != 22 {
		t.Errorf("staff bounds: got %d-%d, want 5-22", result.Staves[0].Top, result.Staves[0].Bottom)
	}
}

func TestAnalyze_TwoStaves(t *testing.T) {
	grid := createStaffGrid(30, 120, 2,
		10, 16, 22, 28, 34,
		70, 76, 82, 88, 94,
	)

	result, err := Analyze(grid)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(result.Segments) != 10 {
		t.Fatalf("Segments: got %d, want 10", len(result.Segments))
	}
	if len(result.Staves) != 2 {
		t.Fatalf("Staves: got %d, want 2", len(result.Staves))
	}
	if result.Staves[1].FirstLine != 5 {
		t.Errorf("second staff FirstLine: got %d, want 5", result.Staves[1].FirstLine)
	}
}

func TestAnalyze_NoLines(t *testing.T) {
	// A gentle gradient has dark rows but no regular five-line group
	grid := make(PixelGrid, 10)
	for y := range grid {
		grid[y] = uniformRow(4, uint16(100+y*10))
	}

	result, err := Analyze(grid)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(result.Staves) != 0 {
		t.Errorf("Staves: got %d, want 0", len(result.Staves))
	}
}

func TestAnalyze_Errors(t *testing.T) {
	if _, err := Analyze(PixelGrid{{1}}); !errors.Is(err, ErrTooFewRows) {
		t.Errorf("single row: expected ErrTooFewRows, got %v", err)
	}
	if _, err := Analyze(PixelGrid{{1}, {}}); !errors.Is(err, ErrEmptyRow) {
		t.Errorf("empty row: expected ErrEmptyRow, got %v", err)
	}
}

func TestRowProfiler_Analyze(t *testing.T) {
	grid := createStaffGrid(8, 30, 1, 3, 7, 11, 15, 19)

	p := NewRowProfiler(len(grid))
	for _, row := range grid {
		if err := p.Push(row); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
	}

	result, err := p.Analyze()
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(result.Staves) != 1 {
		t.Errorf("Staves: got %d, want 1", len(result.Staves))
	}
	if err := p.Push(grid[0]); !errors.Is(err, ErrProfilerFinalized) {
		t.Errorf("expected ErrProfilerFinalized, got %v", err)
	}
}
