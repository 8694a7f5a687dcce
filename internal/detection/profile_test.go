package detection

import (
	"errors"
	"reflect"
	"testing"
)

func TestRowMean(t *testing.T) {
	tests := []struct {
		row  []uint16
		want float64
	}{
		{[]uint16{0}, 0},
		{[]uint16{1, 2}, 1.5},
		{[]uint16{65535, 65535}, 65535},
		{[]uint16{0, 0, 0, 255}, 63.75},
	}

	for _, tt := range tests {
		got, err := RowMean(tt.row)
		if err != nil {
			t.Fatalf("RowMean(%v) failed: %v", tt.row, err)
		}
		if got != tt.want {
			t.Errorf("RowMean(%v): got %v, want %v", tt.row, got, tt.want)
		}
	}
}

func TestRowMean_EmptyRow(t *testing.T) {
	if _, err := RowMean(nil); !errors.Is(err, ErrEmptyRow) {
		t.Errorf("expected ErrEmptyRow, got %v", err)
	}
}

func TestRowValues(t *testing.T) {
	grid := PixelGrid{
		{10, 20},
		{0, 0},
		{255, 255},
	}

	values, err := RowValues(grid)
	if err != nil {
		t.Fatalf("RowValues failed: %v", err)
	}

	want := []float64{15, 0, 255}
	if !reflect.DeepEqual(values, want) {
		t.Errorf("got %v, want %v", values, want)
	}
}

func TestRowValues_ReportsRowIndex(t *testing.T) {
	grid := PixelGrid{{1}, {2}, {}}

	_, err := RowValues(grid)
	if !errors.Is(err, ErrEmptyRow) {
		t.Fatalf("expected ErrEmptyRow, got %v", err)
	}
	if err.Error() != "row 2: empty pixel row" {
		t.Errorf("error message: got %q", err.Error())
	}
}

func TestRowProfiler_MatchesBatch(t *testing.T) {
	grid := PixelGrid{
		{255, 255, 255},
		{0, 0, 0},
		{255, 255, 255},
		{255, 255, 255},
		{0, 10, 0},
		{255, 255, 255},
	}

	p := NewRowProfiler(len(grid))
	// Reuse one buffer to check rows are not retained
	buf := make([]uint16, 3)
	for _, row := range grid {
		copy(buf, row)
		if err := p.Push(buf); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
	}

	if p.Len() != len(grid) {
		t.Errorf("Len: got %d, want %d", p.Len(), len(grid))
	}

	batchValues, err := RowValues(grid)
	if err != nil {
		t.Fatalf("RowValues failed: %v", err)
	}
	if !reflect.DeepEqual(p.Values(), batchValues) {
		t.Errorf("Values: got %v, want %v", p.Values(), batchValues)
	}

	mask, th, err := p.Mask()
	if err != nil {
		t.Fatalf("Mask failed: %v", err)
	}
	batchMask, err := ComputeDarkRowMask(grid)
	if err != nil {
		t.Fatalf("ComputeDarkRowMask failed: %v", err)
	}
	if !reflect.DeepEqual(mask, batchMask) {
		t.Errorf("mask: got %v, want %v", mask, batchMask)
	}
	if th.Cutoff >= th.Mean {
		t.Errorf("cutoff %v should be below mean %v", th.Cutoff, th.Mean)
	}
}

func TestRowProfiler_ValuesIsCopy(t *testing.T) {
	p := NewRowProfiler(0)
	_ = p.Push([]uint16{4})
	_ = p.Push([]uint16{8})

	values := p.Values()
	values[0] = 99

	if p.Values()[0] != 4 {
		t.Error("modifying Values result changed the profiler")
	}
}

func TestRowProfiler_PushAfterFinalize(t *testing.T) {
	p := NewRowProfiler(2)
	_ = p.Push([]uint16{0})
	_ = p.Push([]uint16{1})

	if _, _, err := p.Mask(); err != nil {
		t.Fatalf("Mask failed: %v", err)
	}

	if err := p.Push([]uint16{2}); !errors.Is(err, ErrProfilerFinalized) {
		t.Errorf("expected ErrProfilerFinalized, got %v", err)
	}
	if p.Len() != 2 {
		t.Errorf("Len after rejected push: got %d, want 2", p.Len())
	}

	// Reading again after finalizing is allowed
	if _, _, err := p.Mask(); err != nil {
		t.Errorf("second Mask failed: %v", err)
	}
}

func TestRowProfiler_EmptyRow(t *testing.T) {
	p := NewRowProfiler(0)
	_ = p.Push([]uint16{1})

	err := p.Push([]uint16{})
	if !errors.Is(err, ErrEmptyRow) {
		t.Fatalf("expected ErrEmptyRow, got %v", err)
	}
	if p.Len() != 1 {
		t.Errorf("Len: got %d, want 1", p.Len())
	}
}

func TestRowProfiler_TooFewRows(t *testing.T) {
	p := NewRowProfiler(-5)
	_ = p.Push([]uint16{1, 2, 3})

	if _, _, err := p.Mask(); !errors.Is(err, ErrTooFewRows) {
		t.Errorf("expected ErrTooFewRows, got %v", err)
	}
}
