package scan

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/staffline-mcp/internal/imaging"
)

// writeStaffPNG writes a white page with 2px black lines at the given rows.
func writeStaffPNG(t *testing.T, dir, name string, width, height int, lineStarts ...int) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for _, start := range lineStarts {
		for y := start; y < start+2 && y < height; y++ {
			for x := 0; x < width; x++ {
				img.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	return path
}

func TestScan_FindsStaff(t *testing.T) {
	dir := t.TempDir()
	path := writeStaffPNG(t, dir, "page.png", 50, 100, 20, 28, 36, 44, 52)

	reports, err := New(Options{Workers: 2}, nil).Scan(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("reports: got %d, want 1", len(reports))
	}

	r := reports[0]
	if r.Failed() {
		t.Fatalf("unexpected error: %s", r.Error)
	}
	if r.Width != 50 || r.Height != 100 {
		t.Errorf("size: got %dx%d, want 50x100", r.Width, r.Height)
	}
	if len(r.Segments) != 5 {
		t.Fatalf("segments: got %d, want 5", len(r.Segments))
	}
	if len(r.Staves) != 1 {
		t.Fatalf("staves: got %d, want 1", len(r.Staves))
	}
	if st := r.Staves[0]; st.Top != 20 || st.Bottom != 54 {
		t.Errorf("staff rows: got %d-%d, want 20-54", st.Top, st.Bottom)
	}
	if r.Threshold == nil || r.Threshold.Cutoff <= 0 || r.Threshold.Cutoff >= 255 {
		t.Errorf("unexpected threshold: %+v", r.Threshold)
	}
}

func TestScan_RecordsPerImageErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeStaffPNG(t, dir, "good.png", 20, 40, 5, 10, 15, 20, 25)
	missing := filepath.Join(dir, "missing.png")
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	reports, err := New(Options{Workers: 3}, nil).Scan(context.Background(), []string{missing, good, garbage})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("reports: got %d, want 3", len(reports))
	}

	if reports[0].Path != missing || !reports[0].Failed() {
		t.Errorf("missing file should fail in place: %+v", reports[0])
	}
	if reports[1].Path != good || reports[1].Failed() {
		t.Errorf("good file should succeed in place: %+v", reports[1])
	}
	if reports[2].Path != garbage || !reports[2].Failed() {
		t.Errorf("garbage file should fail in place: %+v", reports[2])
	}
}

func TestScan_SingleRowImageFails(t *testing.T) {
	dir := t.TempDir()
	path := writeStaffPNG(t, dir, "strip.png", 30, 1)

	reports, err := New(Options{}, nil).Scan(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if !reports[0].Failed() {
		t.Fatal("a one-row image cannot be thresholded and should fail")
	}
}

func TestScan_Cancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeStaffPNG(t, dir, "page.png", 20, 20, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{}, nil).Scan(ctx, []string{path, path})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScan_WritesOverlays(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "overlays")
	path := writeStaffPNG(t, dir, "page.png", 50, 100, 20, 28, 36, 44, 52)

	opts := Options{
		OverlayDir: outDir,
		Overlay:    imaging.OverlayOptions{LineColor: "#FF0000", StaffColor: "#00FF00", Opacity: 1},
	}
	reports, err := New(opts, nil).Scan(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := filepath.Join(outDir, "page.overlay.png")
	if reports[0].Overlay != want {
		t.Fatalf("overlay path: got %q, want %q", reports[0].Overlay, want)
	}

	f, err := os.Open(want)
	if err != nil {
		t.Fatalf("overlay not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("overlay is not a PNG: %v", err)
	}
	r, g, _, _ := img.At(10, 20).RGBA()
	if g>>8 != 255 || r != 0 {
		t.Errorf("staff line should be painted green, got r=%d g=%d", r>>8, g>>8)
	}
}

func TestScan_BadOverlayColorIsRecorded(t *testing.T) {
	dir := t.TempDir()
	path := writeStaffPNG(t, dir, "page.png", 20, 40, 5, 10, 15, 20, 25)

	opts := Options{
		OverlayDir: t.TempDir(),
		Overlay:    imaging.OverlayOptions{LineColor: "nope", StaffColor: "#00FF00", Opacity: 1},
	}
	reports, err := New(opts, nil).Scan(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if !reports[0].Failed() || reports[0].Overlay != "" {
		t.Fatalf("expected recorded overlay failure, got %+v", reports[0])
	}
	if len(reports[0].Staves) != 1 {
		t.Fatalf("detection results should survive an overlay failure: %+v", reports[0])
	}
}

func TestOverlayPaths(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "repeated base names",
			paths: []string{"/a/page.png", "/b/page.jpg", "/c/other.tiff", "/d/page.png"},
			want:  []string{"/out/page.overlay.png", "/out/page-2.overlay.png", "/out/other.overlay.png", "/out/page-3.overlay.png"},
		},
		{
			name:  "input named like a suffixed output",
			paths: []string{"/a/page.png", "/b/page.jpg", "/c/page-2.png"},
			want:  []string{"/out/page.overlay.png", "/out/page-2.overlay.png", "/out/page-2-2.overlay.png"},
		},
		{
			name:  "suffixed name taken first",
			paths: []string{"/a/page-2.png", "/b/page.png", "/c/page.jpg"},
			want:  []string{"/out/page-2.overlay.png", "/out/page.overlay.png", "/out/page-3.overlay.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := overlayPaths("/out", tt.paths)
			seen := make(map[string]bool)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("path %d: got %q, want %q", i, got[i], tt.want[i])
				}
				if seen[got[i]] {
					t.Errorf("path %q assigned twice", got[i])
				}
				seen[got[i]] = true
			}
		})
	}
}
