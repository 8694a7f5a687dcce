// Package scan runs staff detection over many images in parallel.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/staffline-mcp/internal/detection"
	"github.com/ironsheep/staffline-mcp/internal/imaging"
	"github.com/ironsheep/staffline-mcp/internal/logging"
)

// Report is the outcome of scanning one image.
type Report struct {
	Path   string `json:"path" yaml:"path"`
	Width  int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height int    `json:"height,omitempty" yaml:"height,omitempty"`

	Threshold *detection.Threshold `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Segments  []detection.Segment  `json:"segments,omitempty" yaml:"segments,omitempty"`
	Staves    []detection.Staff    `json:"staves,omitempty" yaml:"staves,omitempty"`

	// Overlay is the path of the written overlay PNG, if any.
	Overlay string `json:"overlay,omitempty" yaml:"overlay,omitempty"`

	// Error is set when the image could not be analyzed or its overlay
	// could not be written.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	Duration time.Duration `json:"-" yaml:"-"`
}

// Failed reports whether the image could not be analyzed.
func (r Report) Failed() bool {
	return r.Error != ""
}

// Options configures a Scanner.
type Options struct {
	Grid imaging.GridOptions

	// Workers bounds the number of images analyzed at once. Values below 1
	// mean one.
	Workers int

	// OverlayDir, when set, receives one overlay PNG per analyzed image.
	OverlayDir string
	Overlay    imaging.OverlayOptions
}

// Scanner analyzes batches of images.
type Scanner struct {
	cache  *imaging.ImageCache
	opts   Options
	logger *slog.Logger
}

// New creates a Scanner. A nil logger discards output.
func New(opts Options, logger *slog.Logger) *Scanner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		cache:  imaging.NewImageCache(),
		opts:   opts,
		logger: logger,
	}
}

// Scan analyzes every path and returns one report per path, in input order.
//
// A failing image does not stop the scan; its error is recorded on its
// report. The returned error is non-nil only when ctx is cancelled or the
// overlay directory cannot be created.
func (s *Scanner) Scan(ctx context.Context, paths []string) ([]Report, error) {
	var overlays []string
	if s.opts.OverlayDir != "" {
		if err := os.MkdirAll(s.opts.OverlayDir, 0o755); err != nil {
			return nil, fmt.Errorf("create overlay directory: %w", err)
		}
		overlays = overlayPaths(s.opts.OverlayDir, paths)
	}

	reports := make([]Report, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for i, path := range paths {
		i, path := i, path
		overlay := ""
		if overlays != nil {
			overlay = overlays[i]
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := s.scanOne(ctx, path, overlay)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// scanOne analyzes a single image. Only cancellation is returned as an
// error; everything else is recorded on the report.
func (s *Scanner) scanOne(ctx context.Context, path, overlay string) (Report, error) {
	start := time.Now()
	report := Report{Path: path}

	img, err := s.cache.Load(path)
	if err != nil {
		s.logger.Warn("image load failed", "path", path, "error", err)
		report.Error = err.Error()
		return report, nil
	}
	defer s.cache.Evict(path)

	report.Width = img.Bounds().Dx()
	report.Height = img.Bounds().Dy()

	profiler := detection.NewRowProfiler(report.Height)
	err = imaging.StreamRows(img, s.opts.Grid, func(_ int, row []uint16) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return profiler.Push(row)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, ctxErr
		}
		report.Error = err.Error()
		return report, nil
	}

	res, err := profiler.Analyze()
	if err != nil {
		report.Error = err.Error()
		return report, nil
	}

	report.Threshold = &res.Threshold
	report.Segments = res.Segments
	report.Staves = res.Staves

	if overlay != "" {
		opts := s.opts.Overlay
		opts.Region = s.opts.Grid.Region
		if err := imaging.SaveOverlay(overlay, img, imaging.BandsFromResult(res), opts); err != nil {
			s.logger.Warn("overlay failed", "path", path, "error", err)
			report.Error = err.Error()
		} else {
			report.Overlay = overlay
		}
	}

	report.Duration = time.Since(start)
	s.logger.Debug("image scanned",
		"path", path,
		"rows", res.Rows,
		"cutoff", res.Threshold.Cutoff,
		"segments", len(res.Segments),
		"staves", len(res.Staves),
		"duration", report.Duration,
	)
	return report, nil
}

// overlayPaths assigns each input an output file named after its base name.
// Names already taken get the lowest free numeric suffix, so no two inputs
// share an output file.
func overlayPaths(dir string, paths []string) []string {
	out := make([]string, len(paths))
	used := make(map[string]bool)
	for i, p := range paths {
		stem := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		name := stem
		for n := 2; used[name]; n++ {
			name = stem + "-" + strconv.Itoa(n)
		}
		used[name] = true
		out[i] = filepath.Join(dir, name+".overlay.png")
	}
	return out
}
