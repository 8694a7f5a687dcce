package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Channel selects how a color pixel is reduced to a single intensity.
type Channel string

const (
	// ChannelLuma uses ITU-R BT.601 luma (0.299*R + 0.587*G + 0.114*B).
	ChannelLuma Channel = "luma"

	// ChannelLightness uses CIE L*, which tracks perceived brightness more
	// closely for colored paper and faded ink.
	ChannelLightness Channel = "lightness"
)

// ParseChannel converts a configuration string to a Channel.
// The empty string selects ChannelLuma.
func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case "", ChannelLuma:
		return ChannelLuma, nil
	case ChannelLightness:
		return ChannelLightness, nil
	default:
		return "", fmt.Errorf("unknown intensity channel: %s", s)
	}
}

// Region represents a rectangular region within an image.
//
// Coordinates follow the standard image convention:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Region struct {
	X1 int `json:"x1" yaml:"x1"`
	Y1 int `json:"y1" yaml:"y1"`
	X2 int `json:"x2" yaml:"x2"`
	Y2 int `json:"y2" yaml:"y2"`
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// GridOptions controls how an image is turned into a pixel grid.
type GridOptions struct {
	// Channel selects the intensity reduction. Empty means luma.
	Channel Channel

	// BlurRadius applies a Gaussian blur before sampling when > 0. A small
	// radius (0.5-1.5) suppresses scanner noise without merging lines.
	BlurRadius float64

	// Invert flips intensities so light ink on a dark background reads as
	// dark lines.
	Invert bool

	// Region restricts analysis to a sub-rectangle. Nil means the whole image.
	Region *Region
}

// prepare applies cropping, blurring and inversion.
func prepare(img image.Image, opts GridOptions) (image.Image, error) {
	bounds := img.Bounds()

	if r := opts.Region; r != nil {
		if r.X1 < bounds.Min.X || r.Y1 < bounds.Min.Y || r.X2 > bounds.Max.X || r.Y2 > bounds.Max.Y {
			return nil, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
				r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
		}
		if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
			return nil, fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
		}
		img = imaging.Crop(img, r.Rect())
	}

	img = flatten(img)

	if opts.BlurRadius < 0 {
		return nil, fmt.Errorf("blur radius must be >= 0, got %v", opts.BlurRadius)
	}
	if opts.BlurRadius > 0 {
		img = blur.Gaussian(img, opts.BlurRadius)
	}
	if opts.Invert {
		img = effect.Invert(img)
	}

	return img, nil
}

// flatten composites img onto an opaque white page. Transparent
// backgrounds, common in notation exports, read as paper rather than ink.
func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	b := img.Bounds()
	page := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(page, img, image.Pt(0, 0), 1)
}

// StreamRows reduces the image to intensities one row at a time.
//
// fn receives the row index and a buffer holding that row's 8-bit
// intensities (0 = black, 255 = white) widened to uint16. The buffer is
// reused for every row, so fn must not retain it. Returning an error from fn
// stops the stream and returns that error.
func StreamRows(img image.Image, opts GridOptions, fn func(y int, row []uint16) error) error {
	channel := opts.Channel
	if channel == "" {
		channel = ChannelLuma
	}

	src, err := prepare(img, opts)
	if err != nil {
		return err
	}

	width := src.Bounds().Dx()
	height := src.Bounds().Dy()
	if width == 0 || height == 0 {
		return fmt.Errorf("image has no pixels (%dx%d)", width, height)
	}
	row := make([]uint16, width)

	switch channel {
	case ChannelLuma:
		// Grayscale stores luma in R, G and B of an NRGBA image
		gray := imaging.Grayscale(src)
		for y := 0; y < height; y++ {
			offset := y * gray.Stride
			for x := 0; x < width; x++ {
				row[x] = uint16(gray.Pix[offset+x*4])
			}
			if err := fn(y, row); err != nil {
				return err
			}
		}

	case ChannelLightness:
		origin := src.Bounds().Min
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				row[x] = lightness(src.At(origin.X+x, origin.Y+y))
			}
			if err := fn(y, row); err != nil {
				return err
			}
		}

	default:
		return fmt.Errorf("unknown intensity channel: %s", channel)
	}

	return nil
}

// lightness returns CIE L* of a color scaled to 0-255. Colors are expected
// to be opaque; prepare flattens transparency first.
func lightness(c color.Color) uint16 {
	col, _ := colorful.MakeColor(c)
	l, _, _ := col.Lab()
	l = math.Max(0, math.Min(1, l))
	return uint16(math.Round(l * 255))
}

// PixelGrid reduces the whole image to a grid of intensities, top row first.
//
// Use StreamRows instead when only row statistics are needed; PixelGrid
// holds every pixel in memory.
func PixelGrid(img image.Image, opts GridOptions) ([][]uint16, error) {
	grid := make([][]uint16, 0, img.Bounds().Dy())
	err := StreamRows(img, opts, func(_ int, row []uint16) error {
		grid = append(grid, append([]uint16(nil), row...))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grid, nil
}
