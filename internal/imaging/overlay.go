package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/staffline-mcp/internal/detection"
)

// Band is a horizontal run of rows to highlight, in analyzed-image rows.
type Band struct {
	Top    int
	Height int

	// Staff marks bands that belong to a validated staff. Other bands are
	// loose dark rows (text, beams, page edges).
	Staff bool
}

// BandsFromResult converts detected segments to bands, marking the
// segments that are lines of a staff.
func BandsFromResult(res *detection.Result) []Band {
	inStaff := make(map[int]bool)
	for _, st := range res.Staves {
		for i := range st.Lines {
			inStaff[st.FirstLine+i] = true
		}
	}

	bands := make([]Band, len(res.Segments))
	for i, seg := range res.Segments {
		bands[i] = Band{Top: seg.Start, Height: seg.Thickness, Staff: inStaff[i]}
	}
	return bands
}

// OverlayOptions controls overlay colors and placement.
type OverlayOptions struct {
	// LineColor is the hex color for loose line bands, e.g. "#FF0000".
	LineColor string

	// StaffColor is the hex color for bands that are part of a staff.
	StaffColor string

	// Opacity is the blend factor toward the band color, 0-1.
	Opacity float64

	// Region is the region the bands were detected in. Band rows are
	// offset by Region.Y1 and painted only between X1 and X2.
	Region *Region
}

// OverlayResult contains the highlighted image encoded as base64 PNG.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Bands       int    `json:"bands"`
}

// parseHexColor parses "#RRGGBB", "RRGGBB" or the 3-digit short forms.
func parseHexColor(hex string) (colorful.Color, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return colorful.Color{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return c, nil
}

// RenderOverlay returns a copy of img with every band tinted.
//
// Bands outside the image are clipped. The source image is not modified.
func RenderOverlay(img image.Image, bands []Band, opts OverlayOptions) (*image.NRGBA, error) {
	lineColor, err := parseHexColor(opts.LineColor)
	if err != nil {
		return nil, fmt.Errorf("line color: %w", err)
	}
	staffColor, err := parseHexColor(opts.StaffColor)
	if err != nil {
		return nil, fmt.Errorf("staff color: %w", err)
	}
	if opts.Opacity < 0 || opts.Opacity > 1 {
		return nil, fmt.Errorf("opacity must be between 0 and 1, got %v", opts.Opacity)
	}

	out := imaging.Clone(img)
	offset := img.Bounds().Min

	area := out.Bounds()
	if r := opts.Region; r != nil {
		area = r.Rect().Sub(offset).Intersect(area)
	}

	for _, b := range bands {
		tint := lineColor
		if b.Staff {
			tint = staffColor
		}

		top := area.Min.Y + b.Top
		for y := top; y < top+b.Height; y++ {
			if y < area.Min.Y || y >= area.Max.Y {
				continue
			}
			for x := area.Min.X; x < area.Max.X; x++ {
				base, _ := colorful.MakeColor(out.NRGBAAt(x, y))
				r, g, bl := base.BlendRgb(tint, opts.Opacity).Clamped().RGB255()
				i := out.PixOffset(x, y)
				out.Pix[i] = r
				out.Pix[i+1] = g
				out.Pix[i+2] = bl
				out.Pix[i+3] = 255
			}
		}
	}

	return out, nil
}

// Overlay renders the bands and returns the result as base64 PNG.
func Overlay(img image.Image, bands []Band, opts OverlayOptions) (*OverlayResult, error) {
	out, err := RenderOverlay(img, bands, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}

	return &OverlayResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Bands:       len(bands),
	}, nil
}

// SaveOverlay renders the bands and writes the result as a PNG file.
func SaveOverlay(path string, img image.Image, bands []Band, opts OverlayOptions) error {
	out, err := RenderOverlay(img, bands, opts)
	if err != nil {
		return err
	}
	if err := imgio.Save(path, out, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}
