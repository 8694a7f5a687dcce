// Package imaging turns image files into the intensity rows that staff
// detection works on, and renders detection results back onto images.
//
// # Loading
//
// ImageCache decodes each path once and keeps the decoded image for reuse.
// PNG, JPEG and GIF are decoded by the standard library; BMP, TIFF and WebP
// through golang.org/x/image. EXIF orientation is applied on load.
//
// # Intensity Grid
//
// StreamRows and PixelGrid reduce an image to one 8-bit intensity per pixel
// (0 = black, 255 = white) using GridOptions:
//   - Channel: "luma" (BT.601 weights) or "lightness" (CIE L*)
//   - BlurRadius: optional Gaussian blur before sampling
//   - Invert: flip intensities for light-on-dark scans
//   - Region: restrict analysis to a sub-rectangle
//
// Transparent pixels are composited onto white first, so a page exported
// with a transparent background reads as paper.
//
// Row 0 of the grid is the top row of the image or region.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner.
// For regions, (x1,y1) is inclusive and (x2,y2) is exclusive.
//
// # Overlays
//
// Overlay and SaveOverlay tint detected line bands so results can be
// checked by eye. Bands that belong to a staff use a separate color.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All other functions are stateless
// and never modify their input image.
package imaging
