// Package imageview decodes images and tracks the scale and rotation used to
// display them.
package imageview

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"strings"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
)

const (
	ZoomStep       = 1.2
	FitMargin      = 0.9
	DefaultMinZoom = 0.05
	DefaultMaxZoom = 20.0

	// MaxRenderPixels caps the bitmap produced by Render.
	MaxRenderPixels = 48 << 20

	// DefaultMaxPixels refuses images whose header declares more pixels
	// than this before any pixel data is decoded.
	DefaultMaxPixels int64 = 178956970
)

// ErrTooLarge is wrapped by the DecodeError Load returns for images above
// the pixel budget.
var ErrTooLarge = errors.New("image too large")

// ErrViewportNotReady is returned by Fit while the viewport has no usable size.
// Callers retry once layout has happened.
var ErrViewportNotReady = errors.New("viewport not ready")

// DecodeError reports an image that could not be decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode image %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Option configures Load.
type Option func(*Handle)

// WithZoomBounds clamps the scale reachable through Zoom. Non-positive or
// inverted bounds are ignored.
func WithZoomBounds(minZoom, maxZoom float64) Option {
	return func(h *Handle) {
		if minZoom > 0 && maxZoom >= minZoom {
			h.minZoom, h.maxZoom = minZoom, maxZoom
		}
	}
}

// WithMaxPixels sets the pixel budget checked against the image header.
// Non-positive values keep the default.
func WithMaxPixels(n int64) Option {
	return func(h *Handle) {
		if n > 0 {
			h.maxPixels = n
		}
	}
}

// Handle is a decoded image plus its display transform. A handle belongs to
// one load; selecting another file creates a new handle.
type Handle struct {
	pixels image.Image

	Width  int
	Height int
	Format string
	Mode   string

	Scale    float64
	Rotation int

	minZoom   float64
	maxZoom   float64
	maxPixels int64
}

// Load decodes path. The header is checked against the pixel budget first
// so a small file declaring huge dimensions is refused without allocating
// its bitmap. JPEG and TIFF images are turned upright according to their
// EXIF orientation before dimensions are recorded.
func Load(path string, opts ...Option) (*Handle, error) {
	h := &Handle{
		Scale:     1,
		minZoom:   DefaultMinZoom,
		maxZoom:   DefaultMaxZoom,
		maxPixels: DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(h)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if int64(cfg.Width)*int64(cfg.Height) > h.maxPixels {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("%w: %d×%d", ErrTooLarge, cfg.Width, cfg.Height)}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	if format == "jpeg" || format == "tiff" {
		if _, err := f.Seek(0, io.SeekStart); err == nil {
			img = applyOrientation(img, readOrientation(f))
		}
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &DecodeError{Path: path, Err: errors.New("image has no pixels")}
	}

	h.pixels = img
	h.Width, h.Height = b.Dx(), b.Dy()
	h.Format = strings.ToUpper(format)
	h.Mode = colorMode(img)
	return h, nil
}

// Fit scales the image to FitMargin of the viewport.
func (h *Handle) Fit(viewportW, viewportH int) error {
	if viewportW <= 1 || viewportH <= 1 {
		return ErrViewportNotReady
	}
	sx := float64(viewportW) / float64(h.Width)
	sy := float64(viewportH) / float64(h.Height)
	h.Scale = math.Min(sx, sy) * FitMargin
	return nil
}

// Zoom multiplies the scale by factor, clamped to the zoom bounds.
func (h *Handle) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	h.Scale = math.Max(h.minZoom, math.Min(h.maxZoom, h.Scale*factor))
}

func (h *Handle) ZoomIn()  { h.Zoom(ZoomStep) }
func (h *Handle) ZoomOut() { h.Zoom(1 / ZoomStep) }

// Rotate advances the rotation by 90 degrees.
func (h *Handle) Rotate() {
	h.Rotation = (h.Rotation + 90) % 360
}

func (h *Handle) scaledSize() (int, int) {
	w, ht := h.Width, h.Height
	if h.Rotation == 90 || h.Rotation == 270 {
		w, ht = ht, w
	}
	return max(1, int(float64(w)*h.Scale)), max(1, int(float64(ht)*h.Scale))
}

// DisplaySize is the size of the bitmap Render produces.
func (h *Handle) DisplaySize() (int, int) {
	dw, dh := h.scaledSize()
	if px := float64(dw) * float64(dh); px > MaxRenderPixels {
		shrink := math.Sqrt(MaxRenderPixels / px)
		dw = max(1, int(float64(dw)*shrink))
		dh = max(1, int(float64(dh)*shrink))
	}
	return dw, dh
}

// Render produces a new bitmap: rotation first, counter-clockwise, then a
// Lanczos resize to the current scale.
func (h *Handle) Render() image.Image {
	img := rotate(h.pixels, h.Rotation)
	w, ht := h.DisplaySize()
	b := img.Bounds()
	if w == b.Dx() && ht == b.Dy() {
		return img
	}
	return imaging.Resize(img, w, ht, imaging.Lanczos)
}

// RenderWindow renders only the centered part of the scaled image that fits
// in maxW x maxH. The matching source region is cropped before rotating and
// resizing, so the work is bounded by the window rather than the zoom.
func (h *Handle) RenderWindow(maxW, maxH int) image.Image {
	if maxW <= 0 || maxH <= 0 {
		return nil
	}
	dw, dh := h.scaledSize()
	if dw <= maxW && dh <= maxH {
		return h.Render()
	}
	vw, vh := min(dw, maxW), min(dh, maxH)
	ox, oy := (dw-vw)/2, (dh-vh)/2

	rw, rh := h.Width, h.Height
	if h.Rotation == 90 || h.Rotation == 270 {
		rw, rh = rh, rw
	}
	sx, sy := float64(rw)/float64(dw), float64(rh)/float64(dh)
	visible := image.Rect(
		int(math.Floor(float64(ox)*sx)), int(math.Floor(float64(oy)*sy)),
		int(math.Ceil(float64(ox+vw)*sx)), int(math.Ceil(float64(oy+vh)*sy)),
	).Intersect(image.Rect(0, 0, rw, rh))
	if visible.Empty() {
		return nil
	}

	src := sourceRect(h.Rotation, h.Width, h.Height, visible).Add(h.pixels.Bounds().Min)
	crop := rotate(imaging.Crop(h.pixels, src), h.Rotation)
	return imaging.Resize(crop, vw, vh, imaging.Lanczos)
}

func rotate(img image.Image, rotation int) image.Image {
	switch rotation {
	case 90:
		return imaging.Rotate90(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate270(img)
	}
	return img
}

// sourceRect maps r, given in the coordinates of the image rotated
// counter-clockwise by rotation, back onto the unrotated w x h image.
func sourceRect(rotation, w, h int, r image.Rectangle) image.Rectangle {
	switch rotation {
	case 90:
		return image.Rect(w-r.Max.Y, r.Min.X, w-r.Min.Y, r.Max.X)
	case 180:
		return image.Rect(w-r.Max.X, h-r.Max.Y, w-r.Min.X, h-r.Min.Y)
	case 270:
		return image.Rect(r.Min.Y, h-r.Max.X, r.Max.Y, h-r.Min.X)
	}
	return r
}

// Thumbnail renders the rotated image to fit within maxW x maxH, ignoring the
// current scale.
func (h *Handle) Thumbnail(maxW, maxH int) image.Image {
	if maxW <= 0 || maxH <= 0 {
		return nil
	}
	rotated := *h
	rotated.Scale = 1
	return imaging.Fit(rotated.Render(), maxW, maxH, imaging.Lanczos)
}

// Info is "W×H | FORMAT | MODE" using the natural dimensions.
func (h *Handle) Info() string {
	return fmt.Sprintf("%d×%d | %s | %s", h.Width, h.Height, h.Format, h.Mode)
}

func colorMode(img image.Image) string {
	switch m := img.(type) {
	case *image.Gray:
		return "L"
	case *image.Gray16:
		return "I;16"
	case *image.Paletted:
		return "P"
	case *image.CMYK:
		return "CMYK"
	case *image.YCbCr:
		return "RGB"
	case *image.RGBA:
		if m.Opaque() {
			return "RGB"
		}
		return "RGBA"
	case *image.NRGBA:
		if m.Opaque() {
			return "RGB"
		}
		return "RGBA"
	case *image.RGBA64, *image.NRGBA64:
		return "RGBA"
	}
	return "RGB"
}
