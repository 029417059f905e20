// Package region maps a rectangle selected on screen back onto the pixels of
// the rendered source page and prepares it for image analysis.
//
// The view transform is screen = source*zoom + offset. ToSource inverts it,
// clamps the result to the page and rejects selections that are too small or
// off the page. Extract additionally resamples the region onto an opaque white
// canvas whose longest side is the configured maximum dimension.
package region

import (
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/planmark/planmark-go/pkg/geometry"
)

var (
	// ErrRegionTooSmallOrOutOfBounds is returned when the selection does not
	// cover enough of the page to be worth analysing.
	ErrRegionTooSmallOrOutOfBounds = errors.New("select an area over the content")
	// ErrInvalidZoom is returned for a zero or negative zoom factor.
	ErrInvalidZoom = errors.New("zoom must be greater than zero")
)

// Defaults used when Config leaves a field zero.
const (
	DefaultMinSize      = 10.0
	DefaultMaxDimension = 2048
)

// ViewState is the pan/zoom transform of the canvas. It is not part of the
// design history.
type ViewState struct {
	Zoom   float64        `json:"zoom"`
	Offset geometry.Point `json:"offset"`
}

// DefaultView is the identity transform.
func DefaultView() ViewState {
	return ViewState{Zoom: 1}
}

// Config tunes the mapper.
type Config struct {
	MinSize      float64 // width and height must exceed this many source pixels
	MaxDimension int     // longest side of the resampled output
}

// Mapper converts screen selections to source regions.
type Mapper struct {
	minSize      float64
	maxDimension int
}

// NewMapper creates a mapper, filling zero config values with defaults.
func NewMapper(cfg Config) *Mapper {
	if cfg.MinSize <= 0 {
		cfg.MinSize = DefaultMinSize
	}
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = DefaultMaxDimension
	}
	return &Mapper{minSize: cfg.MinSize, maxDimension: cfg.MaxDimension}
}

// ForwardPoint maps a source pixel to screen coordinates.
func ForwardPoint(p geometry.Point, view ViewState) geometry.Point {
	return p.Scale(view.Zoom).Add(view.Offset)
}

// InversePoint maps a screen point to source pixels.
func InversePoint(p geometry.Point, view ViewState) (geometry.Point, error) {
	if !(view.Zoom > 0) || math.IsInf(view.Zoom, 0) {
		return geometry.Point{}, ErrInvalidZoom
	}
	return p.Sub(view.Offset).Scale(1 / view.Zoom), nil
}

// ForwardRect maps a source rectangle to screen coordinates.
func ForwardRect(r geometry.Rect, view ViewState) geometry.Rect {
	o := ForwardPoint(r.Origin(), view)
	return geometry.Rect{X: o.X, Y: o.Y, Width: r.Width * view.Zoom, Height: r.Height * view.Zoom}
}

// ToSource maps a screen rectangle to a clamped region of a
// sourceWidth x sourceHeight page.
func (m *Mapper) ToSource(screen geometry.Rect, view ViewState, sourceWidth, sourceHeight int) (geometry.Rect, error) {
	origin, err := InversePoint(screen.Origin(), view)
	if err != nil {
		return geometry.Rect{}, err
	}
	r := geometry.Rect{
		X:      origin.X,
		Y:      origin.Y,
		Width:  screen.Width / view.Zoom,
		Height: screen.Height / view.Zoom,
	}

	// Selections dragged up or left arrive with negative extents.
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}

	w, h := float64(sourceWidth), float64(sourceHeight)
	r.X = clamp(r.X, 0, w-1)
	r.Y = clamp(r.Y, 0, h-1)
	r.Width = math.Min(r.Width, w-r.X)
	r.Height = math.Min(r.Height, h-r.Y)

	// Negated comparisons so NaN extents from an extreme zoom are rejected.
	if !(r.X < w) || !(r.Y < h) || !(r.Width > m.minSize) || !(r.Height > m.minSize) {
		return geometry.Rect{}, fmt.Errorf("region %.1fx%.1f at (%.1f,%.1f): %w",
			r.Width, r.Height, r.X, r.Y, ErrRegionTooSmallOrOutOfBounds)
	}
	return r, nil
}

// OutputSize returns the resampled size of region: the longest side becomes
// the configured maximum and the aspect ratio is kept.
func (m *Mapper) OutputSize(region geometry.Rect) (int, int) {
	longest := math.Max(region.Width, region.Height)
	if longest <= 0 {
		return 0, 0
	}
	f := float64(m.maxDimension) / longest
	w := int(math.Max(1, math.Round(region.Width*f)))
	h := int(math.Max(1, math.Round(region.Height*f)))
	return w, h
}

// Resample renders region of src onto an opaque white canvas of OutputSize
// using Catmull-Rom interpolation.
func (m *Mapper) Resample(src image.Image, region geometry.Rect) (*image.RGBA, error) {
	b := src.Bounds()
	sr := image.Rect(
		b.Min.X+int(math.Floor(region.X)),
		b.Min.Y+int(math.Floor(region.Y)),
		b.Min.X+int(math.Ceil(region.X+region.Width)),
		b.Min.Y+int(math.Ceil(region.Y+region.Height)),
	).Intersect(b)
	if sr.Empty() {
		return nil, ErrRegionTooSmallOrOutOfBounds
	}

	w, h := m.OutputSize(region)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sr, draw.Over, nil)
	return dst, nil
}

// Capture is a mapped and resampled selection.
type Capture struct {
	Region geometry.Rect
	Image  *image.RGBA
}

// Extract maps screen onto src under view and resamples the result.
func (m *Mapper) Extract(src image.Image, screen geometry.Rect, view ViewState) (*Capture, error) {
	b := src.Bounds()
	r, err := m.ToSource(screen, view, b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	img, err := m.Resample(src, r)
	if err != nil {
		return nil, err
	}
	return &Capture{Region: r, Image: img}, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
