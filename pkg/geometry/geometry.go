// Package geometry provides the 2D primitives used by the markup core:
// distances, polyline lengths, shoelace areas, point-in-polygon tests and
// pixel to real-world scale conversion.
//
// Coordinates are in source-image pixel space (x to the right, y down).
// All functions are pure. Degenerate input returns a zero value instead of an
// error, because half-drawn shapes are a normal transient state while editing.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a 2D point in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Vec converts the point to a gonum vector.
func (p Point) Vec() r2.Vec {
	return r2.Vec(p)
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point(r2.Add(p.Vec(), q.Vec()))
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point(r2.Sub(p.Vec(), q.Vec()))
}

// Scale returns p scaled by f.
func (p Point) Scale(f float64) Point {
	return Point(r2.Scale(f, p.Vec()))
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return r2.Norm(r2.Sub(b.Vec(), a.Vec()))
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// BoundingBox returns the axis-aligned bounds of points.
func BoundingBox(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Centroid returns the average of the points.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	n := float64(len(points))
	return Point{X: floats.Sum(xs) / n, Y: floats.Sum(ys) / n}
}

// PolylineLength returns the summed length of consecutive segments in pixels.
// Fewer than two points yields 0.
func PolylineLength(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	segments := make([]float64, len(points)-1)
	for i := 1; i < len(points); i++ {
		segments[i-1] = Distance(points[i-1], points[i])
	}
	return floats.Sum(segments)
}

// RealLength converts a polyline to real units using ratio (units per pixel).
func RealLength(points []Point, ratio float64) float64 {
	return PixelsToReal(PolylineLength(points), ratio)
}

// PixelsToReal converts a pixel distance to real units.
func PixelsToReal(pixels, ratio float64) float64 {
	return pixels * ratio
}

// PixelAreaToReal converts an area in square pixels to square real units.
func PixelAreaToReal(areaPx, ratio float64) float64 {
	return areaPx * ratio * ratio
}
