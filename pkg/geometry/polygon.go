package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// PolygonArea returns the unsigned area of the ring in square pixels using
// the shoelace formula. The ring closes implicitly. Fewer than three points
// yields 0.
func PolygonArea(points []Point) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	terms := make([]float64, n)
	for i := 0; i < n; i++ {
		terms[i] = r2.Cross(points[i].Vec(), points[(i+1)%n].Vec())
	}
	return math.Abs(floats.Sum(terms)) / 2
}

// RealArea converts a ring to square real units using ratio (units per pixel).
func RealArea(points []Point, ratio float64) float64 {
	return PixelAreaToReal(PolygonArea(points), ratio)
}

// PointInPolygon tests p against polygon with the even-odd rule.
//
// A horizontal ray is cast to the right of p. Edges are counted with the
// half-open test (yi > y) != (yj > y), so horizontal edges never count and a
// vertex shared by two edges is counted once. For an axis-aligned square this
// places points on the left and top edges inside and points on the right and
// bottom edges outside.
func PointInPolygon(p Point, polygon []Point) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := polygon[i], polygon[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}
