package geometry

import (
	"math"
	"sort"
)

// NoVertex is returned by NearestVertex when nothing is within range.
const NoVertex = -1

// DefaultHitRadius is the vertex pick radius used by the editor, in pixels.
const DefaultHitRadius = 8.0

// Point is a 2-D position in image pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// DistSq returns the squared Euclidean distance between p and q.
func (p Point) DistSq(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// SignedArea returns the shoelace area of poly measured with Y pointing
// down, so a polygon that runs clockwise on screen has negative area.
// Fewer than three points yield zero.
func SignedArea(poly []Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	var s float64
	for i := range poly {
		j := (i + 1) % len(poly)
		s += poly[j].X*poly[i].Y - poly[i].X*poly[j].Y
	}
	return s / 2
}

// IsClockwise reports whether poly runs clockwise on screen, i.e. has
// negative signed area.
func IsClockwise(poly []Point) bool {
	return SignedArea(poly) < 0
}

// Centroid returns the vertex mean of poly.
func Centroid(poly []Point) Point {
	if len(poly) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range poly {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(poly))
	return Point{X: c.X / n, Y: c.Y / n}
}

// NormalizeClockwiseOrder returns the permutation of q's indices that
// NormalizeClockwise applies. Element i of the result is the source index
// of output vertex i, which lets callers carry per-vertex payload along
// with the pixel position.
func NormalizeClockwiseOrder(q [4]Point) [4]int {
	c := Centroid(q[:])

	idx := [4]int{0, 1, 2, 3}
	var angle [4]float64
	for i, p := range q {
		angle[i] = math.Atan2(p.Y-c.Y, p.X-c.X)
	}
	sort.SliceStable(idx[:], func(a, b int) bool {
		return angle[idx[a]] < angle[idx[b]]
	})

	sorted := []Point{q[idx[0]], q[idx[1]], q[idx[2]], q[idx[3]]}
	if IsClockwise(sorted) {
		return idx
	}
	return [4]int{idx[0], idx[3], idx[2], idx[1]}
}

// NormalizeClockwise orders the quadrilateral's vertices by angle around
// the centroid and flips the winding when the result is not clockwise.
// The output depends only on the vertex set, so applying it twice gives
// the same result as applying it once. Degenerate input (coincident or
// collinear points) still yields four points.
func NormalizeClockwise(q [4]Point) [4]Point {
	order := NormalizeClockwiseOrder(q)
	return [4]Point{q[order[0]], q[order[1]], q[order[2]], q[order[3]]}
}

// NearestVertex returns the index of the vertex of poly closest to (x, y)
// within hitRadius, or NoVertex. Ties keep the lowest index.
func NearestVertex(poly []Point, x, y, hitRadius float64) int {
	target := Point{X: x, Y: y}
	limit := hitRadius * hitRadius
	best := math.Inf(1)
	idx := NoVertex
	for i, p := range poly {
		d := p.DistSq(target)
		if d <= limit && d < best {
			best = d
			idx = i
		}
	}
	return idx
}

// Within reports whether a and b are no further than radius apart.
func Within(a, b Point, radius float64) bool {
	return a.DistSq(b) <= radius*radius
}

// Contains reports whether p lies inside poly using the even-odd rule.
// Points exactly on an edge may go either way.
func Contains(poly []Point, p Point) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
