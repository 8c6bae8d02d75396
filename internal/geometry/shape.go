package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// epsilon absorbs floating point noise from rotations and prototype boxes.
const epsilon = 1e-9

// Shape is a convex polygon in world coordinates.
type Shape interface {
	// Vertices returns the corners in winding order.
	Vertices() []r2.Vec
	// Bounds returns the axis-aligned bounding box.
	Bounds() r2.Box
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Box r2.Box
}

// NewRect creates a rectangle spanning the two corners in any order.
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{Box: r2.Box{
		Min: r2.Vec{X: math.Min(x0, x1), Y: math.Min(y0, y1)},
		Max: r2.Vec{X: math.Max(x0, x1), Y: math.Max(y0, y1)},
	}}
}

// UnitSquare returns the one-tile square whose top-left corner is the grid cell (x, y).
func UnitSquare(x, y int) Rect {
	return NewRect(float64(x), float64(y), float64(x+1), float64(y+1))
}

// Vertices returns the corners clockwise on screen starting top-left.
func (r Rect) Vertices() []r2.Vec {
	return []r2.Vec{
		{X: r.Box.Min.X, Y: r.Box.Min.Y},
		{X: r.Box.Max.X, Y: r.Box.Min.Y},
		{X: r.Box.Max.X, Y: r.Box.Max.Y},
		{X: r.Box.Min.X, Y: r.Box.Max.Y},
	}
}

// Bounds returns the rectangle itself.
func (r Rect) Bounds() r2.Box {
	return r.Box
}

// Polygon is a convex polygon, typically a rectangle rotated off the grid axes.
type Polygon struct {
	points []r2.Vec
}

// NewPolygon creates a polygon from convex vertices in winding order.
func NewPolygon(points ...r2.Vec) Polygon {
	return Polygon{points: append([]r2.Vec(nil), points...)}
}

// Vertices returns a copy of the polygon's corners.
func (p Polygon) Vertices() []r2.Vec {
	return append([]r2.Vec(nil), p.points...)
}

// Bounds returns the polygon's axis-aligned bounding box.
func (p Polygon) Bounds() r2.Box {
	return boundsOf(p.points)
}

// Area returns the area enclosed by a shape.
func Area(s Shape) float64 {
	pts := s.Vertices()
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(sum) / 2
}

// Translate moves a shape by d.
func Translate(s Shape, d r2.Vec) Shape {
	if r, ok := s.(Rect); ok {
		return Rect{Box: r2.Box{Min: r2.Add(r.Box.Min, d), Max: r2.Add(r.Box.Max, d)}}
	}
	pts := s.Vertices()
	for i := range pts {
		pts[i] = r2.Add(pts[i], d)
	}
	return Polygon{points: pts}
}

// Rotate turns a shape by angle radians around the origin. With y pointing south a positive
// angle turns clockwise on screen. Quarter turns are exact and keep rectangles axis aligned.
func Rotate(s Shape, angle float64) Shape {
	if k, ok := quarterTurns(angle); ok {
		if k == 0 {
			return s
		}
		pts := s.Vertices()
		for i := range pts {
			pts[i] = rotateQuarter(pts[i], k)
		}
		if _, isRect := s.(Rect); isRect {
			b := boundsOf(pts)
			return Rect{Box: b}
		}
		return Polygon{points: pts}
	}

	pts := s.Vertices()
	for i := range pts {
		pts[i] = r2.Rotate(pts[i], angle, r2.Vec{})
	}
	return Polygon{points: pts}
}

// Overlap reports whether two shapes share a strictly positive area.
func Overlap(a, b Shape) bool {
	if Area(a) < epsilon || Area(b) < epsilon {
		return false
	}
	if !boxesOverlap(a.Bounds(), b.Bounds()) {
		return false
	}

	pa, pb := a.Vertices(), b.Vertices()
	for _, pts := range [][]r2.Vec{pa, pb} {
		for i, v := range pts {
			edge := r2.Sub(pts[(i+1)%len(pts)], v)
			axis := r2.Vec{X: -edge.Y, Y: edge.X}
			if axis.X == 0 && axis.Y == 0 {
				continue
			}
			minA, maxA := project(pa, axis)
			minB, maxB := project(pb, axis)
			scale := math.Hypot(axis.X, axis.Y)
			if (maxA-minB)/scale <= epsilon || (maxB-minA)/scale <= epsilon {
				return false
			}
		}
	}
	return true
}

func project(pts []r2.Vec, axis r2.Vec) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		d := r2.Dot(p, axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

func boxesOverlap(a, b r2.Box) bool {
	return a.Min.X < b.Max.X-epsilon && b.Min.X < a.Max.X-epsilon &&
		a.Min.Y < b.Max.Y-epsilon && b.Min.Y < a.Max.Y-epsilon
}

func boundsOf(pts []r2.Vec) r2.Box {
	if len(pts) == 0 {
		return r2.Box{}
	}
	b := r2.Box{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
	}
	return b
}

func quarterTurns(angle float64) (int, bool) {
	k := math.Round(angle / (math.Pi / 2))
	if math.Abs(angle-k*math.Pi/2) > 1e-12 {
		return 0, false
	}
	return ((int(k) % 4) + 4) % 4, true
}

func rotateQuarter(p r2.Vec, k int) r2.Vec {
	switch k {
	case 1:
		return r2.Vec{X: -p.Y, Y: p.X}
	case 2:
		return r2.Vec{X: -p.X, Y: -p.Y}
	case 3:
		return r2.Vec{X: p.Y, Y: -p.X}
	default:
		return p
	}
}
