package geometry

import "math"

const (
	XAxis = 0
	YAxis = 1
)

// Point is a 2D point or vector in continuous map space.
type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

func (p Point) Scale(s float64) Point {
	return Point{p.X * s, p.Y * s}
}

// ScaleXY scales each component independently.
func (p Point) ScaleXY(v Point) Point {
	return Point{p.X * v.X, p.Y * v.Y}
}

// Axis returns the x component for XAxis and the y component otherwise.
func (p Point) Axis(axis int) float64 {
	if axis == XAxis {
		return p.X
	}
	return p.Y
}

func (p Point) Length() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y)
}

// Normalized returns the unit vector of p. The zero vector is returned as is.
func (p Point) Normalized() Point {
	l := p.Length()
	if l == 0 {
		return p
	}
	return Point{p.X / l, p.Y / l}
}

func (p Point) AtZero() bool {
	return p.X == 0 && p.Y == 0
}

// NormalScale maps p into the unit square of r. A zero sized axis maps to 0.
func (p Point) NormalScale(r Region) Point {
	var n Point
	if w := r.Width(); w != 0 {
		n.X = (p.X - r.BottomLeft.X) / w
	}
	if h := r.Height(); h != 0 {
		n.Y = (p.Y - r.BottomLeft.Y) / h
	}
	return n
}

// DenormalScale is the inverse of NormalScale.
func (p Point) DenormalScale(r Region) Point {
	return Point{
		X: p.X*r.Width() + r.BottomLeft.X,
		Y: p.Y*r.Height() + r.BottomLeft.Y,
	}
}

func Dot(a, b Point) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Det returns the 2D cross product of a and b.
func Det(a, b Point) float64 {
	return a.X*b.Y - a.Y*b.X
}

func Dist(a, b Point) float64 {
	return b.Sub(a).Length()
}

// ApproxEqual reports whether both components differ by at most tolerance.
func ApproxEqual(a, b Point, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance && math.Abs(a.Y-b.Y) <= tolerance
}

// Sign returns -1, 0 or 1.
func Sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Angle returns the angle at p2 turning from p1 to p3, in [0, 2π).
func Angle(p1, p2, p3 Point) float64 {
	a := p1.Sub(p2).Normalized()
	b := p3.Sub(p2).Normalized()
	d := math.Min(math.Max(Dot(a, b), -1), 1)
	if Sign(Det(a, b)) == 1 {
		return math.Acos(d)
	}
	return 2*math.Pi - math.Acos(d)
}
