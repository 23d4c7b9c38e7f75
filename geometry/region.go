package geometry

import "math"

// Region is an axis-aligned bounding box.
type Region struct {
	BottomLeft Point
	TopRight   Point
}

// NewRegion returns the normalized region spanned by a and b.
func NewRegion(a, b Point) Region {
	return Region{
		BottomLeft: Point{math.Min(a.X, b.X), math.Min(a.Y, b.Y)},
		TopRight:   Point{math.Max(a.X, b.X), math.Max(a.Y, b.Y)},
	}
}

func (r Region) Width() float64 {
	return math.Abs(r.TopRight.X - r.BottomLeft.X)
}

func (r Region) Height() float64 {
	return r.TopRight.Y - r.BottomLeft.Y
}

func (r Region) Area() float64 {
	return r.Width() * r.Height()
}

func (r Region) Centre() Point {
	return Point{
		X: (r.BottomLeft.X + r.TopRight.X) / 2,
		Y: (r.BottomLeft.Y + r.TopRight.Y) / 2,
	}
}

// Contains reports whether p lies strictly inside r.
func (r Region) Contains(p Point) bool {
	return p.X > r.BottomLeft.X && p.X < r.TopRight.X &&
		p.Y > r.BottomLeft.Y && p.Y < r.TopRight.Y
}

// ContainsTouch reports whether p lies inside r or on its border.
func (r Region) ContainsTouch(p Point) bool {
	return p.X >= r.BottomLeft.X && p.X <= r.TopRight.X &&
		p.Y >= r.BottomLeft.Y && p.Y <= r.TopRight.Y
}

// Encompass grows r so that it contains p.
func (r *Region) Encompass(p Point) {
	r.BottomLeft.X = math.Min(r.BottomLeft.X, p.X)
	r.BottomLeft.Y = math.Min(r.BottomLeft.Y, p.Y)
	r.TopRight.X = math.Max(r.TopRight.X, p.X)
	r.TopRight.Y = math.Max(r.TopRight.Y, p.Y)
}

func (r Region) AtZero() bool {
	return r.BottomLeft.AtZero() || r.TopRight.AtZero()
}

func (r Region) NormalScale(s Region) Region {
	return Region{BottomLeft: r.BottomLeft.NormalScale(s), TopRight: r.TopRight.NormalScale(s)}
}

func (r Region) ScaleXY(v Point) Region {
	return Region{BottomLeft: r.BottomLeft.ScaleXY(v), TopRight: r.TopRight.ScaleXY(v)}
}

func (r Region) Offset(v Point) Region {
	return Region{BottomLeft: r.BottomLeft.Add(v), TopRight: r.TopRight.Add(v)}
}

// Grow scales the region about its corners by scalar.
func (r Region) Grow(scalar float64) Region {
	dim := r.TopRight.Sub(r.BottomLeft).Scale(scalar - 1)
	return Region{BottomLeft: r.BottomLeft.Sub(dim), TopRight: r.TopRight.Add(dim)}
}

// Union returns the smallest region containing both a and b.
func Union(a, b Region) Region {
	return Region{
		BottomLeft: Point{math.Min(a.BottomLeft.X, b.BottomLeft.X), math.Min(a.BottomLeft.Y, b.BottomLeft.Y)},
		TopRight:   Point{math.Max(a.TopRight.X, b.TopRight.X), math.Max(a.TopRight.Y, b.TopRight.Y)},
	}
}

// IntersectRegion reports whether a and b overlap. Touching counts.
func IntersectRegion(a, b Region, tolerance float64) bool {
	return OverlapX(a, b, tolerance) && OverlapY(a, b, tolerance)
}

func OverlapX(a, b Region, tolerance float64) bool {
	if a.BottomLeft.X > b.BottomLeft.X {
		return b.TopRight.X >= a.BottomLeft.X-tolerance
	}
	return a.TopRight.X >= b.BottomLeft.X-tolerance
}

func OverlapY(a, b Region, tolerance float64) bool {
	if a.BottomLeft.Y > b.BottomLeft.Y {
		return b.TopRight.Y >= a.BottomLeft.Y-tolerance
	}
	return a.TopRight.Y >= b.BottomLeft.Y-tolerance
}
