package geometry

import "math"

// Line is a segment stored left to right as a region. Parity tells whether
// the segment runs from the bottom-left to the top-right corner of the region
// (true) or from the top-left to the bottom-right corner (false). Rightward
// records whether the segment was given left to right.
type Line struct {
	Region
	Parity    bool
	Rightward bool
}

func NewLine(a, b Point) Line {
	var l Line
	switch {
	case a.X == b.X:
		// vertical lines are always stored with positive parity
		l.BottomLeft.X, l.TopRight.X = a.X, b.X
		l.Parity = true
		if a.Y <= b.Y {
			l.BottomLeft.Y, l.TopRight.Y = a.Y, b.Y
			l.Rightward = true
		} else {
			l.BottomLeft.Y, l.TopRight.Y = b.Y, a.Y
		}

	case a.X < b.X:
		l.BottomLeft.X, l.TopRight.X = a.X, b.X
		l.Rightward = true
		if a.Y <= b.Y {
			l.BottomLeft.Y, l.TopRight.Y = a.Y, b.Y
			l.Parity = true
		} else {
			l.BottomLeft.Y, l.TopRight.Y = b.Y, a.Y
		}

	default:
		l.BottomLeft.X, l.TopRight.X = b.X, a.X
		if b.Y <= a.Y {
			l.BottomLeft.Y, l.TopRight.Y = b.Y, a.Y
			l.Parity = true
		} else {
			l.BottomLeft.Y, l.TopRight.Y = a.Y, b.Y
		}
	}
	return l
}

// LineFromRegion reads a region as the line from its bottom-left to its
// top-right corner.
func LineFromRegion(r Region) Line {
	return Line{Region: r, Parity: true, Rightward: true}
}

func (l Line) Ax() float64 {
	return l.BottomLeft.X
}

func (l Line) Bx() float64 {
	return l.TopRight.X
}

func (l Line) Ay() float64 {
	if l.Parity {
		return l.BottomLeft.Y
	}
	return l.TopRight.Y
}

func (l Line) By() float64 {
	if l.Parity {
		return l.TopRight.Y
	}
	return l.BottomLeft.Y
}

func (l *Line) setAy(v float64) {
	if l.Parity {
		l.BottomLeft.Y = v
	} else {
		l.TopRight.Y = v
	}
}

func (l *Line) setBy(v float64) {
	if l.Parity {
		l.TopRight.Y = v
	} else {
		l.BottomLeft.Y = v
	}
}

// Start returns the left end of the line.
func (l Line) Start() Point {
	return Point{l.Ax(), l.Ay()}
}

// End returns the right end of the line.
func (l Line) End() Point {
	return Point{l.Bx(), l.By()}
}

func (l Line) Midpoint() Point {
	return l.Start().Add(l.End()).Scale(0.5)
}

func (l Line) Upward() bool {
	return l.Rightward == l.Parity
}

// TStart returns the first point of the line in the order it was given.
func (l Line) TStart() Point {
	p := l.TopRight
	if l.Rightward {
		p.X = l.BottomLeft.X
	}
	if l.Upward() {
		p.Y = l.BottomLeft.Y
	}
	return p
}

// TEnd returns the last point of the line in the order it was given.
func (l Line) TEnd() Point {
	p := l.BottomLeft
	if l.Rightward {
		p.X = l.TopRight.X
	}
	if l.Upward() {
		p.Y = l.TopRight.Y
	}
	return p
}

func (l Line) Vector() Point {
	return l.TEnd().Sub(l.TStart())
}

func (l Line) Sign() float64 {
	if l.Parity {
		return 1
	}
	return -1
}

// Grad returns dy/dx for YAxis and dx/dy for XAxis.
func (l Line) Grad(axis int) float64 {
	if axis == YAxis {
		return l.Sign() * l.Height() / l.Width()
	}
	return l.Sign() * l.Width() / l.Height()
}

// Constant returns the intercept matching Grad.
func (l Line) Constant(axis int) float64 {
	if axis == YAxis {
		return l.Ay() - l.Grad(axis)*l.Ax()
	}
	return l.Ax() - l.Grad(axis)*l.Ay()
}

func (l Line) Length() float64 {
	return l.TopRight.Sub(l.BottomLeft).Length()
}

// NormalScale maps the line into the unit square of r, keeping its direction.
func (l Line) NormalScale(r Region) Line {
	l.Region = l.Region.NormalScale(r)
	return l
}

func (l Line) ScaleXY(v Point) Line {
	l.Region = l.Region.ScaleXY(v)
	return l
}

// Crop clips the line to r. It returns false when the line lies entirely
// outside r.
func (l *Line) Crop(r Region) bool {
	if l.Bx() < r.BottomLeft.X {
		return false
	}
	if l.Ax() < r.BottomLeft.X {
		l.setAy(l.Ay() + l.Sign()*(l.Height()*(r.BottomLeft.X-l.Ax())/l.Width()))
		l.BottomLeft.X = r.BottomLeft.X
	}
	if l.Ax() > r.TopRight.X {
		return false
	}
	if l.Bx() > r.TopRight.X {
		l.setBy(l.By() - l.Sign()*l.Height()*(l.Bx()-r.TopRight.X)/l.Width())
		l.TopRight.X = r.TopRight.X
	}
	if l.TopRight.Y < r.BottomLeft.Y {
		return false
	}
	if l.BottomLeft.Y < r.BottomLeft.Y {
		if l.Parity {
			l.BottomLeft.X += l.Width() * (r.BottomLeft.Y - l.BottomLeft.Y) / l.Height()
		} else {
			l.TopRight.X -= l.Width() * (r.BottomLeft.Y - l.BottomLeft.Y) / l.Height()
		}
		l.BottomLeft.Y = r.BottomLeft.Y
	}
	if l.BottomLeft.Y > r.TopRight.Y {
		return false
	}
	if l.TopRight.Y > r.TopRight.Y {
		if l.Parity {
			l.TopRight.X -= l.Width() * (l.TopRight.Y - r.TopRight.Y) / l.Height()
		} else {
			l.BottomLeft.X += l.Width() * (l.TopRight.Y - r.TopRight.Y) / l.Height()
		}
		l.TopRight.Y = r.TopRight.Y
	}
	return true
}

// IntersectLine reports whether a and b cross or touch. Callers must check
// that the line regions intersect first: parallel lines always pass.
func IntersectLine(a, b Line, tolerance float64) bool {
	sideA := ((a.Ay()-a.By())*(b.Ax()-a.Ax()) + (a.Bx()-a.Ax())*(b.Ay()-a.Ay())) *
		((a.Ay()-a.By())*(b.Bx()-a.Ax()) + (a.Bx()-a.Ax())*(b.By()-a.Ay()))
	sideB := ((b.Ay()-b.By())*(a.Ax()-b.Ax()) + (b.Bx()-b.Ax())*(a.Ay()-b.Ay())) *
		((b.Ay()-b.By())*(a.Bx()-b.Ax()) + (b.Bx()-b.Ax())*(a.By()-b.Ay()))
	return sideA <= tolerance && sideB <= tolerance
}

// IntersectionLocation returns the coordinate along axis where l crosses the
// infinite extension of this line.
func (l Line) IntersectionLocation(o Line, axis int, tolerance float64) float64 {
	if axis == XAxis {
		if o.Width() == 0 {
			return o.BottomLeft.X
		}
		og, g := o.Grad(YAxis), l.Grad(YAxis)
		if math.Abs(og-g) <= tolerance {
			// near parallel: use the midpoint clamped into this line
			p := o.Midpoint()
			return math.Max(l.BottomLeft.X, math.Min(l.TopRight.X, p.X))
		}
		return ((l.Ay() - g*l.Ax()) - (o.Ay() - og*o.Ax())) / (og - g)
	}

	if o.Height() == 0 {
		return o.BottomLeft.Y
	}
	og, g := o.Grad(XAxis), l.Grad(XAxis)
	if math.Abs(og-g) <= tolerance {
		p := o.Midpoint()
		return math.Max(l.BottomLeft.Y, math.Min(l.TopRight.Y, p.Y))
	}
	return ((l.Ax() - g*l.Ay()) - (o.Ax() - og*o.Ay())) / (og - g)
}

// PointOnLine converts a location returned by IntersectionLocation back into
// a point.
func (l Line) PointOnLine(loc float64, axis int) Point {
	if axis == XAxis {
		return Point{loc, l.Grad(YAxis)*loc + l.Constant(YAxis)}
	}
	return Point{l.Grad(XAxis)*loc + l.Constant(XAxis), loc}
}

// IntersectionPoint returns the point where b crosses a.
func IntersectionPoint(a, b Line, tolerance float64) Point {
	axis := YAxis
	if a.Width() >= a.Height() {
		axis = XAxis
	}
	return a.PointOnLine(a.IntersectionLocation(b, axis, tolerance), axis)
}

// DistToLine returns the distance from p to the segment l.
func DistToLine(p Point, l Line) float64 {
	alpha := l.End().Sub(l.Start())
	beta := p.Sub(l.End())
	gamma := l.Start().Sub(l.End())
	delta := p.Sub(l.Start())

	switch {
	case Dot(alpha, beta) > 0:
		return beta.Length()
	case Dot(gamma, delta) > 0:
		return delta.Length()
	case alpha.Length() < 1e-9*beta.Length():
		return beta.Length()
	default:
		return math.Abs(Det(alpha, beta)) / alpha.Length()
	}
}
