package shapes

import (
	"math"

	"github.com/aukilabs/depthmap/geometry"
)

// Type is the type byte of a shape: a kind in the low bits and the closed
// and winding flags in the high bits.
type Type uint8

const (
	TypePoint  Type = 0x01
	TypeLine   Type = 0x02
	TypePoly   Type = 0x04
	TypeCircle Type = 0x08
	TypeMask   Type = 0x0f
	FlagClosed Type = 0x40
	FlagCCW    Type = 0x80
)

// Shape is a point, a line, an open polyline or a closed polygon. Points
// and lines keep their geometry in the centroid and region fields; poly
// shapes keep their vertices and cache centroid, area and perimeter.
type Shape struct {
	typ       Type
	points    []geometry.Point
	centroid  geometry.Point
	region    geometry.Line
	area      float64
	perimeter float64
}

func NewPoint(p geometry.Point) Shape {
	return Shape{
		typ:      TypePoint,
		centroid: p,
		region:   geometry.NewLine(p, p),
	}
}

func NewLine(l geometry.Line) Shape {
	return Shape{
		typ:       TypeLine,
		centroid:  l.Centre(),
		region:    l,
		perimeter: l.Length(),
	}
}

// NewPoly returns a polyline, or a polygon when closed is set. The
// centroid, area and perimeter are computed from the vertices.
func NewPoly(points []geometry.Point, closed bool) Shape {
	s := Shape{typ: TypePoly}
	if closed {
		s.typ |= FlagClosed
	}
	s.points = append([]geometry.Point(nil), points...)
	s.setBoundingBox()
	s.SetCentroidAreaPerim()
	return s
}

func (s *Shape) setBoundingBox() {
	if len(s.points) == 0 {
		return
	}
	r := geometry.Region{BottomLeft: s.points[0], TopRight: s.points[0]}
	for _, p := range s.points[1:] {
		r.Encompass(p)
	}
	s.region = geometry.LineFromRegion(r)
}

func (s Shape) Type() Type {
	return s.typ
}

func (s Shape) Kind() Type {
	return s.typ & TypeMask
}

func (s Shape) IsOpen() bool {
	return s.typ&FlagClosed == 0
}

func (s Shape) IsClosed() bool {
	return s.typ&FlagClosed != 0
}

func (s Shape) IsPoint() bool {
	return s.typ == TypePoint
}

func (s Shape) IsLine() bool {
	return s.typ == TypeLine
}

func (s Shape) IsPolyLine() bool {
	return s.typ&(TypePoly|FlagClosed) == TypePoly
}

func (s Shape) IsPolygon() bool {
	return s.typ&(TypePoly|FlagClosed) == TypePoly|FlagClosed
}

func (s Shape) IsCCW() bool {
	return s.typ&FlagCCW != 0
}

// Point returns the location of a point shape.
func (s Shape) Point() geometry.Point {
	return s.centroid
}

// Line returns the segment of a line shape.
func (s Shape) Line() geometry.Line {
	return s.region
}

func (s Shape) BoundingBox() geometry.Region {
	return s.region.Region
}

func (s Shape) Centroid() geometry.Point {
	return s.centroid
}

// SetCentroid overrides the computed centroid.
func (s *Shape) SetCentroid(p geometry.Point) {
	s.centroid = p
}

func (s Shape) Area() float64 {
	return s.area
}

func (s Shape) Perimeter() float64 {
	return s.perimeter
}

// Length is the perimeter of open shapes.
func (s Shape) Length() float64 {
	return s.perimeter
}

// Points returns the vertices of a poly shape.
func (s Shape) Points() []geometry.Point {
	return s.points
}

func (s Shape) PointCount() int {
	return len(s.points)
}

// Segment returns the edge running from vertex k to the next vertex,
// wrapping to the first vertex after the last.
func (s Shape) Segment(k int) geometry.Line {
	return geometry.NewLine(s.points[k], s.points[(k+1)%len(s.points)])
}

// SetCentroidAreaPerim recomputes the cached centroid, area and perimeter
// of a poly shape with the shoelace formula. The winding flag follows the
// sign of the signed area. The closing side is left out of the perimeter
// of open shapes. A zero area leaves the centroid undefined.
func (s *Shape) SetCentroidAreaPerim() {
	s.area = 0
	s.perimeter = 0
	s.centroid = geometry.Point{}

	n := len(s.points)
	if n == 0 {
		return
	}

	for i := 0; i < n; i++ {
		p1 := s.points[i]
		p2 := s.points[(i+1)%n]
		a := (p1.X*p2.Y - p2.X*p1.Y) / 2
		s.area += a
		s.centroid = s.centroid.Add(p1.Add(p2).Scale(a / 6))
		s.perimeter += p2.Sub(p1).Length()
	}

	s.typ &^= FlagCCW
	if geometry.Sign(s.area) == 1 {
		s.typ |= FlagCCW
	}

	// scaled by the signed area so clockwise shapes land in the right place
	s.centroid = s.centroid.Scale(2 / s.area)
	s.area = math.Abs(s.area)

	if s.IsOpen() {
		s.perimeter -= s.points[n-1].Sub(s.points[0]).Length()
	}
}

// AngDev returns the angular deviation along a polyline in Iida Hillier
// units, where a right angle turn counts 1.
func (s Shape) AngDev() float64 {
	var dev float64
	for i := 1; i < len(s.points)-1; i++ {
		dev += math.Abs(math.Pi - geometry.Angle(s.points[i-1], s.points[i], s.points[i+1]))
	}
	return dev / (math.Pi * 0.5)
}

// Clone returns a deep copy of s.
func (s Shape) Clone() Shape {
	s.points = append([]geometry.Point(nil), s.points...)
	return s
}
