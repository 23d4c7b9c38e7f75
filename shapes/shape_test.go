package shapes

import (
	"bytes"
	"testing"

	"github.com/aukilabs/depthmap/format"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func square(ccw bool) []geometry.Point {
	points := []geometry.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	if !ccw {
		for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
			points[i], points[j] = points[j], points[i]
		}
	}
	return points
}

func requirePoint(t *testing.T, expected, actual geometry.Point) {
	require.InDelta(t, expected.X, actual.X, 1e-12)
	require.InDelta(t, expected.Y, actual.Y, 1e-12)
}

func TestShapeTypes(t *testing.T) {
	point := NewPoint(geometry.Point{X: 1, Y: 2})
	require.True(t, point.IsPoint())
	require.True(t, point.IsOpen())
	require.Equal(t, geometry.Point{X: 1, Y: 2}, point.Point())
	require.Equal(t, geometry.Point{X: 1, Y: 2}, point.BoundingBox().BottomLeft)

	line := NewLine(geometry.NewLine(geometry.Point{X: 0, Y: 0}, geometry.Point{X: 3, Y: 4}))
	require.True(t, line.IsLine())
	require.False(t, line.IsPolyLine())
	require.Equal(t, 5.0, line.Length())
	require.Equal(t, geometry.Point{X: 1.5, Y: 2}, line.Centroid())

	polyline := NewPoly(square(true), false)
	require.True(t, polyline.IsPolyLine())
	require.False(t, polyline.IsPolygon())
	require.True(t, polyline.IsOpen())

	polygon := NewPoly(square(true), true)
	require.True(t, polygon.IsPolygon())
	require.True(t, polygon.IsClosed())
	require.Equal(t, TypePoly, polygon.Kind())
	require.Equal(t, geometry.Region{BottomLeft: geometry.Point{X: 0, Y: 0}, TopRight: geometry.Point{X: 2, Y: 2}}, polygon.BoundingBox())
}

func TestSetCentroidAreaPerim(t *testing.T) {
	t.Run("counter clockwise square", func(t *testing.T) {
		s := NewPoly(square(true), true)
		require.Equal(t, 4.0, s.Area())
		require.Equal(t, 8.0, s.Perimeter())
		requirePoint(t, geometry.Point{X: 1, Y: 1}, s.Centroid())
		require.True(t, s.IsCCW())
	})

	t.Run("clockwise square", func(t *testing.T) {
		s := NewPoly(square(false), true)
		require.Equal(t, 4.0, s.Area())
		requirePoint(t, geometry.Point{X: 1, Y: 1}, s.Centroid())
		require.False(t, s.IsCCW())
	})

	t.Run("open shapes skip the closing side", func(t *testing.T) {
		s := NewPoly([]geometry.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}}, false)
		require.Equal(t, 4.0, s.Perimeter())
		require.Equal(t, 2.0, s.Area())
	})

	t.Run("recomputing clears a stale winding flag", func(t *testing.T) {
		s := NewPoly(square(true), true)
		for i, j := 0, len(s.points)-1; i < j; i, j = i+1, j-1 {
			s.points[i], s.points[j] = s.points[j], s.points[i]
		}
		s.SetCentroidAreaPerim()
		require.False(t, s.IsCCW())
	})
}

func TestAngDev(t *testing.T) {
	straight := NewPoly([]geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}, false)
	require.InDelta(t, 0, straight.AngDev(), 1e-12)

	turn := NewPoly([]geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}, false)
	require.InDelta(t, 1, turn.AngDev(), 1e-12)

	zigzag := NewPoly([]geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 1}}, false)
	require.InDelta(t, 2, zigzag.AngDev(), 1e-12)
}

func TestSegment(t *testing.T) {
	s := NewPoly(square(true), true)
	last := s.Segment(3)
	require.Equal(t, geometry.Point{X: 0, Y: 2}, last.TStart())
	require.Equal(t, geometry.Point{X: 0, Y: 0}, last.TEnd())
}

func TestBucket(t *testing.T) {
	var b Bucket
	b, _ = b.Insert(5, TagOpen)
	b, _ = b.Insert(1, TagEdge)
	b, i := b.Insert(3, TagCentre)
	require.Equal(t, 1, i)
	require.Equal(t, []int{1, 3, 5}, []int{b[0].Key, b[1].Key, b[2].Key})

	b, i = b.Insert(3, TagOpen)
	require.Equal(t, 1, i)
	require.Len(t, b, 3)
	require.True(t, b[1].Has(TagCentre))

	b.Get(5).PolyRefs = append(b.Get(5).PolyRefs, 2)
	require.Equal(t, []int{2}, b[2].PolyRefs)
	require.Nil(t, b.Get(4))

	b = b.Remove(1)
	require.False(t, b.Contains(1))
	require.True(t, b.Contains(3))
	b = b.Remove(42)
	require.Len(t, b, 2)
}

func TestShapeReadWrite(t *testing.T) {
	shapes := []Shape{
		NewPoint(geometry.Point{X: 1, Y: 2}),
		NewLine(geometry.NewLine(geometry.Point{X: 3, Y: 1}, geometry.Point{X: 0, Y: 4})),
		NewPoly([]geometry.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}}, false),
		NewPoly(square(false), true),
	}

	for _, s := range shapes {
		var buf bytes.Buffer
		require.NoError(t, Write(format.NewWriter(&buf), s))

		read, err := Read(format.NewReader(&buf), format.Current)
		require.NoError(t, err)
		require.Empty(t, cmp.Diff(s, read, cmp.AllowUnexported(Shape{})))
	}

	t.Run("legacy layout recomputes area and perimeter", func(t *testing.T) {
		s := NewPoly(square(true), true)

		var buf bytes.Buffer
		w := format.NewWriter(&buf)
		w.Byte(byte(s.Type()))
		geometry.WriteLine(w, s.Line())
		geometry.WritePoint(w, s.Centroid())
		geometry.WritePoints(w, s.Points())
		require.NoError(t, w.Err())

		read, err := Read(format.NewReader(&buf), format.VersionStoreFormula)
		require.NoError(t, err)
		require.Equal(t, 4.0, read.Area())
		require.Equal(t, 8.0, read.Perimeter())
		requirePoint(t, geometry.Point{X: 1, Y: 1}, read.Centroid())
	})

	t.Run("truncated", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(format.NewWriter(&buf), NewPoly(square(true), true)))

		_, err := Read(format.NewReader(bytes.NewReader(buf.Bytes()[:buf.Len()-5])), format.Current)
		require.Error(t, err)
		require.Equal(t, format.ErrTypeTruncated, errors.Type(err))
	})

	t.Run("unsupported version", func(t *testing.T) {
		_, err := Read(format.NewReader(&bytes.Buffer{}), format.VersionAttributesTable)
		require.Error(t, err)
		require.Equal(t, format.ErrTypeUnsupportedVersion, errors.Type(err))
	})
}

func TestEventAction(t *testing.T) {
	e := Event{Action: ActionMoved, Key: 3, Geometry: NewPoint(geometry.Point{})}
	require.Equal(t, "moved", e.Action.String())
	require.Equal(t, "none", Action(7).String())
	require.True(t, e.Geometry.IsPoint())
}
