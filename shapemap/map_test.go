package shapemap

import (
	"testing"

	"github.com/aukilabs/depthmap/attributes"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pixel"
	"github.com/aukilabs/depthmap/shapes"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func pt(x, y float64) geometry.Point {
	return geometry.Point{X: x, Y: y}
}

func line(ax, ay, bx, by float64) geometry.Line {
	return geometry.NewLine(pt(ax, ay), pt(bx, by))
}

func rect(x0, y0, x1, y1 float64) []geometry.Point {
	return []geometry.Point{pt(x0, y0), pt(x1, y0), pt(x1, y1), pt(x0, y1)}
}

// unitMap returns a map over (0,0)-(10,10) with one cell per unit.
func unitMap(t MapType) *ShapeMap {
	m := New("test", t)
	m.InitGrid(geometry.Region{BottomLeft: pt(0, 0), TopRight: pt(10, 10)}, 10, 10)
	return m
}

func TestNew(t *testing.T) {
	m := New("axial", AxialMap)
	require.True(t, m.HasGraph())
	require.True(t, m.IsAxialMap())
	require.True(t, m.Show())
	require.False(t, m.Editable())
	require.Equal(t, 0, m.NextKey())
	require.Equal(t, attributes.RefColumn, m.DisplayedAttribute())

	require.False(t, New("drawing", DrawingMap).HasGraph())
	require.True(t, New("convex", ConvexMap).HasGraph())
	require.Equal(t, "segment", SegmentMap.String())
}

func TestMakeShapes(t *testing.T) {
	m := New("test", DataMap)

	require.Equal(t, 0, m.MakePointShape(pt(1, 1), nil))
	require.Equal(t, 1, m.MakeLineShape(line(0, 0, 4, 4), nil))
	require.Equal(t, -1, m.MakePolyShape(nil, false, nil))
	require.Equal(t, 2, m.MakePolyShape([]geometry.Point{pt(2, 2)}, false, nil))
	require.Equal(t, 3, m.MakePolyShape([]geometry.Point{pt(2, 2), pt(3, 3)}, false, nil))
	require.Equal(t, 4, m.MakePolyShape(rect(1, 1, 3, 3), false, nil))
	require.Equal(t, 5, m.MakePolyShape(rect(1, 1, 3, 3), true, nil))

	require.Equal(t, 6, m.ShapeCount())
	require.True(t, m.Shape(2).IsPoint())
	require.True(t, m.Shape(3).IsLine())
	require.True(t, m.Shape(4).IsPolygon())
	require.True(t, m.Shape(5).IsPolyLine())
	require.Equal(t, 6, m.Attributes().RowCount())

	t.Run("explicit keys", func(t *testing.T) {
		require.Equal(t, 10, m.MakeShape(shapes.NewPoint(pt(2, 2)), 10, nil))
		require.Equal(t, -1, m.MakeShape(shapes.NewPoint(pt(2, 2)), 10, nil))
		require.Equal(t, 11, m.NextKey())

		i, ok := m.Index(10)
		require.True(t, ok)
		require.Equal(t, 6, i)
	})

	t.Run("attributes", func(t *testing.T) {
		col := m.Attributes().InsertColumn("value")
		key := m.MakePointShape(pt(3, 1), map[int]float32{col: 42})
		i, _ := m.Index(key)
		require.Equal(t, float32(42), m.Attributes().GetValue(i, col))
	})

	t.Run("grid grows to cover new shapes", func(t *testing.T) {
		m.MakePointShape(pt(-5, 20), nil)
		require.True(t, m.Region().ContainsTouch(pt(-5, 20)))
		require.True(t, m.Region().ContainsTouch(pt(4, 4)))
		require.Equal(t, minGridSize, m.Rows())
	})
}

func TestDrawLineShape(t *testing.T) {
	m := New("axial", AxialMap)

	_, err := m.DrawLineShape(line(1, 5, 9, 5))
	require.Error(t, err)
	require.Equal(t, ErrTypeNotEditable, errors.Type(err))

	m.SetEditable(true)
	a, err := m.DrawLineShape(line(1, 5, 9, 5))
	require.NoError(t, err)
	b, err := m.DrawLineShape(line(5, 1, 5, 9))
	require.NoError(t, err)

	ia, _ := m.Index(a)
	ib, _ := m.Index(b)
	require.Equal(t, []int{ib}, m.Connections(ia))
	require.Equal(t, []int{ia}, m.Connections(ib))

	conn, ok := m.Attributes().ColumnIndex(ConnectivityColumn)
	require.True(t, ok)
	require.Equal(t, float32(1), m.Attributes().GetValue(ia, conn))
	require.Equal(t, float32(1), m.Attributes().GetValue(ib, conn))

	length, ok := m.Attributes().ValueByName(ib, LineLengthColumn)
	require.True(t, ok)
	require.Equal(t, float32(8), length)
}

func TestConvertPointsToPolys(t *testing.T) {
	m := New("test", DataMap)
	m.MakePointShape(pt(5, 5), nil)
	m.MakePointShape(pt(8, 8), nil)
	m.SetCurSelKeys([]int{0}, false)

	require.True(t, m.ConvertPointsToPolys(1, true))
	require.True(t, m.Shape(0).IsPolygon())
	require.True(t, m.Shape(1).IsPoint())
	require.InDelta(t, 2.8284271247, m.Shape(0).Area(), 1e-9)
	require.Equal(t, 0, m.PointInPoly(pt(5.2, 5.1)))

	require.False(t, m.ConvertPointsToPolys(1, true))
}

func TestClearAll(t *testing.T) {
	m := New("test", ConvexMap)
	m.MakePolyShape(rect(1, 1, 3, 3), false, nil)
	m.SetMapInfo(&MapInfo{CoordSys: "NonEarth"})
	m.ClearAll()

	require.Zero(t, m.ShapeCount())
	require.Zero(t, m.Attributes().RowCount())
	require.Empty(t, m.Connectors())
	require.NotNil(t, m.MapInfo())
	require.Equal(t, -1, m.PointInPoly(pt(2, 2)))
}

func TestBucket(t *testing.T) {
	m := unitMap(DataMap)
	key := m.MakePointShape(pt(2.5, 3.5), nil)

	b := m.Bucket(pixel.NewRef(2, 3))
	require.Len(t, b, 1)
	require.Equal(t, key, b[0].Key)
	require.True(t, b[0].Has(shapes.TagOpen))
	require.Nil(t, m.Bucket(pixel.NewRef(20, 3)))
}

func TestLines(t *testing.T) {
	m := New("drawing", DrawingMap)
	require.Empty(t, m.Lines())

	m.MakePointShape(pt(1, 1), nil)
	m.MakeLineShape(line(0, 0, 4, 4), nil)
	m.MakePolyShape(rect(1, 1, 3, 3), false, nil)
	m.MakePolyShape([]geometry.Point{pt(5, 5), pt(6, 5), pt(6, 7)}, true, nil)

	lines := m.Lines()
	require.Len(t, lines, 7)
	require.Equal(t, line(0, 0, 4, 4), lines[0])
	require.Equal(t, line(3, 3, 1, 3), lines[3])
	require.Equal(t, line(1, 3, 1, 1), lines[4])
	require.Equal(t, line(6, 5, 6, 7), lines[6])
}
