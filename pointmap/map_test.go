package pointmap

import (
	"testing"

	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pixel"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func pt(x, y float64) geometry.Point {
	return geometry.Point{X: x, Y: y}
}

func ref(x, y int) pixel.Ref {
	return pixel.NewRef(x, y)
}

type drawing struct {
	region geometry.Region
	lines  []geometry.Line
}

func (d *drawing) Region() geometry.Region {
	return d.region
}

func (d *drawing) Lines() []geometry.Line {
	return d.lines
}

// newMap returns a map over a (0,0)-(10,10) drawing made of lines.
func newMap(t *testing.T, spacing float64, lines ...geometry.Line) *PointMap {
	m := New("test", &drawing{
		region: geometry.Region{BottomLeft: pt(0, 0), TopRight: pt(10, 10)},
		lines:  lines,
	})
	require.NoError(t, m.SetGrid(spacing, geometry.Point{}))
	return m
}

// wall splits the drawing between the columns x=4 and x=5.
func wall() geometry.Line {
	return geometry.NewLine(pt(4.5, 0), pt(4.5, 10))
}

func TestSetGrid(t *testing.T) {
	m := newMap(t, 1)
	require.True(t, m.IsInitialised())
	require.Equal(t, "test", m.Name())
	require.Equal(t, 11, m.Rows())
	require.Equal(t, 11, m.Cols())
	require.Equal(t, pt(0, 0), m.BottomLeft())
	require.Equal(t, geometry.Region{BottomLeft: pt(-0.5, -0.5), TopRight: pt(10.5, 10.5)}, m.Region())
	require.Zero(t, m.PointCount())

	require.Equal(t, ref(2, 8), m.Pixelate(pt(2.4, 7.6), false, 1))
	require.Equal(t, ref(-1, 0), m.Pixelate(pt(-0.6, 0), false, 1))
	require.Equal(t, ref(0, 10), m.Pixelate(pt(-3, 30), true, 1))
	require.Equal(t, ref(5, 16), m.Pixelate(pt(2.4, 7.6), false, 2))
	require.Equal(t, pt(3, 4), m.Depixelate(ref(3, 4)))
	require.Equal(t, geometry.Region{BottomLeft: pt(0.5, 0.5), TopRight: pt(1.5, 1.5)}, m.Regionate(ref(1, 1), 0))

	require.True(t, m.Includes(ref(10, 10)))
	require.False(t, m.Includes(ref(11, 0)))
	require.Nil(t, m.Point(ref(11, 0)))
	require.Equal(t, pt(3, 4), m.Point(ref(3, 4)).Location())
	require.True(t, m.Point(ref(3, 4)).IsEmpty())
	require.Equal(t, pixel.NoRef, m.Point(ref(3, 4)).Merge())

	t.Run("offset", func(t *testing.T) {
		require.NoError(t, m.SetGrid(1, pt(0.3, 0)))
		require.InDelta(t, -0.3, m.BottomLeft().X, 1e-9)
		require.Equal(t, 11, m.Cols())
		require.InDelta(t, 1.7, m.Point(ref(2, 0)).Location().X, 1e-9)
	})

	t.Run("half spacing", func(t *testing.T) {
		require.NoError(t, m.SetGrid(0.5, geometry.Point{}))
		require.Equal(t, 21, m.Rows())
		require.Equal(t, 21, m.Cols())
		require.Equal(t, 0.5, m.Spacing())
	})

	t.Run("resets the points", func(t *testing.T) {
		m := newMap(t, 1)
		_, err := m.MakePoints(pt(5, 5), FullFill, nil)
		require.NoError(t, err)
		require.NoError(t, m.SetGrid(1, geometry.Point{}))
		require.Zero(t, m.PointCount())
		require.False(t, m.CanUndo())
	})

	t.Run("invalid spacing", func(t *testing.T) {
		err := m.SetGrid(0, geometry.Point{})
		require.Equal(t, ErrTypeInvalidSpacing, errors.Type(err))
		err = m.SetGrid(1e-4, geometry.Point{})
		require.Equal(t, ErrTypeInvalidSpacing, errors.Type(err))
	})

	t.Run("without drawing", func(t *testing.T) {
		err := New("", nil).SetGrid(1, geometry.Point{})
		require.Equal(t, ErrTypeNoDrawing, errors.Type(err))
	})
}

func TestNew(t *testing.T) {
	m := New("", nil)
	require.Equal(t, DefaultName, m.Name())
	require.False(t, m.IsInitialised())
	require.Nil(t, m.Point(ref(0, 0)))

	_, err := m.MakePoints(pt(0, 0), FullFill, nil)
	require.Equal(t, ErrTypeNoGrid, errors.Type(err))
	require.Equal(t, ErrTypeNoGrid, errors.Type(m.FillPoint(pt(0, 0), true)))
	require.Equal(t, float64(-2), m.GetLocationValue(pt(0, 0)))
}

func TestGetLocationValue(t *testing.T) {
	m := newMap(t, 1)
	_, err := m.MakePoints(pt(5, 5), FullFill, nil)
	require.NoError(t, err)

	require.Equal(t, float64(-2), m.GetLocationValue(pt(3, 3)))
	require.Equal(t, float64(-2), m.GetLocationValue(pt(30, 3)))

	m.ConvertAttributes(LegacyBasic, map[pixel.Ref]LegacyRecord{
		ref(3, 3): record(map[int]int32{slotNeighbourhoodSize: 7}, nil),
	})
	m.SetDisplayedAttribute(0)
	require.Equal(t, 0, m.DisplayedAttribute())
	require.Equal(t, float64(7), m.GetLocationValue(pt(3.2, 2.9)))
}
