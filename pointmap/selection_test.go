package pointmap

import (
	"testing"

	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pixel"
	"github.com/aukilabs/depthmap/shapemap"
	"github.com/stretchr/testify/require"
)

func region(x0, y0, x1, y1 float64) geometry.Region {
	return geometry.Region{BottomLeft: pt(x0, y0), TopRight: pt(x1, y1)}
}

func TestSetCurSel(t *testing.T) {
	m := newMap(t, 1, wall())
	_, err := m.MakePoints(pt(2, 2), FullFill, nil)
	require.NoError(t, err)

	require.True(t, m.SetCurSel(region(0.6, 0.6, 2.4, 2.4), false))
	require.Equal(t, 4, m.SelectionCount())
	require.Equal(t, []pixel.Ref{ref(1, 1), ref(1, 2), ref(2, 1), ref(2, 2)}, m.SelectedRefs())
	require.True(t, m.IsSelected(ref(2, 1)))
	require.NotZero(t, m.PointState(ref(1, 1))&Selected)
	require.Zero(t, m.Point(ref(1, 1)).State()&Selected)

	t.Run("add", func(t *testing.T) {
		require.True(t, m.SetCurSel(region(4, 4, 4, 4), true))
		require.Equal(t, 5, m.SelectionCount())

		bounds, ok := m.SelectionBounds()
		require.True(t, ok)
		require.Equal(t, region(0.6, 0.6, 4, 4), bounds)
	})

	t.Run("replace", func(t *testing.T) {
		require.True(t, m.SetCurSel(region(3, 9, 3, 9), false))
		require.Equal(t, []pixel.Ref{ref(3, 9)}, m.SelectedRefs())
		require.False(t, m.IsSelected(ref(1, 1)))
	})

	t.Run("empty points are skipped", func(t *testing.T) {
		require.True(t, m.SetCurSel(region(3, 0, 7, 0), false))
		require.Equal(t, []pixel.Ref{ref(3, 0), ref(4, 0)}, m.SelectedRefs())

		require.False(t, m.SetCurSel(region(6, 6, 9, 9), false))
		require.False(t, m.HasSelection())
	})

	t.Run("clear", func(t *testing.T) {
		require.True(t, m.SetCurSel(region(1, 1, 1, 1), false))
		require.True(t, m.ClearSel())
		require.False(t, m.ClearSel())
		_, ok := m.SelectionBounds()
		require.False(t, ok)
	})
}

func TestSetCurSelKeys(t *testing.T) {
	m := filledMap(t)
	m.ConvertAttributes(LegacyBasic, map[pixel.Ref]LegacyRecord{
		ref(1, 1): record(nil, nil),
		ref(2, 2): record(nil, nil),
	})

	require.True(t, m.SetCurSelKeys([]int{refKey(ref(1, 1)), refKey(ref(3, 3))}, false))
	require.Equal(t, []pixel.Ref{ref(1, 1)}, m.SelectedRefs())
	require.Equal(t, 1, m.Attributes().SelectionCount())

	require.True(t, m.SetCurSelKeys([]int{refKey(ref(2, 2))}, true))
	require.Equal(t, 2, m.SelectionCount())
	require.Equal(t, 2, m.Attributes().SelectionCount())

	bounds, ok := m.SelectionBounds()
	require.True(t, ok)
	require.Equal(t, region(0.5, 0.5, 2.5, 2.5), bounds)

	require.False(t, m.SetCurSelKeys([]int{refKey(ref(4, 4))}, false))
	require.False(t, m.HasSelection())
	require.Zero(t, m.Attributes().SelectionCount())

	t.Run("rows are selected by region too", func(t *testing.T) {
		require.True(t, m.SetCurSel(region(0, 0, 3, 3), false))
		require.Equal(t, 16, m.SelectionCount())
		require.Equal(t, 2, m.Attributes().SelectionCount())
	})
}

func TestOverrideSelPixel(t *testing.T) {
	m := newMap(t, 1)

	require.True(t, m.OverrideSelPixel(ref(9, 9)))
	require.False(t, m.OverrideSelPixel(ref(9, 9)))
	require.False(t, m.OverrideSelPixel(ref(11, 9)))
	require.True(t, m.IsSelected(ref(9, 9)))

	bounds, ok := m.SelectionBounds()
	require.True(t, ok)
	require.Equal(t, region(8.5, 8.5, 9.5, 9.5), bounds)
}

func TestShapeFromSelection(t *testing.T) {
	m := filledMap(t)
	require.True(t, m.SetCurSel(region(2, 2, 3, 3), false))

	shapes := shapemap.New("outline", shapemap.DataMap)
	key := shapes.MakeShapeFromPointSet(m)
	require.Equal(t, 0, key)

	s := shapes.Shape(0)
	require.True(t, s.IsPolygon())
	require.InDelta(t, 3.5, s.Area(), 1e-9)

	m.ClearSel()
	require.Equal(t, -1, shapes.MakeShapeFromPointSet(m))
}
