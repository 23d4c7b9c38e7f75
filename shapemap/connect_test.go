package shapemap

import (
	"context"
	"testing"

	"github.com/aukilabs/depthmap/comm"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/stretchr/testify/require"
)

// crossMap returns an axial map holding a horizontal and a vertical line
// crossing at (5,5), and an isolated line.
func crossMap(t *testing.T) *ShapeMap {
	m := New("axial", AxialMap)
	m.MakeLineShape(line(1, 5, 9, 5), nil)
	m.MakeLineShape(line(5, 1, 5, 9), nil)
	m.MakeLineShape(line(1, 1, 2, 2), nil)
	require.NoError(t, m.MakeShapeConnections(nil))
	return m
}

func connectivity(t *testing.T, m *ShapeMap) []float32 {
	col, ok := m.Attributes().ColumnIndex(ConnectivityColumn)
	require.True(t, ok)

	values := make([]float32, m.ShapeCount())
	for i := range values {
		values[i] = m.Attributes().GetValue(i, col)
	}
	return values
}

func TestMakeShapeConnections(t *testing.T) {
	m := crossMap(t)

	require.Equal(t, []int{1}, m.Connections(0))
	require.Equal(t, []int{0}, m.Connections(1))
	require.Empty(t, m.Connections(2))
	require.Equal(t, []float32{1, 1, 0}, connectivity(t, m))

	col, _ := m.Attributes().ColumnIndex(ConnectivityColumn)
	require.Equal(t, col, m.DisplayedAttribute())

	t.Run("maps without a graph are left alone", func(t *testing.T) {
		m := New("drawing", DrawingMap)
		m.MakeLineShape(line(1, 5, 9, 5), nil)
		require.NoError(t, m.MakeShapeConnections(nil))
		require.Empty(t, m.Connectors())
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := m.MakeShapeConnections(comm.New(ctx, nil))
		require.Error(t, err)
		require.True(t, comm.IsCancelled(err))
	})
}

func TestConvexConnections(t *testing.T) {
	m := New("convex", ConvexMap)
	m.MakePolyShape(rect(0, 0, 4, 4), false, nil)
	m.MakePolyShape(rect(3, 1, 7, 3), false, nil)
	m.MakePolyShape(rect(8, 8, 9, 9), false, nil)
	require.NoError(t, m.MakeShapeConnections(nil))

	require.Equal(t, []int{1}, m.Connections(0))
	require.Equal(t, []int{0}, m.Connections(1))
	require.Empty(t, m.Connections(2))
}

func TestLinkShapes(t *testing.T) {
	m := crossMap(t)

	require.False(t, m.LinkShapes(0, 0))
	require.False(t, m.LinkShapes(0, 1))

	require.True(t, m.LinkShapes(0, 2))
	require.Equal(t, []int{1, 2}, m.Connections(0))
	require.Equal(t, []int{0}, m.Connections(2))
	require.Equal(t, []Pair{{A: 0, B: 2}}, m.Links())
	require.Equal(t, []float32{2, 1, 1}, connectivity(t, m))

	require.True(t, m.UnlinkShapes(1, 0))
	require.Equal(t, []int{2}, m.Connections(0))
	require.Equal(t, []Pair{{A: 0, B: 1}}, m.Unlinks())
	require.Equal(t, []float32{1, 0, 1}, connectivity(t, m))
	require.False(t, m.UnlinkShapes(1, 0))

	t.Run("linking an unlinked pair restores it", func(t *testing.T) {
		require.True(t, m.LinkShapes(0, 1))
		require.Empty(t, m.Unlinks())
		require.Equal(t, []int{1, 2}, m.Connections(0))
		require.True(t, m.UnlinkShapes(0, 1))
	})

	t.Run("clear links", func(t *testing.T) {
		m.ClearLinks()
		require.Empty(t, m.Links())
		require.Empty(t, m.Unlinks())
		require.Equal(t, []int{1}, m.Connections(0))
		require.Empty(t, m.Connections(2))
		require.Equal(t, []float32{1, 1, 0}, connectivity(t, m))
	})
}

func TestLinkShapesAt(t *testing.T) {
	m := crossMap(t)

	require.False(t, m.LinkShapesAt(geometry.Point{X: 1.9, Y: 1.9}))

	require.True(t, m.SetCurSelKeys([]int{0}, false))
	require.True(t, m.LinkShapesAt(geometry.Point{X: 1.9, Y: 1.9}))
	require.Equal(t, []int{1, 2}, m.Connections(0))

	require.True(t, m.UnlinkShapesAt(geometry.Point{X: 1.9, Y: 1.9}))
	require.Equal(t, []int{1}, m.Connections(0))
	require.Empty(t, m.Links())
}

func TestLinkSegments(t *testing.T) {
	m := New("segments", SegmentMap)
	m.MakeLineShape(line(0, 0, 1, 0), nil)
	m.MakeLineShape(line(1, 0, 2, 0), nil)

	m.LinkSegments(0, 1, 1, -1, 0.5)
	m.LinkSegments(0, 1, 1, -1, 0.5)

	require.Equal(t, SegmentLinks{{SegmentRef: SegmentRef{Dir: -1, Ref: 1}, Weight: 0.5}}, m.Connectors()[0].Forward)
	require.Equal(t, SegmentLinks{{SegmentRef: SegmentRef{Dir: 1, Ref: 0}, Weight: 0.5}}, m.Connectors()[1].Back)

	weighted, ok := m.Attributes().ValueByName(0, WeightedConnectivityColumn)
	require.True(t, ok)
	require.Equal(t, float32(1), weighted)
}

func TestNewPair(t *testing.T) {
	require.Equal(t, Pair{A: 1, B: 3}, NewPair(3, 1))
	require.True(t, NewPair(3, 1).Has(3))
	require.False(t, NewPair(3, 1).Has(2))
}
