package pointmap

import (
	"bytes"
	"testing"

	"github.com/aukilabs/depthmap/format"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pixel"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func testNode() *Node {
	n := &Node{}
	n.Bins[0] = Bin{
		Dir:      pixel.Horizontal,
		Count:    4,
		Distance: 1.5,
		Runs: []Run{
			{Start: ref(3, 2), End: ref(4, 2)},
			{Start: ref(1, 3), End: ref(2, 3)},
		},
	}
	n.Bins[4] = Bin{
		Dir:         pixel.PosDiagonal,
		Count:       2,
		Distance:    2,
		OccDistance: 0.5,
		Runs:        []Run{{Start: ref(3, 3), End: ref(4, 4)}},
	}
	n.Bins[8] = Bin{
		Dir:   pixel.NegDiagonal,
		Count: 2,
		Runs:  []Run{{Start: ref(3, 1), End: ref(4, 0)}},
	}
	n.Bins[12] = Bin{Dir: pixel.Vertical}
	n.Occlusions[0] = []pixel.Ref{ref(4, 2)}
	return n
}

func TestBinContains(t *testing.T) {
	n := testNode()
	require.True(t, n.Bins[0].Contains(ref(4, 2)))
	require.True(t, n.Bins[0].Contains(ref(1, 3)))
	require.False(t, n.Bins[0].Contains(ref(5, 2)))
	require.True(t, n.Bins[4].Contains(ref(4, 4)))
	require.False(t, n.Bins[4].Contains(ref(4, 3)))
	require.True(t, n.Bins[8].Contains(ref(4, 0)))
	require.False(t, n.Bins[12].Contains(ref(2, 2)))
	require.Equal(t, 8, n.Count())
}

func TestReadWrite(t *testing.T) {
	m := newMap(t, 1, wall())
	m.SetName("ground floor")
	_, err := m.MakePoints(pt(2, 2), FullFill, nil)
	require.NoError(t, err)
	require.NoError(t, m.MergePixels(ref(1, 1), ref(3, 3)))
	m.ConvertAttributes(LegacyBasic, map[pixel.Ref]LegacyRecord{
		ref(2, 2): record(map[int]int32{slotNeighbourhoodSize: 12}, nil),
	})
	m.SetDisplayedAttribute(0)

	graph := m.point(ref(2, 2))
	graph.node = testNode()
	graph.gridConnections = ConnectE | ConnectN
	m.processed = true

	var buf bytes.Buffer
	require.NoError(t, m.Write(format.NewWriter(&buf)))

	read := New("", m.Drawing())
	require.NoError(t, read.Read(format.NewReader(&buf), format.Current))
	require.Zero(t, buf.Len())

	require.True(t, read.IsInitialised())
	require.Equal(t, "ground floor", read.Name())
	require.Equal(t, m.Rows(), read.Rows())
	require.Equal(t, m.Cols(), read.Cols())
	require.Equal(t, m.Spacing(), read.Spacing())
	require.Equal(t, m.BottomLeft(), read.BottomLeft())
	require.Equal(t, m.Region(), read.Region())
	require.Equal(t, 55, read.PointCount())
	require.True(t, read.IsProcessed())
	require.False(t, read.IsBoundaryGraph())
	require.False(t, read.HasBlockedLines())
	require.False(t, read.CanUndo())
	require.Equal(t, m.MergeLines(), read.MergeLines())
	require.Equal(t, 0, read.DisplayedAttribute())
	require.Equal(t, float64(12), read.GetLocationValue(pt(2, 2)))

	for x := 0; x < m.Cols(); x++ {
		for y := 0; y < m.Rows(); y++ {
			want, got := m.Point(ref(x, y)), read.Point(ref(x, y))
			require.Equal(t, want.State(), got.State(), "state of %d,%d", x, y)
			require.Equal(t, want.Merge(), got.Merge())
			require.Equal(t, want.Location(), got.Location())
			require.Equal(t, want.GridConnections(), got.GridConnections())
		}
	}

	node := read.Point(ref(2, 2)).Node()
	require.NotNil(t, node)
	require.Empty(t, cmp.Diff(testNode(), node, cmpopts.EquateEmpty()))
	require.Nil(t, read.Point(ref(1, 1)).Node())
}

func TestWriteUninitialised(t *testing.T) {
	var buf bytes.Buffer
	err := New("", nil).Write(format.NewWriter(&buf))
	require.Equal(t, ErrTypeNoGrid, errors.Type(err))
	require.Zero(t, buf.Len())
}

// writeLegacyMap encodes a 2x2 map the way version 155 files store it. The
// point at 0,0 has a graph node seeing its east neighbour and a record of
// legacy attributes. It is merged with the point at 1,1.
func writeLegacyMap(w *format.Writer) {
	w.Float64(1)
	w.Int(2)
	w.Int(2)
	w.Int(4)
	geometry.WritePoint(w, pt(10, 20))
	w.Int(int(LegacyBasic | LegacyGlobal))
	w.Int(LegacySlotCount)

	for _, p := range []pixel.Ref{ref(0, 0), ref(0, 1), ref(1, 0), ref(1, 1)} {
		w.Int32(int32(Filled))
		w.Int32(0)
		w.Int32(0)

		switch p {
		case ref(0, 0):
			writeRef(w, ref(1, 1))
		case ref(1, 1):
			writeRef(w, ref(0, 0))
		default:
			writeRef(w, pixel.NoRef)
		}

		w.Bool(p == ref(0, 0))
		if p == ref(0, 0) {
			for i := 0; i < BinCount; i++ {
				if i != 0 {
					w.Byte(0)
					w.Int16(0)
					continue
				}
				w.Byte(pixel.Horizontal)
				w.Int16(1)
				w.Float32(1)
				w.Int16(1)
				writeRef(w, ref(1, 0))
				w.Int16(0)
			}

			w.Int(0)
			w.Int(0)
			w.Float64(0)
			w.Float64(0)
			w.Float64(0)
			rec := record(map[int]int32{
				slotNeighbourhoodSize: 3,
				slotGraphSize:         10,
				slotTotalDepth:        20,
			}, nil)
			for _, v := range rec {
				w.Uint32(v)
			}
		}

		w.Uint32(0) // data objects
		w.Ints(nil) // boundary nodes
	}
}

func TestReadLegacy(t *testing.T) {
	var buf bytes.Buffer
	w := format.NewWriter(&buf)
	writeLegacyMap(w)
	require.NoError(t, w.Err())

	m := New("", nil)
	require.NoError(t, m.Read(format.NewReader(&buf), 155))
	require.Zero(t, buf.Len())

	require.Equal(t, DefaultName, m.Name())
	require.Equal(t, 4, m.PointCount())
	require.Equal(t, pt(11, 21), m.Point(ref(1, 1)).Location())
	require.False(t, m.IsProcessed())
	require.Equal(t, []MergeLine{{A: ref(0, 0), B: ref(1, 1)}}, m.MergeLines())
	require.NotZero(t, m.Point(ref(1, 1)).State()&Merged)

	graph := m.Point(ref(0, 0))
	require.NotNil(t, graph.Node())
	require.Equal(t, ConnectE, graph.GridConnections())
	require.Zero(t, m.Point(ref(1, 0)).GridConnections())

	table := m.Attributes()
	require.Equal(t, 1, table.RowCount())
	require.Equal(t, 7, table.ColumnCount())
	require.Equal(t, 0, m.DisplayedAttribute())
	require.Equal(t, float64(3), m.GetLocationValue(pt(10, 20)))

	row, ok := table.RowIndex(refKey(ref(0, 0)))
	require.True(t, ok)
	hh, ok := table.ValueByName(row, "Visual Integration [HH]")
	require.True(t, ok)
	require.InDelta(t, 1.0, float64(hh), 1e-6)
}

func TestReadUnsupportedVersion(t *testing.T) {
	for _, version := range []int{OldestVersion - 1, format.Current + 1} {
		err := New("", nil).Read(format.NewReader(bytes.NewReader(nil)), version)
		require.Equal(t, format.ErrTypeUnsupportedVersion, errors.Type(err))
	}
}

func TestReadTruncated(t *testing.T) {
	m := filledMap(t)
	var buf bytes.Buffer
	require.NoError(t, m.Write(format.NewWriter(&buf)))

	data := buf.Bytes()
	read := New("", nil)
	err := read.Read(format.NewReader(bytes.NewReader(data[:len(data)/2])), format.Current)
	require.Error(t, err)
	require.True(t, errors.IsType(err, format.ErrTypeTruncated))
	require.False(t, read.IsInitialised())
}

func TestReadCorruptedGrid(t *testing.T) {
	var buf bytes.Buffer
	w := format.NewWriter(&buf)
	w.String("broken")
	w.Float64(1)
	w.Int(-2)
	w.Int(2)
	w.Int(0)
	geometry.WritePoint(w, pt(0, 0))

	err := New("", nil).Read(format.NewReader(&buf), format.Current)
	require.True(t, errors.IsType(err, format.ErrTypeCorrupted))
}
