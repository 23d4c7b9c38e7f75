package shapemap

import (
	"bytes"
	"testing"

	"github.com/aukilabs/depthmap/format"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/shapes"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestReadWrite(t *testing.T) {
	m := crossMap(t)
	m.MakePolyShape(rect(6, 6, 8, 8), false, nil)
	require.True(t, m.LinkShapes(0, 2))
	require.True(t, m.UnlinkShapes(0, 1))
	m.LinkSegments(1, 1, 3, -1, 2)
	m.SetMapInfo(&MapInfo{Version: "300", Charset: "WindowsLatin1", Delimiter: ',', CoordSys: "NonEarth Units 1"})
	m.SetEditable(true)

	var buf bytes.Buffer
	require.NoError(t, m.Write(format.NewWriter(&buf)))

	read := New("", EmptyMap)
	require.NoError(t, read.Read(format.NewReader(&buf), format.Current))

	require.Equal(t, "axial", read.Name())
	require.Equal(t, AxialMap, read.Type())
	require.True(t, read.HasGraph())
	require.True(t, read.Editable())
	require.True(t, read.Show())
	require.Equal(t, m.Region(), read.Region())
	require.Equal(t, m.Rows(), read.Rows())
	require.Equal(t, m.Keys(), read.Keys())
	for i := 0; i < m.ShapeCount(); i++ {
		require.Empty(t, cmp.Diff(m.Shape(i), read.Shape(i), cmp.AllowUnexported(shapes.Shape{})))
	}
	require.Empty(t, cmp.Diff(m.Connectors(), read.Connectors(), cmpopts.EquateEmpty()))
	require.Equal(t, m.Links(), read.Links())
	require.Equal(t, m.Unlinks(), read.Unlinks())
	require.Equal(t, m.MapInfo(), read.MapInfo())
	require.Equal(t, m.DisplayedAttribute(), read.DisplayedAttribute())
	require.Equal(t, connectivity(t, m), connectivity(t, read))

	// the pixel index is rebuilt
	require.Equal(t, 3, read.PointInPoly(geometry.Point{X: 7, Y: 7}))
	require.Equal(t, 0, read.GetClosestOpenGeom(geometry.Point{X: 7.5, Y: 5}))

	t.Run("without map info", func(t *testing.T) {
		m := New("plain", DataMap)
		m.MakePointShape(geometry.Point{X: 1, Y: 1}, nil)

		var buf bytes.Buffer
		require.NoError(t, m.Write(format.NewWriter(&buf)))

		read := New("", EmptyMap)
		read.SetMapInfo(&MapInfo{})
		require.NoError(t, read.Read(format.NewReader(&buf), format.Current))
		require.Nil(t, read.MapInfo())
		require.False(t, read.HasGraph())
		require.Equal(t, 1, read.ShapeCount())
	})

	t.Run("truncated", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, m.Write(format.NewWriter(&buf)))

		read := New("", EmptyMap)
		err := read.Read(format.NewReader(bytes.NewReader(buf.Bytes()[:buf.Len()/2])), format.Current)
		require.Error(t, err)
		require.Equal(t, format.ErrTypeTruncated, errors.Type(err))
	})

	t.Run("unsupported version", func(t *testing.T) {
		err := New("", EmptyMap).Read(format.NewReader(&bytes.Buffer{}), format.VersionAxialLinks)
		require.Equal(t, format.ErrTypeUnsupportedVersion, errors.Type(err))
	})
}
