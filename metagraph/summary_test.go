package metagraph

import (
	"bytes"
	"testing"

	"github.com/aukilabs/depthmap/shapemap"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func requireSummary(t *testing.T, g *MetaGraph, s Summary) {
	require.Equal(t, g.ID, s.ID)
	require.Equal(t, "plan", s.Name)
	require.Equal(t, g.Properties, s.Properties)

	require.Len(t, s.Drawings, 1)
	require.Equal(t, "ground floor", s.Drawings[0].Name)
	require.Len(t, s.Drawings[0].Layers, 2)
	require.Equal(t, "walls", s.Drawings[0].Layers[1].Name)
	require.Equal(t, 1, s.Drawings[0].Layers[1].Shapes)

	require.Len(t, s.PointMaps, 1)
	require.Equal(t, shapemap.PointMap.String(), s.PointMaps[0].Type)
	require.Equal(t, 55, s.PointMaps[0].Shapes)
	require.True(t, s.PointMaps[0].Displayed)

	require.Len(t, s.ShapeGraphs, 2)
	axial := s.ShapeGraphs[0]
	require.Equal(t, "axial", axial.Name)
	require.Equal(t, shapemap.AxialMap.String(), axial.Type)
	require.True(t, axial.Displayed)
	require.False(t, s.ShapeGraphs[1].Displayed)
	require.Equal(t, 2, axial.Rows)
	require.Len(t, axial.Attributes, 1)
	require.Equal(t, shapemap.ConnectivityColumn, axial.Attributes[0].Column)
	require.Equal(t, 2, axial.Attributes[0].Count)
	require.Equal(t, 1.0, axial.Attributes[0].Mean)
	require.Equal(t, 2.0, axial.Attributes[0].Total)

	require.Len(t, s.DataMaps, 1)
	require.Equal(t, "gates", s.DataMaps[0].Name)
	require.Equal(t, 2, s.DataMaps[0].Shapes)
}

func TestSummary(t *testing.T) {
	g := fullGraph(t)
	requireSummary(t, g, g.Summary())

	empty := New("").Summary()
	require.Equal(t, UnknownName, empty.Name)
	require.Equal(t, -1, empty.Version)
	require.Empty(t, empty.Drawings)
	require.Empty(t, empty.PointMaps)
}

func TestSummaryEncode(t *testing.T) {
	g := fullGraph(t)
	s := g.Summary()

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Encode(&buf, FormatJSON))

		var decoded Summary
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		requireSummary(t, g, decoded)
	})

	t.Run("msgpack", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Encode(&buf, FormatMsgpack))

		var decoded Summary
		dec := msgpack.NewDecoder(&buf)
		dec.SetCustomStructTag("json")
		require.NoError(t, dec.Decode(&decoded))
		requireSummary(t, g, decoded)
	})

	t.Run("proto", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Encode(&buf, FormatProto))

		decoded, err := DecodeProtoSummary(buf.Bytes())
		require.NoError(t, err)
		requireSummary(t, g, decoded)
	})

	t.Run("unknown format", func(t *testing.T) {
		var buf bytes.Buffer
		err := s.Encode(&buf, "xml")
		require.Equal(t, ErrTypeUnknownFormat, errors.Type(err))
		require.Zero(t, buf.Len())
	})

	t.Run("damaged proto", func(t *testing.T) {
		_, err := DecodeProtoSummary([]byte{0xff, 0xff})
		require.Error(t, err)
	})
}
