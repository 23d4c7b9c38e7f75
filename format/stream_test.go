package format

import (
	"bytes"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestStreamRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Byte('g')
	w.Bool(true)
	w.Int16(-3)
	w.Int(-42)
	w.Int64(1 << 40)
	w.Float32(1.5)
	w.Float64(-2.25)
	w.String("Connectivity")
	w.Float32s([]float32{-1, 0.5})
	w.Ints([]int{3, 1})
	require.NoError(t, w.Err())

	r := NewReader(&buf)
	require.Equal(t, byte('g'), r.Byte())
	require.True(t, r.Bool())
	require.Equal(t, int16(-3), r.Int16())
	require.Equal(t, -42, r.Int())
	require.Equal(t, int64(1<<40), r.Int64())
	require.Equal(t, float32(1.5), r.Float32())
	require.Equal(t, -2.25, r.Float64())
	require.Equal(t, "Connectivity", r.String())
	require.Equal(t, []float32{-1, 0.5}, r.Float32s())
	require.Equal(t, []int{3, 1}, r.Ints())
	require.NoError(t, r.Err())

	_, ok := r.Marker()
	require.False(t, ok)
	require.NoError(t, r.Err())
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2}))
	require.Equal(t, 0, r.Int())
	require.Error(t, r.Err())
	require.True(t, errors.IsType(r.Err(), ErrTypeTruncated))

	// later reads keep the first error
	require.Equal(t, "", r.String())
	require.True(t, errors.IsType(r.Err(), ErrTypeTruncated))
}

func TestDecoderTable(t *testing.T) {
	table := DecoderTable[string]{
		{MinVersion: 70, MaxVersion: 159, Layout: "legacy"},
		{MinVersion: 160, MaxVersion: Current, Layout: "table"},
	}

	layout, ok := table.Lookup(100)
	require.True(t, ok)
	require.Equal(t, "legacy", layout)

	layout, ok = table.Lookup(Current)
	require.True(t, ok)
	require.Equal(t, "table", layout)

	_, ok = table.Lookup(Current + 1)
	require.False(t, ok)
}
