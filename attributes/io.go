package attributes

import (
	"sort"

	"github.com/aukilabs/depthmap/format"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

type columnLayout struct {
	total         bool
	displayParams bool
	formula       bool
	locked        bool
	creator       bool
}

type tableLayout struct {
	column           columnLayout
	layers           bool
	refDisplayParams bool
}

var tableDecoders = format.DecoderTable[tableLayout]{
	{MinVersion: 160, MaxVersion: 209, Layout: tableLayout{
		column: columnLayout{total: true},
	}},
	{MinVersion: 210, MaxVersion: 229, Layout: tableLayout{
		column: columnLayout{total: true, displayParams: true},
	}},
	{MinVersion: 230, MaxVersion: 299, Layout: tableLayout{
		column:           columnLayout{total: true, displayParams: true},
		refDisplayParams: true,
	}},
	{MinVersion: 300, MaxVersion: 349, Layout: tableLayout{
		column:           columnLayout{total: true, displayParams: true, formula: true},
		refDisplayParams: true,
	}},
	{MinVersion: 350, MaxVersion: 369, Layout: tableLayout{
		column:           columnLayout{total: true, displayParams: true, formula: true, locked: true, creator: true},
		refDisplayParams: true,
	}},
	{MinVersion: 370, MaxVersion: 409, Layout: tableLayout{
		column:           columnLayout{total: true, displayParams: true, formula: true, locked: true},
		refDisplayParams: true,
	}},
	{MinVersion: 410, MaxVersion: format.Current, Layout: tableLayout{
		column:           columnLayout{total: true, displayParams: true, formula: true, locked: true},
		layers:           true,
		refDisplayParams: true,
	}},
}

// lockedByDefault lists the columns that files older than column locking
// treat as locked.
var lockedByDefault = map[string]bool{
	"Connectivity":          true,
	"Connectivity (Degree)": true,
	"Axial Line Ref":        true,
	"Segment Length":        true,
	"Line Length":           true,
}

// Read replaces the content of the table with a table stored at the given
// schema version. Selection is never stored, so every row comes back
// unselected.
func (t *Table) Read(r *format.Reader, version int) error {
	layout, ok := tableDecoders.Lookup(version)
	if !ok {
		return errors.New("attribute table version not supported").
			WithType(format.ErrTypeUnsupportedVersion).
			WithTag("version", version)
	}

	read := NewTable(t.name)
	if layout.layers {
		read.availableLayers = r.Uint64()
		read.visibleLayers = r.Uint64()
		read.layers = read.layers[:0]
		count := r.Count()
		for i := 0; i < count && r.Err() == nil; i++ {
			key := r.Uint64()
			read.layers = append(read.layers, Layer{Key: key, Name: r.String()})
		}
		sort.Slice(read.layers, func(a, b int) bool {
			return read.layers[a].Key < read.layers[b].Key
		})
	}

	columnCount := r.Count()
	physical := make([]bool, columnCount)
	for i := 0; i < columnCount && r.Err() == nil; i++ {
		c := readColumn(r, layout.column)
		if r.Err() != nil {
			break
		}
		if c.physical < 0 || c.physical >= columnCount || physical[c.physical] {
			r.Fail(errors.New("invalid physical column").
				WithType(format.ErrTypeCorrupted).
				WithTag("column", c.Name).
				WithTag("physical", c.physical))
			break
		}
		physical[c.physical] = true
		read.columns = append(read.columns, c)
	}
	sort.SliceStable(read.columns, func(a, b int) bool {
		return read.columns[a].Name < read.columns[b].Name
	})

	rowCount := r.Count()
	for i := 0; i < rowCount && r.Err() == nil; i++ {
		key := r.Int()
		layers := everythingLayer
		if layout.layers {
			layers = r.Uint64()
		}
		values := r.Float32s()
		if r.Err() != nil {
			break
		}
		if len(values) != columnCount {
			r.Fail(errors.New("row length does not match column count").
				WithType(format.ErrTypeCorrupted).
				WithTag("key", key).
				WithTag("values", len(values)).
				WithTag("columns", columnCount))
			break
		}
		if n := len(read.keys); n > 0 && read.keys[n-1] >= key {
			r.Fail(errors.New("row keys out of order").
				WithType(format.ErrTypeCorrupted).
				WithTag("key", key))
			break
		}

		read.keys = append(read.keys, key)
		read.rows = append(read.rows, &row{
			values:     values,
			layers:     layers,
			displayPos: -1,
		})
	}

	// Value counts are not stored.
	for _, c := range read.columns {
		for _, r := range read.rows {
			if r.values[c.physical] != Null {
				c.count++
			}
		}
	}

	if layout.refDisplayParams {
		read.refDisplayParams = readDisplayParams(r)
		read.displayParams = read.refDisplayParams
	}

	if err := r.Err(); err != nil {
		return errors.New("reading attribute table failed").
			WithType(errors.Type(err)).
			WithTag("table", t.name).
			WithTag("version", version).
			Wrap(err)
	}

	*t = *read
	return nil
}

func readColumn(r *format.Reader, layout columnLayout) *Column {
	c := newColumn(r.String(), 0)
	c.min = float64(r.Float32())
	c.max = float64(r.Float32())
	if layout.total {
		c.total = r.Float64()
	}
	c.physical = r.Int()
	c.Hidden = r.Bool()

	if layout.locked {
		c.Locked = r.Bool()
	} else {
		c.Locked = lockedByDefault[c.Name]
	}
	if layout.displayParams {
		c.DisplayParams = readDisplayParams(r)
	}
	if layout.formula {
		c.Formula = r.String()
	}
	if layout.creator {
		_ = r.String()
	}
	return c
}

func readDisplayParams(r *format.Reader) DisplayParams {
	return DisplayParams{
		Blue:       r.Float32(),
		Red:        r.Float32(),
		ColorScale: r.Int32(),
	}
}

// Write stores the table at the current schema version.
func (t *Table) Write(w *format.Writer) error {
	w.Uint64(t.availableLayers)
	w.Uint64(t.visibleLayers)
	w.Int(len(t.layers))
	for _, l := range t.layers {
		w.Uint64(l.Key)
		w.String(l.Name)
	}

	w.Int(len(t.columns))
	for i := range t.columns {
		writeColumn(w, t.stats(i))
	}

	w.Int(len(t.rows))
	for i, r := range t.rows {
		w.Int(t.keys[i])
		w.Uint64(r.layers)
		w.Float32s(r.values)
	}

	writeDisplayParams(w, t.refDisplayParams)

	if err := w.Err(); err != nil {
		return errors.New("writing attribute table failed").
			WithType(errors.Type(err)).
			WithTag("table", t.name).
			Wrap(err)
	}
	return nil
}

func writeColumn(w *format.Writer, c *Column) {
	c.updated = false
	w.String(c.Name)
	w.Float32(float32(c.min))
	w.Float32(float32(c.max))
	w.Float64(c.total)
	w.Int(c.physical)
	w.Bool(c.Hidden)
	w.Bool(c.Locked)
	writeDisplayParams(w, c.DisplayParams)
	w.String(c.Formula)
}

func writeDisplayParams(w *format.Writer, dp DisplayParams) {
	w.Float32(dp.Blue)
	w.Float32(dp.Red)
	w.Int32(dp.ColorScale)
}
