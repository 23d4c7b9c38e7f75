package attributes

import (
	"sort"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

const (
	ErrTypeColumnExists   = "column_exists"
	ErrTypeColumnNotFound = "column_not_found"
)

type row struct {
	values   []float32
	selected bool
	layers   uint64

	displayPos  int
	displayNorm float32
}

func newRow(columns int) *row {
	values := make([]float32, columns)
	for i := range values {
		values[i] = Null
	}
	return &row{
		values:     values,
		layers:     everythingLayer,
		displayPos: -1,
	}
}

// Table stores float attributes for keyed rows. Columns are kept ordered by
// name and rows by key, so column and row indexes move when columns or rows
// are inserted.
type Table struct {
	name string

	columns []*Column
	keys    []int
	rows    []*row

	refDisplayParams DisplayParams

	availableLayers uint64
	visibleLayers   uint64
	layers          []Layer

	displayColumn int
	displayParams DisplayParams
	displayIndex  []int
	indexStale    bool
	visibleSize   int

	selCount      int
	selValueCount int
	selValue      float64
}

// NewTable creates an empty table showing the default layer only.
func NewTable(name string) *Table {
	return &Table{
		name:             name,
		refDisplayParams: DefaultDisplayParams,
		availableLayers:  ^everythingLayer,
		visibleLayers:    everythingLayer,
		layers:           []Layer{{Key: everythingLayer, Name: everythingLayerName}},
		displayColumn:    NoColumn,
		displayParams:    DefaultDisplayParams,
	}
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// Column returns the header of the column at index col.
func (t *Table) Column(col int) *Column {
	return t.columns[col]
}

// ColumnName returns the name of a column, including the ref column.
func (t *Table) ColumnName(col int) string {
	if col == RefColumn {
		return RefColumnName
	}
	return t.columns[col].Name
}

func (t *Table) searchColumn(name string) (int, bool) {
	i := sort.Search(len(t.columns), func(i int) bool {
		return t.columns[i].Name >= name
	})
	return i, i < len(t.columns) && t.columns[i].Name == name
}

// ColumnIndex returns the index of the named column. The ref column is found
// by its name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	if i, ok := t.searchColumn(name); ok {
		return i, true
	}
	if name == RefColumnName {
		return RefColumn, true
	}
	return 0, false
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// InsertColumn adds a column filled with Null values and returns its index.
// The index of an existing column with the same name is returned unchanged.
func (t *Table) InsertColumn(name string) int {
	i, ok := t.searchColumn(name)
	if ok {
		return i
	}

	for _, r := range t.rows {
		r.values = append(r.values, Null)
	}

	c := newColumn(name, len(t.columns))
	t.columns = append(t.columns, nil)
	copy(t.columns[i+1:], t.columns[i:])
	t.columns[i] = c

	t.shiftDisplayColumn(i, 1)
	return i
}

// InsertLockedColumn adds a column that users may not edit.
func (t *Table) InsertLockedColumn(name string) int {
	col := t.InsertColumn(name)
	t.columns[col].Locked = true
	return col
}

// ResetColumn clears every value of a column.
func (t *Table) ResetColumn(col int) {
	c := t.columns[col]
	for _, r := range t.rows {
		r.values[c.physical] = Null
	}
	c.reset()
	c.updated = true
}

// RemoveColumn deletes a column and its values.
func (t *Table) RemoveColumn(col int) {
	physical := t.columns[col].physical
	for _, r := range t.rows {
		r.values = append(r.values[:physical], r.values[physical+1:]...)
	}

	t.columns = append(t.columns[:col], t.columns[col+1:]...)
	for _, c := range t.columns {
		if c.physical > physical {
			c.physical--
		}
	}

	switch {
	case t.displayColumn == col:
		t.SetDisplayColumn(NoColumn, true)
	case t.displayColumn > col:
		t.displayColumn--
	}
}

// RenameColumn renames a column and returns its new index.
func (t *Table) RenameColumn(col int, name string) (int, error) {
	i, ok := t.searchColumn(name)
	if ok && i == col {
		return col, nil
	}
	if ok || name == RefColumnName {
		return col, errors.New("column already exists").
			WithType(ErrTypeColumnExists).
			WithTag("name", name)
	}

	c := t.columns[col]
	displayed := t.displayColumn == col
	t.columns = append(t.columns[:col], t.columns[col+1:]...)
	t.shiftDisplayColumn(col, -1)

	c.Name = name
	i, _ = t.searchColumn(name)
	t.columns = append(t.columns, nil)
	copy(t.columns[i+1:], t.columns[i:])
	t.columns[i] = c
	t.shiftDisplayColumn(i, 1)

	if displayed {
		t.displayColumn = i
	}
	return i, nil
}

func (t *Table) shiftDisplayColumn(from, delta int) {
	if t.displayColumn >= 0 && t.displayColumn >= from {
		t.displayColumn += delta
	}
}

func (t *Table) RowCount() int {
	return len(t.keys)
}

func (t *Table) RowKey(row int) int {
	return t.keys[row]
}

// MaxRowKey returns the largest key, or 0 for an empty table.
func (t *Table) MaxRowKey() int {
	if len(t.keys) == 0 {
		return 0
	}
	return t.keys[len(t.keys)-1]
}

func (t *Table) minRowKey() float64 {
	if len(t.keys) == 0 {
		return float64(Null)
	}
	return float64(t.keys[0])
}

func (t *Table) searchRow(key int) (int, bool) {
	i := sort.SearchInts(t.keys, key)
	return i, i < len(t.keys) && t.keys[i] == key
}

// RowIndex returns the index of the row with the given key.
func (t *Table) RowIndex(key int) (int, bool) {
	return t.searchRow(key)
}

// InsertRow adds a row of Null values and returns its index. The index of an
// existing row with the same key is returned unchanged.
func (t *Table) InsertRow(key int) int {
	i, ok := t.searchRow(key)
	if ok {
		return i
	}

	t.keys = append(t.keys, 0)
	copy(t.keys[i+1:], t.keys[i:])
	t.keys[i] = key

	t.rows = append(t.rows, nil)
	copy(t.rows[i+1:], t.rows[i:])
	t.rows[i] = newRow(len(t.columns))
	t.indexStale = true
	return i
}

// RemoveRow deletes the row with the given key. Column statistics are
// rebuilt on their next read.
func (t *Table) RemoveRow(key int) bool {
	i, ok := t.searchRow(key)
	if !ok {
		return false
	}

	r := t.rows[i]
	if r.selected {
		t.selCount--
		t.removeSelValue(t.GetValue(i, t.displayColumn))
	}
	for _, c := range t.columns {
		c.dirty = true
	}

	t.keys = append(t.keys[:i], t.keys[i+1:]...)
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	t.indexStale = true
	return true
}

// GetValue returns the raw value of a cell. Uncomputed cells hold Null.
func (t *Table) GetValue(row, col int) float32 {
	switch col {
	case RefColumn:
		return float32(t.keys[row])
	case NoColumn:
		return Null
	}
	return t.rows[row].values[t.columns[col].physical]
}

// Value returns the value of a cell and whether it was ever computed.
func (t *Table) Value(row, col int) (float32, bool) {
	v := t.GetValue(row, col)
	return v, v != Null || col == RefColumn
}

// ValueByName returns the value of a cell in the named column. It returns
// false when the column does not exist or the cell holds Null.
func (t *Table) ValueByName(row int, name string) (float32, bool) {
	col, ok := t.ColumnIndex(name)
	if !ok {
		return Null, false
	}
	return t.Value(row, col)
}

// GetNormValue returns the value of a cell scaled to [0,1] by the column
// range. Null is passed through and a column without variation gives 0.5.
// The ref column is scaled by the largest key and gives Null when it is 0.
func (t *Table) GetNormValue(row, col int) float32 {
	if col == RefColumn {
		maxKey := t.MaxRowKey()
		if maxKey == 0 {
			return Null
		}
		return float32(float64(t.keys[row]) / float64(maxKey))
	}
	c := t.stats(col)
	return c.normValue(t.rows[row].values[c.physical])
}

// SetValue writes the first value of a cell.
func (t *Table) SetValue(row, col int, v float32) {
	c := t.columns[col]
	t.rows[row].values[c.physical] = v
	c.add(v)
}

// SetValueByName writes a cell of the named column if it exists.
func (t *Table) SetValueByName(row int, name string, v float32) bool {
	col, ok := t.searchColumn(name)
	if ok {
		t.SetValue(row, col, v)
	}
	return ok
}

// ChangeValue overwrites a cell, retracting its previous value from the
// column statistics.
func (t *Table) ChangeValue(row, col int, v float32) {
	c := t.columns[col]
	r := t.rows[row]
	old := r.values[c.physical]
	c.change(old, v)
	r.values[c.physical] = v

	if r.selected && col == t.displayColumn {
		t.removeSelValue(old)
		t.addSelValue(v)
	}
}

// ChangeValueByName overwrites a cell of the named column if it exists.
func (t *Table) ChangeValueByName(row int, name string, v float32) bool {
	col, ok := t.searchColumn(name)
	if ok {
		t.ChangeValue(row, col, v)
	}
	return ok
}

// IncrValue adds amount to a cell. A Null cell becomes amount.
func (t *Table) IncrValue(row, col int, amount float32) {
	v := t.GetValue(row, col)
	if v == Null {
		v = amount
	} else {
		v += amount
	}
	t.ChangeValue(row, col, v)
}

// DecrValue subtracts amount from a cell. A Null cell stays Null.
func (t *Table) DecrValue(row, col int, amount float32) {
	v := t.GetValue(row, col)
	if v == Null {
		return
	}
	t.ChangeValue(row, col, v-amount)
}

// SetColumnValue writes v into every cell of a column.
func (t *Table) SetColumnValue(col int, v float32) {
	c := t.columns[col]
	c.reset()
	for _, r := range t.rows {
		r.values[c.physical] = v
		c.add(v)
	}
	c.updated = true

	if col == t.displayColumn {
		t.recountSelection()
	}
}

// SetSelectedValue writes v into the column cells of every selected row.
func (t *Table) SetSelectedValue(col int, v float32) {
	for i, r := range t.rows {
		if r.selected {
			t.ChangeValue(i, col, v)
		}
	}
}

func (t *Table) stats(col int) *Column {
	c := t.columns[col]
	if c.dirty {
		t.rebuildStats(c)
	}
	return c
}

func (t *Table) rebuildStats(c *Column) {
	updated := c.updated
	c.reset()
	for _, r := range t.rows {
		c.add(r.values[c.physical])
	}
	c.dirty = false
	c.updated = updated
}

// MinValue returns the smallest value of a column, or -1 when the column has
// no value.
func (t *Table) MinValue(col int) float64 {
	if col == RefColumn {
		return t.minRowKey()
	}
	return t.stats(col).min
}

func (t *Table) MaxValue(col int) float64 {
	if col == RefColumn {
		return float64(t.MaxRowKey())
	}
	return t.stats(col).max
}

func (t *Table) TotalValue(col int) float64 {
	return t.stats(col).total
}

// AvgValue returns the column total divided by the row count.
func (t *Table) AvgValue(col int) float64 {
	if col == RefColumn || len(t.rows) == 0 {
		return -1
	}
	return t.stats(col).total / float64(len(t.rows))
}

// VisibleMinValue returns the smallest value among visible rows as measured
// by the last display index rebuild.
func (t *Table) VisibleMinValue(col int) float64 {
	if col == RefColumn {
		return t.minRowKey()
	}
	return t.columns[col].visibleMin
}

func (t *Table) VisibleMaxValue(col int) float64 {
	if col == RefColumn {
		return float64(t.MaxRowKey())
	}
	return t.columns[col].visibleMax
}

func (t *Table) VisibleAvgValue(col int) float64 {
	if col == RefColumn || t.visibleSize == 0 {
		return -1
	}
	return t.columns[col].visibleTotal / float64(t.visibleSize)
}

// SetDisplayParams applies dp to the ref column and every column.
func (t *Table) SetDisplayParams(dp DisplayParams) {
	t.refDisplayParams = dp
	for _, c := range t.columns {
		c.DisplayParams = dp
	}
	t.displayParams = dp
}

// SetColumnDisplayParams applies dp to a single column.
func (t *Table) SetColumnDisplayParams(col int, dp DisplayParams) {
	if col == RefColumn {
		t.refDisplayParams = dp
	} else {
		t.columns[col].DisplayParams = dp
	}
	if col == t.displayColumn {
		t.displayParams = dp
	}
}

// DisplayParams returns the parameters of the displayed column.
func (t *Table) DisplayParams() DisplayParams {
	return t.displayParams
}
