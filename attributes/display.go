package attributes

import "sort"

// DisplayColumn returns the column currently colour mapped, RefColumn or
// NoColumn.
func (t *Table) DisplayColumn() int {
	return t.displayColumn
}

// SetDisplayColumn makes col the displayed column and ranks the rows by its
// values. Nothing is recomputed when col is already displayed, unless
// override is set.
func (t *Table) SetDisplayColumn(col int, override bool) {
	if col == t.displayColumn && !override {
		return
	}

	t.displayColumn = col
	switch col {
	case NoColumn:
		t.displayIndex = nil
		t.indexStale = false
	case RefColumn:
		t.makeDisplayIndex()
		t.displayParams = t.refDisplayParams
	default:
		t.makeDisplayIndex()
		t.displayParams = t.columns[col].DisplayParams
	}
	t.recountSelection()
}

func (t *Table) makeDisplayIndex() {
	col := t.displayColumn
	maxKey := float64(t.MaxRowKey())

	var c *Column
	if col != RefColumn {
		c = t.stats(col)
	}

	order := make([]int, len(t.rows))
	values := make([]float64, len(t.rows))
	visibleMin, visibleMax, visibleTotal := -1.0, -1.0, 0.0
	visibleCount := 0

	for i, r := range t.rows {
		order[i] = i

		if c == nil {
			if maxKey != 0 {
				values[i] = float64(t.keys[i]) / maxKey
			}
			if t.visible(r) {
				visibleCount++
			}
			continue
		}

		v := r.values[c.physical]
		values[i] = float64(v)
		if v == Null || !t.visible(r) {
			continue
		}

		visibleCount++
		value := float64(v)
		if visibleCount == 1 || value < visibleMin {
			visibleMin = value
		}
		if visibleCount == 1 || value > visibleMax {
			visibleMax = value
		}
		visibleTotal += value
	}

	// Equal values keep key order.
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	for pos, i := range order {
		r := t.rows[i]
		r.displayPos = pos
		r.displayNorm = t.GetNormValue(i, col)
	}

	if c != nil {
		c.visibleMin = visibleMin
		c.visibleMax = visibleMax
		c.visibleTotal = visibleTotal
	}

	t.displayIndex = order
	t.visibleSize = visibleCount
	t.indexStale = false
}

func (t *Table) refreshDisplayIndex() {
	if t.indexStale && t.displayColumn != NoColumn {
		t.makeDisplayIndex()
	}
}

// DisplayIndex returns the row indexes ordered by the displayed column.
func (t *Table) DisplayIndex() []int {
	t.refreshDisplayIndex()
	return t.displayIndex
}

// DisplayPos returns the rank of a row in the display index, or -1 when no
// column is displayed.
func (t *Table) DisplayPos(row int) int {
	if t.displayColumn == NoColumn {
		return -1
	}
	t.refreshDisplayIndex()
	return t.rows[row].displayPos
}

// DisplayValue returns the normalised displayed value of a row, as computed
// by the last ranking.
func (t *Table) DisplayValue(row int) float32 {
	if t.displayColumn == NoColumn {
		return Null
	}
	t.refreshDisplayIndex()
	return t.rows[row].displayNorm
}

// VisibleSize returns the number of visible rows holding a displayed value.
func (t *Table) VisibleSize() int {
	t.refreshDisplayIndex()
	return t.visibleSize
}
