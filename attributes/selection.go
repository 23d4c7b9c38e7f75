package attributes

// SelectRowByIndex selects a visible row. It returns false when the row is
// hidden or already selected.
func (t *Table) SelectRowByIndex(row int) bool {
	if row < 0 || row >= len(t.rows) {
		return false
	}

	r := t.rows[row]
	if r.selected || !t.visible(r) {
		return false
	}

	r.selected = true
	t.selCount++
	t.addSelValue(t.GetValue(row, t.displayColumn))
	return true
}

// SelectRowByKey selects the visible row with the given key.
func (t *Table) SelectRowByKey(key int) bool {
	row, ok := t.searchRow(key)
	if !ok {
		return false
	}
	return t.SelectRowByIndex(row)
}

func (t *Table) DeselectAll() {
	for _, r := range t.rows {
		r.selected = false
	}
	t.selCount = 0
	t.selValueCount = 0
	t.selValue = 0
}

func (t *Table) IsSelected(row int) bool {
	return t.rows[row].selected
}

// SelectionCount returns the number of selected rows.
func (t *Table) SelectionCount() int {
	return t.selCount
}

// SelAvg returns the mean displayed value of the selected rows, ignoring Null
// values. It returns false when no selected row holds a value.
func (t *Table) SelAvg() (float64, bool) {
	if t.selValueCount == 0 {
		return 0, false
	}
	return t.selValue / float64(t.selValueCount), true
}

func (t *Table) addSelValue(v float32) {
	if v == Null {
		return
	}
	t.selValue += float64(v)
	t.selValueCount++
}

func (t *Table) removeSelValue(v float32) {
	if v == Null {
		return
	}
	t.selValue -= float64(v)
	t.selValueCount--
}

func (t *Table) recountSelection() {
	t.selValue = 0
	t.selValueCount = 0
	for i, r := range t.rows {
		if r.selected {
			t.addSelValue(t.GetValue(i, t.displayColumn))
		}
	}
}
