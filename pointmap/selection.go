package pointmap

import (
	"slices"

	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pixel"
)

// SetCurSel selects the filled points inside r. Without add the previous
// selection is replaced. Rows of selected points are selected in the
// attribute table. It reports whether any point was selected.
func (m *PointMap) SetCurSel(r geometry.Region, add bool) bool {
	if !m.initialised {
		return false
	}
	if len(m.selection) == 0 {
		add = false
	} else if !add {
		m.ClearSel()
	}

	if add {
		m.selBounds = geometry.Union(m.selBounds, r)
	} else {
		m.selBounds = r
	}

	bl := m.Pixelate(r.BottomLeft, true, 1)
	tr := m.Pixelate(r.TopRight, true, 1)
	selected := false
	for x := bl.X; x <= tr.X; x++ {
		for y := bl.Y; y <= tr.Y; y++ {
			p := pixel.Ref{X: x, Y: y}
			if !m.point(p).IsFilled() || m.IsSelected(p) {
				continue
			}
			m.selection[p] = struct{}{}
			m.attributes.SelectRowByKey(refKey(p))
			selected = true
		}
	}
	return selected
}

// SetCurSelKeys selects the points with the given row keys. Keys without a
// row are skipped.
func (m *PointMap) SetCurSelKeys(keys []int, add bool) bool {
	if !add {
		m.ClearSel()
	}

	selected := false
	for _, key := range keys {
		p := keyRef(key)
		if !m.Includes(p) {
			continue
		}
		if _, ok := m.attributes.RowIndex(key); !ok {
			continue
		}
		m.attributes.SelectRowByKey(key)
		if _, ok := m.selection[p]; ok {
			continue
		}
		m.selection[p] = struct{}{}
		m.growSelBounds(p)
		selected = true
	}
	return selected
}

// OverrideSelPixel adds p to the selection whatever its state. Used to
// build selections that do not come from the user.
func (m *PointMap) OverrideSelPixel(p pixel.Ref) bool {
	if !m.Includes(p) {
		return false
	}
	if _, ok := m.selection[p]; ok {
		return false
	}
	m.selection[p] = struct{}{}
	m.growSelBounds(p)
	return true
}

func (m *PointMap) growSelBounds(p pixel.Ref) {
	cell := m.Regionate(p, 0)
	if len(m.selection) == 1 {
		m.selBounds = cell
		return
	}
	m.selBounds = geometry.Union(m.selBounds, cell)
}

// ClearSel empties the selection. It reports whether anything was
// selected.
func (m *PointMap) ClearSel() bool {
	if len(m.selection) == 0 {
		return false
	}
	clear(m.selection)
	m.selBounds = geometry.Region{}
	m.attributes.DeselectAll()
	return true
}

func (m *PointMap) IsSelected(p pixel.Ref) bool {
	_, ok := m.selection[p]
	return ok
}

func (m *PointMap) HasSelection() bool {
	return len(m.selection) != 0
}

func (m *PointMap) SelectionCount() int {
	return len(m.selection)
}

// SelectedRefs returns the selected points in row key order.
func (m *PointMap) SelectedRefs() []pixel.Ref {
	refs := make([]pixel.Ref, 0, len(m.selection))
	for p := range m.selection {
		refs = append(refs, p)
	}
	slices.SortFunc(refs, func(a, b pixel.Ref) int {
		switch {
		case pixel.Less(a, b):
			return -1
		case pixel.Less(b, a):
			return 1
		}
		return 0
	})
	return refs
}

// SelectionBounds returns the region the selection was made with.
func (m *PointMap) SelectionBounds() (geometry.Region, bool) {
	return m.selBounds, len(m.selection) != 0
}
