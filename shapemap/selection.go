package shapemap

import (
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pixel"
)

// SetCurSel selects the shapes in r, replacing the selection unless add is
// set. A zero sized region picks the shape under its corner. It returns
// whether anything got selected.
func (m *ShapeMap) SetCurSel(r geometry.Region, add bool) bool {
	if !add {
		m.ClearSel()
	}

	var picked []int
	if r.BottomLeft == r.TopRight {
		i := m.PointInPoly(r.BottomLeft)
		if i == -1 {
			i = m.closestOpenGeom(r.BottomLeft)
		}
		if i != -1 {
			picked = append(picked, i)
		}
	} else if m.regionSet {
		bl := m.Pixelate(r.BottomLeft, true, 1)
		tr := m.Pixelate(r.TopRight, true, 1)
		seen := make(map[int]struct{})
		for x := bl.X; x <= tr.X; x++ {
			for y := bl.Y; y <= tr.Y; y++ {
				for _, ref := range *m.bucket(pixel.Ref{X: x, Y: y}) {
					if _, done := seen[ref.Key]; done {
						continue
					}
					seen[ref.Key] = struct{}{}

					i, ok := m.Index(ref.Key)
					if ok && geometry.IntersectRegion(r, m.shapes[i].BoundingBox(), 0) {
						picked = insertSorted(picked, i)
					}
				}
			}
		}
	}

	selected := false
	for _, i := range picked {
		if i < m.attributes.RowCount() && m.attributes.SelectRowByIndex(i) {
			selected = true
		}
	}
	return selected
}

// SetCurSelKeys selects the shapes with the given keys.
func (m *ShapeMap) SetCurSelKeys(keys []int, add bool) bool {
	if !add {
		m.ClearSel()
	}

	selected := false
	for _, key := range keys {
		if m.attributes.SelectRowByKey(key) {
			selected = true
		}
	}
	return selected
}

// ClearSel deselects every shape.
func (m *ShapeMap) ClearSel() {
	m.attributes.DeselectAll()
}

func (m *ShapeMap) SelectionCount() int {
	return m.attributes.SelectionCount()
}

// SelectedIndexes returns the indexes of the selected shapes in key order.
func (m *ShapeMap) SelectedIndexes() []int {
	var selected []int
	for i := 0; i < m.attributes.RowCount(); i++ {
		if m.attributes.IsSelected(i) {
			selected = append(selected, i)
		}
	}
	return selected
}

// SelectedKeys returns the keys of the selected shapes.
func (m *ShapeMap) SelectedKeys() []int {
	var keys []int
	for _, i := range m.SelectedIndexes() {
		keys = append(keys, m.keys[i])
	}
	return keys
}

// SelectionBounds returns the bounding box of the selected shapes.
func (m *ShapeMap) SelectionBounds() (geometry.Region, bool) {
	var bounds geometry.Region
	found := false
	for _, i := range m.SelectedIndexes() {
		bb := m.shapes[i].BoundingBox()
		if !found {
			bounds = bb
			found = true
			continue
		}
		bounds = geometry.Union(bounds, bb)
	}
	return bounds, found
}

// SelectionToLayer moves the selection into a new layer and clears it.
func (m *ShapeMap) SelectionToLayer(name string) (uint64, error) {
	layer, err := m.attributes.SelectionToLayer(name)
	if err != nil {
		return 0, err
	}
	m.ClearSel()
	return layer, nil
}
