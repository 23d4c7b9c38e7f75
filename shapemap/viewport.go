package shapemap

import (
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pixel"
	"github.com/aukilabs/depthmap/shapes"
)

// MakeViewportShapes lists the visible shapes crossing r in draw order. The
// list is walked with FindNextShape and NextShape.
func (m *ShapeMap) MakeViewportShapes(r geometry.Region) {
	m.displayShapes = make([]int, len(m.shapes))
	for i := range m.displayShapes {
		m.displayShapes[i] = -1
	}
	m.current = -1
	m.newShape = false

	if !m.regionSet || len(m.shapes) == 0 {
		return
	}

	bl := m.Pixelate(r.BottomLeft, true, 1)
	tr := m.Pixelate(r.TopRight, true, 1)
	for x := bl.X; x <= tr.X; x++ {
		for y := bl.Y; y <= tr.Y; y++ {
			for _, ref := range *m.bucket(pixel.Ref{X: x, Y: y}) {
				i, ok := m.Index(ref.Key)
				if !ok || i >= m.attributes.RowCount() || !m.attributes.IsVisible(i) {
					continue
				}
				if pos := m.attributes.DisplayPos(i); pos >= 0 && pos < len(m.displayShapes) {
					m.displayShapes[pos] = i
				}
			}
		}
	}
}

// FindNextShape advances to the next shape of the viewport list and reports
// whether there is one.
func (m *ShapeMap) FindNextShape() bool {
	if m.displayShapes == nil || m.newShape {
		return false
	}
	for m.current++; m.current < len(m.displayShapes); m.current++ {
		if m.displayShapes[m.current] != -1 {
			return true
		}
	}
	m.current = len(m.displayShapes)
	return false
}

// NextShape returns the shape FindNextShape stopped on.
func (m *ShapeMap) NextShape() shapes.Shape {
	return m.shapes[m.displayShapes[m.current]]
}

// NextShapeIndex returns the index of the shape FindNextShape stopped on.
func (m *ShapeMap) NextShapeIndex() int {
	return m.displayShapes[m.current]
}
