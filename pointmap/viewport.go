package pointmap

import (
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pixel"
)

// SetScreenPixel sets how many points are skipped while drawing so that
// no more than one point is drawn per screen pixel of the given size.
func (m *PointMap) SetScreenPixel(unit float64) {
	m.drawStep = 1
	if m.spacing > 0 && unit/m.spacing > 1 {
		m.drawStep = int(unit / m.spacing)
	}
}

// MakeViewportPoints starts a walk over the filled and blocked points
// inside viewport. It also restarts the merge line walk.
func (m *PointMap) MakeViewportPoints(viewport geometry.Region) {
	m.viewBL = m.Pixelate(viewport.BottomLeft, true, 1)
	m.viewTR = m.Pixelate(viewport.TopRight, true, 1)
	m.cursor = m.viewBL
	m.cursor.X -= int16(m.drawStep)
	m.mergeCursor = -1
	m.finished = !m.initialised
}

// FindNextPoint moves the cursor to the next point to draw. It returns
// false once the viewport is exhausted.
func (m *PointMap) FindNextPoint() bool {
	if m.finished {
		return false
	}
	step := int16(m.drawStep)
	for {
		m.cursor.X += step
		if m.cursor.X > m.viewTR.X {
			m.cursor.X = m.viewBL.X
			m.cursor.Y += step
			if m.cursor.Y > m.viewTR.Y {
				m.cursor = m.viewTR
				m.finished = true
				return false
			}
		}
		if pt := m.point(m.cursor); pt.IsFilled() || pt.IsBlocked() {
			return true
		}
	}
}

// CurrentPoint returns the point under the cursor.
func (m *PointMap) CurrentPoint() pixel.Ref {
	return m.cursor
}

func (m *PointMap) NextPointLocation() geometry.Point {
	return m.point(m.cursor).location
}

func (m *PointMap) CurrentPointSelected() bool {
	return m.IsSelected(m.cursor)
}

// FindNextMergeLine moves to the next merge line. It returns false once all
// were visited.
func (m *PointMap) FindNextMergeLine() bool {
	if m.mergeCursor < len(m.mergeLines) {
		m.mergeCursor++
	}
	return m.mergeCursor < len(m.mergeLines)
}

// NextMergeLine returns the merge line under the cursor as a line between
// the two point locations.
func (m *PointMap) NextMergeLine() geometry.Line {
	if m.mergeCursor < 0 || m.mergeCursor >= len(m.mergeLines) {
		return geometry.Line{}
	}
	ml := m.mergeLines[m.mergeCursor]
	return geometry.NewLine(m.Depixelate(ml.A), m.Depixelate(ml.B))
}
