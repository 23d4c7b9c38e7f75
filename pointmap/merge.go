package pointmap

import (
	"slices"

	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pixel"
)

// MergeLine joins two merged points. A is always ordered before B.
type MergeLine struct {
	A pixel.Ref
	B pixel.Ref
}

func newMergeLine(a, b pixel.Ref) MergeLine {
	if pixel.Less(b, a) {
		a, b = b, a
	}
	return MergeLine{A: a, B: b}
}

// MergeLines returns the pairs of merged points in the order they were
// merged.
func (m *PointMap) MergeLines() []MergeLine {
	return m.mergeLines
}

func (m *PointMap) IsPixelMerged(p pixel.Ref) bool {
	return m.Includes(p) && !m.point(p).merge.IsEmpty()
}

// MergePixels links a and b so that a graph treats them as one location.
// Earlier partners of either are unmerged first. Merging a point with
// itself unmerges it.
func (m *PointMap) MergePixels(a, b pixel.Ref) error {
	if !m.initialised {
		return m.noGrid()
	}
	if !m.Includes(a) {
		return m.outOfGrid(a)
	}
	if !m.Includes(b) {
		return m.outOfGrid(b)
	}

	if a == b {
		m.unmergePixel(a)
		return nil
	}
	if m.point(a).merge == b {
		return nil
	}

	m.unmergePixel(a)
	m.unmergePixel(b)

	pa, pb := m.point(a), m.point(b)
	pa.merge = b
	pa.state |= Merged
	pb.merge = a
	pb.state |= Merged
	m.mergeLines = append(m.mergeLines, newMergeLine(a, b))
	return nil
}

// unmergePixel clears the merge of p and of its partner.
func (m *PointMap) unmergePixel(p pixel.Ref) {
	pt := m.point(p)
	if pt.merge.IsEmpty() {
		return
	}
	partner := pt.merge
	line := newMergeLine(p, partner)
	if i := slices.Index(m.mergeLines, line); i >= 0 {
		m.mergeLines = slices.Delete(m.mergeLines, i, i+1)
	}
	m.point(partner).clearMerge()
	pt.clearMerge()
}

// MergePoints merges the selected points with the filled points found by
// moving the selection so that its bottom right corner lands on p. The
// selection is cleared.
func (m *PointMap) MergePoints(p geometry.Point) bool {
	if len(m.selection) == 0 {
		return false
	}

	bl := m.Pixelate(m.selBounds.BottomLeft, false, 1)
	tr := m.Pixelate(m.selBounds.TopRight, false, 1)
	offset := m.Pixelate(p, false, 1).Sub(pixel.Ref{X: tr.X, Y: bl.Y})

	for _, a := range m.SelectedRefs() {
		b := a.Add(offset)
		if m.Includes(b) && m.point(b).IsFilled() {
			_ = m.MergePixels(a, b)
		}
	}
	m.ClearSel()
	return true
}

// UnmergePoints unmerges the selected points and clears the selection.
func (m *PointMap) UnmergePoints() bool {
	if len(m.selection) == 0 {
		return false
	}
	for _, p := range m.SelectedRefs() {
		m.unmergePixel(p)
	}
	m.ClearSel()
	return true
}

// MergeFromLines merges the filled points found at both ends of each line.
// It returns the number of merges made.
func (m *PointMap) MergeFromLines(lines []geometry.Line) int {
	merged := 0
	for _, l := range lines {
		a := m.Pixelate(l.Start(), false, 1)
		b := m.Pixelate(l.End(), false, 1)
		if a == b || !m.Includes(a) || !m.Includes(b) {
			continue
		}
		if !m.point(a).IsFilled() || !m.point(b).IsFilled() {
			continue
		}
		if m.MergePixels(a, b) == nil {
			merged++
		}
	}
	return merged
}

// rebuildMergeLines lists every merged pair once, after reading the points.
func (m *PointMap) rebuildMergeLines() {
	m.mergeLines = nil
	for i := range m.points {
		pt := &m.points[i]
		if pt.merge.IsEmpty() {
			continue
		}
		p := m.refAt(i)
		if pixel.Less(p, pt.merge) {
			m.mergeLines = append(m.mergeLines, newMergeLine(p, pt.merge))
		}
	}
}
