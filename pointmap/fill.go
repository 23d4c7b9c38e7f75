package pointmap

import (
	"time"

	"github.com/aukilabs/depthmap/comm"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pixel"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// FillType selects the state given to points reached by MakePoints.
type FillType int

const (
	FullFill FillType = iota
	SemiFill
	Augment
)

func (f FillType) state() State {
	switch f {
	case SemiFill:
		return Filled | ContextFilled
	case Augment:
		return Augmented
	default:
		return Filled
	}
}

func (f FillType) String() string {
	switch f {
	case SemiFill:
		return "semi"
	case Augment:
		return "augment"
	default:
		return "full"
	}
}

// Fraction of a cell allowed when matching lines against cells.
const cellTolerance = 1e-10

// expansion results, or'ed over the neighbours of a point
const (
	expandOffGrid = 1 << iota
	expandFilled
	expandBlocked
	expandAdded
)

// BlockLines records every line of the drawing on the cells it crosses and
// marks those cells blocked. Lines are cropped to the cell they are stored
// on.
func (m *PointMap) BlockLines() error {
	if !m.initialised {
		return m.noGrid()
	}
	if m.drawing == nil {
		return m.noDrawing()
	}
	if m.blockedLines {
		return nil
	}
	m.UnblockLines(true)

	for key, l := range m.drawing.Lines() {
		for _, p := range pixel.PixelateLineTouching(m, l, cellTolerance) {
			pt := m.point(p)
			pt.lines = append(pt.lines, keyedLine{key: key, line: l})
			pt.setBlocked(true)
		}
	}

	for i := range m.points {
		pt := &m.points[i]
		if len(pt.lines) == 0 {
			continue
		}
		cell := m.Regionate(m.refAt(i), cellTolerance)
		kept := pt.lines[:0]
		for _, kl := range pt.lines {
			// pixelation is generous, drop lines that only graze the cell
			if kl.line.Crop(cell) {
				kept = append(kept, kl)
			}
		}
		pt.lines = kept
	}

	m.blockedLines = true
	return nil
}

// UnblockLines forgets the lines stored on every cell. With clearBlocked
// set the blocked flags are cleared too.
func (m *PointMap) UnblockLines(clearBlocked bool) {
	for i := range m.points {
		m.points[i].lines = nil
		if clearBlocked {
			m.points[i].setBlocked(false)
		}
	}
	m.blockedLines = false
}

// HasBlockedLines reports whether the drawing lines are stored on the
// cells.
func (m *PointMap) HasBlockedLines() bool {
	return m.blockedLines
}

func (m *PointMap) refAt(i int) pixel.Ref {
	rows := m.Rows()
	return pixel.NewRef(i/rows, i%rows)
}

// FillLines fills the empty cells under every line of the drawing as one
// undo step.
func (m *PointMap) FillLines() error {
	if !m.initialised {
		return m.noGrid()
	}
	if m.drawing == nil {
		return m.noDrawing()
	}

	m.undoCounter++
	for _, l := range m.drawing.Lines() {
		for _, p := range pixel.PixelateLine(m, l, 1) {
			if !m.Includes(p) {
				continue
			}
			if pt := m.point(p); pt.IsEmpty() {
				pt.set(Filled, m.undoCounter)
				m.pointCount++
			}
		}
	}
	return nil
}

// FillPoint fills or empties the single point under p as its own undo step.
func (m *PointMap) FillPoint(p geometry.Point, add bool) error {
	if !m.initialised {
		return m.noGrid()
	}
	ref := m.Pixelate(p, false, 1)
	if !m.Includes(ref) {
		return m.outOfGrid(ref)
	}

	pt := m.point(ref)
	switch {
	case add && !pt.IsFilled():
		m.undoCounter++
		pt.set(Filled, m.undoCounter)
		m.pointCount++
	case !add && pt.IsFilled():
		m.undoCounter++
		m.emptyPoint(ref, m.undoCounter)
	}
	return nil
}

// MakePoints flood fills the grid from seed through the eight neighbours of
// each point, never crossing a line of the drawing. Points next to a line
// are marked as edges. It returns the number of points filled, zero when
// the seed is already filled.
func (m *PointMap) MakePoints(seed geometry.Point, fill FillType, c comm.Communicator) (filled int, err error) {
	start := time.Now()
	defer func() {
		instrumentFill(start, filled, fill, err)
	}()

	if !m.initialised {
		return 0, m.noGrid()
	}
	ref := m.Pixelate(seed, false, 1)
	if !m.Includes(ref) {
		return 0, m.outOfGrid(ref)
	}
	if m.filledOrAugmented(m.point(ref)) {
		return 0, nil
	}
	if err := m.BlockLines(); err != nil {
		return 0, err
	}

	m.undoCounter++
	state := fill.state()
	m.point(ref).set(state, m.undoCounter)
	m.pointCount++
	filled = 1

	current := []pixel.Ref{ref}
	var next []pixel.Ref
	visited := 0
	for len(current) > 0 {
		p := current[len(current)-1]
		current = current[:len(current)-1]

		result := 0
		for _, n := range [...]pixel.Ref{
			p.Up(), p.Down(), p.Left(), p.Right(),
			p.Up().Left(), p.Up().Right(), p.Down().Left(), p.Down().Right(),
		} {
			r := m.expand(p, n, state)
			if r == expandAdded {
				next = append(next, n)
				filled++
			}
			result |= r
		}
		if result&expandBlocked != 0 || m.point(p).IsBlocked() {
			m.point(p).state |= Edge
		}

		if len(current) == 0 {
			current, next = next, current[:0]
		}

		visited++
		if visited%progressInterval == 0 {
			if err := comm.Check(c, "point fill"); err != nil {
				return filled, err
			}
			comm.Post(c, visited)
		}
	}

	logs.WithTag("map", m.name).
		WithTag("fill", fill.String()).
		WithTag("points", filled).
		Debug("points filled")
	return filled, nil
}

func (m *PointMap) filledOrAugmented(pt *Point) bool {
	return pt.state&(Filled|Augmented) != 0
}

// expand fills the neighbour to of from unless it is off the grid or
// already filled, or a line separates the two.
func (m *PointMap) expand(from, to pixel.Ref, state State) int {
	if !m.Includes(to) {
		return expandOffGrid
	}
	dst := m.point(to)
	if m.filledOrAugmented(dst) {
		return expandFilled
	}

	l := geometry.NewLine(m.Depixelate(from), m.Depixelate(to))
	tolerance := m.spacing * cellTolerance
	for _, pt := range [...]*Point{m.point(from), dst} {
		for _, kl := range pt.lines {
			if geometry.IntersectRegion(l.Region, kl.line.Region, tolerance) &&
				geometry.IntersectLine(l, kl.line, tolerance) {
				return expandBlocked
			}
		}
	}

	dst.set(state, m.undoCounter)
	m.pointCount++
	return expandAdded
}

// emptyPoint clears a filled point, unmerging it and dropping its attribute
// row.
func (m *PointMap) emptyPoint(p pixel.Ref, undo int) {
	pt := m.point(p)
	if !pt.merge.IsEmpty() {
		m.unmergePixel(p)
	}
	pt.set(Empty, undo)
	m.pointCount--
	m.removeRow(p)
	delete(m.selection, p)
}

// ClearPoints empties the selected points, or every point when nothing is
// selected, as one undo step.
func (m *PointMap) ClearPoints() bool {
	if m.pointCount == 0 {
		return false
	}

	m.undoCounter++
	if len(m.selection) == 0 {
		for i := range m.points {
			if m.points[i].IsFilled() {
				m.emptyPoint(m.refAt(i), m.undoCounter)
			}
		}
		m.mergeLines = nil
	} else {
		for _, p := range m.SelectedRefs() {
			if m.point(p).IsFilled() {
				m.emptyPoint(p, m.undoCounter)
			}
		}
	}

	m.ClearSel()
	return true
}

// CanUndo reports whether UndoPoints has a step to revert. Steps cannot be
// undone once a graph was built.
func (m *PointMap) CanUndo() bool {
	return !m.processed && m.undoCounter != 0
}

// UndoPoints reverts the last fill, clear or single point edit.
func (m *PointMap) UndoPoints() bool {
	if m.undoCounter == 0 {
		return false
	}

	for i := range m.points {
		pt := &m.points[i]
		if pt.undo != m.undoCounter {
			continue
		}
		switch {
		case pt.state&(Filled|Augmented) != 0:
			pt.set(Empty, 0)
			m.pointCount--
			m.removeRow(m.refAt(i))
		case pt.IsEmpty():
			pt.set(Filled, 0)
			m.pointCount++
		}
	}
	m.undoCounter--
	return true
}

// BlockedAdjacent reports whether any of the eight neighbours of p is
// blocked.
func (m *PointMap) BlockedAdjacent(p pixel.Ref) bool {
	for _, n := range [...]pixel.Ref{
		p.Right(), p.Right().Up(), p.Up(), p.Up().Left(),
		p.Left(), p.Left().Down(), p.Down(), p.Down().Right(),
	} {
		if m.Includes(n) && m.point(n).IsBlocked() {
			return true
		}
	}
	return false
}
