package shapemap

import (
	"math"
	"slices"

	"github.com/aukilabs/depthmap/bsp"
	"github.com/aukilabs/depthmap/comm"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pixel"
	"github.com/aukilabs/depthmap/shapes"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// displayPos returns the draw rank of the shape at index i. Shapes without
// an attribute row rank below every other shape.
func (m *ShapeMap) displayPos(i int) int {
	if i >= m.attributes.RowCount() {
		return -1
	}
	return m.attributes.DisplayPos(i)
}

// testPointInPoly returns the index of the polygon of ref when p lies
// inside it, -1 otherwise. Border cells cast a ray from p through the side
// facing out of the polygon and count the segments of the cell it crosses.
func (m *ShapeMap) testPointInPoly(p geometry.Point, ref shapes.Ref) int {
	i, ok := m.Index(ref.Key)
	if !ok {
		return -1
	}

	switch {
	case ref.Has(shapes.TagCentre):
		return i
	case ref.Has(shapes.TagOpen):
		return -1
	}

	s := m.shapes[i]
	if !s.BoundingBox().ContainsTouch(p) {
		return -1
	}

	var counter, alpha int
	switch {
	case ref.Has(shapes.TagL | shapes.TagR):
		parity := 1.0
		if ref.Has(shapes.TagL) {
			parity = -1
		}
		for _, k := range ref.PolyRefs {
			c, a := crossHorizontal(s.Segment(k), p, parity)
			counter += c
			alpha += a
		}

	case ref.Has(shapes.TagB | shapes.TagT):
		parity := 1.0
		if ref.Has(shapes.TagB) {
			parity = -1
		}
		for _, k := range ref.PolyRefs {
			c, a := crossVertical(s.Segment(k), p, parity)
			counter += c
			alpha += a
		}

	default:
		// Internal edges cast the ray downwards through every cell of the
		// polygon below, collecting their segments on the way.
		var segments []int
		for q := m.Pixelate(p, true, 1); m.Includes(q); q = q.Down() {
			r := m.bucket(q).Get(ref.Key)
			if r == nil {
				break
			}
			for _, k := range r.PolyRefs {
				segments = appendSegment(segments, k)
			}
		}
		for _, k := range segments {
			c, a := crossVertical(s.Segment(k), p, -1)
			counter += c
			alpha += a
		}
	}

	if counter%2 != 0 && alpha == 0 {
		return i
	}
	return -1
}

// crossHorizontal tests the ray from p towards parity infinity along x
// against l. Rays passing through a vertex count it once, alpha balancing
// the two segments meeting there.
func crossHorizontal(l geometry.Line, p geometry.Point, parity float64) (counter, alpha int) {
	if l.BottomLeft.Y > p.Y || l.TopRight.Y < p.Y {
		return 0, 0
	}

	switch {
	case l.TStart().Y == p.Y:
		if parity*l.TStart().X >= parity*p.X {
			return 1, -1
		}
	case l.TEnd().Y == p.Y:
		if parity*l.TEnd().X >= parity*p.X {
			return 0, 1
		}
	default:
		if parity*(l.Grad(geometry.XAxis)*(p.Y-l.Ay())+l.Ax()) >= parity*p.X {
			return 1, 0
		}
	}
	return 0, 0
}

func crossVertical(l geometry.Line, p geometry.Point, parity float64) (counter, alpha int) {
	if l.BottomLeft.X > p.X || l.TopRight.X < p.X {
		return 0, 0
	}

	switch {
	case l.TopRight.X == p.X:
		if parity*l.By() >= parity*p.Y {
			return 1, -1
		}
	case l.BottomLeft.X == p.X:
		if parity*l.Ay() >= parity*p.Y {
			return 0, 1
		}
	default:
		if parity*(l.Grad(geometry.YAxis)*(p.X-l.Ax())+l.Ay()) >= parity*p.Y {
			return 1, 0
		}
	}
	return 0, 0
}

// PointInPoly returns the index of the topmost polygon containing p, or -1.
func (m *ShapeMap) PointInPoly(p geometry.Point) int {
	if !m.regionSet || !m.Region().ContainsTouch(p) {
		return -1
	}

	best, bestPos := -1, -2
	for _, ref := range *m.bucket(m.Pixelate(p, true, 1)) {
		i := m.testPointInPoly(p, ref)
		if i == -1 {
			continue
		}
		if pos := m.displayPos(i); pos > bestPos {
			best, bestPos = i, pos
		}
	}
	return best
}

// QuickPointInPoly returns the index of any polygon containing p, or -1.
func (m *ShapeMap) QuickPointInPoly(p geometry.Point) int {
	if !m.regionSet || !m.Region().ContainsTouch(p) {
		return -1
	}
	for _, ref := range *m.bucket(m.Pixelate(p, true, 1)) {
		if i := m.testPointInPoly(p, ref); i != -1 {
			return i
		}
	}
	return -1
}

// PointInPolyKey reports whether p lies inside the polygon with the given
// key.
func (m *ShapeMap) PointInPolyKey(p geometry.Point, key int) bool {
	if !m.regionSet || !m.Region().ContainsTouch(p) {
		return false
	}
	ref := m.bucket(m.Pixelate(p, true, 1)).Get(key)
	return ref != nil && m.testPointInPoly(p, *ref) != -1
}

// PointInPolyList returns the sorted indexes of every polygon containing p.
func (m *ShapeMap) PointInPolyList(p geometry.Point) []int {
	var list []int
	if !m.regionSet || !m.Region().ContainsTouch(p) {
		return list
	}
	for _, ref := range *m.bucket(m.Pixelate(p, true, 1)) {
		if i := m.testPointInPoly(p, ref); i != -1 {
			list = insertSorted(list, i)
		}
	}
	return list
}

func insertSorted(list []int, v int) []int {
	i, ok := slices.BinarySearch(list, v)
	if ok {
		return list
	}
	return slices.Insert(list, i, v)
}

// lineInPolyList returns the sorted indexes of the shapes l crosses or lies
// in, leaving out the shape keyed lineKey.
func (m *ShapeMap) lineInPolyList(l geometry.Line, lineKey int, tolerance float64) []int {
	var list []int
	if !m.regionSet || !geometry.IntersectRegion(m.Region(), l.Region, 0) {
		return list
	}

	region := m.Region()
	if !region.ContainsTouch(l.Start()) || !region.ContainsTouch(l.End()) {
		if !l.Crop(region) {
			return list
		}
	}

	for _, i := range m.PointInPolyList(l.Start()) {
		list = insertSorted(list, i)
	}
	for _, i := range m.PointInPolyList(l.End()) {
		list = insertSorted(list, i)
	}

	for _, p := range pixel.PixelateLine(m, l, 1) {
		for _, ref := range *m.bucket(p) {
			if ref.Key == lineKey || !ref.Has(shapes.TagEdge|shapes.TagInternalEdge|shapes.TagOpen) {
				continue
			}
			i, ok := m.Index(ref.Key)
			if !ok {
				continue
			}
			if _, found := slices.BinarySearch(list, i); found {
				continue
			}

			s := m.shapes[i]
			if s.IsLine() {
				if crosses(s.Line(), l, tolerance) {
					list = insertSorted(list, i)
				}
				continue
			}
			for _, k := range ref.PolyRefs {
				if crosses(s.Segment(k), l, tolerance) {
					list = insertSorted(list, i)
					break
				}
			}
		}
	}
	return list
}

func crosses(a, b geometry.Line, tolerance float64) bool {
	return geometry.IntersectRegion(a.Region, b.Region, 0) && geometry.IntersectLine(a, b, tolerance)
}

// PolyInPolyList returns the sorted indexes of the shapes overlapping the
// polygon with the given key.
func (m *ShapeMap) PolyInPolyList(key int, tolerance float64) ([]int, error) {
	i, ok := m.Index(key)
	if !ok {
		return nil, errors.New("shape not found").
			WithType(ErrTypeShapeNotFound).
			WithTag("key", key)
	}
	if m.shapes[i].IsOpen() {
		return nil, errors.New("shape is not a polygon").
			WithType(ErrTypeNotClosed).
			WithTag("key", key)
	}
	return m.polyInPolyList(i, tolerance), nil
}

func (m *ShapeMap) polyInPolyList(polyIndex int, tolerance float64) []int {
	key := m.keys[polyIndex]
	poly := m.shapes[polyIndex]
	bb := poly.BoundingBox()
	bl := m.Pixelate(bb.BottomLeft, true, 1)
	tr := m.Pixelate(bb.TopRight, true, 1)

	found := make(map[int]struct{})
	add := func(i int) {
		if i != polyIndex {
			found[i] = struct{}{}
		}
	}

	var cells []pixel.Ref
	for x := bl.X; x <= tr.X; x++ {
		for y := bl.Y; y <= tr.Y; y++ {
			p := pixel.Ref{X: x, Y: y}
			if m.bucket(p).Contains(key) {
				cells = append(cells, p)
			}
		}
	}

	// Whatever shares a centre cell with the polygon overlaps it.
	for _, p := range cells {
		b := *m.bucket(p)
		self := b.Get(key)
		for _, ref := range b {
			if ref.Key == key {
				continue
			}
			if self.Has(shapes.TagCentre) || ref.Has(shapes.TagCentre) {
				if i, ok := m.Index(ref.Key); ok {
					add(i)
				}
			}
		}
	}

	for _, p := range cells {
		b := *m.bucket(p)
		self := b.Get(key)
		if self.Has(shapes.TagCentre) {
			continue
		}

		for _, ref := range b {
			if ref.Key == key || ref.Has(shapes.TagCentre) {
				continue
			}
			i, ok := m.Index(ref.Key)
			if !ok {
				continue
			}
			if _, done := found[i]; done {
				continue
			}

			s := m.shapes[i]
			switch {
			case s.IsPoint():
				if m.testPointInPoly(s.Point(), *self) != -1 {
					add(i)
				}

			case s.IsLine():
				line := s.Line()
				if m.testPointInPoly(line.Start(), *self) != -1 || m.testPointInPoly(line.End(), *self) != -1 {
					add(i)
					continue
				}
				for _, k := range self.PolyRefs {
					if crosses(poly.Segment(k), line, tolerance) {
						add(i)
						break
					}
				}

			case s.IsPolyLine():
				if m.segmentsCross(poly, self.PolyRefs, s, ref.PolyRefs, tolerance) {
					add(i)
					continue
				}
				for _, k := range ref.PolyRefs {
					seg := s.Segment(k)
					if m.testPointInPoly(seg.Start(), *self) != -1 || m.testPointInPoly(seg.End(), *self) != -1 {
						add(i)
						break
					}
				}

			default:
				if m.segmentsCross(poly, self.PolyRefs, s, ref.PolyRefs, tolerance) {
					add(i)
					continue
				}
				// One polygon may hold the other whole: test a vertex of
				// each against the other.
				if m.vertexInCell(s, p) && m.testPointInPoly(s.Points()[0], *self) != -1 {
					add(i)
					continue
				}
				if m.vertexInCell(poly, p) && m.testPointInPoly(poly.Points()[0], ref) != -1 {
					add(i)
				}
			}
		}
	}

	list := make([]int, 0, len(found))
	for i := range found {
		list = append(list, i)
	}
	slices.Sort(list)
	return list
}

func (m *ShapeMap) segmentsCross(a shapes.Shape, aRefs []int, b shapes.Shape, bRefs []int, tolerance float64) bool {
	for _, j := range aRefs {
		for _, k := range bRefs {
			if crosses(a.Segment(j), b.Segment(k), tolerance) {
				return true
			}
		}
	}
	return false
}

func (m *ShapeMap) vertexInCell(s shapes.Shape, p pixel.Ref) bool {
	return len(s.Points()) != 0 && m.Pixelate(s.Points()[0], true, 1) == p
}

// ShapeInPolyList returns the sorted indexes of the shapes overlapping s,
// which need not be part of the map.
func (m *ShapeMap) ShapeInPolyList(s shapes.Shape) []int {
	tolerance := toleranceB * math.Max(m.Region().Height(), m.Region().Width())

	switch {
	case s.IsPoint():
		return m.PointInPolyList(s.Point())

	case s.IsLine():
		return m.lineInPolyList(s.Line(), -1, tolerance)

	case s.IsPolyLine():
		var list []int
		for k := 0; k < s.PointCount()-1; k++ {
			for _, i := range m.lineInPolyList(s.Segment(k), -1, tolerance) {
				list = insertSorted(list, i)
			}
		}
		return list

	default:
		key := m.NextKey()
		i := m.insertShape(key, s.Clone())
		list := m.polyInPolyList(i, tolerance)
		m.removePolyPixels(i)
		m.deleteShape(i)
		return list
	}
}

// closestOpenGeom returns the index of the open shape closest to p among
// those crossing the cell of p, or -1.
func (m *ShapeMap) closestOpenGeom(p geometry.Point) int {
	if !m.regionSet || !m.Region().ContainsTouch(p) {
		return -1
	}

	best, bestDist := -1, math.Inf(1)
	for _, ref := range *m.bucket(m.Pixelate(p, true, 1)) {
		if !ref.Has(shapes.TagOpen) {
			continue
		}
		i, ok := m.Index(ref.Key)
		if !ok {
			continue
		}

		s := m.shapes[i]
		var d float64
		switch {
		case s.IsPoint():
			d = geometry.Dist(p, s.Point())
		case s.IsLine():
			d = geometry.DistToLine(p, s.Line())
		default:
			d = math.Inf(1)
			for _, k := range ref.PolyRefs {
				d = math.Min(d, geometry.DistToLine(p, s.Segment(k)))
			}
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// GetClosestOpenGeom returns the index of the open shape nearest to p in the
// cell of p, or -1.
func (m *ShapeMap) GetClosestOpenGeom(p geometry.Point) int {
	return m.closestOpenGeom(p)
}

// GetClosestVertex returns the shape vertex closest to p, searching the cell
// of p. It returns false when the cell is empty.
func (m *ShapeMap) GetClosestVertex(p geometry.Point) (geometry.Point, bool) {
	var vertex geometry.Point
	if !m.regionSet || !m.Region().ContainsTouch(p) {
		return vertex, false
	}

	found := false
	bestDist := math.Inf(1)
	consider := func(v geometry.Point) {
		if d := geometry.Dist(p, v); d < bestDist {
			vertex, bestDist, found = v, d, true
		}
	}

	for _, ref := range *m.bucket(m.Pixelate(p, true, 1)) {
		i, ok := m.Index(ref.Key)
		if !ok {
			continue
		}
		s := m.shapes[i]
		switch {
		case s.IsPoint():
			consider(s.Point())
		case s.IsLine():
			consider(s.Line().Start())
			consider(s.Line().End())
		default:
			for _, k := range ref.PolyRefs {
				seg := s.Segment(k)
				consider(seg.TStart())
				consider(seg.TEnd())
			}
		}
	}
	return vertex, found
}

// MakeBSPTree builds the partition of the line shapes used by
// GetClosestLine. The tree is kept until the geometry changes.
func (m *ShapeMap) MakeBSPTree(c comm.Communicator) error {
	if m.bspTree != nil && !m.bspStale {
		return nil
	}

	var lines []bsp.TaggedLine
	for i, s := range m.shapes {
		if s.IsLine() {
			lines = append(lines, bsp.TaggedLine{Line: s.Line(), Tag: m.keys[i]})
		}
	}

	tree, err := bsp.Build(c, lines)
	if err != nil {
		return errors.New("building shape map partition failed").
			WithType(errors.Type(err)).
			WithTag("map", m.name).
			Wrap(err)
	}
	m.bspTree = tree
	m.bspStale = false
	return nil
}

// GetClosestLine returns the key of the line shape closest to p, or -1 when
// the partition is missing or empty.
func (m *ShapeMap) GetClosestLine(p geometry.Point) int {
	if m.bspTree == nil {
		return -1
	}
	return m.bspTree.ClosestLine(p)
}

// GetLocationValue returns the displayed value of the shape at p: the
// polygon containing it, else the nearest open shape in its cell. It
// returns -2 when no shape is there.
func (m *ShapeMap) GetLocationValue(p geometry.Point) float64 {
	i := m.PointInPoly(p)
	if i == -1 {
		i = m.closestOpenGeom(p)
	}
	if i == -1 || i >= m.attributes.RowCount() {
		return -2
	}
	return float64(m.attributes.GetValue(i, m.attributes.DisplayColumn()))
}
