package shapemap

import (
	"github.com/aukilabs/depthmap/pixel"
	"github.com/aukilabs/depthmap/shapes"
)

// bucket returns the refs held by cell p.
func (m *ShapeMap) bucket(p pixel.Ref) *shapes.Bucket {
	return &m.pixels[int(p.X)+int(p.Y)*m.Cols()]
}

// Bucket returns the refs held by cell p, ordered by shape key.
func (m *ShapeMap) Bucket(p pixel.Ref) shapes.Bucket {
	if !m.Includes(p) {
		return nil
	}
	return *m.bucket(p)
}

// addRef adds the ref of key to cell p, keeping an existing one, and returns
// it. The pointer is only valid until the cell changes again.
func (m *ShapeMap) addRef(p pixel.Ref, key int, tags shapes.Tag) *shapes.Ref {
	b := m.bucket(p)
	var i int
	*b, i = b.Insert(key, tags)
	return &(*b)[i]
}

func appendSegment(refs []int, k int) []int {
	for _, r := range refs {
		if r == k {
			return refs
		}
	}
	return append(refs, k)
}

// makePolyPixels indexes the shape at index i. Open shapes tag the cells
// they cross. Polygons tag their border cells with the sides facing out of
// the shape and fill their inside with centre refs.
func (m *ShapeMap) makePolyPixels(i int) {
	key := m.keys[i]
	s := m.shapes[i]

	switch {
	case s.IsPoint():
		m.addRef(m.Pixelate(s.Point(), true, 1), key, shapes.TagOpen)

	case s.IsLine():
		for _, p := range pixel.PixelateLine(m, s.Line(), 1) {
			m.addRef(p, key, shapes.TagOpen)
		}

	case s.IsPolyLine():
		for k := 0; k < s.PointCount()-1; k++ {
			for _, p := range pixel.PixelateLine(m, s.Segment(k), 1) {
				ref := m.addRef(p, key, shapes.TagOpen)
				ref.PolyRefs = appendSegment(ref.PolyRefs, k)
			}
		}

	default:
		m.makePolygonPixels(key, s)
	}

	instrumentPixelated(s)
}

func (m *ShapeMap) makePolygonPixels(key int, s shapes.Shape) {
	relations := make(map[pixel.Ref]shapes.Tag)
	for k := 0; k < s.PointCount(); k++ {
		for _, p := range pixel.PixelateLine(m, s.Segment(k), 1) {
			ref := m.addRef(p, key, 0)
			ref.PolyRefs = appendSegment(ref.PolyRefs, k)
			relations[p] = shapes.TagEdge
		}
	}

	// Sides shared with another border cell are not on the border.
	holds := func(p pixel.Ref) bool {
		return m.Includes(p) && m.bucket(p).Contains(key)
	}
	minpix := pixel.NoRef
	for p, rel := range relations {
		if holds(p.Right()) {
			rel &^= shapes.TagR
		}
		if holds(p.Up()) {
			rel &^= shapes.TagT
		}
		if holds(p.Down()) {
			rel &^= shapes.TagB
		}
		if holds(p.Left()) {
			rel &^= shapes.TagL
		}
		relations[p] = rel

		if rel&shapes.TagB != 0 && rel&shapes.TagL != 0 {
			if minpix == pixel.NoRef || pixel.Less(p, minpix) {
				minpix = p
			}
		}
	}

	walkBorder(relations, minpix, func(p pixel.Ref, side shapes.Tag) {
		m.bucket(p).Get(key).Tags |= side
	})

	for p := range relations {
		if ref := m.bucket(p).Get(key); ref.Tags == 0 {
			ref.Tags = shapes.TagInternalEdge
		}
	}

	// What is left of the relations faces inwards: fill rightwards from
	// every inner right side up to the next border cell.
	for p, rel := range relations {
		if rel&shapes.TagR == 0 {
			continue
		}
		for q := p.Right(); m.Includes(q); q = q.Right() {
			b := m.bucket(q)
			if b.Contains(key) {
				break
			}
			*b, _ = b.Insert(key, shapes.TagCentre)
		}
	}
}

// walkBorder follows the outer border of a set of cells anticlockwise from
// start, the bottom left border cell, visiting every side it passes. Each
// visited side is cleared from relations.
func walkBorder(relations map[pixel.Ref]shapes.Tag, start pixel.Ref, visit func(p pixel.Ref, side shapes.Tag)) {
	if start == pixel.NoRef {
		return
	}

	curr := start
	side := shapes.TagL
	limit := 16*len(relations) + 16

	for step := 0; step < limit; step++ {
		if step > 0 && curr == start && side == shapes.TagL {
			return
		}

		rel, ok := relations[curr]
		if !ok {
			return
		}

		if rel&side != 0 {
			visit(curr, side)
			relations[curr] = rel &^ side
			side <<= 1
			if side > shapes.TagT {
				side = shapes.TagL
			}
			continue
		}

		curr = curr.Move(moveDir(side))
		side >>= 1
		if side == 0 {
			side = shapes.TagT
		}
	}
}

func moveDir(side shapes.Tag) int {
	switch side {
	case shapes.TagL:
		return pixel.NegHorizontal
	case shapes.TagB:
		return pixel.NegVertical
	case shapes.TagR:
		return pixel.Horizontal
	default:
		return pixel.Vertical
	}
}

// removePolyPixels drops every ref of the shape at index i.
func (m *ShapeMap) removePolyPixels(i int) {
	key := m.keys[i]
	s := m.shapes[i]

	remove := func(p pixel.Ref) {
		if m.Includes(p) {
			b := m.bucket(p)
			*b = b.Remove(key)
		}
	}

	switch {
	case s.IsClosed():
		bb := s.BoundingBox()
		bl := m.Pixelate(bb.BottomLeft, true, 1)
		tr := m.Pixelate(bb.TopRight, true, 1)
		for x := bl.X; x <= tr.X; x++ {
			for y := bl.Y; y <= tr.Y; y++ {
				remove(pixel.Ref{X: x, Y: y})
			}
		}

	case s.IsPoint():
		remove(m.Pixelate(s.Point(), true, 1))

	case s.IsLine():
		for _, p := range pixel.PixelateLine(m, s.Line(), 1) {
			remove(p)
		}

	default:
		for k := 0; k < s.PointCount()-1; k++ {
			for _, p := range pixel.PixelateLine(m, s.Segment(k), 1) {
				remove(p)
			}
		}
	}
}
