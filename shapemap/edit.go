package shapemap

import (
	"slices"

	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pixel"
	"github.com/aukilabs/depthmap/shapes"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// Copy flags of CopyFrom.
const (
	CopyName       = 0x01
	CopyGeometry   = 0x02
	CopyAttributes = 0x04
	CopyGraph      = 0x08
	CopyAll        = 0x0f
)

func shapeNotFound(key int) error {
	return errors.New("shape not found").
		WithType(ErrTypeShapeNotFound).
		WithTag("key", key)
}

// MoveShape replaces the geometry of the shape with the given key. The
// previous geometry is recorded for undo.
func (m *ShapeMap) MoveShape(key int, s shapes.Shape) error {
	return m.moveShape(key, s, false)
}

// MoveLine replaces the geometry of a shape with a line.
func (m *ShapeMap) MoveLine(key int, l geometry.Line) error {
	return m.moveShape(key, shapes.NewLine(l), false)
}

func (m *ShapeMap) moveShape(key int, s shapes.Shape, undoing bool) error {
	i, ok := m.Index(key)
	if !ok {
		return shapeNotFound(key)
	}

	m.removePolyPixels(i)
	if !undoing {
		m.undo = append(m.undo, shapes.Event{Action: shapes.ActionMoved, Key: key, Geometry: m.shapes[i]})
	}

	m.shapes[i] = s.Clone()
	if m.fits(s.BoundingBox()) {
		m.makePolyPixels(i)
	} else {
		m.Init(len(m.shapes), s.BoundingBox())
	}
	m.geometryChanged()

	if m.hasGraph {
		m.reconnect(i)
	}
	m.refreshDisplay()
	return nil
}

// reconnect replaces the connections of the shape at index i after it moved.
// User unlinks still holding are applied again and stale ones dropped; user
// links the geometry now provides are dropped.
func (m *ShapeMap) reconnect(i int) {
	m.growConnectors()
	conn := m.connectivityColumn()
	lineGraph := m.IsAxialMap()

	for _, j := range m.connectors[i].Connections {
		m.connectors[j].Connections = removeSorted(m.connectors[j].Connections, i)
		m.attributes.DecrValue(j, conn, 1)
	}

	var connections []int
	if lineGraph {
		connections = m.getLineConnections(i, m.connectionTolerance())
	} else {
		connections = m.getShapeConnections(i, m.connectionTolerance())
	}
	m.connectors[i].Connections = connections
	m.attributes.ChangeValue(i, conn, float32(len(connections)))
	for _, j := range connections {
		m.connectors[j].Connections = insertSorted(m.connectors[j].Connections, i)
		m.attributes.IncrValue(j, conn, 1)
	}

	touches := func(j int) bool {
		_, ok := slices.BinarySearch(connections, j)
		return ok
	}
	other := func(p Pair) int {
		if p.A == i {
			return p.B
		}
		return p.A
	}

	unlinks := m.unlinks[:0]
	for _, p := range m.unlinks {
		if !p.Has(i) {
			unlinks = append(unlinks, p)
			continue
		}
		if j := other(p); touches(j) {
			m.disconnect(i, j)
			unlinks = append(unlinks, p)
		}
	}
	m.unlinks = unlinks

	links := m.links[:0]
	for _, p := range m.links {
		if !p.Has(i) {
			links = append(links, p)
			continue
		}
		if j := other(p); !touches(j) {
			m.connect(i, j)
			links = append(links, p)
		}
	}
	m.links = links

	if lineGraph {
		m.attributes.InsertLockedColumn(LineLengthColumn)
		col, _ := m.attributes.ColumnIndex(LineLengthColumn)
		m.attributes.ChangeValue(i, col, float32(m.shapes[i].Length()))
	}
}

// RemoveShape deletes the shape with the given key together with its
// attribute row and graph edges. The deletion is recorded for undo.
func (m *ShapeMap) RemoveShape(key int) error {
	return m.removeShape(key, false)
}

func (m *ShapeMap) removeShape(key int, undoing bool) error {
	i, ok := m.Index(key)
	if !ok {
		return shapeNotFound(key)
	}

	if !undoing {
		m.undo = append(m.undo, shapes.Event{Action: shapes.ActionDeleted, Key: key, Geometry: m.shapes[i]})
	}
	m.removePolyPixels(i)

	if i < len(m.connectors) {
		m.removeConnector(i)
	}

	m.attributes.RemoveRow(key)
	m.deleteShape(i)
	m.refreshDisplay()
	return nil
}

func (m *ShapeMap) removeConnector(i int) {
	conn, hasConn := m.attributes.ColumnIndex(ConnectivityColumn)
	for _, j := range m.connectors[i].Connections {
		m.connectors[j].Connections = removeSorted(m.connectors[j].Connections, i)
		if hasConn && conn >= 0 {
			m.attributes.DecrValue(j, conn, 1)
		}
	}
	m.connectors = slices.Delete(m.connectors, i, i+1)

	shiftLinks := func(links SegmentLinks) SegmentLinks {
		kept := links[:0]
		for _, l := range links {
			if l.Ref == i {
				continue
			}
			if l.Ref > i {
				l.Ref--
			}
			kept = append(kept, l)
		}
		return kept
	}
	for c := range m.connectors {
		for k, j := range m.connectors[c].Connections {
			if j > i {
				m.connectors[c].Connections[k]--
			}
		}
		m.connectors[c].Forward = shiftLinks(m.connectors[c].Forward)
		m.connectors[c].Back = shiftLinks(m.connectors[c].Back)
	}

	shiftPairs := func(pairs []Pair) []Pair {
		kept := pairs[:0]
		for _, p := range pairs {
			if p.Has(i) {
				continue
			}
			if p.A > i {
				p.A--
			}
			if p.B > i {
				p.B--
			}
			kept = append(kept, p)
		}
		return kept
	}
	m.links = shiftPairs(m.links)
	m.unlinks = shiftPairs(m.unlinks)
}

// RemoveSelected deletes every selected shape.
func (m *ShapeMap) RemoveSelected() error {
	if !m.editable {
		return errors.New("map is not editable").
			WithType(ErrTypeNotEditable).
			WithTag("map", m.name)
	}

	var keys []int
	for _, i := range m.SelectedIndexes() {
		keys = append(keys, m.keys[i])
	}
	for _, key := range keys {
		if err := m.removeShape(key, false); err != nil {
			return err
		}
	}
	m.attributes.DeselectAll()
	return nil
}

// CanUndo reports whether an edit is waiting to be undone.
func (m *ShapeMap) CanUndo() bool {
	return len(m.undo) != 0
}

// Undo reverts the last recorded edit. It returns false when there is
// nothing to undo.
func (m *ShapeMap) Undo() (bool, error) {
	if len(m.undo) == 0 {
		return false, nil
	}
	e := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]

	switch e.Action {
	case shapes.ActionCreated:
		if err := m.removeShape(e.Key, true); err != nil {
			return false, err
		}

	case shapes.ActionDeleted:
		if m.MakeShape(e.Geometry, e.Key, nil) == -1 {
			return false, errors.New("restoring deleted shape failed").
				WithType(ErrTypeShapeNotFound).
				WithTag("key", e.Key)
		}
		if m.hasGraph {
			i, _ := m.Index(e.Key)
			m.ConnectIntersected(i, m.IsAxialMap())
		}

	case shapes.ActionMoved:
		if err := m.moveShape(e.Key, e.Geometry, true); err != nil {
			return false, err
		}
	}

	m.refreshDisplay()
	return true, nil
}

// PointSet is a grid of points that can be selected, such as a point map.
type PointSet interface {
	// Returns the selected cells.
	SelectedRefs() []pixel.Ref

	IsSelected(p pixel.Ref) bool
	Includes(p pixel.Ref) bool
	Depixelate(p pixel.Ref) geometry.Point

	// Returns the distance between two neighbouring points.
	Spacing() float64

	Region() geometry.Region
}

// MakeShapeFromPointSet adds the polygon outlining the selected points of
// ps. It returns -1 when nothing is selected or when the selection is not a
// single region without holes.
func (m *ShapeMap) MakeShapeFromPointSet(ps PointSet) int {
	refs := ps.SelectedRefs()
	if len(refs) == 0 {
		return -1
	}

	selected := func(p pixel.Ref) bool {
		return ps.Includes(p) && ps.IsSelected(p)
	}

	relations := make(map[pixel.Ref]shapes.Tag, len(refs))
	minpix := pixel.NoRef
	for _, p := range refs {
		rel := shapes.TagEdge
		if selected(p.Right()) {
			rel &^= shapes.TagR
		}
		if selected(p.Up()) {
			rel &^= shapes.TagT
		}
		if selected(p.Down()) {
			rel &^= shapes.TagB
		}
		if selected(p.Left()) {
			rel &^= shapes.TagL
		}
		relations[p] = rel

		if rel&shapes.TagB != 0 && rel&shapes.TagL != 0 {
			if minpix == pixel.NoRef || pixel.Less(p, minpix) {
				minpix = p
			}
		}
	}

	half := ps.Spacing() / 2
	var points []geometry.Point
	walkBorder(relations, minpix, func(p pixel.Ref, side shapes.Tag) {
		offset := geometry.Point{}
		switch side {
		case shapes.TagL:
			offset.X = -half
		case shapes.TagB:
			offset.Y = -half
		case shapes.TagR:
			offset.X = half
		case shapes.TagT:
			offset.Y = half
		}
		points = append(points, ps.Depixelate(p).Add(offset))
	})

	for _, rel := range relations {
		if rel != 0 {
			return -1
		}
	}

	s := shapes.NewPoly(points, true)
	if !m.fits(s.BoundingBox()) {
		r := ps.Region()
		pad := geometry.Point{X: half, Y: half}
		m.Init(len(m.shapes), geometry.Region{
			BottomLeft: r.BottomLeft.Sub(pad),
			TopRight:   r.TopRight.Add(pad),
		})
	}

	key := m.NextKey()
	m.insertShape(key, s)
	m.attributes.InsertRow(key)
	m.refreshDisplay()
	return key
}

// CopyFrom copies the parts of src selected by flags. Map info coordinate
// system and bounds are always copied.
func (m *ShapeMap) CopyFrom(src *ShapeMap, flags int) {
	if flags&CopyName != 0 {
		m.name = src.name
	}

	if flags&CopyGeometry != 0 {
		m.Init(len(src.shapes), src.Region())
		for i, s := range src.shapes {
			m.MakeShape(s, src.keys[i], nil)
		}
	}

	if flags&CopyAttributes != 0 {
		in := src.attributes
		for c := 0; c < in.ColumnCount(); c++ {
			m.attributes.InsertColumn(in.ColumnName(c))
		}
		for r := 0; r < in.RowCount(); r++ {
			row, ok := m.attributes.RowIndex(in.RowKey(r))
			if !ok {
				continue
			}
			for c := 0; c < in.ColumnCount(); c++ {
				col, _ := m.attributes.ColumnIndex(in.ColumnName(c))
				m.attributes.ChangeValue(row, col, in.GetValue(r, c))
			}
		}
	}

	if flags&CopyGraph != 0 {
		m.connectors = make([]Connector, len(src.connectors))
		for i, c := range src.connectors {
			m.connectors[i] = Connector{
				Connections:     slices.Clone(c.Connections),
				SegmentAxialRef: c.SegmentAxialRef,
				Forward:         slices.Clone(c.Forward),
				Back:            slices.Clone(c.Back),
			}
		}
		m.links = slices.Clone(src.links)
		m.unlinks = slices.Clone(src.unlinks)
	}

	if src.mapInfo != nil {
		if m.mapInfo == nil {
			m.mapInfo = &MapInfo{}
		}
		m.mapInfo.CoordSys = src.mapInfo.CoordSys
		m.mapInfo.Bounds = src.mapInfo.Bounds
	}
	m.refreshDisplay()
}
