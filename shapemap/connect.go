package shapemap

import (
	"math"
	"slices"
	"sort"
	"time"

	"github.com/aukilabs/depthmap/attributes"
	"github.com/aukilabs/depthmap/comm"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pixel"
	"github.com/aukilabs/depthmap/shapes"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// SegmentRef points at a neighbouring segment and the end it is joined by.
// Refs are compared by segment only.
type SegmentRef struct {
	Dir int8
	Ref int
}

// SegmentLink is a weighted join to a neighbouring segment.
type SegmentLink struct {
	SegmentRef
	Weight float32
}

// SegmentLinks is a list of joins ordered by segment.
type SegmentLinks []SegmentLink

// Add returns the list with a join to ref. An existing join to the same
// segment is kept.
func (l SegmentLinks) Add(ref SegmentRef, weight float32) SegmentLinks {
	i := sort.Search(len(l), func(i int) bool {
		return l[i].Ref >= ref.Ref
	})
	if i < len(l) && l[i].Ref == ref.Ref {
		return l
	}
	return slices.Insert(l, i, SegmentLink{SegmentRef: ref, Weight: weight})
}

// Connector holds the graph edges of a shape. Connections are the sorted
// indexes of the shapes it touches. Segment maps also join segment ends
// through the forward and back lists.
type Connector struct {
	Connections     []int
	SegmentAxialRef int
	Forward         SegmentLinks
	Back            SegmentLinks
}

func newConnector() Connector {
	return Connector{SegmentAxialRef: -1}
}

// Pair is an unordered pair of shape indexes, smallest first.
type Pair struct {
	A int
	B int
}

func NewPair(a, b int) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

func (p Pair) Has(i int) bool {
	return p.A == i || p.B == i
}

func (m *ShapeMap) Connectors() []Connector {
	return m.connectors
}

// Connections returns the sorted indexes of the shapes touching the shape at
// index i.
func (m *ShapeMap) Connections(i int) []int {
	if i >= len(m.connectors) {
		return nil
	}
	return m.connectors[i].Connections
}

func (m *ShapeMap) Links() []Pair {
	return m.links
}

func (m *ShapeMap) Unlinks() []Pair {
	return m.unlinks
}

func (m *ShapeMap) insertConnector(i int) {
	m.connectors = slices.Insert(m.connectors, i, newConnector())
	shiftLinks := func(links SegmentLinks) {
		for k := range links {
			if links[k].Ref >= i {
				links[k].Ref++
			}
		}
	}
	for c := range m.connectors {
		for k, j := range m.connectors[c].Connections {
			if j >= i {
				m.connectors[c].Connections[k]++
			}
		}
		shiftLinks(m.connectors[c].Forward)
		shiftLinks(m.connectors[c].Back)
	}
	shift := func(pairs []Pair) {
		for k := range pairs {
			if pairs[k].A >= i {
				pairs[k].A++
			}
			if pairs[k].B >= i {
				pairs[k].B++
			}
		}
	}
	shift(m.links)
	shift(m.unlinks)
}

func (m *ShapeMap) growConnectors() {
	for len(m.connectors) < len(m.shapes) {
		m.connectors = append(m.connectors, newConnector())
	}
}

func (m *ShapeMap) connectionTolerance() float64 {
	return toleranceB * math.Max(m.Region().Height(), m.Region().Width())
}

func (m *ShapeMap) connectivityColumn() int {
	m.attributes.InsertLockedColumn(ConnectivityColumn)
	col, _ := m.attributes.ColumnIndex(ConnectivityColumn)
	return col
}

// ConnectIntersected connects the shape at index i to every shape it
// touches, updating the connectivity of both ends. Line graphs only join
// lines to lines and record the line length.
func (m *ShapeMap) ConnectIntersected(i int, lineGraph bool) {
	m.attributes.InsertLockedColumn(ConnectivityColumn)
	if lineGraph {
		m.attributes.InsertLockedColumn(LineLengthColumn)
	}
	conn := m.connectivityColumn()
	m.growConnectors()

	var connections []int
	if lineGraph {
		connections = m.getLineConnections(i, m.connectionTolerance())
	} else {
		connections = m.getShapeConnections(i, m.connectionTolerance())
	}
	m.connectors[i].Connections = connections

	m.attributes.ChangeValue(i, conn, float32(len(connections)))
	if lineGraph {
		lengthCol, _ := m.attributes.ColumnIndex(LineLengthColumn)
		m.attributes.ChangeValue(i, lengthCol, float32(m.shapes[i].Length()))
	}

	for _, j := range connections {
		m.connectors[j].Connections = insertSorted(m.connectors[j].Connections, i)
		m.attributes.IncrValue(j, conn, 1)
	}
}

// getLineConnections returns the sorted indexes of the line shapes crossing
// the line at index i.
func (m *ShapeMap) getLineConnections(i int, tolerance float64) []int {
	var connections []int
	s := m.shapes[i]
	if !s.IsLine() {
		return connections
	}

	key := m.keys[i]
	line := s.Line()
	for _, p := range pixel.PixelateLine(m, line, 1) {
		for _, ref := range *m.bucket(p) {
			if ref.Key == key || !ref.Has(shapes.TagOpen) {
				continue
			}
			j, ok := m.Index(ref.Key)
			if !ok || !m.shapes[j].IsLine() {
				continue
			}
			if _, done := slices.BinarySearch(connections, j); done {
				continue
			}
			if crosses(line, m.shapes[j].Line(), tolerance) {
				connections = insertSorted(connections, j)
			}
		}
	}
	return connections
}

// getShapeConnections returns the sorted indexes of the shapes overlapping
// the shape at index i.
func (m *ShapeMap) getShapeConnections(i int, tolerance float64) []int {
	key := m.keys[i]
	s := m.shapes[i]

	var connections []int
	switch {
	case s.IsPoint():
		connections = m.PointInPolyList(s.Point())
	case s.IsLine():
		connections = m.lineInPolyList(s.Line(), key, tolerance)
	case s.IsPolyLine():
		for k := 0; k < s.PointCount()-1; k++ {
			for _, j := range m.lineInPolyList(s.Segment(k), key, tolerance) {
				connections = insertSorted(connections, j)
			}
		}
	default:
		connections = m.polyInPolyList(i, tolerance)
	}

	if k, ok := slices.BinarySearch(connections, i); ok {
		connections = slices.Delete(connections, k, k+1)
	}
	return connections
}

// MakeShapeConnections rebuilds the graph of the map from scratch. User
// links are dropped and the attribute table is replaced by one holding the
// connectivity only.
func (m *ShapeMap) MakeShapeConnections(c comm.Communicator) (err error) {
	if !m.hasGraph {
		return nil
	}

	start := time.Now()
	defer func() {
		instrumentConnections(start, err)
	}()

	m.connectors = make([]Connector, len(m.shapes))
	for i := range m.connectors {
		m.connectors[i] = newConnector()
	}
	m.links = nil
	m.unlinks = nil
	m.attributes = attributes.NewTable(m.name)
	conn := m.attributes.InsertLockedColumn(ConnectivityColumn)

	tolerance := m.connectionTolerance()
	for i, key := range m.keys {
		if i%progressInterval == 0 {
			if err := comm.Check(c, "shape connections"); err != nil {
				return err
			}
			comm.Post(c, i)
		}

		row := m.attributes.InsertRow(key)
		m.connectors[i].Connections = m.getShapeConnections(i, tolerance)
		m.attributes.SetValue(row, conn, float32(len(m.connectors[i].Connections)))
	}

	m.SetDisplayedAttribute(conn)
	logs.WithTag("map", m.name).
		WithTag("shapes", len(m.shapes)).
		Debug("shape connections made")
	return nil
}

// LinkShapes joins the shapes at indexes a and b. Joining a pair that was
// unlinked before restores the connection. It returns false when the shapes
// are already connected.
func (m *ShapeMap) LinkShapes(a, b int) bool {
	if a == b || a >= len(m.connectors) || b >= len(m.connectors) {
		return false
	}

	pair := NewPair(a, b)
	if k := slices.Index(m.unlinks, pair); k != -1 {
		m.unlinks = slices.Delete(m.unlinks, k, k+1)
	} else {
		if _, ok := slices.BinarySearch(m.connectors[a].Connections, b); ok {
			return false
		}
		m.links = append(m.links, pair)
	}

	m.connect(a, b)
	m.refreshConnectivity()
	return true
}

// UnlinkShapes separates the shapes at indexes a and b. Separating a pair
// that was linked before drops the link. It returns false when the shapes
// are not connected.
func (m *ShapeMap) UnlinkShapes(a, b int) bool {
	if a == b || a >= len(m.connectors) || b >= len(m.connectors) {
		return false
	}

	pair := NewPair(a, b)
	if k := slices.Index(m.links, pair); k != -1 {
		m.links = slices.Delete(m.links, k, k+1)
	} else {
		if _, ok := slices.BinarySearch(m.connectors[a].Connections, b); !ok {
			return false
		}
		m.unlinks = append(m.unlinks, pair)
	}

	m.disconnect(a, b)
	m.refreshConnectivity()
	return true
}

func (m *ShapeMap) connect(a, b int) {
	conn := m.connectivityColumn()
	m.connectors[a].Connections = insertSorted(m.connectors[a].Connections, b)
	m.connectors[b].Connections = insertSorted(m.connectors[b].Connections, a)
	m.attributes.IncrValue(a, conn, 1)
	m.attributes.IncrValue(b, conn, 1)
}

func (m *ShapeMap) disconnect(a, b int) {
	conn := m.connectivityColumn()
	m.connectors[a].Connections = removeSorted(m.connectors[a].Connections, b)
	m.connectors[b].Connections = removeSorted(m.connectors[b].Connections, a)
	m.attributes.DecrValue(a, conn, 1)
	m.attributes.DecrValue(b, conn, 1)
}

func removeSorted(list []int, v int) []int {
	if i, ok := slices.BinarySearch(list, v); ok {
		return slices.Delete(list, i, i+1)
	}
	return list
}

func (m *ShapeMap) refreshConnectivity() {
	if m.attributes.DisplayColumn() == m.connectivityColumn() {
		m.refreshDisplay()
	}
}

// LinkShapesAt links the single selected shape to the shape at p.
func (m *ShapeMap) LinkShapesAt(p geometry.Point) bool {
	a, b, ok := m.selectedAndAt(p)
	return ok && m.LinkShapes(a, b)
}

// UnlinkShapesAt unlinks the single selected shape from the shape at p.
func (m *ShapeMap) UnlinkShapesAt(p geometry.Point) bool {
	a, b, ok := m.selectedAndAt(p)
	return ok && m.UnlinkShapes(a, b)
}

func (m *ShapeMap) selectedAndAt(p geometry.Point) (int, int, bool) {
	if m.attributes.SelectionCount() != 1 {
		return -1, -1, false
	}
	selected := m.SelectedIndexes()
	if len(selected) != 1 {
		return -1, -1, false
	}

	at := m.PointInPoly(p)
	if at == -1 {
		at = m.closestOpenGeom(p)
	}
	if at == -1 {
		return -1, -1, false
	}
	return selected[0], at, true
}

// ClearLinks undoes every user link and unlink.
func (m *ShapeMap) ClearLinks() {
	for _, l := range m.links {
		m.disconnect(l.A, l.B)
	}
	for _, l := range m.unlinks {
		m.connect(l.A, l.B)
	}
	m.links = nil
	m.unlinks = nil
	m.refreshConnectivity()
}

// LinkSegments joins an end of segment a to an end of segment b. A dir of
// 1 is the forward end, anything else the back end.
func (m *ShapeMap) LinkSegments(a int, dirA int8, b int, dirB int8, weight float32) {
	m.growConnectors()
	add := func(i int, dir int8, to SegmentRef) {
		if dir == 1 {
			m.connectors[i].Forward = m.connectors[i].Forward.Add(to, weight)
		} else {
			m.connectors[i].Back = m.connectors[i].Back.Add(to, weight)
		}
	}
	add(a, dirA, SegmentRef{Dir: dirB, Ref: b})
	add(b, dirB, SegmentRef{Dir: dirA, Ref: a})

	m.attributes.InsertLockedColumn(ConnectivityColumn)
	m.attributes.InsertLockedColumn(WeightedConnectivityColumn)
	conn := m.connectivityColumn()
	weighted, _ := m.attributes.ColumnIndex(WeightedConnectivityColumn)
	for _, i := range []int{a, b} {
		m.attributes.IncrValue(i, conn, 1)
		m.attributes.IncrValue(i, weighted, weight)
	}
}
