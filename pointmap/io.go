package pointmap

import (
	"math"

	"github.com/aukilabs/depthmap/attributes"
	"github.com/aukilabs/depthmap/format"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pixel"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

type mapLayout struct {
	name            bool
	attributesTable bool
	gridConnections bool
	locations       bool
	dataObjects     bool
	boundaryNodes   bool
	processedFlags  bool
	node            nodeLayout
}

// mapLayoutFor derives the layout of a point map record from the version
// that wrote it.
func mapLayoutFor(version int) mapLayout {
	return mapLayout{
		name:            version >= format.VersionPointMapNames,
		attributesTable: version >= format.VersionAttributesTable,
		gridConnections: version >= format.VersionGridConnections,
		locations:       version >= format.VersionPointLocations,
		dataObjects:     version < format.VersionShapeMaps,
		boundaryNodes:   version >= format.VersionBoundaryGraph && version < format.VersionNewBoundaryGraph,
		processedFlags:  version >= format.VersionPointMaps,
		node:            nodeLayoutFor(version),
	}
}

// OldestVersion is the oldest version whose point maps can be read. Older
// files stored their visibility bins uncompressed.
const OldestVersion = format.VersionFileCompression

// Read replaces the map with one stored at the given schema version. The
// drawing is kept. Files older than attribute tables have their per point
// records converted into columns.
func (m *PointMap) Read(r *format.Reader, version int) error {
	if version < OldestVersion || version > format.Current {
		return errors.New("point map version not supported").
			WithType(format.ErrTypeUnsupportedVersion).
			WithTag("version", version)
	}
	layout := mapLayoutFor(version)

	name := DefaultName
	if layout.name {
		name = r.String()
	}
	spacing := r.Float64()
	rows := r.Int()
	cols := r.Int()
	r.Int() // point count, recounted below
	bottomLeft := geometry.ReadPoint(r)
	if err := r.Err(); err != nil {
		return m.readFailed(version, err)
	}
	if rows <= 0 || cols <= 0 || rows > math.MaxInt16 || cols > math.MaxInt16 || !(spacing > 0) {
		return m.readFailed(version, errors.New("invalid point map grid").
			WithType(format.ErrTypeCorrupted).
			WithTag("rows", rows).
			WithTag("cols", cols).
			WithTag("spacing", spacing))
	}

	table := attributes.NewTable(name)
	displayed := attributes.RefColumn
	var which LegacyAttributeSet
	slotCount := 0
	if layout.attributesTable {
		displayed = r.Int()
		if err := table.Read(r, version); err != nil {
			return m.readFailed(version, err)
		}
	} else {
		which = LegacyAttributeSet(r.Int())
		slotCount = r.Count()
	}

	m.name = name
	m.spacing = spacing
	m.bottomLeft = bottomLeft
	m.layout(rows, cols)
	m.points = make([]Point, rows*cols)
	m.attributes = table
	m.mergeLines = nil
	m.selection = make(map[pixel.Ref]struct{})
	m.selBounds = geometry.Region{}

	var legacy map[pixel.Ref]LegacyRecord
	if !layout.attributesTable {
		legacy = make(map[pixel.Ref]LegacyRecord)
	}

	for i := range m.points {
		p := m.refAt(i)
		pt := &m.points[i]
		record, ok := readPoint(r, pt, layout, slotCount)
		if err := r.Err(); err != nil {
			m.initialised = false
			return m.readFailed(version, err)
		}
		if !layout.locations {
			pt.location = m.Depixelate(p)
		}
		if ok {
			legacy[p] = record
		}
	}

	m.processed = false
	m.boundaryGraph = false
	if layout.processedFlags {
		m.processed = r.Bool()
		m.boundaryGraph = r.Bool()
	}
	if err := r.Err(); err != nil {
		m.initialised = false
		return m.readFailed(version, err)
	}

	m.pointCount = 0
	for i := range m.points {
		if m.points[i].IsFilled() {
			m.pointCount++
		}
	}
	m.undoCounter = 0
	m.initialised = true
	m.blockedLines = false
	m.rebuildMergeLines()

	if !layout.attributesTable && which != 0 {
		m.ConvertAttributes(which, legacy)
		displayed = 0
		logs.WithTag("map", m.name).
			WithTag("version", version).
			WithTag("records", len(legacy)).
			Info("legacy point attributes converted")
	}
	if !layout.gridConnections {
		m.addGridConnections()
	}

	if displayed != attributes.RefColumn && (displayed < 0 || displayed >= m.attributes.ColumnCount()) {
		displayed = attributes.RefColumn
	}
	m.attributes.SetDisplayColumn(displayed, true)
	return nil
}

func (m *PointMap) readFailed(version int, err error) error {
	return errors.New("reading point map failed").
		WithType(errors.Type(err)).
		WithTag("map", m.name).
		WithTag("version", version).
		Wrap(err)
}

// readPoint decodes one point record. Records older than attribute tables
// carry the raw attributes of graph points, returned with ok set.
func readPoint(r *format.Reader, pt *Point, layout mapLayout, slotCount int) (record LegacyRecord, ok bool) {
	*pt = newPoint(geometry.Point{})
	pt.state = State(r.Int32()) & storedStates
	pt.block = r.Int32()
	r.Int32()
	if layout.gridConnections {
		pt.gridConnections = r.Byte()
	}
	pt.merge = readRef(r)
	if !pt.merge.IsEmpty() {
		pt.state |= Merged
	} else {
		pt.state &^= Merged
	}

	if r.Bool() {
		pt.node = readNode(r, layout.node)
		if !layout.attributesTable {
			record, ok = readLegacyRecord(r, slotCount), true
		}
	}
	if layout.locations {
		pt.location = geometry.ReadPoint(r)
	}
	if layout.dataObjects {
		objects := r.Length()
		for i := 0; i < objects && r.Err() == nil; i++ {
			r.Int()
			r.Int()
		}
	}
	if layout.boundaryNodes {
		r.Ints()
	}
	return record, ok
}

func readLegacyRecord(r *format.Reader, slotCount int) LegacyRecord {
	r.Int()     // position
	r.Int()     // reference
	r.Float64() // origin
	r.Float64()
	r.Float64()
	record := make(LegacyRecord, slotCount)
	for i := range record {
		record[i] = r.Uint32()
	}
	return record
}

// neighbours of a point in the order of its grid connection bits
var gridNeighbours = [8]pixel.Ref{
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
}

// addGridConnections derives the grid connections of graph points from the
// bins of their node, for files that did not store them.
func (m *PointMap) addGridConnections() {
	for i := range m.points {
		pt := &m.points[i]
		if pt.node == nil {
			continue
		}
		p := m.refAt(i)
		pt.gridConnections = 0
		for dir, offset := range gridNeighbours {
			if pt.node.Bins[dir*4].Contains(p.Add(offset)) {
				pt.gridConnections |= 1 << dir
			}
		}
	}
}

// Write stores the map at the current schema version.
func (m *PointMap) Write(w *format.Writer) error {
	if !m.initialised {
		return m.noGrid()
	}

	w.String(m.name)
	w.Float64(m.spacing)
	w.Int(m.Rows())
	w.Int(m.Cols())
	w.Int(m.pointCount)
	geometry.WritePoint(w, m.bottomLeft)

	w.Int(m.attributes.DisplayColumn())
	if err := m.attributes.Write(w); err != nil {
		return m.writeFailed(err)
	}

	for i := range m.points {
		writePoint(w, &m.points[i])
	}
	w.Bool(m.processed)
	w.Bool(m.boundaryGraph)

	if err := w.Err(); err != nil {
		return m.writeFailed(err)
	}
	return nil
}

func (m *PointMap) writeFailed(err error) error {
	return errors.New("writing point map failed").
		WithType(errors.Type(err)).
		WithTag("map", m.name).
		Wrap(err)
}

func writePoint(w *format.Writer, pt *Point) {
	w.Int32(int32(pt.state & storedStates))
	w.Int32(pt.block)
	w.Int32(0)
	w.Byte(pt.gridConnections)
	writeRef(w, pt.merge)
	w.Bool(pt.node != nil)
	if pt.node != nil {
		writeNode(w, pt.node)
	}
	geometry.WritePoint(w, pt.location)
}
