package shapemap

import (
	"slices"
	"sort"

	"github.com/aukilabs/depthmap/attributes"
	"github.com/aukilabs/depthmap/format"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/shapes"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// MapInfo is the GIS header of a map imported from a MapInfo file.
type MapInfo struct {
	Version   string
	Charset   string
	Delimiter byte
	Index     string
	CoordSys  string
	Bounds    string
}

type mapLayout struct {
	mapType bool
}

var mapDecoders = format.DecoderTable[mapLayout]{
	{MinVersion: format.VersionShapeMaps, MaxVersion: format.VersionMapTypes - 1, Layout: mapLayout{}},
	{MinVersion: format.VersionMapTypes, MaxVersion: format.Current, Layout: mapLayout{
		mapType: true,
	}},
}

const (
	mapInfoMarker   = 'm'
	noMapInfoMarker = 'x'
)

// Read replaces the map with one stored at the given schema version.
func (m *ShapeMap) Read(r *format.Reader, version int) error {
	layout, ok := mapDecoders.Lookup(version)
	if !ok {
		return errors.New("shape map version not supported").
			WithType(format.ErrTypeUnsupportedVersion).
			WithTag("version", version)
	}

	m.ClearAll()
	m.name = r.String()
	m.mapType = EmptyMap
	if layout.mapType {
		m.mapType = MapType(r.Int())
	}
	m.hasGraph = m.mapType&(LineMap|ConvexMap) != 0
	m.show = r.Bool()
	m.editable = r.Bool()

	region := geometry.ReadRegion(r)
	rows := r.Int()
	cols := r.Int()
	m.objRef = r.Int()
	r.Int()

	count := r.Count()
	for i := 0; i < count && r.Err() == nil; i++ {
		key := r.Int()
		s, err := shapes.Read(r, version)
		if err != nil {
			return m.readFailed(version, err)
		}
		at := sort.SearchInts(m.keys, key)
		if at < len(m.keys) && m.keys[at] == key {
			r.Fail(errors.New("duplicate shape key").
				WithType(format.ErrTypeCorrupted).
				WithTag("key", key))
			break
		}
		m.keys = slices.Insert(m.keys, at, key)
		m.shapes = slices.Insert(m.shapes, at, s)
	}

	// Objects are no longer used but still take room in old files.
	objects := r.Count()
	for i := 0; i < objects && r.Err() == nil; i++ {
		r.Int()
		r.Ints()
	}
	if err := r.Err(); err != nil {
		return m.readFailed(version, err)
	}

	m.attributes = attributes.NewTable(m.name)
	if err := m.attributes.Read(r, version); err != nil {
		return m.readFailed(version, err)
	}
	displayed := r.Int()

	connectors := r.Count()
	m.connectors = nil
	for i := 0; i < connectors && r.Err() == nil; i++ {
		m.connectors = append(m.connectors, readConnector(r))
	}
	m.links = readPairs(r)
	m.unlinks = readPairs(r)

	m.mapInfo = nil
	if marker, ok := r.Marker(); ok && marker == mapInfoMarker {
		m.mapInfo = readMapInfo(r)
	}
	if err := r.Err(); err != nil {
		return m.readFailed(version, err)
	}

	m.InitGrid(region, rows, cols)
	if displayed != attributes.RefColumn && (displayed < 0 || displayed >= m.attributes.ColumnCount()) {
		displayed = attributes.RefColumn
	}
	m.attributes.SetDisplayColumn(displayed, true)
	m.geometryChanged()
	return nil
}

func (m *ShapeMap) readFailed(version int, err error) error {
	return errors.New("reading shape map failed").
		WithType(errors.Type(err)).
		WithTag("map", m.name).
		WithTag("version", version).
		Wrap(err)
}

// Write stores the map at the current schema version.
func (m *ShapeMap) Write(w *format.Writer) error {
	w.String(m.name)
	w.Int(int(m.mapType))
	w.Bool(m.show)
	w.Bool(m.editable)

	geometry.WriteRegion(w, m.Region())
	w.Int(m.Rows())
	w.Int(m.Cols())
	w.Int(m.objRef)
	if len(m.keys) == 0 {
		w.Int(0)
	} else {
		w.Int(m.keys[len(m.keys)-1])
	}

	w.Int(len(m.shapes))
	for i, s := range m.shapes {
		w.Int(m.keys[i])
		if err := shapes.Write(w, s); err != nil {
			return m.writeFailed(err)
		}
	}
	w.Int(0)

	if err := m.attributes.Write(w); err != nil {
		return m.writeFailed(err)
	}
	w.Int(m.attributes.DisplayColumn())

	w.Int(len(m.connectors))
	for _, c := range m.connectors {
		writeConnector(w, c)
	}
	writePairs(w, m.links)
	writePairs(w, m.unlinks)

	if m.mapInfo != nil {
		w.Byte(mapInfoMarker)
		writeMapInfo(w, m.mapInfo)
	} else {
		w.Byte(noMapInfoMarker)
	}

	if err := w.Err(); err != nil {
		return m.writeFailed(err)
	}
	return nil
}

func (m *ShapeMap) writeFailed(err error) error {
	return errors.New("writing shape map failed").
		WithType(errors.Type(err)).
		WithTag("map", m.name).
		Wrap(err)
}

func readConnector(r *format.Reader) Connector {
	c := Connector{Connections: r.Ints()}
	if len(c.Connections) == 0 {
		c.Connections = nil
	}
	c.SegmentAxialRef = r.Int()
	c.Forward = readSegmentLinks(r)
	c.Back = readSegmentLinks(r)
	return c
}

func writeConnector(w *format.Writer, c Connector) {
	w.Ints(c.Connections)
	w.Int(c.SegmentAxialRef)
	writeSegmentLinks(w, c.Forward)
	writeSegmentLinks(w, c.Back)
}

func readSegmentLinks(r *format.Reader) SegmentLinks {
	n := r.Length()
	var links SegmentLinks
	for i := 0; i < n && r.Err() == nil; i++ {
		dir := int8(r.Byte())
		r.Byte()
		r.Byte()
		r.Byte()
		ref := r.Int()
		links = append(links, SegmentLink{
			SegmentRef: SegmentRef{Dir: dir, Ref: ref},
			Weight:     r.Float32(),
		})
	}
	return links
}

func writeSegmentLinks(w *format.Writer, links SegmentLinks) {
	w.Uint32(uint32(len(links)))
	for _, l := range links {
		w.Byte(byte(l.Dir))
		w.Raw([]byte{0, 0, 0})
		w.Int(l.Ref)
		w.Float32(l.Weight)
	}
}

func readPairs(r *format.Reader) []Pair {
	n := r.Length()
	var pairs []Pair
	for i := 0; i < n && r.Err() == nil; i++ {
		a := r.Int()
		pairs = append(pairs, NewPair(a, r.Int()))
	}
	return pairs
}

func writePairs(w *format.Writer, pairs []Pair) {
	w.Uint32(uint32(len(pairs)))
	for _, p := range pairs {
		w.Int(p.A)
		w.Int(p.B)
	}
}

func readMapInfo(r *format.Reader) *MapInfo {
	return &MapInfo{
		Version:   r.String(),
		Charset:   r.String(),
		Delimiter: r.Byte(),
		Index:     r.String(),
		CoordSys:  r.String(),
		Bounds:    r.String(),
	}
}

func writeMapInfo(w *format.Writer, info *MapInfo) {
	w.String(info.Version)
	w.String(info.Charset)
	w.Byte(info.Delimiter)
	w.String(info.Index)
	w.String(info.CoordSys)
	w.String(info.Bounds)
}
