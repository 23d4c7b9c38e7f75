package shapemap

import (
	"math"
	"slices"
	"sort"

	"github.com/aukilabs/depthmap/attributes"
	"github.com/aukilabs/depthmap/bsp"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pixel"
	"github.com/aukilabs/depthmap/shapes"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

const (
	ErrTypeNotClosed     = "shape_not_closed"
	ErrTypeShapeNotFound = "shape_not_found"
	ErrTypeNotEditable   = "map_not_editable"
)

// MapType tells what a shape map holds and how its graph is built.
type MapType int

const (
	EmptyMap   MapType = 0x0000
	DrawingMap MapType = 0x0001
	DataMap    MapType = 0x0002
	PointMap   MapType = 0x0004
	ConvexMap  MapType = 0x0008
	AllLineMap MapType = 0x0010
	AxialMap   MapType = 0x0020
	SegmentMap MapType = 0x0040
	PeshMap    MapType = 0x0080
	LineMap    MapType = 0x0070
)

func (t MapType) String() string {
	switch t {
	case EmptyMap:
		return "empty"
	case DrawingMap:
		return "drawing"
	case DataMap:
		return "data"
	case PointMap:
		return "point"
	case ConvexMap:
		return "convex"
	case AllLineMap:
		return "all-line"
	case AxialMap:
		return "axial"
	case SegmentMap:
		return "segment"
	case PeshMap:
		return "pesh"
	default:
		return "unknown"
	}
}

// Names of the columns maintained by the graph layer.
const (
	ConnectivityColumn         = "Connectivity"
	WeightedConnectivityColumn = "Weighted Connectivity"
	LineLengthColumn           = "Line Length"
)

const (
	// Relative tolerance of the map geometry.
	toleranceA = 1e-9

	// Relative tolerance of intersection tests between shapes.
	toleranceB = 1e-12

	minGridSize = 20
	maxGridSize = 32768

	// Shapes processed between two cancellation checks.
	progressInterval = 256
)

// ShapeMap is a layer of shapes indexed by a pixel grid. Shapes are ordered
// by key; a shape index is its position in that order and matches the index
// of its attribute row and of its connector.
type ShapeMap struct {
	pixel.Grid
	regionSet bool
	tolerance float64

	name     string
	mapType  MapType
	show     bool
	editable bool
	hasGraph bool
	objRef   int

	keys       []int
	shapes     []shapes.Shape
	attributes *attributes.Table
	pixels     []shapes.Bucket

	connectors []Connector
	links      []Pair
	unlinks    []Pair

	undo    []shapes.Event
	mapInfo *MapInfo

	bspTree  *bsp.Tree
	bspStale bool

	displayShapes []int
	current       int
	newShape      bool
}

// New returns an empty map. Line and convex maps carry a graph layer.
func New(name string, t MapType) *ShapeMap {
	m := &ShapeMap{
		name:       name,
		mapType:    t,
		show:       true,
		hasGraph:   t&(LineMap|ConvexMap) != 0,
		objRef:     -1,
		attributes: attributes.NewTable(name),
		current:    -1,
	}
	m.Grid = pixel.NewGrid(geometry.Region{}, 1, 1)
	m.pixels = make([]shapes.Bucket, 1)
	m.attributes.SetDisplayColumn(attributes.RefColumn, true)
	return m
}

func (m *ShapeMap) Name() string {
	return m.name
}

func (m *ShapeMap) SetName(name string) {
	m.name = name
}

func (m *ShapeMap) Type() MapType {
	return m.mapType
}

// SetType changes what the map holds. Files written before map types were
// stored tell the type apart from the map.
func (m *ShapeMap) SetType(t MapType) {
	m.mapType = t
	m.hasGraph = t&(LineMap|ConvexMap) != 0
}

func (m *ShapeMap) IsAxialMap() bool {
	return m.mapType == AxialMap || m.mapType == AllLineMap
}

func (m *ShapeMap) IsSegmentMap() bool {
	return m.mapType == SegmentMap
}

func (m *ShapeMap) Show() bool {
	return m.show
}

func (m *ShapeMap) SetShow(show bool) {
	m.show = show
}

func (m *ShapeMap) Editable() bool {
	return m.editable
}

func (m *ShapeMap) SetEditable(editable bool) {
	m.editable = editable
}

func (m *ShapeMap) HasGraph() bool {
	return m.hasGraph
}

func (m *ShapeMap) SetHasGraph(hasGraph bool) {
	m.hasGraph = hasGraph
}

func (m *ShapeMap) Attributes() *attributes.Table {
	return m.attributes
}

// Tolerance is the geometric tolerance derived from the map extent.
func (m *ShapeMap) Tolerance() float64 {
	return m.tolerance
}

func (m *ShapeMap) MapInfo() *MapInfo {
	return m.mapInfo
}

func (m *ShapeMap) SetMapInfo(info *MapInfo) {
	m.mapInfo = info
}

func (m *ShapeMap) ShapeCount() int {
	return len(m.shapes)
}

// Shape returns the shape at index i.
func (m *ShapeMap) Shape(i int) shapes.Shape {
	return m.shapes[i]
}

// Key returns the key of the shape at index i.
func (m *ShapeMap) Key(i int) int {
	return m.keys[i]
}

func (m *ShapeMap) Keys() []int {
	return m.keys
}

// Index returns the index of the shape with the given key.
func (m *ShapeMap) Index(key int) (int, bool) {
	i := sort.SearchInts(m.keys, key)
	return i, i < len(m.keys) && m.keys[i] == key
}

func (m *ShapeMap) ShapeByKey(key int) (shapes.Shape, bool) {
	i, ok := m.Index(key)
	if !ok {
		return shapes.Shape{}, false
	}
	return m.shapes[i], true
}

// NextKey returns the key the next created shape receives.
func (m *ShapeMap) NextKey() int {
	if len(m.keys) == 0 {
		return 0
	}
	return m.keys[len(m.keys)-1] + 1
}

// Init resizes the grid for about size shapes and grows the region to cover
// r. Every shape is indexed again.
func (m *ShapeMap) Init(size int, r geometry.Region) {
	n := min(max(int(math.Sqrt(float64(size))), minGridSize), maxGridSize)
	if m.regionSet {
		r = geometry.Union(m.Region(), r)
	}
	m.InitGrid(r, n, n)
}

// InitGrid replaces the grid with rows by cols cells over r and indexes
// every shape again.
func (m *ShapeMap) InitGrid(r geometry.Region, rows, cols int) {
	m.Grid = pixel.NewGrid(r, rows, cols)
	m.regionSet = true
	m.tolerance = math.Max(r.Width(), r.Height()) * toleranceA
	m.pixels = make([]shapes.Bucket, m.Rows()*m.Cols())
	m.displayShapes = nil

	for i := range m.shapes {
		m.makePolyPixels(i)
	}
}

func (m *ShapeMap) fits(r geometry.Region) bool {
	return m.regionSet && m.Region().ContainsTouch(r.BottomLeft) && m.Region().ContainsTouch(r.TopRight)
}

// insertShape stores s under key and indexes it, growing the grid when s
// falls outside. It returns the shape index.
func (m *ShapeMap) insertShape(key int, s shapes.Shape) int {
	bb := s.BoundingBox()
	size := len(m.shapes)

	i := sort.SearchInts(m.keys, key)
	m.keys = slices.Insert(m.keys, i, key)
	m.shapes = slices.Insert(m.shapes, i, s)
	if m.hasGraph && i < len(m.connectors) {
		m.insertConnector(i)
	}

	if m.fits(bb) {
		m.makePolyPixels(i)
	} else {
		m.Init(size, bb)
	}
	m.geometryChanged()
	return i
}

// deleteShape drops the shape at index i from the shape list only.
func (m *ShapeMap) deleteShape(i int) {
	m.keys = slices.Delete(m.keys, i, i+1)
	m.shapes = slices.Delete(m.shapes, i, i+1)
	m.geometryChanged()
}

func (m *ShapeMap) geometryChanged() {
	m.bspStale = true
	m.newShape = true
}

// addShape inserts s and its attribute row filled with attrs, a map of
// column index to value.
func (m *ShapeMap) addShape(key int, s shapes.Shape, attrs map[int]float32) int {
	m.insertShape(key, s)
	row := m.attributes.InsertRow(key)
	for col, v := range attrs {
		m.attributes.SetValue(row, col, v)
	}
	return key
}

// MakePointShape adds a point and returns its key.
func (m *ShapeMap) MakePointShape(p geometry.Point, attrs map[int]float32) int {
	return m.addShape(m.NextKey(), shapes.NewPoint(p), attrs)
}

// MakeLineShape adds a line and returns its key.
func (m *ShapeMap) MakeLineShape(l geometry.Line, attrs map[int]float32) int {
	return m.addShape(m.NextKey(), shapes.NewLine(l), attrs)
}

// DrawLineShape adds a line as an edit: the map must be editable, the line
// is connected into the graph and the creation is recorded for undo.
func (m *ShapeMap) DrawLineShape(l geometry.Line) (int, error) {
	if !m.editable {
		return -1, errors.New("map is not editable").
			WithType(ErrTypeNotEditable).
			WithTag("map", m.name)
	}

	key := m.addShape(m.NextKey(), shapes.NewLine(l), nil)
	if m.hasGraph {
		i, _ := m.Index(key)
		m.ConnectIntersected(i, m.IsAxialMap())
	}
	m.undo = append(m.undo, shapes.Event{Action: shapes.ActionCreated, Key: key})
	m.refreshDisplay()
	return key, nil
}

// MakePolyShape adds a polyline, or a polygon unless open is set. Fewer
// than three points make a point or a line instead. It returns -1 for an
// empty point list.
func (m *ShapeMap) MakePolyShape(points []geometry.Point, open bool, attrs map[int]float32) int {
	return m.makePolyShape(m.NextKey(), points, open, attrs)
}

func (m *ShapeMap) makePolyShape(key int, points []geometry.Point, open bool, attrs map[int]float32) int {
	switch len(points) {
	case 0:
		return -1
	case 1:
		return m.addShape(key, shapes.NewPoint(points[0]), attrs)
	case 2:
		return m.addShape(key, shapes.NewLine(geometry.NewLine(points[0], points[1])), attrs)
	}
	return m.addShape(key, shapes.NewPoly(points, !open), attrs)
}

// MakeShape adds a copy of s under key, or under the next key when key is
// -1. It returns -1 when key is already used.
func (m *ShapeMap) MakeShape(s shapes.Shape, key int, attrs map[int]float32) int {
	if key == -1 {
		key = m.NextKey()
	} else if _, ok := m.Index(key); ok {
		return -1
	}
	return m.addShape(key, s.Clone(), attrs)
}

// ConvertPointsToPolys replaces point shapes, or only the selected ones,
// with octagons of the given radius.
func (m *ShapeMap) ConvertPointsToPolys(radius float64, selectedOnly bool) bool {
	var region geometry.Region
	changed := false

	for i, s := range m.shapes {
		if selectedOnly && !m.attributes.IsSelected(i) {
			continue
		}
		if !s.IsPoint() {
			continue
		}

		m.removePolyPixels(i)
		p := s.Point()
		if !changed {
			region = geometry.Region{BottomLeft: p, TopRight: p}
		}
		changed = true

		points := make([]geometry.Point, 0, 8)
		for k := 0; k < 8; k++ {
			angle := float64(k) * math.Pi / 4
			v := geometry.Point{X: p.X + radius*math.Cos(angle), Y: p.Y + radius*math.Sin(angle)}
			region.Encompass(v)
			points = append(points, v)
		}
		m.shapes[i] = shapes.NewPoly(points, true)
	}

	if changed {
		m.Init(len(m.shapes), region)
		m.geometryChanged()
	}
	return changed
}

// SetDisplayedAttribute makes col the colour mapped column.
func (m *ShapeMap) SetDisplayedAttribute(col int) {
	m.attributes.SetDisplayColumn(col, true)
}

func (m *ShapeMap) DisplayedAttribute() int {
	return m.attributes.DisplayColumn()
}

// refreshDisplay ranks the rows again by the displayed column.
func (m *ShapeMap) refreshDisplay() {
	m.attributes.SetDisplayColumn(m.attributes.DisplayColumn(), true)
}

// ClearAll drops every shape, the graph and the undo log. Map info is kept.
func (m *ShapeMap) ClearAll() {
	m.keys = nil
	m.shapes = nil
	m.undo = nil
	m.connectors = nil
	m.links = nil
	m.unlinks = nil
	m.attributes = attributes.NewTable(m.name)
	m.attributes.SetDisplayColumn(attributes.RefColumn, true)
	m.bspTree = nil
	m.regionSet = false
	m.objRef = -1
	m.Grid = pixel.NewGrid(geometry.Region{}, 1, 1)
	m.pixels = make([]shapes.Bucket, 1)
	m.displayShapes = nil
	m.geometryChanged()
}

// Lines returns every line of the map: lines as they are and the edges of
// polylines and polygons. Points give no line.
func (m *ShapeMap) Lines() []geometry.Line {
	var lines []geometry.Line
	for _, s := range m.shapes {
		switch {
		case s.IsLine():
			lines = append(lines, s.Line())
		case s.IsPolyLine(), s.IsPolygon():
			n := s.PointCount() - 1
			if s.IsPolygon() {
				n++
			}
			for k := 0; k < n; k++ {
				lines = append(lines, s.Segment(k))
			}
		}
	}
	return lines
}
