package metagraph

import (
	"fmt"

	"github.com/aukilabs/depthmap/comm"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pointmap"
	"github.com/aukilabs/depthmap/shapemap"
	"github.com/aukilabs/depthmap/shapes"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/google/uuid"
)

// State flags tell which sections a graph holds.
const (
	StatePointMaps    = 0x0002
	StateLineData     = 0x0004
	StateAngularGraph = 0x0010
	StateDataMaps     = 0x0020
	StateAxialLines   = 0x0040
	StateShapeGraphs  = 0x0100
	StateBuggy        = 0x8000

	// flags older files used for the graph of their single point map
	legacyStateGraph         = 0x0001
	legacyStateBoundaryGraph = 0x0080
)

// View classes tell which kind of map is shown in front.
const (
	ViewNone      = 0x00
	ViewVGA       = 0x01
	ViewBackVGA   = 0x02
	ViewAxial     = 0x04
	ViewBackAxial = 0x08
	ViewData      = 0x20
	ViewBackData  = 0x40
	ViewFront     = 0x25
)

const ErrTypeMapNotFound = "map_not_found"

// UnknownName names graphs and drawing files stored without a name.
const UnknownName = "<unknown>"

// MetaGraph is the content of a graph file: drawing files with their
// layers, point maps laid over the drawing, shape graphs and data maps.
type MetaGraph struct {
	// ID identifies the graph in logs and summaries. It is not stored.
	ID string

	Properties FileProperties
	ShowGrid   bool
	ShowText   bool

	name        string
	fileVersion int
	state       int
	viewClass   int
	region      geometry.Region

	drawingFiles []*DrawingFile
	pointMaps    []*pointmap.PointMap
	shapeGraphs  []*ShapeGraph
	dataMaps     []*shapemap.ShapeMap
	allLines     AllLineData

	displayedPointMap   int
	displayedShapeGraph int
	displayedDataMap    int

	lock comm.Lock

	currentFile int
}

func New(name string) *MetaGraph {
	if name == "" {
		name = UnknownName
	}
	return &MetaGraph{
		ID:                  uuid.NewString(),
		name:                name,
		fileVersion:         -1,
		displayedPointMap:   -1,
		displayedShapeGraph: -1,
		displayedDataMap:    -1,
		currentFile:         -1,
	}
}

func (g *MetaGraph) Name() string {
	return g.name
}

// FileVersion returns the version of the file the graph was last read from
// or written to, -1 when it never was.
func (g *MetaGraph) FileVersion() int {
	return g.fileVersion
}

// State returns the section flags of the graph.
func (g *MetaGraph) State() int {
	state := g.state &^ (StatePointMaps | StateLineData | StateDataMaps | StateShapeGraphs)
	if len(g.drawingFiles) != 0 {
		state |= StateLineData
	}
	if len(g.pointMaps) != 0 {
		state |= StatePointMaps
	}
	if len(g.shapeGraphs) != 0 {
		state |= StateShapeGraphs
	}
	if len(g.dataMaps) != 0 {
		state |= StateDataMaps
	}
	return state
}

func (g *MetaGraph) ViewClass() int {
	return g.viewClass
}

func (g *MetaGraph) SetViewClass(viewClass int) {
	g.viewClass = viewClass
}

// bringToFront shows view in front. The map class in front before moves to
// the back.
func (g *MetaGraph) bringToFront(view int) {
	front := g.viewClass & ViewFront
	if front == view {
		return
	}
	g.viewClass = view | front<<1
}

// Lock acquires the coarse lock held while the graph is analysed.
func (g *MetaGraph) Lock() {
	g.lock.Lock()
}

// TryLock acquires the coarse lock when it is free. Painters skip a frame
// when it is not.
func (g *MetaGraph) TryLock() bool {
	return g.lock.TryLock()
}

func (g *MetaGraph) Unlock() {
	g.lock.Unlock()
}

// Region returns the extent of the drawing.
func (g *MetaGraph) Region() geometry.Region {
	return g.region
}

// Lines returns the lines of every shown drawing layer. Point maps block
// their cells with them.
func (g *MetaGraph) Lines() []geometry.Line {
	var lines []geometry.Line
	for _, f := range g.drawingFiles {
		for _, l := range f.Layers {
			if l.Show() {
				lines = append(lines, l.Lines()...)
			}
		}
	}
	return lines
}

var _ pointmap.Drawing = (*MetaGraph)(nil)

// MakeViewportShapes lists the drawing shapes crossing r. The list is
// walked with FindNextShape and NextShape.
func (g *MetaGraph) MakeViewportShapes(r geometry.Region) {
	g.currentFile = -1
	for _, f := range g.drawingFiles {
		f.MakeViewportShapes(r)
	}
}

// FindNextShape advances to the next listed drawing shape, moving through
// the drawing files in order, and reports whether there is one.
func (g *MetaGraph) FindNextShape() bool {
	if g.currentFile < 0 {
		g.currentFile = 0
	}
	for ; g.currentFile < len(g.drawingFiles); g.currentFile++ {
		if g.drawingFiles[g.currentFile].FindNextShape() {
			return true
		}
	}
	return false
}

// NextShape returns the drawing shape FindNextShape stopped on with the
// indexes of its drawing file and layer.
func (g *MetaGraph) NextShape() (s shapes.Shape, file, layer int) {
	f := g.drawingFiles[g.currentFile]
	return f.NextShape(), g.currentFile, f.NextLayer()
}

func (g *MetaGraph) DrawingFiles() []*DrawingFile {
	return g.drawingFiles
}

// AddDrawingFile adds an empty drawing file.
func (g *MetaGraph) AddDrawingFile(name string) *DrawingFile {
	f := &DrawingFile{Name: name}
	g.drawingFiles = append(g.drawingFiles, f)
	return f
}

// RefreshRegion sets the region of each drawing file and of the graph to
// the extent of the layers holding shapes.
func (g *MetaGraph) RefreshRegion() {
	first := true
	for _, f := range g.drawingFiles {
		if !f.refreshRegion() {
			continue
		}
		if first {
			g.region = f.Region
			first = false
			continue
		}
		g.region = geometry.Union(g.region, f.Region)
	}
}

func (g *MetaGraph) PointMaps() []*pointmap.PointMap {
	return g.pointMaps
}

// AddPointMap adds a point map over the drawing and displays it in front. A number
// is appended to the name when another point map already has it.
func (g *MetaGraph) AddPointMap(name string) *pointmap.PointMap {
	if name == "" {
		name = pointmap.DefaultName
	}
	unique := name
	for counter := 1; g.pointMapNamed(unique); counter++ {
		unique = fmt.Sprintf("%s %d", name, counter)
	}

	m := pointmap.New(unique, g)
	g.pointMaps = append(g.pointMaps, m)
	g.displayedPointMap = len(g.pointMaps) - 1
	g.bringToFront(ViewVGA)
	return m
}

func (g *MetaGraph) pointMapNamed(name string) bool {
	for _, m := range g.pointMaps {
		if m.Name() == name {
			return true
		}
	}
	return false
}

// DisplayedPointMap returns the displayed point map, nil when there is
// none.
func (g *MetaGraph) DisplayedPointMap() *pointmap.PointMap {
	if g.displayedPointMap < 0 || g.displayedPointMap >= len(g.pointMaps) {
		return nil
	}
	return g.pointMaps[g.displayedPointMap]
}

func (g *MetaGraph) SetDisplayedPointMap(i int) error {
	if i < 0 || i >= len(g.pointMaps) {
		return mapNotFound("point map", i)
	}
	g.displayedPointMap = i
	return nil
}

func (g *MetaGraph) ShapeGraphs() []*ShapeGraph {
	return g.shapeGraphs
}

// AddShapeGraph adds an empty shape graph of the given type and displays
// it in front.
func (g *MetaGraph) AddShapeGraph(name string, t shapemap.MapType) *ShapeGraph {
	sg := &ShapeGraph{ShapeMap: shapemap.New(name, t)}
	g.shapeGraphs = append(g.shapeGraphs, sg)
	g.displayedShapeGraph = len(g.shapeGraphs) - 1
	g.bringToFront(ViewAxial)
	return sg
}

func (g *MetaGraph) DisplayedShapeGraph() *ShapeGraph {
	if g.displayedShapeGraph < 0 || g.displayedShapeGraph >= len(g.shapeGraphs) {
		return nil
	}
	return g.shapeGraphs[g.displayedShapeGraph]
}

func (g *MetaGraph) SetDisplayedShapeGraph(i int) error {
	if i < 0 || i >= len(g.shapeGraphs) {
		return mapNotFound("shape graph", i)
	}
	g.displayedShapeGraph = i
	return nil
}

// AllLineData returns the polygon connections and radial lines kept for
// the all-line map.
func (g *MetaGraph) AllLineData() AllLineData {
	return g.allLines
}

func (g *MetaGraph) DataMaps() []*shapemap.ShapeMap {
	return g.dataMaps
}

// AddDataMap adds an empty data map and displays it in front.
func (g *MetaGraph) AddDataMap(name string) *shapemap.ShapeMap {
	m := shapemap.New(name, shapemap.DataMap)
	g.dataMaps = append(g.dataMaps, m)
	g.displayedDataMap = len(g.dataMaps) - 1
	g.bringToFront(ViewData)
	return m
}

func (g *MetaGraph) DisplayedDataMap() *shapemap.ShapeMap {
	if g.displayedDataMap < 0 || g.displayedDataMap >= len(g.dataMaps) {
		return nil
	}
	return g.dataMaps[g.displayedDataMap]
}

func (g *MetaGraph) SetDisplayedDataMap(i int) error {
	if i < 0 || i >= len(g.dataMaps) {
		return mapNotFound("data map", i)
	}
	g.displayedDataMap = i
	return nil
}

func mapNotFound(kind string, i int) error {
	return errors.New(kind + " not found").
		WithType(ErrTypeMapNotFound).
		WithTag("index", i)
}
