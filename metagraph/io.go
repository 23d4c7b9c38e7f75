package metagraph

import (
	"bufio"
	"io"
	"os"
	"slices"
	"time"

	"github.com/aukilabs/depthmap/format"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pointmap"
	"github.com/aukilabs/depthmap/shapemap"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

const magic = "grf"

// Section markers. Properties and shape graphs share a marker and are told
// apart by their position.
const (
	markerProperties  = 'x'
	markerVirtualMem  = 'v'
	markerLayers      = 'l'
	markerPointMaps   = 'p'
	markerGraph       = 'g'
	markerAngular     = 'a'
	markerDataLayers  = 'd'
	markerShapeGraphs = 'x'
	markerDataMaps    = 's'
)

type headerLayout struct {
	state     bool
	viewClass bool
	gridText  bool
}

// Version 130 was a trial layout and is left out.
var headerDecoders = format.DecoderTable[headerLayout]{
	{MinVersion: format.Oldest, MaxVersion: format.VersionStateRecorded - 1, Layout: headerLayout{}},
	{MinVersion: format.VersionStateRecorded, MaxVersion: format.VersionViewClass - 1, Layout: headerLayout{
		state: true,
	}},
	{MinVersion: format.VersionViewClass + 1, MaxVersion: format.VersionGridTextInfo - 1, Layout: headerLayout{
		state:     true,
		viewClass: true,
	}},
	{MinVersion: format.VersionGridTextInfo, MaxVersion: format.Current, Layout: headerLayout{
		state:     true,
		viewClass: true,
		gridText:  true,
	}},
}

// Versions known to have been written with damaged records.
var buggyVersions = []int{format.VersionNGraphIntroduced, format.VersionSegmentMaps}

// ReadFile reads the graph stored at path.
func (g *MetaGraph) ReadFile(path string) (Result, error) {
	if path == "" {
		g.reset()
		err := errors.New("no graph file given").WithType(ErrTypeNotAGraph)
		instrumentRead(time.Now(), NotAGraph)
		return NotAGraph, err
	}

	f, err := os.Open(path)
	if err != nil {
		g.reset()
		err = errors.New("opening graph file failed").
			WithType(ErrTypeDiskError).
			WithTag("path", path).
			Wrap(err)
		instrumentRead(time.Now(), DiskError)
		return DiskError, err
	}
	defer f.Close()

	return g.Read(bufio.NewReader(f))
}

// Read replaces the graph with the one stored in src. Files older than the
// current version are converted and reported with WarnConverted. When the
// result is a failure the graph is left empty.
func (g *MetaGraph) Read(src io.Reader) (Result, error) {
	start := time.Now()
	res, err := g.read(format.NewReader(src))
	if err != nil {
		version := g.fileVersion
		res = ResultOf(err)
		g.reset()
		g.fileVersion = version
	}
	instrumentRead(start, res)

	logs.WithTag("graph", g.ID).
		WithTag("name", g.name).
		WithTag("version", g.fileVersion).
		WithTag("result", res.String()).
		Info("graph read")
	return res, err
}

func (g *MetaGraph) read(r *format.Reader) (Result, error) {
	g.reset()

	header := r.Bytes(len(magic))
	if r.Err() != nil || string(header) != magic {
		return NotAGraph, errors.New("missing graph header").WithType(ErrTypeNotAGraph)
	}

	version := r.Int()
	if err := r.Err(); err != nil {
		return DamagedFile, damaged(err)
	}
	g.fileVersion = version
	if version > format.Current {
		return NewerVersion, errors.New("graph written by a newer version").
			WithType(ErrTypeNewerVersion).
			WithTag("version", version)
	}
	layout, ok := headerDecoders.Lookup(version)
	if !ok {
		return DeprecatedVersion, deprecated("header", version)
	}

	state := 0
	if layout.state {
		state = r.Int()
	}
	viewClass := ViewNone
	if layout.viewClass {
		viewClass = r.Int()
	}
	if layout.gridText {
		g.ShowGrid = r.Bool()
		g.ShowText = r.Bool()
	}
	if err := r.Err(); err != nil {
		return DamagedFile, damaged(err)
	}

	g.Properties = unknownProperties()
	marker, ok := r.Marker()
	if ok && marker == markerProperties {
		g.Properties = readProperties(r)
		marker, ok = r.Marker()
	}

	if ok && marker == markerVirtualMem {
		return DeprecatedVersion, deprecated("virtual memory", version)
	}

	if ok && marker == markerLayers {
		if err := g.readLayers(r, version); err != nil {
			return DamagedFile, err
		}
		marker, ok = r.Marker()
	}

	if ok && marker == markerPointMaps {
		if err := g.readPointMaps(r, version, state); err != nil {
			return DamagedFile, err
		}
		state &^= legacyStateGraph | legacyStateBoundaryGraph
		marker, ok = r.Marker()
	}

	if ok && marker == markerGraph {
		if n := len(g.pointMaps); n != 0 {
			last := g.pointMaps[n-1]
			last.SetProcessed(true, last.IsBoundaryGraph())
		}
		marker, ok = r.Marker()
	}

	if ok && marker == markerAngular {
		state |= StateAngularGraph
		marker, ok = r.Marker()
	}

	if ok && marker == markerDataLayers {
		return DeprecatedVersion, deprecated("data layers", version)
	}

	if ok && marker == markerShapeGraphs {
		if err := g.readShapeGraphs(r, version); err != nil {
			return DamagedFile, err
		}
		marker, ok = r.Marker()
	}

	if ok && marker == markerDataMaps {
		if err := g.readDataMaps(r, version); err != nil {
			return DamagedFile, err
		}
		marker, ok = r.Marker()
	}

	if err := r.Err(); err != nil {
		return DamagedFile, damaged(err)
	}
	if ok {
		logs.WithTag("graph", g.ID).
			WithTag("marker", string(rune(marker))).
			Warn(errors.New("unread graph section left at the end of the file").
				WithType(ErrTypeDamagedFile))
	}

	if version < format.VersionViewClass {
		viewClass = ViewNone
		if len(g.pointMaps) != 0 {
			viewClass = ViewVGA
		}
	}
	g.state = state
	g.viewClass = viewClass

	switch {
	case slices.Contains(buggyVersions, version):
		g.state |= StateBuggy
		return WarnBuggyVersion, nil
	case version < format.Current:
		return WarnConverted, nil
	default:
		return OK, nil
	}
}

func damaged(err error) error {
	if errors.Type(err) == ErrTypeDeprecatedVersion {
		return err
	}
	return errors.New("graph file damaged").
		WithType(ErrTypeDamagedFile).
		Wrap(err)
}

func (g *MetaGraph) readLayers(r *format.Reader, version int) error {
	if version < format.VersionDrawingShapes {
		return deprecated("drawing layers", version)
	}

	g.name = r.String()
	g.region = geometry.ReadRegion(r)
	count := r.Count()
	if err := r.Err(); err != nil {
		return damaged(err)
	}
	if g.name == "" {
		g.name = UnknownName
	}

	for i := 0; i < count; i++ {
		f, err := readDrawingFile(r, version)
		if err != nil {
			return damaged(err)
		}
		g.drawingFiles = append(g.drawingFiles, f)
	}
	return nil
}

func (g *MetaGraph) readPointMaps(r *format.Reader, version, state int) error {
	if version < pointmap.OldestVersion {
		return deprecated("point maps", version)
	}

	if version < format.VersionPointMaps {
		m := pointmap.New("", g)
		if err := m.Read(r, version); err != nil {
			return damaged(err)
		}
		if state&(legacyStateGraph|legacyStateBoundaryGraph) != 0 {
			m.SetProcessed(state&legacyStateGraph != 0, state&legacyStateBoundaryGraph != 0)
		}
		g.pointMaps = append(g.pointMaps, m)
		g.displayedPointMap = 0
		return nil
	}

	g.displayedPointMap = r.Int()
	count := r.Count()
	if err := r.Err(); err != nil {
		return damaged(err)
	}
	for i := 0; i < count; i++ {
		m := pointmap.New("", g)
		if err := m.Read(r, version); err != nil {
			return damaged(err)
		}
		g.pointMaps = append(g.pointMaps, m)
	}
	return nil
}

// skipNameTable skips the map name lookup older files stored before their
// maps. It may be damaged and is rebuilt from the maps.
func skipNameTable(r *format.Reader, version, count int) {
	if version >= format.VersionNoShapeMapNameTable {
		return
	}
	for i := 0; i < count && r.Err() == nil; i++ {
		_ = r.String()
		r.Int()
	}
}

func (g *MetaGraph) readShapeGraphs(r *format.Reader, version int) error {
	if version < format.VersionAxialShapes {
		return deprecated("shape graphs", version)
	}

	g.displayedShapeGraph = r.Int()
	count := r.Length()
	skipNameTable(r, version, count)
	if err := r.Err(); err != nil {
		return damaged(err)
	}

	for i := 0; i < count; i++ {
		sg, err := readShapeGraph(r, version)
		if err != nil {
			return damaged(shapeGraphFailed(i, err))
		}
		g.shapeGraphs = append(g.shapeGraphs, sg)
	}

	g.allLines = readAllLineData(r)
	if err := r.Err(); err != nil {
		return damaged(err)
	}
	return nil
}

func (g *MetaGraph) readDataMaps(r *format.Reader, version int) error {
	if version < format.VersionShapeMaps {
		return deprecated("data maps", version)
	}

	g.displayedDataMap = r.Int()
	count := r.Length()
	skipNameTable(r, version, count)
	if err := r.Err(); err != nil {
		return damaged(err)
	}

	for i := 0; i < count; i++ {
		m := shapemap.New("", shapemap.DataMap)
		if err := m.Read(r, version); err != nil {
			return damaged(err)
		}
		if m.Type() == shapemap.EmptyMap {
			m.SetType(shapemap.DataMap)
		}
		g.dataMaps = append(g.dataMaps, m)
	}
	return nil
}

// WriteFile stores the graph at path at the current version.
func (g *MetaGraph) WriteFile(path string) error {
	return g.writeFile(path, false)
}

// WriteDisplayedFile stores the map in front at path, as WriteDisplayed
// does.
func (g *MetaGraph) WriteDisplayedFile(path string) error {
	return g.writeFile(path, true)
}

func (g *MetaGraph) writeFile(path string, displayedOnly bool) error {
	f, err := os.Create(path)
	if err != nil {
		err = errors.New("creating graph file failed").
			WithType(ErrTypeDiskError).
			WithTag("path", path).
			Wrap(err)
		instrumentWrite(err)
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := g.write(w, displayedOnly); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		err = errors.New("flushing graph file failed").
			WithType(ErrTypeDiskError).
			WithTag("path", path).
			Wrap(err)
		instrumentWrite(err)
		return err
	}
	return f.Close()
}

// Write stores the graph in dst at the current version.
func (g *MetaGraph) Write(dst io.Writer) error {
	return g.write(dst, false)
}

// WriteDisplayed stores only the map in front, picked by the view class:
// the displayed point map, shape graph or data map. Drawing layers are left
// out.
func (g *MetaGraph) WriteDisplayed(dst io.Writer) error {
	return g.write(dst, true)
}

func (g *MetaGraph) write(dst io.Writer, displayedOnly bool) error {
	err := g.encode(format.NewWriter(dst), displayedOnly)
	if err != nil {
		err = errors.New("writing graph failed").
			WithType(errors.Type(err)).
			WithTag("graph", g.ID).
			Wrap(err)
	}
	instrumentWrite(err)
	if err != nil {
		return err
	}

	g.fileVersion = format.Current
	logs.WithTag("graph", g.ID).
		WithTag("name", g.name).
		WithTag("displayed_only", displayedOnly).
		Info("graph written")
	return nil
}

func (g *MetaGraph) encode(w *format.Writer, displayedOnly bool) error {
	state, viewClass := g.State(), g.viewClass
	if displayedOnly {
		var err error
		if state, viewClass, err = g.displayedState(); err != nil {
			return err
		}
	}

	w.Raw([]byte(magic))
	w.Int(format.Current)
	w.Int(state)
	w.Int(viewClass)
	w.Bool(g.ShowGrid)
	w.Bool(g.ShowText)

	w.Byte(markerProperties)
	writeProperties(w, g.Properties)

	if state&StateLineData != 0 {
		w.Byte(markerLayers)
		w.String(g.name)
		geometry.WriteRegion(w, g.region)
		w.Int(len(g.drawingFiles))
		for _, f := range g.drawingFiles {
			if err := f.write(w); err != nil {
				return err
			}
		}
	}

	if state&StatePointMaps != 0 {
		maps, displayed := g.pointMaps, g.displayedPointMap
		if displayedOnly {
			maps, displayed = []*pointmap.PointMap{g.DisplayedPointMap()}, 0
		}
		w.Byte(markerPointMaps)
		w.Int(displayed)
		w.Int(len(maps))
		for _, m := range maps {
			if err := m.Write(w); err != nil {
				return err
			}
		}
	}

	if state&StateShapeGraphs != 0 {
		graphs, displayed := g.shapeGraphs, g.displayedShapeGraph
		if displayedOnly {
			graphs, displayed = []*ShapeGraph{g.DisplayedShapeGraph()}, 0
		}
		w.Byte(markerShapeGraphs)
		w.Int(displayed)
		w.Uint32(uint32(len(graphs)))
		allLines := AllLineData{}
		for _, sg := range graphs {
			if err := sg.write(w); err != nil {
				return err
			}
			if sg.IsAllLineMap() {
				allLines = g.allLines
			}
		}
		writeAllLineData(w, allLines)
	}

	if state&StateDataMaps != 0 {
		maps, displayed := g.dataMaps, g.displayedDataMap
		if displayedOnly {
			maps, displayed = []*shapemap.ShapeMap{g.DisplayedDataMap()}, 0
		}
		w.Byte(markerDataMaps)
		w.Int(displayed)
		w.Uint32(uint32(len(maps)))
		for _, m := range maps {
			if err := m.Write(w); err != nil {
				return err
			}
		}
	}

	return w.Err()
}

// displayedState returns the state and view class of a file holding only
// the map in front.
func (g *MetaGraph) displayedState() (state, viewClass int, err error) {
	switch {
	case g.viewClass&ViewVGA != 0 && g.DisplayedPointMap() != nil:
		return StatePointMaps, ViewVGA, nil
	case g.viewClass&ViewAxial != 0 && g.DisplayedShapeGraph() != nil:
		return StateShapeGraphs, ViewAxial, nil
	case g.viewClass&ViewData != 0 && g.DisplayedDataMap() != nil:
		return StateDataMaps, ViewData, nil
	default:
		return 0, 0, errors.New("no map displayed in front").
			WithType(ErrTypeMapNotFound).
			WithTag("view_class", g.viewClass)
	}
}

// reset empties the graph. The id and the lock are kept.
func (g *MetaGraph) reset() {
	g.Properties = FileProperties{}
	g.ShowGrid = false
	g.ShowText = false
	g.name = UnknownName
	g.fileVersion = -1
	g.state = 0
	g.viewClass = ViewNone
	g.region = geometry.Region{}
	g.drawingFiles = nil
	g.pointMaps = nil
	g.shapeGraphs = nil
	g.dataMaps = nil
	g.allLines = AllLineData{}
	g.displayedPointMap = -1
	g.displayedShapeGraph = -1
	g.displayedDataMap = -1
	g.currentFile = -1
}
