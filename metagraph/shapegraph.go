package metagraph

import (
	"github.com/aukilabs/depthmap/format"
	"github.com/aukilabs/depthmap/shapemap"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// Names the all-line map has been stored under.
var allLineMapNames = []string{"All-Line Map", "All Line Map"}

// Encoded sizes of the records kept alongside the all-line map.
const (
	polyConnectorSize = 56
	radialLineSize    = 64
)

// ShapeGraph is a shape map whose shapes form a graph, such as an axial or
// segment map.
type ShapeGraph struct {
	*shapemap.ShapeMap

	// KeyVertexCount is the number of key vertices the all-line map was
	// built from. KeyVertices lists, per line, the key vertices it passes.
	KeyVertexCount int
	KeyVertices    [][]int
}

// IsAllLineMap reports whether the graph holds every line of sight between
// key vertices.
func (sg *ShapeGraph) IsAllLineMap() bool {
	if sg.Type() == shapemap.AllLineMap {
		return true
	}
	for _, name := range allLineMapNames {
		if sg.Name() == name {
			return true
		}
	}
	return false
}

// AllLineData holds the polygon connections and radial lines of the
// all-line map as stored records. They are kept so that a file can be
// written back unchanged.
type AllLineData struct {
	PolyConnections []byte
	RadialLines     []byte
}

// PolyConnectionCount returns the number of polygon connections.
func (d AllLineData) PolyConnectionCount() int {
	return len(d.PolyConnections) / polyConnectorSize
}

// RadialLineCount returns the number of radial lines.
func (d AllLineData) RadialLineCount() int {
	return len(d.RadialLines) / radialLineSize
}

type shapeGraphLayout struct {
	segmentFlag bool
}

var shapeGraphDecoders = format.DecoderTable[shapeGraphLayout]{
	{MinVersion: format.VersionAxialShapes, MaxVersion: format.VersionMapTypes - 1, Layout: shapeGraphLayout{
		segmentFlag: true,
	}},
	{MinVersion: format.VersionMapTypes, MaxVersion: format.Current, Layout: shapeGraphLayout{}},
}

func readShapeGraph(r *format.Reader, version int) (*ShapeGraph, error) {
	layout, ok := shapeGraphDecoders.Lookup(version)
	if !ok {
		return nil, deprecated("shape graphs", version)
	}

	segmentMap := false
	if layout.segmentFlag {
		segmentMap = r.Byte() == '1'
	}

	sg := &ShapeGraph{ShapeMap: shapemap.New("", shapemap.AxialMap)}
	sg.KeyVertexCount = r.Int()
	size := r.Count()
	for i := 0; i < size && r.Err() == nil; i++ {
		sg.KeyVertices = append(sg.KeyVertices, r.Ints())
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	if err := sg.ShapeMap.Read(r, version); err != nil {
		return nil, err
	}

	mapType := sg.Type()
	if layout.segmentFlag {
		mapType = shapemap.AxialMap
		if segmentMap {
			mapType = shapemap.SegmentMap
		}
	}
	if mapType != shapemap.AllLineMap && sg.IsAllLineMap() {
		mapType = shapemap.AllLineMap
	}
	if mapType != sg.Type() {
		sg.SetType(mapType)
	}
	return sg, nil
}

func (sg *ShapeGraph) write(w *format.Writer) error {
	w.Int(sg.KeyVertexCount)
	w.Int(len(sg.KeyVertices))
	for _, v := range sg.KeyVertices {
		w.Ints(v)
	}
	if err := w.Err(); err != nil {
		return err
	}
	return sg.ShapeMap.Write(w)
}

func readAllLineData(r *format.Reader) AllLineData {
	var d AllLineData
	n := r.Length()
	d.PolyConnections = r.Bytes(n * polyConnectorSize)
	n = r.Length()
	d.RadialLines = r.Bytes(n * radialLineSize)
	return d
}

func writeAllLineData(w *format.Writer, d AllLineData) {
	w.Uint32(uint32(d.PolyConnectionCount()))
	w.Raw(d.PolyConnections[:d.PolyConnectionCount()*polyConnectorSize])
	w.Uint32(uint32(d.RadialLineCount()))
	w.Raw(d.RadialLines[:d.RadialLineCount()*radialLineSize])
}

func shapeGraphFailed(i int, err error) error {
	return errors.New("reading shape graph failed").
		WithType(errors.Type(err)).
		WithTag("index", i).
		Wrap(err)
}
