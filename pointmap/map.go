package pointmap

import (
	"math"

	"github.com/aukilabs/depthmap/attributes"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pixel"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

const (
	ErrTypeOutOfGrid      = "point_out_of_grid"
	ErrTypeNoGrid         = "grid_not_set"
	ErrTypeNoDrawing      = "drawing_not_set"
	ErrTypeInvalidSpacing = "invalid_grid_spacing"
)

// DefaultName is the name given to point maps stored without one.
const DefaultName = "VGA Map"

// Points visited between two cancellation checks.
const progressInterval = 256

// Drawing is the geometry a point map is laid over. The map only reads it:
// its region bounds the grid and its lines block the fill.
type Drawing interface {
	Region() geometry.Region
	Lines() []geometry.Line
}

// PointMap is a regular grid of points laid over a drawing. Attribute rows
// are keyed by the packed pixel reference of their point.
type PointMap struct {
	pixel.Grid
	drawing Drawing

	name       string
	spacing    float64
	offset     geometry.Point
	bottomLeft geometry.Point

	// column major: the point (x, y) is at x*rows + y
	points     []Point
	pointCount int

	initialised   bool
	blockedLines  bool
	processed     bool
	boundaryGraph bool
	undoCounter   int

	mergeLines []MergeLine
	attributes *attributes.Table

	selection map[pixel.Ref]struct{}
	selBounds geometry.Region

	drawStep    int
	viewBL      pixel.Ref
	viewTR      pixel.Ref
	cursor      pixel.Ref
	finished    bool
	mergeCursor int
}

// New returns a point map without a grid. SetGrid must be called before
// points can be filled.
func New(name string, d Drawing) *PointMap {
	if name == "" {
		name = DefaultName
	}
	m := &PointMap{
		Grid:        pixel.NewGrid(geometry.Region{}, 1, 1),
		drawing:     d,
		name:        name,
		attributes:  attributes.NewTable(name),
		selection:   make(map[pixel.Ref]struct{}),
		drawStep:    1,
		mergeCursor: -1,
		finished:    true,
	}
	return m
}

func (m *PointMap) Name() string {
	return m.name
}

func (m *PointMap) SetName(name string) {
	m.name = name
}

func (m *PointMap) Drawing() Drawing {
	return m.drawing
}

func (m *PointMap) SetDrawing(d Drawing) {
	m.drawing = d
	m.blockedLines = false
}

func (m *PointMap) Attributes() *attributes.Table {
	return m.attributes
}

func (m *PointMap) Spacing() float64 {
	return m.spacing
}

// BottomLeft returns the location of the point (0, 0).
func (m *PointMap) BottomLeft() geometry.Point {
	return m.bottomLeft
}

func (m *PointMap) PointCount() int {
	return m.pointCount
}

func (m *PointMap) IsInitialised() bool {
	return m.initialised
}

// IsProcessed reports whether a visibility graph was built on the points.
func (m *PointMap) IsProcessed() bool {
	return m.processed
}

func (m *PointMap) IsBoundaryGraph() bool {
	return m.boundaryGraph
}

// SetProcessed records the graph flags of files that kept them outside the
// point map record.
func (m *PointMap) SetProcessed(processed, boundaryGraph bool) {
	m.processed = processed
	m.boundaryGraph = boundaryGraph
}

// SetGrid lays a grid with the given spacing over the drawing, shifted by
// offset. Every point is discarded and the undo history is lost.
func (m *PointMap) SetGrid(spacing float64, offset geometry.Point) error {
	if m.drawing == nil {
		return m.noDrawing()
	}
	if spacing <= 0 || math.IsNaN(spacing) || math.IsInf(spacing, 0) {
		return errors.New("invalid grid spacing").
			WithType(ErrTypeInvalidSpacing).
			WithTag("map", m.name).
			WithTag("spacing", spacing)
	}

	region := m.drawing.Region()
	xoffset := centredOffset(region.BottomLeft.X+offset.X, spacing)
	yoffset := centredOffset(region.BottomLeft.Y+offset.Y, spacing)

	cols := int(math.Floor((xoffset+region.Width())/spacing+0.5)) + 1
	rows := int(math.Floor((yoffset+region.Height())/spacing+0.5)) + 1
	if cols > math.MaxInt16 || rows > math.MaxInt16 {
		return errors.New("grid spacing too small for the drawing").
			WithType(ErrTypeInvalidSpacing).
			WithTag("map", m.name).
			WithTag("spacing", spacing).
			WithTag("rows", rows).
			WithTag("cols", cols)
	}

	m.spacing = spacing
	m.offset = geometry.Point{X: -xoffset, Y: -yoffset}
	m.bottomLeft = region.BottomLeft.Add(m.offset)
	m.layout(rows, cols)

	m.points = make([]Point, rows*cols)
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			p := pixel.NewRef(x, y)
			*m.point(p) = newPoint(m.Depixelate(p))
		}
	}

	m.pointCount = 0
	m.undoCounter = 0
	m.initialised = true
	m.blockedLines = false
	m.processed = false
	m.boundaryGraph = false
	m.mergeLines = nil
	m.selection = make(map[pixel.Ref]struct{})
	m.attributes = attributes.NewTable(m.name)

	logs.WithTag("map", m.name).
		WithTag("rows", rows).
		WithTag("cols", cols).
		WithTag("spacing", spacing).
		Debug("point map grid set")
	return nil
}

// centredOffset returns the distance from origin to the grid line below it,
// folded into (-spacing/2, spacing/2].
func centredOffset(origin, spacing float64) float64 {
	v := math.Mod(origin, spacing)
	if v < spacing/2 {
		v += spacing
	}
	if v > spacing/2 {
		v -= spacing
	}
	return v
}

// layout sizes the grid so that point (x, y) sits at the centre of its
// cell.
func (m *PointMap) layout(rows, cols int) {
	half := geometry.Point{X: m.spacing / 2, Y: m.spacing / 2}
	region := geometry.Region{
		BottomLeft: m.bottomLeft.Sub(half),
		TopRight: geometry.Point{
			X: m.bottomLeft.X + float64(cols-1)*m.spacing + half.X,
			Y: m.bottomLeft.Y + float64(rows-1)*m.spacing + half.Y,
		},
	}
	m.Grid = pixel.NewGrid(region, rows, cols)
}

func (m *PointMap) point(p pixel.Ref) *Point {
	return &m.points[int(p.X)*m.Rows()+int(p.Y)]
}

// Point returns the point at p, nil when p is outside the grid.
func (m *PointMap) Point(p pixel.Ref) *Point {
	if !m.initialised || !m.Includes(p) {
		return nil
	}
	return m.point(p)
}

// PointState returns the state of the point at p, including whether it is
// selected.
func (m *PointMap) PointState(p pixel.Ref) State {
	pt := m.Point(p)
	if pt == nil {
		return 0
	}
	state := pt.state
	if m.IsSelected(p) {
		state |= Selected
	}
	return state
}

// Pixelate returns the cell of the point nearest to p. With constrain set
// the cell is clamped into the grid.
func (m *PointMap) Pixelate(p geometry.Point, constrain bool, scale int) pixel.Ref {
	if scale < 1 {
		scale = 1
	}
	spacing := m.spacing / float64(scale)
	x := int(math.Floor((p.X - m.bottomLeft.X + m.spacing/2) / spacing))
	y := int(math.Floor((p.Y - m.bottomLeft.Y + m.spacing/2) / spacing))
	if constrain {
		x = max(0, min(x, m.Cols()*scale-1))
		y = max(0, min(y, m.Rows()*scale-1))
	}
	return pixel.NewRef(x, y)
}

// Depixelate returns the location of the point at p.
func (m *PointMap) Depixelate(p pixel.Ref) geometry.Point {
	return geometry.Point{
		X: m.bottomLeft.X + m.spacing*float64(p.X),
		Y: m.bottomLeft.Y + m.spacing*float64(p.Y),
	}
}

// Regionate returns the cell of the point at p grown by border, in units of
// spacing.
func (m *PointMap) Regionate(p pixel.Ref, border float64) geometry.Region {
	lo := 0.5 + border
	return geometry.Region{
		BottomLeft: geometry.Point{
			X: m.bottomLeft.X + m.spacing*(float64(p.X)-lo),
			Y: m.bottomLeft.Y + m.spacing*(float64(p.Y)-lo),
		},
		TopRight: geometry.Point{
			X: m.bottomLeft.X + m.spacing*(float64(p.X)+lo),
			Y: m.bottomLeft.Y + m.spacing*(float64(p.Y)+lo),
		},
	}
}

func (m *PointMap) outOfGrid(p pixel.Ref) error {
	return errors.New("point outside the grid").
		WithType(ErrTypeOutOfGrid).
		WithTag("map", m.name).
		WithTag("x", p.X).
		WithTag("y", p.Y)
}

func (m *PointMap) noGrid() error {
	return errors.New("point map grid not set").
		WithType(ErrTypeNoGrid).
		WithTag("map", m.name)
}

func (m *PointMap) noDrawing() error {
	return errors.New("point map has no drawing").
		WithType(ErrTypeNoDrawing).
		WithTag("map", m.name)
}

func refKey(p pixel.Ref) int {
	return int(p.Int())
}

func keyRef(key int) pixel.Ref {
	return pixel.FromInt(int32(key))
}

// SetDisplayedAttribute colours the points by col.
func (m *PointMap) SetDisplayedAttribute(col int) {
	m.attributes.SetDisplayColumn(col, true)
}

func (m *PointMap) DisplayedAttribute() int {
	return m.attributes.DisplayColumn()
}

// GetLocationValue returns the displayed value of the point under p, or -2
// when there is no point with a row there.
func (m *PointMap) GetLocationValue(p geometry.Point) float64 {
	if !m.initialised {
		return -2
	}
	ref := m.Pixelate(p, false, 1)
	if !m.Includes(ref) {
		return -2
	}
	row, ok := m.attributes.RowIndex(refKey(ref))
	if !ok {
		return -2
	}
	return float64(m.attributes.GetValue(row, m.attributes.DisplayColumn()))
}

// removeRow drops the attribute row of p, keeping rows for filled points
// only.
func (m *PointMap) removeRow(p pixel.Ref) {
	m.attributes.RemoveRow(refKey(p))
}
