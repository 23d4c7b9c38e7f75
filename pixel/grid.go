package pixel

import (
	"math"

	"github.com/aukilabs/depthmap/geometry"
)

// Base is the contract of a grid spatial index: a region divided into rows
// and columns, and a way to turn a point into a cell.
type Base interface {
	// Returns the pixelated cell of p at the given oversampling factor. When
	// constrain is set the cell is clamped into the grid.
	Pixelate(p geometry.Point, constrain bool, scale int) Ref

	// Returns the continuous region covered by the grid.
	Region() geometry.Region

	// Returns the grid size as a Ref of (cols, rows).
	Size() Ref
}

// Grid is a uniformly subdivided region.
type Grid struct {
	region geometry.Region
	rows   int
	cols   int
}

func NewGrid(region geometry.Region, rows, cols int) Grid {
	if rows <= 0 {
		rows = 1
	}
	if cols <= 0 {
		cols = 1
	}
	return Grid{region: region, rows: rows, cols: cols}
}

func (g Grid) Region() geometry.Region {
	return g.region
}

func (g Grid) Rows() int {
	return g.rows
}

func (g Grid) Cols() int {
	return g.cols
}

func (g Grid) Size() Ref {
	return NewRef(g.cols, g.rows)
}

// Includes reports whether p is a cell of the grid.
func (g Grid) Includes(p Ref) bool {
	return g.Size().Encloses(p)
}

// CellSize returns the width and height of a single cell.
func (g Grid) CellSize() geometry.Point {
	return geometry.Point{
		X: g.region.Width() / float64(g.cols),
		Y: g.region.Height() / float64(g.rows),
	}
}

func (g Grid) Pixelate(p geometry.Point, constrain bool, scale int) Ref {
	if scale < 1 {
		scale = 1
	}
	n := p.NormalScale(g.region)
	return Ref{
		X: int16(pixelateAxis(n.X, g.cols*scale, constrain)),
		Y: int16(pixelateAxis(n.Y, g.rows*scale, constrain)),
	}
}

func pixelateAxis(v float64, count int, constrain bool) int {
	if constrain {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return count - 1
		}
	}
	return int(math.Floor(v * float64(count)))
}

// Depixelate returns the centre of cell p.
func (g Grid) Depixelate(p Ref) geometry.Point {
	cell := g.CellSize()
	return geometry.Point{
		X: g.region.BottomLeft.X + cell.X*(float64(p.X)+0.5),
		Y: g.region.BottomLeft.Y + cell.Y*(float64(p.Y)+0.5),
	}
}

// CellRegion returns the continuous region covered by cell p.
func (g Grid) CellRegion(p Ref) geometry.Region {
	cell := g.CellSize()
	bl := geometry.Point{
		X: g.region.BottomLeft.X + cell.X*float64(p.X),
		Y: g.region.BottomLeft.Y + cell.Y*float64(p.Y),
	}
	return geometry.Region{BottomLeft: bl, TopRight: bl.Add(cell)}
}
