package pixel

import "math"

// Directions used to step a Ref.
const (
	NoDir         = 0x00
	Horizontal    = 0x01
	Vertical      = 0x02
	PosDiagonal   = 0x04
	NegDiagonal   = 0x08
	NegHorizontal = 0x10
	NegVertical   = 0x20
)

// Ref is an integer grid coordinate.
type Ref struct {
	X int16
	Y int16
}

// NoRef is the empty grid reference.
var NoRef = Ref{-1, -1}

func NewRef(x, y int) Ref {
	return Ref{X: int16(x), Y: int16(y)}
}

// FromInt unpacks a Ref packed by Int.
func FromInt(i int32) Ref {
	return Ref{X: int16(i >> 16), Y: int16(i & 0xffff)}
}

// Int packs the reference into a sortable 32 bit key, x in the high half.
func (r Ref) Int() int32 {
	return int32(r.X)<<16 + int32(r.Y)&0xffff
}

func (r Ref) IsEmpty() bool {
	return r == NoRef
}

func (r Ref) Up() Ref {
	return Ref{r.X, r.Y + 1}
}

func (r Ref) Down() Ref {
	return Ref{r.X, r.Y - 1}
}

func (r Ref) Left() Ref {
	return Ref{r.X - 1, r.Y}
}

func (r Ref) Right() Ref {
	return Ref{r.X + 1, r.Y}
}

func (r Ref) Add(o Ref) Ref {
	return Ref{r.X + o.X, r.Y + o.Y}
}

func (r Ref) Sub(o Ref) Ref {
	return Ref{r.X - o.X, r.Y - o.Y}
}

// Move steps the reference one cell in dir.
func (r Ref) Move(dir int) Ref {
	switch dir {
	case PosDiagonal:
		r.X++
		r.Y++
	case NegDiagonal:
		r.X++
		r.Y--
	case Horizontal:
		r.X++
	case Vertical:
		r.Y++
	case NegHorizontal:
		r.X--
	case NegVertical:
		r.Y--
	}
	return r
}

// Within reports whether r lies in the inclusive box bl..tr.
func (r Ref) Within(bl, tr Ref) bool {
	return r.X >= bl.X && r.X <= tr.X && r.Y >= bl.Y && r.Y <= tr.Y
}

// Encloses treats r as a grid size and reports whether p is a cell of it.
func (r Ref) Encloses(p Ref) bool {
	return p.X >= 0 && p.X < r.X && p.Y >= 0 && p.Y < r.Y
}

// Less orders references by x then y.
func Less(a, b Ref) bool {
	return a.X < b.X || (a.X == b.X && a.Y < b.Y)
}

func Dist(a, b Ref) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
