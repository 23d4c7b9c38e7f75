package pixel

import (
	"math"

	"github.com/aukilabs/depthmap/geometry"
)

// PixelateLine returns the cells crossed by l in order from its left end to
// its right end. Consecutive cells are always grid neighbours and each cell
// is listed once.
func PixelateLine(b Base, l geometry.Line, scale int) []Ref {
	if scale < 1 {
		scale = 1
	}

	a := b.Pixelate(l.Start(), true, scale)
	z := b.Pixelate(l.End(), true, scale)
	l = l.NormalScale(b.Region())

	list := []Ref{a}
	size := b.Size()
	scaledCols := float64(int(size.X) * scale)
	scaledRows := float64(int(size.Y) * scale)

	// walk in a space where y always increases
	ax, ay := int(a.X), int(a.Y)
	bx, by := int(z.X), int(z.Y)
	parity := 1
	if ay > by {
		parity = -1
		ay, by = -ay, -by
	}
	push := func() {
		list = append(list, NewRef(ax, parity*ay))
	}

	switch {
	case ax == bx:
		for ay < by {
			ay++
			push()
		}

	case ay == by:
		for ax < bx {
			ax++
			push()
		}

	default:
		fp := float64(parity)
		hw := l.Height() / l.Width()
		wh := l.Width() / l.Height()
		x0 := l.Ay() - fp*hw*l.Ax()
		y0 := l.Ax() - fp*wh*l.Ay()

		for ax < bx || ay < by {
			ey := parity * int(scaledRows*(x0+fp*hw*(float64(ax+1)/scaledCols)))
			var ex int
			if parity < 0 {
				ex = int(scaledCols * (y0 + wh*(float64(ay)/scaledRows)))
			} else {
				ex = int(scaledCols * (y0 + wh*(float64(ay+1)/scaledRows)))
			}

			switch {
			case ay < ey:
				for ay < ey && ay < by {
					ay++
					push()
				}
				if ax < bx {
					ax++
					push()
				}

			case ax < ex:
				for ax < ex && ax < bx {
					ax++
					push()
				}
				if ay < by {
					ay++
					push()
				}

			default:
				// exactly diagonal: step both axes but never past the end cell
				if ax < bx {
					ax++
					push()
				}
				if ay < by {
					ay++
					push()
				}
			}
		}
	}

	return list
}

// PixelateLineTouching returns every cell l touches, allowing for tolerance
// in cell units. Cells outside the grid are skipped.
func PixelateLineTouching(b Base, l geometry.Line, tolerance float64) []Ref {
	var list []Ref

	size := b.Size()
	l = l.NormalScale(b.Region()).ScaleXY(geometry.Point{X: float64(size.X), Y: float64(size.Y)})

	add := func(x, y int) {
		if p := NewRef(x, y); inInt16(x, y) && size.Encloses(p) {
			list = append(list, p)
		}
	}

	if l.Width() > l.Height() {
		grad := l.Grad(geometry.YAxis)
		constant := l.Constant(geometry.YAxis)
		first := int(math.Floor(l.Ax() - tolerance))
		last := int(math.Floor(l.Bx() + tolerance))

		for i := first; i <= last; i++ {
			from, to := float64(i), float64(i+1)
			if i == first {
				from = l.Ax()
			}
			if i == last {
				to = l.Bx()
			}
			j1 := int(math.Floor(from*grad + constant - l.Sign()*tolerance))
			j2 := int(math.Floor(to*grad + constant + l.Sign()*tolerance))
			add(i, j1)
			if j1 != j2 {
				add(i, j2)
			}
		}
		return list
	}

	grad := l.Grad(geometry.XAxis)
	constant := l.Constant(geometry.XAxis)
	first := int(math.Floor(l.BottomLeft.Y - tolerance))
	last := int(math.Floor(l.TopRight.Y + tolerance))

	for i := first; i <= last; i++ {
		from, to := float64(i), float64(i+1)
		if i == first {
			from = l.BottomLeft.Y
		}
		if i == last {
			to = l.TopRight.Y
		}
		j1 := int(math.Floor(from*grad + constant - l.Sign()*tolerance))
		j2 := int(math.Floor(to*grad + constant + l.Sign()*tolerance))
		add(j1, i)
		if j1 != j2 {
			add(j2, i)
			if j2-j1 == 2 || j1-j2 == 2 {
				// exactly diagonal lines skip the middle cell
				add((j1+j2)/2, i)
			}
		}
	}
	return list
}

// QuickPixelateLine steps from cell p to cell q along the longer axis and
// returns the cells passed. Steps landing exactly on a cell border list both
// neighbouring cells.
func QuickPixelateLine(p, q Ref) []Ref {
	dx := float64(q.X - p.X)
	dy := float64(q.Y - p.Y)

	var t float64
	polarity := 0
	switch {
	case math.Abs(dx) == math.Abs(dy):
		t = math.Abs(dx)
	case math.Abs(dx) > math.Abs(dy):
		t = math.Abs(dx)
		polarity = 1
	default:
		t = math.Abs(dy)
		polarity = 2
	}

	if t == 0 {
		return []Ref{p}
	}

	dx /= t
	dy /= t
	px := float64(p.X) + 0.5
	py := float64(p.Y) + 0.5

	var list []Ref
	for i := 0; float64(i) <= t; i++ {
		switch {
		case polarity == 1 && math.Abs(math.Floor(py)-py) < 1e-9:
			list = append(list,
				NewRef(int(math.Floor(px)), int(math.Floor(py+0.5))),
				NewRef(int(math.Floor(px)), int(math.Floor(py-0.5))))
		case polarity == 2 && math.Abs(math.Floor(px)-px) < 1e-9:
			list = append(list,
				NewRef(int(math.Floor(px+0.5)), int(math.Floor(py))),
				NewRef(int(math.Floor(px-0.5)), int(math.Floor(py))))
		default:
			list = append(list, NewRef(int(math.Floor(px)), int(math.Floor(py))))
		}
		px += dx
		py += dy
	}
	return list
}

func inInt16(x, y int) bool {
	return x >= math.MinInt16 && x <= math.MaxInt16 && y >= math.MinInt16 && y <= math.MaxInt16
}
