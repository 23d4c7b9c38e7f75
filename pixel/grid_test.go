package pixel

import (
	"math"
	"math/rand"
	"testing"

	"github.com/aukilabs/depthmap/geometry"
	"github.com/stretchr/testify/require"
)

func newTestGrid() Grid {
	return NewGrid(geometry.Region{
		BottomLeft: geometry.Point{X: 0, Y: 0},
		TopRight:   geometry.Point{X: 10, Y: 10},
	}, 10, 10)
}

func TestRef(t *testing.T) {
	r := NewRef(3, 7)
	require.Equal(t, r, FromInt(r.Int()))
	require.True(t, Less(NewRef(1, 9), NewRef(2, 0)))
	require.True(t, Less(NewRef(1, 1), NewRef(1, 2)))
	require.True(t, NewRef(1, 2).Int() < NewRef(2, 1).Int())
	require.Equal(t, NewRef(2, 7), r.Move(NegHorizontal))
	require.Equal(t, NewRef(4, 6), r.Move(NegDiagonal))
	require.True(t, NewRef(10, 10).Encloses(r))
	require.False(t, NewRef(10, 10).Encloses(NewRef(10, 0)))
	require.True(t, NoRef.IsEmpty())
}

func TestGridPixelate(t *testing.T) {
	g := newTestGrid()

	t.Run("Pixelate: inside", func(t *testing.T) {
		require.Equal(t, NewRef(2, 5), g.Pixelate(geometry.Point{X: 2.5, Y: 5.1}, true, 1))
	})

	t.Run("Pixelate: constrained", func(t *testing.T) {
		require.Equal(t, NewRef(0, 9), g.Pixelate(geometry.Point{X: -4, Y: 12}, true, 1))
		require.Equal(t, NewRef(9, 0), g.Pixelate(geometry.Point{X: 10, Y: 0}, true, 1))
	})

	t.Run("Pixelate: unconstrained", func(t *testing.T) {
		require.Equal(t, NewRef(-1, 12), g.Pixelate(geometry.Point{X: -0.5, Y: 12.5}, false, 1))
	})

	t.Run("Pixelate: scaled", func(t *testing.T) {
		require.Equal(t, NewRef(5, 11), g.Pixelate(geometry.Point{X: 2.5, Y: 5.6}, true, 2))
	})

	t.Run("Pixelate: depixelate round trip", func(t *testing.T) {
		rnd := rand.New(rand.NewSource(7))
		for i := 0; i < 500; i++ {
			p := geometry.Point{X: rnd.Float64() * 10, Y: rnd.Float64() * 10}
			c := g.Depixelate(g.Pixelate(p, true, 1))
			require.LessOrEqual(t, math.Abs(c.X-p.X), 0.5)
			require.LessOrEqual(t, math.Abs(c.Y-p.Y), 0.5)
		}
	})
}

func requireAdjacent(t *testing.T, cells []Ref) {
	seen := make(map[Ref]struct{})
	for i, c := range cells {
		_, dup := seen[c]
		require.False(t, dup, "cell %v listed twice", c)
		seen[c] = struct{}{}

		if i == 0 {
			continue
		}
		d := c.Sub(cells[i-1])
		require.Equal(t, 1, int(math.Abs(float64(d.X))+math.Abs(float64(d.Y))),
			"cells %v and %v are not neighbours", cells[i-1], c)
	}
}

func TestPixelateLine(t *testing.T) {
	g := newTestGrid()

	t.Run("PixelateLine: horizontal", func(t *testing.T) {
		cells := PixelateLine(g, geometry.NewLine(geometry.Point{X: 1.5, Y: 2.5}, geometry.Point{X: 4.5, Y: 2.5}), 1)
		require.Equal(t, []Ref{NewRef(1, 2), NewRef(2, 2), NewRef(3, 2), NewRef(4, 2)}, cells)
	})

	t.Run("PixelateLine: vertical downward", func(t *testing.T) {
		cells := PixelateLine(g, geometry.NewLine(geometry.Point{X: 1.5, Y: 4.5}, geometry.Point{X: 1.5, Y: 2.5}), 1)
		require.Equal(t, []Ref{NewRef(1, 2), NewRef(1, 3), NewRef(1, 4)}, cells)
	})

	t.Run("PixelateLine: shallow", func(t *testing.T) {
		cells := PixelateLine(g, geometry.NewLine(geometry.Point{X: 0.5, Y: 0.5}, geometry.Point{X: 6.5, Y: 2.2}), 1)
		require.Equal(t, NewRef(0, 0), cells[0])
		require.Equal(t, NewRef(6, 2), cells[len(cells)-1])
		requireAdjacent(t, cells)
	})

	t.Run("PixelateLine: descending", func(t *testing.T) {
		cells := PixelateLine(g, geometry.NewLine(geometry.Point{X: 1.2, Y: 8.7}, geometry.Point{X: 7.9, Y: 1.1}), 1)
		require.Equal(t, NewRef(1, 8), cells[0])
		require.Equal(t, NewRef(7, 1), cells[len(cells)-1])
		requireAdjacent(t, cells)
	})

	t.Run("PixelateLine: random lines", func(t *testing.T) {
		rnd := rand.New(rand.NewSource(42))
		for i := 0; i < 300; i++ {
			a := geometry.Point{X: rnd.Float64() * 10, Y: rnd.Float64() * 10}
			b := geometry.Point{X: rnd.Float64() * 10, Y: rnd.Float64() * 10}
			l := geometry.NewLine(a, b)
			cells := PixelateLine(g, l, 1)
			require.Contains(t, cells, g.Pixelate(a, true, 1))
			require.Contains(t, cells, g.Pixelate(b, true, 1))
			requireAdjacent(t, cells)
		}
	})
}

func TestPixelateLineTouching(t *testing.T) {
	g := newTestGrid()

	cells := PixelateLineTouching(g, geometry.NewLine(geometry.Point{X: 0.5, Y: 0.5}, geometry.Point{X: 3.5, Y: 0.5}), 1e-10)
	require.Equal(t, []Ref{NewRef(0, 0), NewRef(1, 0), NewRef(2, 0), NewRef(3, 0)}, cells)

	cells = PixelateLineTouching(g, geometry.NewLine(geometry.Point{X: 2, Y: 0.5}, geometry.Point{X: 2, Y: 1.5}), 1e-10)
	require.ElementsMatch(t, []Ref{NewRef(1, 0), NewRef(2, 0), NewRef(1, 1), NewRef(2, 1)}, cells)
}

func TestQuickPixelateLine(t *testing.T) {
	require.Equal(t, []Ref{NewRef(2, 2)}, QuickPixelateLine(NewRef(2, 2), NewRef(2, 2)))
	require.Equal(t, []Ref{NewRef(0, 0), NewRef(1, 1), NewRef(2, 2)}, QuickPixelateLine(NewRef(0, 0), NewRef(2, 2)))
	require.Equal(t, []Ref{NewRef(0, 0), NewRef(1, 0), NewRef(2, 0), NewRef(3, 0)}, QuickPixelateLine(NewRef(0, 0), NewRef(3, 0)))
}
