package bsp

import (
	"math"
	"math/rand"
	"time"

	"github.com/aukilabs/depthmap/comm"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// Side is the side of a node line a point falls on.
type Side int

const (
	Left Side = iota
	Right
)

// NoNode marks a missing child or parent.
const NoNode = -1

// progressInterval is the number of nodes built between two cancellation
// checks.
const progressInterval = 64

// TaggedLine is a line and the tag of the object it comes from.
type TaggedLine struct {
	Line geometry.Line
	Tag  int
}

// Node is a tree node. Children and parent are node indexes, NoNode when
// absent.
type Node struct {
	Line   geometry.Line
	Tag    int
	Left   int
	Right  int
	Parent int
}

func (n Node) IsLeaf() bool {
	return n.Left == NoNode && n.Right == NoNode
}

// Classify reports the side of the node line p falls on. Points on the line
// are on the left.
func (n Node) Classify(p geometry.Point) Side {
	v0 := n.Line.End().Sub(n.Line.Start()).Normalized()
	v1 := p.Sub(n.Line.Start()).Normalized()
	if geometry.Det(v0, v1) >= 0 {
		return Left
	}
	return Right
}

// Tree is a binary space partition over a set of lines. Nodes live in a
// flat slice, the root first.
type Tree struct {
	nodes []Node
}

// Build partitions lines into a tree. Building stops with a cancellation
// error as soon as c reports it is cancelled. An empty line set gives an
// empty tree.
func Build(c comm.Communicator, lines []TaggedLine) (*Tree, error) {
	start := time.Now()
	t := &Tree{}
	if len(lines) == 0 {
		return t, nil
	}

	rng := rand.New(rand.NewSource(1))

	type work struct {
		node  int
		lines []TaggedLine
	}

	t.nodes = append(t.nodes, Node{Tag: -1, Left: NoNode, Right: NoNode, Parent: NoNode})
	stack := []work{{node: 0, lines: lines}}

	for processed := 0; len(stack) > 0; processed++ {
		if processed%progressInterval == 0 {
			if err := comm.Check(c, "bsp build"); err != nil {
				instrumentBuild(start, err)
				return nil, err
			}
			comm.Post(c, processed)
		}

		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		left, right := t.split(w.node, w.lines, rng)
		if len(left) != 0 {
			t.nodes[w.node].Left = t.addChild(w.node)
			stack = append(stack, work{node: t.nodes[w.node].Left, lines: left})
		}
		if len(right) != 0 {
			t.nodes[w.node].Right = t.addChild(w.node)
			stack = append(stack, work{node: t.nodes[w.node].Right, lines: right})
		}
	}

	instrumentBuild(start, nil)
	logs.WithTag("lines", len(lines)).
		WithTag("nodes", len(t.nodes)).
		Debug("bsp tree built")
	return t, nil
}

func (t *Tree) addChild(parent int) int {
	t.nodes = append(t.nodes, Node{Tag: -1, Left: NoNode, Right: NoNode, Parent: parent})
	return len(t.nodes) - 1
}

// split makes one of lines the line of node and sorts the others to its
// left and right. Lines crossing the chosen line are cut in two.
func (t *Tree) split(node int, lines []TaggedLine, rng *rand.Rand) (left, right []TaggedLine) {
	var chosen int
	if len(lines) > 3 {
		chosen = pickMidpointLine(lines, t.parentLine(node))
	} else {
		chosen = rng.Intn(len(lines))
	}

	divider := lines[chosen].Line
	t.nodes[node].Line = divider
	t.nodes[node].Tag = lines[chosen].Tag

	origin := divider.Start()
	v0 := divider.End().Sub(origin).Normalized()

	for i, tl := range lines {
		if i == chosen {
			continue
		}

		a, b := 0.0, 0.0
		if tl.Line.Start() != origin {
			a = geometry.Det(v0, tl.Line.Start().Sub(origin).Normalized())
		}
		if tl.Line.End() != origin {
			b = geometry.Det(v0, tl.Line.End().Sub(origin).Normalized())
		}

		switch {
		case a >= 0 && b >= 0:
			left = append(left, tl)
		case a <= 0 && b <= 0:
			right = append(right, tl)
		default:
			p := geometry.IntersectionPoint(divider, tl.Line, 0)
			x := TaggedLine{Line: geometry.NewLine(tl.Line.Start(), p), Tag: tl.Tag}
			y := TaggedLine{Line: geometry.NewLine(p, tl.Line.End()), Tag: tl.Tag}
			if a < 0 {
				x, y = y, x
			}
			if x.Line.Length() > 0 {
				left = append(left, x)
			}
			if y.Line.Length() > 0 {
				right = append(right, y)
			}
		}
	}
	return left, right
}

func (t *Tree) parentLine(node int) *geometry.Line {
	parent := t.nodes[node].Parent
	if parent == NoNode {
		return nil
	}
	return &t.nodes[parent].Line
}

// pickMidpointLine returns the line whose midpoint is closest to the centre
// of all line ends. Lines running across the parent line are preferred.
func pickMidpointLine(lines []TaggedLine, parent *geometry.Line) int {
	var midpoint geometry.Point
	for _, tl := range lines {
		midpoint = midpoint.Add(tl.Line.Start()).Add(tl.Line.End())
	}
	midpoint = midpoint.Scale(1 / (2 * float64(len(lines))))

	vertical := parent == nil || parent.Height() <= parent.Width()

	pick := func(accept func(l geometry.Line) bool) int {
		chosen := -1
		chosenDist := 0.0
		for i, tl := range lines {
			if !accept(tl.Line) {
				continue
			}
			d := geometry.Dist(tl.Line.Midpoint(), midpoint)
			if chosen == -1 || d < chosenDist {
				chosen = i
				chosenDist = d
			}
		}
		return chosen
	}

	chosen := pick(func(l geometry.Line) bool {
		if vertical {
			return l.Height() > l.Width()
		}
		return l.Width() > l.Height()
	})
	if chosen == -1 {
		chosen = pick(func(geometry.Line) bool { return true })
	}
	return chosen
}

func (t *Tree) Empty() bool {
	return len(t.nodes) == 0
}

// Root returns the index of the root node, NoNode for an empty tree.
func (t *Tree) Root() int {
	if len(t.nodes) == 0 {
		return NoNode
	}
	return 0
}

func (t *Tree) Node(i int) Node {
	return t.nodes[i]
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

// Lines returns every node line, split fragments included.
func (t *Tree) Lines() []TaggedLine {
	lines := make([]TaggedLine, 0, len(t.nodes))
	for _, n := range t.nodes {
		lines = append(lines, TaggedLine{Line: n.Line, Tag: n.Tag})
	}
	return lines
}

// Walk visits every node front to back as seen from p: for each node the
// subtree on the side of p comes first, then the node, then the far side.
// Walking stops when visit returns false.
func (t *Tree) Walk(p geometry.Point, visit func(n Node) bool) {
	if t.Empty() {
		return
	}

	type step struct {
		node  int
		visit bool
	}
	stack := []step{{node: 0}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.nodes[s.node]

		if s.visit {
			if !visit(n) {
				return
			}
			continue
		}

		near, far := n.Left, n.Right
		if n.Classify(p) == Right {
			near, far = far, near
		}
		if far != NoNode {
			stack = append(stack, step{node: far})
		}
		stack = append(stack, step{node: s.node, visit: true})
		if near != NoNode {
			stack = append(stack, step{node: near})
		}
	}
}

// ClosestLine returns the tag of the line closest to p, or -1 for an empty
// tree. Subtrees behind a node line farther than the best match so far are
// skipped: every line they hold lies beyond that line's extension.
func (t *Tree) ClosestLine(p geometry.Point) int {
	if t.Empty() {
		return -1
	}

	best, bestTag := math.Inf(1), -1
	stack := []int{0}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.nodes[i]

		if d := geometry.DistToLine(p, n.Line); d < best {
			best, bestTag = d, n.Tag
		}

		near, far := n.Left, n.Right
		if n.Classify(p) == Right {
			near, far = far, near
		}
		if far != NoNode && distToExtension(p, n.Line) < best {
			stack = append(stack, far)
		}
		if near != NoNode {
			stack = append(stack, near)
		}
	}
	return bestTag
}

func distToExtension(p geometry.Point, l geometry.Line) float64 {
	v := l.End().Sub(l.Start())
	length := v.Length()
	if length == 0 {
		return geometry.Dist(p, l.Start())
	}
	return math.Abs(geometry.Det(v, p.Sub(l.Start()))) / length
}
