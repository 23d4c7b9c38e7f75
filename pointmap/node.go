package pointmap

import (
	"github.com/aukilabs/depthmap/format"
	"github.com/aukilabs/depthmap/pixel"
)

// BinCount is the number of direction bins of a visibility graph node.
const BinCount = 32

const diagonal = pixel.PosDiagonal | pixel.NegDiagonal

// Run is a straight sequence of visible cells along the direction of its
// bin, from Start to End inclusive.
type Run struct {
	Start pixel.Ref
	End   pixel.Ref
}

// Bin holds the cells seen from a node in one direction sector.
type Bin struct {
	Dir         int8
	Count       uint16
	Distance    float32
	OccDistance float32
	Runs        []Run
}

// Contains reports whether p is one of the cells of the bin.
func (b *Bin) Contains(p pixel.Ref) bool {
	for _, r := range b.Runs {
		switch int(b.Dir) {
		case pixel.Horizontal:
			if p.Y == r.Start.Y && p.X >= r.Start.X && p.X <= r.End.X {
				return true
			}
		case pixel.Vertical:
			if p.X == r.Start.X && p.Y >= r.Start.Y && p.Y <= r.End.Y {
				return true
			}
		case pixel.PosDiagonal:
			if d := p.X - r.Start.X; d >= 0 && p.X <= r.End.X && p.Y-r.Start.Y == d {
				return true
			}
		case pixel.NegDiagonal:
			if d := p.X - r.Start.X; d >= 0 && p.X <= r.End.X && r.Start.Y-p.Y == d {
				return true
			}
		}
	}
	return false
}

// Node is the visibility graph entry of a point.
type Node struct {
	Bins       [BinCount]Bin
	Occlusions [BinCount][]pixel.Ref
}

// Count returns the number of cells visible from the node.
func (n *Node) Count() int {
	c := 0
	for i := range n.Bins {
		c += int(n.Bins[i].Count)
	}
	return c
}

type nodeLayout struct {
	binDistances bool
	occDistances bool
	occlusions   bool
}

func nodeLayoutFor(version int) nodeLayout {
	return nodeLayout{
		binDistances: version >= format.VersionBinDistances,
		occDistances: version >= format.VersionOccDistances,
		occlusions:   version >= format.VersionOcclusions,
	}
}

func readRef(r *format.Reader) pixel.Ref {
	x := r.Int16()
	y := r.Int16()
	return pixel.Ref{X: x, Y: y}
}

func writeRef(w *format.Writer, p pixel.Ref) {
	w.Int16(p.X)
	w.Int16(p.Y)
}

func readNode(r *format.Reader, layout nodeLayout) *Node {
	n := &Node{}
	for i := range n.Bins {
		readBin(r, &n.Bins[i], layout)
	}
	if layout.occlusions {
		for i := range n.Occlusions {
			count := r.Length()
			if r.Err() != nil {
				return n
			}
			refs := make([]pixel.Ref, count)
			for j := range refs {
				refs[j] = readRef(r)
			}
			n.Occlusions[i] = refs
		}
	}
	return n
}

func readBin(r *format.Reader, b *Bin, layout nodeLayout) {
	b.Dir = int8(r.Byte())
	b.Count = uint16(r.Int16())
	if layout.binDistances {
		b.Distance = r.Float32()
		b.OccDistance = r.Float32()
	}
	if b.Count == 0 {
		return
	}

	if !layout.binDistances {
		b.Distance = r.Float32()
	}
	if int(b.Dir)&diagonal != 0 {
		b.Runs = []Run{readRun(r, int(b.Dir))}
	} else {
		length := int(uint16(r.Int16()))
		b.Runs = make([]Run, 0, length)
		if length > 0 {
			b.Runs = append(b.Runs, readRun(r, int(b.Dir)))
		}
		for i := 1; i < length && r.Err() == nil; i++ {
			b.Runs = append(b.Runs, readShiftedRun(r, int(b.Dir), b.Runs[i-1]))
		}
	}
	if !layout.binDistances && layout.occDistances {
		b.OccDistance = r.Float32()
	}
}

func readRun(r *format.Reader, dir int) Run {
	start := readRef(r)
	length := int16(uint16(r.Int16()))
	end := start
	switch dir {
	case pixel.PosDiagonal:
		end = pixel.Ref{X: start.X + length, Y: start.Y + length}
	case pixel.NegDiagonal:
		end = pixel.Ref{X: start.X + length, Y: start.Y - length}
	case pixel.Horizontal:
		end.X += length
	case pixel.Vertical:
		end.Y += length
	}
	return Run{Start: start, End: end}
}

// readShiftedRun reads a run stored relative to the previous run of an
// axis aligned bin: the primary coordinate, then a 4 bit shift of the
// secondary coordinate packed with a 12 bit length.
func readShiftedRun(r *format.Reader, dir int, prev Run) Run {
	primary := r.Int16()
	packed := uint16(r.Int16())
	shift := int16(packed & 0xf)
	length := int16(packed >> 4)

	var run Run
	switch dir {
	case pixel.Horizontal:
		run.Start = pixel.Ref{X: primary, Y: prev.Start.Y + shift}
		run.End = pixel.Ref{X: primary + length, Y: run.Start.Y}
	case pixel.Vertical:
		run.Start = pixel.Ref{X: prev.Start.X + shift, Y: primary}
		run.End = pixel.Ref{X: run.Start.X, Y: primary + length}
	}
	return run
}

func writeNode(w *format.Writer, n *Node) {
	for i := range n.Bins {
		writeBin(w, &n.Bins[i])
	}
	for _, refs := range n.Occlusions {
		w.Uint32(uint32(len(refs)))
		for _, p := range refs {
			writeRef(w, p)
		}
	}
}

func writeBin(w *format.Writer, b *Bin) {
	w.Byte(byte(b.Dir))
	w.Int16(int16(b.Count))
	w.Float32(b.Distance)
	w.Float32(b.OccDistance)
	if b.Count == 0 {
		return
	}

	if int(b.Dir)&diagonal != 0 {
		writeRun(w, int(b.Dir), b.Runs[0])
		return
	}
	w.Int16(int16(uint16(len(b.Runs))))
	for i, run := range b.Runs {
		if i == 0 {
			writeRun(w, int(b.Dir), run)
			continue
		}
		writeShiftedRun(w, int(b.Dir), run, b.Runs[i-1])
	}
}

func writeRun(w *format.Writer, dir int, run Run) {
	writeRef(w, run.Start)
	length := run.End.X - run.Start.X
	if dir == pixel.Vertical {
		length = run.End.Y - run.Start.Y
	}
	w.Int16(length)
}

func writeShiftedRun(w *format.Writer, dir int, run, prev Run) {
	var primary, shift, length int16
	switch dir {
	case pixel.Horizontal:
		primary = run.Start.X
		shift = run.Start.Y - prev.Start.Y
		length = run.End.X - run.Start.X
	case pixel.Vertical:
		primary = run.Start.Y
		shift = run.Start.X - prev.Start.X
		length = run.End.Y - run.Start.Y
	}
	w.Int16(primary)
	w.Int16(int16(uint16(shift&0xf) | uint16(length)<<4))
}
