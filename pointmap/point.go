package pointmap

import (
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/pixel"
)

// State is the set of flags of a grid point. Several flags may be set at
// once.
type State int32

const (
	Empty         State = 0x0001
	Filled        State = 0x0002
	Blocked       State = 0x0004
	ContextFilled State = 0x0008
	Selected      State = 0x0010
	Edge          State = 0x0020
	Merged        State = 0x0040
	AgentFilled   State = 0x0080
	AgentFade     State = 0x0100
	AgentA        State = 0x0200
	AgentB        State = 0x0400
	AgentC        State = 0x0800
	LineAdded     State = 0x1000
	LineRemoved   State = 0x2000
	Highlight     State = 0x4000
	Augmented     State = 0x8000

	// storedStates are the flags that survive a save.
	storedStates = Empty | Filled | Merged | Blocked | ContextFilled | Edge
)

// Grid connection flags, one per neighbour, anticlockwise from east.
const (
	ConnectE  uint8 = 0x01
	ConnectNE uint8 = 0x02
	ConnectN  uint8 = 0x04
	ConnectNW uint8 = 0x08
	ConnectW  uint8 = 0x10
	ConnectSW uint8 = 0x20
	ConnectS  uint8 = 0x40
	ConnectSE uint8 = 0x80
)

type keyedLine struct {
	key  int
	line geometry.Line
}

// Point is a cell of a point map.
type Point struct {
	state           State
	block           int32
	undo            int
	gridConnections uint8
	node            *Node
	location        geometry.Point
	merge           pixel.Ref

	// lines crossing the cell, cropped to it
	lines []keyedLine
}

func newPoint(location geometry.Point) Point {
	return Point{
		state:    Empty,
		location: location,
		merge:    pixel.NoRef,
	}
}

func (p *Point) State() State {
	return p.state
}

func (p *Point) IsEmpty() bool {
	return p.state&Empty == Empty
}

func (p *Point) IsFilled() bool {
	return p.state&Filled == Filled
}

func (p *Point) IsBlocked() bool {
	return p.state&Blocked == Blocked
}

func (p *Point) IsContextFilled() bool {
	return p.state&ContextFilled == ContextFilled
}

func (p *Point) IsEdge() bool {
	return p.state&Edge == Edge
}

func (p *Point) IsAugmented() bool {
	return p.state&Augmented == Augmented
}

// Merge returns the point this one is merged with, or pixel.NoRef.
func (p *Point) Merge() pixel.Ref {
	return p.merge
}

func (p *Point) Location() geometry.Point {
	return p.location
}

// Node returns the visibility graph node of the point, nil when no graph
// was built.
func (p *Point) Node() *Node {
	return p.node
}

func (p *Point) GridConnections() uint8 {
	return p.gridConnections
}

// set replaces the state, keeping the blocked flag, and tags the point with
// the undo step that changed it.
func (p *Point) set(state State, undo int) {
	p.state = state | p.state&Blocked
	p.undo = undo
}

func (p *Point) setBlocked(blocked bool) {
	if blocked {
		p.state |= Blocked
	} else {
		p.state &^= Blocked
	}
}

func (p *Point) clearMerge() {
	p.merge = pixel.NoRef
	p.state &^= Merged
}
