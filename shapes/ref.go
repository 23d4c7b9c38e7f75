package shapes

import "sort"

// Tag classifies how a shape occupies a grid cell.
type Tag uint8

const (
	// The border sides of a polygon cell: a set bit means the neighbouring
	// cell on that side does not hold the polygon.
	TagL Tag = 0x01
	TagB Tag = 0x02
	TagR Tag = 0x04
	TagT Tag = 0x08

	TagEdge         Tag = 0x0f
	TagInternalEdge Tag = 0x10
	TagCentre       Tag = 0x20
	TagOpen         Tag = 0x40
)

// NullKey is the key of an unset Ref.
const NullKey = -1

// Ref is the entry a grid cell holds for every shape passing through it.
// PolyRefs lists the indexes of the shape segments crossing the cell.
type Ref struct {
	Key      int
	Tags     Tag
	PolyRefs []int
}

func (r Ref) Has(tags Tag) bool {
	return r.Tags&tags != 0
}

// Bucket is the list of refs held by a grid cell, ordered by shape key.
type Bucket []Ref

// Find returns the position of the ref of key.
func (b Bucket) Find(key int) (int, bool) {
	i := sort.Search(len(b), func(i int) bool {
		return b[i].Key >= key
	})
	return i, i < len(b) && b[i].Key == key
}

// Get returns the ref of key, or nil when the cell does not hold the shape.
func (b Bucket) Get(key int) *Ref {
	i, ok := b.Find(key)
	if !ok {
		return nil
	}
	return &b[i]
}

// Contains reports whether the cell holds the shape of key.
func (b Bucket) Contains(key int) bool {
	_, ok := b.Find(key)
	return ok
}

// Insert returns the bucket with the ref of key added, and the position of
// that ref. An existing ref is kept.
func (b Bucket) Insert(key int, tags Tag) (Bucket, int) {
	i, ok := b.Find(key)
	if ok {
		return b, i
	}
	b = append(b, Ref{})
	copy(b[i+1:], b[i:])
	b[i] = Ref{Key: key, Tags: tags}
	return b, i
}

// Remove returns the bucket without the ref of key.
func (b Bucket) Remove(key int) Bucket {
	i, ok := b.Find(key)
	if !ok {
		return b
	}
	return append(b[:i], b[i+1:]...)
}
