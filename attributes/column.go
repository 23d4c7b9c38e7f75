package attributes

const (
	// Null marks a value that was never computed.
	Null float32 = -1

	// RefColumn addresses the implicit column holding the row keys.
	RefColumn = -1

	// NoColumn is the display column of a table that shows nothing.
	NoColumn = -2

	RefColumnName = "Ref Number"
)

// DisplayParams describes how a column is colour mapped.
type DisplayParams struct {
	Blue       float32
	Red        float32
	ColorScale int32
}

// DefaultDisplayParams maps the full value range.
var DefaultDisplayParams = DisplayParams{Blue: 0, Red: 1}

// Column is the header of an attribute column. Values live in the table rows
// at the column's physical index.
type Column struct {
	Name          string
	Hidden        bool
	Locked        bool
	Formula       string
	DisplayParams DisplayParams

	physical int

	min   float64
	max   float64
	total float64
	count int
	dirty bool

	visibleMin   float64
	visibleMax   float64
	visibleTotal float64

	updated bool
}

func newColumn(name string, physical int) *Column {
	c := &Column{
		Name:          name,
		DisplayParams: DefaultDisplayParams,
		physical:      physical,
	}
	c.reset()
	return c
}

// Physical returns the index of the column values inside a row.
func (c *Column) Physical() int {
	return c.physical
}

// Updated reports whether the column received new data since it was last
// read or written.
func (c *Column) Updated() bool {
	return c.updated
}

// reset empties the statistics. An empty column is stored with min -1 and
// max 0.
func (c *Column) reset() {
	c.min = -1
	c.max = 0
	c.total = 0
	c.count = 0
	c.dirty = false
	c.visibleMin = -1
	c.visibleMax = 0
	c.visibleTotal = 0
}

func (c *Column) add(v float32) {
	c.updated = true
	if v == Null {
		return
	}

	value := float64(v)
	c.total += value
	c.count++
	if c.count == 1 {
		c.min, c.max = value, value
		return
	}
	if value < c.min {
		c.min = value
	}
	if value > c.max {
		c.max = value
	}
}

// retract removes a value from the running statistics. Removing an extreme
// leaves min or max unknown until the next rebuild.
func (c *Column) retract(v float32) {
	c.updated = true
	if v == Null {
		return
	}

	value := float64(v)
	c.count--
	if c.count <= 0 {
		c.reset()
		return
	}
	c.total -= value
	if value <= c.min || value >= c.max {
		c.dirty = true
	}
}

func (c *Column) change(oldValue, newValue float32) {
	c.retract(oldValue)
	c.add(newValue)
}

// normValue maps v into [0,1] using the column range. A column without
// variation maps every value to 0.5.
func (c *Column) normValue(v float32) float32 {
	if c.min == c.max {
		return 0.5
	}
	if v == Null {
		return Null
	}
	return float32((float64(v) - c.min) / (c.max - c.min))
}
