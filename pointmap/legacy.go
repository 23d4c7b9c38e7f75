package pointmap

import (
	"math"

	"github.com/aukilabs/depthmap/attributes"
	"github.com/aukilabs/depthmap/pixel"
)

// LegacyAttributeSet tells which groups of measures a file written before
// attribute tables computed for its graph points.
type LegacyAttributeSet int

const (
	LegacyBasic      LegacyAttributeSet = 0x01
	LegacyLocal      LegacyAttributeSet = 0x02
	LegacyGlobal     LegacyAttributeSet = 0x04
	LegacyPointDepth LegacyAttributeSet = 0x08
	LegacyMetric     LegacyAttributeSet = 0x20
)

// Slots of a legacy attribute record. Counts are stored as integers, the
// other measures as floats.
const (
	slotNeighbourhoodSize = 0
	slotGraphSize         = 1
	slotTotalDepth        = 4
	slotEntropy           = 5
	slotRelEntropy        = 6
	slotCluster           = 7
	slotPointDepth        = 9
	slotControl           = 10
	slotControllability   = 11
	slotTotalMetricDepth  = 18
	slotMetricGraphSize   = 19
	slotTotalEuclidDist   = 21
	slotTotalMetricAngle  = 23

	// LegacySlotCount is the number of slots of a complete record.
	LegacySlotCount = 25
)

// LegacyRecord is the raw attribute record of one graph point. Each slot
// holds the bits of either an int32 or a float32.
type LegacyRecord []uint32

func (r LegacyRecord) int(slot int) float64 {
	if slot >= len(r) {
		return float64(attributes.Null)
	}
	return float64(int32(r[slot]))
}

func (r LegacyRecord) float(slot int) float64 {
	if slot >= len(r) {
		return float64(attributes.Null)
	}
	return float64(math.Float32frombits(r[slot]))
}

func (r LegacyRecord) meanDepth() float64 {
	size := r.int(slotGraphSize)
	if size <= 1 {
		return -1
	}
	return r.int(slotTotalDepth) / (size - 1)
}

func (r LegacyRecord) integrationHH() float64 {
	size := r.int(slotGraphSize)
	if size <= 2 || r.int(slotTotalDepth) <= size {
		return -1
	}
	return (size - 2) * dValue(size) / (2 * (r.meanDepth() - 1))
}

func (r LegacyRecord) integrationTekl() float64 {
	size := r.int(slotGraphSize)
	depth := r.int(slotTotalDepth)
	if size <= 2 || depth <= size {
		return -1
	}
	return math.Log((size-2)/2) / math.Log(depth-size+1)
}

// dValue is the Hillier and Hanson diamond value of a graph of k nodes.
func dValue(k float64) float64 {
	return 2 * (k*(math.Log2((k+2)/3)-1) + 1) / ((k - 1) * (k - 2))
}

type legacyColumn struct {
	name  string
	value func(LegacyRecord) float64
}

var legacyColumns = []struct {
	set     LegacyAttributeSet
	columns []legacyColumn
}{
	{LegacyLocal, []legacyColumn{
		{"Visual Clustering Coefficient", func(r LegacyRecord) float64 { return r.float(slotCluster) }},
		{"Visual Control", func(r LegacyRecord) float64 { return r.float(slotControl) }},
		{"Visual Controllability", func(r LegacyRecord) float64 { return r.float(slotControllability) }},
	}},
	{LegacyGlobal, []legacyColumn{
		{"Visual Entropy", func(r LegacyRecord) float64 { return r.float(slotEntropy) }},
		{"Visual Integration [HH]", LegacyRecord.integrationHH},
		{"Visual Integration [Tekl]", LegacyRecord.integrationTekl},
		{"Visual Mean Depth", LegacyRecord.meanDepth},
		{"Visual Node Count", func(r LegacyRecord) float64 { return r.int(slotGraphSize) }},
		{"Visual Relativised Entropy", func(r LegacyRecord) float64 { return r.float(slotRelEntropy) }},
	}},
	{LegacyPointDepth, []legacyColumn{
		{"Visual Step Depth", func(r LegacyRecord) float64 { return r.int(slotPointDepth) }},
	}},
	{LegacyMetric, []legacyColumn{
		{"Metric Mean Shortest-Path Angle", func(r LegacyRecord) float64 {
			return r.float(slotTotalMetricAngle) / r.int(slotMetricGraphSize)
		}},
		{"Metric Mean Shortest-Path Distance", func(r LegacyRecord) float64 {
			return r.float(slotTotalMetricDepth) / r.int(slotMetricGraphSize)
		}},
		{"Metric Mean Straight-Line Distance", func(r LegacyRecord) float64 {
			return r.float(slotTotalEuclidDist) / r.int(slotMetricGraphSize)
		}},
		{"Metric Node Count", func(r LegacyRecord) float64 { return r.int(slotMetricGraphSize) }},
	}},
}

// ConvertAttributes turns the legacy records of the graph points into
// attribute columns. Every point with a record gets a row. Only the groups
// named by which are converted.
func (m *PointMap) ConvertAttributes(which LegacyAttributeSet, records map[pixel.Ref]LegacyRecord) {
	refs := make([]pixel.Ref, 0, len(records))
	for p := range records {
		if m.Includes(p) {
			refs = append(refs, p)
		}
	}

	for _, p := range refs {
		m.attributes.InsertRow(refKey(p))
	}
	// row indexes are only stable once every row is in
	rows := make([]int, len(refs))
	for i, p := range refs {
		rows[i], _ = m.attributes.RowIndex(refKey(p))
	}

	if which&LegacyBasic != 0 {
		col := m.attributes.InsertLockedColumn("Connectivity")
		for i, p := range refs {
			m.attributes.SetValue(rows[i], col, float32(records[p].int(slotNeighbourhoodSize)))
		}
	}

	for _, group := range legacyColumns {
		if which&group.set == 0 {
			continue
		}
		for _, c := range group.columns {
			col := m.attributes.InsertColumn(c.name)
			for i, p := range refs {
				m.attributes.SetValue(rows[i], col, float32(c.value(records[p])))
			}
		}
	}
}
