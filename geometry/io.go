package geometry

import "github.com/aukilabs/depthmap/format"

// lineRecordPadding pads a line record to 8 byte alignment.
const lineRecordPadding = 6

func ReadPoint(r *format.Reader) Point {
	x := r.Float64()
	return Point{X: x, Y: r.Float64()}
}

func WritePoint(w *format.Writer, p Point) {
	w.Float64(p.X)
	w.Float64(p.Y)
}

func ReadPoints(r *format.Reader) []Point {
	n := r.Length()
	points := make([]Point, 0, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		points = append(points, ReadPoint(r))
	}
	return points
}

func WritePoints(w *format.Writer, points []Point) {
	w.Uint32(uint32(len(points)))
	for _, p := range points {
		WritePoint(w, p)
	}
}

func ReadRegion(r *format.Reader) Region {
	bl := ReadPoint(r)
	return Region{BottomLeft: bl, TopRight: ReadPoint(r)}
}

func WriteRegion(w *format.Writer, region Region) {
	WritePoint(w, region.BottomLeft)
	WritePoint(w, region.TopRight)
}

// ReadLine reads a line record: its region followed by a parity byte and a
// direction byte.
func ReadLine(r *format.Reader) Line {
	l := Line{Region: ReadRegion(r)}
	l.Parity = r.Byte() != 0
	l.Rightward = r.Byte() != 0
	for i := 0; i < lineRecordPadding; i++ {
		r.Byte()
	}
	return l
}

func WriteLine(w *format.Writer, l Line) {
	WriteRegion(w, l.Region)
	w.Bool(l.Parity)
	w.Bool(l.Rightward)
	for i := 0; i < lineRecordPadding; i++ {
		w.Byte(0)
	}
}
