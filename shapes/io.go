package shapes

import (
	"github.com/aukilabs/depthmap/format"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

type shapeLayout struct {
	centroid      bool
	areaPerimeter bool
}

var shapeDecoders = format.DecoderTable[shapeLayout]{
	{MinVersion: format.VersionShapeMaps, MaxVersion: format.VersionShapeCentroids - 1, Layout: shapeLayout{}},
	{MinVersion: format.VersionShapeCentroids, MaxVersion: format.VersionShapeAreaPerimeter - 1, Layout: shapeLayout{
		centroid: true,
	}},
	{MinVersion: format.VersionShapeAreaPerimeter, MaxVersion: format.Current, Layout: shapeLayout{
		centroid:      true,
		areaPerimeter: true,
	}},
}

// Read decodes a shape stored at the given schema version. Derived values
// missing from older layouts are recomputed.
func Read(r *format.Reader, version int) (Shape, error) {
	layout, ok := shapeDecoders.Lookup(version)
	if !ok {
		return Shape{}, errors.New("shape version not supported").
			WithType(format.ErrTypeUnsupportedVersion).
			WithTag("version", version)
	}

	var s Shape
	s.typ = Type(r.Byte())
	s.region = geometry.ReadLine(r)
	if layout.centroid {
		s.centroid = geometry.ReadPoint(r)
	}
	if layout.areaPerimeter {
		s.area = r.Float64()
		s.perimeter = r.Float64()
	}
	s.points = geometry.ReadPoints(r)
	if len(s.points) == 0 {
		s.points = nil
	}

	if err := r.Err(); err != nil {
		return Shape{}, errors.New("reading shape failed").
			WithType(errors.Type(err)).
			WithTag("version", version).
			Wrap(err)
	}

	if !layout.areaPerimeter {
		s.derive()
	}
	return s, nil
}

func (s *Shape) derive() {
	switch {
	case s.IsPoint():
		s.centroid = s.region.BottomLeft
	case s.IsLine():
		s.centroid = s.region.Centre()
		s.perimeter = s.region.Length()
	default:
		s.SetCentroidAreaPerim()
	}
}

// Write encodes s at the current schema version.
func Write(w *format.Writer, s Shape) error {
	w.Byte(byte(s.typ))
	geometry.WriteLine(w, s.region)
	geometry.WritePoint(w, s.centroid)
	w.Float64(s.area)
	w.Float64(s.perimeter)
	geometry.WritePoints(w, s.points)

	if err := w.Err(); err != nil {
		return errors.New("writing shape failed").
			WithType(errors.Type(err)).
			Wrap(err)
	}
	return nil
}
