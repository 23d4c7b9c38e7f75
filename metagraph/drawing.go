package metagraph

import (
	"github.com/aukilabs/depthmap/format"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/shapemap"
	"github.com/aukilabs/depthmap/shapes"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// DrawingFile is an imported drawing split into layers of shapes.
type DrawingFile struct {
	Name   string
	Region geometry.Region
	Layers []*shapemap.ShapeMap

	viewLayers   []int
	currentLayer int
}

// AddLayer adds an empty drawing layer.
func (f *DrawingFile) AddLayer(name string) *shapemap.ShapeMap {
	l := shapemap.New(name, shapemap.DrawingMap)
	f.Layers = append(f.Layers, l)
	return l
}

// refreshRegion sets the region to the extent of the layers holding shapes
// and reports whether there was one.
func (f *DrawingFile) refreshRegion() bool {
	found := false
	for _, l := range f.Layers {
		if l.ShapeCount() == 0 {
			continue
		}
		if !found {
			f.Region = l.Region()
			found = true
			continue
		}
		f.Region = geometry.Union(f.Region, l.Region())
	}
	return found
}

// MakeViewportShapes lists the shapes of the shown layers crossing r.
func (f *DrawingFile) MakeViewportShapes(r geometry.Region) {
	f.viewLayers = f.viewLayers[:0]
	f.currentLayer = -1
	for i, l := range f.Layers {
		if !l.Show() {
			continue
		}
		l.MakeViewportShapes(r)
		f.viewLayers = append(f.viewLayers, i)
	}
}

// FindNextShape advances to the next listed shape, moving through the
// layers in order, and reports whether there is one.
func (f *DrawingFile) FindNextShape() bool {
	if f.currentLayer < 0 {
		f.currentLayer = 0
	}
	for ; f.currentLayer < len(f.viewLayers); f.currentLayer++ {
		if f.Layers[f.viewLayers[f.currentLayer]].FindNextShape() {
			return true
		}
	}
	return false
}

// NextShape returns the shape FindNextShape stopped on.
func (f *DrawingFile) NextShape() shapes.Shape {
	return f.Layers[f.viewLayers[f.currentLayer]].NextShape()
}

// NextLayer returns the index of the layer FindNextShape stopped in.
func (f *DrawingFile) NextLayer() int {
	return f.viewLayers[f.currentLayer]
}

func readDrawingFile(r *format.Reader, version int) (*DrawingFile, error) {
	f := &DrawingFile{
		Name:         r.String(),
		Region:       geometry.ReadRegion(r),
		currentLayer: -1,
	}
	if f.Name == "" {
		f.Name = UnknownName
	}

	count := r.Count()
	if err := r.Err(); err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		l := shapemap.New("", shapemap.DrawingMap)
		if err := l.Read(r, version); err != nil {
			return nil, errors.New("reading drawing layer failed").
				WithType(errors.Type(err)).
				WithTag("drawing", f.Name).
				WithTag("layer", i).
				Wrap(err)
		}
		f.Layers = append(f.Layers, l)
	}
	return f, nil
}

func (f *DrawingFile) write(w *format.Writer) error {
	w.String(f.Name)
	geometry.WriteRegion(w, f.Region)
	w.Int(len(f.Layers))
	for _, l := range f.Layers {
		if err := l.Write(w); err != nil {
			return err
		}
	}
	return w.Err()
}
