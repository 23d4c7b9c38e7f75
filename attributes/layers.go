package attributes

import (
	"sort"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

const (
	ErrTypeTooManyLayers  = "too_many_layers"
	ErrTypeLayerProtected = "layer_protected"
	ErrTypeLayerNotFound  = "layer_not_found"
)

const (
	everythingLayer     = uint64(1)
	everythingLayerName = "Everything"
	maxLayers           = 64
)

// Layer is a named bit of the row layer masks.
type Layer struct {
	Key  uint64
	Name string
}

// Layers returns the named layers ordered by key.
func (t *Table) Layers() []Layer {
	return append([]Layer(nil), t.layers...)
}

func (t *Table) LayerCount() int {
	return len(t.layers)
}

// IsLayerVisible reports whether the layer at index layer is shown.
func (t *Table) IsLayerVisible(layer int) bool {
	return t.layers[layer].Key&t.visibleLayers != 0
}

func (t *Table) VisibleLayers() uint64 {
	return t.visibleLayers
}

// SetVisibleLayers shows the rows of the layers in mask and reranks the
// displayed column.
func (t *Table) SetVisibleLayers(mask uint64, override bool) {
	if mask == t.visibleLayers && !override {
		return
	}
	t.visibleLayers = mask
	t.SetDisplayColumn(t.displayColumn, true)
}

// SetLayerVisible shows or hides the layer at index layer. Showing any layer
// other than the default one hides the default layer.
func (t *Table) SetLayerVisible(layer int, show bool) {
	key := t.layers[layer].Key
	on := key&t.visibleLayers != 0
	if show == on {
		return
	}

	var mask uint64
	switch {
	case key == everythingLayer && show:
		mask = everythingLayer
	case key == everythingLayer:
		mask = 0
	case show:
		mask = (key | t.visibleLayers) &^ everythingLayer
	default:
		mask = t.visibleLayers &^ key
	}
	t.SetVisibleLayers(mask, false)
}

// IsVisible reports whether a row belongs to a visible layer.
func (t *Table) IsVisible(row int) bool {
	return t.visible(t.rows[row])
}

func (t *Table) visible(r *row) bool {
	return r.layers&t.visibleLayers != 0
}

func (t *Table) RowLayers(row int) uint64 {
	return t.rows[row].layers
}

// AddLayer allocates the lowest free layer bit and names it.
func (t *Table) AddLayer(name string) (uint64, error) {
	for loc := 1; loc < maxLayers; loc++ {
		key := uint64(1) << loc
		if t.availableLayers&key == 0 {
			continue
		}

		t.availableLayers &^= key
		i := sort.Search(len(t.layers), func(i int) bool {
			return t.layers[i].Key >= key
		})
		t.layers = append(t.layers, Layer{})
		copy(t.layers[i+1:], t.layers[i:])
		t.layers[i] = Layer{Key: key, Name: name}
		return key, nil
	}

	return 0, errors.New("no layer available").
		WithType(ErrTypeTooManyLayers).
		WithTag("name", name)
}

// RemoveLayer deletes the layer at index layer and frees its bit. The default
// layer cannot be removed.
func (t *Table) RemoveLayer(layer int) error {
	if layer < 0 || layer >= len(t.layers) {
		return errors.New("layer not found").
			WithType(ErrTypeLayerNotFound).
			WithTag("layer", layer)
	}

	key := t.layers[layer].Key
	if key == everythingLayer {
		return errors.New("default layer cannot be removed").
			WithType(ErrTypeLayerProtected)
	}

	for _, r := range t.rows {
		r.layers &^= key
	}
	t.layers = append(t.layers[:layer], t.layers[layer+1:]...)
	t.availableLayers |= key

	mask := t.visibleLayers &^ key
	if mask == 0 {
		mask = everythingLayer
	}
	t.SetVisibleLayers(mask, false)
	return nil
}

// SelectionToLayer moves the visible selected rows into a new layer and
// shows that layer only.
func (t *Table) SelectionToLayer(name string) (uint64, error) {
	key, err := t.AddLayer(name)
	if err != nil {
		return 0, err
	}

	for _, r := range t.rows {
		if r.selected && t.visible(r) {
			r.layers |= key
		}
	}

	t.SetVisibleLayers(key, false)
	return key, nil
}
