/*
	Package viewer assembles compiled layers into the viewer's top-level state and
	encodes that state as a URL fragment.
*/
package viewer

import (
	"github.com/janelia-flyem/ngportal/layer"
	"github.com/janelia-flyem/ngportal/space"
)

const (
	// DefaultCrossSectionScale is the cross-section zoom used when a view sets none.
	DefaultCrossSectionScale = 50.0

	// DefaultProjectionScale is the 3D projection zoom used when a view sets none.
	DefaultProjectionScale = 65536.0

	// Layout is the only panel layout the portal produces.
	Layout = "4panel"
)

// Camera holds the optional view-level camera parameters.  Nil or empty fields
// take viewer defaults.
type Camera struct {
	Position          []float64
	CrossSectionScale *float64
	Orientation       []float64 // quaternion
	ProjectionScale   *float64
}

// SelectedLayer names the layer shown in the side panel.
type SelectedLayer struct {
	Layer   string `json:"layer"`
	Visible bool   `json:"visible"`
}

// State is the complete viewer state.  Its JSON key order is the field order
// below and the viewer depends on it, so fields must not be reordered:
//
//	dimensions, position, layers, layout, crossSectionScale,
//	crossSectionOrientation, projectionScale, selectedLayer
//
// Unset optional fields are omitted.
type State struct {
	Dimensions              space.CoordinateSpace `json:"dimensions"`
	Position                []float64             `json:"position,omitempty"`
	Layers                  layer.List            `json:"layers"`
	Layout                  string                `json:"layout"`
	CrossSectionScale       float64               `json:"crossSectionScale"`
	CrossSectionOrientation []float64             `json:"crossSectionOrientation,omitempty"`
	ProjectionScale         float64               `json:"projectionScale"`
	SelectedLayer           *SelectedLayer        `json:"selectedLayer,omitempty"`
}

// Assemble combines layers and camera settings into a viewer state.
//
// A lone image layer is shown fully opaque.  The first layer becomes the selected
// layer.  The passed layers and camera slices are not modified or retained.
func Assemble(layers []layer.Layer, cam Camera, out space.CoordinateSpace) *State {
	s := &State{
		Dimensions:              out,
		Position:                copyFloats(cam.Position),
		Layers:                  make(layer.List, len(layers)),
		Layout:                  Layout,
		CrossSectionScale:       DefaultCrossSectionScale,
		CrossSectionOrientation: copyFloats(cam.Orientation),
		ProjectionScale:         DefaultProjectionScale,
	}
	copy(s.Layers, layers)
	if cam.CrossSectionScale != nil {
		s.CrossSectionScale = *cam.CrossSectionScale
	}
	if cam.ProjectionScale != nil {
		s.ProjectionScale = *cam.ProjectionScale
	}
	if len(s.Layers) == 1 {
		switch l := s.Layers[0].(type) {
		case layer.Image:
			s.Layers[0] = l.WithOpacity(1.0)
		case layer.Segmentation:
			// segmentation opacity is left to the viewer
		}
	}
	if len(s.Layers) != 0 {
		s.SelectedLayer = &SelectedLayer{Layer: s.Layers[0].LayerName(), Visible: true}
	}
	return s
}

func copyFloats(f []float64) []float64 {
	if len(f) == 0 {
		return nil
	}
	out := make([]float64, len(f))
	copy(out, f)
	return out
}
