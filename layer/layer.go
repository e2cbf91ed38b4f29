/*
	Package layer defines the viewer-ready layer variants and builds them from
	catalog sources.

	A Layer is either an Image or a Segmentation.  The interface is sealed, so a
	type switch over those two types is exhaustive.
*/
package layer

import (
	"encoding/json"
	"fmt"

	"github.com/janelia-flyem/ngportal/space"
)

// Kind is the variant tag written as the layer's "type".
type Kind string

const (
	ImageKind        Kind = "image"
	SegmentationKind Kind = "segmentation"
)

const (
	// DefaultOpacity is the opacity of a freshly built image layer.
	DefaultOpacity = 0.75

	// DefaultBlend is the blending mode of image layers.
	DefaultBlend = "additive"
)

// Layer is a compiled rendering unit.
type Layer interface {
	Kind() Kind
	LayerName() string
	sealed()
}

// Source is one addressable data source with its compiled transform.
type Source struct {
	URL       string                  `json:"url"`
	Transform space.CompiledTransform `json:"transform"`
}

// Image is a layer rendering continuous intensities with a shader.
type Image struct {
	Source  Source
	Shader  string
	Opacity float64
	Blend   string
	Name    string
}

func (Image) Kind() Kind { return ImageKind }

func (l Image) LayerName() string { return l.Name }

func (Image) sealed() {}

// WithOpacity returns a copy of the layer with the given opacity.
func (l Image) WithOpacity(opacity float64) Image {
	l.Opacity = opacity
	return l
}

type imageJSON struct {
	Type    Kind    `json:"type"`
	Source  Source  `json:"source"`
	Shader  string  `json:"shader"`
	Opacity float64 `json:"opacity"`
	Blend   string  `json:"blend"`
	Name    string  `json:"name"`
}

// MarshalJSON writes type, source, shader, opacity, blend, name in that order.
func (l Image) MarshalJSON() ([]byte, error) {
	return json.Marshal(imageJSON{
		Type:    ImageKind,
		Source:  l.Source,
		Shader:  l.Shader,
		Opacity: l.Opacity,
		Blend:   l.Blend,
		Name:    l.Name,
	})
}

// Segmentation is a layer of discrete objects drawn from a primary volume plus any
// mesh or skeleton subsources.
type Segmentation struct {
	Sources  []Source
	Segments []uint64
	Color    string
	Name     string
}

func (Segmentation) Kind() Kind { return SegmentationKind }

func (l Segmentation) LayerName() string { return l.Name }

func (Segmentation) sealed() {}

type segmentationJSON struct {
	Type     Kind     `json:"type"`
	Source   []Source `json:"source"`
	Segments []uint64 `json:"segments,omitempty"`
	Color    string   `json:"color,omitempty"`
	Name     string   `json:"name"`
}

// MarshalJSON writes type, source, segments, color, name in that order, omitting
// segments and color when unset.
func (l Segmentation) MarshalJSON() ([]byte, error) {
	return json.Marshal(segmentationJSON{
		Type:     SegmentationKind,
		Source:   l.Sources,
		Segments: l.Segments,
		Color:    l.Color,
		Name:     l.Name,
	})
}

// Decode reads one layer, choosing the variant by its "type".
func Decode(b []byte) (Layer, error) {
	var tag struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(b, &tag); err != nil {
		return nil, err
	}
	switch tag.Type {
	case ImageKind:
		var lj imageJSON
		if err := json.Unmarshal(b, &lj); err != nil {
			return nil, fmt.Errorf("bad image layer: %v", err)
		}
		return Image{
			Source:  lj.Source,
			Shader:  lj.Shader,
			Opacity: lj.Opacity,
			Blend:   lj.Blend,
			Name:    lj.Name,
		}, nil
	case SegmentationKind:
		var lj segmentationJSON
		if err := json.Unmarshal(b, &lj); err != nil {
			return nil, fmt.Errorf("bad segmentation layer: %v", err)
		}
		return Segmentation{
			Sources:  lj.Source,
			Segments: lj.Segments,
			Color:    lj.Color,
			Name:     lj.Name,
		}, nil
	default:
		return nil, fmt.Errorf("unknown layer type %q", tag.Type)
	}
}

// List is an ordered list of layers that can be decoded from JSON.
type List []Layer

func (ll *List) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}
	out := make(List, 0, len(raws))
	for i, raw := range raws {
		l, err := Decode(raw)
		if err != nil {
			return fmt.Errorf("layer %d: %v", i, err)
		}
		out = append(out, l)
	}
	*ll = out
	return nil
}
