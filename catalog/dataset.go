/*
	Package catalog holds the dataset descriptions that feed the viewer-state compiler.
	Datasets are read from a blob bucket and validated once at this boundary so the
	compiler can assume complete, well-typed input.
*/
package catalog

import (
	"fmt"
	"strconv"

	"github.com/janelia-flyem/ngportal/space"
)

// SampleType is whether voxel values are continuous intensities or discrete object ids.
type SampleType string

const (
	Scalar SampleType = "scalar"
	Label  SampleType = "label"
)

// Supported returns true for the sample types that have a renderer.
func (st SampleType) Supported() bool {
	return st == Scalar || st == Label
}

// ContrastLimits is the contrast window of a scalar source.  Min <= Start <= End <= Max
// is expected but not enforced.
type ContrastLimits struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// DisplaySettings are the rendering parameters of one source.
type DisplaySettings struct {
	ContrastLimits ContrastLimits `json:"contrastLimits"`
	Color          string         `json:"color,omitempty"`
	InvertLUT      bool           `json:"invertLUT"`
}

// MaxSegmentID is the largest id the viewer reads back exactly.  Ids are written
// as JSON numbers, which the viewer parses as doubles.
const MaxSegmentID = 1<<53 - 1

// MeshSource is a mesh or skeleton representation tied to a label source.
type MeshSource struct {
	Name      string                 `json:"name,omitempty"`
	URL       string                 `json:"url"`
	Format    string                 `json:"format"`
	Transform space.SpatialTransform `json:"transform"`
	IDs       []uint64               `json:"ids,omitempty"`
}

// VolumeSource is one addressable array of a dataset.
type VolumeSource struct {
	Name            string                 `json:"name"`
	Description     string                 `json:"description,omitempty"`
	URL             string                 `json:"url"`
	Format          string                 `json:"format"`
	Transform       space.SpatialTransform `json:"transform"`
	SampleType      SampleType             `json:"sampleType"`
	ContentType     string                 `json:"contentType,omitempty"`
	DisplaySettings DisplaySettings        `json:"displaySettings"`
	Subsources      []MeshSource           `json:"subsources,omitempty"`
}

// View is a camera preset plus a selection of sources.
type View struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	SourceNames []string  `json:"sourceNames"`
	Position    []float64 `json:"position,omitempty"`
	Scale       *float64  `json:"scale,omitempty"`
	Orientation []float64 `json:"orientation,omitempty"`
}

// Dataset is a named collection of sources and views.
type Dataset struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Sources     []VolumeSource `json:"sources"`
	Views       []View         `json:"views,omitempty"`
}

// Source returns the named source.
func (d *Dataset) Source(name string) (VolumeSource, bool) {
	for _, src := range d.Sources {
		if src.Name == name {
			return src, true
		}
	}
	return VolumeSource{}, false
}

// SourceNames returns all source names in catalog order.
func (d *Dataset) SourceNames() []string {
	names := make([]string, len(d.Sources))
	for i, src := range d.Sources {
		names[i] = src.Name
	}
	return names
}

// View returns a view given either its index in the view list or its name.
func (d *Dataset) View(key string) (View, bool) {
	if i, err := strconv.Atoi(key); err == nil {
		if i >= 0 && i < len(d.Views) {
			return d.Views[i], true
		}
		return View{}, false
	}
	for _, v := range d.Views {
		if v.Name == key {
			return v, true
		}
	}
	return View{}, false
}

// DefaultView returns the first view, or if the dataset has none, a view over the
// first source with no camera settings.
func (d *Dataset) DefaultView() View {
	if len(d.Views) != 0 {
		return d.Views[0]
	}
	v := View{Name: "Default view"}
	if len(d.Sources) != 0 {
		v.SourceNames = []string{d.Sources[0].Name}
	}
	return v
}

// Validate checks the invariants a schema can't express or that Go-built datasets
// may miss: unique source names, views that name existing sources at most once,
// and segment ids within MaxSegmentID.
func (d *Dataset) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("dataset has no name")
	}
	names := make(map[string]struct{}, len(d.Sources))
	for _, src := range d.Sources {
		if _, dup := names[src.Name]; dup {
			return fmt.Errorf("dataset %q has duplicate source %q", d.Name, src.Name)
		}
		names[src.Name] = struct{}{}
		for _, sub := range src.Subsources {
			for _, id := range sub.IDs {
				if id > MaxSegmentID {
					return fmt.Errorf("dataset %q source %q has segment id %d above %d", d.Name, src.Name, id, uint64(MaxSegmentID))
				}
			}
		}
	}
	for i, v := range d.Views {
		inView := make(map[string]struct{}, len(v.SourceNames))
		for _, name := range v.SourceNames {
			if _, found := names[name]; !found {
				return fmt.Errorf("dataset %q view %d (%q) references unknown source %q", d.Name, i, v.Name, name)
			}
			if _, dup := inView[name]; dup {
				return fmt.Errorf("dataset %q view %d (%q) lists source %q more than once", d.Name, i, v.Name, name)
			}
			inView[name] = struct{}{}
		}
	}
	return nil
}
