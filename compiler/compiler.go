/*
	Package compiler turns a dataset view, or any selection of a dataset's sources,
	into a viewer link.  Sources that can't be compiled are left out and reported
	as diagnostics; they never fail the whole link.
*/
package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/janelia-flyem/ngportal/catalog"
	"github.com/janelia-flyem/ngportal/layer"
	"github.com/janelia-flyem/ngportal/portal"
	"github.com/janelia-flyem/ngportal/space"
	"github.com/janelia-flyem/ngportal/viewer"
)

// DefaultViewerHost is the public Neuroglancer deployment.
const DefaultViewerHost = "https://neuroglancer-demo.appspot.com/"

// Options set where links point and which global space layers are compiled into.
type Options struct {
	ViewerHost  string
	OutputSpace space.CoordinateSpace
}

// DefaultOptions returns options for the public viewer and the nanometer x, y, z space.
func DefaultOptions() Options {
	return Options{
		ViewerHost:  DefaultViewerHost,
		OutputSpace: space.DefaultOutputSpace(),
	}
}

// Selection is the set of sources to show, in layer order, plus camera settings.
type Selection struct {
	SourceNames []string
	Camera      viewer.Camera
}

// FromView converts a catalog view into a selection.
func FromView(v catalog.View) Selection {
	names := make([]string, len(v.SourceNames))
	copy(names, v.SourceNames)
	return Selection{
		SourceNames: names,
		Camera: viewer.Camera{
			Position:          v.Position,
			CrossSectionScale: v.Scale,
			Orientation:       v.Orientation,
		},
	}
}

// Diagnostic records a selected source that produced no layer.
type Diagnostic struct {
	Source string
	Err    error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %v", d.Source, d.Err)
}

// MarshalJSON writes the diagnostic as {"source": ..., "error": ...}.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	msg := ""
	if d.Err != nil {
		msg = d.Err.Error()
	}
	return json.Marshal(struct {
		Source string `json:"source"`
		Error  string `json:"error"`
	}{d.Source, msg})
}

// Result is the outcome of compiling one selection.  When nothing could be shown,
// State is nil and URL is empty, which is a disabled link and not an error.
type Result struct {
	State       *viewer.State
	URL         string
	Diagnostics []Diagnostic
}

// Disabled returns true if there is no link to show.
func (r *Result) Disabled() bool {
	return r.URL == ""
}

// Compile builds the link for a selection of the dataset's sources.  The only error
// returned is for unusable options; per-source problems become diagnostics.
func Compile(ds *catalog.Dataset, sel Selection, opts Options) (*Result, error) {
	if ds == nil {
		return nil, fmt.Errorf("no dataset given for compilation")
	}
	if opts.ViewerHost == "" {
		return nil, fmt.Errorf("no viewer host given for dataset %q", ds.Name)
	}
	if opts.OutputSpace.NumDims() == 0 {
		return nil, fmt.Errorf("no output coordinate space given for dataset %q", ds.Name)
	}

	result := &Result{}
	layers := make([]layer.Layer, 0, len(sel.SourceNames))
	seen := make(map[string]struct{}, len(sel.SourceNames))
	for _, name := range sel.SourceNames {
		if _, dup := seen[name]; dup {
			result.addDiagnostic(ds.Name, name, fmt.Errorf("source %q already selected", name))
			continue
		}
		seen[name] = struct{}{}
		src, found := ds.Source(name)
		if !found {
			result.addDiagnostic(ds.Name, name, fmt.Errorf("no source %q in dataset", name))
			continue
		}
		l, err := layer.Build(src, layer.KindFor(src), opts.OutputSpace)
		if err != nil {
			result.addDiagnostic(ds.Name, name, err)
			continue
		}
		layers = append(layers, l)
	}
	if len(layers) == 0 {
		portal.Debugf("dataset %q: no layers to show for selection %v\n", ds.Name, sel.SourceNames)
		return result, nil
	}

	state := viewer.Assemble(layers, sel.Camera, opts.OutputSpace)
	link, err := viewer.Link(opts.ViewerHost, state)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", ds.Name, err)
	}
	result.State = state
	result.URL = link
	return result, nil
}

// CompileView builds the link for one of the dataset's views.
func CompileView(ds *catalog.Dataset, v catalog.View, opts Options) (*Result, error) {
	return Compile(ds, FromView(v), opts)
}

func (r *Result) addDiagnostic(dataset, source string, err error) {
	portal.Warningf("dataset %q: dropping source %q: %v\n", dataset, source, err)
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Source: source, Err: err})
}
