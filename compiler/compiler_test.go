package compiler

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/janelia-flyem/ngportal/catalog"
	"github.com/janelia-flyem/ngportal/layer"
	"github.com/janelia-flyem/ngportal/portal"
	"github.com/janelia-flyem/ngportal/space"
	"github.com/janelia-flyem/ngportal/viewer"
)

func xyz(scale float64) space.SpatialTransform {
	return space.SpatialTransform{
		Axes:      []string{"x", "y", "z"},
		Units:     []string{"nm", "nm", "nm"},
		Scale:     []float64{scale, scale, scale},
		Translate: []float64{0, 0, 0},
	}
}

func testDataset() *catalog.Dataset {
	return &catalog.Dataset{
		Name: "jrc_hela-2",
		Sources: []catalog.VolumeSource{
			{
				Name:       "em",
				URL:        "s3://janelia-cosem/jrc_hela-2/em",
				Format:     "n5",
				Transform:  xyz(4),
				SampleType: catalog.Scalar,
				DisplaySettings: catalog.DisplaySettings{
					ContrastLimits: catalog.ContrastLimits{Min: 0, Max: 1, Start: 0, End: 1},
				},
			},
			{
				Name:       "mito",
				URL:        "s3://janelia-cosem/jrc_hela-2/mito",
				Format:     "n5",
				Transform:  xyz(4),
				SampleType: catalog.Label,
				Subsources: []catalog.MeshSource{
					{URL: "s3://janelia-cosem/jrc_hela-2/mesh/mito", Format: "precomputed", Transform: xyz(1), IDs: []uint64{1, 2}},
					{URL: "s3://janelia-cosem/jrc_hela-2/mesh/mito_lod", Format: "precomputed", Transform: xyz(1)},
				},
			},
			{
				Name:       "er",
				URL:        "s3://janelia-cosem/jrc_hela-2/er",
				Format:     "n5",
				SampleType: catalog.Label,
				Transform: space.SpatialTransform{
					Axes:  []string{"x", "y"},
					Units: []string{"nm", "nm"},
					Scale: []float64{4, 4},
				},
			},
			{
				Name:       "rgb",
				URL:        "s3://janelia-cosem/jrc_hela-2/rgb",
				Format:     "n5",
				SampleType: "rgb",
				Transform:  xyz(4),
			},
		},
		Views: []catalog.View{
			{Name: "Overview", SourceNames: []string{"em", "mito"}},
		},
	}
}

func TestConcreteScenario(t *testing.T) {
	ds := testDataset()
	res, err := CompileView(ds, ds.Views[0], DefaultOptions())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if res.Disabled() || len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.State.Layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(res.State.Layers))
	}
	em, ok := res.State.Layers[0].(layer.Image)
	if !ok || em.Name != "em" || em.Opacity != 0.75 {
		t.Errorf("bad em layer: %+v", res.State.Layers[0])
	}
	mito, ok := res.State.Layers[1].(layer.Segmentation)
	if !ok || mito.Name != "mito" || len(mito.Sources) != 3 {
		t.Errorf("bad mito layer: %+v", res.State.Layers[1])
	}
	if !strings.HasPrefix(res.URL, DefaultViewerHost+"#!") {
		t.Errorf("bad link: %s", res.URL)
	}
	decoded, err := viewer.Decode(res.URL)
	if err != nil {
		t.Fatalf("decode link: %v", err)
	}
	if len(decoded.Layers) != 2 || decoded.SelectedLayer.Layer != "em" {
		t.Errorf("link doesn't decode to the compiled state: %+v", decoded)
	}
}

func TestPartialFailure(t *testing.T) {
	logs, restore := portal.UseMemoryLogger()
	defer restore()

	ds := testDataset()
	res, err := Compile(ds, Selection{SourceNames: []string{"em", "er", "mito"}}, DefaultOptions())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(res.State.Layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(res.State.Layers))
	}
	for _, l := range res.State.Layers {
		if l.LayerName() == "er" {
			t.Errorf("axis-incomplete source appears in output")
		}
	}
	if strings.Contains(res.URL, "%22er%22") {
		t.Errorf("axis-incomplete source appears in link")
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Source != "er" {
		t.Fatalf("expected one diagnostic for er, got %v", res.Diagnostics)
	}
	var missing *space.MissingAxisError
	if !errors.As(res.Diagnostics[0].Err, &missing) || missing.Axis != "z" {
		t.Errorf("diagnostic should carry the missing axis: %v", res.Diagnostics[0].Err)
	}
	if !logs.Contains("WARNING", `dropping source "er"`) {
		t.Errorf("expected warning in log, got %v", logs.Lines())
	}
}

func TestUnsupportedAndUnknown(t *testing.T) {
	_, restore := portal.UseMemoryLogger()
	defer restore()

	ds := testDataset()
	res, err := Compile(ds, Selection{SourceNames: []string{"rgb", "nope", "em"}}, DefaultOptions())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(res.State.Layers) != 1 || res.State.Layers[0].LayerName() != "em" {
		t.Fatalf("expected only em layer, got %v", res.State.Layers)
	}
	if got := res.State.Layers[0].(layer.Image).Opacity; got != 1 {
		t.Errorf("lone image layer should be opaque, got %g", got)
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %v", res.Diagnostics)
	}
	if !errors.Is(res.Diagnostics[0].Err, layer.ErrNoRenderer) {
		t.Errorf("rgb should fail with no renderer: %v", res.Diagnostics[0].Err)
	}
	if !strings.Contains(res.Diagnostics[1].Err.Error(), `no source "nope"`) {
		t.Errorf("bad unknown-source diagnostic: %v", res.Diagnostics[1].Err)
	}

	b, err := json.Marshal(res.Diagnostics[1])
	if err != nil {
		t.Fatalf("marshal diagnostic: %v", err)
	}
	if string(b) != `{"source":"nope","error":"no source \"nope\" in dataset"}` {
		t.Errorf("bad diagnostic JSON: %s", b)
	}
}

func TestRepeatedSource(t *testing.T) {
	ds := testDataset()
	res, err := Compile(ds, Selection{SourceNames: []string{"em", "em"}}, DefaultOptions())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(res.State.Layers) != 1 {
		t.Fatalf("expected one layer for a repeated source, got %d", len(res.State.Layers))
	}
	img, ok := res.State.Layers[0].(layer.Image)
	if !ok || img.Opacity != 1.0 {
		t.Errorf("lone em layer should be opaque: %+v", res.State.Layers[0])
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Source != "em" ||
		!strings.Contains(res.Diagnostics[0].Err.Error(), "already selected") {
		t.Errorf("expected one repeated-source diagnostic, got %v", res.Diagnostics)
	}

	res, err = Compile(ds, Selection{SourceNames: []string{"mito", "em", "mito"}}, DefaultOptions())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	var names []string
	for _, l := range res.State.Layers {
		names = append(names, l.LayerName())
	}
	if strings.Join(names, ",") != "mito,em" {
		t.Errorf("expected layers mito,em, got %v", names)
	}
	if res.State.SelectedLayer == nil || res.State.SelectedLayer.Layer != "mito" {
		t.Errorf("bad selected layer: %+v", res.State.SelectedLayer)
	}
}

func TestEmptySelection(t *testing.T) {
	ds := testDataset()
	res, err := Compile(ds, Selection{}, DefaultOptions())
	if err != nil {
		t.Fatalf("empty selection should not be an error: %v", err)
	}
	if !res.Disabled() || res.State != nil || res.URL != "" {
		t.Errorf("empty selection should give a disabled link: %+v", res)
	}
}

func TestBadOptions(t *testing.T) {
	ds := testDataset()
	if _, err := Compile(ds, Selection{}, Options{OutputSpace: space.DefaultOutputSpace()}); err == nil {
		t.Errorf("expected error without viewer host")
	}
	if _, err := Compile(ds, Selection{}, Options{ViewerHost: DefaultViewerHost}); err == nil {
		t.Errorf("expected error without output space")
	}
	if _, err := Compile(nil, Selection{}, DefaultOptions()); err == nil {
		t.Errorf("expected error without dataset")
	}
}

func TestFromView(t *testing.T) {
	scale := 8.0
	v := catalog.View{
		Name:        "close",
		SourceNames: []string{"em"},
		Position:    []float64{1, 2, 3},
		Scale:       &scale,
		Orientation: []float64{0, 0, 0, 1},
	}
	sel := FromView(v)
	if sel.Camera.CrossSectionScale == nil || *sel.Camera.CrossSectionScale != 8 {
		t.Errorf("view scale should set cross-section scale")
	}
	sel.SourceNames[0] = "changed"
	if v.SourceNames[0] != "em" {
		t.Errorf("selection aliases view source names")
	}

	res, err := Compile(testDataset(), FromView(v), DefaultOptions())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if res.State.CrossSectionScale != 8 || res.State.ProjectionScale != viewer.DefaultProjectionScale {
		t.Errorf("camera not applied: %+v", res.State)
	}
}
