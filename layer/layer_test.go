package layer

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/janelia-flyem/ngportal/catalog"
	"github.com/janelia-flyem/ngportal/portal"
	"github.com/janelia-flyem/ngportal/space"
)

func xyz(scale float64) space.SpatialTransform {
	return space.SpatialTransform{
		Axes:      []string{"x", "y", "z"},
		Units:     []string{"nm", "nm", "nm"},
		Scale:     []float64{scale, scale, scale},
		Translate: []float64{0, 0, 0},
	}
}

func emSource() catalog.VolumeSource {
	return catalog.VolumeSource{
		Name:       "em",
		URL:        "s3://janelia-cosem/jrc_hela-2/em",
		Format:     "n5",
		Transform:  xyz(4),
		SampleType: catalog.Scalar,
		DisplaySettings: catalog.DisplaySettings{
			ContrastLimits: catalog.ContrastLimits{Min: 0, Max: 1, Start: 0, End: 1},
		},
	}
}

func mitoSource() catalog.VolumeSource {
	return catalog.VolumeSource{
		Name:        "mito",
		URL:         "s3://janelia-cosem/jrc_hela-2/mito",
		Format:      "n5",
		Transform:   xyz(4),
		SampleType:  catalog.Label,
		ContentType: "segmentation",
		DisplaySettings: catalog.DisplaySettings{
			Color: "green",
		},
		Subsources: []catalog.MeshSource{
			{URL: "s3://janelia-cosem/jrc_hela-2/mesh/mito", Format: "precomputed", Transform: xyz(1), IDs: []uint64{4, 8, 15}},
			{URL: "s3://janelia-cosem/jrc_hela-2/skeleton/mito", Format: "precomputed", Transform: xyz(1)},
		},
	}
}

func TestBuildImage(t *testing.T) {
	l, err := Build(emSource(), ImageKind, space.DefaultOutputSpace())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	img, ok := l.(Image)
	if !ok {
		t.Fatalf("expected image layer, got %T", l)
	}
	if img.Kind() != ImageKind || img.LayerName() != "em" {
		t.Errorf("bad image layer identity: %s %q", img.Kind(), img.LayerName())
	}
	if img.Opacity != DefaultOpacity || img.Blend != "additive" {
		t.Errorf("bad image defaults: opacity %g blend %q", img.Opacity, img.Blend)
	}
	if img.Source.URL != "n5://s3://janelia-cosem/jrc_hela-2/em" {
		t.Errorf("bad source url %q", img.Source.URL)
	}
	if !strings.Contains(img.Shader, "invlerp normalized") {
		t.Errorf("image layer lacks scalar shader: %q", img.Shader)
	}
}

func TestBuildSegmentation(t *testing.T) {
	src := mitoSource()
	l, err := Build(src, SegmentationKind, space.DefaultOutputSpace())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	seg, ok := l.(Segmentation)
	if !ok {
		t.Fatalf("expected segmentation layer, got %T", l)
	}
	if len(seg.Sources) != 3 {
		t.Fatalf("expected primary + 2 subsources, got %d", len(seg.Sources))
	}
	if seg.Sources[1].URL != "precomputed://s3://janelia-cosem/jrc_hela-2/mesh/mito" {
		t.Errorf("bad subsource url %q", seg.Sources[1].URL)
	}
	if len(seg.Segments) != 3 || seg.Segments[2] != 15 || seg.Color != "green" {
		t.Errorf("bad segments/color: %v %q", seg.Segments, seg.Color)
	}

	// segments must not alias the catalog slice
	seg.Segments[0] = 99
	if src.Subsources[0].IDs[0] != 4 {
		t.Errorf("build aliased subsource ids")
	}

	bare := mitoSource()
	bare.Subsources = nil
	l, err = Build(bare, SegmentationKind, space.DefaultOutputSpace())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	seg = l.(Segmentation)
	if len(seg.Sources) != 1 || seg.Segments != nil {
		t.Errorf("segmentation without subsources: %+v", seg)
	}
}

func TestBuildSegmentIDLimit(t *testing.T) {
	logs, restore := portal.UseMemoryLogger()
	defer restore()

	src := mitoSource()
	src.Subsources[0].IDs = []uint64{1, catalog.MaxSegmentID, catalog.MaxSegmentID + 2}
	l, err := Build(src, SegmentationKind, space.DefaultOutputSpace())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	seg := l.(Segmentation)
	if len(seg.Segments) != 2 || seg.Segments[1] != catalog.MaxSegmentID {
		t.Errorf("expected ids above the exact range dropped, got %v", seg.Segments)
	}
	b, err := json.Marshal(seg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"segments":[1,9007199254740991]`) {
		t.Errorf("bad segments JSON: %s", b)
	}
	if !logs.Contains("WARNING", "skipping segment 9007199254740993") {
		t.Errorf("expected warning for dropped segment, got %v", logs.Lines())
	}

	src.Subsources[0].IDs = []uint64{catalog.MaxSegmentID + 1}
	l, err = Build(src, SegmentationKind, space.DefaultOutputSpace())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if segs := l.(Segmentation).Segments; segs != nil {
		t.Errorf("expected no segments, got %v", segs)
	}
}

func TestBuildBadSubsource(t *testing.T) {
	logs, restore := portal.UseMemoryLogger()
	defer restore()

	src := mitoSource()
	src.Subsources[1].Transform.Axes = []string{"x", "y", "t"}
	l, err := Build(src, SegmentationKind, space.DefaultOutputSpace())
	if err != nil {
		t.Fatalf("bad subsource should not fail the layer: %v", err)
	}
	if n := len(l.(Segmentation).Sources); n != 2 {
		t.Errorf("expected the bad subsource to be skipped, got %d sources", n)
	}
	if !logs.Contains("WARNING", "skipping subsource 1") {
		t.Errorf("expected warning for skipped subsource, got %v", logs.Lines())
	}
}

func TestBuildFailures(t *testing.T) {
	out := space.DefaultOutputSpace()

	src := emSource()
	src.Transform.Axes = []string{"x", "y", "c"}
	_, err := Build(src, ImageKind, out)
	var srcErr *SourceError
	var missing *space.MissingAxisError
	if !errors.As(err, &srcErr) || srcErr.Source != "em" || !errors.As(err, &missing) {
		t.Errorf("expected source error wrapping missing axis, got %v", err)
	}

	src = emSource()
	src.SampleType = "rgb"
	_, err = Build(src, ImageKind, out)
	if !errors.Is(err, ErrNoRenderer) {
		t.Errorf("expected no renderer error, got %v", err)
	}

	// segmentation layers don't need a shader
	if _, err = Build(src, SegmentationKind, out); err != nil {
		t.Errorf("unsupported sample type should still build as segmentation: %v", err)
	}

	if _, err = Build(emSource(), Kind("annotation"), out); err == nil {
		t.Errorf("expected error for unknown kind")
	}
}

func TestBuildPure(t *testing.T) {
	out := space.DefaultOutputSpace()
	for _, src := range []catalog.VolumeSource{emSource(), mitoSource()} {
		a, err := Build(src, KindFor(src), out)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		b, _ := Build(src, KindFor(src), out)
		ja, _ := json.Marshal(a)
		jb, _ := json.Marshal(b)
		if string(ja) != string(jb) {
			t.Errorf("build of %q not deterministic:\n%s\n%s", src.Name, ja, jb)
		}
	}
}

func TestKindFor(t *testing.T) {
	tests := []struct {
		sampleType  catalog.SampleType
		contentType string
		expect      Kind
	}{
		{catalog.Scalar, "segmentation", ImageKind},
		{catalog.Label, "em", SegmentationKind},
		{"rgb", "segmentation", SegmentationKind},
		{"rgb", "lm", ImageKind},
		{"", "segmentation", SegmentationKind},
	}
	for _, tc := range tests {
		got := KindFor(catalog.VolumeSource{SampleType: tc.sampleType, ContentType: tc.contentType})
		if got != tc.expect {
			t.Errorf("KindFor(%q, %q) = %s, expected %s", tc.sampleType, tc.contentType, got, tc.expect)
		}
	}
}

func TestSourceURL(t *testing.T) {
	tests := []struct{ format, url, expect string }{
		{"n5", "s3://bucket/a", "n5://s3://bucket/a"},
		{"", "https://host/a", "https://host/a"},
		{"zarr", "zarr://https://host/a", "zarr://https://host/a"},
	}
	for _, tc := range tests {
		if got := SourceURL(tc.format, tc.url); got != tc.expect {
			t.Errorf("SourceURL(%q, %q) = %q, expected %q", tc.format, tc.url, got, tc.expect)
		}
	}
}

func TestLayerJSON(t *testing.T) {
	out := space.DefaultOutputSpace()
	img, _ := Build(emSource(), ImageKind, out)
	b, err := json.Marshal(img)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	order := []string{`"type":"image"`, `"source":{"url"`, `"shader":`, `"opacity":0.75`, `"blend":"additive"`, `"name":"em"`}
	last := -1
	for _, key := range order {
		i := strings.Index(s, key)
		if i <= last {
			t.Fatalf("image layer key %s out of order in %s", key, s)
		}
		last = i
	}

	bare := mitoSource()
	bare.Subsources = nil
	bare.DisplaySettings.Color = ""
	seg, _ := Build(bare, SegmentationKind, out)
	b, _ = json.Marshal(seg)
	s = string(b)
	if !strings.HasPrefix(s, `{"type":"segmentation","source":[{"url":"n5://`) || !strings.HasSuffix(s, `,"name":"mito"}`) {
		t.Errorf("bad segmentation JSON: %s", s)
	}
	if strings.Contains(s, "segments") || strings.Contains(s, "color") || strings.Contains(s, "null") {
		t.Errorf("unset segmentation fields should be omitted: %s", s)
	}

	full, _ := Build(mitoSource(), SegmentationKind, out)
	var list List
	payload, _ := json.Marshal([]Layer{img, full})
	if err := json.Unmarshal(payload, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 || list[0].Kind() != ImageKind || list[1].Kind() != SegmentationKind {
		t.Fatalf("bad decoded list: %v", list)
	}
	again, _ := json.Marshal(list)
	if string(again) != string(payload) {
		t.Errorf("layer list changed on round trip:\n%s\n%s", payload, again)
	}
	if err := json.Unmarshal([]byte(`[{"type":"annotation"}]`), &list); err == nil {
		t.Errorf("expected error on unknown layer type")
	}
}
