package layer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/janelia-flyem/ngportal/catalog"
	"github.com/janelia-flyem/ngportal/portal"
	"github.com/janelia-flyem/ngportal/shader"
	"github.com/janelia-flyem/ngportal/space"
)

// ErrNoRenderer is wrapped when an image layer is requested for a sample type the
// shader generator can't handle.
var ErrNoRenderer = errors.New("no renderer")

// SourceError reports why a source produced no layer.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %q: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// KindFor returns the layer kind a source is shown as.  The sample type decides
// when it is supported, otherwise a "segmentation" content type does.
func KindFor(src catalog.VolumeSource) Kind {
	if src.SampleType.Supported() {
		if src.SampleType == catalog.Label {
			return SegmentationKind
		}
		return ImageKind
	}
	if src.ContentType == "segmentation" {
		return SegmentationKind
	}
	return ImageKind
}

// SourceURL prefixes a data URL with its format, e.g. "n5://s3://bucket/path",
// unless the format is empty or already present.
func SourceURL(format, url string) string {
	if format == "" || strings.HasPrefix(url, format+"://") {
		return url
	}
	return format + "://" + url
}

func compileSource(format, url string, t space.SpatialTransform, out space.CoordinateSpace) (Source, error) {
	ct, err := space.Compile(t, out)
	if err != nil {
		return Source{}, err
	}
	return Source{URL: SourceURL(format, url), Transform: ct}, nil
}

// Build compiles one catalog source into a layer of the given kind.  A failure is
// returned as a *SourceError and affects only this source.
//
// For segmentation layers each subsource is compiled on its own and one that
// fails is left out of the source list without failing the layer.
func Build(src catalog.VolumeSource, kind Kind, out space.CoordinateSpace) (Layer, error) {
	primary, err := compileSource(src.Format, src.URL, src.Transform, out)
	if err != nil {
		return nil, &SourceError{Source: src.Name, Err: err}
	}
	switch kind {
	case ImageKind:
		program, ok := shader.Generate(src.DisplaySettings, src.SampleType)
		if !ok {
			return nil, &SourceError{
				Source: src.Name,
				Err:    fmt.Errorf("%w for sample type %q", ErrNoRenderer, src.SampleType),
			}
		}
		return Image{
			Source:  primary,
			Shader:  program,
			Opacity: DefaultOpacity,
			Blend:   DefaultBlend,
			Name:    src.Name,
		}, nil

	case SegmentationKind:
		sources := make([]Source, 0, 1+len(src.Subsources))
		sources = append(sources, primary)
		for i, sub := range src.Subsources {
			s, err := compileSource(sub.Format, sub.URL, sub.Transform, out)
			if err != nil {
				portal.Warningf("source %q: skipping subsource %d (%s): %v\n", src.Name, i, sub.URL, err)
				continue
			}
			sources = append(sources, s)
		}
		var segments []uint64
		if len(src.Subsources) != 0 && len(src.Subsources[0].IDs) != 0 {
			segments = make([]uint64, 0, len(src.Subsources[0].IDs))
			for _, id := range src.Subsources[0].IDs {
				if id > catalog.MaxSegmentID {
					portal.Warningf("source %q: skipping segment %d, above the viewer's exact id range\n", src.Name, id)
					continue
				}
				segments = append(segments, id)
			}
			if len(segments) == 0 {
				segments = nil
			}
		}
		return Segmentation{
			Sources:  sources,
			Segments: segments,
			Color:    src.DisplaySettings.Color,
			Name:     src.Name,
		}, nil

	default:
		return nil, &SourceError{Source: src.Name, Err: fmt.Errorf("unknown layer kind %q", kind)}
	}
}
