/*
	Package shader writes the rendering-control programs the viewer runs for
	each image layer.
*/
package shader

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"text/template"

	"github.com/janelia-flyem/ngportal/catalog"
)

// DefaultColor is used when a scalar source has no display color or one that
// isn't a "#rrggbb" hex string or a bare color name.
const DefaultColor = "white"

// colorPattern must match the catalog schema's color pattern.
var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{6}|[a-zA-Z]+)$`)

// The only computation in the program is a linear remap of the window followed by
// an optional flip about 0.5.
const scalarProgram = `#uicontrol invlerp normalized(range=[{{num .Start}}, {{num .End}}], window=[{{num .Min}}, {{num .Max}}])
#uicontrol int invertColormap slider(min=0, max=1, step=1, default={{.Invert}})
#uicontrol vec3 color color(default="{{.Color}}")
float inverter(float val, int invert) {return 0.5 + ((2.0 * (-float(invert) + 0.5)) * (val - 0.5));}
void main() {
  emitRGB(color * inverter(normalized(), invertColormap));
}`

var scalarTemplate = template.Must(template.New("scalar").Funcs(template.FuncMap{
	"num": formatNumber,
}).Parse(scalarProgram))

type scalarArgs struct {
	catalog.ContrastLimits
	Invert int
	Color  string
}

// formatNumber writes v the way a JSON encoder would, which is also how the
// viewer's own state serializer writes numbers.
func formatNumber(v float64) string {
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Generate returns the shader for a source with the given settings and sample type.
// Label sources get the empty string, which leaves the viewer's default segment
// renderer in place.  The boolean is false if no renderer exists for the sample type.
func Generate(s catalog.DisplaySettings, st catalog.SampleType) (string, bool) {
	switch st {
	case catalog.Label:
		return "", true
	case catalog.Scalar:
		args := scalarArgs{
			ContrastLimits: s.ContrastLimits,
			Color:          s.Color,
		}
		if !colorPattern.MatchString(args.Color) {
			args.Color = DefaultColor
		}
		if s.InvertLUT {
			args.Invert = 1
		}
		var buf bytes.Buffer
		if err := scalarTemplate.Execute(&buf, args); err != nil {
			return "", false
		}
		return buf.String(), true
	default:
		return "", false
	}
}
