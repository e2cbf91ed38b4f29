/*
	Package space models coordinate spaces and compiles axis-labelled source
	transforms into the viewer's global coordinate space.
*/
package space

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Axis is one named dimension of a coordinate space with its physical scale and unit.
type Axis struct {
	Name  string
	Scale float64
	Unit  string
}

// CoordinateSpace is an ordered set of orthogonal axes.  Order is part of the
// contract: it is the key order used when the space is serialized, e.g.,
//
//	{"x": [1e-9, "m"], "y": [1e-9, "m"], "z": [1e-9, "m"]}
type CoordinateSpace struct {
	axes []Axis
}

// NewCoordinateSpace returns a space with the given axes in order.  Axis names must
// be unique and non-empty, and every scale must be positive.
func NewCoordinateSpace(axes ...Axis) (CoordinateSpace, error) {
	return newSpace(axes, false)
}

// newSpace validates and copies axes.  Decoded spaces may carry zero scales since
// a zero source scale compiles to a zero input dimension.
func newSpace(axes []Axis, allowZero bool) (CoordinateSpace, error) {
	seen := make(map[string]struct{}, len(axes))
	for _, a := range axes {
		if a.Name == "" {
			return CoordinateSpace{}, fmt.Errorf("coordinate space axis has no name")
		}
		if _, dup := seen[a.Name]; dup {
			return CoordinateSpace{}, fmt.Errorf("duplicate axis %q in coordinate space", a.Name)
		}
		if !(a.Scale > 0) && !(allowZero && a.Scale == 0) {
			return CoordinateSpace{}, fmt.Errorf("axis %q has non-positive scale %g", a.Name, a.Scale)
		}
		seen[a.Name] = struct{}{}
	}
	cp := make([]Axis, len(axes))
	copy(cp, axes)
	return CoordinateSpace{axes: cp}, nil
}

// MustCoordinateSpace is like NewCoordinateSpace but panics on invalid axes.
// It is meant for package-level constants and tests.
func MustCoordinateSpace(axes ...Axis) CoordinateSpace {
	cs, err := NewCoordinateSpace(axes...)
	if err != nil {
		panic(err)
	}
	return cs
}

// DefaultOutputSpace returns the x, y, z space at one nanometer per unit.
func DefaultOutputSpace() CoordinateSpace {
	return MustCoordinateSpace(
		Axis{Name: "x", Scale: 1e-9, Unit: "m"},
		Axis{Name: "y", Scale: 1e-9, Unit: "m"},
		Axis{Name: "z", Scale: 1e-9, Unit: "m"},
	)
}

// Axes returns a copy of the axes in order.
func (cs CoordinateSpace) Axes() []Axis {
	out := make([]Axis, len(cs.axes))
	copy(out, cs.axes)
	return out
}

// NumDims returns the number of axes.
func (cs CoordinateSpace) NumDims() int {
	return len(cs.axes)
}

// Axis returns the named axis and true, or false if the space lacks it.
func (cs CoordinateSpace) Axis(name string) (Axis, bool) {
	for _, a := range cs.axes {
		if a.Name == name {
			return a, true
		}
	}
	return Axis{}, false
}

// Equal returns true if both spaces have the same axes in the same order.
func (cs CoordinateSpace) Equal(other CoordinateSpace) bool {
	if len(cs.axes) != len(other.axes) {
		return false
	}
	for i := range cs.axes {
		if cs.axes[i] != other.axes[i] {
			return false
		}
	}
	return true
}

func (cs CoordinateSpace) String() string {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, a := range cs.axes {
		if i != 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: %g %s", a.Name, a.Scale, a.Unit)
	}
	buf.WriteString("}")
	return buf.String()
}

// MarshalJSON writes the axes as a JSON object in axis order.
func (cs CoordinateSpace) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range cs.axes {
		if i != 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		scale, err := json.Marshal(a.Scale)
		if err != nil {
			return nil, err
		}
		unit, err := json.Marshal(a.Unit)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteString(":[")
		buf.Write(scale)
		buf.WriteByte(',')
		buf.Write(unit)
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of [scale, unit] pairs, keeping key order.
func (cs *CoordinateSpace) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("coordinate space must be a JSON object, got %v", tok)
	}
	var axes []Axis
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("bad coordinate space key %v", tok)
		}
		var pair []json.RawMessage
		if err := dec.Decode(&pair); err != nil {
			return fmt.Errorf("axis %q: %v", name, err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("axis %q must be a [scale, unit] pair", name)
		}
		a := Axis{Name: name}
		if err := json.Unmarshal(pair[0], &a.Scale); err != nil {
			return fmt.Errorf("axis %q scale: %v", name, err)
		}
		if err := json.Unmarshal(pair[1], &a.Unit); err != nil {
			return fmt.Errorf("axis %q unit: %v", name, err)
		}
		axes = append(axes, a)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	parsed, err := newSpace(axes, true)
	if err != nil {
		return err
	}
	*cs = parsed
	return nil
}
