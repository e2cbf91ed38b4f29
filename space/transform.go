package space

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DisplayAxes are the viewer axes every source must provide, in matrix row order.
var DisplayAxes = [3]string{"x", "y", "z"}

// SpatialTransform is a source's native grid described per named axis.  Axes, Units
// and Scale are index-aligned.  Translate is aligned with Axes or empty, which means
// no translation.  A negative scale mirrors that axis.
type SpatialTransform struct {
	Axes      []string  `json:"axes"`
	Units     []string  `json:"units"`
	Scale     []float64 `json:"scale"`
	Translate []float64 `json:"translate"`
}

func (t SpatialTransform) index(axis string) int {
	for i, name := range t.Axes {
		if name == axis {
			return i
		}
	}
	return -1
}

func (t SpatialTransform) checkAligned() error {
	n := len(t.Axes)
	if len(t.Units) != n || len(t.Scale) != n || (len(t.Translate) != 0 && len(t.Translate) != n) {
		return &MisalignedError{
			Axes:      n,
			Units:     len(t.Units),
			Scale:     len(t.Scale),
			Translate: len(t.Translate),
		}
	}
	return nil
}

// CompiledTransform is a source transform expressed relative to an output space.
// Matrix is 3x4: a diagonal of +/-1 per display axis and a translation column.
type CompiledTransform struct {
	Matrix           *mat.Dense
	OutputDimensions CoordinateSpace
	InputDimensions  CoordinateSpace
}

// Compile converts a per-source transform into one relative to the output space.
//
// For each display axis the matching source axis is found by name, so the order
// of t.Axes does not matter.  The input dimension is the absolute source scale in
// meters.  The matrix diagonal carries only the sign of the scale, with zero taken
// as positive, and the translation column is the source translation unscaled.
func Compile(t SpatialTransform, out CoordinateSpace) (CompiledTransform, error) {
	if err := t.checkAligned(); err != nil {
		return CompiledTransform{}, err
	}
	m := mat.NewDense(len(DisplayAxes), len(DisplayAxes)+1, nil)
	inAxes := make([]Axis, 0, len(DisplayAxes))
	for row, name := range DisplayAxes {
		i := t.index(name)
		if i < 0 {
			axes := make([]string, len(t.Axes))
			copy(axes, t.Axes)
			return CompiledTransform{}, &MissingAxisError{Axis: name, Axes: axes}
		}
		perUnit, err := MetersPerUnit(t.Units[i])
		if err != nil {
			return CompiledTransform{}, &UnknownUnitError{Unit: t.Units[i], Axis: name}
		}
		scale := t.Scale[i]
		sign := 1.0
		if scale < 0 {
			sign = -1.0
		}
		m.Set(row, row, sign)
		if len(t.Translate) != 0 {
			m.Set(row, len(DisplayAxes), t.Translate[i])
		}
		inAxes = append(inAxes, Axis{Name: name, Scale: math.Abs(scale) * perUnit, Unit: "m"})
	}
	return CompiledTransform{
		Matrix:           m,
		OutputDimensions: out,
		InputDimensions:  CoordinateSpace{axes: inAxes},
	}, nil
}

// Rows returns the matrix as a slice of rows.
func (ct CompiledTransform) Rows() [][]float64 {
	if ct.Matrix == nil {
		return nil
	}
	r, _ := ct.Matrix.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, ct.Matrix)
	}
	return rows
}

// Equal returns true if both transforms have equal matrices and dimensions.
func (ct CompiledTransform) Equal(other CompiledTransform) bool {
	if (ct.Matrix == nil) != (other.Matrix == nil) {
		return false
	}
	if ct.Matrix != nil && !mat.Equal(ct.Matrix, other.Matrix) {
		return false
	}
	return ct.OutputDimensions.Equal(other.OutputDimensions) && ct.InputDimensions.Equal(other.InputDimensions)
}

type compiledJSON struct {
	Matrix           [][]float64     `json:"matrix"`
	OutputDimensions CoordinateSpace `json:"outputDimensions"`
	InputDimensions  CoordinateSpace `json:"inputDimensions"`
}

// MarshalJSON writes matrix, outputDimensions, inputDimensions in that order.
func (ct CompiledTransform) MarshalJSON() ([]byte, error) {
	return json.Marshal(compiledJSON{
		Matrix:           ct.Rows(),
		OutputDimensions: ct.OutputDimensions,
		InputDimensions:  ct.InputDimensions,
	})
}

func (ct *CompiledTransform) UnmarshalJSON(b []byte) error {
	var cj compiledJSON
	if err := json.Unmarshal(b, &cj); err != nil {
		return err
	}
	if len(cj.Matrix) == 0 {
		return fmt.Errorf("compiled transform has no matrix")
	}
	cols := len(cj.Matrix[0])
	flat := make([]float64, 0, len(cj.Matrix)*cols)
	for i, row := range cj.Matrix {
		if len(row) != cols || cols == 0 {
			return fmt.Errorf("compiled transform matrix row %d has %d columns, expected %d", i, len(row), cols)
		}
		flat = append(flat, row...)
	}
	ct.Matrix = mat.NewDense(len(cj.Matrix), cols, flat)
	ct.OutputDimensions = cj.OutputDimensions
	ct.InputDimensions = cj.InputDimensions
	return nil
}
