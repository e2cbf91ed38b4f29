package space

import "fmt"

// MissingAxisError is returned when a transform lacks one of the display axes.
type MissingAxisError struct {
	Axis string
	Axes []string
}

func (e *MissingAxisError) Error() string {
	return fmt.Sprintf("transform axes %v lack display axis %q", e.Axes, e.Axis)
}

// MisalignedError is returned when the per-axis arrays of a transform differ in length.
type MisalignedError struct {
	Axes, Units, Scale, Translate int
}

func (e *MisalignedError) Error() string {
	return fmt.Sprintf("transform arrays not aligned: %d axes, %d units, %d scales, %d translations",
		e.Axes, e.Units, e.Scale, e.Translate)
}

// UnknownUnitError is returned when a unit cannot be converted to meters.
type UnknownUnitError struct {
	Unit string
	Axis string // set when the unit came from a transform axis
}

func (e *UnknownUnitError) Error() string {
	if e.Axis != "" {
		return fmt.Sprintf("unknown unit %q for axis %q", e.Unit, e.Axis)
	}
	return fmt.Sprintf("unknown unit %q", e.Unit)
}
