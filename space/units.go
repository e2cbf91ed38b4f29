package space

import "strings"

// NativeUnit is the unit assumed when a source transform leaves its unit blank.
const NativeUnit = "nm"

var metersPerUnit = map[string]float64{
	"m":           1,
	"meter":       1,
	"meters":      1,
	"mm":          1e-3,
	"millimeter":  1e-3,
	"millimeters": 1e-3,
	"um":          1e-6,
	"µm":          1e-6, // micro sign
	"μm":          1e-6, // greek mu
	"micrometer":  1e-6,
	"micrometers": 1e-6,
	"micron":      1e-6,
	"microns":     1e-6,
	"nm":          1e-9,
	"nanometer":   1e-9,
	"nanometers":  1e-9,
	"angstrom":    1e-10,
	"angstroms":   1e-10,
	"Å":           1e-10,
	"pm":          1e-12,
	"picometer":   1e-12,
	"picometers":  1e-12,
}

// MetersPerUnit returns the number of meters in one of the given unit.
// A blank unit is taken as NativeUnit.
func MetersPerUnit(unit string) (float64, error) {
	u := strings.TrimSpace(unit)
	if u == "" {
		u = NativeUnit
	}
	if f, found := metersPerUnit[u]; found {
		return f, nil
	}
	if f, found := metersPerUnit[strings.ToLower(u)]; found {
		return f, nil
	}
	return 0, &UnknownUnitError{Unit: unit}
}
