// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package units converts measurement values to SI through a fixed,
// process-wide registry of unit symbols.
// Implements: prd002-normalization (R3);
//
//	docs/ARCHITECTURE § Unit Conversion.
package units

// Conversion maps one unit symbol to its SI unit. The transform is
// affine: si = value*Factor + Offset. Offset is zero for everything
// except temperature scales.
type Conversion struct {
	// SI is the SI base or standard derived unit symbol.
	SI string

	// Factor is the multiplicative part of the conversion.
	Factor float64

	// Offset is the additive part, applied after Factor.
	Offset float64
}

// ToSI converts a value expressed in this unit to SI.
func (c Conversion) ToSI(value float64) float64 {
	return value*c.Factor + c.Offset
}

// FromSI converts an SI value back to this unit.
func (c Conversion) FromSI(si float64) float64 {
	return (si - c.Offset) / c.Factor
}

// registry is the fixed symbol table covering length, pressure/stress,
// temperature, energy, thermal conductivity, electrical conductivity
// and resistivity, and density. Read-only after init; safe to share
// without locking (R3.1).
var registry = map[string]Conversion{
	// Length
	"nm": {SI: "m", Factor: 1e-9},
	"μm": {SI: "m", Factor: 1e-6},
	"um": {SI: "m", Factor: 1e-6},
	"mm": {SI: "m", Factor: 1e-3},
	"cm": {SI: "m", Factor: 1e-2},
	"m":  {SI: "m", Factor: 1},
	"Å":  {SI: "m", Factor: 1e-10},

	// Pressure / stress
	"Pa":  {SI: "Pa", Factor: 1},
	"kPa": {SI: "Pa", Factor: 1e3},
	"MPa": {SI: "Pa", Factor: 1e6},
	"GPa": {SI: "Pa", Factor: 1e9},
	"bar": {SI: "Pa", Factor: 1e5},
	"psi": {SI: "Pa", Factor: 6894.76},
	"ksi": {SI: "Pa", Factor: 6894760},

	// Temperature. Celsius and Fahrenheit are affine:
	// K = C + 273.15, K = (F - 32)*5/9 + 273.15.
	"K":  {SI: "K", Factor: 1},
	"°C": {SI: "K", Factor: 1, Offset: 273.15},
	"°F": {SI: "K", Factor: 5.0 / 9.0, Offset: 273.15 - 32*5.0/9.0},

	// Energy
	"J":   {SI: "J", Factor: 1},
	"kJ":  {SI: "J", Factor: 1e3},
	"eV":  {SI: "J", Factor: 1.602e-19},
	"meV": {SI: "J", Factor: 1.602e-22},

	// Thermal conductivity
	"W/(m·K)": {SI: "W/(m·K)", Factor: 1},
	"W/mK":    {SI: "W/(m·K)", Factor: 1},

	// Electrical conductivity / resistivity
	"S/m":  {SI: "S/m", Factor: 1},
	"S/cm": {SI: "S/m", Factor: 100},
	"Ω·m":  {SI: "Ω·m", Factor: 1},
	"Ω·cm": {SI: "Ω·m", Factor: 0.01},

	// Density
	"kg/m³": {SI: "kg/m³", Factor: 1},
	"g/cm³": {SI: "kg/m³", Factor: 1000},
	"g/mL":  {SI: "kg/m³", Factor: 1000},
}

// Resolve looks up a unit symbol. Lookup is exact-string keyed; there is
// no fuzzy matching (R3.2). The second return is false for unknown
// symbols, and callers degrade to a low-confidence passthrough.
func Resolve(symbol string) (Conversion, bool) {
	c, ok := registry[symbol]
	return c, ok
}

// Known reports whether symbol is in the registry.
func Known(symbol string) bool {
	_, ok := registry[symbol]
	return ok
}

// Symbols returns every registered unit symbol, in map order.
func Symbols() []string {
	out := make([]string, 0, len(registry))
	for s := range registry {
		out = append(out, s)
	}
	return out
}
