// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package units

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func TestResolveKnownSymbols(t *testing.T) {
	tests := []struct {
		symbol string
		si     string
		factor float64
	}{
		{"MPa", "Pa", 1e6},
		{"GPa", "Pa", 1e9},
		{"psi", "Pa", 6894.76},
		{"nm", "m", 1e-9},
		{"Å", "m", 1e-10},
		{"eV", "J", 1.602e-19},
		{"S/cm", "S/m", 100},
		{"Ω·cm", "Ω·m", 0.01},
		{"g/cm³", "kg/m³", 1000},
		{"W/mK", "W/(m·K)", 1},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			c, ok := Resolve(tt.symbol)
			if !ok {
				t.Fatalf("Resolve(%q) not found", tt.symbol)
			}
			if c.SI != tt.si {
				t.Errorf("SI = %q, want %q", c.SI, tt.si)
			}
			if c.Factor != tt.factor {
				t.Errorf("Factor = %v, want %v", c.Factor, tt.factor)
			}
		})
	}
}

func TestResolveUnknownSymbol(t *testing.T) {
	if _, ok := Resolve("furlong"); ok {
		t.Error("Resolve(\"furlong\") should not be found")
	}
	if Known("xyz") {
		t.Error("Known(\"xyz\") = true, want false")
	}
}

func TestTemperatureAffineTransforms(t *testing.T) {
	tests := []struct {
		symbol string
		value  float64
		wantSI float64
	}{
		{"°C", 0, 273.15},
		{"°C", 100, 373.15},
		{"°C", -273.15, 0},
		{"°F", 32, 273.15},
		{"°F", 212, 373.15},
		{"K", 300, 300},
	}

	for _, tt := range tests {
		c, ok := Resolve(tt.symbol)
		if !ok {
			t.Fatalf("Resolve(%q) not found", tt.symbol)
		}
		got := c.ToSI(tt.value)
		if math.Abs(got-tt.wantSI) > tolerance {
			t.Errorf("ToSI(%v, %q) = %v, want %v", tt.value, tt.symbol, got, tt.wantSI)
		}
	}
}

// Round-trip: FromSI(ToSI(x)) == x for every registered symbol.
func TestRoundTripAllSymbols(t *testing.T) {
	inputs := []float64{-40, 0, 1, 250, 1e6}

	for _, symbol := range Symbols() {
		c, ok := Resolve(symbol)
		if !ok {
			t.Fatalf("Resolve(%q) not found", symbol)
		}
		for _, x := range inputs {
			got := c.FromSI(c.ToSI(x))
			// Scale tolerance for large magnitudes.
			tol := tolerance * math.Max(1, math.Abs(x))
			if math.Abs(got-x) > tol {
				t.Errorf("%s: FromSI(ToSI(%v)) = %v", symbol, x, got)
			}
		}
	}
}

// Idempotence: feeding an SI value through its own SI unit changes nothing.
func TestSIUnitsAreIdentity(t *testing.T) {
	for _, symbol := range []string{"Pa", "m", "K", "J", "S/m", "kg/m³", "W/(m·K)", "Ω·m"} {
		c, ok := Resolve(symbol)
		if !ok {
			t.Fatalf("Resolve(%q) not found", symbol)
		}
		if got := c.ToSI(42.5); got != 42.5 {
			t.Errorf("%s: ToSI(42.5) = %v, want 42.5", symbol, got)
		}
	}
}
