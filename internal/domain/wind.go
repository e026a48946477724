package domain

import (
	"fmt"
	"math"
)

// WindUnit is the declared unit of an input wind-speed series. The index
// equations require km/h; m/s inputs are converted before alignment.
type WindUnit string

const (
	MetersPerSecond   WindUnit = "m/s"
	KilometersPerHour WindUnit = "km/h"
)

// ParseWindUnit validates a wind-speed unit string. The unit must be
// declared explicitly; there is no default and no other accepted spelling.
// This is the only fatal input check in the core — everything else flows
// through as NaN.
func ParseWindUnit(s string) (WindUnit, error) {
	switch WindUnit(s) {
	case MetersPerSecond, KilometersPerHour:
		return WindUnit(s), nil
	default:
		return "", fmt.Errorf("invalid wind speed unit %q: accepted values are %q and %q",
			s, MetersPerSecond, KilometersPerHour)
	}
}

// ToKilometersPerHour converts a wind speed v expressed in the unit to km/h.
func (u WindUnit) ToKilometersPerHour(v float64) float64 {
	if u == MetersPerSecond {
		return v * 3.6
	}
	return v
}

// WindSpeedFromComponents derives wind speed from u/v vector components,
// for model output that carries components instead of a speed field.
// The result is in the same unit as the components.
func WindSpeedFromComponents(u, v float64) float64 {
	return math.Sqrt(u*u + v*v)
}
