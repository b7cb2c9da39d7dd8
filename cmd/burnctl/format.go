package main

import "math"

// finite returns nil for an infinite or NaN value.
func finite(f float64) *float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}
