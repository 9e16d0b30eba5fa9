// SPDX-License-Identifier: GPL-2.0-or-later

// Package math holds small numeric helpers on top of the standard library.
package math

import "math"

// AngleMod32 maps an angle in degrees into [0,360).
func AngleMod32(a float32) float32 {
	return float32(AngleMod(float64(a)))
}

// AngleMod maps an angle in degrees into [0,360).
func AngleMod(a float64) float64 {
	return a - math.Floor(a/360)*360
}
