package floats

import (
	"math"
	"slices"
)

func Midpoint(x, y float64) float64 {
	return x + (y-x)/2.0
}

func Clamp(x, lo, hi float64) float64 {
	if lo > hi {
		panic("unexpected bounds")
	}
	switch {
	case math.IsNaN(x):
		return lo
	case x < lo:
		return lo
	case x > hi:
		return hi
	default:
		return x
	}
}

// Clamp01 maps x into [0, 1]. NaN maps to 0.
func Clamp01(x float64) float64 {
	return Clamp(x, 0.0, 1.0)
}

// Lerp interpolates linearly between (x0, y0) and (x1, y1). The endpoints are
// returned exactly, without rounding through the slope.
func Lerp(x0, y0, x1, y1, x float64) float64 {
	switch x {
	case x0:
		return y0
	case x1:
		return y1
	}
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}

func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func Median(fs []float64) float64 {
	n := len(fs)
	if n == 0 {
		panic("unexpected number of values")
	}
	slices.Sort(fs)
	i := n / 2
	if n%2 != 0 {
		return fs[i]
	}
	return Midpoint(fs[i-1], fs[i])
}
