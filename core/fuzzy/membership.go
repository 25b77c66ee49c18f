package fuzzy

import (
	"fmt"
	"math"

	"example.com/fuzzy-control/base/floats"
)

// MembershipFunc maps a crisp value to a degree of membership in [0, 1].
type MembershipFunc interface {
	Degree(x float64) float64
	// Representative is the crisp value a category stands for when it is
	// used as a conclusion.
	Representative() float64
	Validate() error
}

type Point struct {
	X, Y float64
}

// Shoulder saturates at Start.Y left of Start.X and at End.Y right of End.X,
// with a linear ramp in between. Min and Max bound the axis it lives on.
type Shoulder struct {
	Min, Max   float64
	Start, End Point
}

// Triangle is 0 outside (Left, Right) and 1 at Peak.
type Triangle struct {
	Left, Peak, Right float64
}

// Trapezoid is 0 outside (A, D) and 1 on [B, C].
type Trapezoid struct {
	A, B, C, D float64
}

func LeftShoulder(lo, hi, top, bottom float64) Shoulder {
	return Shoulder{Min: lo, Max: hi, Start: Point{top, 1}, End: Point{bottom, 0}}
}

func RightShoulder(lo, hi, bottom, top float64) Shoulder {
	return Shoulder{Min: lo, Max: hi, Start: Point{bottom, 0}, End: Point{top, 1}}
}

func (s Shoulder) Degree(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x <= s.Start.X:
		return floats.Clamp01(s.Start.Y)
	case x >= s.End.X:
		return floats.Clamp01(s.End.Y)
	}
	return floats.Clamp01(floats.Lerp(s.Start.X, s.Start.Y, s.End.X, s.End.Y, x))
}

func (s Shoulder) Representative() float64 {
	switch {
	case s.Start.Y > s.End.Y:
		return s.Min
	case s.End.Y > s.Start.Y:
		return s.Max
	default:
		return floats.Midpoint(s.Start.X, s.End.X)
	}
}

func (s Shoulder) Validate() error {
	for _, v := range []float64{s.Min, s.Max, s.Start.X, s.Start.Y, s.End.X, s.End.Y} {
		if !floats.IsFinite(v) {
			return fmt.Errorf("%w: shoulder parameter %v", ErrInvalidMembership, v)
		}
	}
	if !(s.Min < s.Max) {
		return fmt.Errorf("%w: shoulder domain [%v, %v] is empty", ErrInvalidMembership, s.Min, s.Max)
	}
	if !(s.Start.X < s.End.X) {
		return fmt.Errorf("%w: shoulder breakpoints %v, %v not increasing",
			ErrInvalidMembership, s.Start.X, s.End.X)
	}
	if s.Start.X < s.Min || s.End.X > s.Max {
		return fmt.Errorf("%w: shoulder ramp [%v, %v] outside domain [%v, %v]",
			ErrInvalidMembership, s.Start.X, s.End.X, s.Min, s.Max)
	}
	if s.Start.Y < 0 || s.Start.Y > 1 || s.End.Y < 0 || s.End.Y > 1 {
		return fmt.Errorf("%w: shoulder degrees %v, %v outside [0, 1]",
			ErrInvalidMembership, s.Start.Y, s.End.Y)
	}
	return nil
}

func (t Triangle) Degree(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x <= t.Left || x >= t.Right:
		return 0
	case x == t.Peak:
		return 1
	case x < t.Peak:
		return floats.Clamp01(floats.Lerp(t.Left, 0, t.Peak, 1, x))
	default:
		return floats.Clamp01(floats.Lerp(t.Peak, 1, t.Right, 0, x))
	}
}

func (t Triangle) Representative() float64 { return t.Peak }

func (t Triangle) Validate() error {
	if !floats.IsFinite(t.Left) || !floats.IsFinite(t.Peak) || !floats.IsFinite(t.Right) {
		return fmt.Errorf("%w: triangle parameters %v, %v, %v",
			ErrInvalidMembership, t.Left, t.Peak, t.Right)
	}
	if !(t.Left < t.Peak && t.Peak < t.Right) {
		return fmt.Errorf("%w: triangle breakpoints %v, %v, %v not increasing",
			ErrInvalidMembership, t.Left, t.Peak, t.Right)
	}
	return nil
}

func (t Trapezoid) Degree(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x <= t.A || x >= t.D:
		return 0
	case x >= t.B && x <= t.C:
		return 1
	case x < t.B:
		return floats.Clamp01(floats.Lerp(t.A, 0, t.B, 1, x))
	default:
		return floats.Clamp01(floats.Lerp(t.C, 1, t.D, 0, x))
	}
}

func (t Trapezoid) Representative() float64 { return floats.Midpoint(t.B, t.C) }

func (t Trapezoid) Validate() error {
	for _, v := range []float64{t.A, t.B, t.C, t.D} {
		if !floats.IsFinite(v) {
			return fmt.Errorf("%w: trapezoid parameter %v", ErrInvalidMembership, v)
		}
	}
	if !(t.A < t.B && t.B <= t.C && t.C < t.D) {
		return fmt.Errorf("%w: trapezoid breakpoints %v, %v, %v, %v not increasing",
			ErrInvalidMembership, t.A, t.B, t.C, t.D)
	}
	return nil
}
