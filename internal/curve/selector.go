package curve

import "math"

// Selector maps an averaged temperature to a raw duty cycle.
//
// Hysteresis is a flat offset on the breakpoint comparison: a segment applies
// once temp >= Lower-Hysteresis, whether the temperature is rising or falling.
type Selector struct {
	Curve      *Curve
	Hysteresis float64
	MinDuty    int
	MaxDuty    int
}

// Select returns the rounded duty cycle for temp, clamped to [MinDuty, MaxDuty].
// Temperatures below the first segment minus hysteresis give MinDuty.
func (s Selector) Select(temp float64) int {
	segments := s.Curve.segments
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if temp >= seg.Lower-s.Hysteresis {
			return ClampDuty(seg.Eval(temp), s.MinDuty, s.MaxDuty)
		}
	}

	return s.MinDuty
}

// ClampDuty rounds duty and bounds it to [minValue, maxValue]. The bounds are
// applied before the int conversion, which is undefined for out-of-range
// floats. NaN gives minValue.
func ClampDuty(duty float64, minValue, maxValue int) int {
	if math.IsNaN(duty) {
		return minValue
	}

	duty = math.Max(math.Round(duty), float64(minValue))
	duty = math.Min(duty, float64(maxValue))

	return int(duty)
}
