package control

import "math"

// Limit bounds the change from lastApplied towards desired to maxStep.
func Limit(desired, lastApplied, maxStep float64) float64 {
	if math.Abs(desired-lastApplied) <= maxStep {
		return desired
	}

	if desired > lastApplied {
		return lastApplied + maxStep
	}

	return lastApplied - maxStep
}
