package control

import (
	"context"

	"codeberg.org/mutker/ipmifanctl/internal/metrics"
)

// Sampler yields one averaged temperature per cycle.
type Sampler interface {
	ReadAveraged(ctx context.Context) (float64, error)
}

// Selector maps a temperature to a raw duty cycle.
type Selector interface {
	Select(temp float64) int
}

// Actuator sends a duty cycle to the fan banks.
type Actuator interface {
	Apply(ctx context.Context, dutyCycle float64)
}

// Reporter receives the applied duty cycle after every cycle.
type Reporter interface {
	Record(ctx context.Context, snapshot *metrics.MetricsSnapshot) error
}

// State is the loop's feedback: the last applied duty cycle and the last
// averaged temperature. It is owned by the loop goroutine.
type State struct {
	LastApplied     float64
	LastTemperature float64
}

// NewState returns the state of a freshly started controller.
func NewState(minDuty int) *State {
	return &State{LastApplied: float64(minDuty)}
}

// Phase is the step of the control cycle currently running.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSampling
	PhaseSelecting
	PhaseLimiting
	PhaseActuating
	PhaseReporting
	PhaseSleeping
)

var phaseNames = [...]string{"idle", "sampling", "selecting", "limiting", "actuating", "reporting", "sleeping"}

// String implements the Stringer interface
func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Result describes one completed cycle.
type Result struct {
	Temperature float64
	Desired     int
	Bounded     float64
	Applied     float64
	Dispatched  bool
}
