package fan

import "context"

// Actuator drives every fan bank to a duty cycle. Dispatch failures are
// logged and dropped: the BMC's own thermal protection is the backstop.
type Actuator interface {
	Apply(ctx context.Context, dutyCycle float64)
}

// DutyLimits bounds every duty cycle sent to the hardware, in percent.
type DutyLimits struct {
	Min, Max int
}

func (l DutyLimits) validate() bool {
	return l.Min >= 0 && l.Max <= 100 && l.Min <= l.Max
}
