package fan

import (
	"context"

	"codeberg.org/mutker/ipmifanctl/internal/curve"
	"codeberg.org/mutker/ipmifanctl/internal/logger"
)

// DryRun logs what would be sent instead of touching the hardware.
type DryRun struct {
	Banks  int
	Limits DutyLimits
	last   int
}

func (d *DryRun) Apply(_ context.Context, dutyCycle float64) {
	duty := curve.ClampDuty(dutyCycle, d.Limits.Min, d.Limits.Max)
	d.last = duty
	logger.Info().
		Int("banks", d.Banks).
		Int("duty_cycle", duty).
		Bool("dry_run", true).
		Msg("Fan dispatch skipped")
}

// Last returns the last duty cycle passed to Apply after clamping.
func (d *DryRun) Last() int {
	return d.last
}
