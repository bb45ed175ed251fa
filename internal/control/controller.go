// Package control runs the closed loop: sample, select, limit, actuate,
// report, sleep.
package control

import (
	"context"
	"math"
	"time"

	"codeberg.org/mutker/ipmifanctl/internal/errors"
	"codeberg.org/mutker/ipmifanctl/internal/logger"
	"codeberg.org/mutker/ipmifanctl/internal/metrics"
	"codeberg.org/mutker/ipmifanctl/internal/sensor"
)

type Config struct {
	// Interval is the pause between the end of one cycle and the next.
	Interval time.Duration
	// MaxStep is the largest change of the applied duty cycle per cycle.
	MaxStep float64
	MinDuty int
	MaxDuty int
	// MinTempChange is accepted from the configuration but gates nothing.
	MinTempChange float64
}

type Controller struct {
	sampler  Sampler
	selector Selector
	actuator Actuator
	reporter Reporter
	cfg      Config
	phase    Phase
	sleep    sensor.SleepFunc
	now      func() time.Time
}

func New(sampler Sampler, selector Selector, actuator Actuator, reporter Reporter, cfg Config) (*Controller, error) {
	errFactory := errors.New()

	if cfg.Interval <= 0 {
		return nil, errFactory.WithData(errors.ErrInvalidInterval, cfg.Interval)
	}
	if cfg.MaxStep < 0 || math.IsNaN(cfg.MaxStep) {
		return nil, errFactory.WithData(errors.ErrInvalidConfig, "max step must be >= 0")
	}
	if cfg.MinDuty < 0 || cfg.MaxDuty > 100 || cfg.MinDuty > cfg.MaxDuty {
		return nil, errFactory.WithData(errors.ErrInvalidConfig, "duty limits must satisfy 0 <= min <= max <= 100")
	}

	return &Controller{
		sampler:  sampler,
		selector: selector,
		actuator: actuator,
		reporter: reporter,
		cfg:      cfg,
		phase:    PhaseIdle,
		sleep:    sensor.Sleep,
		now:      time.Now,
	}, nil
}

// WithSleep replaces the inter-cycle pause, for tests.
func (c *Controller) WithSleep(sleep sensor.SleepFunc) *Controller {
	c.sleep = sleep
	return c
}

// Phase returns the step the controller is in.
func (c *Controller) Phase() Phase {
	return c.phase
}

func (c *Controller) enter(p Phase) {
	c.phase = p
	logger.Debug().Str("phase", p.String()).Send()
}

// Cycle runs one pass of the loop against state. The fan banks are only
// written when the bounded duty cycle differs from state.LastApplied; the
// reporter is called every time. An error from the reporter is returned
// together with a complete Result.
func (c *Controller) Cycle(ctx context.Context, state *State) (Result, error) {
	errFactory := errors.New()

	c.enter(PhaseSampling)
	temp, err := c.sampler.ReadAveraged(ctx)
	if err != nil {
		return Result{}, errFactory.Wrap(ErrSampleFailed, err)
	}

	c.enter(PhaseSelecting)
	desired := c.selector.Select(temp)

	c.enter(PhaseLimiting)
	bounded := Limit(float64(desired), state.LastApplied, c.cfg.MaxStep)
	bounded = clamp(bounded, float64(c.cfg.MinDuty), float64(c.cfg.MaxDuty))

	c.enter(PhaseActuating)
	dispatched := false
	if bounded != state.LastApplied {
		c.actuator.Apply(ctx, bounded)
		state.LastApplied = bounded
		dispatched = true
	}
	state.LastTemperature = temp

	result := Result{
		Temperature: temp,
		Desired:     desired,
		Bounded:     bounded,
		Applied:     state.LastApplied,
		Dispatched:  dispatched,
	}

	c.enter(PhaseReporting)
	snapshot := &metrics.MetricsSnapshot{
		Timestamp:   c.now(),
		DutyCycle:   int(math.Round(state.LastApplied)),
		Temperature: temp,
	}
	if err := c.reporter.Record(ctx, snapshot); err != nil {
		return result, errFactory.Wrap(ErrReportFailed, err)
	}

	return result, nil
}

// Run repeats Cycle until ctx is canceled. Per-cycle errors are logged and
// never end the loop.
func (c *Controller) Run(ctx context.Context, state *State) error {
	logger.Debug().
		Dur("interval", c.cfg.Interval).
		Float64("max_step", c.cfg.MaxStep).
		Float64("min_temp_change", c.cfg.MinTempChange).
		Int("min_duty", c.cfg.MinDuty).
		Int("max_duty", c.cfg.MaxDuty).
		Msg("Control loop started")

	for {
		result, err := c.Cycle(ctx, state)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			logger.ErrorWithCode(err).Msg("Control cycle failed")
		}
		if !errors.HasCode(err, ErrSampleFailed) {
			logResult(result)
		}

		c.enter(PhaseSleeping)
		if err := c.sleep(ctx, c.cfg.Interval); err != nil {
			return nil
		}
	}
}

func logResult(r Result) {
	logger.Info().
		Float64("temperature", math.Round(r.Temperature*10)/10).
		Int("target_duty_cycle", r.Desired).
		Float64("duty_cycle", r.Applied).
		Bool("changed", r.Dispatched).
		Msg("")
}

func clamp(value, minValue, maxValue float64) float64 {
	if value < minValue {
		return minValue
	}

	if value > maxValue {
		return maxValue
	}

	return value
}
