package sensor

import (
	"context"
	"time"

	"codeberg.org/mutker/ipmifanctl/internal/errors"
	"codeberg.org/mutker/ipmifanctl/internal/logger"
)

// FailurePolicy decides which value stands in for a failed read.
type FailurePolicy string

const (
	// FailureZero treats a failed read as 0 °C. A sensor outage then spins
	// the fans down, so every failure is logged at warn level.
	FailureZero FailurePolicy = "zero"
	// FailureLast reuses the last successful reading (0 °C before the first one).
	FailureLast FailurePolicy = "last"
)

// IsValid returns whether the policy is known
func (p FailurePolicy) IsValid() bool {
	switch p {
	case FailureZero, FailureLast:
		return true
	default:
		return false
	}
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep waits for d unless ctx is canceled first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type SamplerConfig struct {
	Count     int
	Interval  time.Duration
	OnFailure FailurePolicy
}

// Sampler averages several raw reads into one temperature per cycle.
type Sampler struct {
	source   Source
	cfg      SamplerConfig
	sleep    SleepFunc
	last     float64
	failures int
}

func NewSampler(source Source, cfg SamplerConfig) (*Sampler, error) {
	errFactory := errors.New()

	if cfg.Count < 1 {
		return nil, errFactory.WithData(errors.ErrInvalidConfig, "sample count must be >= 1")
	}
	if cfg.Interval < 0 {
		return nil, errFactory.WithData(errors.ErrInvalidConfig, "sample interval must be >= 0")
	}
	if cfg.OnFailure == "" {
		cfg.OnFailure = FailureZero
	}
	if !cfg.OnFailure.IsValid() {
		return nil, errFactory.WithData(ErrInvalidPolicy, cfg.OnFailure)
	}

	return &Sampler{
		source: source,
		cfg:    cfg,
		sleep:  Sleep,
	}, nil
}

// WithSleep replaces the wait between reads, for tests.
func (s *Sampler) WithSleep(sleep SleepFunc) *Sampler {
	s.sleep = sleep
	return s
}

// ReadOnce returns one raw reading, or the error of the failed read.
func (s *Sampler) ReadOnce(ctx context.Context) (float64, error) {
	return s.source.ReadTemperature(ctx)
}

// ReadAveraged reads Count times, waiting Interval after each read, and
// returns the arithmetic mean. Failed reads are replaced according to the
// failure policy; only cancellation of ctx is returned as an error.
func (s *Sampler) ReadAveraged(ctx context.Context) (float64, error) {
	var sum float64
	for i := 0; i < s.cfg.Count; i++ {
		temp, err := s.ReadOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return 0, errors.New().Wrap(errors.ErrCanceled, ctx.Err())
			}
			temp = s.fallback(err)
		} else {
			s.last = temp
		}
		sum += temp

		if err := s.sleep(ctx, s.cfg.Interval); err != nil {
			return 0, errors.New().Wrap(errors.ErrCanceled, err)
		}
	}

	return sum / float64(s.cfg.Count), nil
}

// Failures returns the number of failed reads since start.
func (s *Sampler) Failures() int {
	return s.failures
}

func (s *Sampler) fallback(err error) float64 {
	s.failures++

	temp := 0.0
	if s.cfg.OnFailure == FailureLast {
		temp = s.last
	}

	logger.WarnWithCode(err).
		Str("policy", string(s.cfg.OnFailure)).
		Float64("substitute", temp).
		Int("failures", s.failures).
		Msg("Temperature read failed")

	return temp
}
