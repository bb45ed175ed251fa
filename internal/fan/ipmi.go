package fan

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"codeberg.org/mutker/ipmifanctl/internal/curve"
	"codeberg.org/mutker/ipmifanctl/internal/errors"
	"codeberg.org/mutker/ipmifanctl/internal/exec"
	"codeberg.org/mutker/ipmifanctl/internal/logger"
)

type IPMIConfig struct {
	// Command is the ipmitool preamble; it may target a remote BMC,
	// e.g. `ipmitool -I lanplus -H 10.0.0.2 -U admin -P secret`.
	Command string
	// Group is the raw netfn/command byte pair preceding the bank index.
	Group []string
	// Mode is the trailing raw byte.
	Mode string
	// Setup is an optional raw byte sequence sent once before control starts.
	Setup []string
	// Restore is an optional raw byte sequence sent on shutdown to hand the
	// fans back to the BMC.
	Restore []string
	Banks   int
	Limits  DutyLimits
}

// IPMI sets fan bank duty cycles with `ipmitool raw`.
type IPMI struct {
	runner exec.Runner
	name   string
	args   []string
	cfg    IPMIConfig
	mu     sync.Mutex
}

func NewIPMI(runner exec.Runner, cfg IPMIConfig) (*IPMI, error) {
	errFactory := errors.New()

	if cfg.Banks < 1 {
		return nil, errFactory.WithData(ErrInvalidBanks, cfg.Banks)
	}
	if !cfg.Limits.validate() {
		return nil, errFactory.WithData(ErrInvalidLimits, cfg.Limits)
	}
	if len(cfg.Group) != 2 {
		return nil, errFactory.WithData(ErrInvalidByte, "group must be exactly two bytes")
	}

	raw := append(append([]string{}, cfg.Group...), cfg.Mode)
	raw = append(raw, cfg.Setup...)
	raw = append(raw, cfg.Restore...)
	for _, b := range raw {
		if _, err := parseByte(b); err != nil {
			return nil, errFactory.WithData(ErrInvalidByte, b)
		}
	}

	name, args, err := exec.Split(cfg.Command)
	if err != nil {
		return nil, err
	}

	return &IPMI{
		runner: runner,
		name:   name,
		args:   args,
		cfg:    cfg,
	}, nil
}

// Setup sends the configured setup sequence, if any.
func (f *IPMI) Setup(ctx context.Context) error {
	if len(f.cfg.Setup) == 0 {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.raw(ctx, f.cfg.Setup...); err != nil {
		return errors.New().Wrap(ErrSetupFailed, err)
	}
	logger.Info().Strs("bytes", f.cfg.Setup).Msg("Fan controller setup sent")

	return nil
}

// Restore sends the configured restore sequence, if any.
func (f *IPMI) Restore(ctx context.Context) error {
	if len(f.cfg.Restore) == 0 {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.raw(ctx, f.cfg.Restore...); err != nil {
		return errors.New().Wrap(ErrRestoreFailed, err)
	}
	logger.Info().Strs("bytes", f.cfg.Restore).Msg("Fan control handed back to BMC")

	return nil
}

// Apply clamps dutyCycle and sends it to banks 1..Banks.
func (f *IPMI) Apply(ctx context.Context, dutyCycle float64) {
	errFactory := errors.New()
	duty := f.Percent(dutyCycle)

	f.mu.Lock()
	defer f.mu.Unlock()

	for bank := 1; bank <= f.cfg.Banks; bank++ {
		args := append(append([]string{}, f.cfg.Group...),
			fmt.Sprintf("0x%02x", bank),
			fmt.Sprintf("0x%02x", duty),
			f.cfg.Mode,
		)
		if _, err := f.raw(ctx, args...); err != nil {
			logger.WarnWithCode(errFactory.Wrap(ErrDispatchFailed, err)).
				Int("bank", bank).
				Int("duty_cycle", duty).
				Msg("Fan dispatch failed")
			continue
		}
		logger.Debug().Int("bank", bank).Int("duty_cycle", duty).Msg("Fan bank updated")
	}
}

// Percent clamps dutyCycle to the configured limits and rounds it.
func (f *IPMI) Percent(dutyCycle float64) int {
	return curve.ClampDuty(dutyCycle, f.cfg.Limits.Min, f.cfg.Limits.Max)
}

func (f *IPMI) raw(ctx context.Context, bytes ...string) (string, error) {
	args := make([]string, 0, len(f.args)+1+len(bytes))
	args = append(args, f.args...)
	args = append(args, "raw")
	args = append(args, bytes...)

	return f.runner.Run(ctx, f.name, args...)
}

func parseByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	return uint8(v), err
}
