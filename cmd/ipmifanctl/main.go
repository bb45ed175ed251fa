package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/ipmifanctl/internal/config"
	"codeberg.org/mutker/ipmifanctl/internal/control"
	"codeberg.org/mutker/ipmifanctl/internal/curve"
	"codeberg.org/mutker/ipmifanctl/internal/errors"
	"codeberg.org/mutker/ipmifanctl/internal/exec"
	"codeberg.org/mutker/ipmifanctl/internal/fan"
	"codeberg.org/mutker/ipmifanctl/internal/logger"
	"codeberg.org/mutker/ipmifanctl/internal/metrics"
	"codeberg.org/mutker/ipmifanctl/internal/pid"
	"codeberg.org/mutker/ipmifanctl/internal/sensor"
)

type app struct {
	cfg        *config.Config
	controller *control.Controller
	collector  metrics.MetricsCollector
	setup      func(context.Context) error
	restore    func(context.Context) error
}

const restoreTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if cfg.DumpConfig {
		if err := cfg.Dump(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "failed to dump config: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := logger.Init(cfg.LogLevel.String(), logger.IsService()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug().Msg("Config loaded")

	if err := pid.Write(cfg.PIDFile); err != nil {
		logger.FatalWithCode(err).Str("path", cfg.PIDFile).Msg("Failed to write PID file")
	}

	a, err := newApp(cfg, exec.NewRunner())
	if err != nil {
		cleanupPID(cfg.PIDFile)
		logger.FatalWithCode(err).Msg("Failed to initialize application")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := a.run(ctx); err != nil {
		logger.ErrorWithCode(err).Msg("Error in main loop")
	}
	a.cleanup()
}

func newApp(cfg *config.Config, runner exec.Runner) (*app, error) {
	errFactory := errors.New()

	c, err := curve.Build(cfg.Points())
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrBuildCurve, err)
	}
	selector := curve.Selector{
		Curve:      c,
		Hysteresis: cfg.Control.Hysteresis,
		MinDuty:    cfg.Control.MinDuty,
		MaxDuty:    cfg.Control.MaxDuty,
	}

	source, err := sensor.NewCommandSource(runner, cfg.Sensor.Command, cfg.Sensor.Pattern)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrInitApp, err)
	}
	sampler, err := sensor.NewSampler(source, cfg.SamplerConfig())
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrInitApp, err)
	}

	var actuator control.Actuator
	setup := func(context.Context) error { return nil }
	restore := func(context.Context) error { return nil }
	if cfg.DryRun {
		actuator = &fan.DryRun{Banks: cfg.FanBanks, Limits: cfg.DutyLimits()}
	} else {
		ipmi, err := fan.NewIPMI(runner, cfg.IPMIConfig())
		if err != nil {
			return nil, errFactory.Wrap(errors.ErrInitApp, err)
		}
		actuator = ipmi
		setup = ipmi.Setup
		restore = ipmi.Restore
	}

	collector, err := metrics.NewService(cfg.MetricsConfig())
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrInitApp, err)
	}

	controller, err := control.New(sampler, selector, actuator, collector, control.Config{
		Interval:      cfg.CycleInterval(),
		MaxStep:       cfg.Control.MaxStep,
		MinDuty:       cfg.Control.MinDuty,
		MaxDuty:       cfg.Control.MaxDuty,
		MinTempChange: cfg.Control.MinTempChange,
	})
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrInitApp, err)
	}

	logger.Debug().
		Int("segments", c.Len()).
		Int("fan_banks", cfg.FanBanks).
		Bool("dry_run", cfg.DryRun).
		Msg("Controller initialized")

	return &app{
		cfg:        cfg,
		controller: controller,
		collector:  collector,
		setup:      setup,
		restore:    restore,
	}, nil
}

func (a *app) run(ctx context.Context) error {
	if err := a.setup(ctx); err != nil {
		return errors.New().Wrap(errors.ErrMainLoop, err)
	}

	logger.Info().
		Float64("interval", a.cfg.Interval).
		Int("min_duty", a.cfg.Control.MinDuty).
		Int("max_duty", a.cfg.Control.MaxDuty).
		Msg("Starting fan control")

	return a.controller.Run(ctx, control.NewState(a.cfg.Control.MinDuty))
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func (a *app) cleanup() {
	// the loop context is already canceled
	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()
	if err := a.restore(ctx); err != nil {
		logger.ErrorWithCode(errors.New().Wrap(errors.ErrShutdownFailed, err)).Msg("Failed to restore fan control")
	}
	if err := a.collector.Close(); err != nil {
		logger.ErrorWithCode(err).Msg("Failed to close metrics")
	}
	cleanupPID(a.cfg.PIDFile)
	logger.Info().Msg("Exiting...")
}

func cleanupPID(path string) {
	if err := pid.Remove(path); err != nil {
		logger.ErrorWithCode(err).Msg("Failed to remove PID file")
	}
}
