// Package config loads the controller settings from defaults, a TOML file,
// IPMIFANCTL_* environment variables and command line flags, in that order
// of increasing precedence.
package config

import (
	"io"
	"math"
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/ipmifanctl/internal/curve"
	"codeberg.org/mutker/ipmifanctl/internal/errors"
	"codeberg.org/mutker/ipmifanctl/internal/fan"
	"codeberg.org/mutker/ipmifanctl/internal/metrics"
	"codeberg.org/mutker/ipmifanctl/internal/sensor"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigName = "ipmifanctl"
	DefaultConfigDir  = "/etc"
	DefaultPIDFile    = "/run/ipmifanctl.pid"
	DefaultLogLevel   = LogLevelInfo
	DefaultInterval   = 10.0
	DefaultFanBanks   = 2

	envPrefix = "IPMIFANCTL"
)

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}

type Config struct {
	// Interval is the pause between control cycles, in seconds.
	Interval float64  `mapstructure:"interval" yaml:"interval"`
	FanBanks int      `mapstructure:"fan_banks" yaml:"fan_banks"`
	LogLevel LogLevel `mapstructure:"log_level" yaml:"log_level"`
	DryRun   bool     `mapstructure:"dry_run" yaml:"dry_run"`
	PIDFile  string   `mapstructure:"pid_file" yaml:"pid_file"`

	Control  ControlConfig  `mapstructure:"control" yaml:"control"`
	Sensor   SensorConfig   `mapstructure:"sensor" yaml:"sensor"`
	Actuator ActuatorConfig `mapstructure:"actuator" yaml:"actuator"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
	Curve    []CurvePoint   `mapstructure:"curve" yaml:"curve"`

	// DumpConfig is set by --dump-config and never read from the file.
	DumpConfig bool `mapstructure:"-" yaml:"-"`
}

type ControlConfig struct {
	Hysteresis float64 `mapstructure:"hysteresis" yaml:"hysteresis"`
	MaxStep    float64 `mapstructure:"max_step" yaml:"max_step"`
	MinDuty    int     `mapstructure:"min_duty" yaml:"min_duty"`
	MaxDuty    int     `mapstructure:"max_duty" yaml:"max_duty"`
	// MinTempChange is accepted for compatibility and gates nothing.
	MinTempChange float64 `mapstructure:"min_temp_change" yaml:"min_temp_change"`
}

type SensorConfig struct {
	Command     string `mapstructure:"command" yaml:"command"`
	Pattern     string `mapstructure:"pattern" yaml:"pattern"`
	SampleCount int    `mapstructure:"sample_count" yaml:"sample_count"`
	// SampleInterval is the pause after each raw read, in seconds.
	SampleInterval float64              `mapstructure:"sample_interval" yaml:"sample_interval"`
	OnFailure      sensor.FailurePolicy `mapstructure:"on_failure" yaml:"on_failure"`
}

type ActuatorConfig struct {
	Command string   `mapstructure:"command" yaml:"command"`
	Group   []string `mapstructure:"group" yaml:"group"`
	Mode    string   `mapstructure:"mode" yaml:"mode"`
	Setup   []string `mapstructure:"setup" yaml:"setup"`
	Restore []string `mapstructure:"restore" yaml:"restore"`
}

type MetricsConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	Path        string `mapstructure:"path" yaml:"path"`
	Measurement string `mapstructure:"measurement" yaml:"measurement"`
	Hostname    string `mapstructure:"hostname" yaml:"hostname"`
}

type CurvePoint struct {
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	Duty        float64 `mapstructure:"duty" yaml:"duty"`
}

// DefaultCurve is used when the file has no [[curve]] tables.
func DefaultCurve() []CurvePoint {
	return []CurvePoint{
		{Temperature: 30, Duty: 20},
		{Temperature: 50, Duty: 30},
		{Temperature: 60, Duty: 40},
		{Temperature: 65, Duty: 50},
		{Temperature: 70, Duty: 65},
		{Temperature: 80, Duty: 100},
	}
}

func setDefaults(v *viper.Viper) {
	metricsDefaults := metrics.DefaultConfig()

	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("fan_banks", DefaultFanBanks)
	v.SetDefault("log_level", string(DefaultLogLevel))
	v.SetDefault("dry_run", false)
	v.SetDefault("pid_file", DefaultPIDFile)

	v.SetDefault("control.hysteresis", 2.0)
	v.SetDefault("control.max_step", 5.0)
	v.SetDefault("control.min_duty", 20)
	v.SetDefault("control.max_duty", 100)
	v.SetDefault("control.min_temp_change", 2.0)

	v.SetDefault("sensor.command", "sensors")
	v.SetDefault("sensor.pattern", sensor.DefaultPattern)
	v.SetDefault("sensor.sample_count", 5)
	v.SetDefault("sensor.sample_interval", 1.0)
	v.SetDefault("sensor.on_failure", string(sensor.FailureZero))

	v.SetDefault("actuator.command", "ipmitool")
	v.SetDefault("actuator.group", []string{"0x3a", "0x01"})
	v.SetDefault("actuator.mode", "0x00")
	v.SetDefault("actuator.setup", []string{})
	v.SetDefault("actuator.restore", []string{})

	v.SetDefault("metrics.enabled", metricsDefaults.Enabled)
	v.SetDefault("metrics.path", metricsDefaults.Path)
	v.SetDefault("metrics.measurement", metricsDefaults.Measurement)
	v.SetDefault("metrics.hostname", "")
}

// Load parses args (without the program name) and merges them over the
// environment, the config file and the defaults.
func Load(args []string) (*Config, error) {
	errFactory := errors.New()
	v := viper.New()

	fs := pflag.NewFlagSet(DefaultConfigName, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configFile := fs.String("config", "", "Path to the configuration file")
	fs.String("log-level", string(DefaultLogLevel), "Log level (debug, info, warning, error)")
	fs.Float64("interval", DefaultInterval, "Seconds between control cycles")
	fs.Bool("dry-run", false, "Log duty cycles instead of sending them to the BMC")
	dumpConfig := fs.Bool("dump-config", false, "Print the effective configuration as YAML and exit")

	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range map[string]string{
		"log_level": "log-level",
		"interval":  "interval",
		"dry_run":   "dry-run",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	path := *configFile
	if path == "" {
		path = os.Getenv(envPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("toml")
		v.AddConfigPath(DefaultConfigDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	if len(cfg.Curve) == 0 {
		cfg.Curve = DefaultCurve()
	}
	cfg.DumpConfig = *dumpConfig

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if !c.LogLevel.IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if !nonNegative(c.Interval) || c.Interval == 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.FanBanks < 1 {
		return errFactory.WithData(errors.ErrInvalidConfig, "fan_banks must be >= 1")
	}
	if !nonNegative(c.Control.Hysteresis) {
		return errFactory.WithData(errors.ErrInvalidConfig, "control.hysteresis must be a number >= 0")
	}
	if !nonNegative(c.Control.MaxStep) {
		return errFactory.WithData(errors.ErrInvalidConfig, "control.max_step must be a number >= 0")
	}
	if math.IsNaN(c.Control.MinTempChange) {
		return errFactory.WithData(errors.ErrInvalidConfig, "control.min_temp_change must be a number")
	}
	if c.Control.MinDuty < 0 || c.Control.MaxDuty > 100 || c.Control.MinDuty > c.Control.MaxDuty {
		return errFactory.WithData(errors.ErrInvalidConfig, "control duty limits must satisfy 0 <= min_duty <= max_duty <= 100")
	}
	if c.Sensor.SampleCount < 1 {
		return errFactory.WithData(errors.ErrInvalidConfig, "sensor.sample_count must be >= 1")
	}
	if !nonNegative(c.Sensor.SampleInterval) {
		return errFactory.WithData(errors.ErrInvalidConfig, "sensor.sample_interval must be a number >= 0")
	}
	if !c.Sensor.OnFailure.IsValid() {
		return errFactory.WithData(errors.ErrInvalidConfig, "sensor.on_failure must be zero or last")
	}
	if strings.TrimSpace(c.Sensor.Command) == "" || strings.TrimSpace(c.Actuator.Command) == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "sensor.command and actuator.command are required")
	}

	return c.MetricsConfig().Validate()
}

// CycleInterval returns Interval as a duration.
func (c *Config) CycleInterval() time.Duration {
	return seconds(c.Interval)
}

// SamplerConfig returns the sampler settings of the [sensor] section.
func (c *Config) SamplerConfig() sensor.SamplerConfig {
	return sensor.SamplerConfig{
		Count:     c.Sensor.SampleCount,
		Interval:  seconds(c.Sensor.SampleInterval),
		OnFailure: c.Sensor.OnFailure,
	}
}

// IPMIConfig returns the actuator settings.
func (c *Config) IPMIConfig() fan.IPMIConfig {
	return fan.IPMIConfig{
		Command: c.Actuator.Command,
		Group:   c.Actuator.Group,
		Mode:    c.Actuator.Mode,
		Setup:   c.Actuator.Setup,
		Restore: c.Actuator.Restore,
		Banks:   c.FanBanks,
		Limits:  c.DutyLimits(),
	}
}

func (c *Config) DutyLimits() fan.DutyLimits {
	return fan.DutyLimits{Min: c.Control.MinDuty, Max: c.Control.MaxDuty}
}

func (c *Config) MetricsConfig() metrics.Config {
	return metrics.Config{
		Enabled:     c.Metrics.Enabled,
		Path:        c.Metrics.Path,
		Measurement: c.Metrics.Measurement,
		Hostname:    c.Metrics.Hostname,
	}
}

// Points converts the [[curve]] tables into control points.
func (c *Config) Points() []curve.Point {
	points := make([]curve.Point, len(c.Curve))
	for i, p := range c.Curve {
		points[i] = curve.Point{Temperature: p.Temperature, DutyCycle: p.Duty}
	}

	return points
}

// Dump writes the effective configuration as YAML.
func (c *Config) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return enc.Close()
}

// nonNegative rejects NaN and ±Inf along with negative values.
func nonNegative(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
