// Package sensor reads CPU package temperatures from an external command
// and reduces repeated reads to one averaged value per control cycle.
package sensor

import (
	"context"
	"regexp"
	"strconv"

	"codeberg.org/mutker/ipmifanctl/internal/errors"
	"codeberg.org/mutker/ipmifanctl/internal/exec"
)

// DefaultPattern matches lm-sensors coretemp lines such as
// "Package id 0:  +48.0°C  (high = +101.0°C, crit = +115.0°C)".
// The degree sign depends on the locale: UTF-8 "°", a lone Latin-1 0xB0 byte
// (seen by regexp as U+FFFD) or, under C/POSIX, a space.
const DefaultPattern = `Package id \d+:\s+([+-]?\d+(?:\.\d+)?)\s?(?:°|\x{FFFD})?C`

// Source produces one raw temperature reading in °C.
type Source interface {
	ReadTemperature(ctx context.Context) (float64, error)
}

// CommandSource runs a sensor command and takes the hottest package reading.
type CommandSource struct {
	runner  exec.Runner
	name    string
	args    []string
	pattern *regexp.Regexp
}

// NewCommandSource builds a source from a command line and a pattern with
// exactly one capture group holding the temperature.
func NewCommandSource(runner exec.Runner, command, pattern string) (*CommandSource, error) {
	errFactory := errors.New()

	name, args, err := exec.Split(command)
	if err != nil {
		return nil, err
	}

	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errFactory.Wrap(ErrInvalidPattern, err)
	}
	if re.NumSubexp() != 1 {
		return nil, errFactory.WithData(ErrInvalidPattern, "pattern must have exactly one capture group")
	}

	return &CommandSource{
		runner:  runner,
		name:    name,
		args:    args,
		pattern: re,
	}, nil
}

// ReadTemperature runs the command once and returns the maximum reading.
func (s *CommandSource) ReadTemperature(ctx context.Context) (float64, error) {
	out, err := s.runner.Run(ctx, s.name, s.args...)
	if err != nil {
		return 0, errors.New().Wrap(ErrCommandFailed, err)
	}

	return MaxTemperature(out, s.pattern)
}

// ParseTemperatures returns every reading matched by re in output.
// Lines that do not match are ignored.
func ParseTemperatures(output string, re *regexp.Regexp) []float64 {
	var temps []float64
	for _, m := range re.FindAllStringSubmatch(output, -1) {
		temp, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		temps = append(temps, temp)
	}

	return temps
}

// MaxTemperature returns the hottest reading matched by re in output.
func MaxTemperature(output string, re *regexp.Regexp) (float64, error) {
	temps := ParseTemperatures(output, re)
	if len(temps) == 0 {
		return 0, errors.New().New(ErrNoReading)
	}

	hottest := temps[0]
	for _, t := range temps[1:] {
		hottest = max(hottest, t)
	}

	return hottest, nil
}
