package sensor_test

import (
	"context"
	stderrors "errors"
	"regexp"
	"testing"

	"codeberg.org/mutker/ipmifanctl/internal/errors"
	"codeberg.org/mutker/ipmifanctl/internal/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSensorOutput = `iwlwifi_1-virtual-0
Adapter: Virtual device
temp1:        +35.0°C  

nvme-pci-0300
Adapter: PCI adapter
Composite:    +36.9°C  (low  = -273.1°C, high = +81.8°C)
                       (crit = +84.8°C)

coretemp-isa-0000
Adapter: ISA adapter
Package id 0:  +48.0°C  (high = +101.0°C, crit = +115.0°C)
Core 0:        +46.0°C  (high = +101.0°C, crit = +115.0°C)
Core 1:        +45.0°C  (high = +101.0°C, crit = +115.0°C)

coretemp-isa-0001
Adapter: ISA adapter
Package id 1:  +52.5°C  (high = +101.0°C, crit = +115.0°C)
Core 0:        +51.0°C  (high = +101.0°C, crit = +115.0°C)
`

type fakeRunner struct {
	out   string
	err   error
	calls [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.out, f.err
}

func TestParseTemperatures(t *testing.T) {
	re := regexp.MustCompile(sensor.DefaultPattern)

	temps := sensor.ParseTemperatures(testSensorOutput, re)
	assert.Equal(t, []float64{48.0, 52.5}, temps)
}

func TestParseTemperaturesSigned(t *testing.T) {
	re := regexp.MustCompile(sensor.DefaultPattern)

	temps := sensor.ParseTemperatures("Package id 0:  -5.0°C\nPackage id 1:  12°C\n", re)
	assert.Equal(t, []float64{-5.0, 12.0}, temps)
}

func TestParseTemperaturesLocales(t *testing.T) {
	re := regexp.MustCompile(sensor.DefaultPattern)

	tests := []struct {
		name   string
		output string
	}{
		{"utf-8", "Package id 0:  +88.0°C  (high = +101.0°C, crit = +115.0°C)\n"},
		{"posix", "Package id 0:  +88.0 C  (high = +101.0 C, crit = +115.0 C)\n"},
		{"latin-1", "Package id 0:  +88.0\xb0C  (high = +101.0\xb0C, crit = +115.0\xb0C)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			temp, err := sensor.MaxTemperature(tt.output, re)
			require.NoError(t, err)
			assert.Equal(t, 88.0, temp)
		})
	}
}

func TestMaxTemperature(t *testing.T) {
	re := regexp.MustCompile(sensor.DefaultPattern)

	temp, err := sensor.MaxTemperature(testSensorOutput, re)
	require.NoError(t, err)
	assert.Equal(t, 52.5, temp)

	_, err = sensor.MaxTemperature("Core 0: +46.0°C\n", re)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, sensor.ErrNoReading))
}

func TestCommandSource(t *testing.T) {
	runner := &fakeRunner{out: testSensorOutput}

	src, err := sensor.NewCommandSource(runner, "sensors -A", "")
	require.NoError(t, err)

	temp, err := src.ReadTemperature(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 52.5, temp)
	assert.Equal(t, [][]string{{"sensors", "-A"}}, runner.calls)
}

func TestCommandSourceCustomPattern(t *testing.T) {
	runner := &fakeRunner{out: "cpu0 61\ncpu1 64\ngpu 90\n"}

	src, err := sensor.NewCommandSource(runner, "cat /tmp/temps", `cpu\d+ (\d+)`)
	require.NoError(t, err)

	temp, err := src.ReadTemperature(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 64.0, temp)
}

func TestCommandSourceErrors(t *testing.T) {
	_, err := sensor.NewCommandSource(&fakeRunner{}, "sensors", `Package (`)
	assert.True(t, errors.HasCode(err, sensor.ErrInvalidPattern))

	_, err = sensor.NewCommandSource(&fakeRunner{}, "sensors", `Package id \d+`)
	assert.True(t, errors.HasCode(err, sensor.ErrInvalidPattern))

	src, err := sensor.NewCommandSource(&fakeRunner{err: stderrors.New("exit status 1")}, "sensors", "")
	require.NoError(t, err)
	_, err = src.ReadTemperature(context.Background())
	assert.True(t, errors.HasCode(err, sensor.ErrCommandFailed))
}
