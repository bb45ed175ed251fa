package sensor

import "codeberg.org/mutker/ipmifanctl/internal/errors"

const (
	ErrNoReading      = errors.ErrorCode("sensor_no_reading")
	ErrCommandFailed  = errors.ErrorCode("sensor_command_failed")
	ErrInvalidPattern = errors.ErrorCode("sensor_invalid_pattern")
	ErrInvalidPolicy  = errors.ErrorCode("sensor_invalid_failure_policy")
)

func init() {
	errors.RegisterMessage(ErrNoReading, "No temperature reading found in sensor output")
	errors.RegisterMessage(ErrCommandFailed, "Sensor command failed")
	errors.RegisterMessage(ErrInvalidPattern, "Invalid sensor pattern")
	errors.RegisterMessage(ErrInvalidPolicy, "Invalid sensor failure policy")
}
