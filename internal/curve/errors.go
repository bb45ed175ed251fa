package curve

import "codeberg.org/mutker/ipmifanctl/internal/errors"

const (
	ErrTooFewPoints         = errors.ErrorCode("curve_too_few_points")
	ErrDuplicateTemperature = errors.ErrorCode("curve_duplicate_temperature")
	ErrInvalidPoint         = errors.ErrorCode("curve_invalid_point")
)

func init() {
	errors.RegisterMessage(ErrTooFewPoints, "Fan curve needs at least two control points")
	errors.RegisterMessage(ErrDuplicateTemperature, "Fan curve control points share a temperature")
	errors.RegisterMessage(ErrInvalidPoint, "Fan curve control point is not a finite number")
}
