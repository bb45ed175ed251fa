// Package curve turns a sparse set of (temperature, duty cycle) control
// points into linear segments and evaluates them.
package curve

import (
	"math"
	"sort"

	"codeberg.org/mutker/ipmifanctl/internal/errors"
)

// Point is a configured control point. Temperature is in °C, DutyCycle in percent.
type Point struct {
	Temperature float64
	DutyCycle   float64
}

// Segment is the line through two adjacent control points.
type Segment struct {
	Lower     float64
	Upper     float64
	Slope     float64
	Intercept float64
}

// Eval returns the duty cycle the segment's line gives at temp.
func (s Segment) Eval(temp float64) float64 {
	return s.Slope*temp + s.Intercept
}

// Curve is an immutable list of segments in ascending temperature order.
type Curve struct {
	segments []Segment
}

// Build sorts points by temperature and derives one segment per adjacent pair.
func Build(points []Point) (*Curve, error) {
	errFactory := errors.New()

	if len(points) < 2 {
		return nil, errFactory.WithData(ErrTooFewPoints, len(points))
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Temperature < sorted[j].Temperature
	})

	for _, p := range sorted {
		if !isFinite(p.Temperature) || !isFinite(p.DutyCycle) {
			return nil, errFactory.WithData(ErrInvalidPoint, p)
		}
	}

	segments := make([]Segment, 0, len(sorted)-1)
	for i, p := range sorted[1:] { // i is the previous index
		prev := sorted[i]
		if p.Temperature == prev.Temperature {
			return nil, errFactory.WithData(ErrDuplicateTemperature, p.Temperature)
		}

		slope := (p.DutyCycle - prev.DutyCycle) / (p.Temperature - prev.Temperature)
		segments = append(segments, Segment{
			Lower:     prev.Temperature,
			Upper:     p.Temperature,
			Slope:     slope,
			Intercept: p.DutyCycle - slope*p.Temperature,
		})
	}

	return &Curve{segments: segments}, nil
}

// Segments returns a copy of the curve's segments.
func (c *Curve) Segments() []Segment {
	segments := make([]Segment, len(c.segments))
	copy(segments, c.segments)

	return segments
}

// Len returns the number of segments.
func (c *Curve) Len() int {
	return len(c.segments)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
