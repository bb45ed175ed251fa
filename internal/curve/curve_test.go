package curve_test

import (
	"math"
	"testing"

	"codeberg.org/mutker/ipmifanctl/internal/curve"
	"codeberg.org/mutker/ipmifanctl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSegmentCount(t *testing.T) {
	tests := []struct {
		name   string
		points []curve.Point
	}{
		{"two", []curve.Point{{30, 10}, {80, 100}}},
		{"three", []curve.Point{{30, 10}, {50, 40}, {80, 100}}},
		{"unsorted", []curve.Point{{70, 80}, {30, 10}, {60, 40}, {45, 20}, {80, 100}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := curve.Build(tt.points)
			require.NoError(t, err)
			assert.Equal(t, len(tt.points)-1, c.Len())
			assert.Len(t, c.Segments(), len(tt.points)-1)
		})
	}
}

func TestBuildReproducesBreakpoints(t *testing.T) {
	points := []curve.Point{{70, 80}, {30, 10}, {60, 40}, {45, 20}, {80, 100}}

	c, err := curve.Build(points)
	require.NoError(t, err)

	byTemp := make(map[float64]float64, len(points))
	for _, p := range points {
		byTemp[p.Temperature] = p.DutyCycle
	}

	prevUpper := math.Inf(-1)
	for _, seg := range c.Segments() {
		assert.Greater(t, seg.Upper, seg.Lower)
		assert.GreaterOrEqual(t, seg.Lower, prevUpper, "segments must be ascending")
		prevUpper = seg.Upper

		assert.InDelta(t, byTemp[seg.Lower], seg.Eval(seg.Lower), 1e-9)
		assert.InDelta(t, byTemp[seg.Upper], seg.Eval(seg.Upper), 1e-9)
	}
}

func TestBuildSlopeIntercept(t *testing.T) {
	c, err := curve.Build([]curve.Point{{60, 40}, {65, 50}})
	require.NoError(t, err)

	seg := c.Segments()[0]
	assert.Equal(t, 60.0, seg.Lower)
	assert.Equal(t, 65.0, seg.Upper)
	assert.InDelta(t, 2.0, seg.Slope, 1e-12)
	assert.InDelta(t, -80.0, seg.Intercept, 1e-12)
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	points := []curve.Point{{80, 100}, {30, 10}}
	_, err := curve.Build(points)
	require.NoError(t, err)
	assert.Equal(t, []curve.Point{{80, 100}, {30, 10}}, points)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		points []curve.Point
		code   errors.ErrorCode
	}{
		{"empty", nil, curve.ErrTooFewPoints},
		{"single", []curve.Point{{50, 50}}, curve.ErrTooFewPoints},
		{"duplicate", []curve.Point{{50, 50}, {60, 70}, {50, 40}}, curve.ErrDuplicateTemperature},
		{"nan", []curve.Point{{50, 50}, {math.NaN(), 70}}, curve.ErrInvalidPoint},
		{"inf", []curve.Point{{50, 50}, {60, math.Inf(1)}}, curve.ErrInvalidPoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := curve.Build(tt.points)
			require.Error(t, err)
			assert.Nil(t, c)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}
