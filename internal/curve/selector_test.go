package curve_test

import (
	"math"
	"testing"

	"codeberg.org/mutker/ipmifanctl/internal/curve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSelector(t *testing.T, points []curve.Point, hysteresis float64, minDuty, maxDuty int) curve.Selector {
	t.Helper()

	c, err := curve.Build(points)
	require.NoError(t, err)

	return curve.Selector{Curve: c, Hysteresis: hysteresis, MinDuty: minDuty, MaxDuty: maxDuty}
}

func TestSelectLinearInterpolation(t *testing.T) {
	s := newSelector(t, []curve.Point{{30, 10}, {80, 100}}, 0, 0, 100)

	assert.Equal(t, 10, s.Select(30))
	assert.Equal(t, 100, s.Select(80))
	assert.Equal(t, 55, s.Select(55))
}

func TestSelectHysteresis(t *testing.T) {
	s := newSelector(t, []curve.Point{{60, 40}, {65, 50}}, 1, 0, 100)

	assert.Equal(t, 44, s.Select(62))
	// within hysteresis below the first breakpoint the segment still applies
	assert.Equal(t, 39, s.Select(59.5))
	// below the first breakpoint minus hysteresis
	assert.Equal(t, 0, s.Select(58.9))
}

func TestSelectBelowRangeReturnsMinDuty(t *testing.T) {
	s := newSelector(t, []curve.Point{{30, 10}, {80, 100}}, 2, 25, 100)

	assert.Equal(t, 25, s.Select(27.9))
	assert.Equal(t, 25, s.Select(-10))
	// 28 >= 30-2 selects the segment: 1.8*28-44 = 6.4, clamped up
	assert.Equal(t, 25, s.Select(28))
}

func TestSelectAboveRangeUsesTopSegment(t *testing.T) {
	s := newSelector(t, []curve.Point{{30, 10}, {50, 30}, {70, 50}}, 0, 0, 100)

	// top segment slope 1, intercept -20
	assert.Equal(t, 60, s.Select(80))
	assert.Equal(t, 100, s.Select(200))

	capped := newSelector(t, []curve.Point{{30, 10}, {50, 30}, {70, 50}}, 0, 0, 55)
	assert.Equal(t, 55, capped.Select(80))
}

func TestSelectExtremeTemperatures(t *testing.T) {
	s := newSelector(t, []curve.Point{{30, 10}, {80, 100}}, 0, 20, 100)

	assert.Equal(t, 100, s.Select(1e19))
	assert.Equal(t, 100, s.Select(1e300))
	assert.Equal(t, 100, s.Select(math.Inf(1)))
	assert.Equal(t, 20, s.Select(-1e300))
}

func TestSelectPicksHighestQualifyingSegment(t *testing.T) {
	// a steep upper segment must win as soon as its lower breakpoint is reached
	s := newSelector(t, []curve.Point{{40, 20}, {60, 30}, {70, 90}}, 0, 0, 100)

	assert.Equal(t, 25, s.Select(50))
	assert.Equal(t, 30, s.Select(60))
	assert.Equal(t, 60, s.Select(65))
}

func TestSelectRounds(t *testing.T) {
	s := newSelector(t, []curve.Point{{0, 0}, {4, 10}}, 0, 0, 100)

	assert.Equal(t, 3, s.Select(1))   // 2.5 rounds half away from zero
	assert.Equal(t, 5, s.Select(2))   // 5.0
	assert.Equal(t, 8, s.Select(3))   // 7.5
	assert.Equal(t, 9, s.Select(3.5)) // 8.75
}

func TestClampDuty(t *testing.T) {
	assert.Equal(t, 44, curve.ClampDuty(43.5, 20, 100))
	assert.Equal(t, 20, curve.ClampDuty(3, 20, 100))
	assert.Equal(t, 100, curve.ClampDuty(1e300, 20, 100))
	assert.Equal(t, 20, curve.ClampDuty(-1e300, 20, 100))
	assert.Equal(t, 100, curve.ClampDuty(math.Inf(1), 20, 100))
	assert.Equal(t, 20, curve.ClampDuty(math.NaN(), 20, 100))
}
