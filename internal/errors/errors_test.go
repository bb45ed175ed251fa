package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"codeberg.org/mutker/ipmifanctl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	errFactory := errors.New()

	err := errFactory.New(errors.ErrInvalidConfig)
	assert.Equal(t, "Invalid configuration", err.Error())

	err = errFactory.Wrap(errors.ErrReadConfig, stderrors.New("permission denied"))
	assert.Equal(t, "Failed to read config file: permission denied", err.Error())

	err = errFactory.WithData(errors.ErrInvalidConfig, "fan_banks must be >= 1")
	assert.Equal(t, "Invalid configuration: fan_banks must be >= 1", err.Error())

	err = errFactory.WithMessage(errors.ErrInternal, "boom")
	assert.Equal(t, "boom", err.Error())
}

func TestUnknownCodeFallsBackToCode(t *testing.T) {
	err := errors.New().New(errors.ErrorCode("something_odd"))
	assert.Equal(t, "something_odd", err.Error())
}

func TestIsMatchesByCode(t *testing.T) {
	errFactory := errors.New()

	inner := errFactory.New(errors.ErrTimeout)
	wrapped := fmt.Errorf("cycle: %w", errFactory.Wrap(errors.ErrMainLoop, inner))

	assert.True(t, errors.Is(wrapped, errFactory.New(errors.ErrMainLoop)))
	assert.True(t, errors.Is(wrapped, errFactory.New(errors.ErrTimeout)))
	assert.False(t, errors.Is(wrapped, errFactory.New(errors.ErrInvalidConfig)))
}

func TestHasCode(t *testing.T) {
	errFactory := errors.New()
	err := errFactory.Wrap(errors.ErrInitApp, errFactory.New(errors.ErrBuildCurve))

	assert.True(t, errors.HasCode(err, errors.ErrInitApp))
	assert.True(t, errors.HasCode(err, errors.ErrBuildCurve))
	assert.False(t, errors.HasCode(err, errors.ErrTimeout))
	assert.False(t, errors.HasCode(stderrors.New("plain"), errors.ErrInternal))
	assert.False(t, errors.HasCode(nil, errors.ErrInternal))
}

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", errors.New().New(errors.ErrAlreadyRunning))
	require.Error(t, err)
	assert.Equal(t, errors.ErrAlreadyRunning, errors.CodeOf(err))
	assert.Equal(t, errors.ErrInternal, errors.CodeOf(stderrors.New("plain")))
}

func TestRegisterMessage(t *testing.T) {
	code := errors.ErrorCode("test_registered")
	errors.RegisterMessage(code, "Registered message")
	assert.Equal(t, "Registered message", errors.New().New(code).Error())
}
