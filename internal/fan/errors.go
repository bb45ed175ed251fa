package fan

import "codeberg.org/mutker/ipmifanctl/internal/errors"

const (
	ErrDispatchFailed = errors.ErrorCode("fan_dispatch_failed")
	ErrSetupFailed    = errors.ErrorCode("fan_setup_failed")
	ErrRestoreFailed  = errors.ErrorCode("fan_restore_failed")
	ErrInvalidBanks   = errors.ErrorCode("fan_invalid_bank_count")
	ErrInvalidByte    = errors.ErrorCode("fan_invalid_raw_byte")
	ErrInvalidLimits  = errors.ErrorCode("fan_invalid_duty_limits")
)

func init() {
	errors.RegisterMessage(ErrDispatchFailed, "Failed to set fan bank duty cycle")
	errors.RegisterMessage(ErrSetupFailed, "Failed to run fan controller setup command")
	errors.RegisterMessage(ErrRestoreFailed, "Failed to run fan controller restore command")
	errors.RegisterMessage(ErrInvalidBanks, "Fan bank count must be at least 1")
	errors.RegisterMessage(ErrInvalidByte, "Invalid raw IPMI byte")
	errors.RegisterMessage(ErrInvalidLimits, "Invalid duty cycle limits")
}
