package control

import "codeberg.org/mutker/ipmifanctl/internal/errors"

const (
	ErrSampleFailed = errors.ErrorCode("control_sample_failed")
	ErrReportFailed = errors.ErrorCode("control_report_failed")
)

func init() {
	errors.RegisterMessage(ErrSampleFailed, "Failed to sample temperature")
	errors.RegisterMessage(ErrReportFailed, "Failed to report duty cycle")
}
