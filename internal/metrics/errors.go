package metrics

import "codeberg.org/mutker/ipmifanctl/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidPath   = errors.ErrorCode("metrics_invalid_path")
	ErrInvalidName   = errors.ErrorCode("metrics_invalid_name")

	// Storage Errors
	ErrStorageInit = errors.ErrInitFailed
	ErrWriteFailed = errors.ErrorCode("metrics_write_failed")

	// Collection Errors
	ErrInvalidMetrics = errors.ErrorCode("metrics_invalid_metrics")

	// Operation Errors
	ErrOperationTimeout = errors.ErrTimeout
)

func init() {
	errors.RegisterMessage(ErrInvalidPath, "Metrics path is empty")
	errors.RegisterMessage(ErrInvalidName, "Invalid metrics measurement or host name")
	errors.RegisterMessage(ErrWriteFailed, "Failed to write metrics file")
	errors.RegisterMessage(ErrInvalidMetrics, "Invalid metrics snapshot")
}
