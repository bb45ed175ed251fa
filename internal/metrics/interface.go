package metrics

import (
	"context"
	"time"
)

// MetricsCollector defines the core domain interface
type MetricsCollector interface {
	Record(ctx context.Context, snapshot *MetricsSnapshot) error
	Close() error
}

// MetricsSnapshot is the state reported after one control cycle.
type MetricsSnapshot struct {
	Timestamp   time.Time
	DutyCycle   int
	Temperature float64
}
