package metrics

import (
	"context"

	"codeberg.org/mutker/ipmifanctl/internal/errors"
	"codeberg.org/mutker/ipmifanctl/internal/logger"
)

type service struct {
	sink *fileSink
	cfg  Config
}

// No-op implementation
type noopMetricsCollector struct{}

func NewService(cfg Config) (MetricsCollector, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	// If metrics is disabled, return a no-op collector
	if !cfg.Enabled {
		logger.Debug().Msg("Metrics file disabled, using no-op collector")
		return &noopMetricsCollector{}, nil
	}

	sink, err := newFileSink(cfg)
	if err != nil {
		logger.Debug().Err(err).Msg("Failed to create metrics sink")
		return nil, err
	}

	logger.Debug().
		Str("path", cfg.Path).
		Str("measurement", cfg.Measurement).
		Str("host", sink.host).
		Msg("Metrics service initialized successfully")

	return &service{
		sink: sink,
		cfg:  cfg,
	}, nil
}

func (s *service) Record(ctx context.Context, snapshot *MetricsSnapshot) error {
	errFactory := errors.New()

	if snapshot == nil {
		return errFactory.New(ErrInvalidMetrics)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.sink.write(snapshot); err != nil {
			return err
		}
	}

	return nil
}

func (*service) Close() error {
	return nil
}

// No-op implementation
func (*noopMetricsCollector) Record(_ context.Context, _ *MetricsSnapshot) error {
	return nil
}

func (*noopMetricsCollector) Close() error {
	return nil
}
