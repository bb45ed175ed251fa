package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/mutker/ipmifanctl/internal/errors"
)

// fileSink rewrites a line-protocol file that a monitoring agent polls.
type fileSink struct {
	path        string
	measurement string
	host        string
}

func newFileSink(cfg Config) (*fileSink, error) {
	errFactory := errors.New()

	host, err := cfg.hostname()
	if err != nil {
		return nil, err
	}
	if !validTag(host) {
		return nil, errFactory.WithData(ErrInvalidName, host)
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.Path), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.Path,
			Error: err.Error(),
		})
	}

	return &fileSink{
		path:        cfg.Path,
		measurement: cfg.Measurement,
		host:        host,
	}, nil
}

// write truncates the file and writes the duty cycle as decimal and hex.
func (s *fileSink) write(snapshot *MetricsSnapshot) error {
	data := Format(s.measurement, s.host, snapshot.DutyCycle)
	if err := os.WriteFile(s.path, data, defaultFilePerm); err != nil {
		return errors.New().WithData(ErrWriteFailed, struct {
			Path  string
			Error string
		}{
			Path:  s.path,
			Error: err.Error(),
		})
	}

	return nil
}

// Format renders the two records of the metrics file:
//
//	ipmi_fan,host=web1 speed_percent=44
//	ipmi_fan,host=web1 speed_raw=2c
func Format(measurement, host string, dutyCycle int) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%s,host=%s speed_percent=%d\n", measurement, host, dutyCycle)
	fmt.Fprintf(&b, "%s,host=%s speed_raw=%x\n", measurement, host, dutyCycle)

	return []byte(b.String())
}
