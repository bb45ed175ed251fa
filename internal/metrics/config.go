package metrics

import (
	"os"

	"codeberg.org/mutker/ipmifanctl/internal/errors"
)

const (
	// File system permissions and paths
	defaultDirPerm     = 0o755
	defaultFilePerm    = 0o644
	defaultPath        = "/run/ipmifanctl/metrics"
	defaultMeasurement = "ipmi_fan"
)

type Config struct {
	Path        string
	Measurement string
	Hostname    string
	Enabled     bool
}

func DefaultConfig() Config {
	return Config{
		Path:        defaultPath,
		Measurement: defaultMeasurement,
		Enabled:     true,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate the sink if metrics is enabled
	if !c.Enabled {
		return nil
	}
	if c.Path == "" {
		return errFactory.New(ErrInvalidPath)
	}
	if c.Measurement == "" || !validTag(c.Measurement) {
		return errFactory.WithData(ErrInvalidName, c.Measurement)
	}
	if c.Hostname != "" && !validTag(c.Hostname) {
		return errFactory.WithData(ErrInvalidName, c.Hostname)
	}

	return nil
}

// hostname returns the configured host tag, falling back to the system name.
func (c Config) hostname() (string, error) {
	if c.Hostname != "" {
		return c.Hostname, nil
	}

	host, err := os.Hostname()
	if err != nil {
		return "", errors.New().Wrap(ErrInvalidName, err)
	}

	return host, nil
}

// validTag rejects characters that would need escaping in line protocol.
func validTag(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', ',', '=', '\n', '"', '\\':
			return false
		}
	}

	return true
}
