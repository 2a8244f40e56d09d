// Package naming builds the filenames used for TRNG capture files, encoding
// the backend, sample size, and collection interval so analysis tools can
// recover them from the name alone.
package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Backend identifies how the generator was reached during a capture.
// Allowed values are "sim" (simulated peripheral), "serial" (serial debug
// probe), and "usb" (raw USB debug probe).
type Backend string

const (
	BackendSim    Backend = "sim"
	BackendSerial Backend = "serial"
	BackendUSB    Backend = "usb"
)

// Validate checks whether b is one of the allowed backend identifiers.
func (b Backend) Validate() error {
	if b == BackendSim || b == BackendSerial || b == BackendUSB {
		return nil
	}
	return fmt.Errorf("invalid backend: %q (allowed: sim, serial, usb)", string(b))
}

// BuildBaseName builds the base filename using the convention:
//
//	YYYYMMDDTHHMMSS_{backend}_w{words}_i{interval}
//
// where words > 0 is the number of 32-bit generator words per sample and
// interval > 0 is the seconds between samples. The timestamp comes from the
// provided time instant.
func BuildBaseName(now time.Time, backend Backend, words int, intervalSeconds int) (string, error) {
	if err := backend.Validate(); err != nil {
		return "", err
	}
	if words <= 0 {
		return "", errors.New("words must be > 0")
	}
	if intervalSeconds <= 0 {
		return "", errors.New("intervalSeconds must be > 0")
	}
	stamp := now.Format("20060102T150405")
	return fmt.Sprintf("%s_%s_w%d_i%d", stamp, string(backend), words, intervalSeconds), nil
}

// WithExt appends an extension to a base name. A leading dot on ext is
// accepted and not doubled. Empty ext returns base unchanged.
func WithExt(base string, ext string) string {
	if ext == "" {
		return base
	}
	return base + "." + strings.TrimPrefix(ext, ".")
}

// CapturePaths builds the .bin and .csv paths for one capture inside dir
// (dir may be empty for the current directory).
func CapturePaths(dir string, now time.Time, backend Backend, words int, intervalSeconds int) (binPath string, csvPath string, err error) {
	base, err := BuildBaseName(now, backend, words, intervalSeconds)
	if err != nil {
		return "", "", err
	}
	return join(dir, WithExt(base, "bin")), join(dir, WithExt(base, "csv")), nil
}

func join(dir, name string) string {
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
