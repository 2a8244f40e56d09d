// Package osfeed credits entropy collected from the generator to the host
// operating system's random pool, the way rngd does for other hardware
// sources. Only Linux is supported; elsewhere Feed reports ErrUnsupported.
package osfeed

import "errors"

// ErrUnsupported is returned on platforms without a writable kernel entropy
// pool interface.
var ErrUnsupported = errors.New("osfeed: not supported on this platform")
