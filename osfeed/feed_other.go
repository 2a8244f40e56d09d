//go:build !linux

package osfeed

// Feed is not available on this platform.
func Feed(sample []byte, entropyBits int) error {
	return ErrUnsupported
}

// Available is not available on this platform.
func Available() (int, error) {
	return 0, ErrUnsupported
}
