//go:build linux

package osfeed

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	randomDevice     = "/dev/random"
	entropyAvailPath = "/proc/sys/kernel/random/entropy_avail"
)

// Feed injects sample into the kernel entropy pool and credits it with
// entropyBits bits via the RNDADDENTROPY ioctl. Crediting requires the
// caller to hold CAP_SYS_ADMIN; without it the ioctl fails with EPERM.
//
// entropyBits must not exceed 8*len(sample). Callers feeding a source they
// have not characterized should credit conservatively.
func Feed(sample []byte, entropyBits int) error {
	if len(sample) == 0 {
		return errors.New("osfeed: empty sample")
	}
	if entropyBits < 0 || entropyBits > 8*len(sample) {
		return fmt.Errorf("osfeed: entropy credit %d bits out of range for %d bytes", entropyBits, len(sample))
	}

	f, err := os.OpenFile(randomDevice, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", randomDevice, err)
	}
	defer func() { _ = f.Close() }()

	// struct rand_pool_info: entropy_count, buf_size, then the sample.
	info := make([]byte, 8+len(sample))
	binary.NativeEndian.PutUint32(info[0:4], uint32(entropyBits))
	binary.NativeEndian.PutUint32(info[4:8], uint32(len(sample)))
	copy(info[8:], sample)

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), uintptr(unix.RNDADDENTROPY), uintptr(unsafe.Pointer(&info[0])))
	if errno != 0 {
		return fmt.Errorf("RNDADDENTROPY: %w", errno)
	}
	return nil
}

// Available returns the kernel's current entropy estimate in bits.
func Available() (int, error) {
	raw, err := os.ReadFile(entropyAvailPath)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", entropyAvailPath, err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", entropyAvailPath, err)
	}
	return n, nil
}
