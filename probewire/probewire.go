// Package probewire defines the register-access protocol spoken by the
// debug-probe firmware that bridges a host to the generator's registers, and
// binds any transport implementing Link to the driver interfaces of package
// trng. Packages serialprobe and usbprobe supply the transports.
package probewire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Register indices in the probe firmware's register file. The low indices
// map onto the generator block, the 0x1x range onto the clock-control block.
const (
	RegControl    = 0x00 // generator control register
	RegStatus     = 0x01 // generator status register
	RegData       = 0x02 // generator data register (read clears ready)
	RegClockCtrl  = 0x10 // clock control register (PLL on/ready)
	RegClockGate  = 0x11 // peripheral clock gate enable, write 1 to open
	RegClockReset = 0x12 // peripheral reset, write 1 to pulse
)

// Hardware bit positions, matching the reference peripheral's layout.
const (
	CtrlGenEnable = 1 << 2 // RNGEN

	StatusDataReady  = 1 << 0 // DRDY
	StatusClockError = 1 << 1 // CECS
	StatusSeedError  = 1 << 2 // SECS

	ClockPLLOn    = 1 << 24 // PLLON
	ClockPLLReady = 1 << 25 // PLLRDY
)

// Frame layout: both directions are fixed 8-byte frames.
//
//	byte 0    magic (0xA5 request, 0x5A response)
//	byte 1    opcode (request) / status (response)
//	byte 2    register index
//	bytes 3-6 value, little-endian (zero in read requests)
//	byte 7    XOR of bytes 0-6
const FrameLen = 8

const (
	reqMagic  = 0xA5
	respMagic = 0x5A

	// Request opcodes.
	OpRead  = 0x01
	OpWrite = 0x02

	// Response status codes.
	respOK   = 0x00
	respNack = 0x01
)

var (
	// ErrBadFrame means a response failed structural validation (magic,
	// checksum, or register echo).
	ErrBadFrame = errors.New("probewire: malformed response frame")
	// ErrNack means the probe firmware rejected the request.
	ErrNack = errors.New("probewire: request rejected by probe")
)

func checksum(frame []byte) byte {
	var c byte
	for _, b := range frame[:FrameLen-1] {
		c ^= b
	}
	return c
}

// AppendReadFrame appends a read request for reg to dst.
func AppendReadFrame(dst []byte, reg uint8) []byte {
	return appendRequest(dst, OpRead, reg, 0)
}

// AppendWriteFrame appends a write request of val to reg to dst.
func AppendWriteFrame(dst []byte, reg uint8, val uint32) []byte {
	return appendRequest(dst, OpWrite, reg, val)
}

func appendRequest(dst []byte, op, reg uint8, val uint32) []byte {
	var f [FrameLen]byte
	f[0] = reqMagic
	f[1] = op
	f[2] = reg
	binary.LittleEndian.PutUint32(f[3:7], val)
	f[7] = checksum(f[:])
	return append(dst, f[:]...)
}

// ParseResponse validates a response frame for the given register and
// returns the value it carries. Write responses echo the written value.
func ParseResponse(frame []byte, reg uint8) (uint32, error) {
	if len(frame) != FrameLen {
		return 0, fmt.Errorf("%w: length %d", ErrBadFrame, len(frame))
	}
	if frame[0] != respMagic {
		return 0, fmt.Errorf("%w: magic 0x%02X", ErrBadFrame, frame[0])
	}
	if frame[7] != checksum(frame) {
		return 0, fmt.Errorf("%w: bad checksum", ErrBadFrame)
	}
	if frame[2] != reg {
		return 0, fmt.Errorf("%w: register echo 0x%02X, want 0x%02X", ErrBadFrame, frame[2], reg)
	}
	switch frame[1] {
	case respOK:
		return binary.LittleEndian.Uint32(frame[3:7]), nil
	case respNack:
		return 0, ErrNack
	default:
		return 0, fmt.Errorf("%w: status 0x%02X", ErrBadFrame, frame[1])
	}
}
