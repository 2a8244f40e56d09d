// Package serialprobe talks to a TRNG debug probe presented as a USB-CDC
// serial port. The probe firmware forwards single-register reads and writes
// to the generator's memory-mapped registers; this package implements
// probewire.Link on top of the serial framing.
package serialprobe

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/Thiagojm/trng_go/probewire"
)

// DeviceNamePrefix identifies a probe by the product string reported over
// USB-CDC.
const DeviceNamePrefix = "TRNG-Probe"

// USB identifiers of the probe firmware (pid.codes test allocation).
const (
	probeVID = "1209"
	probePID = "7A01"
)

const (
	baudRate     = 115200
	readTimeout  = 200 * time.Millisecond
	readDeadline = 5 * time.Second
)

// Detect returns true if a probe serial device is present on the system. It
// enumerates available serial ports and checks their USB metadata.
func Detect() (bool, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return false, fmt.Errorf("enumerating ports: %w", err)
	}
	for _, p := range ports {
		if isProbe(p) {
			return true, nil
		}
	}
	return false, nil
}

// FindPort returns the port path of the first detected probe, e.g. COM5 on
// Windows or /dev/ttyACM0 on Linux.
func FindPort() (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("enumerating ports: %w", err)
	}
	for _, p := range ports {
		if isProbe(p) && p.Name != "" {
			return p.Name, nil
		}
	}
	return "", errors.New("TRNG probe not found")
}

// Probe is an open register-access session over a serial port. It implements
// probewire.Link; wrap it with probewire.Bind to drive trng.Init.
type Probe struct {
	port serial.Port
	buf  []byte
}

// Open opens a probe session on portName. If portName is empty the first
// detected probe is used.
func Open(portName string) (*Probe, error) {
	if portName == "" {
		var err error
		portName, err = FindPort()
		if err != nil {
			return nil, err
		}
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", portName, err)
	}

	_ = port.SetDTR(true)
	_ = port.SetReadTimeout(readTimeout)
	// Drop anything buffered from a previous session before the first frame.
	if err := port.ResetInputBuffer(); err != nil {
		// not fatal, proceed
	}

	return &Probe{port: port, buf: make([]byte, 0, probewire.FrameLen)}, nil
}

// Close closes the underlying serial port.
func (p *Probe) Close() error {
	return p.port.Close()
}

// ReadRegister reads one 32-bit register through the probe.
func (p *Probe) ReadRegister(reg uint8) (uint32, error) {
	return p.roundTrip(probewire.AppendReadFrame(p.buf[:0], reg), reg)
}

// WriteRegister writes one 32-bit register through the probe.
func (p *Probe) WriteRegister(reg uint8, val uint32) error {
	_, err := p.roundTrip(probewire.AppendWriteFrame(p.buf[:0], reg, val), reg)
	return err
}

// roundTrip sends one request frame and reads back exactly one response
// frame, giving up after an overall deadline so a wedged probe cannot hang
// the host tool forever.
func (p *Probe) roundTrip(req []byte, reg uint8) (uint32, error) {
	if _, err := p.port.Write(req); err != nil {
		return 0, fmt.Errorf("write request: %w", err)
	}

	resp := make([]byte, probewire.FrameLen)
	total := 0
	deadline := time.Now().Add(readDeadline)
	for total < len(resp) {
		if time.Now().After(deadline) {
			return 0, fmt.Errorf("response timeout: read %d/%d bytes", total, len(resp))
		}
		n, err := p.port.Read(resp[total:])
		if err != nil {
			return 0, fmt.Errorf("read response: %w", err)
		}
		total += n
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
	return probewire.ParseResponse(resp, reg)
}

func isProbe(p *enumerator.PortDetails) bool {
	if p == nil {
		return false
	}
	if p.IsUSB && strings.HasPrefix(p.Product, DeviceNamePrefix) {
		return true
	}
	if p.IsUSB && p.VID == probeVID && p.PID == probePID {
		return true
	}
	return strings.HasPrefix(p.Name, DeviceNamePrefix)
}
