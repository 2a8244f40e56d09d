// Package usbprobe talks to a TRNG debug probe over raw USB bulk endpoints
// via libusb. It speaks the same register-access frames as serialprobe but
// skips the CDC layer, which matters on hosts where the CDC driver adds
// per-transfer latency to the driver's polling loops. It implements
// probewire.Link.
package usbprobe

import (
	"errors"
	"fmt"

	"github.com/google/gousb"

	"github.com/Thiagojm/trng_go/probewire"
)

// USB identifiers of the probe firmware (pid.codes test allocation). The
// bulk interface is the second interface, after the CDC pair.
const (
	probeVID = 0x1209
	probePID = 0x7A01

	bulkInterface = 2
)

// Session encapsulates an open probe via gousb.
//
// Usage:
//
//	s, _ := usbprobe.Open()
//	defer s.Close()
//	dev := probewire.Bind(s)
//	rng := trng.Init(trng.NewHandle(dev), dev, trng.NoInterrupts{})
type Session struct {
	ctx   *gousb.Context
	dev   *gousb.Device
	cfg   *gousb.Config
	intf  *gousb.Interface
	inEp  *gousb.InEndpoint
	outEp *gousb.OutEndpoint
}

// Open opens the first probe found and claims its bulk interface.
func Open() (*Session, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(probeVID), gousb.ID(probePID))
	if err != nil {
		ctx.Close()
		return nil, err
	}
	if dev == nil {
		ctx.Close()
		return nil, errors.New("TRNG probe not found")
	}

	// Ensure it's auto-detached from kernel drivers where applicable.
	_ = dev.SetAutoDetach(true)

	cfg, err := dev.Config(1)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, err
	}
	intf, err := cfg.Interface(bulkInterface, 0)
	if err != nil {
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, err
	}

	var inEp *gousb.InEndpoint
	var outEp *gousb.OutEndpoint
	for _, ep := range intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch ep.Direction {
		case gousb.EndpointDirectionIn:
			inEp, err = intf.InEndpoint(ep.Number)
		case gousb.EndpointDirectionOut:
			outEp, err = intf.OutEndpoint(ep.Number)
		}
		if err != nil {
			intf.Close()
			cfg.Close()
			dev.Close()
			ctx.Close()
			return nil, err
		}
	}
	if inEp == nil || outEp == nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, errors.New("bulk endpoints not found")
	}

	return &Session{ctx: ctx, dev: dev, cfg: cfg, intf: intf, inEp: inEp, outEp: outEp}, nil
}

// Close releases USB resources.
func (s *Session) Close() {
	if s == nil {
		return
	}
	if s.intf != nil {
		s.intf.Close()
	}
	if s.cfg != nil {
		s.cfg.Close()
	}
	if s.dev != nil {
		s.dev.Close()
	}
	if s.ctx != nil {
		s.ctx.Close()
	}
}

// ReadRegister reads one 32-bit register through the probe.
func (s *Session) ReadRegister(reg uint8) (uint32, error) {
	return s.roundTrip(probewire.AppendReadFrame(nil, reg), reg)
}

// WriteRegister writes one 32-bit register through the probe.
func (s *Session) WriteRegister(reg uint8, val uint32) error {
	_, err := s.roundTrip(probewire.AppendWriteFrame(nil, reg, val), reg)
	return err
}

func (s *Session) roundTrip(req []byte, reg uint8) (uint32, error) {
	if _, err := s.outEp.Write(req); err != nil {
		return 0, fmt.Errorf("write request: %w", err)
	}

	resp := make([]byte, probewire.FrameLen)
	total := 0
	for total < len(resp) {
		n, err := s.inEp.Read(resp[total:])
		if err != nil {
			return 0, fmt.Errorf("read response: %w", err)
		}
		total += n
	}
	return probewire.ParseResponse(resp, reg)
}
