package probewire

import (
	"fmt"

	"github.com/Thiagojm/trng_go/trng"
)

// Link is a transport carrying single-register reads and writes to the probe
// firmware.
type Link interface {
	ReadRegister(reg uint8) (uint32, error)
	WriteRegister(reg uint8, val uint32) error
}

// Device exposes a Link as the MMIO-shaped driver interfaces trng.Registers
// and trng.ClockControl. Those interfaces carry no error returns, so a
// transport failure on them panics: a broken probe link is a tooling
// failure, not a hardware RNG fault, and must not be misreported as one.
// Use the Link directly where fallible access is wanted.
type Device struct {
	link Link
}

// Bind wraps a probe link in a register-interface device. Hand the result to
// trng.NewHandle and trng.Init together with itself as the clock control:
//
//	dev := probewire.Bind(link)
//	rng := trng.Init(trng.NewHandle(dev), dev, trng.NoInterrupts{})
func Bind(link Link) *Device {
	if link == nil {
		panic("probewire: nil link")
	}
	return &Device{link: link}
}

func (d *Device) read(reg uint8) uint32 {
	v, err := d.link.ReadRegister(reg)
	if err != nil {
		panic(fmt.Sprintf("probewire: register 0x%02X read failed: %v", reg, err))
	}
	return v
}

func (d *Device) write(reg uint8, val uint32) {
	if err := d.link.WriteRegister(reg, val); err != nil {
		panic(fmt.Sprintf("probewire: register 0x%02X write failed: %v", reg, err))
	}
}

// trng.Registers

func (d *Device) EnableGenerator() {
	d.write(RegControl, d.read(RegControl)|CtrlGenEnable)
}

func (d *Device) Status() trng.Status {
	sr := d.read(RegStatus)
	return trng.Status{
		ClockError: sr&StatusClockError != 0,
		SeedError:  sr&StatusSeedError != 0,
		DataReady:  sr&StatusDataReady != 0,
	}
}

func (d *Device) Data() uint32 {
	return d.read(RegData)
}

// trng.ClockControl

func (d *Device) PLLReady() bool {
	return d.read(RegClockCtrl)&ClockPLLReady != 0
}

func (d *Device) EnablePLL() {
	d.write(RegClockCtrl, d.read(RegClockCtrl)|ClockPLLOn)
}

func (d *Device) EnableClock() {
	d.write(RegClockGate, 1)
}

func (d *Device) ResetPeripheral() {
	d.write(RegClockReset, 1)
}
