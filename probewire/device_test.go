package probewire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thiagojm/trng_go/trng"
)

// fakeLink is an in-memory register file.
type fakeLink struct {
	regs map[uint8]uint32
	err  error
}

func newFakeLink() *fakeLink {
	return &fakeLink{regs: make(map[uint8]uint32)}
}

func (l *fakeLink) ReadRegister(reg uint8) (uint32, error) {
	if l.err != nil {
		return 0, l.err
	}
	return l.regs[reg], nil
}

func (l *fakeLink) WriteRegister(reg uint8, val uint32) error {
	if l.err != nil {
		return l.err
	}
	l.regs[reg] = val
	return nil
}

func TestDeviceControl(t *testing.T) {
	link := newFakeLink()
	link.regs[RegControl] = 0x00000001 // unrelated bit already set
	dev := Bind(link)

	dev.EnableGenerator()
	assert.Equal(t, uint32(0x00000001|CtrlGenEnable), link.regs[RegControl], "enable is a read-modify-write")

	dev.EnableClock()
	assert.Equal(t, uint32(1), link.regs[RegClockGate])

	dev.ResetPeripheral()
	assert.Equal(t, uint32(1), link.regs[RegClockReset])
}

func TestDeviceStatusDecoding(t *testing.T) {
	link := newFakeLink()
	dev := Bind(link)

	link.regs[RegStatus] = StatusDataReady
	assert.Equal(t, trng.Status{DataReady: true}, dev.Status())

	link.regs[RegStatus] = StatusClockError | StatusSeedError
	assert.Equal(t, trng.Status{ClockError: true, SeedError: true}, dev.Status())

	link.regs[RegData] = 0xA5A5A5A5
	assert.Equal(t, uint32(0xA5A5A5A5), dev.Data())
}

func TestDevicePLL(t *testing.T) {
	link := newFakeLink()
	dev := Bind(link)

	assert.False(t, dev.PLLReady())

	dev.EnablePLL()
	assert.Equal(t, uint32(ClockPLLOn), link.regs[RegClockCtrl])

	link.regs[RegClockCtrl] |= ClockPLLReady
	assert.True(t, dev.PLLReady())
}

func TestDevicePanicsOnLinkFailure(t *testing.T) {
	link := newFakeLink()
	dev := Bind(link)
	link.err = errors.New("probe unplugged")

	require.Panics(t, func() { dev.Status() })
	require.Panics(t, func() { dev.EnableGenerator() })
}

func TestBindNilLinkPanics(t *testing.T) {
	require.Panics(t, func() { Bind(nil) })
}
