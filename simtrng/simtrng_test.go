package simtrng_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thiagojm/trng_go/simtrng"
	"github.com/Thiagojm/trng_go/trng"
)

// The simulated peripheral must satisfy all three driver interfaces.
var (
	_ trng.Registers    = (*simtrng.Peripheral)(nil)
	_ trng.ClockControl = (*simtrng.Peripheral)(nil)
	_ trng.Interrupts   = (*simtrng.Peripheral)(nil)
)

func TestGateClosedAccessPanics(t *testing.T) {
	p := simtrng.New()
	require.Panics(t, func() { p.Status() }, "register access before opening the clock gate")
}

func TestScriptedQueueExhaustionPanics(t *testing.T) {
	p := simtrng.NewScripted(0x1)
	rng := trng.Init(trng.NewHandle(p), p, p)

	_, err := rng.ReadWord()
	require.NoError(t, err)

	// The queue is drained; another poll must fail fast instead of hanging.
	require.Panics(t, func() { rng.ReadWord() })
}

func TestPLLLocksAfterEnable(t *testing.T) {
	p := simtrng.New()
	assert.False(t, p.PLLReady())
	assert.False(t, p.PLLReady(), "the PLL does not lock before it is enabled")

	p.EnablePLL()
	for i := 0; !p.PLLReady(); i++ {
		require.Less(t, i, 10, "PLL must lock within a few polls")
	}
	assert.True(t, p.PLLReady())
	assert.Equal(t, 1, p.PLLStarts())
}

func TestResetClearsLatches(t *testing.T) {
	p := simtrng.New()
	p.EnableClock()
	p.EnableGenerator()
	p.LatchClockError()
	p.LatchSeedError()

	s := p.Status()
	assert.True(t, s.ClockError)
	assert.True(t, s.SeedError)

	p.ResetPeripheral()
	p.EnableGenerator()
	s = p.Status()
	assert.False(t, s.ClockError)
	assert.False(t, s.SeedError)
}

func TestHostEntropyWords(t *testing.T) {
	p := simtrng.New()
	p.EnableClock()
	p.EnableGenerator()

	before := p.WordsRead()
	_ = p.Data()
	_ = p.Data()
	assert.Equal(t, before+2, p.WordsRead())
}
