// Package simtrng provides an in-memory simulation of the generator
// peripheral behind the trng driver interfaces. It backs the host demo
// command and the driver tests: status sequences can be scripted poll by
// poll, fault latches can be set, and every register access is counted.
//
// A Peripheral is not safe for concurrent use, matching the single-threaded
// access model of the real hardware.
package simtrng

import (
	crand "crypto/rand"
	"encoding/binary"

	"github.com/Thiagojm/trng_go/trng"
)

// Peripheral simulates one generator instance together with the slice of the
// clock-control block it depends on. It implements trng.Registers,
// trng.ClockControl, and trng.Interrupts, so a single value serves all three
// arguments of trng.Init.
type Peripheral struct {
	pllOn     bool
	pllLocked bool
	lockPolls int

	clockOn     bool
	generatorOn bool

	clockErr bool
	seedErr  bool
	badClock bool

	script      []trng.Status
	words       []uint32
	hostEntropy bool

	statusReads int
	wordsRead   int
	pllStarts   int
	resets      int
	irqDisables int
	irqRestores int
}

// defaultLockPolls makes the PLL report ready only on the second poll after
// enabling, so init code exercises its lock wait loop.
const defaultLockPolls = 2

// New returns a peripheral whose data register yields words drawn from the
// host's crypto/rand. The PLL starts unlocked and the clock gate closed, so
// trng.Init walks the full bring-up sequence.
func New() *Peripheral {
	return &Peripheral{hostEntropy: true, lockPolls: defaultLockPolls}
}

// NewScripted returns a peripheral whose data register yields exactly the
// given words in order. Reading past the end of the queue panics rather than
// letting a poll loop hang a test.
func NewScripted(words ...uint32) *Peripheral {
	p := &Peripheral{lockPolls: defaultLockPolls}
	p.words = append(p.words, words...)
	return p
}

// Script queues exact status snapshots to be returned by the next Status
// calls, ahead of the computed live state. Use it to replay flag sequences
// such as "idle, idle, ready".
func (p *Peripheral) Script(statuses ...trng.Status) {
	p.script = append(p.script, statuses...)
}

// QueueWords appends words to the data register's queue. Queued words are
// served before host entropy.
func (p *Peripheral) QueueWords(words ...uint32) {
	p.words = append(p.words, words...)
}

// LatchClockError sets the sticky clock-error flag. Like the hardware latch
// it is cleared only by a peripheral reset.
func (p *Peripheral) LatchClockError() { p.clockErr = true }

// LatchSeedError sets the sticky seed-error flag, cleared only by reset.
func (p *Peripheral) LatchSeedError() { p.seedErr = true }

// MisconfigureClock simulates a clock tree that violates the generator's
// frequency precondition: the clock-error flag re-asserts after every reset,
// the way a miswired board behaves. No recovery cycle clears it.
func (p *Peripheral) MisconfigureClock() { p.badClock = true }

// trng.Registers

func (p *Peripheral) EnableGenerator() {
	p.checkGate()
	p.generatorOn = true
}

func (p *Peripheral) Status() trng.Status {
	p.checkGate()
	p.statusReads++
	if len(p.script) > 0 {
		s := p.script[0]
		p.script = p.script[1:]
		return s
	}
	if p.generatorOn && len(p.words) == 0 && !p.hostEntropy && !p.clockErr && !p.badClock && !p.seedErr {
		panic("simtrng: scripted word queue exhausted")
	}
	return trng.Status{
		ClockError: p.clockErr || p.badClock,
		SeedError:  p.seedErr,
		DataReady:  p.generatorOn && (len(p.words) > 0 || p.hostEntropy),
	}
}

func (p *Peripheral) Data() uint32 {
	p.checkGate()
	p.wordsRead++
	if len(p.words) > 0 {
		w := p.words[0]
		p.words = p.words[1:]
		return w
	}
	if !p.hostEntropy {
		panic("simtrng: scripted word queue exhausted")
	}
	var b [4]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("simtrng: host entropy unavailable: " + err.Error())
	}
	return binary.NativeEndian.Uint32(b[:])
}

// checkGate models that register access to a clock-gated peripheral does not
// work: a driver touching registers before opening the gate is a sequencing
// bug worth failing loudly on.
func (p *Peripheral) checkGate() {
	if !p.clockOn {
		panic("simtrng: register access with peripheral clock gate closed")
	}
}

// trng.ClockControl

func (p *Peripheral) PLLReady() bool {
	if p.pllOn && !p.pllLocked {
		if p.lockPolls > 0 {
			p.lockPolls--
		}
		if p.lockPolls == 0 {
			p.pllLocked = true
		}
	}
	return p.pllLocked
}

func (p *Peripheral) EnablePLL() {
	if !p.pllOn {
		p.pllOn = true
		p.pllStarts++
	}
}

func (p *Peripheral) EnableClock() { p.clockOn = true }

func (p *Peripheral) ResetPeripheral() {
	p.generatorOn = false
	p.clockErr = false
	p.seedErr = false
	p.resets++
}

// trng.Interrupts

func (p *Peripheral) Disable() uintptr {
	p.irqDisables++
	return uintptr(p.irqDisables)
}

func (p *Peripheral) Restore(uintptr) { p.irqRestores++ }

// Introspection for tests.

// StatusReads returns how many times the status register was read.
func (p *Peripheral) StatusReads() int { return p.statusReads }

// WordsRead returns how many times the data register was read.
func (p *Peripheral) WordsRead() int { return p.wordsRead }

// PLLStarts returns how many times the PLL was switched on.
func (p *Peripheral) PLLStarts() int { return p.pllStarts }

// Resets returns how many peripheral resets were issued.
func (p *Peripheral) Resets() int { return p.resets }

// GeneratorEnabled reports the generator-enable control bit.
func (p *Peripheral) GeneratorEnabled() bool { return p.generatorOn }

// InterruptsBalanced reports whether every Disable was matched by a Restore.
func (p *Peripheral) InterruptsBalanced() bool { return p.irqDisables == p.irqRestores }
