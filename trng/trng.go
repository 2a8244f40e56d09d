package trng

import (
	"encoding/binary"
	"sync/atomic"
)

// Status is a snapshot of the peripheral's three status flags, read fresh on
// every poll and never cached.
type Status struct {
	// ClockError is the CECS latch: the generator clock is not in the
	// required frequency relation with the core clock.
	ClockError bool
	// SeedError is the SECS latch: the hardware entropy self-test failed
	// (too many repeated or alternating bits).
	SeedError bool
	// DataReady reports that a fresh 32-bit word is available. Reading the
	// data register clears it.
	DataReady bool
}

// Registers is the peripheral's register interface. Implementations map the
// methods onto the generator's control, status, and data registers, whether
// by direct MMIO, a debug probe, or simulation.
//
// The methods carry no error returns because memory-mapped access cannot
// fail; transport-backed implementations must handle link failure themselves
// (see package probewire).
type Registers interface {
	// EnableGenerator sets the generator-enable control bit.
	EnableGenerator()
	// Status reads the status register once.
	Status() Status
	// Data reads the 32-bit data register. The read clears DataReady.
	Data() uint32
}

// ClockControl is the slice of the system clock-control block the generator
// depends on: its peripheral clock gate and reset line, and the PLL feeding
// its clock source.
type ClockControl interface {
	// PLLReady reports whether the system PLL is locked.
	PLLReady() bool
	// EnablePLL turns the PLL on. Lock is signalled later via PLLReady.
	EnablePLL()
	// EnableClock opens the generator's peripheral clock gate.
	EnableClock()
	// ResetPeripheral pulses the generator's reset line, clearing any
	// latched fault state in the peripheral.
	ResetPeripheral()
}

// Interrupts controls the global interrupt-enable state. Init masks
// interrupts around the clock-configuration critical section so no handler
// can race on the shared clock-control registers.
type Interrupts interface {
	// Disable masks interrupts and returns the previous state.
	Disable() uintptr
	// Restore reinstates a state previously returned by Disable.
	Restore(state uintptr)
}

// NoInterrupts is an Interrupts implementation that does nothing, for hosted
// and simulated targets that have no global interrupt mask.
type NoInterrupts struct{}

func (NoInterrupts) Disable() uintptr { return 0 }

func (NoInterrupts) Restore(uintptr) {}

// Handle is the exclusive-ownership token for one physical peripheral. At
// most one Rng can be live per Handle; Init claims it and Release returns it.
// A Handle must not be copied after first use.
type Handle struct {
	regs    Registers
	claimed atomic.Bool
}

// NewHandle wraps a register interface in an ownership token. The caller is
// responsible for creating only one Handle per physical peripheral.
func NewHandle(regs Registers) *Handle {
	if regs == nil {
		panic("trng: nil register interface")
	}
	return &Handle{regs: regs}
}

// Rng is an initialized driver instance. It exists only after Init has seen
// the peripheral produce data without a clock error, and it holds exclusive
// ownership of the underlying Handle until Release.
type Rng struct {
	h *Handle
}

// Init claims the handle, brings up the generator's clocks, and enables the
// generator, returning a driver instance once the hardware reports its first
// word ready.
//
// The whole sequence runs with interrupts masked via irq (pass NoInterrupts
// on targets without a global mask). If the PLL is not locked it is started
// and Init busy-waits without timeout for lock. Init then opens the
// peripheral clock gate, resets the peripheral, sets the generator-enable
// bit, and busy-waits for data-ready.
//
// The caller must have configured the clock tree so the generator clock is
// at least 1/16 of the core clock; that precondition is not checked in
// software. If the hardware raises a clock error during warm-up, Init
// panics: a misconfigured clock at init time is a board defect, not a
// runtime condition to report upward.
//
// Init panics if h is already claimed by a live Rng.
func Init(h *Handle, clk ClockControl, irq Interrupts) *Rng {
	if h == nil {
		panic("trng: nil handle")
	}
	if clk == nil {
		panic("trng: nil clock control")
	}
	if irq == nil {
		irq = NoInterrupts{}
	}
	if !h.claimed.CompareAndSwap(false, true) {
		panic("trng: peripheral already claimed by a live driver instance")
	}

	state := irq.Disable()
	defer irq.Restore(state)

	// The generator clock source hangs off the PLL, so make sure it runs.
	if !clk.PLLReady() {
		clk.EnablePLL()
		for !clk.PLLReady() {
		}
	}

	clk.EnableClock()
	clk.ResetPeripheral()

	h.regs.EnableGenerator()

	// Warm up until the first word is ready. The hardware clock check is
	// used instead of a software frequency calculation, which may be
	// inaccurate: a CECS flag during warm-up means the clock relation is
	// wrong and the instance would be silently broken.
	for {
		s := h.regs.Status()
		if s.ClockError {
			panic("trng: clock error during warm-up (generator clock below 1/16 of core clock)")
		}
		if s.DataReady {
			break
		}
	}

	return &Rng{h: h}
}

// ReadWord returns 32 bits of random data, or a classified hardware fault.
//
// It polls the status flags in an unbounded loop. Per iteration the checks
// are ordered: a clock error is reported first regardless of the other
// flags, then a seed error, and only with both fault latches clear is a
// ready word read and returned. Faults are latched in hardware; recovery is
// the caller's job via Release and a fresh Init.
func (r *Rng) ReadWord() (uint32, error) {
	for {
		s := r.h.regs.Status()
		switch {
		case s.ClockError:
			return 0, FaultClock
		case s.SeedError:
			return 0, FaultSeed
		case s.DataReady:
			return r.h.regs.Data(), nil
		}
	}
}

// fill writes random bytes into p and reports how many were written before
// an error, if any.
func (r *Rng) fill(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		word, err := r.ReadWord()
		if err != nil {
			return n, err
		}
		var b [4]byte
		binary.NativeEndian.PutUint32(b[:], word)
		n += copy(p[n:], b[:])
	}
	return n, nil
}

// FillBytes fills p with random data, reading one 32-bit word per 4 bytes
// (the final word may contribute fewer). Bytes are laid down in the word's
// native in-memory order, so the same word values yield different byte
// sequences on big- and little-endian targets.
//
// On a hardware fault FillBytes stops immediately and returns it; the
// unfilled remainder of p is unspecified. A zero-length p succeeds without
// touching the peripheral.
func (r *Rng) FillBytes(p []byte) error {
	_, err := r.fill(p)
	return err
}

// Read implements io.Reader over the generator. On success n == len(p); on
// a hardware fault n reports how many bytes were filled before it surfaced.
func (r *Rng) Read(p []byte) (int, error) {
	return r.fill(p)
}

// Release gives back ownership of the register handle, ending this driver
// instance. No disable sequence is issued: the peripheral stays electrically
// enabled, and any further lifecycle decision (re-init, leave running, hand
// off) belongs to the caller. The Rng must not be used after Release.
func (r *Rng) Release() *Handle {
	h := r.h
	r.h = nil
	h.claimed.Store(false)
	return h
}
