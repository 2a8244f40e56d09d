package trng

import "fmt"

// faultCodeBase offsets fault discriminants into a reserved region of the
// error-code space so they cannot collide with generic error codes used by
// other entropy sources sharing the namespace.
const faultCodeBase uint32 = 1 << 31

// Fault classifies a hardware fault reported by the generator's status
// latches. The numeric discriminants follow the peripheral reference and are
// stable across releases.
type Fault uint32

const (
	// FaultClock means the generator clock was not correctly detected
	// (below 1/16 of the core clock). Corresponds to the CECS latch.
	FaultClock Fault = 2
	// FaultSeed means the generator saw more than 64 consecutive equal bits
	// or more than 32 consecutive 01 pairs and rejected its output.
	// Corresponds to the SECS latch.
	FaultSeed Fault = 4
)

func (f Fault) Error() string {
	switch f {
	case FaultClock:
		return "trng: clock error (generator clock below 1/16 of core clock)"
	case FaultSeed:
		return "trng: seed error (entropy self-test failed)"
	default:
		return fmt.Sprintf("trng: unknown fault %d", uint32(f))
	}
}

// Code returns the fault's code in the shared error-code namespace.
func (f Fault) Code() uint32 {
	return faultCodeBase + uint32(f)
}
