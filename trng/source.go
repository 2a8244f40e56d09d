package trng

// Source adapts an Rng to the generic random-source contract of
// math/rand.Source64, whose methods cannot fail by signature. Any hardware
// fault observed through a Source therefore panics with the Fault value:
// that is the deliberate price of exposing a no-error interface over
// genuinely fault-capable hardware. Callers that need to recover should use
// ReadWord or FillBytes instead.
type Source struct {
	rng *Rng
}

// Source returns the generic-source adapter for r. The adapter shares r's
// underlying peripheral; reads through either interleave freely.
func (r *Rng) Source() *Source {
	return &Source{rng: r}
}

// Uint32 returns one hardware word, panicking on a hardware fault.
func (s *Source) Uint32() uint32 {
	word, err := s.rng.ReadWord()
	if err != nil {
		panic(err)
	}
	return word
}

// Uint64 composes two independent word reads: the first becomes the high 32
// bits, the second the low 32. There is no atomicity between the two reads;
// a fault between them panics out of whichever read sees it.
func (s *Source) Uint64() uint64 {
	hi := s.Uint32()
	lo := s.Uint32()
	return uint64(hi)<<32 | uint64(lo)
}

// Int63 satisfies math/rand.Source.
func (s *Source) Int63() int64 {
	return int64(s.Uint64() >> 1)
}

// Seed is a no-op: a hardware entropy source cannot be seeded.
func (s *Source) Seed(int64) {}

// Fill fills p with random data, panicking on a hardware fault.
func (s *Source) Fill(p []byte) {
	if err := s.rng.FillBytes(p); err != nil {
		panic(err)
	}
}
