package trng_test

import (
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thiagojm/trng_go/simtrng"
	"github.com/Thiagojm/trng_go/trng"
)

var _ mrand.Source64 = (*trng.Source)(nil)

func TestSourceUint64Composition(t *testing.T) {
	const w1, w2 = uint32(0xCAFEBABE), uint32(0x8BADF00D)
	_, rng := initScripted(t, w1, w2)

	got := rng.Source().Uint64()
	assert.Equal(t, uint64(w1)<<32|uint64(w2), got, "first word is the high half, second the low half")
}

func TestSourceUint32(t *testing.T) {
	_, rng := initScripted(t, 0xDEADBEEF)

	assert.Equal(t, uint32(0xDEADBEEF), rng.Source().Uint32())
}

func TestSourcePanicsOnFault(t *testing.T) {
	p := simtrng.New()
	rng := trng.Init(trng.NewHandle(p), p, p)
	p.LatchClockError()

	defer func() {
		r := recover()
		require.NotNil(t, r, "infallible adapter must panic on a hardware fault")
		err, ok := r.(error)
		require.True(t, ok, "panic value carries the fault")
		assert.ErrorIs(t, err, trng.FaultClock)
	}()
	rng.Source().Uint32()
}

func TestSourceFillPanicsOnFault(t *testing.T) {
	p := simtrng.New()
	rng := trng.Init(trng.NewHandle(p), p, p)
	p.LatchSeedError()

	require.Panics(t, func() {
		rng.Source().Fill(make([]byte, 4))
	})
}

func TestSourceFill(t *testing.T) {
	_, rng := initScripted(t, 0x11111111, 0x22222222)

	buf := make([]byte, 8)
	rng.Source().Fill(buf)
	assert.Equal(t, nativeBytes(0x11111111, 0x22222222), buf)
}

func TestSourceWithMathRand(t *testing.T) {
	p := simtrng.New()
	rng := trng.Init(trng.NewHandle(p), p, p)

	src := rng.Source()
	src.Seed(42) // no-op for a hardware source

	r := mrand.New(src)
	for i := 0; i < 10; i++ {
		v := r.Intn(1000)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 1000)
	}
}

func TestFaultCodes(t *testing.T) {
	assert.Equal(t, uint32(1<<31+2), trng.FaultClock.Code())
	assert.Equal(t, uint32(1<<31+4), trng.FaultSeed.Code())
	assert.NotEqual(t, trng.FaultClock.Code(), trng.FaultSeed.Code())
	assert.NotEmpty(t, trng.FaultClock.Error())
	assert.NotEmpty(t, trng.FaultSeed.Error())
	assert.NotErrorIs(t, trng.FaultClock, trng.FaultSeed)
}
