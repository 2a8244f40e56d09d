// trngdemo is a minimal example program exercising the trng driver against
// the simulated peripheral: init, a few word reads, a byte fill, and the
// generic-source adapter plugged into math/rand.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	mrand "math/rand"

	"github.com/Thiagojm/trng_go/simtrng"
	"github.com/Thiagojm/trng_go/trng"
)

func main() {
	words := flag.Int("words", 4, "number of 32-bit words to read")
	fill := flag.Int("fill", 16, "size in bytes of the buffer to fill")
	flag.Parse()

	if *words < 0 || *fill < 0 {
		log.Fatal("-words and -fill must be >= 0")
	}

	periph := simtrng.New()
	rng := trng.Init(trng.NewHandle(periph), periph, periph)

	for i := 0; i < *words; i++ {
		w, err := rng.ReadWord()
		if err != nil {
			log.Fatalf("read word: %v", err)
		}
		fmt.Printf("word %d: 0x%08X\n", i+1, w)
	}

	buf := make([]byte, *fill)
	if err := rng.FillBytes(buf); err != nil {
		log.Fatalf("fill bytes: %v", err)
	}
	fmt.Printf("filled %d bytes: %s\n", len(buf), hex.EncodeToString(buf))

	// The driver is also a math/rand source.
	r := mrand.New(rng.Source())
	fmt.Printf("rand.Intn(100) = %d\n", r.Intn(100))

	// Release and re-init: the recovery cycle callers run after a fault.
	rng = trng.Init(rng.Release(), periph, periph)
	w, err := rng.ReadWord()
	if err != nil {
		log.Fatalf("read after re-init: %v", err)
	}
	fmt.Printf("word after re-init: 0x%08X\n", w)
}
