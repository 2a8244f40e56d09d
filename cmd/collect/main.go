// collect samples the TRNG at a fixed interval and appends each sample to a
// .bin file plus a per-sample ones-count .csv, using the capture naming
// convention from package naming. On Linux, -feedos additionally credits
// each sample to the kernel entropy pool.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/bits"
	"os"
	"os/signal"
	"time"

	"github.com/Thiagojm/trng_go/naming"
	"github.com/Thiagojm/trng_go/osfeed"
	"github.com/Thiagojm/trng_go/probewire"
	"github.com/Thiagojm/trng_go/serialprobe"
	"github.com/Thiagojm/trng_go/simtrng"
	"github.com/Thiagojm/trng_go/trng"
	"github.com/Thiagojm/trng_go/usbprobe"
)

// countOnes returns the number of set bits in buf.
func countOnes(buf []byte) int {
	total := 0
	for _, b := range buf {
		total += bits.OnesCount8(b)
	}
	return total
}

func main() {
	wordsFlag := flag.Int("words", 64, "number of 32-bit words per sample (required > 0)")
	intervalSec := flag.Int("interval", 1, "interval between samples in seconds (required > 0)")
	backendFlag := flag.String("backend", "sim", "generator backend: sim|serial|usb")
	portFlag := flag.String("port", "", "serial port of the probe (serial backend; empty = autodetect)")
	outDir := flag.String("outdir", "data", "output directory for capture files")
	feedOS := flag.Bool("feedos", false, "feed each sample to the kernel entropy pool (Linux, needs CAP_SYS_ADMIN)")
	credit := flag.Int("credit", 0, "entropy bits to credit per sample with -feedos (0 = full sample size)")
	flag.Parse()

	if *wordsFlag <= 0 {
		log.Fatal("-words must be > 0")
	}
	if *intervalSec <= 0 {
		log.Fatal("-interval must be > 0")
	}

	var backend naming.Backend
	switch *backendFlag {
	case string(naming.BackendSim):
		backend = naming.BackendSim
	case string(naming.BackendSerial):
		backend = naming.BackendSerial
	case string(naming.BackendUSB):
		backend = naming.BackendUSB
	default:
		log.Fatalf("invalid -backend: %s (allowed: sim, serial, usb)", *backendFlag)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("creating outdir: %v", err)
	}

	// Bring up the chosen backend. All three yield the same handle/clock
	// pair for the driver.
	var (
		handle *trng.Handle
		clk    trng.ClockControl
		irq    trng.Interrupts = trng.NoInterrupts{}
	)
	switch backend {
	case naming.BackendSim:
		periph := simtrng.New()
		handle, clk, irq = trng.NewHandle(periph), periph, periph
	case naming.BackendSerial:
		probe, err := serialprobe.Open(*portFlag)
		if err != nil {
			log.Fatalf("open serial probe: %v", err)
		}
		defer func() { _ = probe.Close() }()
		dev := probewire.Bind(probe)
		handle, clk = trng.NewHandle(dev), dev
	case naming.BackendUSB:
		sess, err := usbprobe.Open()
		if err != nil {
			log.Fatalf("open usb probe: %v", err)
		}
		defer sess.Close()
		dev := probewire.Bind(sess)
		handle, clk = trng.NewHandle(dev), dev
	}
	rng := trng.Init(handle, clk, irq)

	startTime := time.Now()
	binPath, csvPath, err := naming.CapturePaths(*outDir, startTime, backend, *wordsFlag, *intervalSec)
	if err != nil {
		log.Fatalf("build filenames: %v", err)
	}

	binFile, err := os.OpenFile(binPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		log.Fatalf("open bin file: %v", err)
	}
	defer func() { _ = binFile.Close() }()
	binBuf := bufio.NewWriter(binFile)
	defer binBuf.Flush()

	csvFile, err := os.OpenFile(csvPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		log.Fatalf("open csv file: %v", err)
	}
	defer func() { _ = csvFile.Close() }()
	csvBuf := bufio.NewWriter(csvFile)
	defer csvBuf.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	interval := time.Duration(*intervalSec) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sampleBytes := *wordsFlag * 4
	sampleBits := sampleBytes * 8
	creditBits := *credit
	if creditBits == 0 {
		creditBits = sampleBits
	}

	log.Printf("collecting %d words every %s from %s into %s", *wordsFlag, interval.String(), string(backend), binPath)
	sample := make([]byte, sampleBytes)
	sampleNum := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := rng.FillBytes(sample); err != nil {
			var fault trng.Fault
			if errors.As(err, &fault) && fault == trng.FaultSeed {
				// A seed error is latched until the peripheral is reset;
				// release and re-init to run the recovery cycle, then retry
				// the sample.
				log.Printf("seed error latched, re-initializing peripheral")
				rng = trng.Init(rng.Release(), clk, irq)
				continue
			}
			// A clock error means the board's clock tree is wrong; nothing
			// a retry can fix.
			log.Fatalf("read sample: %v", err)
		}

		if _, werr := binBuf.Write(sample); werr != nil {
			log.Fatalf("write bin: %v", werr)
		}
		_ = binBuf.Flush()

		ones := countOnes(sample)
		sampleNum++
		ts := time.Now().Format("20060102T15:04:05")
		if _, werr := fmt.Fprintf(csvBuf, "%s,%d\n", ts, ones); werr != nil {
			log.Fatalf("write csv: %v", werr)
		}
		_ = csvBuf.Flush()

		if *feedOS {
			if ferr := osfeed.Feed(sample, creditBits); ferr != nil {
				log.Printf("feed entropy pool: %v", ferr)
			}
		}

		fmt.Printf("sample %d: ones=%d/%d at %s\n", sampleNum, ones, sampleBits, ts)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
