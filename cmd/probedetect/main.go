// probedetect lists serial ports and reports which ones look like an
// attached TRNG debug probe.
package main

import (
	"fmt"
	"os"

	"go.bug.st/serial/enumerator"

	"github.com/Thiagojm/trng_go/serialprobe"
)

func main() {
	present, err := serialprobe.Detect()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if !present {
		fmt.Println("No TRNG probe found")
		return
	}

	port, err := serialprobe.FindPort()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("TRNG probe on %s\n", port)

	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	for _, p := range ports {
		if p == nil || !p.IsUSB {
			continue
		}
		fmt.Printf("  %s  VID=%s PID=%s  %s\n", p.Name, p.VID, p.PID, p.Product)
	}
}
