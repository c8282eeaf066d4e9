// Command sdramsim runs the SDRAM controller model against a simulated
// device.
package main

import (
	"os"

	"github.com/tebeka/atexit"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
