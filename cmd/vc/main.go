// Command vc is the `vc` C-subset compiler's command-line entry point:
// parses flags and input paths via package driver and exits with its
// reported status code (§6).
package main

import (
	"fmt"
	"os"

	"github.com/splanck/vc-sub004/internal/driver"
)

func main() {
	opt, err := driver.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "vc: %v\n", err)
		os.Exit(1)
	}
	os.Exit(driver.Run(opt))
}
