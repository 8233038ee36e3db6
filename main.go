package main

import (
	"fmt"
	"os"

	"github.com/lakshaymaurya-felt/macmole/cmd"
)

// Build-time version information, injected via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
