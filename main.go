package main

import (
	"fmt"
	"os"

	"github.com/tracefetch/tracefetch/cmd"
)

// Version information, set at build time via ldflags
var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

func main() {
	if err := cmd.Execute(version, gitCommit, buildTime); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
