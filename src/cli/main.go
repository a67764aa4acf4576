package main

import (
	"os"

	"github.com/alfatm/sparse-crates/src/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
