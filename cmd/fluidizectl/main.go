// Package main provides the fluidizectl CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/fluidize-dev/fluidize-engine/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
