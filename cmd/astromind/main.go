// Package main is the entry point for the astromind CLI.
package main

import (
	"os"

	"github.com/astromind-labs/astromind/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
