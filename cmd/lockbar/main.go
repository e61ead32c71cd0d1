// Package main is the entry point for the lockbar CLI/TUI.
package main

import (
	"os"

	"github.com/lockbar-io/lockbar/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
