// Package main is the entry point for the waxwing CLI.
package main

import (
	"os"

	"github.com/jmylchreest/waxwing/cmd/waxwing/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
