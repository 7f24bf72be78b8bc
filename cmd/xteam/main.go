// Package main is the entry point for the xteam CLI.
package main

import (
	"os"

	"github.com/SimonStenelid/X-team/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
