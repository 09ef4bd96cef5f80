// Package main is the entry point for the bomcost CLI.
package main

import (
	"os"

	"bomcost/cmd/cli/cmd"
	"bomcost/internal/logging"
)

func main() {
	err := cmd.Execute()
	logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}
