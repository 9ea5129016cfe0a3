// Command guardian is a small CLI for the Guardian text-threat-analysis
// API. It resolves configuration the same way the SDK does: flags, then
// an optional YAML config file, then GUARDIAN_* environment variables
// (a .env file in the working directory is loaded when present).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
