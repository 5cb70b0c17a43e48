package main

import (
	"fmt"
	"os"

	"github.com/arc-language/pkglicense/internal/cli"
)

// Set via -ldflags "-X main.version=..."
var (
	version string
	commit  string
	date    string
)

func main() {
	cli.SetVersion(version, commit, date)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
