// Package main is the leapselect command: it evaluates one SELECT statement
// against the tables described by a metadata file.
package main

import (
	"os"

	"github.com/leapstack-labs/leapselect/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
