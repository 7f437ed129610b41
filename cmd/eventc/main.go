// Package main is the entry point for the eventc CLI.
package main

import (
	"fmt"
	"os"

	"github.com/bargom/eventc/cmd/eventc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
