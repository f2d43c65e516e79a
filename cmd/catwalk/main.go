// Package main is the catwalk command: a small cat walk tracker with a web
// form, a terminal UI and one-shot subcommands over the same SQLite store.
package main

import (
	"fmt"
	"os"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
