package main

import (
	"os"

	"github.com/tourney/sts/pkg/lib/signals"
)

func main() {
	if err := newRootCmd().ExecuteContext(signals.Context()); err != nil {
		os.Exit(1)
	}
}
