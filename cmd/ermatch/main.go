package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCommand().Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			// The signal handler already cancelled the run; nothing
			// useful to print.
			return 130
		}
		fmt.Fprintln(os.Stderr, "ermatch:", err)
		return 1
	}
	return 0
}
