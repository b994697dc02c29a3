package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"rendersubmit/internal/submission"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps error kinds to distinct exit statuses so wrapper scripts can
// tell a bad input from a broken install.
func exitCode(err error) int {
	switch submission.ErrorKind(err) {
	case "configuration":
		return 2
	case "validation":
		return 3
	case "conflict":
		return 4
	default:
		return 1
	}
}
