package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	err := cmd.Execute()
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, context.Canceled):
		// Interrupted by the user; the run stages already logged their state.
	case errors.Is(err, errRunLocked):
		fmt.Fprintf(os.Stderr, "cartographer: %v\n", err)
		fmt.Fprintln(os.Stderr, "Wait for the other run to finish, or remove the lock file if it is stale.")
	default:
		fmt.Fprintf(os.Stderr, "cartographer: %v\n", err)
	}
	os.Exit(1)
}
