// Package main provides the CLI entry point for mrun.
package main

import (
	"errors"
	"fmt"
	"os"

	mrunerrors "github.com/flashingpumpkin/mrun/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, mrunerrors.ErrUsage) {
			fmt.Fprint(os.Stderr, rootCmd.UsageString())
		}
		os.Exit(1)
	}
}
