// cmd/isrsim/main.go
//go:build !rp2040

// isrsim runs the firmware programs against the simulated board on the host.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "isrsim",
		Short:        "Run firmware programs on a simulated board",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newProgramsCmd(), newConfigCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
