package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/volumekit/pvc-inspect/cli/inspect"
	"github.com/volumekit/pvc-inspect/cli/sweep"
)

func main() {
	rootCmd := inspect.New()
	rootCmd.AddCommand(
		sweep.New(),
	)

	// The call to rootCmd.Execute prints the error, so we silence errors
	// here to avoid double printing.
	rootCmd.SilenceErrors = true

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
