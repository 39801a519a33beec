// Package main provides the entry point for the thetadup CLI tool. It is a
// thin demonstration harness over the library: feed it a newline-delimited
// file and it reports an estimate, or writes the sketch's compact binary
// encoding to a file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sawmills/thetadup/cmd/thetadup/commands"
)

var (
	verbose bool
	lgK     uint8
	seed    uint64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "thetadup",
		Short: "thetadup - cardinality estimation with duplicates and deletions",
		Long: `thetadup builds and queries theta sketches with duplicate and
deletion support.

Commands:
  estimate    Build a sketch from a newline-delimited file and report its estimate
  serialize   Build a sketch from a newline-delimited file and write it to a binary file`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Uint8Var(&lgK, "lg-k", 12, "log2 of the nominal number of retained entries")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 9001, "hash seed")

	rootCmd.AddCommand(commands.NewEstimateCommand(&verbose, &lgK, &seed))
	rootCmd.AddCommand(commands.NewSerializeCommand(&lgK, &seed))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
