package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewEstimateCommand builds a sketch from a newline-delimited input file and
// prints its estimate and confidence bounds.
func NewEstimateCommand(verbose *bool, lgK *uint8, seed *uint64) *cobra.Command {
	return &cobra.Command{
		Use:   "estimate <file>",
		Short: "Build a sketch from a file and report its cardinality estimate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sketch, lines, err := buildFromFile(args[0], *lgK, *seed)
			if err != nil {
				return err
			}

			lower, err := sketch.LowerBound(2)
			if err != nil {
				return err
			}
			upper, err := sketch.UpperBound(2)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "lines read      : %s\n", humanize.Comma(int64(lines)))
			fmt.Fprintf(cmd.OutOrStdout(), "retained entries: %s\n", humanize.Comma(int64(sketch.NumRetained())))
			fmt.Fprintf(cmd.OutOrStdout(), "estimate        : %s\n", humanize.Commaf(sketch.Estimate()))
			fmt.Fprintf(cmd.OutOrStdout(), "95%% bounds      : [%s, %s]\n", humanize.Commaf(lower), humanize.Commaf(upper))
			fmt.Fprintf(cmd.OutOrStdout(), "estimation mode : %v\n", sketch.IsEstimationMode())

			if *verbose {
				fmt.Fprint(cmd.OutOrStdout(), sketch.String(false))
			}
			return nil
		},
	}
}
