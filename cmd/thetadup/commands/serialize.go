package commands

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewSerializeCommand builds a sketch from a newline-delimited input file,
// compacts it, and writes the binary encoding to an output file.
func NewSerializeCommand(lgK *uint8, seed *uint64) *cobra.Command {
	var ordered bool
	cmd := &cobra.Command{
		Use:   "serialize <input-file> <output-file>",
		Short: "Build a sketch from a file and serialize it to disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sketch, _, err := buildFromFile(args[0], *lgK, *seed)
			if err != nil {
				return err
			}

			compact := sketch.Compact(ordered)
			out, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("create %s: %w", args[1], err)
			}
			defer out.Close()

			n, err := compact.WriteTo(out)
			if err != nil {
				return fmt.Errorf("write %s: %w", args[1], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s to %s\n", humanize.Bytes(uint64(n)), args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&ordered, "ordered", false, "sort retained entries by hash before serializing")
	return cmd
}
