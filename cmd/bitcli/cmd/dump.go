package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dumpBits uint64

// dumpCmd represents the dump command.
var dumpCmd = &cobra.Command{
	Use:   "dump <hex|@snapshot>",
	Short: "Print the bits of a buffer",
	Long: `Prints every valid bit of a buffer, most significant bit of each byte first.
The buffer is given in hex or, prefixed with '@', as a snapshot file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openInput(args[0], dumpBits)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, groupBits(r.String(), cfg.DumpGroup))
		fmt.Fprintf(out, "%d bits, %d bytes\n", r.NofBits(), r.NofBytes())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().Uint64Var(&dumpBits, "bits", 0, "Number of valid bits of hex input (0 means all)")
}
