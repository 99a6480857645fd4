package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitbuffer/bitstream"
	"github.com/spacemeshos/bitbuffer/persistence"
)

var (
	packAlign bool
	packOut   string
)

// packCmd represents the pack command.
var packCmd = &cobra.Command{
	Use:   "pack value:width...",
	Short: "Pack values into a buffer",
	Long: `Writes each value with the given number of bits, one after the other.
Values may be decimal, hex (0x), binary (0b) or negative. Only the width least
significant bits of a value are kept. Negative values look like flags, so pass
the fields after --.`,
	Example: "  bitcli pack 5:3 0xABCD:16\n  bitcli pack --align -- 5:3 -1:4",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b := bitstream.NewBuffer(cfg.InitialCapacity, bitstream.WithLogger(logger))
		for _, arg := range args {
			f, err := parseField(arg)
			if err != nil {
				return err
			}
			warnTruncated(f)
			if err := b.WriteBits(f.value, f.width); err != nil {
				return err
			}
		}

		if packAlign {
			if err := b.ByteAlign(); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		if packOut != "" {
			if err := persistence.Save(packOut, b.Writer); err != nil {
				return err
			}
			logger.Info("cli: saved snapshot", zap.String("path", packOut), zap.Uint64("bits", b.NofBits()))
			fmt.Fprintf(out, "%s: %d bits\n", packOut, b.NofBits())
			return nil
		}

		fmt.Fprintf(out, "%x\n%d bits\n", b.Bytes(), b.NofBits())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(packCmd)

	packCmd.Flags().BoolVar(&packAlign, "align", false, "Pad the buffer with zero bits up to a byte boundary")
	packCmd.Flags().StringVarP(&packOut, "out", "o", "", "Save the buffer as a snapshot file instead of printing it")
}
