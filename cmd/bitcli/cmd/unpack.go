package cmd

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/spacemeshos/bitbuffer/bitstream"
)

var (
	unpackSigned bool
	unpackBits   uint64
)

// unpackCmd represents the unpack command.
var unpackCmd = &cobra.Command{
	Use:     "unpack <hex|@snapshot> width...",
	Short:   "Read fields of the given widths from a buffer",
	Example: "  bitcli unpack a1bcd0 3 16 4 --signed",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openInput(args[0], unpackBits)
		if err != nil {
			return err
		}

		data := make([][]string, 0, len(args)-1)
		for i, arg := range args[1:] {
			width, err := parseWidth(arg)
			if err != nil {
				return err
			}

			offset := r.Tell()
			value, err := readField(r, width)
			if err != nil {
				return fmt.Errorf("field %d: %w", i, err)
			}

			data = append(data, []string{
				strconv.Itoa(i),
				strconv.FormatUint(offset, 10),
				strconv.FormatUint(uint64(width), 10),
				value,
			})
		}

		out := cmd.OutOrStdout()
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"#", "Offset", "Width", "Value"})
		table.SetBorder(true)
		table.AppendBulk(data)
		table.Render()

		fmt.Fprintf(out, "%d bits left\n", r.NofBitsLeft())
		return nil
	},
}

func readField(r *bitstream.Reader, width uint) (string, error) {
	if unpackSigned {
		v, err := r.ReadSigned(width)
		return strconv.FormatInt(v, 10), err
	}

	v, err := r.ReadBits(width)
	return fmt.Sprintf("%d (0x%X)", v, v), err
}

func init() {
	rootCmd.AddCommand(unpackCmd)

	unpackCmd.Flags().BoolVarP(&unpackSigned, "signed", "s", false, "Read fields as two's complement values")
	unpackCmd.Flags().Uint64Var(&unpackBits, "bits", 0, "Number of valid bits of hex input (0 means all)")
}
