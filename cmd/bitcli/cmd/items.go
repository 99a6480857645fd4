package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spacemeshos/bitbuffer/persistence"
)

// itemsCmd represents the items command.
var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Write and read files of fixed-width items",
	Long: `Item files hold values of item-bits bits each, packed without padding
between them.`,
}

var itemsWriteCmd = &cobra.Command{
	Use:   "write <file> value...",
	Short: "Write values as items",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := persistence.NewFileWriter(args[0], cfg.ItemBitSize, logger)
		if err != nil {
			return err
		}

		for _, arg := range args[1:] {
			f, err := parseField(arg + ":" + strconv.FormatUint(uint64(cfg.ItemBitSize), 10))
			if err != nil {
				w.Close()
				return err
			}
			warnTruncated(f)
			if err := w.WriteUintBE(f.value); err != nil {
				w.Close()
				return err
			}
		}

		width, _ := w.Width()
		info, err := w.Close()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d items, %d bytes\n", args[0], width, (*info).Size())
		return nil
	},
}

var itemsReadCmd = &cobra.Command{
	Use:   "read <file>...",
	Short: "Print the items of one or more files, in order",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		readers := make([]persistence.Reader, 0, len(args))
		for _, path := range args {
			r, err := persistence.NewFileReader(path, cfg.ItemBitSize)
			if err != nil {
				return err
			}
			readers = append(readers, r)
		}

		var reader persistence.Reader = readers[0]
		if len(readers) > 1 {
			group, err := persistence.Group(readers)
			if err != nil {
				return err
			}
			reader = group
		}
		defer reader.Close()

		out := cmd.OutOrStdout()
		for i := 0; ; i++ {
			item, err := reader.ReadNext()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d: %x\n", i, item)
		}
	},
}

func init() {
	rootCmd.AddCommand(itemsCmd)

	itemsCmd.AddCommand(itemsWriteCmd)
	itemsCmd.AddCommand(itemsReadCmd)
}
