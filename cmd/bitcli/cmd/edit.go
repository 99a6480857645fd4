package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitbuffer/bitstream"
	"github.com/spacemeshos/bitbuffer/persistence"
)

// editCmd represents the edit command.
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit a snapshot file in place",
	Long: `Structural edits over a snapshot file. The snapshot is loaded into memory,
edited and saved back atomically.`,
}

var editInsertCmd = &cobra.Command{
	Use:   "insert <snapshot> <position> value:width",
	Short: "Insert bits before a position",
	Long: `Inserts a value:width field before the given bit position. Pass the
arguments after -- when the value is negative.`,
	Example: "  bitcli edit insert buf.bits 5 0b101:3\n  bitcli edit insert -- buf.bits 5 -3:3",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := parsePosition(args[1])
		if err != nil {
			return err
		}
		f, err := parseField(args[2])
		if err != nil {
			return err
		}
		warnTruncated(f)

		return editSnapshot(cmd, args[0], func(b *bitstream.Buffer) error {
			return b.InsertBits(f.value, pos, f.width)
		})
	},
}

var editEraseCmd = &cobra.Command{
	Use:   "erase <snapshot> <position> <count>",
	Short: "Erase count bits starting at a position",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := parsePosition(args[1])
		if err != nil {
			return err
		}
		count, err := parsePosition(args[2])
		if err != nil {
			return err
		}

		return editSnapshot(cmd, args[0], func(b *bitstream.Buffer) error {
			return b.Erase(pos, count)
		})
	},
}

var editResizeCmd = &cobra.Command{
	Use:   "resize <snapshot> <bits>",
	Short: "Truncate or zero-extend a snapshot to a number of bits",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parsePosition(args[1])
		if err != nil {
			return err
		}

		return editSnapshot(cmd, args[0], func(b *bitstream.Buffer) error {
			return b.Resize(n)
		})
	},
}

func parsePosition(s string) (uint64, error) {
	pos, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid bit position %q: %w", s, err)
	}
	return pos, nil
}

func editSnapshot(cmd *cobra.Command, path string, edit func(b *bitstream.Buffer) error) error {
	s, err := persistence.Load(path)
	if err != nil {
		return err
	}
	b, err := s.Buffer(bitstream.WithLogger(logger))
	if err != nil {
		return err
	}

	before := b.NofBits()
	if err := edit(b); err != nil {
		return err
	}
	if err := persistence.Save(path, b.Writer); err != nil {
		return err
	}

	logger.Info("cli: edited snapshot",
		zap.String("path", path),
		zap.String("op", cmd.Name()),
		zap.Uint64("bits_before", before),
		zap.Uint64("bits_after", b.NofBits()),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bits\n", path, b.NofBits())
	return nil
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.AddCommand(editInsertCmd)
	editCmd.AddCommand(editEraseCmd)
	editCmd.AddCommand(editResizeCmd)
}
