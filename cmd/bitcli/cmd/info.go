package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"code.cloudfoundry.org/bytefmt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/bitbuffer/persistence"
)

type snapshotInfo struct {
	path     string
	fileSize uint64
	nofBits  uint64
	digest   string
	err      error
}

// infoCmd represents the info command.
var infoCmd = &cobra.Command{
	Use:   "info [snapshot...]",
	Short: "Verify snapshot files and print their sizes",
	Long: `Loads each snapshot and verifies its digest. Without arguments, all snapshot
files in the data directory are checked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := args
		if len(paths) == 0 {
			var err error
			paths, err = persistence.ListFiles(cfg.DataDir, persistence.IsSnapshotFile)
			if err != nil {
				return err
			}
		}

		infos := make([]snapshotInfo, len(paths))
		eg, egCtx := errgroup.WithContext(cmd.Context())
		eg.SetLimit(runtime.NumCPU())
		for i, path := range paths {
			i, path := i, path
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				infos[i] = inspectSnapshot(path)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}

		var total uint64
		var failed int
		data := make([][]string, 0, len(infos))
		for _, info := range infos {
			status := "ok"
			if info.err != nil {
				status = info.err.Error()
				failed++
			}
			total += info.fileSize
			data = append(data, []string{
				info.path,
				strconv.FormatUint(info.nofBits, 10),
				bytefmt.ByteSize(info.fileSize),
				info.digest,
				status,
			})
		}

		out := cmd.OutOrStdout()
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Path", "Bits", "Size", "Digest", "Status"})
		table.SetBorder(true)
		table.AppendBulk(data)
		table.Render()
		fmt.Fprintf(out, "%d snapshots, %s\n", len(infos), bytefmt.ByteSize(total))

		if failed > 0 {
			return fmt.Errorf("%d of %d snapshots failed verification", failed, len(infos))
		}
		return nil
	},
}

func inspectSnapshot(path string) snapshotInfo {
	info := snapshotInfo{path: path}

	stat, err := os.Stat(path)
	if err != nil {
		info.err = err
		return info
	}
	info.fileSize = uint64(stat.Size())

	s, err := persistence.Load(path)
	if err != nil {
		info.err = err
		return info
	}
	info.nofBits = s.NofBits
	info.digest = hex.EncodeToString(s.Digest[:4])
	return info
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
