package commands

import (
	"github.com/spf13/cobra"

	"github.com/EsotericSoftware/wildcard/pkg/logx"
)

var flagDest string

var copyCmd = &cobra.Command{
	Use:   "copy <dir> [pattern...]",
	Short: "Copy matching paths to a destination directory",
	Long:  "Copies the files and directories matching the patterns into the destination directory, preserving the relative directory structure.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ps, err := collect(cmd.Context(), args)
		if err != nil {
			return err
		}

		copied, report := ps.CopyTo(cmd.Context(), flagDest)
		logx.As().Info().
			Int("copied", copied.Len()).
			Int("matched", ps.Len()).
			Str("dest", flagDest).
			Msg("Copy command finished")
		return report.Err()
	},
}

func init() {
	copyCmd.Flags().StringVar(&flagDest, "dest", "", "destination directory")
	_ = copyCmd.MarkFlagRequired("dest")
}
