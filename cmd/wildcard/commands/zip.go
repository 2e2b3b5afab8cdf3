package commands

import (
	"github.com/spf13/cobra"

	"github.com/EsotericSoftware/wildcard/pkg/logx"
)

var flagOut string

var zipCmd = &cobra.Command{
	Use:   "zip <dir> [pattern...]",
	Short: "Compress matching files into a zip archive",
	Long:  "Compresses the files matching the patterns into a new zip archive, storing each file under its relative path. If nothing matches, no archive is created.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ps, err := collect(cmd.Context(), args)
		if err != nil {
			return err
		}

		report, err := ps.Zip(cmd.Context(), flagOut)
		if err != nil {
			return err
		}
		logx.As().Info().
			Int("matched", ps.Len()).
			Str("out", flagOut).
			Bool("failed", report.Failed()).
			Msg("Zip command finished")
		return report.Err()
	},
}

func init() {
	zipCmd.Flags().StringVar(&flagOut, "out", "", "destination zip file")
	_ = zipCmd.MarkFlagRequired("out")
}
