package commands

import (
	"github.com/spf13/cobra"

	"github.com/EsotericSoftware/wildcard/pkg/logx"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <dir> [pattern...]",
	Short: "Delete matching paths",
	Long:  "Deletes the files and directories matching the patterns, deepest paths first. Directories are removed together with their contents.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ps, err := collect(cmd.Context(), args)
		if err != nil {
			return err
		}

		report := ps.Delete(cmd.Context())
		logx.As().Info().
			Int("matched", ps.Len()).
			Bool("failed", report.Failed()).
			Msg("Delete command finished")
		return report.Err()
	},
}
