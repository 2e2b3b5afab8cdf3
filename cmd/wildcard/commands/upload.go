package commands

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/EsotericSoftware/wildcard/internal/config"
	"github.com/EsotericSoftware/wildcard/internal/storage"
	"github.com/EsotericSoftware/wildcard/pkg/logx"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <dir> [pattern...]",
	Short: "Upload matching files to the configured S3 bucket",
	Long:  "Uploads the files matching the patterns to the S3 bucket from the configuration, preserving the relative directory structure under the configured prefix.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get().S3
		if cfg == nil || !cfg.Enabled {
			return errors.New("S3 storage is not enabled in the configuration")
		}

		ps, err := collect(cmd.Context(), args)
		if err != nil {
			return err
		}

		s3, err := storage.NewS3(*cfg)
		if err != nil {
			return err
		}

		logx.StartTimer()
		report := s3.UploadPaths(cmd.Context(), ps.FilesOnly())
		logx.As().Info().
			Int("matched", ps.Len()).
			Bool("failed", report.Failed()).
			Str("total_time", logx.ExecutionTime()).
			Msg("Upload command finished")
		return report.Err()
	},
}
