package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagAbsolute bool

var findCmd = &cobra.Command{
	Use:   "find <dir> [pattern...]",
	Short: "List paths matching the patterns",
	Long:  "Lists the files and directories under <dir> matching the wildcard (or, with --regex, regular expression) patterns. Patterns prefixed with '!' exclude.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ps, err := collect(cmd.Context(), args)
		if err != nil {
			return err
		}

		out := ps.RelativePaths()
		if flagAbsolute {
			out = ps.AbsolutePaths()
		}
		for _, p := range out {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	findCmd.Flags().BoolVar(&flagAbsolute, "absolute", false, "print absolute paths")
}
