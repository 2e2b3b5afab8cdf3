package commands

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/EsotericSoftware/wildcard/internal/config"
	"github.com/EsotericSoftware/wildcard/internal/version"
	"github.com/EsotericSoftware/wildcard/pkg/glob"
	"github.com/EsotericSoftware/wildcard/pkg/logx"
	"github.com/EsotericSoftware/wildcard/pkg/paths"
)

var (
	// Used for flags.
	flagConfig   string
	flagRegex    bool
	flagExcludes []string
	flagFold     bool
	flagFailFast bool

	rootCmd = &cobra.Command{
		Use:     "wildcard",
		Short:   "Collect filesystem paths using wildcards",
		Long:    "Collects filesystem paths using wildcard or regex patterns, preserving the directory structure. Copies, deletes, zips and uploads the collected paths.",
		Version: fmt.Sprintf("%s (%s)", version.Number(), version.Commit()),
	}
)

// Execute executes the root command, cancelling all work on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&flagRegex, "regex", false, "treat patterns as regular expressions")
	rootCmd.PersistentFlags().StringArrayVarP(&flagExcludes, "exclude", "x", nil, "extra exclude pattern (repeatable)")
	rootCmd.PersistentFlags().BoolVar(&flagFold, "case-insensitive", false, "match path segments case insensitively")
	rootCmd.PersistentFlags().BoolVar(&flagFailFast, "fail-fast", false, "abort on the first unreadable directory")

	rootCmd.AddCommand(findCmd, copyCmd, deleteCmd, zipCmd, uploadCmd)
}

func initConfig() {
	if flagConfig != "" {
		if err := config.Initialize(flagConfig); err != nil {
			fmt.Println("failed to initialize config")
			cobra.CheckErr(err)
		}
	}

	if err := logx.Initialize(config.Get().Log); err != nil {
		fmt.Println(err)
		cobra.CheckErr(err)
	}
}

// scanOptions merges the persistent flags with the loaded configuration.
func scanOptions() glob.Options {
	cfg := config.Get().Scan
	return glob.Options{
		CaseInsensitive: flagFold || cfg.CaseInsensitive,
		FailFast:        flagFailFast || cfg.FailFast,
		DefaultExcludes: cfg.DefaultExcludes,
	}
}

// collect runs the scan described by the positional arguments: the root
// directory first, the patterns after it. A single "dir|pattern|pattern"
// argument is accepted as sugar for the same call.
func collect(ctx context.Context, args []string) (*paths.Paths, error) {
	dir := args[0]
	patterns := args[1:]
	if len(args) == 1 && strings.Contains(dir, "|") {
		dir, patterns = glob.Split(dir)
	}

	for _, x := range flagExcludes {
		patterns = append(patterns, "!"+x)
	}

	ps := paths.NewWithOptions(scanOptions())
	var err error
	if flagRegex {
		err = ps.Regex(ctx, dir, patterns...)
	} else {
		err = ps.Glob(ctx, dir, patterns...)
	}
	if err != nil {
		return nil, err
	}
	return ps, nil
}
