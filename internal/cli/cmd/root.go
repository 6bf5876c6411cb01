// Package cmd provides the Cobra CLI commands for centerpdf.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dawaltconley/zotero-center-pdf/internal/cli"
)

var (
	app        *cli.App
	buildInfo  cli.BuildInfo
	configPath string

	rootCmd = &cobra.Command{
		Use:   "centerpdf",
		Short: "Center PDF pages after viewer navigation",
		Long: `centerpdf attaches to embedded PDF viewer surfaces and re-centers the
current page after every discrete navigation (previous/next page, page
number jumps, back navigation).

Use 'centerpdf run' to launch the plugin against a viewer page, or
'centerpdf monitor' for the same with a live attachment dashboard.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "version", "schema":
				return nil
			}

			var err error
			app, err = cli.NewApp(configPath)
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			app.BuildInfo = buildInfo
			return nil
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetBuildInfo sets the build information (called from main before Execute).
func SetBuildInfo(info cli.BuildInfo) {
	buildInfo = info
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
}
