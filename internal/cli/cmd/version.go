package cmd

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("centerpdf %s", orUnknown(buildInfo.Version))
		if buildInfo.Commit != "" {
			cmd.Printf(" (%s)", buildInfo.Commit)
		}
		if buildInfo.Date != "" {
			cmd.Printf(" built %s", buildInfo.Date)
		}
		cmd.Println()
	},
}

func orUnknown(s string) string {
	if s == "" {
		return "dev"
	}
	return s
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
