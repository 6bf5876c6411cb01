package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dawaltconley/zotero-center-pdf/internal/config"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the configuration JSON schema",
	Long:  `Emit the JSON schema describing the config file, for editor validation.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := config.Schema()
		if err != nil {
			return fmt.Errorf("generate schema: %w", err)
		}
		cmd.Println(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
