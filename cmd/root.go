package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "synthfin",
	Short: "Schema-driven synthetic financial data generator with fraud scenarios",
	Long: `synthfin generates schema-valid tabular financial records with
reproducible, labeled fraud scenarios for training fraud-detection models.

Examples:

  synthfin init
  synthfin generate -s schema.json -c generate.yaml -o data.csv
  synthfin validate -s schema.json -d data.csv
`,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(loadCmd)
}
