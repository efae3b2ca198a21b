package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/synthfin/synthfin/database"
	"github.com/synthfin/synthfin/loader"
	"github.com/synthfin/synthfin/sink"
)

var (
	loadSchemaFile string
	loadDataFile   string
	loadTable      string
)

func init() {
	loadCmd.Flags().StringVarP(&loadSchemaFile, "schema", "s", "schema.json", "Schema JSON file")
	loadCmd.Flags().StringVarP(&loadDataFile, "data", "d", "synthetic_data.csv", "CSV dataset to load")
	loadCmd.Flags().StringVarP(&loadTable, "table", "t", "synthetic_data", "Target table name")
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Bulk-load a generated dataset into Postgres",
	Long: `Bulk-load a generated CSV dataset into a Postgres table.

The table is created from the schema's storage types when it does not
exist, with the is_fraudulent/fraud_type audit columns appended. Requires
DATABASE_URL (in .env or environment).

Examples:
  synthfin load                              # synthetic_data.csv -> synthetic_data table
  synthfin load -d data.csv -t fraud_train   # custom file and table
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runLoad(); err != nil {
			fmt.Println("❌ Load failed:", err)
			os.Exit(1)
		}
	},
}

func runLoad() error {
	sch, err := loader.LoadSchemaFromJSON(loadSchemaFile)
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	f, err := os.Open(loadDataFile)
	if err != nil {
		return fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	ds, err := sink.ReadCSV(f, sch)
	if err != nil {
		return fmt.Errorf("reading dataset: %w", err)
	}

	pool, err := database.GetPool()
	if err != nil {
		return err
	}
	defer database.ClosePool()

	copied, err := sink.LoadPostgres(context.Background(), pool, loadTable, ds, sch)
	if err != nil {
		return err
	}

	color.Green("✅ Loaded %d rows into %q", copied, loadTable)
	return nil
}
