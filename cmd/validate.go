package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/synthfin/synthfin/dataset"
	"github.com/synthfin/synthfin/loader"
	"github.com/synthfin/synthfin/sink"
	"github.com/synthfin/synthfin/validator"
)

var (
	validateSchemaFile string
	validateDataFile   string
	validateFormat     string
)

func init() {
	validateCmd.Flags().StringVarP(&validateSchemaFile, "schema", "s", "schema.json", "Schema JSON file to validate against")
	validateCmd.Flags().StringVarP(&validateDataFile, "data", "d", "synthetic_data.csv", "CSV dataset to validate")
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a dataset against a schema",
	Long: `Validate a dataset against every constraint a schema declares.

The validator re-derives each per-column constraint (ranges, discreteness,
categorical membership) and each composite business rule (group sums,
declared totals, cross-row monotonicity) from the schema alone and reports
every violation it finds. It never consults fraud labels; when the CSV
carries is_fraudulent/fraud_type audit columns, violations on labeled rows
are additionally classified as fraud-induced rather than engine defects.

Examples:
  synthfin validate                          # validate synthetic_data.csv against schema.json
  synthfin validate -d external.csv          # externally supplied data
  synthfin validate --format json            # machine-readable report
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(); err != nil {
			fmt.Println("❌ Validation failed:", err)
			os.Exit(1)
		}
	},
}

func runValidate() error {
	sch, err := loader.LoadSchemaFromJSON(validateSchemaFile)
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	f, err := os.Open(validateDataFile)
	if err != nil {
		return fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	ds, err := sink.ReadCSV(f, sch)
	if err != nil {
		return fmt.Errorf("reading dataset: %w", err)
	}

	report := validator.ValidateDataset(ds, sch)
	expected := validator.ClassifyExpected(report, ds, sch)
	if validateFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Report   *validator.Report         `json:"report"`
			Expected *validator.ExpectedReport `json:"expected"`
		}{report, expected})
	}

	printReport(report, ds)
	if !report.Valid {
		fmt.Printf("\n🔎 Cross-referenced against fraud labels:\n")
		fmt.Printf("  • fraud-induced (expected): %d\n", len(expected.FraudInduced))
		if expected.Clean() {
			color.Green("✅ Every violation is accounted for by a labeled fraud row")
		} else {
			color.Red("🔴 Unexpected violations: %d", len(expected.Unexpected))
		}
	}
	return nil
}

func printReport(report *validator.Report, ds *dataset.Dataset) {
	if report.Valid {
		color.Green("✅ Dataset validation passed! (%d rows)", report.Rows)
		return
	}

	color.Red("❌ Dataset validation found %d violation(s) in %d rows", len(report.Violations), report.Rows)
	for i, v := range report.Violations {
		fmt.Printf("  %d. row %d", i+1, v.RowIndex)
		if v.Column != "" {
			fmt.Printf(" [%s]", v.Column)
		}
		if v.Group != "" {
			fmt.Printf(" (group: %s)", v.Group)
		}
		fmt.Printf(" %s: %s\n", v.Rule, v.Detail)
	}

	fmt.Printf("\n📊 Summary:\n")
	for rule, count := range report.Summary {
		fmt.Printf("  • %s: %d\n", rule, count)
	}
}

func printValidationSummary(report *validator.Report, expected *validator.ExpectedReport) {
	if report.Valid {
		color.Green("✅ Validation passed: no violations")
		return
	}
	fmt.Printf("📋 Validation: %d violation(s)\n", len(report.Violations))
	fmt.Printf("  • fraud-induced (expected): %d\n", len(expected.FraudInduced))
	if expected.Clean() {
		color.Green("✅ Every violation is accounted for by an injected fraud scenario")
		return
	}
	color.Red("🔴 Unexpected violations (engine defect): %d", len(expected.Unexpected))
	for i, v := range expected.Unexpected {
		fmt.Printf("  %d. row %d [%s] %s: %s\n", i+1, v.RowIndex, v.Column, v.Rule, v.Detail)
	}
}

func printFraudStats(ds *dataset.Dataset) {
	total := ds.Len()
	frauds := ds.FraudCount()
	pct := 0.0
	if total > 0 {
		pct = float64(frauds) / float64(total) * 100
	}
	repaired := 0
	for _, rec := range ds.Records {
		if rec.Repaired() {
			repaired++
		}
	}

	fmt.Printf("\n📊 Fraud Statistics:\n")
	fmt.Printf("  • Total records: %d\n", total)
	fmt.Printf("  • Fraudulent records: %d (%.2f%%)\n", frauds, pct)
	fmt.Printf("  • Rows with forced repairs: %d\n", repaired)
	fmt.Printf("  • Run ID: %s\n\n", ds.RunID)
}
