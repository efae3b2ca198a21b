package cmd

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/synthfin/synthfin/fraud"
	"github.com/synthfin/synthfin/generator"
	"github.com/synthfin/synthfin/loader"
	"github.com/synthfin/synthfin/sink"
	"github.com/synthfin/synthfin/validator"
)

var (
	generateSchemaFile string
	generateConfigFile string
	generateOutFile    string
	generateFormat     string
	generateRows       int
	generateSeed       int64
	skipValidation     bool
)

func init() {
	generateCmd.Flags().StringVarP(&generateSchemaFile, "schema", "s", "schema.json", "Schema JSON file to load")
	generateCmd.Flags().StringVarP(&generateConfigFile, "config", "c", "generate.yaml", "Generation config YAML file")
	generateCmd.Flags().StringVarP(&generateOutFile, "out", "o", "synthetic_data.csv", "Output file")
	generateCmd.Flags().StringVarP(&generateFormat, "format", "f", "csv", "Output format (csv, jsonl)")
	generateCmd.Flags().IntVar(&generateRows, "rows", 0, "Override row_count from the config")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 0, "Override random_seed from the config")
	generateCmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "Skip the post-generation validation pass")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic dataset from a schema",
	Long: `Generate a synthetic dataset from a schema definition.

The full pipeline runs: per-column sampling, composite-rule enforcement,
fraud injection, validation, serialization. The run is deterministic for a
fixed seed and row count.

Examples:
  synthfin generate                          # schema.json + generate.yaml -> synthetic_data.csv
  synthfin generate --rows 100000 --seed 7   # override the config
  synthfin generate -f jsonl -o data.jsonl   # JSON-lines output
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runGenerate(cmd); err != nil {
			fmt.Println("❌ Generation failed:", err)
			os.Exit(1)
		}
	},
}

func runGenerate(cmd *cobra.Command) error {
	sch, err := loader.LoadSchemaFromJSON(generateSchemaFile)
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	cfg, err := loader.LoadGenerationConfig(generateConfigFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("rows") {
		cfg.RowCount = generateRows
	}
	if cmd.Flags().Changed("seed") {
		cfg.RandomSeed = generateSeed
	}
	if err := cfg.FraudScenarios.ValidateAgainst(sch); err != nil {
		return err
	}

	fmt.Printf("🔧 Generating %d rows (seed %d)...\n", cfg.RowCount, cfg.RandomSeed)
	ds, err := generator.New(sch, cfg.RandomSeed).Generate(cfg.RowCount)
	if err != nil {
		return err
	}

	injector, err := fraud.NewInjector(cfg.FraudScenarios)
	if err != nil {
		return err
	}
	// Injection gets its own stream so the generation draws stay untouched;
	// seed+1 keeps the whole pipeline a function of the configured seed.
	injector.InjectAll(ds, rand.New(rand.NewSource(cfg.RandomSeed+1)))

	out, err := os.Create(generateOutFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	switch generateFormat {
	case "csv":
		err = sink.WriteCSV(out, ds, sch)
	case "jsonl":
		err = sink.WriteJSONL(out, ds, sch)
	default:
		return fmt.Errorf("unknown format %q (want csv or jsonl)", generateFormat)
	}
	if err != nil {
		return err
	}

	color.Green("✅ Dataset written: %s", generateOutFile)
	printFraudStats(ds)

	if skipValidation {
		return nil
	}
	report := validator.ValidateDataset(ds, sch)
	expected := validator.ClassifyExpected(report, ds, sch)
	printValidationSummary(report, expected)
	return nil
}
