package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new synthfin project",
	Long: `Initialize a new synthfin project with an example schema and
generation config.

Creates:
  schema.json    - column types, ranges, distributions and business rules
  generate.yaml  - seed, row count and fraud scenario configuration

Edit both files, then run 'synthfin generate'.`,
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat("schema.json"); err == nil {
			fmt.Println("❌ schema.json already exists!")
			return
		}
		if _, err := os.Stat("generate.yaml"); err == nil {
			fmt.Println("❌ generate.yaml already exists!")
			return
		}

		if err := os.WriteFile("schema.json", []byte(exampleSchema), 0644); err != nil {
			fmt.Println("❌ Error creating schema.json:", err)
			return
		}
		if err := os.WriteFile("generate.yaml", []byte(exampleConfig), 0644); err != nil {
			fmt.Println("❌ Error creating generate.yaml:", err)
			return
		}

		fmt.Println("✅ Created schema.json and generate.yaml example files.")
		fmt.Println("📝 Edit schema.json to declare your columns and business rules")
		fmt.Println("📝 Edit generate.yaml to tune the seed, row count and fraud scenarios")
		fmt.Println("🚀 Run 'synthfin generate' to produce a dataset")
	},
}

const exampleSchema = `{
  "sdtypes": {
    "ano_calendario": "datetime",
    "setor_atividade": "categorical",
    "rendimento_trabalho": "numerical",
    "rendimento_capital": "numerical",
    "rendimento_predial": "numerical",
    "rendimento_bruto": "numerical",
    "deducoes": "numerical",
    "imposto_pago": "numerical",
    "num_transacoes": "numerical",
    "despesas_luxo": "numerical"
  },
  "columns": [
    {
      "name": "ano_calendario",
      "sdtype": "datetime",
      "storage_type": "int32",
      "description": "calendar year of the declaration",
      "constraints": {
        "min": 2007,
        "max": 2020,
        "discrete": true,
        "distribution": "discrete_range"
      }
    },
    {
      "name": "setor_atividade",
      "sdtype": "categorical",
      "storage_type": "string",
      "description": "declared activity sector",
      "constraints": {
        "categories": [
          "Tecnologia da Informação",
          "Saúde",
          "Educação",
          "Finanças",
          "Varejo",
          "Construção Civil",
          "Agricultura"
        ]
      }
    },
    {
      "name": "rendimento_trabalho",
      "sdtype": "numerical",
      "storage_type": "float64",
      "description": "employment income",
      "constraints": {
        "min": 0,
        "max": 500000,
        "positive_only": true,
        "distribution": "gamma",
        "distribution_parameters": {"shape": 2.0, "scale": 12000}
      }
    },
    {
      "name": "rendimento_capital",
      "sdtype": "numerical",
      "storage_type": "float64",
      "description": "capital income",
      "constraints": {
        "min": 0,
        "max": 250000,
        "positive_only": true,
        "distribution": "gamma",
        "distribution_parameters": {"shape": 0.5, "scale": 8000}
      }
    },
    {
      "name": "rendimento_predial",
      "sdtype": "numerical",
      "storage_type": "float64",
      "description": "property income",
      "constraints": {
        "min": 0,
        "max": 250000,
        "positive_only": true,
        "distribution": "gamma",
        "distribution_parameters": {"shape": 0.5, "scale": 5000}
      }
    },
    {
      "name": "rendimento_bruto",
      "sdtype": "numerical",
      "storage_type": "float64",
      "description": "reported gross income; parts must add up to it",
      "constraints": {
        "min": 0,
        "max": 1000000,
        "positive_only": true,
        "distribution": "gamma",
        "distribution_parameters": {"shape": 2.0, "scale": 20000}
      }
    },
    {
      "name": "deducoes",
      "sdtype": "numerical",
      "storage_type": "float64",
      "description": "claimed deductions",
      "constraints": {
        "min": 0,
        "max": 100000,
        "positive_only": true,
        "distribution": "gamma",
        "distribution_parameters": {"shape": 1.2, "scale": 3000}
      }
    },
    {
      "name": "imposto_pago",
      "sdtype": "numerical",
      "storage_type": "float64",
      "description": "tax paid",
      "constraints": {
        "min": 0,
        "max": 200000,
        "positive_only": true,
        "distribution": "gamma",
        "distribution_parameters": {"shape": 1.5, "scale": 4000}
      }
    },
    {
      "name": "num_transacoes",
      "sdtype": "numerical",
      "storage_type": "int32",
      "description": "number of reported transactions",
      "constraints": {
        "min": 1,
        "max": 500,
        "discrete": true,
        "distribution": "uniform"
      }
    },
    {
      "name": "despesas_luxo",
      "sdtype": "numerical",
      "storage_type": "float64",
      "description": "luxury spending",
      "constraints": {
        "min": 0,
        "max": 100000,
        "positive_only": true,
        "distribution": "gamma",
        "distribution_parameters": {"shape": 0.5, "scale": 2000}
      }
    }
  ],
  "business_rules": {
    "temporal_consistency": [
      {"column": "ano_calendario", "strict": false}
    ],
    "value_relationships": [
      {
        "name": "rendimento_total",
        "columns": ["rendimento_trabalho", "rendimento_capital", "rendimento_predial"],
        "total_column": "rendimento_bruto",
        "positive_only": true
      }
    ]
  }
}
`

const exampleConfig = `# Generation run configuration
random_seed: 42
row_count: 1000

# Fraud scenarios: each generated row passes one probability gate; on a hit
# one pattern is selected weighted by the per-pattern probabilities below.
fraud_scenarios:
  probability: 0.18
  salary_misreporting:
    probability: 0.5
    column: rendimento_trabalho
    min_ratio: 0.4
    max_ratio: 0.6
  suspicious_lifestyle:
    probability: 0.3
    column: despesas_luxo
    base_column: rendimento_bruto
    min_ratio: 0.4
    max_ratio: 0.8
  rapid_transactions:
    probability: 0.2
    column: num_transacoes
    min_ratio: 3.0
    max_ratio: 8.0
`
