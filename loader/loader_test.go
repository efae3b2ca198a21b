package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synthfin/synthfin/fraud"
	"github.com/synthfin/synthfin/loader"
	"github.com/synthfin/synthfin/schema"
)

// TestLoadSchemaFromJSON parses the reference document shape end to end.
func TestLoadSchemaFromJSON(t *testing.T) {
	sch, err := loader.LoadSchemaFromJSON(filepath.Join("testdata", "schema.json"))
	require.NoError(t, err)

	require.Len(t, sch.Columns, 5)
	assert.Equal(t, "ano_calendario", sch.Columns[0].Name)
	assert.Equal(t, schema.Datetime, sch.Columns[0].SDType)
	assert.Equal(t, schema.StorageInt32, sch.Columns[0].StorageType)
	assert.True(t, sch.Columns[0].Constraints.Discrete)
	require.NotNil(t, sch.Columns[0].Constraints.Min)
	assert.Equal(t, 2007.0, *sch.Columns[0].Constraints.Min)

	capital, ok := sch.Column("rendimento_capital")
	require.True(t, ok)
	assert.Equal(t, "gamma", capital.Constraints.Distribution)
	assert.Equal(t, 0.5, capital.Constraints.DistributionParameters["shape"])
	assert.Equal(t, 8000.0, capital.Constraints.DistributionParameters["scale"])
	assert.True(t, capital.Constraints.PositiveOnly)

	sector, ok := sch.Column("setor_atividade")
	require.True(t, ok)
	assert.Equal(t, schema.Categorical, sector.SDType)
	assert.Equal(t, []string{"Saúde", "Educação", "Finanças"}, sector.Constraints.Categories)

	require.Len(t, sch.TemporalRules, 1)
	assert.Equal(t, "ano_calendario", sch.TemporalRules[0].Column)
	assert.False(t, sch.TemporalRules[0].Strict)

	require.Len(t, sch.SumRules, 1)
	assert.Equal(t, "rendimento_total", sch.SumRules[0].Name)
	assert.Equal(t, "rendimento_bruto", sch.SumRules[0].TotalColumn)
	assert.True(t, sch.SumRules[0].PositiveOnly)

	assert.Equal(t, schema.Datetime, sch.SDTypes["ano_calendario"])
}

// TestParseSchema_Invalid rejects documents that fail schema validation.
func TestParseSchema_Invalid(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{
			"sdtypes mirror mismatch",
			`{
				"sdtypes": {"a": "categorical"},
				"columns": [{"name": "a", "sdtype": "numerical", "storage_type": "float64",
					"constraints": {"min": 0, "max": 1}}]
			}`,
		},
		{
			"inverted range",
			`{
				"sdtypes": {"a": "numerical"},
				"columns": [{"name": "a", "sdtype": "numerical", "storage_type": "float64",
					"constraints": {"min": 10, "max": 1}}]
			}`,
		},
		{
			"gamma without parameters",
			`{
				"sdtypes": {"a": "numerical"},
				"columns": [{"name": "a", "sdtype": "numerical", "storage_type": "float64",
					"constraints": {"distribution": "gamma"}}]
			}`,
		},
		{
			"rule references unknown column",
			`{
				"sdtypes": {"a": "numerical"},
				"columns": [{"name": "a", "sdtype": "numerical", "storage_type": "float64",
					"constraints": {"min": 0, "max": 1}}],
				"business_rules": {"temporal_consistency": [{"column": "missing"}]}
			}`,
		},
		{
			"categorical without categories",
			`{
				"sdtypes": {"a": "categorical"},
				"columns": [{"name": "a", "sdtype": "categorical", "storage_type": "string",
					"constraints": {}}]
			}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loader.ParseSchema([]byte(tc.doc))
			assert.ErrorIs(t, err, schema.ErrInvalidSchema)
		})
	}
}

// TestLoadGenerationConfig parses seed, row count and the scenario tree.
func TestLoadGenerationConfig(t *testing.T) {
	cfg, err := loader.LoadGenerationConfig(filepath.Join("testdata", "generate.yaml"))
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.RandomSeed)
	assert.Equal(t, 250, cfg.RowCount)
	assert.Equal(t, 0.18, cfg.FraudScenarios.Probability)

	require.NotNil(t, cfg.FraudScenarios.SalaryMisreporting)
	assert.Equal(t, "rendimento_trabalho", cfg.FraudScenarios.SalaryMisreporting.Column)
	assert.Equal(t, 0.4, cfg.FraudScenarios.SalaryMisreporting.MinRatio)
	assert.Nil(t, cfg.FraudScenarios.SuspiciousLifestyle)
}

// TestLoadGenerationConfig_Defaults applies the documented defaults when
// fields are omitted.
func TestLoadGenerationConfig_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))

	cfg, err := loader.LoadGenerationConfig(path)
	require.NoError(t, err)
	assert.Equal(t, loader.DefaultSeed, cfg.RandomSeed)
	assert.Equal(t, loader.DefaultRowCount, cfg.RowCount)
	assert.Equal(t, 0.0, cfg.FraudScenarios.Probability)
}

// TestLoadGenerationConfig_BadScenarios rejects invalid fraud trees at
// load time, not at use time.
func TestLoadGenerationConfig_BadScenarios(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	doc := "fraud_scenarios:\n  probability: 2.0\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := loader.LoadGenerationConfig(path)
	assert.ErrorIs(t, err, fraud.ErrBadScenario)
}
