package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synthfin/synthfin/dataset"
	"github.com/synthfin/synthfin/schema"
	"github.com/synthfin/synthfin/validator"
)

func fp(v float64) *float64 { return &v }

func testSchema() *schema.Schema {
	return &schema.Schema{
		Columns: []schema.ColumnSpec{
			{
				Name: "a", SDType: schema.Numerical, StorageType: schema.StorageFloat64,
				Constraints: schema.Constraints{Min: fp(0), Max: fp(10), Distribution: "uniform"},
			},
			{
				Name: "b", SDType: schema.Numerical, StorageType: schema.StorageFloat64,
				Constraints: schema.Constraints{Min: fp(0), Max: fp(10), Distribution: "uniform"},
			},
			{
				Name: "year", SDType: schema.Datetime, StorageType: schema.StorageInt32,
				Constraints: schema.Constraints{Min: fp(2007), Max: fp(2020), Discrete: true, Distribution: "discrete_range"},
			},
			{
				Name: "sector", SDType: schema.Categorical, StorageType: schema.StorageString,
				Constraints: schema.Constraints{Categories: []string{"Saúde", "Finanças"}},
			},
		},
		TemporalRules: []schema.TemporalRule{{Column: "year"}},
		SumRules: []schema.SumRule{
			{Name: "group", Columns: []string{"a", "b"}, PositiveOnly: true},
		},
	}
}

func row(a, b, year float64, sector string) dataset.Row {
	return dataset.Row{"a": a, "b": b, "year": year, "sector": sector}
}

func buildDataset(rows ...dataset.Row) *dataset.Dataset {
	ds := dataset.New(0, len(rows))
	for i, r := range rows {
		ds.Records = append(ds.Records, &dataset.Record{Index: i, Row: r})
	}
	return ds
}

// TestValidateDataset_Clean accepts a dataset that satisfies everything.
func TestValidateDataset_Clean(t *testing.T) {
	ds := buildDataset(
		row(1, 2, 2007, "Saúde"),
		row(3, 4, 2008, "Finanças"),
	)
	report := validator.ValidateDataset(ds, testSchema())
	assert.True(t, report.Valid)
	assert.Empty(t, report.Violations)
	assert.Equal(t, 2, report.Rows)
}

// TestValidateDataset_PerColumnViolations flags range, discreteness and
// categorical membership breaks with the offending row and column.
func TestValidateDataset_PerColumnViolations(t *testing.T) {
	ds := buildDataset(
		row(42, 2, 2007.5, "Varejo"),
	)
	report := validator.ValidateDataset(ds, testSchema())
	require.False(t, report.Valid)

	rules := make(map[string]validator.Violation)
	for _, v := range report.Violations {
		rules[v.Rule] = v
	}

	require.Contains(t, rules, validator.RuleRangeMax)
	assert.Equal(t, "a", rules[validator.RuleRangeMax].Column)
	assert.Equal(t, 0, rules[validator.RuleRangeMax].RowIndex)

	require.Contains(t, rules, validator.RuleDiscrete)
	assert.Equal(t, "year", rules[validator.RuleDiscrete].Column)

	require.Contains(t, rules, validator.RuleCategoricalValue)
	assert.Equal(t, "sector", rules[validator.RuleCategoricalValue].Column)
}

// TestValidateDataset_SumViolations flags negative members and negative
// group sums with the group name attached.
func TestValidateDataset_SumViolations(t *testing.T) {
	ds := buildDataset(
		row(-5, 2, 2007, "Saúde"),
	)
	report := validator.ValidateDataset(ds, testSchema())
	require.False(t, report.Valid)

	foundMember, foundSum := false, false
	for _, v := range report.Violations {
		switch v.Rule {
		case validator.RuleSumMember:
			foundMember = true
			assert.Equal(t, "group", v.Group)
			assert.Equal(t, "a", v.Column)
		case validator.RuleSumNegative:
			foundSum = true
			assert.Equal(t, "group", v.Group)
		}
	}
	assert.True(t, foundMember, "negative member must be flagged")
	assert.True(t, foundSum, "negative group sum must be flagged")
}

// TestValidateDataset_TotalMismatch flags parts disagreeing with the
// declared total column.
func TestValidateDataset_TotalMismatch(t *testing.T) {
	sch := testSchema()
	sch.SumRules = []schema.SumRule{
		{Name: "group", Columns: []string{"a", "b"}, TotalColumn: "year"},
	}
	ds := buildDataset(
		row(1, 2, 2007, "Saúde"), // 1+2 != 2007
	)
	report := validator.ValidateDataset(ds, sch)
	require.False(t, report.Valid)
	assert.Equal(t, 1, report.Summary[validator.RuleSumTotal])
}

// TestValidateDataset_TemporalViolation flags a decreasing sequence.
func TestValidateDataset_TemporalViolation(t *testing.T) {
	ds := buildDataset(
		row(1, 2, 2010, "Saúde"),
		row(1, 2, 2008, "Saúde"),
	)
	report := validator.ValidateDataset(ds, testSchema())
	require.False(t, report.Valid)
	require.Equal(t, 1, report.Summary[validator.RuleTemporal])
	assert.Equal(t, 1, report.Violations[0].RowIndex, "violation belongs to the decreasing row")
}

// TestValidateDataset_Idempotent verifies two passes over the same dataset
// produce identical reports.
func TestValidateDataset_Idempotent(t *testing.T) {
	ds := buildDataset(
		row(42, -1, 2010, "Varejo"),
		row(1, 2, 2008, "Saúde"),
	)
	sch := testSchema()
	first := validator.ValidateDataset(ds, sch)
	second := validator.ValidateDataset(ds, sch)
	assert.Equal(t, first, second)
}

// TestClassifyExpected splits violations into fraud-induced and unexpected
// based purely on labels, including sum groups touched by a perturbed
// member and the row after a perturbed temporal column.
func TestClassifyExpected(t *testing.T) {
	sch := testSchema()
	ds := buildDataset(
		row(-5, 2, 2010, "Saúde"),  // fraud drove "a" negative
		row(1, 2, 2008, "Saúde"),   // temporal break explained by row 0's perturbation
		row(42, 2, 2008, "Saúde"),  // out of range with no label: engine defect
	)
	ds.Records[0].Label = dataset.FraudLabel{
		Applied:          true,
		Pattern:          "salary_misreporting",
		PerturbedColumns: []string{"a", "year"},
	}

	report := validator.ValidateDataset(ds, sch)
	expected := validator.ClassifyExpected(report, ds, sch)

	assert.False(t, expected.Clean())
	for _, v := range expected.Unexpected {
		assert.Equal(t, 2, v.RowIndex, "only the unlabeled row may be unexpected")
	}
	require.NotEmpty(t, expected.FraudInduced)
	for _, v := range expected.FraudInduced {
		assert.LessOrEqual(t, v.RowIndex, 1)
	}

	// Ground truth never shrinks: both buckets together cover the report.
	assert.Len(t, report.Violations, len(expected.FraudInduced)+len(expected.Unexpected))
}

// TestClassifyExpected_LabelWithoutColumns treats an applied label carrying
// no per-column detail (the shape reconstructed from persisted data) as
// covering the whole row.
func TestClassifyExpected_LabelWithoutColumns(t *testing.T) {
	sch := testSchema()
	ds := buildDataset(
		row(42, 2, 2007, "Saúde"),
	)
	ds.Records[0].Label = dataset.FraudLabel{Applied: true, Pattern: "salary_misreporting"}

	report := validator.ValidateDataset(ds, sch)
	require.False(t, report.Valid)

	expected := validator.ClassifyExpected(report, ds, sch)
	assert.True(t, expected.Clean(), "a labeled row's violations must stay fraud-induced")
	assert.Len(t, expected.FraudInduced, len(report.Violations))
}
