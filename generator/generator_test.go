package generator_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synthfin/synthfin/dataset"
	"github.com/synthfin/synthfin/generator"
	"github.com/synthfin/synthfin/schema"
)

func fp(v float64) *float64 { return &v }

func numericCol(name string, min, max float64) schema.ColumnSpec {
	return schema.ColumnSpec{
		Name:        name,
		SDType:      schema.Numerical,
		StorageType: schema.StorageFloat64,
		Constraints: schema.Constraints{
			Min:          fp(min),
			Max:          fp(max),
			Distribution: "uniform",
		},
	}
}

func sumGroupSchema() *schema.Schema {
	return &schema.Schema{
		Columns: []schema.ColumnSpec{
			numericCol("a", 0, 100),
			numericCol("b", 0, 100),
			numericCol("c", 0, 100),
		},
		SumRules: []schema.SumRule{
			{Name: "group", Columns: []string{"a", "b", "c"}, PositiveOnly: true},
		},
	}
}

// TestGenerate_SumGroupReproducible covers the reference scenario: one sum
// group of three columns bounded [0, 100], seed 42, n 10. Every row's
// group sum must be non-negative and two runs with the same seed must
// produce identical rows.
func TestGenerate_SumGroupReproducible(t *testing.T) {
	sch := sumGroupSchema()

	first, err := generator.New(sch, 42).Generate(10)
	require.NoError(t, err)
	second, err := generator.New(sch, 42).Generate(10)
	require.NoError(t, err)

	require.Equal(t, 10, first.Len())
	require.Equal(t, 10, second.Len())

	for i, rec := range first.Records {
		a, _ := rec.Row.Float("a")
		b, _ := rec.Row.Float("b")
		c, _ := rec.Row.Float("c")
		assert.GreaterOrEqual(t, a+b+c, 0.0, "row %d group sum", i)

		assert.Equal(t, rec.Row, second.Records[i].Row, "row %d diverged across seeded runs", i)
		assert.Equal(t, rec.Repairs, second.Records[i].Repairs, "row %d repairs diverged", i)
	}
}

// TestGenerate_BoundsAndDiscreteness verifies every generated value
// respects its column's range and discreteness pre-fraud.
func TestGenerate_BoundsAndDiscreteness(t *testing.T) {
	sch := &schema.Schema{
		Columns: []schema.ColumnSpec{
			{
				Name:        "year",
				SDType:      schema.Datetime,
				StorageType: schema.StorageInt32,
				Constraints: schema.Constraints{
					Min: fp(2007), Max: fp(2020),
					Discrete:     true,
					Distribution: "discrete_range",
				},
			},
			{
				Name:        "income",
				SDType:      schema.Numerical,
				StorageType: schema.StorageFloat64,
				Constraints: schema.Constraints{
					Min: fp(0), Max: fp(100000),
					PositiveOnly: true,
					Distribution: "gamma",
					DistributionParameters: map[string]float64{
						"shape": 0.5,
						"scale": 5000,
					},
				},
			},
			{
				Name:        "sector",
				SDType:      schema.Categorical,
				StorageType: schema.StorageString,
				Constraints: schema.Constraints{
					Categories: []string{"Saúde", "Finanças"},
				},
			},
		},
	}

	ds, err := generator.New(sch, 7).Generate(200)
	require.NoError(t, err)

	for _, rec := range ds.Records {
		year, ok := rec.Row.Float("year")
		require.True(t, ok)
		assert.GreaterOrEqual(t, year, 2007.0)
		assert.LessOrEqual(t, year, 2020.0)
		assert.Equal(t, math.Trunc(year), year)

		income, ok := rec.Row.Float("income")
		require.True(t, ok)
		assert.GreaterOrEqual(t, income, 0.0)
		assert.LessOrEqual(t, income, 100000.0)

		sector, ok := rec.Row.Text("sector")
		require.True(t, ok)
		assert.Contains(t, []string{"Saúde", "Finanças"}, sector)
	}
}

// TestGenerate_TemporalNonDecreasing covers the reference scenario:
// temporal consistency on a year column bounded [2007, 2020] over 20 rows
// must yield a non-decreasing in-range sequence.
func TestGenerate_TemporalNonDecreasing(t *testing.T) {
	sch := &schema.Schema{
		Columns: []schema.ColumnSpec{
			{
				Name:        "ano_calendario",
				SDType:      schema.Datetime,
				StorageType: schema.StorageInt32,
				Constraints: schema.Constraints{
					Min: fp(2007), Max: fp(2020),
					Discrete:     true,
					Distribution: "discrete_range",
				},
			},
		},
		TemporalRules: []schema.TemporalRule{{Column: "ano_calendario"}},
	}

	ds, err := generator.New(sch, 42).Generate(20)
	require.NoError(t, err)

	prev := math.Inf(-1)
	for i, rec := range ds.Records {
		v, ok := rec.Row.Float("ano_calendario")
		require.True(t, ok)
		assert.GreaterOrEqual(t, v, 2007.0)
		assert.LessOrEqual(t, v, 2020.0)
		assert.GreaterOrEqual(t, v, prev, "row %d broke monotonicity", i)
		prev = v
	}
}

// TestGenerate_TemporalStrictClampsAtMax forces the strict sequence out of
// headroom: with only four distinct values available, the generator must
// clamp at the column max and record the exhausted repair instead of
// emitting an out-of-range value.
func TestGenerate_TemporalStrictClampsAtMax(t *testing.T) {
	sch := &schema.Schema{
		Columns: []schema.ColumnSpec{
			{
				Name:        "ano_calendario",
				SDType:      schema.Datetime,
				StorageType: schema.StorageInt32,
				Constraints: schema.Constraints{
					Min: fp(2007), Max: fp(2010),
					Discrete:     true,
					Distribution: "discrete_range",
				},
			},
		},
		TemporalRules: []schema.TemporalRule{{Column: "ano_calendario", Strict: true}},
	}

	ds, err := generator.New(sch, 42).Generate(20)
	require.NoError(t, err)

	exhausted := 0
	for _, rec := range ds.Records {
		v, _ := rec.Row.Float("ano_calendario")
		assert.LessOrEqual(t, v, 2010.0, "value escaped the declared range")
		for _, rep := range rec.Repairs {
			if rep.Rule == dataset.RepairTemporalForced {
				exhausted++
			}
		}
	}
	assert.Greater(t, exhausted, 0, "running out of strict headroom must be reported")

	last, _ := ds.Records[19].Row.Float("ano_calendario")
	assert.Equal(t, 2010.0, last, "sequence must end clamped at the max")
}

// TestGenerate_SumRuleWithDeclaredTotal verifies parts are rescaled to the
// reported total, or the leftover residual is recorded as a soft repair.
func TestGenerate_SumRuleWithDeclaredTotal(t *testing.T) {
	sch := &schema.Schema{
		Columns: []schema.ColumnSpec{
			numericCol("x", 1, 100),
			numericCol("y", 1, 100),
			numericCol("z", 1, 100),
			numericCol("total", 3, 300),
		},
		SumRules: []schema.SumRule{
			{
				Name:         "parts",
				Columns:      []string{"x", "y", "z"},
				TotalColumn:  "total",
				PositiveOnly: true,
			},
		},
	}

	ds, err := generator.New(sch, 9).Generate(100)
	require.NoError(t, err)

	for i, rec := range ds.Records {
		x, _ := rec.Row.Float("x")
		y, _ := rec.Row.Float("y")
		z, _ := rec.Row.Float("z")
		total, _ := rec.Row.Float("total")

		residualReported := false
		for _, rep := range rec.Repairs {
			if rep.Rule == dataset.RepairSumResidual {
				residualReported = true
			}
		}
		if !residualReported {
			assert.InDelta(t, total, x+y+z, 1e-6, "row %d parts disagree with total without a residual note", i)
		}
	}
}

// TestGenerate_SumGroupNegativeMembersZeroed verifies raise-to-zero lands
// in the emitted row itself, not only in the repair notes: after
// enforcement every member of a positive_only group is non-negative.
func TestGenerate_SumGroupNegativeMembersZeroed(t *testing.T) {
	sch := &schema.Schema{
		Columns: []schema.ColumnSpec{
			numericCol("a", -50, 50),
			numericCol("b", -50, 50),
			numericCol("c", -50, 50),
		},
		SumRules: []schema.SumRule{
			{Name: "group", Columns: []string{"a", "b", "c"}, PositiveOnly: true},
		},
	}

	ds, err := generator.New(sch, 42).Generate(200)
	require.NoError(t, err)

	raised := 0
	for i, rec := range ds.Records {
		sum := 0.0
		for _, name := range []string{"a", "b", "c"} {
			v, ok := rec.Row.Float(name)
			require.True(t, ok)
			assert.GreaterOrEqual(t, v, 0.0, "row %d member %s negative after enforcement", i, name)
			sum += v
		}
		assert.GreaterOrEqual(t, sum, 0.0, "row %d group sum negative", i)
		for _, rep := range rec.Repairs {
			if rep.Rule == dataset.RepairSumRescale {
				raised++
			}
		}
	}
	assert.Greater(t, raised, 0, "draws over [-50, 50] must trigger raise-to-zero repairs")
}

// TestGenerate_NegativeRowCount rejects a negative request.
func TestGenerate_NegativeRowCount(t *testing.T) {
	_, err := generator.New(sumGroupSchema(), 1).Generate(-1)
	assert.Error(t, err)
}
