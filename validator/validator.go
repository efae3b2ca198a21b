package validator

import (
	"fmt"
	"math"

	"github.com/synthfin/synthfin/dataset"
	"github.com/synthfin/synthfin/schema"
)

// Violation rule names.
const (
	RuleMissingColumn    = "missing_column"
	RuleRangeMin         = "range_min"
	RuleRangeMax         = "range_max"
	RuleDiscrete         = "discrete"
	RulePositiveOnly     = "positive_only"
	RuleCategoricalValue = "categorical_value"
	RuleSumNegative      = "sum_negative"
	RuleSumMember        = "sum_member_negative"
	RuleSumTotal         = "sum_total_mismatch"
	RuleTemporal         = "temporal_consistency"
)

// sumTolerance matches the generator's rescale tolerance so the validator
// never flags drift the enforcer was allowed to leave behind.
const sumTolerance = 1e-6

// Violation is one post-hoc finding against a finished dataset.
type Violation struct {
	RowIndex int    `json:"row_index"`
	Rule     string `json:"rule"`
	Column   string `json:"column,omitempty"`
	Group    string `json:"group,omitempty"`
	Detail   string `json:"detail"`
}

// Report is the structured result of validating a dataset. Violations are
// ordered by row, then by the schema's declared rule order, so two runs
// over the same dataset produce identical reports.
type Report struct {
	Valid      bool           `json:"valid"`
	Rows       int            `json:"rows"`
	Violations []Violation    `json:"violations"`
	Summary    map[string]int `json:"summary"`
}

func (r *Report) add(v Violation) {
	r.Violations = append(r.Violations, v)
	r.Summary[v.Rule]++
	r.Valid = false
}

// ValidateDataset independently re-derives every per-column and composite
// constraint from the schema and checks each row (and row-to-row
// relationship) against it. It never consults fraud labels and never
// mutates the dataset: it reports ground truth.
func ValidateDataset(ds *dataset.Dataset, sch *schema.Schema) *Report {
	report := &Report{
		Valid:   true,
		Rows:    ds.Len(),
		Summary: make(map[string]int),
	}

	last := make(map[string]float64)
	for i, rec := range ds.Records {
		for _, col := range sch.Columns {
			checkColumn(report, i, rec.Row, col)
		}
		for _, rule := range sch.SumRules {
			checkSumRule(report, i, rec.Row, rule)
		}
		for _, rule := range sch.TemporalRules {
			checkTemporalRule(report, i, rec.Row, rule, last)
		}
	}
	return report
}

func checkColumn(report *Report, idx int, row dataset.Row, col schema.ColumnSpec) {
	if col.SDType == schema.Categorical {
		v, ok := row.Text(col.Name)
		if !ok {
			report.add(Violation{RowIndex: idx, Rule: RuleMissingColumn, Column: col.Name,
				Detail: "categorical value missing"})
			return
		}
		for _, cat := range col.Constraints.Categories {
			if v == cat {
				return
			}
		}
		report.add(Violation{RowIndex: idx, Rule: RuleCategoricalValue, Column: col.Name,
			Detail: fmt.Sprintf("value %q not in declared categories", v)})
		return
	}

	v, ok := row.Float(col.Name)
	if !ok {
		report.add(Violation{RowIndex: idx, Rule: RuleMissingColumn, Column: col.Name,
			Detail: "numeric value missing"})
		return
	}

	c := col.Constraints
	if c.Min != nil && v < *c.Min {
		report.add(Violation{RowIndex: idx, Rule: RuleRangeMin, Column: col.Name,
			Detail: fmt.Sprintf("value %g below min %g", v, *c.Min)})
	}
	if c.Max != nil && v > *c.Max {
		report.add(Violation{RowIndex: idx, Rule: RuleRangeMax, Column: col.Name,
			Detail: fmt.Sprintf("value %g above max %g", v, *c.Max)})
	}
	if c.PositiveOnly && v < 0 {
		report.add(Violation{RowIndex: idx, Rule: RulePositiveOnly, Column: col.Name,
			Detail: fmt.Sprintf("value %g negative on positive_only column", v)})
	}
	if c.Discrete && v != math.Trunc(v) {
		report.add(Violation{RowIndex: idx, Rule: RuleDiscrete, Column: col.Name,
			Detail: fmt.Sprintf("value %g not integral on discrete column", v)})
	}
}

func checkSumRule(report *Report, idx int, row dataset.Row, rule schema.SumRule) {
	sum := 0.0
	for _, name := range rule.Columns {
		v, ok := row.Float(name)
		if !ok {
			continue // missing_column already reported per column
		}
		if rule.PositiveOnly && v < 0 {
			report.add(Violation{RowIndex: idx, Rule: RuleSumMember, Column: name, Group: rule.Name,
				Detail: fmt.Sprintf("member %g negative in positive_only group", v)})
		}
		sum += v
	}

	if sum < 0 {
		report.add(Violation{RowIndex: idx, Rule: RuleSumNegative, Group: rule.Name,
			Detail: fmt.Sprintf("group sum %g negative", sum)})
	}
	if rule.TotalColumn != "" {
		total, ok := row.Float(rule.TotalColumn)
		if ok && math.Abs(sum-total) > sumTolerance {
			report.add(Violation{RowIndex: idx, Rule: RuleSumTotal, Column: rule.TotalColumn, Group: rule.Name,
				Detail: fmt.Sprintf("parts sum %g disagrees with reported total %g", sum, total)})
		}
	}
}

func checkTemporalRule(report *Report, idx int, row dataset.Row, rule schema.TemporalRule, last map[string]float64) {
	v, ok := row.Float(rule.Column)
	if !ok {
		return
	}
	prev, seen := last[rule.Column]
	last[rule.Column] = v
	if !seen {
		return
	}
	if rule.Strict && v <= prev {
		report.add(Violation{RowIndex: idx, Rule: RuleTemporal, Column: rule.Column,
			Detail: fmt.Sprintf("value %g not strictly greater than previous %g", v, prev)})
	} else if !rule.Strict && v < prev {
		report.add(Violation{RowIndex: idx, Rule: RuleTemporal, Column: rule.Column,
			Detail: fmt.Sprintf("value %g decreased from previous %g", v, prev)})
	}
}
