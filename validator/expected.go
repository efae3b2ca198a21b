package validator

import (
	"github.com/synthfin/synthfin/dataset"
	"github.com/synthfin/synthfin/schema"
)

// ExpectedReport splits a ground-truth report into violations explained by
// an applied fraud label and violations nothing explains. Only the latter
// category indicates a generation-engine defect.
type ExpectedReport struct {
	Rows         int         `json:"rows"`
	FraudInduced []Violation `json:"fraud_induced"`
	Unexpected   []Violation `json:"unexpected"`
}

// Clean reports whether every violation is accounted for by fraud.
func (r *ExpectedReport) Clean() bool {
	return len(r.Unexpected) == 0
}

// ClassifyExpected cross-references a report against the dataset's fraud
// labels. A violation is fraud-induced when its row carries an applied
// label and the violated rule touches a perturbed column: directly, through
// a sum group the column belongs to, or through a temporal rule on it.
// Repair notes never excuse a violation; a repaired-then-defrauded row is
// classified purely by what the fraud transform touched.
func ClassifyExpected(report *Report, ds *dataset.Dataset, sch *schema.Schema) *ExpectedReport {
	out := &ExpectedReport{Rows: report.Rows}
	for _, v := range report.Violations {
		if explainedByFraud(v, ds, sch) {
			out.FraudInduced = append(out.FraudInduced, v)
		} else {
			out.Unexpected = append(out.Unexpected, v)
		}
	}
	return out
}

func explainedByFraud(v Violation, ds *dataset.Dataset, sch *schema.Schema) bool {
	if v.RowIndex < 0 || v.RowIndex >= ds.Len() {
		return false
	}

	if v.Rule == RuleTemporal {
		// A perturbed temporal column breaks monotonicity on the next row as
		// well; the previous row's label explains it even when this row
		// carries none.
		if prev := v.RowIndex - 1; prev >= 0 && ds.Records[prev].Label.Perturbed(v.Column) {
			return true
		}
	}

	label := ds.Records[v.RowIndex].Label
	if !label.Applied {
		return false
	}

	if v.Column != "" && label.Perturbed(v.Column) {
		return true
	}
	if v.Group != "" {
		for _, rule := range sch.SumRules {
			if rule.Name != v.Group {
				continue
			}
			if label.Perturbed(rule.TotalColumn) {
				return true
			}
			for _, name := range rule.Columns {
				if label.Perturbed(name) {
					return true
				}
			}
		}
	}
	return false
}
