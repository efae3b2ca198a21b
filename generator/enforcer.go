package generator

import (
	"fmt"
	"math"

	"github.com/synthfin/synthfin/dataset"
	"github.com/synthfin/synthfin/sampler"
	"github.com/synthfin/synthfin/schema"
)

const (
	// Retry and pass budgets. Both exist to guarantee termination: after
	// the budget runs out the enforcer forces a valid-by-construction value
	// (or records a soft residual) instead of looping.
	maxTemporalRetries = 8
	maxRescalePasses   = 4

	// sumTolerance bounds the acceptable drift between a rescaled group
	// and its target total.
	sumTolerance = 1e-6
)

// enforceSumRule repairs a sampled row against one value relationship.
// Members are first raised to zero when the rule demands positivity, then
// proportionally rescaled toward the target total (the declared total
// column when present, otherwise zero when the group sum is negative),
// clamping members at their own bounds and redistributing the residual
// over the unclamped members for a bounded number of passes.
func (g *Generator) enforceSumRule(row dataset.Row, rule schema.SumRule) []dataset.Repair {
	var repairs []dataset.Repair

	vals := make([]float64, len(rule.Columns))
	for i, name := range rule.Columns {
		v, _ := row.Float(name)
		if rule.PositiveOnly && v < 0 {
			v = 0
			row[name] = v
			repairs = append(repairs, dataset.Repair{
				Column: name,
				Rule:   dataset.RepairSumRescale,
				Detail: fmt.Sprintf("negative member of group %q raised to zero", rule.Name),
			})
		}
		vals[i] = v
	}

	sum := 0.0
	for _, v := range vals {
		sum += v
	}

	var target float64
	switch {
	case rule.TotalColumn != "":
		target, _ = row.Float(rule.TotalColumn)
	case sum >= 0:
		return repairs
	default:
		target = 0
	}

	if math.Abs(sum-target) <= sumTolerance {
		return repairs
	}

	rescaled, residual, passes := rescaleGroup(g.schema, rule, vals, target)
	for i, name := range rule.Columns {
		if rescaled[i] != vals[i] {
			repairs = append(repairs, dataset.Repair{
				Column: name,
				Rule:   dataset.RepairSumRescale,
				Detail: fmt.Sprintf("rescaled from %g to %g toward group %q total %g", vals[i], rescaled[i], rule.Name, target),
			})
		}
		row[name] = rescaled[i]
	}
	if math.Abs(residual) > sumTolerance {
		repairs = append(repairs, dataset.Repair{
			Rule:   dataset.RepairSumResidual,
			Detail: fmt.Sprintf("group %q off target by %g after %d passes", rule.Name, residual, passes),
		})
	}
	return repairs
}

// rescaleGroup scales the non-zero members so they sum to target while
// preserving relative magnitudes and individual bounds. Members pushed
// outside their bounds are clamped and frozen; the remaining residual is
// redistributed over the free members on the next pass. Returns the final
// values, the unresolved residual and the number of passes run.
func rescaleGroup(sch *schema.Schema, rule schema.SumRule, vals []float64, target float64) ([]float64, float64, int) {
	out := make([]float64, len(vals))
	copy(out, vals)
	frozen := make([]bool, len(vals))

	for pass := 0; pass < maxRescalePasses; pass++ {
		frozenSum, freeSum := 0.0, 0.0
		for i, v := range out {
			if frozen[i] || v == 0 {
				frozenSum += v
			} else {
				freeSum += v
			}
		}

		if math.Abs(frozenSum+freeSum-target) <= sumTolerance {
			return out, 0, pass
		}
		if freeSum == 0 {
			// Nothing left to scale; report what remains.
			return out, target - frozenSum, pass
		}

		factor := (target - frozenSum) / freeSum
		if factor < 0 {
			// A multiplicative rescale cannot flip signs; freeze everything
			// at zero-floor and let the residual surface.
			factor = 0
		}
		for i, v := range out {
			if frozen[i] || v == 0 {
				continue
			}
			nv := v * factor
			if spec, ok := sch.Column(rule.Columns[i]); ok {
				c := spec.Constraints
				if c.Min != nil && nv < *c.Min {
					nv = *c.Min
					frozen[i] = true
				}
				if c.Max != nil && nv > *c.Max {
					nv = *c.Max
					frozen[i] = true
				}
				if c.Discrete {
					nv = math.Round(nv)
				}
			}
			out[i] = nv
		}
	}

	total := 0.0
	for _, v := range out {
		total += v
	}
	return out, target - total, maxRescalePasses
}

// enforceTemporalRule keeps the constrained column monotonic across the
// row sequence. A non-monotonic draw is resampled from the column's own
// distribution up to maxTemporalRetries times, then forced to the minimum
// valid successor and clamped at the column max so the run always moves
// forward. Every forced value is recorded, never fatal.
func (g *Generator) enforceTemporalRule(row dataset.Row, rule schema.TemporalRule, st *State) ([]dataset.Repair, error) {
	spec, ok := g.schema.Column(rule.Column)
	if !ok {
		return nil, fmt.Errorf("temporal rule references unknown column %q", rule.Column)
	}

	v, _ := row.Float(rule.Column)
	last, seen := st.Last[rule.Column]
	if !seen {
		st.Last[rule.Column] = v
		return nil, nil
	}

	ok = monotonic(v, last, rule.Strict)
	for retry := 0; retry < maxTemporalRetries && !ok; retry++ {
		s, err := sampler.Numeric(spec, st.Rng)
		if err != nil {
			return nil, err
		}
		v = s.Value
		ok = monotonic(v, last, rule.Strict)
	}

	var repairs []dataset.Repair
	if !ok {
		forced := last
		if rule.Strict {
			forced = last + 1
		}
		detail := fmt.Sprintf("forced to %g after %d resamples", forced, maxTemporalRetries)
		if max := spec.Constraints.Max; max != nil && forced > *max {
			forced = *max
			detail = fmt.Sprintf("clamped at column max %g after %d resamples", *max, maxTemporalRetries)
		}
		v = forced
		repairs = append(repairs, dataset.Repair{
			Column: rule.Column,
			Rule:   dataset.RepairTemporalForced,
			Detail: detail,
		})
	}

	row[rule.Column] = v
	st.Last[rule.Column] = v
	return repairs, nil
}

func monotonic(v, last float64, strict bool) bool {
	if strict {
		return v > last
	}
	return v >= last
}
