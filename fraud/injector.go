package fraud

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/synthfin/synthfin/dataset"
	"github.com/synthfin/synthfin/schema"
)

// Recognized fraud pattern names, in their fixed selection order.
const (
	PatternSalaryMisreporting  = "salary_misreporting"
	PatternSuspiciousLifestyle = "suspicious_lifestyle"
	PatternRapidTransactions   = "rapid_transactions"
)

var ErrBadScenario = errors.New("bad fraud scenario config")

// Pattern configures one named fraud transform. The transform multiplies
// Column by a ratio drawn uniformly from [MinRatio, MaxRatio]; when
// BaseColumn is set the result replaces Column with BaseColumn*ratio
// instead (inflated deductions against income, excessive refunds against
// tax paid, and so on).
type Pattern struct {
	Probability float64 `yaml:"probability"`
	Column      string  `yaml:"column"`
	BaseColumn  string  `yaml:"base_column,omitempty"`
	MinRatio    float64 `yaml:"min_ratio"`
	MaxRatio    float64 `yaml:"max_ratio"`
}

// Scenarios is the full fraud configuration tree. Every recognized option
// is an enumerated field; nothing is looked up by dynamic key at use time.
type Scenarios struct {
	Probability         float64  `yaml:"probability"`
	SalaryMisreporting  *Pattern `yaml:"salary_misreporting,omitempty"`
	SuspiciousLifestyle *Pattern `yaml:"suspicious_lifestyle,omitempty"`
	RapidTransactions   *Pattern `yaml:"rapid_transactions,omitempty"`
}

type namedPattern struct {
	name    string
	pattern *Pattern
}

// enabled returns the configured patterns in their fixed declared order,
// which is part of the determinism contract.
func (s Scenarios) enabled() []namedPattern {
	var out []namedPattern
	if s.SalaryMisreporting != nil {
		out = append(out, namedPattern{PatternSalaryMisreporting, s.SalaryMisreporting})
	}
	if s.SuspiciousLifestyle != nil {
		out = append(out, namedPattern{PatternSuspiciousLifestyle, s.SuspiciousLifestyle})
	}
	if s.RapidTransactions != nil {
		out = append(out, namedPattern{PatternRapidTransactions, s.RapidTransactions})
	}
	return out
}

// Validate checks probabilities, ratio ranges and target columns.
func (s Scenarios) Validate() error {
	if s.Probability < 0 || s.Probability > 1 {
		return fmt.Errorf("%w: probability %g outside [0, 1]", ErrBadScenario, s.Probability)
	}
	if s.Probability > 0 && len(s.enabled()) == 0 {
		return fmt.Errorf("%w: probability %g with no patterns configured", ErrBadScenario, s.Probability)
	}
	for _, np := range s.enabled() {
		p := np.pattern
		if p.Probability < 0 || p.Probability > 1 {
			return fmt.Errorf("%w: %s: probability %g outside [0, 1]", ErrBadScenario, np.name, p.Probability)
		}
		if p.Column == "" {
			return fmt.Errorf("%w: %s: target column not set", ErrBadScenario, np.name)
		}
		if p.MinRatio > p.MaxRatio {
			return fmt.Errorf("%w: %s: min_ratio %g greater than max_ratio %g", ErrBadScenario, np.name, p.MinRatio, p.MaxRatio)
		}
	}
	return nil
}

// ValidateAgainst additionally checks that every target column exists in
// the schema and is numeric.
func (s Scenarios) ValidateAgainst(sch *schema.Schema) error {
	if err := s.Validate(); err != nil {
		return err
	}
	for _, np := range s.enabled() {
		for _, name := range []string{np.pattern.Column, np.pattern.BaseColumn} {
			if name == "" {
				continue
			}
			col, ok := sch.Column(name)
			if !ok {
				return fmt.Errorf("%w: %s: column %q not in schema", ErrBadScenario, np.name, name)
			}
			if col.SDType == schema.Categorical {
				return fmt.Errorf("%w: %s: column %q is categorical", ErrBadScenario, np.name, name)
			}
		}
	}
	return nil
}

// Injector applies fraud scenarios to generated records. Injection is the
// last pipeline stage and is allowed to break schema constraints; the
// label it writes is what keeps those breaks traceable.
type Injector struct {
	scenarios Scenarios
	patterns  []namedPattern
	weightSum float64
}

func NewInjector(s Scenarios) (*Injector, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	in := &Injector{scenarios: s, patterns: s.enabled()}
	for _, np := range in.patterns {
		in.weightSum += np.pattern.Probability
	}
	return in, nil
}

// Inject draws the fraud gate for one record and, on a hit, selects a
// pattern weighted by the normalized per-pattern probabilities and applies
// its transform in place. Exactly one gate draw is consumed per record, so
// the stream stays aligned whether or not fraud fires. Records that carry
// generation repairs stay eligible; the record keeps both facts.
func (in *Injector) Inject(rec *dataset.Record, rng *rand.Rand) {
	rec.Label = dataset.FraudLabel{}
	if len(in.patterns) == 0 || rng.Float64() >= in.scenarios.Probability {
		return
	}

	np := in.pick(rng)
	p := np.pattern
	ratio := p.MinRatio + rng.Float64()*(p.MaxRatio-p.MinRatio)

	base, ok := rec.Row.Float(p.Column)
	perturbed := []string{p.Column}
	if p.BaseColumn != "" {
		base, ok = rec.Row.Float(p.BaseColumn)
	}
	if !ok {
		// Target missing or non-numeric; the gate draw is already spent,
		// leave the record clean.
		return
	}

	rec.Row[p.Column] = base * ratio
	rec.Label = dataset.FraudLabel{
		Applied:          true,
		Pattern:          np.name,
		PerturbedColumns: perturbed,
	}
}

func (in *Injector) pick(rng *rand.Rand) namedPattern {
	if in.weightSum <= 0 {
		// All weights zero: fall back to a uniform choice.
		return in.patterns[rng.Intn(len(in.patterns))]
	}
	r := rng.Float64() * in.weightSum
	acc := 0.0
	for _, np := range in.patterns {
		acc += np.pattern.Probability
		if r < acc {
			return np
		}
	}
	return in.patterns[len(in.patterns)-1]
}

// InjectAll runs Inject over every record of a dataset in order.
func (in *Injector) InjectAll(ds *dataset.Dataset, rng *rand.Rand) {
	for _, rec := range ds.Records {
		in.Inject(rec, rng)
	}
}
