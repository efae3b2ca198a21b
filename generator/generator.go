package generator

import (
	"fmt"
	"math/rand"

	"github.com/synthfin/synthfin/dataset"
	"github.com/synthfin/synthfin/sampler"
	"github.com/synthfin/synthfin/schema"
)

// State is the explicit mutable state of one generation run: the seeded
// random stream and the last-emitted value per temporally constrained
// column. It is owned by a single Generate call; nothing is global.
type State struct {
	Rng  *rand.Rand
	Last map[string]float64
}

func NewState(seed int64) *State {
	return &State{
		Rng:  rand.New(rand.NewSource(seed)),
		Last: make(map[string]float64),
	}
}

// Generator produces schema-valid rows. Generation is sequential by
// construction: row i depends on row i-1 through the temporal rules, so a
// Generator must not be shared across goroutines. Independent runs get
// independent Generators.
type Generator struct {
	schema *schema.Schema
	seed   int64
}

func New(sch *schema.Schema, seed int64) *Generator {
	return &Generator{schema: sch, seed: seed}
}

// Generate produces n rows in order. The state is re-seeded on every call,
// so calling Generate again with the same seed reproduces the same
// sequence byte for byte. Fatal sampling errors abort the run; constraint
// repairs never do, they are recorded on the record instead.
func (g *Generator) Generate(n int) (*dataset.Dataset, error) {
	if n < 0 {
		return nil, fmt.Errorf("row count must be non-negative, got %d", n)
	}

	st := NewState(g.seed)
	ds := dataset.New(g.seed, n)
	for i := 0; i < n; i++ {
		rec, err := g.generateRow(i, st)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

// generateRow samples every column in schema order, then applies the
// composite rules in their declared order: value relationships first, then
// temporal consistency, so monotonicity always holds on the emitted row.
func (g *Generator) generateRow(idx int, st *State) (*dataset.Record, error) {
	row := make(dataset.Row, len(g.schema.Columns))
	var repairs []dataset.Repair

	for _, col := range g.schema.Columns {
		if col.SDType == schema.Categorical {
			v, err := sampler.Categorical(col, st.Rng)
			if err != nil {
				return nil, err
			}
			row[col.Name] = v
			continue
		}

		s, err := sampler.Numeric(col, st.Rng)
		if err != nil {
			return nil, err
		}
		row[col.Name] = s.Value
		if s.Clipped {
			repairs = append(repairs, dataset.Repair{
				Column: col.Name,
				Rule:   dataset.RepairRangeClip,
				Detail: "sampled value clamped into declared range",
			})
		}
	}

	for _, rule := range g.schema.SumRules {
		repairs = append(repairs, g.enforceSumRule(row, rule)...)
	}
	for _, rule := range g.schema.TemporalRules {
		rep, err := g.enforceTemporalRule(row, rule, st)
		if err != nil {
			return nil, err
		}
		repairs = append(repairs, rep...)
	}

	return &dataset.Record{Index: idx, Row: row, Repairs: repairs}, nil
}
