package dataset

import "github.com/google/uuid"

// Repair rule names recorded by the generator.
const (
	RepairRangeClip      = "range_clip"
	RepairSumRescale     = "sum_rescale"
	RepairSumResidual    = "sum_residual"
	RepairTemporalForced = "constraint_repair_exhausted"
)

// Audit columns appended by the sinks next to the schema columns.
const (
	ColumnIsFraudulent = "is_fraudulent"
	ColumnFraudType    = "fraud_type"
	FraudTypeNone      = "none"
)

// Row maps a column name to its generated scalar value. Numerical and
// datetime columns hold float64, categorical columns hold string.
type Row map[string]any

// Float returns the numeric value of a column, if present and numeric.
func (r Row) Float(name string) (float64, bool) {
	v, ok := r[name].(float64)
	return v, ok
}

// Text returns the categorical value of a column, if present.
func (r Row) Text(name string) (string, bool) {
	v, ok := r[name].(string)
	return v, ok
}

// Clone returns a shallow copy; scalar values make it an effective deep copy.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FraudLabel is the audit record attached to every row after injection.
// It is never consulted as a constraint exemption: the validator reports
// ground truth and only the expected-violation classifier reads labels.
type FraudLabel struct {
	Applied          bool     `json:"applied"`
	Pattern          string   `json:"pattern,omitempty"`
	PerturbedColumns []string `json:"perturbed_columns,omitempty"`
}

// Type returns the fraud type string the sinks emit ("none" when clean).
func (l FraudLabel) Type() string {
	if !l.Applied {
		return FraudTypeNone
	}
	return l.Pattern
}

// Perturbed reports whether the label covers the given column. Labels
// reconstructed from persisted data carry no per-column detail, so an
// applied label without recorded columns covers the whole row.
func (l FraudLabel) Perturbed(column string) bool {
	if !l.Applied {
		return false
	}
	if len(l.PerturbedColumns) == 0 {
		return true
	}
	for _, name := range l.PerturbedColumns {
		if name == column {
			return true
		}
	}
	return false
}

// Repair records a non-fatal forced repair made while generating one row.
type Repair struct {
	Column string `json:"column"`
	Rule   string `json:"rule"`
	Detail string `json:"detail"`
}

// Record is one generated row plus everything the generator and injector
// learned about it. Immutable once the validator has seen it.
type Record struct {
	Index   int
	Row     Row
	Label   FraudLabel
	Repairs []Repair
}

// Repaired reports whether any constraint repair was forced on this row.
func (rec *Record) Repaired() bool {
	return len(rec.Repairs) > 0
}

// Dataset is an ordered sequence of records produced by one generation run.
type Dataset struct {
	RunID   uuid.UUID
	Seed    int64
	Records []*Record
}

func New(seed int64, capacity int) *Dataset {
	return &Dataset{
		RunID:   uuid.New(),
		Seed:    seed,
		Records: make([]*Record, 0, capacity),
	}
}

func (d *Dataset) Len() int {
	return len(d.Records)
}

// FraudCount returns how many records carry an applied fraud label.
func (d *Dataset) FraudCount() int {
	n := 0
	for _, rec := range d.Records {
		if rec.Label.Applied {
			n++
		}
	}
	return n
}
