package schema

// SemanticType classifies what a column means, independent of how it is stored.
type SemanticType string

const (
	Numerical   SemanticType = "numerical"
	Categorical SemanticType = "categorical"
	Datetime    SemanticType = "datetime"
)

// Storage types understood by the sinks.
const (
	StorageInt32   = "int32"
	StorageInt64   = "int64"
	StorageFloat64 = "float64"
	StorageString  = "string"
)

// Schema is the resolved, read-only description of one tabular dataset:
// ordered columns plus the composite business rules that span them.
type Schema struct {
	Columns       []ColumnSpec
	SDTypes       map[string]SemanticType
	TemporalRules []TemporalRule
	SumRules      []SumRule
}

type ColumnSpec struct {
	Name        string
	SDType      SemanticType
	StorageType string
	Description string
	Constraints Constraints
}

// Constraints holds the per-column generation constraints. Which fields
// apply depends on the column's semantic type; unused fields stay zero.
type Constraints struct {
	Min                    *float64
	Max                    *float64
	Discrete               bool
	PositiveOnly           bool
	Distribution           string
	DistributionParameters map[string]float64
	Categories             []string
}

// TemporalRule constrains a column to be non-decreasing (or strictly
// increasing when Strict) across the ordered row sequence.
type TemporalRule struct {
	Column string
	Strict bool
}

// SumRule constrains a group of columns: members sum to a non-negative
// value, individually non-negative when PositiveOnly, and, when TotalColumn
// is set, the parts must add up to that column's reported total.
type SumRule struct {
	Name         string
	Columns      []string
	TotalColumn  string
	PositiveOnly bool
}

// Column looks a column up by name.
func (s *Schema) Column(name string) (ColumnSpec, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// ColumnNames returns the declared column order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}
