package schema

import (
	"errors"
	"fmt"
)

// ErrInvalidSchema marks a malformed or self-contradictory schema. It is
// fatal: generation must not start against a schema that fails Validate.
var ErrInvalidSchema = errors.New("invalid schema")

var knownDistributions = map[string]bool{
	"uniform":        true,
	"gamma":          true,
	"discrete_range": true,
}

var knownStorageTypes = map[string]bool{
	StorageInt32:   true,
	StorageInt64:   true,
	StorageFloat64: true,
	StorageString:  true,
}

// Validate checks the schema for structural problems: duplicate or empty
// column names, an sdtypes mirror that disagrees with the columns,
// inverted ranges, unknown distributions, missing distribution parameters
// and business rules referencing columns that do not exist.
func (s *Schema) Validate() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("%w: schema has no columns", ErrInvalidSchema)
	}

	seen := make(map[string]bool, len(s.Columns))
	for _, col := range s.Columns {
		if col.Name == "" {
			return fmt.Errorf("%w: column with empty name", ErrInvalidSchema)
		}
		if seen[col.Name] {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidSchema, col.Name)
		}
		seen[col.Name] = true

		if err := validateColumn(col); err != nil {
			return err
		}

		if sd, ok := s.SDTypes[col.Name]; ok && sd != col.SDType {
			return fmt.Errorf("%w: column %q: sdtypes entry %q disagrees with column sdtype %q",
				ErrInvalidSchema, col.Name, sd, col.SDType)
		}
	}

	for name := range s.SDTypes {
		if !seen[name] {
			return fmt.Errorf("%w: sdtypes entry %q has no matching column", ErrInvalidSchema, name)
		}
	}

	for _, rule := range s.TemporalRules {
		col, ok := s.Column(rule.Column)
		if !ok {
			return fmt.Errorf("%w: temporal_consistency references unknown column %q", ErrInvalidSchema, rule.Column)
		}
		if col.SDType == Categorical {
			return fmt.Errorf("%w: temporal_consistency on categorical column %q", ErrInvalidSchema, rule.Column)
		}
	}

	for _, rule := range s.SumRules {
		if rule.Name == "" {
			return fmt.Errorf("%w: value_relationships rule with empty name", ErrInvalidSchema)
		}
		if len(rule.Columns) < 2 {
			return fmt.Errorf("%w: value_relationships rule %q needs at least two columns", ErrInvalidSchema, rule.Name)
		}
		for _, name := range rule.Columns {
			col, ok := s.Column(name)
			if !ok {
				return fmt.Errorf("%w: value_relationships rule %q references unknown column %q",
					ErrInvalidSchema, rule.Name, name)
			}
			if col.SDType == Categorical {
				return fmt.Errorf("%w: value_relationships rule %q includes categorical column %q",
					ErrInvalidSchema, rule.Name, name)
			}
		}
		if rule.TotalColumn != "" {
			if _, ok := s.Column(rule.TotalColumn); !ok {
				return fmt.Errorf("%w: value_relationships rule %q references unknown total column %q",
					ErrInvalidSchema, rule.Name, rule.TotalColumn)
			}
		}
	}

	return nil
}

func validateColumn(col ColumnSpec) error {
	switch col.SDType {
	case Numerical, Categorical, Datetime:
	default:
		return fmt.Errorf("%w: column %q: unknown sdtype %q", ErrInvalidSchema, col.Name, col.SDType)
	}

	if col.StorageType != "" && !knownStorageTypes[col.StorageType] {
		return fmt.Errorf("%w: column %q: unknown storage_type %q", ErrInvalidSchema, col.Name, col.StorageType)
	}

	c := col.Constraints
	if col.SDType == Categorical {
		if len(c.Categories) == 0 {
			return fmt.Errorf("%w: categorical column %q has no categories", ErrInvalidSchema, col.Name)
		}
		return nil
	}

	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		return fmt.Errorf("%w: column %q: min %v greater than max %v", ErrInvalidSchema, col.Name, *c.Min, *c.Max)
	}

	switch c.Distribution {
	case "":
		// Defaults to uniform; uniform needs both bounds.
		fallthrough
	case "uniform", "discrete_range":
		if c.Min == nil || c.Max == nil {
			return fmt.Errorf("%w: column %q: distribution %q requires min and max",
				ErrInvalidSchema, col.Name, defaultDistribution(c.Distribution))
		}
	case "gamma":
		shape, hasShape := c.DistributionParameters["shape"]
		scale, hasScale := c.DistributionParameters["scale"]
		if !hasShape || !hasScale {
			return fmt.Errorf("%w: column %q: gamma requires shape and scale parameters", ErrInvalidSchema, col.Name)
		}
		if shape <= 0 || scale <= 0 {
			return fmt.Errorf("%w: column %q: gamma shape and scale must be positive", ErrInvalidSchema, col.Name)
		}
	default:
		if !knownDistributions[c.Distribution] {
			return fmt.Errorf("%w: column %q: unknown distribution %q", ErrInvalidSchema, col.Name, c.Distribution)
		}
	}

	return nil
}

func defaultDistribution(name string) string {
	if name == "" {
		return "uniform"
	}
	return name
}
