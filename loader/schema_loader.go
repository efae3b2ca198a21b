package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/synthfin/synthfin/schema"
)

// Wire shape of the schema document. The key names are a compatibility
// surface shared with the schema authoring tools and must not change:
// sdtypes mirrors columns[*].sdtype for quick lookup, and
// constraints.distribution_parameters keys are distribution-specific
// (shape/scale for gamma).
type schemaFile struct {
	SDTypes       map[string]string `json:"sdtypes"`
	Columns       []schemaColumn    `json:"columns"`
	BusinessRules businessRules     `json:"business_rules"`
}

type schemaColumn struct {
	Name        string            `json:"name"`
	SDType      string            `json:"sdtype"`
	StorageType string            `json:"storage_type"`
	Description string            `json:"description,omitempty"`
	Constraints columnConstraints `json:"constraints"`
}

type columnConstraints struct {
	Min                    *float64           `json:"min,omitempty"`
	Max                    *float64           `json:"max,omitempty"`
	Discrete               bool               `json:"discrete,omitempty"`
	PositiveOnly           bool               `json:"positive_only,omitempty"`
	Distribution           string             `json:"distribution,omitempty"`
	DistributionParameters map[string]float64 `json:"distribution_parameters,omitempty"`
	Categories             []string           `json:"categories,omitempty"`
}

type businessRules struct {
	TemporalConsistency []temporalRule      `json:"temporal_consistency,omitempty"`
	ValueRelationships  []valueRelationship `json:"value_relationships,omitempty"`
}

type temporalRule struct {
	Column string `json:"column"`
	Strict bool   `json:"strict,omitempty"`
}

type valueRelationship struct {
	Name         string   `json:"name"`
	Columns      []string `json:"columns"`
	TotalColumn  string   `json:"total_column,omitempty"`
	PositiveOnly bool     `json:"positive_only,omitempty"`
}

// LoadSchemaFromJSON reads and resolves a schema document, validating it
// before returning: a malformed or self-contradictory schema aborts the
// run before any row is generated.
func LoadSchemaFromJSON(filename string) (*schema.Schema, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	return ParseSchema(data)
}

// ParseSchema resolves a raw schema document into the validated model.
func ParseSchema(data []byte) (*schema.Schema, error) {
	var sf schemaFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("unmarshalling schema JSON: %w", err)
	}

	sch := &schema.Schema{
		SDTypes: make(map[string]schema.SemanticType, len(sf.SDTypes)),
	}
	for name, sd := range sf.SDTypes {
		sch.SDTypes[name] = schema.SemanticType(sd)
	}
	for _, c := range sf.Columns {
		sch.Columns = append(sch.Columns, schema.ColumnSpec{
			Name:        c.Name,
			SDType:      schema.SemanticType(c.SDType),
			StorageType: c.StorageType,
			Description: c.Description,
			Constraints: schema.Constraints{
				Min:                    c.Constraints.Min,
				Max:                    c.Constraints.Max,
				Discrete:               c.Constraints.Discrete,
				PositiveOnly:           c.Constraints.PositiveOnly,
				Distribution:           c.Constraints.Distribution,
				DistributionParameters: c.Constraints.DistributionParameters,
				Categories:             c.Constraints.Categories,
			},
		})
	}
	for _, r := range sf.BusinessRules.TemporalConsistency {
		sch.TemporalRules = append(sch.TemporalRules, schema.TemporalRule{
			Column: r.Column,
			Strict: r.Strict,
		})
	}
	for _, r := range sf.BusinessRules.ValueRelationships {
		sch.SumRules = append(sch.SumRules, schema.SumRule{
			Name:         r.Name,
			Columns:      r.Columns,
			TotalColumn:  r.TotalColumn,
			PositiveOnly: r.PositiveOnly,
		})
	}

	if err := sch.Validate(); err != nil {
		return nil, err
	}
	return sch, nil
}
