package sink

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/synthfin/synthfin/dataset"
	"github.com/synthfin/synthfin/schema"
)

// WriteJSONL serializes a dataset as one JSON object per line, mirroring
// the CSV surface: schema columns plus the fraud audit fields.
func WriteJSONL(w io.Writer, ds *dataset.Dataset, sch *schema.Schema) error {
	enc := json.NewEncoder(w)
	for _, rec := range ds.Records {
		obj := make(map[string]any, len(sch.Columns)+2)
		for _, col := range sch.Columns {
			v, ok := rec.Row[col.Name]
			if !ok {
				return fmt.Errorf("row %d: missing column %q", rec.Index, col.Name)
			}
			obj[col.Name] = jsonValue(v, col)
		}
		obj[dataset.ColumnIsFraudulent] = rec.Label.Applied
		obj[dataset.ColumnFraudType] = rec.Label.Type()
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("encoding row %d: %w", rec.Index, err)
		}
	}
	return nil
}

func jsonValue(v any, col schema.ColumnSpec) any {
	f, ok := v.(float64)
	if !ok {
		return v
	}
	switch col.StorageType {
	case schema.StorageInt32, schema.StorageInt64:
		return int64(f)
	default:
		return f
	}
}
