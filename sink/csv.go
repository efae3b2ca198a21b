package sink

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/synthfin/synthfin/dataset"
	"github.com/synthfin/synthfin/schema"
)

// WriteCSV serializes a dataset in schema column order, with the
// is_fraudulent and fraud_type audit columns appended.
func WriteCSV(w io.Writer, ds *dataset.Dataset, sch *schema.Schema) error {
	cw := csv.NewWriter(w)

	header := append(sch.ColumnNames(), dataset.ColumnIsFraudulent, dataset.ColumnFraudType)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	record := make([]string, len(header))
	for _, rec := range ds.Records {
		for i, col := range sch.Columns {
			field, err := formatValue(rec.Row, col)
			if err != nil {
				return fmt.Errorf("row %d: %w", rec.Index, err)
			}
			record[i] = field
		}
		record[len(record)-2] = strconv.FormatBool(rec.Label.Applied)
		record[len(record)-1] = rec.Label.Type()
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", rec.Index, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatValue(row dataset.Row, col schema.ColumnSpec) (string, error) {
	if col.SDType == schema.Categorical {
		v, ok := row.Text(col.Name)
		if !ok {
			return "", fmt.Errorf("column %q: missing categorical value", col.Name)
		}
		return v, nil
	}
	v, ok := row.Float(col.Name)
	if !ok {
		return "", fmt.Errorf("column %q: missing numeric value", col.Name)
	}
	switch col.StorageType {
	case schema.StorageInt32, schema.StorageInt64:
		return strconv.FormatInt(int64(v), 10), nil
	default:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
}

// ReadCSV parses externally supplied tabular data back through the schema,
// reconstructing fraud labels from the audit columns when present. The
// returned dataset is suitable for standalone validation.
func ReadCSV(r io.Reader, sch *schema.Schema) (*dataset.Dataset, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, name := range sch.ColumnNames() {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("CSV is missing schema column %q", name)
		}
	}
	fraudIdx, hasFraud := index[dataset.ColumnIsFraudulent]
	typeIdx, hasType := index[dataset.ColumnFraudType]

	ds := dataset.New(0, 0)
	for rowIdx := 0; ; rowIdx++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w", rowIdx, err)
		}

		row := make(dataset.Row, len(sch.Columns))
		for _, col := range sch.Columns {
			raw := fields[index[col.Name]]
			if col.SDType == schema.Categorical {
				row[col.Name] = raw
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", rowIdx, col.Name, err)
			}
			row[col.Name] = v
		}

		rec := &dataset.Record{Index: rowIdx, Row: row}
		if hasFraud {
			applied, err := strconv.ParseBool(fields[fraudIdx])
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", rowIdx, dataset.ColumnIsFraudulent, err)
			}
			rec.Label.Applied = applied
			if applied && hasType {
				rec.Label.Pattern = fields[typeIdx]
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}
