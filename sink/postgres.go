package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/synthfin/synthfin/dataset"
	"github.com/synthfin/synthfin/schema"
)

// LoadPostgres bulk-loads a dataset into the given table, creating it from
// the schema's storage types when it does not exist. Returns the number of
// rows copied.
func LoadPostgres(ctx context.Context, pool *pgxpool.Pool, table string, ds *dataset.Dataset, sch *schema.Schema) (int64, error) {
	if err := ensureTable(ctx, pool, table, sch); err != nil {
		return 0, err
	}

	columns := append(sch.ColumnNames(), dataset.ColumnIsFraudulent, dataset.ColumnFraudType)
	rows := make([][]any, 0, ds.Len())
	for _, rec := range ds.Records {
		vals := make([]any, 0, len(columns))
		for _, col := range sch.Columns {
			v, err := pgValue(rec.Row, col)
			if err != nil {
				return 0, fmt.Errorf("row %d: %w", rec.Index, err)
			}
			vals = append(vals, v)
		}
		vals = append(vals, rec.Label.Applied, rec.Label.Type())
		rows = append(rows, vals)
	}

	copied, err := pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copying into %s: %w", table, err)
	}
	return copied, nil
}

func ensureTable(ctx context.Context, pool *pgxpool.Pool, table string, sch *schema.Schema) error {
	cols := make([]string, 0, len(sch.Columns)+2)
	for _, col := range sch.Columns {
		cols = append(cols, fmt.Sprintf("%s %s", pgx.Identifier{col.Name}.Sanitize(), pgType(col)))
	}
	cols = append(cols,
		fmt.Sprintf("%s boolean NOT NULL DEFAULT false", dataset.ColumnIsFraudulent),
		fmt.Sprintf("%s text NOT NULL DEFAULT 'none'", dataset.ColumnFraudType),
	)

	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pgx.Identifier{table}.Sanitize(), strings.Join(cols, ", "))
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}
	return nil
}

func pgType(col schema.ColumnSpec) string {
	if col.SDType == schema.Categorical {
		return "text"
	}
	switch col.StorageType {
	case schema.StorageInt32:
		return "integer"
	case schema.StorageInt64:
		return "bigint"
	case schema.StorageString:
		return "text"
	default:
		return "double precision"
	}
}

func pgValue(row dataset.Row, col schema.ColumnSpec) (any, error) {
	if col.SDType == schema.Categorical {
		v, ok := row.Text(col.Name)
		if !ok {
			return nil, fmt.Errorf("column %q: missing categorical value", col.Name)
		}
		return v, nil
	}
	v, ok := row.Float(col.Name)
	if !ok {
		return nil, fmt.Errorf("column %q: missing numeric value", col.Name)
	}
	switch col.StorageType {
	case schema.StorageInt32:
		return int32(v), nil
	case schema.StorageInt64:
		return int64(v), nil
	default:
		return v, nil
	}
}
