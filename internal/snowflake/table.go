package snowflake

import (
	"context"
	"fmt"
	"io"

	"featuredrop/internal/frame"
	"featuredrop/internal/warehouse"
	"featuredrop/pkg/errors"
)

// Table is a resolved Snowflake table. Reads are issued lazily.
type Table struct {
	svc  *Service
	name warehouse.Name
}

// Name returns the normalized table name
func (t *Table) Name() string {
	return t.name.String()
}

// Show prints the first n rows
func (t *Table) Show(ctx context.Context, w io.Writer, n int) error {
	f, err := t.svc.query(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", t.name, n))
	if err != nil {
		return err
	}
	f.Render(w, n)
	return nil
}

// ToFrame pulls the entire table into memory
func (t *Table) ToFrame(ctx context.Context) (*frame.Frame, error) {
	return t.svc.query(ctx, fmt.Sprintf("SELECT * FROM %s", t.name))
}

// Count returns the number of rows
func (t *Table) Count(ctx context.Context) (int64, error) {
	f, err := t.svc.query(ctx, fmt.Sprintf("SELECT COUNT(*) AS ROW_COUNT FROM %s", t.name))
	if err != nil {
		return 0, err
	}
	if f.Len() != 1 {
		return 0, errors.New(errors.ErrCodeResultParsing, fmt.Sprintf("COUNT(*) on %s returned %d rows", t.name, f.Len()))
	}
	v, err := frame.ToFloat64(f.Rows[0][0])
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeResultParsing, "Failed to parse row count")
	}
	return int64(v), nil
}

// Columns returns column names without fetching rows
func (t *Table) Columns(ctx context.Context) ([]string, error) {
	f, err := t.svc.query(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", t.name))
	if err != nil {
		return nil, err
	}
	return f.Columns, nil
}
