// Package frame holds small, fully materialized result sets pulled out of the
// warehouse. It is not a streaming structure: everything lives in memory.
package frame

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Frame is a column-named set of rows. Row values are whatever the SQL
// driver produced; nil represents SQL NULL.
type Frame struct {
	Columns []string
	Rows    [][]interface{}
}

// New creates a frame, checking that every row matches the column count
func New(columns []string, rows [][]interface{}) (*Frame, error) {
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(columns))
		}
	}
	return &Frame{Columns: columns, Rows: rows}, nil
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Index returns the position of a column, or -1. Matching is case-insensitive
// because unquoted Snowflake identifiers come back upper case.
func (f *Frame) Index(column string) int {
	for i, c := range f.Columns {
		if strings.EqualFold(c, column) {
			return i
		}
	}
	return -1
}

// HasColumns reports the first of columns that is absent, if any
func (f *Frame) HasColumns(columns ...string) (missing string, ok bool) {
	for _, c := range columns {
		if f.Index(c) < 0 {
			return c, false
		}
	}
	return "", true
}

// Float64s returns a column as float64 values, NaN where the value is NULL
func (f *Frame) Float64s(column string) ([]float64, error) {
	idx := f.Index(column)
	if idx < 0 {
		return nil, fmt.Errorf("column %s not found", column)
	}

	out := make([]float64, len(f.Rows))
	for i, row := range f.Rows {
		v, err := ToFloat64(row[idx])
		if err != nil {
			return nil, fmt.Errorf("column %s row %d: %w", column, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// DropNA returns a new frame without the rows where any of columns is NULL
// or NaN, along with the number of rows removed. No values are imputed.
func (f *Frame) DropNA(columns ...string) (*Frame, int, error) {
	idxs := make([]int, len(columns))
	for i, c := range columns {
		idxs[i] = f.Index(c)
		if idxs[i] < 0 {
			return nil, 0, fmt.Errorf("column %s not found", c)
		}
	}

	kept := make([][]interface{}, 0, len(f.Rows))
	for _, row := range f.Rows {
		if !hasMissing(row, idxs) {
			kept = append(kept, row)
		}
	}

	return &Frame{Columns: f.Columns, Rows: kept}, len(f.Rows) - len(kept), nil
}

func hasMissing(row []interface{}, idxs []int) bool {
	for _, idx := range idxs {
		if IsMissing(row[idx]) {
			return true
		}
	}
	return false
}

// Render writes up to limit rows as a table. limit <= 0 renders every row.
func (f *Frame) Render(w io.Writer, limit int) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(f.Columns)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	rows := f.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = FormatValue(v)
		}
		table.Append(cells)
	}
	table.Render()
}

// IsMissing reports whether v is SQL NULL or NaN. Snowflake returns FLOAT
// columns as text, so "NaN" strings count as missing too.
func IsMissing(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	case string:
		return isNaNText(x)
	case []byte:
		return isNaNText(string(x))
	default:
		return false
	}
}

func isNaNText(s string) bool {
	f, err := parseNumber(s)
	return err == nil && math.IsNaN(f)
}

// ToFloat64 coerces a driver value to float64. NULL becomes NaN; values that
// are not numeric produce an error.
func ToFloat64(v interface{}) (float64, error) {
	switch x := v.(type) {
	case nil:
		return math.NaN(), nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case []byte:
		return parseNumber(string(x))
	case string:
		return parseNumber(x)
	case fmt.Stringer:
		return parseNumber(x.String())
	default:
		return 0, fmt.Errorf("value %v of type %T is not numeric", v, v)
	}
}

func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("value %q is not numeric", s)
	}
	return f, nil
}

// FormatValue renders a driver value for display
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", x)
	}
}
