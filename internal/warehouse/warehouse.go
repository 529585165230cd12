// Package warehouse defines the session capabilities the pipeline consumes
// from a data warehouse: table lookup, sampling, full reads and
// overwrite-copies. The Snowflake implementation lives in internal/snowflake.
package warehouse

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"featuredrop/internal/frame"
	"featuredrop/pkg/errors"
)

// Table is a handle on a named warehouse table or view
type Table interface {
	// Name returns the normalized, fully qualified name the handle was resolved from
	Name() string
	// Show writes up to n sample rows to w
	Show(ctx context.Context, w io.Writer, n int) error
	// ToFrame reads the whole table into memory
	ToFrame(ctx context.Context) (*frame.Frame, error)
	// Count returns the number of rows
	Count(ctx context.Context) (int64, error)
	// Columns returns the column names in table order
	Columns(ctx context.Context) ([]string, error)
}

// Session is an established warehouse connection. Opening and closing it is
// the caller's concern.
type Session interface {
	// Table resolves name, failing with errors.ErrCodeTableNotFound if absent
	Table(ctx context.Context, name string) (Table, error)
	// SaveAsTable replaces dest with the full content of src
	SaveAsTable(ctx context.Context, src Table, dest string) error
	// CreateDataFrame builds a local result table from scalar rows
	CreateDataFrame(columns []string, rows ...[]interface{}) (*frame.Frame, error)
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// Name is a parsed TABLE, SCHEMA.TABLE or DATABASE.SCHEMA.TABLE reference
type Name struct {
	Database string
	Schema   string
	Table    string
}

// ParseName splits and normalizes a table reference. Only unquoted
// identifiers are accepted; they are upper-cased the way Snowflake resolves
// them.
func ParseName(name string) (Name, error) {
	parts := strings.Split(strings.TrimSpace(name), ".")
	if len(parts) == 0 || len(parts) > 3 {
		return Name{}, invalidName(name)
	}
	for i, p := range parts {
		if !identifierPattern.MatchString(p) {
			return Name{}, invalidName(name)
		}
		parts[i] = strings.ToUpper(p)
	}

	switch len(parts) {
	case 1:
		return Name{Table: parts[0]}, nil
	case 2:
		return Name{Schema: parts[0], Table: parts[1]}, nil
	default:
		return Name{Database: parts[0], Schema: parts[1], Table: parts[2]}, nil
	}
}

func invalidName(name string) error {
	return errors.New(errors.ErrCodeInvalidName, fmt.Sprintf("Invalid table name %q", name)).
		WithContext("table", name).
		WithSuggestions("Use TABLE, SCHEMA.TABLE or DATABASE.SCHEMA.TABLE with unquoted identifiers")
}

// String returns the dotted form
func (n Name) String() string {
	parts := make([]string, 0, 3)
	if n.Database != "" {
		parts = append(parts, n.Database)
	}
	if n.Schema != "" {
		parts = append(parts, n.Schema)
	}
	return strings.Join(append(parts, n.Table), ".")
}
