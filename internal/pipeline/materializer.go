// Package pipeline implements the two batch steps: copying the feature table
// into its materialized form, and training/evaluating the regression model
// on that copy. Both take an already established warehouse session.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"featuredrop/internal/observability"
	"featuredrop/internal/ui"
	"featuredrop/internal/warehouse"
	"featuredrop/pkg/errors"
	"featuredrop/pkg/models"
)

// Materializer copies the source feature table over the destination table
type Materializer struct {
	cfg     models.Pipeline
	console *ui.Console
	logger  *observability.Logger
}

// NewMaterializer creates a materializer writing progress to out
func NewMaterializer(cfg models.Pipeline, out io.Writer, logger *observability.Logger) *Materializer {
	if logger == nil {
		logger = observability.GetDefaultLogger()
	}
	return &Materializer{cfg: cfg, console: ui.NewConsole(out), logger: logger}
}

// Run reads the source table, overwrites the destination with it and returns
// a fresh handle on the destination. A sample of each is printed. Errors are
// returned unchanged; nothing is retried.
func (m *Materializer) Run(ctx context.Context, sess warehouse.Session) (warehouse.Table, error) {
	logger, _ := m.logger.WithRunID()

	src, err := sess.Table(ctx, m.cfg.SourceTable)
	if err != nil {
		return nil, err
	}

	m.console.Header("User Features Sample")
	if err := src.Show(ctx, m.console.Writer(), m.cfg.SampleRows); err != nil {
		return nil, err
	}

	if err := sess.SaveAsTable(ctx, src, m.cfg.DestinationTable); err != nil {
		return nil, err
	}
	m.console.Success(fmt.Sprintf("Feature table '%s' created successfully!", m.cfg.DestinationTable))
	logger.InfoWithFields("feature table materialized", map[string]interface{}{
		"source":      src.Name(),
		"destination": m.cfg.DestinationTable,
	})

	dst, err := sess.Table(ctx, m.cfg.DestinationTable)
	if err != nil {
		return nil, err
	}
	if err := dst.Show(ctx, m.console.Writer(), m.cfg.SampleRows); err != nil {
		return nil, err
	}

	return dst, nil
}

// Materialize runs a Materializer with console output on out
func Materialize(ctx context.Context, sess warehouse.Session, cfg models.Pipeline, out io.Writer) (warehouse.Table, error) {
	return NewMaterializer(cfg, out, nil).Run(ctx, sess)
}

// Verification compares a materialized table with its source
type Verification struct {
	SourceRows      int64
	DestinationRows int64
	MissingColumns  []string // in source, absent from destination
	ExtraColumns    []string // in destination, absent from source
}

// OK reports whether row counts and column sets match
func (v *Verification) OK() bool {
	return v.SourceRows == v.DestinationRows && len(v.MissingColumns) == 0 && len(v.ExtraColumns) == 0
}

// VerifyMaterialization checks the structural round trip of a copy: same row
// count and same column set. It returns an ErrCodeVerification error when
// they differ.
func VerifyMaterialization(ctx context.Context, src, dst warehouse.Table) (*Verification, error) {
	v := &Verification{}

	var err error
	if v.SourceRows, err = src.Count(ctx); err != nil {
		return nil, err
	}
	if v.DestinationRows, err = dst.Count(ctx); err != nil {
		return nil, err
	}

	srcCols, err := src.Columns(ctx)
	if err != nil {
		return nil, err
	}
	dstCols, err := dst.Columns(ctx)
	if err != nil {
		return nil, err
	}
	v.MissingColumns = difference(srcCols, dstCols)
	v.ExtraColumns = difference(dstCols, srcCols)

	if !v.OK() {
		return v, errors.New(errors.ErrCodeVerification,
			fmt.Sprintf("Materialized table %s does not match %s", dst.Name(), src.Name())).
			WithContext("source_rows", v.SourceRows).
			WithContext("destination_rows", v.DestinationRows).
			WithContext("missing_columns", v.MissingColumns).
			WithContext("extra_columns", v.ExtraColumns)
	}
	return v, nil
}

// difference returns the names in a that are not in b, case-insensitively
func difference(a, b []string) []string {
	seen := make(map[string]bool, len(b))
	for _, c := range b {
		seen[strings.ToUpper(c)] = true
	}

	var out []string
	for _, c := range a {
		if !seen[strings.ToUpper(c)] {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
