package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"featuredrop/internal/frame"
	"featuredrop/internal/warehouse"
	"featuredrop/pkg/errors"
)

var _ warehouse.Session = (*MockWarehouse)(nil)

// MockWarehouse is an in-memory warehouse session. Tables are frames keyed
// by normalized name; reads copy the stored rows so handles behave like
// live references to the named table.
type MockWarehouse struct {
	mu sync.Mutex

	tables map[string]*frame.Frame

	// Execution tracking
	Operations []Operation

	// Failure injection
	SaveError  error
	ReadErrors map[string]error
}

// Operation records one call made against the mock
type Operation struct {
	Kind      string // lookup, show, read, count, columns, save
	Table     string
	Target    string
	Timestamp time.Time
}

// NewMockWarehouse creates an empty mock warehouse
func NewMockWarehouse() *MockWarehouse {
	return &MockWarehouse{
		tables:     make(map[string]*frame.Frame),
		ReadErrors: make(map[string]error),
	}
}

// AddTable stores a table under name, replacing any previous content
func (m *MockWarehouse) AddTable(name string, columns []string, rows [][]interface{}) error {
	n, err := warehouse.ParseName(name)
	if err != nil {
		return err
	}
	f, err := frame.New(columns, rows)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[n.String()] = copyFrame(f)
	return nil
}

// Snapshot returns a copy of a stored table, or nil
func (m *MockWarehouse) Snapshot(name string) *frame.Frame {
	n, err := warehouse.ParseName(name)
	if err != nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.tables[n.String()]
	if !ok {
		return nil
	}
	return copyFrame(f)
}

// Count returns how many operations of kind were recorded
func (m *MockWarehouse) Count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, op := range m.Operations {
		if op.Kind == kind {
			count++
		}
	}
	return count
}

// Table implements warehouse.Session
func (m *MockWarehouse) Table(ctx context.Context, name string) (warehouse.Table, error) {
	n, err := warehouse.ParseName(name)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("lookup", n.String(), "")
	if _, ok := m.tables[n.String()]; !ok {
		return nil, errors.TableNotFound(n.String())
	}
	return &mockTable{wh: m, name: n.String()}, nil
}

// SaveAsTable implements warehouse.Session with overwrite semantics
func (m *MockWarehouse) SaveAsTable(ctx context.Context, src warehouse.Table, dest string) error {
	n, err := warehouse.ParseName(dest)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("save", src.Name(), n.String())
	if m.SaveError != nil {
		return m.SaveError
	}

	f, ok := m.tables[src.Name()]
	if !ok {
		return errors.TableNotFound(src.Name())
	}
	m.tables[n.String()] = copyFrame(f)
	return nil
}

// CreateDataFrame implements warehouse.Session
func (m *MockWarehouse) CreateDataFrame(columns []string, rows ...[]interface{}) (*frame.Frame, error) {
	return frame.New(columns, rows)
}

func (m *MockWarehouse) record(kind, table, target string) {
	m.Operations = append(m.Operations, Operation{
		Kind:      kind,
		Table:     table,
		Target:    target,
		Timestamp: time.Now(),
	})
}

func (m *MockWarehouse) read(kind, name string) (*frame.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(kind, name, "")
	if err := m.ReadErrors[name]; err != nil {
		return nil, err
	}
	f, ok := m.tables[name]
	if !ok {
		return nil, errors.TableNotFound(name)
	}
	return copyFrame(f), nil
}

type mockTable struct {
	wh   *MockWarehouse
	name string
}

func (t *mockTable) Name() string {
	return t.name
}

func (t *mockTable) Show(ctx context.Context, w io.Writer, n int) error {
	f, err := t.wh.read("show", t.name)
	if err != nil {
		return err
	}
	f.Render(w, n)
	return nil
}

func (t *mockTable) ToFrame(ctx context.Context) (*frame.Frame, error) {
	return t.wh.read("read", t.name)
}

func (t *mockTable) Count(ctx context.Context) (int64, error) {
	f, err := t.wh.read("count", t.name)
	if err != nil {
		return 0, err
	}
	return int64(f.Len()), nil
}

func (t *mockTable) Columns(ctx context.Context) ([]string, error) {
	f, err := t.wh.read("columns", t.name)
	if err != nil {
		return nil, err
	}
	return f.Columns, nil
}

func copyFrame(f *frame.Frame) *frame.Frame {
	cols := append([]string(nil), f.Columns...)
	rows := make([][]interface{}, len(f.Rows))
	for i, row := range f.Rows {
		rows[i] = append([]interface{}(nil), row...)
	}
	return &frame.Frame{Columns: cols, Rows: rows}
}

// LinearFeatureRows builds (TOTAL_PURCHASES, TOTAL_SPENT) rows on the line
// spent = slope*purchases + intercept for purchases 1..n
func LinearFeatureRows(n int, slope, intercept float64) [][]interface{} {
	rows := make([][]interface{}, n)
	for i := 0; i < n; i++ {
		x := float64(i + 1)
		rows[i] = []interface{}{fmt.Sprintf("user-%03d", i+1), x, slope*x + intercept}
	}
	return rows
}
