package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"featuredrop/internal/frame"
	"featuredrop/internal/observability"
	"featuredrop/internal/warehouse"
	"featuredrop/pkg/errors"
	"featuredrop/pkg/models"

	"github.com/snowflakedb/gosnowflake"
)

var _ warehouse.Session = (*Service)(nil)

// Service provides Snowflake session operations for the pipeline
type Service struct {
	db        *sql.DB
	config    Config
	connected bool
	logger    *observability.Logger
}

// Config holds Snowflake connection configuration
type Config struct {
	Account   string
	Username  string
	Password  string
	Database  string
	Schema    string
	Warehouse string
	Role      string
	Timeout   time.Duration // per-query limit, 0 disables it
}

// ConfigFromModel converts the persisted settings into a connection config
func ConfigFromModel(sf models.Snowflake) Config {
	return Config{
		Account:   sf.Account,
		Username:  sf.Username,
		Password:  sf.Password,
		Database:  sf.Database,
		Schema:    sf.Schema,
		Warehouse: sf.Warehouse,
		Role:      sf.Role,
		Timeout:   sf.QueryTimeout,
	}
}

// NewService creates a new Snowflake service
func NewService(config Config) *Service {
	return &Service{
		config: config,
		logger: observability.GetDefaultLogger(),
	}
}

// NewServiceWithDB wraps an already opened database handle
func NewServiceWithDB(db *sql.DB, config Config) *Service {
	s := NewService(config)
	s.db = db
	s.connected = true
	return s
}

// DSN builds the gosnowflake data source name for the config
func (c Config) DSN() (string, error) {
	return gosnowflake.DSN(&gosnowflake.Config{
		Account:   c.Account,
		User:      c.Username,
		Password:  c.Password,
		Database:  c.Database,
		Schema:    c.Schema,
		Warehouse: c.Warehouse,
		Role:      c.Role,
	})
}

// Connect establishes a connection to Snowflake
func (s *Service) Connect(ctx context.Context) error {
	if s.connected {
		return nil
	}

	dsn, err := s.config.DSN()
	if err != nil {
		return errors.ConnectionError("Invalid Snowflake connection settings", err).
			WithContext("account", s.config.Account)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return errors.ConnectionError("Failed to open Snowflake connection", err).
			WithContext("account", s.config.Account).
			WithContext("warehouse", s.config.Warehouse)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)

	pingCtx, cancel := s.queryContext(ctx)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()

		if strings.Contains(strings.ToLower(err.Error()), "authentication") ||
			strings.Contains(strings.ToLower(err.Error()), "incorrect username or password") {
			return errors.Wrap(err, errors.ErrCodeAuthenticationFailed, "Authentication failed").
				WithContext("user", s.config.Username).
				WithSuggestions(
					"Verify your username and password",
					"Check if your account is locked",
				)
		}

		return errors.ConnectionError("Failed to connect to Snowflake", err).
			WithContext("account", s.config.Account)
	}

	s.db = db
	s.connected = true
	s.logger.InfoWithFields("Connected to Snowflake", map[string]interface{}{
		"account":   s.config.Account,
		"warehouse": s.config.Warehouse,
		"database":  s.config.Database,
	})
	return nil
}

// Close closes the database connection
func (s *Service) Close() error {
	if !s.connected {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	s.connected = false
	return nil
}

// TestConnection tests the database connection
func (s *Service) TestConnection(ctx context.Context) error {
	if !s.connected {
		return s.Connect(ctx)
	}

	pingCtx, cancel := s.queryContext(ctx)
	defer cancel()

	return s.db.PingContext(pingCtx)
}

// Table resolves name through INFORMATION_SCHEMA so that a missing table
// fails here rather than on first read.
func (s *Service) Table(ctx context.Context, name string) (warehouse.Table, error) {
	if err := s.requireConnection(); err != nil {
		return nil, err
	}

	parsed, err := warehouse.ParseName(name)
	if err != nil {
		return nil, err
	}

	query, args := tableLookupQuery(parsed)
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return nil, errors.SQLError(fmt.Sprintf("Failed to look up table %s", parsed), query, err)
	}
	if count == 0 {
		return nil, errors.TableNotFound(parsed.String())
	}

	s.logger.Debugf("resolved table %s", parsed)
	return &Table{svc: s, name: parsed}, nil
}

func tableLookupQuery(n warehouse.Name) (string, []interface{}) {
	source := "INFORMATION_SCHEMA.TABLES"
	if n.Database != "" {
		source = n.Database + "." + source
	}

	if n.Schema == "" {
		return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE TABLE_SCHEMA = CURRENT_SCHEMA() AND TABLE_NAME = ?", source),
			[]interface{}{n.Table}
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?", source),
		[]interface{}{n.Schema, n.Table}
}

// SaveAsTable replaces dest with a full copy of src. CREATE OR REPLACE swaps
// the table atomically; there is no append or merge path.
func (s *Service) SaveAsTable(ctx context.Context, src warehouse.Table, dest string) error {
	if err := s.requireConnection(); err != nil {
		return err
	}

	parsed, err := warehouse.ParseName(dest)
	if err != nil {
		return err
	}
	source, err := warehouse.ParseName(src.Name())
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM %s", parsed, source)
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return s.statementError(ctx, fmt.Sprintf("Failed to write table %s", parsed), stmt, err).
			WithContext("source", source.String()).
			WithContext("destination", parsed.String())
	}

	s.logger.DebugWithFields("table overwritten", map[string]interface{}{
		"source":      source.String(),
		"destination": parsed.String(),
	})
	return nil
}

// CreateDataFrame builds a local result table from scalar values
func (s *Service) CreateDataFrame(columns []string, rows ...[]interface{}) (*frame.Frame, error) {
	return frame.New(columns, rows)
}

// query runs a SELECT and reads the complete result into a frame
func (s *Service) query(ctx context.Context, query string, args ...interface{}) (*frame.Frame, error) {
	if err := s.requireConnection(); err != nil {
		return nil, err
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.statementError(ctx, "Query failed", query, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeResultParsing, "Failed to read result columns")
	}

	var data [][]interface{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		valuePtrs := make([]interface{}, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeResultParsing, "Failed to scan result row")
		}

		// Drivers may reuse byte buffers between rows
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.SQLError("Failed while reading rows", query, err)
	}

	return frame.New(cols, data)
}

// Helper methods

func (s *Service) requireConnection() error {
	if !s.connected {
		return errors.New(errors.ErrCodeNotConnected, "Not connected to database").
			WithSuggestions("Call Connect() before using the session")
	}
	return nil
}

func (s *Service) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout > 0 {
		return context.WithTimeout(ctx, s.config.Timeout)
	}
	return context.WithCancel(ctx)
}

// statementError classifies a failed statement, reporting an expired query
// deadline as a timeout rather than a SQL error.
func (s *Service) statementError(ctx context.Context, message, stmt string, err error) *errors.AppError {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.Wrap(err, errors.ErrCodeConnectionTimeout, message+": query timed out").
			WithContext("query", stmt).
			WithContext("timeout", s.config.Timeout.String()).
			WithSuggestions("Raise snowflake.query_timeout", "Check warehouse load in the Snowflake console")
	}
	return errors.SQLError(message, stmt, err)
}

// ValidateConfig validates the Snowflake configuration
func ValidateConfig(config Config) error {
	if config.Account == "" {
		return fmt.Errorf("account is required")
	}
	if config.Username == "" {
		return fmt.Errorf("username is required")
	}
	if config.Password == "" {
		return fmt.Errorf("password is required")
	}
	if config.Warehouse == "" {
		return fmt.Errorf("warehouse is required")
	}
	if config.Role == "" {
		return fmt.Errorf("role is required")
	}
	return nil
}
