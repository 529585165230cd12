package models

import (
	"fmt"
	"strings"
	"time"

	"featuredrop/pkg/errors"
)

// Default pipeline settings
const (
	DefaultSourceTable      = "FEATURE_STORE.USER_FEATURES"
	DefaultDestinationTable = "FEATURE_STORE.USER_FEATURES_VIEW"
	DefaultModelPath        = "/tmp/linear_regression_model.yaml"
	DefaultFeatureColumn    = "TOTAL_PURCHASES"
	DefaultTargetColumn     = "TOTAL_SPENT"
	DefaultTestSize         = 0.3
	DefaultRandomSeed       = 42
	DefaultSampleRows       = 10
)

type Config struct {
	Snowflake Snowflake `yaml:"snowflake" mapstructure:"snowflake"`
	Pipeline  Pipeline  `yaml:"pipeline" mapstructure:"pipeline"`
	Logging   Logging   `yaml:"logging" mapstructure:"logging"`
}

type Snowflake struct {
	Account      string        `yaml:"account" mapstructure:"account"`
	Username     string        `yaml:"username" mapstructure:"username"`
	Password     string        `yaml:"password,omitempty" mapstructure:"password"`
	Role         string        `yaml:"role" mapstructure:"role"`
	Warehouse    string        `yaml:"warehouse" mapstructure:"warehouse"`
	Database     string        `yaml:"database" mapstructure:"database"`
	Schema       string        `yaml:"schema" mapstructure:"schema"`
	QueryTimeout time.Duration `yaml:"query_timeout,omitempty" mapstructure:"query_timeout"` // 0 disables the timeout
	UseKeyring   bool          `yaml:"use_keyring,omitempty" mapstructure:"use_keyring"`     // Resolve password from the OS keyring
}

// Pipeline names the warehouse objects, columns and split parameters used by
// the materialize and train commands.
type Pipeline struct {
	SourceTable      string  `yaml:"source_table" mapstructure:"source_table"`
	DestinationTable string  `yaml:"destination_table" mapstructure:"destination_table"`
	ModelPath        string  `yaml:"model_path" mapstructure:"model_path"`
	FeatureColumn    string  `yaml:"feature_column" mapstructure:"feature_column"`
	TargetColumn     string  `yaml:"target_column" mapstructure:"target_column"`
	TestSize         float64 `yaml:"test_size" mapstructure:"test_size"`
	RandomSeed       int64   `yaml:"random_seed" mapstructure:"random_seed"`
	SampleRows       int     `yaml:"sample_rows" mapstructure:"sample_rows"`
}

// Logging controls the structured logger
type Logging struct {
	Level      string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format     string `yaml:"format" mapstructure:"format"` // text or json
	File       string `yaml:"file,omitempty" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups,omitempty" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty" mapstructure:"max_age_days"`
}

// DefaultPipeline returns the pipeline settings used when nothing is configured
func DefaultPipeline() Pipeline {
	return Pipeline{
		SourceTable:      DefaultSourceTable,
		DestinationTable: DefaultDestinationTable,
		ModelPath:        DefaultModelPath,
		FeatureColumn:    DefaultFeatureColumn,
		TargetColumn:     DefaultTargetColumn,
		TestSize:         DefaultTestSize,
		RandomSeed:       DefaultRandomSeed,
		SampleRows:       DefaultSampleRows,
	}
}

// Validate checks that every pipeline setting is usable
func (p Pipeline) Validate() error {
	required := map[string]string{
		"source_table":      p.SourceTable,
		"destination_table": p.DestinationTable,
		"model_path":        p.ModelPath,
		"feature_column":    p.FeatureColumn,
		"target_column":     p.TargetColumn,
	}
	for _, field := range []string{"source_table", "destination_table", "model_path", "feature_column", "target_column"} {
		if strings.TrimSpace(required[field]) == "" {
			return errors.ConfigError(fmt.Sprintf("pipeline.%s is required", field), "pipeline."+field)
		}
	}
	if strings.EqualFold(p.SourceTable, p.DestinationTable) {
		return errors.ConfigError("pipeline.destination_table must differ from pipeline.source_table", "pipeline.destination_table")
	}
	if p.TestSize <= 0 || p.TestSize >= 1 {
		return errors.ConfigError(fmt.Sprintf("pipeline.test_size must be between 0 and 1, got %v", p.TestSize), "pipeline.test_size")
	}
	if p.SampleRows <= 0 {
		return errors.ConfigError(fmt.Sprintf("pipeline.sample_rows must be positive, got %d", p.SampleRows), "pipeline.sample_rows")
	}
	return nil
}
