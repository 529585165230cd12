package ui

import (
	"fmt"
	"strconv"
	"strings"

	"featuredrop/internal/warehouse"
	"featuredrop/pkg/models"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ConnectionAnswers holds the Snowflake step of the wizard
type ConnectionAnswers struct {
	Account    string
	Username   string
	Password   string
	Role       string
	Warehouse  string
	Database   string
	Schema     string
	UseKeyring bool `survey:"use_keyring"`
}

// PipelineAnswers holds the pipeline step of the wizard
type PipelineAnswers struct {
	SourceTable      string `survey:"source_table"`
	DestinationTable string `survey:"destination_table"`
	ModelPath        string `survey:"model_path"`
	FeatureColumn    string `survey:"feature_column"`
	TargetColumn     string `survey:"target_column"`
	TestSize         string `survey:"test_size"`
}

// ConfigWizard provides an interactive configuration setup
type ConfigWizard struct {
	console *Console
	opts    []survey.AskOpt
}

// NewConfigWizard creates a new configuration wizard
func NewConfigWizard(console *Console, opts ...survey.AskOpt) *ConfigWizard {
	return &ConfigWizard{console: console, opts: opts}
}

// Run asks for connection and pipeline settings, starting from base
func (w *ConfigWizard) Run(base models.Config) (*models.Config, error) {
	w.console.Header("featuredrop configuration")

	conn, err := w.askConnection(base.Snowflake)
	if err != nil {
		return nil, cancelled(err)
	}

	w.console.Header("Pipeline")
	pipe, err := w.askPipeline(base.Pipeline)
	if err != nil {
		return nil, cancelled(err)
	}

	cfg := base
	applyConnection(&cfg, conn)
	if err := applyPipeline(&cfg, pipe); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func cancelled(err error) error {
	if err == terminal.InterruptErr {
		return fmt.Errorf("configuration cancelled")
	}
	return err
}

func (w *ConfigWizard) askConnection(current models.Snowflake) (ConnectionAnswers, error) {
	questions := []*survey.Question{
		{
			Name:     "account",
			Prompt:   &survey.Input{Message: "Snowflake Account:", Default: current.Account, Help: "Account identifier, e.g. xy12345.us-east-1"},
			Validate: survey.Required,
		},
		{
			Name:     "username",
			Prompt:   &survey.Input{Message: "Username:", Default: current.Username},
			Validate: survey.Required,
		},
		{
			Name:     "password",
			Prompt:   &survey.Password{Message: "Password:"},
			Validate: survey.Required,
		},
		{
			Name:     "role",
			Prompt:   &survey.Input{Message: "Role:", Default: valueOr(current.Role, "SYSADMIN")},
			Validate: survey.Required,
		},
		{
			Name:     "warehouse",
			Prompt:   &survey.Input{Message: "Warehouse:", Default: valueOr(current.Warehouse, "COMPUTE_WH")},
			Validate: survey.Required,
		},
		{
			Name:     "database",
			Prompt:   &survey.Input{Message: "Database:", Default: current.Database},
			Validate: survey.Required,
		},
		{
			Name:   "schema",
			Prompt: &survey.Input{Message: "Default schema:", Default: valueOr(current.Schema, "PUBLIC")},
		},
		{
			Name:   "use_keyring",
			Prompt: &survey.Confirm{Message: "Store the password in the OS keyring instead of the config file?", Default: true},
		},
	}

	var answers ConnectionAnswers
	err := survey.Ask(questions, &answers, w.opts...)
	return answers, err
}

func (w *ConfigWizard) askPipeline(current models.Pipeline) (PipelineAnswers, error) {
	defaults := models.DefaultPipeline()
	questions := []*survey.Question{
		{
			Name:     "source_table",
			Prompt:   &survey.Input{Message: "Source feature table:", Default: valueOr(current.SourceTable, defaults.SourceTable)},
			Validate: validateTableName,
		},
		{
			Name:     "destination_table",
			Prompt:   &survey.Input{Message: "Materialized table:", Default: valueOr(current.DestinationTable, defaults.DestinationTable)},
			Validate: validateTableName,
		},
		{
			Name:     "feature_column",
			Prompt:   &survey.Input{Message: "Feature column:", Default: valueOr(current.FeatureColumn, defaults.FeatureColumn)},
			Validate: survey.Required,
		},
		{
			Name:     "target_column",
			Prompt:   &survey.Input{Message: "Target column:", Default: valueOr(current.TargetColumn, defaults.TargetColumn)},
			Validate: survey.Required,
		},
		{
			Name:     "test_size",
			Prompt:   &survey.Input{Message: "Held-out fraction:", Default: strconv.FormatFloat(floatOr(current.TestSize, defaults.TestSize), 'f', -1, 64)},
			Validate: validateTestSize,
		},
		{
			Name:     "model_path",
			Prompt:   &survey.Input{Message: "Model output path:", Default: valueOr(current.ModelPath, defaults.ModelPath)},
			Validate: survey.Required,
		},
	}

	var answers PipelineAnswers
	err := survey.Ask(questions, &answers, w.opts...)
	return answers, err
}

func applyConnection(cfg *models.Config, a ConnectionAnswers) {
	cfg.Snowflake.Account = strings.TrimSpace(a.Account)
	cfg.Snowflake.Username = strings.TrimSpace(a.Username)
	cfg.Snowflake.Password = a.Password
	cfg.Snowflake.Role = strings.TrimSpace(a.Role)
	cfg.Snowflake.Warehouse = strings.TrimSpace(a.Warehouse)
	cfg.Snowflake.Database = strings.TrimSpace(a.Database)
	cfg.Snowflake.Schema = strings.TrimSpace(a.Schema)
	cfg.Snowflake.UseKeyring = a.UseKeyring
}

func applyPipeline(cfg *models.Config, a PipelineAnswers) error {
	testSize, err := strconv.ParseFloat(strings.TrimSpace(a.TestSize), 64)
	if err != nil {
		return fmt.Errorf("invalid held-out fraction %q: %w", a.TestSize, err)
	}

	seed := cfg.Pipeline.RandomSeed
	sample := cfg.Pipeline.SampleRows
	if sample == 0 {
		seed = models.DefaultRandomSeed
		sample = models.DefaultSampleRows
	}

	cfg.Pipeline = models.Pipeline{
		SourceTable:      strings.TrimSpace(a.SourceTable),
		DestinationTable: strings.TrimSpace(a.DestinationTable),
		ModelPath:        strings.TrimSpace(a.ModelPath),
		FeatureColumn:    strings.ToUpper(strings.TrimSpace(a.FeatureColumn)),
		TargetColumn:     strings.ToUpper(strings.TrimSpace(a.TargetColumn)),
		TestSize:         testSize,
		RandomSeed:       seed,
		SampleRows:       sample,
	}
	return cfg.Pipeline.Validate()
}

func validateTableName(ans interface{}) error {
	s, _ := ans.(string)
	_, err := warehouse.ParseName(s)
	if err != nil {
		return fmt.Errorf("enter TABLE, SCHEMA.TABLE or DATABASE.SCHEMA.TABLE")
	}
	return nil
}

func validateTestSize(ans interface{}) error {
	s, _ := ans.(string)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 || v >= 1 {
		return fmt.Errorf("enter a number between 0 and 1")
	}
	return nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func floatOr(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}
