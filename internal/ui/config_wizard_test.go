package ui

import (
	"bytes"
	"fmt"
	"testing"

	"featuredrop/pkg/models"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigWizard(t *testing.T) {
	var buf bytes.Buffer
	wizard := NewConfigWizard(NewConsole(&buf))

	assert.NotNil(t, wizard.console)
	assert.Empty(t, wizard.opts)
}

func TestApplyConnection(t *testing.T) {
	cfg := models.Config{}
	applyConnection(&cfg, ConnectionAnswers{
		Account:    " xy12345.us-east-1 ",
		Username:   "ml_user",
		Password:   " secret ",
		Role:       "ML_ROLE",
		Warehouse:  "ML_WH",
		Database:   "ANALYTICS",
		Schema:     "FEATURE_STORE",
		UseKeyring: true,
	})

	assert.Equal(t, "xy12345.us-east-1", cfg.Snowflake.Account)
	assert.Equal(t, " secret ", cfg.Snowflake.Password, "passwords are kept verbatim")
	assert.True(t, cfg.Snowflake.UseKeyring)
}

func TestApplyPipeline(t *testing.T) {
	cfg := models.Config{}
	err := applyPipeline(&cfg, PipelineAnswers{
		SourceTable:      "RAW.FEATURES",
		DestinationTable: "RAW.FEATURES_COPY",
		ModelPath:        "/tmp/m.yaml",
		FeatureColumn:    "visits",
		TargetColumn:     "revenue",
		TestSize:         "0.25",
	})
	require.NoError(t, err)

	assert.Equal(t, "VISITS", cfg.Pipeline.FeatureColumn)
	assert.Equal(t, 0.25, cfg.Pipeline.TestSize)
	assert.Equal(t, int64(models.DefaultRandomSeed), cfg.Pipeline.RandomSeed)
	assert.Equal(t, models.DefaultSampleRows, cfg.Pipeline.SampleRows)
}

func TestApplyPipelineKeepsSeed(t *testing.T) {
	cfg := models.Config{Pipeline: models.DefaultPipeline()}
	cfg.Pipeline.RandomSeed = 7

	answers := PipelineAnswers{
		SourceTable:      "A.B",
		DestinationTable: "A.C",
		ModelPath:        "/tmp/m.yaml",
		FeatureColumn:    "X",
		TargetColumn:     "Y",
		TestSize:         "0.3",
	}
	require.NoError(t, applyPipeline(&cfg, answers))
	assert.Equal(t, int64(7), cfg.Pipeline.RandomSeed)

	answers.TestSize = "abc"
	assert.Error(t, applyPipeline(&cfg, answers))

	answers.TestSize = "0.3"
	answers.DestinationTable = "a.b"
	assert.Error(t, applyPipeline(&cfg, answers), "destination equal to source must be rejected")
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateTableName("FEATURE_STORE.USER_FEATURES"))
	assert.Error(t, validateTableName("bad name"))
	assert.Error(t, validateTableName(42))

	assert.NoError(t, validateTestSize("0.3"))
	assert.Error(t, validateTestSize("1"))
	assert.Error(t, validateTestSize("zero"))
}

func TestCancelled(t *testing.T) {
	assert.EqualError(t, cancelled(terminal.InterruptErr), "configuration cancelled")

	other := fmt.Errorf("eof")
	assert.Equal(t, other, cancelled(other))
}
