package models

import (
	"testing"
	"time"

	"featuredrop/pkg/errors"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestConfigMarshalUnmarshal(t *testing.T) {
	config := Config{
		Snowflake: Snowflake{
			Account:      "xy12345.us-east-1",
			Username:     "ml_user",
			Role:         "ML_ROLE",
			Warehouse:    "ML_WH",
			Database:     "ANALYTICS",
			Schema:       "PUBLIC",
			QueryTimeout: 2 * time.Minute,
			UseKeyring:   true,
		},
		Pipeline: DefaultPipeline(),
		Logging:  Logging{Level: "debug", Format: "json"},
	}

	data, err := yaml.Marshal(&config)
	assert.NoError(t, err)
	assert.NotContains(t, string(data), "password")

	var unmarshaled Config
	err = yaml.Unmarshal(data, &unmarshaled)
	assert.NoError(t, err)
	assert.Equal(t, config, unmarshaled)
}

func TestDefaultPipeline(t *testing.T) {
	p := DefaultPipeline()

	assert.Equal(t, "FEATURE_STORE.USER_FEATURES", p.SourceTable)
	assert.Equal(t, "FEATURE_STORE.USER_FEATURES_VIEW", p.DestinationTable)
	assert.Equal(t, "TOTAL_PURCHASES", p.FeatureColumn)
	assert.Equal(t, "TOTAL_SPENT", p.TargetColumn)
	assert.Equal(t, 0.3, p.TestSize)
	assert.Equal(t, int64(42), p.RandomSeed)
	assert.NoError(t, p.Validate())
}

func TestPipelineValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(p *Pipeline)
		errorMsg string
	}{
		{"missing source", func(p *Pipeline) { p.SourceTable = "" }, "pipeline.source_table is required"},
		{"missing model path", func(p *Pipeline) { p.ModelPath = " " }, "pipeline.model_path is required"},
		{"same tables", func(p *Pipeline) { p.DestinationTable = "feature_store.user_features" }, "must differ"},
		{"zero test size", func(p *Pipeline) { p.TestSize = 0 }, "test_size"},
		{"full test size", func(p *Pipeline) { p.TestSize = 1 }, "test_size"},
		{"no sample rows", func(p *Pipeline) { p.SampleRows = 0 }, "sample_rows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPipeline()
			tt.mutate(&p)
			err := p.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
			assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetErrorCode(err))
		})
	}
}
