package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"featuredrop/internal/common"
	"featuredrop/pkg/errors"
	"featuredrop/pkg/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. FEATUREDROP_PIPELINE_MODEL_PATH
const EnvPrefix = "FEATUREDROP"

func GetConfigPath() string {
	// Check for environment variable first
	if configPath := os.Getenv(EnvPrefix + "_CONFIG"); configPath != "" {
		return filepath.Dir(configPath)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".featuredrop")
}

func GetConfigFile() string {
	if configFile := os.Getenv(EnvPrefix + "_CONFIG"); configFile != "" {
		// Validate the path to prevent directory traversal
		cleaned, err := common.CleanPath(configFile)
		if err != nil {
			return filepath.Join(GetConfigPath(), "config.yaml")
		}
		return cleaned
	}
	return filepath.Join(GetConfigPath(), "config.yaml")
}

// SetDefaults registers every known key so that environment overrides and
// Unmarshal see the full tree.
func SetDefaults(v *viper.Viper) {
	p := models.DefaultPipeline()
	v.SetDefault("pipeline.source_table", p.SourceTable)
	v.SetDefault("pipeline.destination_table", p.DestinationTable)
	v.SetDefault("pipeline.model_path", p.ModelPath)
	v.SetDefault("pipeline.feature_column", p.FeatureColumn)
	v.SetDefault("pipeline.target_column", p.TargetColumn)
	v.SetDefault("pipeline.test_size", p.TestSize)
	v.SetDefault("pipeline.random_seed", p.RandomSeed)
	v.SetDefault("pipeline.sample_rows", p.SampleRows)

	for _, key := range []string{"account", "username", "password", "role", "warehouse", "database", "schema"} {
		v.SetDefault("snowflake."+key, "")
	}
	v.SetDefault("snowflake.query_timeout", "0s")
	v.SetDefault("snowflake.use_keyring", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)
}

// NewViper returns a viper instance with defaults and environment overrides wired
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error; existing variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration into v and decodes it. configFile overrides
// the search path and must exist; when it is empty, config.yaml is looked up
// in the working directory and then in GetConfigPath(), and a missing file
// is fine. FEATUREDROP_CONFIG may name a file that does not exist yet.
func Load(v *viper.Viper, configFile string) (*models.Config, error) {
	explicit := configFile != ""
	if !explicit && os.Getenv(EnvPrefix+"_CONFIG") != "" {
		configFile = GetConfigFile()
	}

	if configFile != "" {
		cleanedPath, err := common.CleanPath(configFile)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "Invalid config file path").
				WithContext("path", configFile)
		}
		_, err = os.Stat(cleanedPath)
		switch {
		case err == nil:
			v.SetConfigFile(cleanedPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "Failed to read config file").
					WithContext("path", cleanedPath)
			}
		case os.IsNotExist(err) && explicit:
			return nil, errors.New(errors.ErrCodeConfigNotFound, fmt.Sprintf("Config file %s does not exist", cleanedPath)).
				WithContext("path", cleanedPath).
				WithSuggestions("Check the --config path", "Run 'featuredrop setup' to create a configuration")
		case !os.IsNotExist(err):
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "Failed to stat config file").
				WithContext("path", cleanedPath)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(GetConfigPath())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !stderrors.As(err, &notFound) {
				return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "Failed to read config file")
			}
		}
	}

	var cfg models.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "Failed to decode configuration")
	}

	var err error
	if cfg.Pipeline.ModelPath, err = common.ExpandHome(cfg.Pipeline.ModelPath); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "Invalid pipeline.model_path")
	}
	if cfg.Logging.File, err = common.ExpandHome(cfg.Logging.File); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "Invalid logging.file")
	}

	if err := cfg.Pipeline.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Save(config *models.Config) error {
	configPath := GetConfigPath()
	if err := os.MkdirAll(configPath, common.DirPermissionSecure); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(GetConfigFile(), data, common.FilePermissionSecure); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func Exists() bool {
	_, err := os.Stat(GetConfigFile())
	return err == nil
}
