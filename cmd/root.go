package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"featuredrop/internal/config"
	"featuredrop/internal/observability"
	"featuredrop/internal/ui"
	"featuredrop/pkg/models"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// annotation marking commands that run without a loaded configuration
const skipConfig = "skip_config"

var (
	cfgFile   string
	appConfig *models.Config
	logger    *observability.Logger

	rootCmd = &cobra.Command{
		Use:   "featuredrop",
		Short: "Materialize Snowflake feature tables and train a regression model on them",
		Long: `featuredrop copies a Snowflake feature table into a materialized table and
trains a linear regression of total spend on total purchases from it,
reporting R² and MSE on a held-out split.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfig] == "true" {
				return nil
			}
			return initConfig(cmd)
		},
	}
)

// flag name -> config key
var flagBindings = map[string]string{
	"log-level":   "logging.level",
	"log-format":  "logging.format",
	"source":      "pipeline.source_table",
	"destination": "pipeline.destination_table",
	"model-path":  "pipeline.model_path",
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := executeRoot(ctx); err != nil {
		ui.ShowError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// executeRoot runs the command tree and releases the logger afterwards.
// Cobra skips post-run hooks when RunE fails, so closing happens here.
func executeRoot(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	closeLogger()
	return err
}

func closeLogger() {
	if logger == nil {
		return
	}
	_ = logger.Close()
	logger = nil
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or $HOME/.featuredrop/config.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("source", "", "source feature table")
	flags.String("destination", "", "materialized feature table")
	flags.String("model-path", "", "where the trained model is written")
}

// initConfig resolves settings from flags, environment, .env and config file,
// in that order of precedence, and sets up logging.
func initConfig(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	v := config.NewViper()
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	appConfig = cfg

	logger = observability.NewLogger(observability.LoggerConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cmd.ErrOrStderr(),
		Service:    "featuredrop",
		Version:    Version,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	observability.SetDefaultLogger(logger)
	logger.DebugWithFields("configuration loaded", map[string]interface{}{
		"config_file": v.ConfigFileUsed(),
		"source":      cfg.Pipeline.SourceTable,
		"destination": cfg.Pipeline.DestinationTable,
	})
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagBindings {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}
