package cmd

import (
	"context"
	"fmt"

	"featuredrop/internal/config"
	"featuredrop/internal/security"
	"featuredrop/internal/snowflake"
	"featuredrop/internal/ui"
	"featuredrop/pkg/models"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:         "setup",
	Short:       "Initial configuration setup",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfig: "true"},
	RunE:        runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	console := ui.NewConsole(cmd.OutOrStdout())
	console.Header("Setting up featuredrop")

	if config.Exists() {
		var overwrite bool
		prompt := &survey.Confirm{
			Message: "Configuration already exists. Do you want to overwrite it?",
			Default: false,
		}
		if err := survey.AskOne(prompt, &overwrite); err != nil {
			return err
		}
		if !overwrite {
			console.Info("Setup cancelled.")
			return nil
		}
	}

	cfg, err := ui.NewConfigWizard(console).Run(setupBase())
	if err != nil {
		return err
	}

	var check bool
	if err := survey.AskOne(&survey.Confirm{Message: "Test the Snowflake connection now?", Default: true}, &check); err != nil {
		return err
	}
	if check {
		if err := checkConnection(cmd.Context(), cfg.Snowflake); err != nil {
			console.Warning(fmt.Sprintf("Connection test failed: %v", err))
		} else {
			console.Success("Connected to Snowflake")
		}
	}

	if err := persistConfig(console, cfg); err != nil {
		return err
	}
	console.Info("You can now run: featuredrop materialize && featuredrop train")
	return nil
}

// setupBase starts the wizard from the current configuration when it loads,
// from defaults otherwise
func setupBase() models.Config {
	if cfg, err := config.Load(config.NewViper(), cfgFile); err == nil {
		return *cfg
	}
	return models.Config{
		Pipeline: models.DefaultPipeline(),
		Logging:  models.Logging{Level: "info", Format: "text"},
	}
}

// checkConnection opens and pings a throwaway session
func checkConnection(ctx context.Context, sf models.Snowflake) error {
	cfg := snowflake.ConfigFromModel(sf)
	if err := snowflake.ValidateConfig(cfg); err != nil {
		return err
	}
	svc := snowflake.NewService(cfg)
	defer svc.Close()
	return svc.TestConnection(ctx)
}

// persistConfig moves the password into the keyring when requested and
// writes the configuration file
func persistConfig(console *ui.Console, cfg *models.Config) error {
	if cfg.Snowflake.UseKeyring && cfg.Snowflake.Password != "" {
		cm := security.NewCredentialManager()
		if err := cm.StorePassword(cfg.Snowflake.Account, cfg.Snowflake.Username, cfg.Snowflake.Password); err != nil {
			return err
		}
		cfg.Snowflake.Password = ""
		console.Success("Password stored in the OS keyring")
	}

	if err := config.Save(cfg); err != nil {
		return err
	}
	console.Success(fmt.Sprintf("Configuration saved to: %s", config.GetConfigFile()))
	return nil
}
