package cmd

import (
	"context"
	"io"

	"featuredrop/internal/observability"
	"featuredrop/internal/pipeline"
	"featuredrop/internal/warehouse"
	"featuredrop/pkg/models"

	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train and evaluate the regression model on the materialized table",
	Long: `Load the materialized feature table, drop rows missing the feature or
target, fit a linear regression on a seeded train split and report R² and MSE
on the held-out rows. The model is written to the configured model path.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(sess warehouse.Session) error {
			_, err := train(cmd.Context(), sess, appConfig.Pipeline, cmd.OutOrStdout(), logger)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func train(ctx context.Context, sess warehouse.Session, cfg models.Pipeline, out io.Writer, log *observability.Logger) (*pipeline.TrainResult, error) {
	result, err := pipeline.NewTrainer(cfg, out, log).Run(ctx, sess)
	if err != nil {
		return nil, err
	}
	result.Table.Render(out, 1)
	return result, nil
}
