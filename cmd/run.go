package cmd

import (
	"featuredrop/internal/warehouse"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Materialize the feature table, then train on it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		// both steps log under one run id
		runLogger, _ := logger.WithRunID()

		return withSession(ctx, func(sess warehouse.Session) error {
			if err := materialize(ctx, sess, appConfig.Pipeline, out, runLogger, false); err != nil {
				return err
			}
			_, err := train(ctx, sess, appConfig.Pipeline, out, runLogger)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
